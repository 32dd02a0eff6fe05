package qa_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/counsel/internal/analysis"
	"github.com/JaimeStill/counsel/internal/qa"
)

var samplePages = []string{
	"SERVICES AGREEMENT\n\nThis agreement is entered into by Party A and Party B as of the effective date.",
	"1. Termination\nEither party may terminate this agreement with 30 days written notice. In case of material breach, the non-breaching party may terminate immediately upon written notice.",
	"2. Payment\nPayment terms are net 30 days from invoice date. Late payments shall accrue interest at 1.5% per month or the maximum rate allowed by law, whichever is lower.",
	"3. Indemnity\nParty A shall indemnify Party B for all claims arising from Party A's breach of representations and warranties, negligence, or willful misconduct. This includes attorney fees and settlement amounts.",
	"4. Governing Law\nThis agreement shall be governed by and construed in accordance with the laws of the State of California, without regard to its conflict of laws principles.",
}

func buildDocument(pages ...string) *analysis.Document {
	var b strings.Builder
	var offsets []analysis.PageOffset
	for i, p := range pages {
		if i > 0 {
			b.WriteString("\n\f")
		}
		offsets = append(offsets, analysis.PageOffset{Offset: b.Len(), Page: i + 1})
		b.WriteString(p)
	}
	return analysis.NewDocument(uuid.New(), b.String(), offsets)
}

func analyze(t *testing.T, pages ...string) (*analysis.Report, *analysis.Document) {
	t.Helper()
	doc := buildDocument(pages...)
	report, err := analysis.NewAnalyzer(analysis.DefaultLexicon()).Analyze(context.Background(), doc)
	require.NoError(t, err)
	return report, doc
}

func TestAnswerPaymentTerms(t *testing.T) {
	report, doc := analyze(t, samplePages...)
	e := qa.New(analysis.DefaultLexicon())

	resp, err := e.Respond("What are the payment terms?", report.Clauses, doc)
	require.NoError(t, err)

	assert.True(t, resp.Matched)
	assert.Equal(t, analysis.TypePayment, resp.Topic)
	assert.Contains(t, resp.Text, "30 days")
	assert.Contains(t, resp.Text, "page 3")
	assert.Contains(t, resp.Text, "low risk")
	assert.NotContains(t, resp.Text, "2. Payment")
}

func TestAnswerTermination(t *testing.T) {
	report, doc := analyze(t, samplePages...)
	e := qa.New(analysis.DefaultLexicon())

	answer, err := e.Answer("How can we terminate early?", report.Clauses, doc)
	require.NoError(t, err)

	assert.Contains(t, answer, "The Termination clause on page 2 states:")
	assert.Contains(t, answer, "30 days written notice")
}

func TestAnswerHighRiskUsesRationale(t *testing.T) {
	report, doc := analyze(t, samplePages...)
	lex := analysis.DefaultLexicon()
	rule, ok := lex.Rule(analysis.TypeIndemnification)
	require.True(t, ok)

	answer, err := qa.New(lex).Answer("Do I have to defend claims under the indemnification?", report.Clauses, doc)
	require.NoError(t, err)

	assert.Contains(t, answer, "Indemnification clause on page 4")
	assert.Contains(t, answer, "high risk")
	assert.Contains(t, answer, rule.Rationale)
}

func TestAnswerFallbackNamesPresentTopics(t *testing.T) {
	report, doc := analyze(t, samplePages...)

	resp, err := qa.New(analysis.DefaultLexicon()).Respond("xyz random", report.Clauses, doc)
	require.NoError(t, err)

	assert.False(t, resp.Matched)
	assert.Empty(t, resp.Topic)
	assert.Contains(t, resp.Text, `"xyz random"`)
	assert.Contains(t, resp.Text, "termination, payment terms, indemnification, governing law")
	assert.NotContains(t, resp.Text, "liability")
	assert.NotContains(t, resp.Text, "confidentiality")
	assert.NotContains(t, resp.Text, "non-compete")
}

func TestAnswerAbsentTypePointsAtMention(t *testing.T) {
	pages := []string{
		samplePages[2],
		"Employees may not compete.",
	}
	report, doc := analyze(t, pages...)
	require.Len(t, report.Clauses, 1)

	resp, err := qa.New(analysis.DefaultLexicon()).Respond("Is there a non-compete?", report.Clauses, doc)
	require.NoError(t, err)

	assert.False(t, resp.Matched)
	assert.Equal(t, analysis.TypeNonCompete, resp.Topic)
	assert.Contains(t, resp.Text, "does not appear to address non-compete.")
	assert.Contains(t, resp.Text, "mentions non-compete on page 2")
	assert.Contains(t, resp.Text, "You can ask about: payment terms.")
}

func TestAnswerAbsentTypeWithoutDocument(t *testing.T) {
	clauses := []analysis.Clause{{Type: analysis.TypePayment, Risk: analysis.RiskLow, Page: 1, Content: samplePages[2]}}

	answer, err := qa.New(analysis.DefaultLexicon()).Answer("Who owns the intellectual property?", clauses, nil)
	require.NoError(t, err)

	assert.Contains(t, answer, "does not appear to address intellectual property.")
	assert.NotContains(t, answer, "mentions")
}

func TestAnswerNoClauses(t *testing.T) {
	answer, err := qa.New(analysis.DefaultLexicon()).Answer("What about payment?", nil, nil)
	require.NoError(t, err)
	assert.Contains(t, answer, "does not appear to address payment terms.")

	answer, err = qa.New(analysis.DefaultLexicon()).Answer("Tell me something", nil, nil)
	require.NoError(t, err)
	assert.Contains(t, answer, "No standard provisions were identified")
}

func TestAnswerEmptyQuestion(t *testing.T) {
	e := qa.New(analysis.DefaultLexicon())

	for _, q := range []string{"", "   ", "\n\t"} {
		_, err := e.Answer(q, nil, nil)
		assert.ErrorIs(t, err, qa.ErrEmptyQuestion)
	}
}

func TestAnswerPicksMostRelevantClause(t *testing.T) {
	clauses := []analysis.Clause{
		{Type: analysis.TypePayment, Risk: analysis.RiskLow, Page: 2, Content: "Fees are payable quarterly in advance."},
		{Type: analysis.TypePayment, Risk: analysis.RiskLow, Page: 5, Content: "Each invoice is due within 45 days of receipt."},
		{Type: analysis.TypePayment, Risk: analysis.RiskMedium, Page: 9, Content: "Expenses are reimbursed at cost."},
	}

	answer, err := qa.New(analysis.DefaultLexicon()).Answer("When is an invoice due?", clauses, nil)
	require.NoError(t, err)

	assert.Contains(t, answer, "The Payment clause on page 5 states: \"Each invoice is due within 45 days of receipt.\"")
	assert.Contains(t, answer, "The document has 2 other Payment clauses, on pages 2 and 9.")
}

func TestAnswerTieKeepsEarliestClause(t *testing.T) {
	clauses := []analysis.Clause{
		{Type: analysis.TypePayment, Risk: analysis.RiskLow, Page: 1, Content: "Fees are payable monthly."},
		{Type: analysis.TypePayment, Risk: analysis.RiskLow, Page: 3, Content: "Fees are payable annually."},
	}

	answer, err := qa.New(analysis.DefaultLexicon()).Answer("What fees apply?", clauses, nil)
	require.NoError(t, err)

	assert.Contains(t, answer, "page 1")
	assert.Contains(t, answer, "1 other Payment clause, on page 3.")
}

func TestAnswerTopicPrecedence(t *testing.T) {
	report, doc := analyze(t, samplePages...)
	e := qa.New(analysis.DefaultLexicon())

	tests := []struct {
		name     string
		question string
		want     analysis.ClauseType
	}{
		{"most hits wins", "Can we terminate over late payment of fees?", analysis.TypePayment},
		{"tie goes to earlier type", "Is payment due on termination?", analysis.TypeTermination},
		{"tie ignores question order", "Does termination affect payment?", analysis.TypeTermination},
		{"single type", "Which jurisdiction applies?", analysis.TypeGoverningLaw},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := e.Respond(tt.question, report.Clauses, doc)
			require.NoError(t, err)
			assert.True(t, resp.Matched)
			assert.Equal(t, tt.want, resp.Topic)
		})
	}
}

func TestAnswerSpecificTopicBeatsGenericWord(t *testing.T) {
	nonCompete := "5. Non-Compete\nEmployee shall not compete with the Company or solicit its customers for twelve months after employment ends."
	report, doc := analyze(t, samplePages[4], nonCompete)
	require.Len(t, report.ClausesOf(analysis.TypeNonCompete), 1)
	require.Len(t, report.ClausesOf(analysis.TypeGoverningLaw), 1)

	e := qa.New(analysis.DefaultLexicon())

	tests := []struct {
		question string
		want     analysis.ClauseType
	}{
		{"What does the agreement state about the noncompete?", analysis.TypeNonCompete},
		{"Is the noncompete enforceable in my state?", analysis.TypeNonCompete},
		{"Which state's laws apply?", analysis.TypeGoverningLaw},
		{"What law governs this agreement?", analysis.TypeGoverningLaw},
	}

	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			resp, err := e.Respond(tt.question, report.Clauses, doc)
			require.NoError(t, err)
			assert.True(t, resp.Matched)
			assert.Equal(t, tt.want, resp.Topic)
			if tt.want == analysis.TypeNonCompete {
				assert.NotContains(t, resp.Text, "California")
			}
		})
	}
}
