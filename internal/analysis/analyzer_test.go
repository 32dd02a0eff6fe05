package analysis_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/counsel/internal/analysis"
)

func TestAnalyzeContract(t *testing.T) {
	doc := buildDocument(contractPages...)
	a := analysis.NewAnalyzer(analysis.DefaultLexicon())

	report, err := a.Analyze(context.Background(), doc)
	require.NoError(t, err)

	type expect struct {
		typ  analysis.ClauseType
		risk analysis.RiskLevel
		page int
		text string
	}
	want := []expect{
		{analysis.TypeConfidentiality, analysis.RiskLow, 2, confidentialityText},
		{analysis.TypeTermination, analysis.RiskLow, 3, terminationText},
		{analysis.TypePayment, analysis.RiskLow, 4, paymentText},
		{analysis.TypeLiability, analysis.RiskMedium, 5, liabilityText},
		{analysis.TypeIndemnification, analysis.RiskHigh, 6, indemnificationText},
		{analysis.TypeGoverningLaw, analysis.RiskLow, 8, governingLawText},
	}

	require.Len(t, report.Clauses, len(want))
	for i, w := range want {
		c := report.Clauses[i]
		assert.Equal(t, w.typ, c.Type, "clause %d", i)
		assert.Equal(t, w.risk, c.Risk, "clause %d", i)
		assert.Equal(t, w.page, c.Page, "clause %d", i)
		assert.Contains(t, c.Content, w.text)
		assert.Equal(t, doc.Text[c.Start:c.End], c.Content)
		assert.NotEmpty(t, c.Description)
	}

	assert.Equal(t, doc.ID, report.DocumentID)
	assert.Equal(t, analysis.RiskSummary{High: 1, Medium: 1, Low: 4, Total: 6}, report.Risk)
	assert.Contains(t, report.Summary, "commercial services agreement")
	assert.Contains(t, report.Summary, "Indemnification clause on page 6 is high risk")
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	doc := buildDocument(contractPages...)

	serial, err := analysis.NewAnalyzer(analysis.DefaultLexicon(), analysis.WithWorkers(1)).
		Analyze(context.Background(), doc)
	require.NoError(t, err)

	parallel := analysis.NewAnalyzer(analysis.DefaultLexicon(), analysis.WithWorkers(8))
	for range 5 {
		got, err := parallel.Analyze(context.Background(), doc)
		require.NoError(t, err)
		assert.Equal(t, serial, got)
	}
}

func TestAnalyzeEmptyDocument(t *testing.T) {
	a := analysis.NewAnalyzer(analysis.DefaultLexicon())

	for _, text := range []string{"", "   \n\f\t"} {
		_, err := a.Analyze(context.Background(), analysis.NewDocument(uuid.New(), text, nil))
		assert.ErrorIs(t, err, analysis.ErrEmptyDocument)
	}

	_, err := a.Analyze(context.Background(), nil)
	assert.ErrorIs(t, err, analysis.ErrEmptyDocument)
}

func TestAnalyzeNoRecognisedClauses(t *testing.T) {
	doc := analysis.NewDocument(uuid.New(),
		"Lorem ipsum dolor sit amet, consectetur adipiscing elit, sed do eiusmod tempor.", nil)

	report, err := analysis.NewAnalyzer(analysis.DefaultLexicon()).Analyze(context.Background(), doc)
	require.NoError(t, err)

	assert.Empty(t, report.Clauses)
	assert.NotNil(t, report.Clauses)
	assert.Equal(t, analysis.RiskSummary{}, report.Risk)
	assert.Contains(t, report.Summary, "No standard provisions were identified")
}

func TestAnalyzeSinglePageDocument(t *testing.T) {
	text := strings.Join([]string{terminationText, indemnificationText}, "\n\n")
	doc := analysis.NewDocument(uuid.New(), text, nil)

	report, err := analysis.NewAnalyzer(analysis.DefaultLexicon()).Analyze(context.Background(), doc)
	require.NoError(t, err)

	require.Len(t, report.Clauses, 2)
	for _, c := range report.Clauses {
		assert.Equal(t, 1, c.Page)
	}
}

func TestAnalyzeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := analysis.NewAnalyzer(analysis.DefaultLexicon()).Analyze(ctx, buildDocument(contractPages...))

	assert.ErrorIs(t, err, context.Canceled)
}

func TestReportClausesOf(t *testing.T) {
	report, err := analysis.NewAnalyzer(analysis.DefaultLexicon()).
		Analyze(context.Background(), buildDocument(contractPages...))
	require.NoError(t, err)

	payment := report.ClausesOf(analysis.TypePayment)
	require.Len(t, payment, 1)
	assert.Equal(t, 4, payment[0].Page)
	assert.Empty(t, report.ClausesOf(analysis.TypeNonCompete))
}
