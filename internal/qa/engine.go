// Package qa answers free-form questions about an analysed document by
// matching the question against the lexicon's topic table and quoting the
// most relevant clause.
package qa

import (
	"fmt"
	"slices"
	"strings"

	"github.com/JaimeStill/counsel/internal/analysis"
)

const maxKeySentences = 3

var stopWords = map[string]bool{
	"a": true, "about": true, "an": true, "and": true, "any": true, "are": true,
	"can": true, "do": true, "does": true, "for": true, "how": true, "if": true,
	"in": true, "is": true, "it": true, "of": true, "on": true, "or": true,
	"say": true, "the": true, "there": true, "this": true, "to": true,
	"what": true, "when": true, "where": true, "which": true, "who": true,
	"why": true, "with": true, "contract": true, "agreement": true, "document": true,
}

var obligationWords = []string{
	" shall ", " must ", " may ", " will ", " agrees ", " agree ", " required ", " not ",
}

// Response is an answer plus the topic it was resolved to.
type Response struct {
	Text    string              `json:"text"`
	Topic   analysis.ClauseType `json:"topic,omitempty"`
	Matched bool                `json:"matched"`
}

// Engine answers questions against a clause set. It holds no state beyond
// the lexicon and is safe for concurrent use.
type Engine struct {
	lexicon *analysis.Lexicon
}

// New creates an Engine over lex.
func New(lex *analysis.Lexicon) *Engine {
	return &Engine{lexicon: lex}
}

// Answer returns the text of Respond.
func (e *Engine) Answer(question string, clauses []analysis.Clause, doc *analysis.Document) (string, error) {
	resp, err := e.Respond(question, clauses, doc)
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// Respond resolves the question to the clause type whose topic terms it
// mentions most, with broad topic words deciding equal counts and lexicon
// order deciding the rest, then quotes the most relevant clause of that type. When no
// type matches, or the matched type is absent, the response names the topics
// the document does cover. doc may be nil.
func (e *Engine) Respond(question string, clauses []analysis.Clause, doc *analysis.Document) (Response, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Response{}, ErrEmptyQuestion
	}

	normalized := analysis.Normalize(question)
	hits := e.lexicon.TopicHits(normalized)
	if len(hits) == 0 {
		return Response{Text: e.fallback(question, clauses)}, nil
	}

	best := hits[0]
	for _, h := range hits[1:] {
		if h.Outranks(best) {
			best = h
		}
	}

	var matched []analysis.Clause
	for _, c := range clauses {
		if c.Type == best.Type {
			matched = append(matched, c)
		}
	}

	if len(matched) == 0 {
		return Response{
			Text:  e.absent(best.Type, clauses, doc),
			Topic: best.Type,
		}, nil
	}

	return Response{
		Text:    e.compose(best.Type, matched, normalized),
		Topic:   best.Type,
		Matched: true,
	}, nil
}

func (e *Engine) compose(t analysis.ClauseType, matched []analysis.Clause, question string) string {
	chosen := mostRelevant(matched, question)
	clause := matched[chosen]

	var b strings.Builder
	fmt.Fprintf(&b, "The %s clause on page %d states: \"%s\"", t, clause.Page, strings.Join(keySentences(clause.Content), " "))

	switch clause.Risk {
	case analysis.RiskHigh:
		b.WriteString(" This provision is rated high risk")
		if rule, ok := e.lexicon.Rule(t); ok && rule.Rationale != "" {
			fmt.Fprintf(&b, ": %s", rule.Rationale)
		} else {
			b.WriteString(".")
		}
		b.WriteString(" Consider negotiating narrower scope or a cap.")
	case analysis.RiskMedium:
		b.WriteString(" This provision is rated medium risk and should be reviewed against your own obligations.")
	default:
		b.WriteString(" This provision is rated low risk; its terms appear standard.")
	}

	var others []int
	for i, c := range matched {
		if i != chosen && !slices.Contains(others, c.Page) {
			others = append(others, c.Page)
		}
	}
	if len(others) > 0 {
		slices.Sort(others)
		noun := "clause"
		if len(matched)-1 > 1 {
			noun = "clauses"
		}
		fmt.Fprintf(&b, " The document has %d other %s %s, on %s.",
			len(matched)-1, t, noun, analysis.PageList(others))
	}

	return b.String()
}

func (e *Engine) absent(t analysis.ClauseType, clauses []analysis.Clause, doc *analysis.Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The document does not appear to address %s.", e.lexicon.Label(t))

	if page, ok := e.firstMention(t, doc); ok {
		fmt.Fprintf(&b, " The text mentions %s on page %d, but that passage was not recognised as a standalone provision.",
			e.lexicon.Label(t), page)
	}

	if topics := e.presentTopics(clauses); len(topics) > 0 {
		fmt.Fprintf(&b, " You can ask about: %s.", strings.Join(topics, ", "))
	}
	return b.String()
}

func (e *Engine) fallback(question string, clauses []analysis.Clause) string {
	topics := e.presentTopics(clauses)
	if len(topics) == 0 {
		return fmt.Sprintf("I could not find a provision that addresses \"%s\". "+
			"No standard provisions were identified in this document, so there are no specific topics to ask about.", question)
	}
	return fmt.Sprintf("I could not find a provision that addresses \"%s\". You can ask about: %s.",
		question, strings.Join(topics, ", "))
}

// presentTopics lists the labels of clause types present, in lexicon order.
func (e *Engine) presentTopics(clauses []analysis.Clause) []string {
	var types []analysis.ClauseType
	for _, c := range clauses {
		if !slices.Contains(types, c.Type) {
			types = append(types, c.Type)
		}
	}
	slices.SortStableFunc(types, func(a, b analysis.ClauseType) int {
		return e.lexicon.Order(a) - e.lexicon.Order(b)
	})

	labels := make([]string, len(types))
	for i, t := range types {
		labels[i] = e.lexicon.Label(t)
	}
	return labels
}

// firstMention finds the page of the first passage of doc that mentions a
// topic term of t.
func (e *Engine) firstMention(t analysis.ClauseType, doc *analysis.Document) (int, bool) {
	if doc == nil {
		return 0, false
	}
	seg := analysis.Segmenter{MinLength: 1, MaxLength: 400}
	for _, span := range seg.Segment(doc.Text) {
		if e.lexicon.MentionsTopic(t, analysis.Normalize(doc.Text[span.Start:span.End])) {
			return doc.PageAt(span.Start), true
		}
	}
	return 0, false
}

// mostRelevant returns the index of the clause sharing the most content
// words with the question. Ties keep the earliest clause.
func mostRelevant(clauses []analysis.Clause, question string) int {
	terms := contentWords(question)
	best, bestScore := 0, -1
	for i, c := range clauses {
		words := make(map[string]bool)
		for _, w := range analysis.Words(analysis.Normalize(c.Content)) {
			words[w] = true
		}
		score := 0
		for _, term := range terms {
			if words[term] {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}

func contentWords(normalized string) []string {
	var out []string
	for _, w := range analysis.Words(normalized) {
		if len(w) < 3 || stopWords[w] || slices.Contains(out, w) {
			continue
		}
		out = append(out, w)
	}
	return out
}

// keySentences selects up to three sentences carrying an obligation or a
// number, in document order. Clauses without such sentences yield their
// first sentence.
func keySentences(content string) []string {
	var sentences []string
	for _, s := range analysis.Sentences(strings.Join(strings.Fields(stripHeading(content)), " ")) {
		if len(strings.Fields(s)) >= 3 {
			sentences = append(sentences, s)
		}
	}

	var out []string
	for _, s := range sentences {
		if len(out) == maxKeySentences {
			break
		}
		if isKeySentence(s) {
			out = append(out, s)
		}
	}
	switch {
	case len(out) > 0:
	case len(sentences) > 0:
		out = append(out, sentences[0])
	default:
		out = append(out, strings.Join(strings.Fields(content), " "))
	}
	return out
}

// stripHeading drops a short unpunctuated first line such as "3. Payment".
func stripHeading(content string) string {
	i := strings.IndexByte(content, '\n')
	if i < 0 {
		return content
	}
	first := strings.TrimSpace(content[:i])
	if first == "" || len(first) > 80 || strings.ContainsAny(first[len(first)-1:], ".;:!?") {
		return content
	}
	return content[i+1:]
}

func isKeySentence(s string) bool {
	if strings.ContainsAny(s, "0123456789") {
		return true
	}
	normalized := analysis.Normalize(s)
	for _, w := range obligationWords {
		if strings.Contains(normalized, w) {
			return true
		}
	}
	return false
}
