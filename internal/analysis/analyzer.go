package analysis

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
)

// Analyzer runs the full pipeline: segment, classify, score, summarise.
// It holds no per-document state and is safe for concurrent use.
type Analyzer struct {
	lexicon    *Lexicon
	segmenter  Segmenter
	classifier *Classifier
	scorer     *Scorer
	summarizer *Summarizer
	workers    int
	logger     *slog.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithSegmenter replaces the default segmenter.
func WithSegmenter(s Segmenter) Option {
	return func(a *Analyzer) {
		a.segmenter = s
	}
}

// WithWorkers bounds the number of candidates classified concurrently.
// Non-positive values use GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.workers = n
		}
	}
}

// WithLogger sets the logger used for pipeline diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAnalyzer creates an Analyzer over lex.
func NewAnalyzer(lex *Lexicon, opts ...Option) *Analyzer {
	a := &Analyzer{
		lexicon:    lex,
		segmenter:  NewSegmenter(0, 0),
		classifier: NewClassifier(lex),
		scorer:     NewScorer(lex),
		summarizer: NewSummarizer(lex),
		workers:    runtime.GOMAXPROCS(0),
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Lexicon returns the lexicon the analyzer was built with.
func (a *Analyzer) Lexicon() *Lexicon {
	return a.lexicon
}

// Analyze produces the report for doc. Candidates are classified and scored
// concurrently; each result lands in its candidate's slot so clause order
// matches document order regardless of scheduling. Unclassified candidates
// are dropped. A cancelled context aborts the run with the context's error.
func (a *Analyzer) Analyze(ctx context.Context, doc *Document) (*Report, error) {
	if doc == nil || doc.Empty() {
		return nil, ErrEmptyDocument
	}

	start := time.Now()
	spans := a.segmenter.Segment(doc.Text)
	slots := make([]*Clause, len(spans))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workerCount(len(spans)))

	for i, span := range spans {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			slots[i] = a.clauseAt(doc, span)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	clauses := make([]Clause, 0, len(spans))
	for _, c := range slots {
		if c != nil {
			clauses = append(clauses, *c)
		}
	}

	report := NewReport(doc.ID, clauses, a.summarizer.Summarize(clauses))

	a.logger.Debug(
		"document analyzed",
		"document_id", doc.ID,
		"candidates", len(spans),
		"clauses", len(clauses),
		"high", report.Risk.High,
		"duration", time.Since(start),
	)

	return report, nil
}

func (a *Analyzer) clauseAt(doc *Document, span Span) *Clause {
	content := doc.Text[span.Start:span.End]
	normalized := Normalize(content)

	class := a.classifier.classify(normalized)
	if class.Type == TypeUnclassified {
		return nil
	}

	rule, _ := a.lexicon.Rule(class.Type)
	return &Clause{
		Type:        class.Type,
		Content:     content,
		Description: rule.Description,
		Risk:        a.scorer.score(class.Type, normalized),
		Page:        doc.PageAt(span.Start),
		Start:       span.Start,
		End:         span.End,
		Score:       class.Score,
	}
}

func (a *Analyzer) workerCount(candidates int) int {
	return max(min(a.workers, candidates), 1)
}
