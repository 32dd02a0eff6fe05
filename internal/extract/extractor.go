package extract

import (
	"context"
	"log/slog"
	"strings"
)

const (
	// DefaultPDFToText is the pdftotext binary looked up on PATH.
	DefaultPDFToText = "pdftotext"

	// DefaultMaxTextSize bounds the decompressed or converted text of a
	// single payload.
	DefaultMaxTextSize int64 = 40 << 20
)

// Extractor turns a validated payload into text with a page map.
type Extractor interface {
	Extract(ctx context.Context, p Payload) (*Text, error)
}

type extractor struct {
	pdf     *pdfExtractor
	maxText int64
	logger  *slog.Logger
}

// Option configures the extractor returned by New.
type Option func(*extractor)

// WithRunner replaces the command runner used for pdftotext.
func WithRunner(r CommandRunner) Option {
	return func(e *extractor) {
		e.pdf.runner = r
	}
}

// WithPDFToText sets the path of the pdftotext binary.
func WithPDFToText(path string) Option {
	return func(e *extractor) {
		if path != "" {
			e.pdf.tool = path
		}
	}
}

// WithMaxTextSize caps the text a single payload may expand to. DOCX parts
// and pdftotext output beyond n bytes fail extraction. Non-positive values
// keep DefaultMaxTextSize.
func WithMaxTextSize(n int64) Option {
	return func(e *extractor) {
		if n > 0 {
			e.maxText = n
		}
	}
}

// TextLimit is the text cap used alongside an upload limit: four times the
// largest accepted payload.
func TextLimit(maxUpload int64) int64 {
	return 4 * maxUpload
}

// New creates an Extractor.
func New(logger *slog.Logger, opts ...Option) Extractor {
	logger = logger.With("system", "extract")
	e := &extractor{
		pdf: &pdfExtractor{
			tool:   DefaultPDFToText,
			runner: execRunner{},
			logger: logger,
		},
		maxText: DefaultMaxTextSize,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.pdf.maxText = e.maxText
	if r, ok := e.pdf.runner.(execRunner); ok {
		r.maxOutput = e.maxText
		e.pdf.runner = r
	}
	return e
}

// Extract detects the payload kind and extracts its text. Payload size is
// enforced by Validate before extraction; the expanded text is bounded by
// the extractor's text limit.
func (e *extractor) Extract(ctx context.Context, p Payload) (*Text, error) {
	kind, err := Detect(p)
	if err != nil {
		return nil, err
	}

	var text *Text
	switch kind {
	case KindPDF:
		text, err = e.pdf.extract(ctx, p.Data)
	case KindDOCX:
		text, err = extractDOCX(p.Data, e.maxText)
	default:
		text = fromPlain(string(p.Data))
	}
	if err != nil {
		return nil, err
	}

	e.logger.Debug(
		"text extracted",
		"filename", p.Filename,
		"kind", kind,
		"bytes", len(text.Content),
		"pages", text.PageCount,
		"blank", strings.TrimSpace(text.Content) == "",
	)

	return text, nil
}
