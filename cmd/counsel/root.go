package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/JaimeStill/counsel/internal/analysis"
	"github.com/JaimeStill/counsel/internal/extract"
	"github.com/JaimeStill/counsel/pkg/formatting"
	"github.com/JaimeStill/counsel/pkg/logging"
)

type rootOptions struct {
	lexicon   string
	maxSize   string
	pdftotext string
	workers   int
	minLength int
	maxLength int
	logLevel  string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "counsel",
		Short: "Analyse contracts for clauses, risk, and answers",
		Long: `Counsel extracts text from a PDF, DOCX or plain text contract, identifies
and risk-scores its clauses, and answers questions about it.

Available commands:
  analyze  - Print the summary, risk tally and clauses of a document
  ask      - Ask questions about a document
  export   - Write the analysis report as JSON
  lexicon  - Print the active clause lexicon as TOML`,
		Version:      version,
		SilenceUsage: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.lexicon, "lexicon", "", "TOML lexicon file (default: built-in lexicon)")
	pf.StringVar(&opts.maxSize, "max-size", "10MB", "maximum document size")
	pf.StringVar(&opts.pdftotext, "pdftotext", extract.DefaultPDFToText, "path to the pdftotext binary")
	pf.IntVar(&opts.workers, "workers", 0, "concurrent clause classifiers (default: GOMAXPROCS)")
	pf.IntVar(&opts.minLength, "min-clause-length", analysis.DefaultMinClauseLength, "shortest clause candidate in bytes")
	pf.IntVar(&opts.maxLength, "max-clause-length", analysis.DefaultMaxClauseLength, "block length above which blocks split into sentences")
	pf.StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newAnalyzeCommand(opts),
		newAskCommand(opts),
		newExportCommand(opts),
		newLexiconCommand(opts),
	)

	return cmd
}

// pipeline is the in-process equivalent of the service's sessions system.
type pipeline struct {
	analyzer  *analysis.Analyzer
	extractor extract.Extractor
	maxSize   int64
	logger    *slog.Logger
	logs      io.Closer
}

func (p *pipeline) Close() error {
	return p.logs.Close()
}

// analyzed is one document run through the pipeline.
type analyzed struct {
	filename string
	doc      *analysis.Document
	report   *analysis.Report
}

func (o *rootOptions) loadLexicon() (*analysis.Lexicon, error) {
	if o.lexicon == "" {
		return analysis.DefaultLexicon(), nil
	}
	return analysis.LoadLexicon(o.lexicon)
}

func (o *rootOptions) pipeline(cmd *cobra.Command) (*pipeline, error) {
	cfg := &logging.Config{Level: o.logLevel, Format: "text"}
	if err := cfg.Finalize(nil); err != nil {
		return nil, fmt.Errorf("invalid --log-level: %w", err)
	}

	maxSize, err := formatting.ParseBytes(o.maxSize)
	if err != nil {
		return nil, fmt.Errorf("invalid --max-size: %w", err)
	}

	lex, err := o.loadLexicon()
	if err != nil {
		return nil, err
	}

	logger, logs := logging.NewWithWriter(cfg, cmd.ErrOrStderr())

	return &pipeline{
		analyzer: analysis.NewAnalyzer(
			lex,
			analysis.WithSegmenter(analysis.NewSegmenter(o.minLength, o.maxLength)),
			analysis.WithWorkers(o.workers),
			analysis.WithLogger(logger),
		),
		extractor: extract.New(
			logger,
			extract.WithPDFToText(o.pdftotext),
			extract.WithMaxTextSize(extract.TextLimit(maxSize)),
		),
		maxSize: maxSize,
		logger:  logger,
		logs:    logs,
	}, nil
}

func (p *pipeline) analyzeFile(ctx context.Context, path string) (*analyzed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	payload := extract.Payload{
		Filename: filepath.Base(path),
		Data:     data,
	}
	if _, err := extract.Validate(payload, p.maxSize); err != nil {
		return nil, err
	}

	text, err := p.extractor.Extract(ctx, payload)
	if err != nil {
		return nil, err
	}

	doc := analysis.NewDocument(uuid.New(), text.Content, text.Pages)
	report, err := p.analyzer.Analyze(ctx, doc)
	if err != nil {
		return nil, err
	}

	p.logger.Info(
		"document analyzed",
		"filename", payload.Filename,
		"clauses", len(report.Clauses),
		"high_risk", report.Risk.High,
	)

	return &analyzed{filename: payload.Filename, doc: doc, report: report}, nil
}
