package api

import (
	"fmt"

	"github.com/JaimeStill/counsel/internal/analysis"
	"github.com/JaimeStill/counsel/internal/config"
	"github.com/JaimeStill/counsel/internal/extract"
	"github.com/JaimeStill/counsel/internal/infrastructure"
	"github.com/JaimeStill/counsel/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration and the
// analysis pipeline shared by every request.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination pagination.Config
	Analyzer   *analysis.Analyzer
	Extractor  extract.Extractor
}

// NewRuntime creates an API runtime with a module-scoped logger.
// An invalid lexicon aborts startup.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) (*Runtime, error) {
	logger := infra.Logger.With("module", "api")

	lex, err := cfg.Analysis.Lexicon()
	if err != nil {
		return nil, fmt.Errorf("load lexicon: %w", err)
	}

	analyzer := analysis.NewAnalyzer(
		lex,
		analysis.WithSegmenter(cfg.Analysis.Segmenter()),
		analysis.WithWorkers(cfg.Analysis.Workers),
		analysis.WithLogger(logger),
	)

	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    logger,
			Metrics:   infra.Metrics,
			Database:  infra.Database,
			Storage:   infra.Storage,
		},
		Pagination: cfg.API.Pagination,
		Analyzer:   analyzer,
		Extractor: extract.New(
			logger,
			extract.WithPDFToText(cfg.Analysis.PDFToTextPath),
			extract.WithMaxTextSize(extract.TextLimit(cfg.API.MaxUploadSizeBytes())),
		),
	}, nil
}
