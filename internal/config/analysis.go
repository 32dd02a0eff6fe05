package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/JaimeStill/counsel/internal/analysis"
	"github.com/JaimeStill/counsel/internal/extract"
)

const (
	EnvAnalysisLexiconFile     = "COUNSEL_ANALYSIS_LEXICON_FILE"
	EnvAnalysisWorkers         = "COUNSEL_ANALYSIS_WORKERS"
	EnvAnalysisMinClauseLength = "COUNSEL_ANALYSIS_MIN_CLAUSE_LENGTH"
	EnvAnalysisMaxClauseLength = "COUNSEL_ANALYSIS_MAX_CLAUSE_LENGTH"
	EnvAnalysisPDFToText       = "COUNSEL_ANALYSIS_PDFTOTEXT_PATH"
)

// AnalysisConfig holds clause analysis and text extraction settings.
// An empty LexiconFile selects the built-in lexicon. Zero Workers uses GOMAXPROCS.
type AnalysisConfig struct {
	LexiconFile     string `toml:"lexicon_file"`
	Workers         int    `toml:"workers"`
	MinClauseLength int    `toml:"min_clause_length"`
	MaxClauseLength int    `toml:"max_clause_length"`
	PDFToTextPath   string `toml:"pdftotext_path"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *AnalysisConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *AnalysisConfig) Merge(overlay *AnalysisConfig) {
	if overlay.LexiconFile != "" {
		c.LexiconFile = overlay.LexiconFile
	}
	if overlay.Workers != 0 {
		c.Workers = overlay.Workers
	}
	if overlay.MinClauseLength != 0 {
		c.MinClauseLength = overlay.MinClauseLength
	}
	if overlay.MaxClauseLength != 0 {
		c.MaxClauseLength = overlay.MaxClauseLength
	}
	if overlay.PDFToTextPath != "" {
		c.PDFToTextPath = overlay.PDFToTextPath
	}
}

// Lexicon loads LexiconFile, or returns the built-in lexicon when none is set.
func (c *AnalysisConfig) Lexicon() (*analysis.Lexicon, error) {
	if c.LexiconFile == "" {
		return analysis.DefaultLexicon(), nil
	}
	return analysis.LoadLexicon(c.LexiconFile)
}

// Segmenter returns a segmenter using the configured clause length bounds.
func (c *AnalysisConfig) Segmenter() analysis.Segmenter {
	return analysis.NewSegmenter(c.MinClauseLength, c.MaxClauseLength)
}

func (c *AnalysisConfig) loadDefaults() {
	if c.MinClauseLength == 0 {
		c.MinClauseLength = analysis.DefaultMinClauseLength
	}
	if c.MaxClauseLength == 0 {
		c.MaxClauseLength = analysis.DefaultMaxClauseLength
	}
	if c.PDFToTextPath == "" {
		c.PDFToTextPath = extract.DefaultPDFToText
	}
}

func (c *AnalysisConfig) loadEnv() {
	if v := os.Getenv(EnvAnalysisLexiconFile); v != "" {
		c.LexiconFile = v
	}
	if v := os.Getenv(EnvAnalysisWorkers); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Workers = n
		}
	}
	if v := os.Getenv(EnvAnalysisMinClauseLength); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MinClauseLength = n
		}
	}
	if v := os.Getenv(EnvAnalysisMaxClauseLength); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxClauseLength = n
		}
	}
	if v := os.Getenv(EnvAnalysisPDFToText); v != "" {
		c.PDFToTextPath = v
	}
}

func (c *AnalysisConfig) validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}
	if c.MinClauseLength < 1 {
		return fmt.Errorf("min_clause_length must be positive")
	}
	if c.MaxClauseLength < c.MinClauseLength {
		return fmt.Errorf("max_clause_length cannot be less than min_clause_length")
	}
	return nil
}
