package analysis

import (
	"encoding/json"
	"time"
)

// GeneratedBy identifies the producer in exported reports.
const GeneratedBy = "Counsel Legal Document Analysis"

// ExportMetadata describes the producer of an export.
type ExportMetadata struct {
	GeneratedBy string `json:"generatedBy"`
	Version     string `json:"version"`
}

// Export is the portable JSON projection of a report.
type Export struct {
	Summary   string         `json:"summary"`
	Clauses   []Clause       `json:"clauses"`
	Risk      RiskSummary    `json:"risk"`
	Filename  string         `json:"filename"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  ExportMetadata `json:"metadata"`
}

// NewExport projects a report into its export form. It has no side effects;
// the caller supplies the timestamp.
func NewExport(r *Report, filename string, timestamp time.Time, version string) Export {
	if filename == "" {
		filename = "unknown"
	}
	clauses := r.Clauses
	if clauses == nil {
		clauses = []Clause{}
	}
	return Export{
		Summary:   r.Summary,
		Clauses:   clauses,
		Risk:      r.Risk,
		Filename:  filename,
		Timestamp: timestamp.UTC(),
		Metadata: ExportMetadata{
			GeneratedBy: GeneratedBy,
			Version:     version,
		},
	}
}

// Marshal encodes the export as indented JSON.
func (e Export) Marshal() ([]byte, error) {
	return json.MarshalIndent(e, "", "  ")
}

// ExportFilename returns the attachment name for an export taken at t.
func ExportFilename(t time.Time) string {
	return "legal-analysis-" + t.UTC().Format(time.DateOnly) + ".json"
}
