package analysis_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/counsel/internal/analysis"
)

func TestExportRoundTrip(t *testing.T) {
	report, err := analysis.NewAnalyzer(analysis.DefaultLexicon()).
		Analyze(context.Background(), buildDocument(contractPages...))
	require.NoError(t, err)

	ts := time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)
	export := analysis.NewExport(report, "msa.pdf", ts, "1.0.0")

	data, err := export.Marshal()
	require.NoError(t, err)

	var decoded analysis.Export
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, report.Summary, decoded.Summary)
	assert.Equal(t, report.Clauses, decoded.Clauses)
	assert.Equal(t, report.Risk, decoded.Risk)
	assert.Equal(t, "msa.pdf", decoded.Filename)
	assert.True(t, ts.Equal(decoded.Timestamp))
	assert.Equal(t, analysis.GeneratedBy, decoded.Metadata.GeneratedBy)
	assert.Equal(t, "1.0.0", decoded.Metadata.Version)
}

func TestExportShape(t *testing.T) {
	report := analysis.NewReport(uuid.Nil, []analysis.Clause{
		{Type: analysis.TypeIndemnification, Risk: analysis.RiskHigh, Page: 6, Content: indemnificationText},
	}, "summary")

	data, err := analysis.NewExport(report, "", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), "dev").Marshal()
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))

	for _, key := range []string{"summary", "clauses", "risk", "filename", "timestamp", "metadata"} {
		assert.Contains(t, raw, key)
	}
	assert.Equal(t, "unknown", raw["filename"])
	assert.Equal(t, "2024-03-05T00:00:00Z", raw["timestamp"])
	assert.Equal(t, map[string]any{"generatedBy": analysis.GeneratedBy, "version": "dev"}, raw["metadata"])

	clause := raw["clauses"].([]any)[0].(map[string]any)
	assert.Equal(t, "high", clause["risk"])
	assert.Equal(t, "Indemnification", clause["type"])
}

func TestExportFilename(t *testing.T) {
	ts := time.Date(2024, 3, 5, 23, 59, 0, 0, time.UTC)

	assert.Equal(t, "legal-analysis-2024-03-05.json", analysis.ExportFilename(ts))
}
