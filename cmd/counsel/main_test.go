package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/counsel/internal/analysis"
	"github.com/JaimeStill/counsel/internal/extract"
)

const contract = "MASTER SERVICES AGREEMENT\n\n" +
	"1. Termination\nEither party may terminate this agreement with 30 days written notice. In case of material breach, the non-breaching party may terminate immediately upon written notice.\n\n" +
	"2. Payment\nPayment terms are net 30 days from invoice date. Late payments shall accrue interest at 1.5% per month or the maximum rate allowed by law, whichever is lower.\n\n" +
	"3. Indemnity\nParty A shall indemnify Party B for all claims arising from Party A's breach of representations and warranties, negligence, or willful misconduct. This includes attorney fees and settlement amounts.\n"

func writeContract(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agreement.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAnalyze(t *testing.T) {
	path := writeContract(t, contract)

	out, err := run(t, "", "analyze", path)
	require.NoError(t, err)

	assert.Contains(t, out, "agreement.txt")
	assert.Contains(t, out, "Risk: ")
	assert.Contains(t, out, "Payment")
	assert.Contains(t, out, "Indemnification")
}

func TestAnalyzeJSON(t *testing.T) {
	path := writeContract(t, contract)

	out, err := run(t, "", "analyze", "--json", path)
	require.NoError(t, err)

	var report analysis.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, len(report.Clauses), report.Risk.Total)
	assert.NotEmpty(t, report.ClausesOf(analysis.TypePayment))
}

func TestAnalyzeRejectsPayload(t *testing.T) {
	t.Run("unsupported type", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "image.png")
		require.NoError(t, os.WriteFile(path, []byte("\x89PNG\r\n\x1a\n0000"), 0644))

		_, err := run(t, "", "analyze", path)
		assert.ErrorIs(t, err, extract.ErrInvalidPayloadType)
	})

	t.Run("too large", func(t *testing.T) {
		path := writeContract(t, contract)

		_, err := run(t, "", "--max-size", "100B", "analyze", path)
		assert.ErrorIs(t, err, extract.ErrPayloadTooLarge)
	})

	t.Run("blank", func(t *testing.T) {
		path := writeContract(t, "  \n\n ")

		_, err := run(t, "", "analyze", path)
		assert.ErrorIs(t, err, analysis.ErrEmptyDocument)
	})
}

func TestInvalidLogLevel(t *testing.T) {
	path := writeContract(t, contract)

	_, err := run(t, "", "--log-level", "loud", "analyze", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --log-level")

	_, err = run(t, "", "--log-level", "DEBUG", "analyze", path)
	assert.NoError(t, err)
}

func TestAsk(t *testing.T) {
	path := writeContract(t, contract)

	out, err := run(t, "", "ask", path, "What", "are", "the", "payment", "terms?")
	require.NoError(t, err)
	assert.Contains(t, out, "30 days")
}

func TestAskRequiresQuestion(t *testing.T) {
	path := writeContract(t, contract)

	_, err := run(t, "", "ask", path)
	assert.Error(t, err)
}

func TestAskInteractive(t *testing.T) {
	path := writeContract(t, contract)

	out, err := run(t, "How can the agreement be terminated?\n\nexit\nignored\n", "ask", "-i", path)
	require.NoError(t, err)

	assert.Contains(t, out, "30 days written notice")
	assert.Equal(t, 3, strings.Count(out, "> "), "blank line is skipped and input stops at exit")
}

func TestExport(t *testing.T) {
	path := writeContract(t, contract)

	t.Run("stdout", func(t *testing.T) {
		out, err := run(t, "", "export", path)
		require.NoError(t, err)

		var exp analysis.Export
		require.NoError(t, json.Unmarshal([]byte(out), &exp))
		assert.Equal(t, "agreement.txt", exp.Filename)
		assert.Equal(t, analysis.GeneratedBy, exp.Metadata.GeneratedBy)
		assert.Equal(t, version, exp.Metadata.Version)
		assert.Equal(t, len(exp.Clauses), exp.Risk.Total)
	})

	t.Run("file", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "report.json")

		_, err := run(t, "", "export", "-o", target, path)
		require.NoError(t, err)

		data, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.True(t, json.Valid(data))
	})
}

func TestLexicon(t *testing.T) {
	out, err := run(t, "", "lexicon")
	require.NoError(t, err)

	lex, err := analysis.ParseLexicon([]byte(out))
	require.NoError(t, err)
	assert.Len(t, lex.Rules(), len(analysis.DefaultDefinition().Types))

	t.Run("round trip through --lexicon", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "lexicon.toml")
		require.NoError(t, os.WriteFile(path, []byte(out), 0644))

		again, err := run(t, "", "--lexicon", path, "lexicon")
		require.NoError(t, err)
		assert.Equal(t, out, again)
	})

	t.Run("invalid file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "lexicon.toml")
		require.NoError(t, os.WriteFile(path, []byte("threshold = -1\n"), 0644))

		_, err := run(t, "", "--lexicon", path, "lexicon")
		assert.ErrorIs(t, err, analysis.ErrInvalidLexicon)
	})
}
