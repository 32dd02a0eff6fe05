package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/counsel/pkg/logging"
)

func TestFinalizeDefaults(t *testing.T) {
	cfg := &logging.Config{}

	require.NoError(t, cfg.Finalize(nil))

	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "text", cfg.Format)
	assert.Equal(t, 100, cfg.MaxSizeMB)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestFinalizeEnv(t *testing.T) {
	t.Setenv("TEST_LOG_LEVEL", "debug")
	t.Setenv("TEST_LOG_FORMAT", "json")
	t.Setenv("TEST_LOG_COMPRESS", "true")

	cfg := &logging.Config{}
	require.NoError(t, cfg.Finalize(&logging.Env{
		Level:    "TEST_LOG_LEVEL",
		Format:   "TEST_LOG_FORMAT",
		Compress: "TEST_LOG_COMPRESS",
	}))

	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, "json", cfg.Format)
	assert.True(t, cfg.Compress)
}

func TestFinalizeValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  logging.Config
	}{
		{"bad level", logging.Config{Level: "loud"}},
		{"bad format", logging.Config{Format: "xml"}},
		{"negative rotation", logging.Config{MaxBackups: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.cfg.Finalize(nil))
		})
	}
}

func TestMerge(t *testing.T) {
	base := &logging.Config{Level: "info", Format: "text"}
	base.Merge(&logging.Config{Level: "warn", File: "counsel.log"})

	assert.Equal(t, "warn", base.Level)
	assert.Equal(t, "text", base.Format)
	assert.Equal(t, "counsel.log", base.File)
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	cfg := &logging.Config{Level: "debug", Format: "json"}
	require.NoError(t, cfg.Finalize(nil))

	logger, closer := logging.NewWithWriter(cfg, &buf)
	defer closer.Close()

	logger.Debug("analysed", "clauses", 6)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "analysed", entry["msg"])
	assert.Equal(t, float64(6), entry["clauses"])
}

func TestNewLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	cfg := &logging.Config{Level: "warn"}
	require.NoError(t, cfg.Finalize(nil))

	logger, _ := logging.NewWithWriter(cfg, &buf)
	logger.Info("hidden")

	assert.Empty(t, buf.String())
}

func TestNewWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counsel.log")
	cfg := &logging.Config{File: path}
	require.NoError(t, cfg.Finalize(nil))

	var console bytes.Buffer
	logger, closer := logging.NewWithWriter(cfg, &console)
	logger.Info("started", "port", 8080)
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "msg=started")
	assert.Contains(t, console.String(), "msg=started")
}
