package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/counsel/internal/analysis"
	"github.com/JaimeStill/counsel/internal/api"
	"github.com/JaimeStill/counsel/internal/config"
	"github.com/JaimeStill/counsel/internal/infrastructure"
	"github.com/JaimeStill/counsel/pkg/database"
	"github.com/JaimeStill/counsel/pkg/logging"
	"github.com/JaimeStill/counsel/pkg/middleware"
	"github.com/JaimeStill/counsel/pkg/pagination"
	"github.com/JaimeStill/counsel/pkg/storage"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/devstoreaccount1;"

func validConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     "1m",
			WriteTimeout:    "15m",
			ShutdownTimeout: "30s",
		},
		Database: database.Config{
			Host:            "localhost",
			Port:            5432,
			Name:            "counsel",
			User:            "counsel",
			Password:        "counsel",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: "15m",
			ConnTimeout:     "5s",
		},
		Storage: storage.Config{
			ContainerName:    "source-documents",
			ConnectionString: azuriteConnString,
		},
		API: config.APIConfig{
			BasePath:      "/api",
			MaxUploadSize: "10MB",
			CORS: middleware.CORSConfig{
				Enabled: false,
			},
			Pagination: pagination.Config{
				DefaultPageSize: 20,
				MaxPageSize:     100,
			},
		},
		Analysis: config.AnalysisConfig{
			MinClauseLength: analysis.DefaultMinClauseLength,
			MaxClauseLength: analysis.DefaultMaxClauseLength,
			PDFToTextPath:   "pdftotext",
		},
		Logging:         logging.Config{Level: "error", Format: "text"},
		ShutdownTimeout: "30s",
		Version:         "0.1.0",
	}
}

func setupInfra(t *testing.T) *infrastructure.Infrastructure {
	t.Helper()
	infra, err := infrastructure.New(validConfig())
	require.NoError(t, err)
	t.Cleanup(func() { infra.Close() })
	return infra
}

func TestNewModule(t *testing.T) {
	m, err := api.NewModule(validConfig(), setupInfra(t))
	require.NoError(t, err)
	assert.Equal(t, "/api", m.Prefix())
}

func TestNewModuleInvalidLexicon(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicon.toml")
	require.NoError(t, os.WriteFile(path, []byte("threshold = 0\n"), 0644))

	cfg := validConfig()
	cfg.Analysis.LexiconFile = path

	_, err := api.NewModule(cfg, setupInfra(t))
	assert.ErrorIs(t, err, analysis.ErrInvalidLexicon)
}

func TestNewRuntime(t *testing.T) {
	runtime, err := api.NewRuntime(validConfig(), setupInfra(t))
	require.NoError(t, err)

	assert.Equal(t, 20, runtime.Pagination.DefaultPageSize)
	assert.Equal(t, 100, runtime.Pagination.MaxPageSize)
	assert.NotNil(t, runtime.Logger)
	assert.NotNil(t, runtime.Database)
	assert.NotNil(t, runtime.Storage)
	assert.NotNil(t, runtime.Lifecycle)
	assert.NotNil(t, runtime.Metrics)
	assert.NotNil(t, runtime.Extractor)
	require.NotNil(t, runtime.Analyzer)
	assert.Len(t, runtime.Analyzer.Lexicon().Rules(), len(analysis.DefaultDefinition().Types))
}

func TestNewDomain(t *testing.T) {
	cfg := validConfig()
	runtime, err := api.NewRuntime(cfg, setupInfra(t))
	require.NoError(t, err)

	domain := api.NewDomain(runtime, cfg)
	require.NotNil(t, domain)
	assert.NotNil(t, domain.Sessions)
}

func TestLexiconRoute(t *testing.T) {
	m, err := api.NewModule(validConfig(), setupInfra(t))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	m.Serve(rec, httptest.NewRequest(http.MethodGet, "/api/lexicon", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var info api.LexiconInfo
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&info))

	assert.Equal(t, analysis.DefaultThreshold, info.Threshold)
	require.NotEmpty(t, info.Types)

	byType := make(map[analysis.ClauseType]api.LexiconEntry, len(info.Types))
	for _, e := range info.Types {
		byType[e.Type] = e
	}
	assert.Equal(t, analysis.RiskHigh, byType[analysis.TypeIndemnification].Baseline)
	assert.Equal(t, analysis.RiskLow, byType[analysis.TypePayment].Baseline)
	assert.NotEmpty(t, byType[analysis.TypeTermination].Description)
}
