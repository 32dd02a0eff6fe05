package storage_test

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/counsel/pkg/storage"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/devstoreaccount1;"

func newSystem(t *testing.T) storage.System {
	t.Helper()
	sys, err := storage.New(&storage.Config{
		ContainerName:    "source-documents",
		ConnectionString: azuriteConnString,
	}, slog.Default())
	require.NoError(t, err)
	return sys
}

func TestFinalize(t *testing.T) {
	cfg := storage.Config{ConnectionString: "conn"}
	require.NoError(t, cfg.Finalize(nil))
	assert.Equal(t, storage.DefaultContainer, cfg.ContainerName)

	t.Setenv("TEST_CONTAINER", "uploads")
	t.Setenv("TEST_CONN", "override")
	cfg = storage.Config{}
	require.NoError(t, cfg.Finalize(&storage.Env{ContainerName: "TEST_CONTAINER", ConnectionString: "TEST_CONN"}))
	assert.Equal(t, "uploads", cfg.ContainerName)
	assert.Equal(t, "override", cfg.ConnectionString)

	cfg = storage.Config{}
	assert.ErrorContains(t, cfg.Finalize(nil), "connection_string required")
}

func TestMerge(t *testing.T) {
	base := storage.Config{ContainerName: "source-documents", ConnectionString: "base"}
	base.Merge(&storage.Config{ConnectionString: "overlay"})

	assert.Equal(t, "source-documents", base.ContainerName)
	assert.Equal(t, "overlay", base.ConnectionString)
}

func TestNew(t *testing.T) {
	sys := newSystem(t)
	assert.False(t, sys.Ready(), "not ready before the container is ensured")

	_, err := storage.New(&storage.Config{ContainerName: "c", ConnectionString: "not-a-connection-string"}, slog.Default())
	assert.Error(t, err)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "sessions/abc/master%20services.docx", storage.Key("sessions", "abc", "master services.docx"))
	assert.Equal(t, "a/b%2Fc", storage.Key("a", "b/c"))
}

func TestInvalidKeys(t *testing.T) {
	sys := newSystem(t)
	ctx := context.Background()

	tests := []struct {
		key  string
		want error
	}{
		{"", storage.ErrEmptyKey},
		{"/abs/key", storage.ErrInvalidKey},
		{"sessions/../secret", storage.ErrInvalidKey},
		{"sessions/./doc", storage.ErrInvalidKey},
		{"sessions//doc", storage.ErrInvalidKey},
		{`sessions\doc`, storage.ErrInvalidKey},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.key), func(t *testing.T) {
			assert.ErrorIs(t, sys.Upload(ctx, tt.key, bytes.NewReader(nil), "text/plain"), tt.want)

			_, err := sys.Download(ctx, tt.key)
			assert.ErrorIs(t, err, tt.want)

			assert.ErrorIs(t, sys.Delete(ctx, tt.key), tt.want)

			_, err = sys.Exists(ctx, tt.key)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{storage.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("wrapped: %w", storage.ErrNotFound), http.StatusNotFound},
		{storage.ErrEmptyKey, http.StatusBadRequest},
		{storage.ErrInvalidKey, http.StatusBadRequest},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, storage.MapHTTPStatus(tt.err))
		})
	}
}
