package handlers_test

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/counsel/pkg/handlers"
)

func TestRespondJSON(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		data       any
		wantStatus int
	}{
		{
			name:       "200 with map",
			status:     http.StatusOK,
			data:       map[string]string{"key": "value"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "201 with struct",
			status:     http.StatusCreated,
			data:       struct{ ID int }{ID: 42},
			wantStatus: http.StatusCreated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handlers.RespondJSON(rec, tt.status, tt.data)

			res := rec.Result()
			defer res.Body.Close()

			assert.Equal(t, tt.wantStatus, res.StatusCode)
			assert.Equal(t, "application/json", res.Header.Get("Content-Type"))

			body, _ := io.ReadAll(res.Body)
			var parsed map[string]any
			require.NoError(t, json.Unmarshal(body, &parsed))
		})
	}
}

func TestRespondError(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	for _, status := range []int{http.StatusBadRequest, http.StatusInternalServerError} {
		rec := httptest.NewRecorder()

		handlers.RespondError(rec, logger, status, errors.New("invalid input"))

		res := rec.Result()
		assert.Equal(t, status, res.StatusCode)
		assert.Equal(t, "application/json", res.Header.Get("Content-Type"))

		var parsed map[string]string
		require.NoError(t, json.NewDecoder(res.Body).Decode(&parsed))
		assert.Equal(t, "invalid input", parsed["error"])
		res.Body.Close()
	}
}

func TestRespondAttachment(t *testing.T) {
	rec := httptest.NewRecorder()

	handlers.RespondAttachment(rec, "legal-analysis-2024-03-05.json", "application/json", strings.NewReader(`{"a":1}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename=legal-analysis-2024-03-05.json`, rec.Header().Get("Content-Disposition"))
	assert.JSONEq(t, `{"a":1}`, rec.Body.String())
}
