package sessions

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/counsel/internal/analysis"
	"github.com/JaimeStill/counsel/internal/extract"
	"github.com/JaimeStill/counsel/internal/qa"
)

// Domain errors for session operations.
var (
	ErrNotFound       = errors.New("session not found")
	ErrDuplicate      = errors.New("session already exists")
	ErrNoDocument     = errors.New("no document has been analysed in this session")
	ErrSuperseded     = errors.New("upload superseded by a newer upload")
	ErrInvalidFilter  = errors.New("invalid clause filter")
	ErrInvalidFile    = errors.New("invalid file")
	ErrInvalidRequest = errors.New("invalid request body")
	ErrInvalidID      = errors.New("invalid session id")
)

// MapHTTPStatus maps session domain errors, and the analysis errors they
// wrap, to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate),
		errors.Is(err, ErrNoDocument),
		errors.Is(err, ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidFilter),
		errors.Is(err, ErrInvalidFile),
		errors.Is(err, ErrInvalidRequest),
		errors.Is(err, ErrInvalidID),
		errors.Is(err, qa.ErrEmptyQuestion):
		return http.StatusBadRequest
	case errors.Is(err, analysis.ErrEmptyDocument):
		return http.StatusUnprocessableEntity
	}
	return extract.MapHTTPStatus(err)
}
