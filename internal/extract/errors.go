package extract

import (
	"errors"
	"net/http"
)

// Input boundary errors.
var (
	ErrInvalidPayloadType = errors.New("unsupported file type: upload a PDF, DOCX, or plain text document")
	ErrPayloadTooLarge    = errors.New("file exceeds maximum upload size")
	ErrExtractionFailed   = errors.New("text extraction failed")
	ErrPDFToolNotFound    = errors.New("pdftotext not found: install poppler-utils to extract PDF text")

	errTextLimit = errors.New("extracted text exceeds size limit")
)

// MapHTTPStatus maps extraction errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidPayloadType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrExtractionFailed):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
