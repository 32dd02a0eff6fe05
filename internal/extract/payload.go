// Package extract converts uploaded PDF, DOCX, and plain text payloads into
// raw text with a page-offset map.
package extract

import (
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/JaimeStill/counsel/pkg/formatting"
)

// Kind is an accepted payload format.
type Kind string

const (
	KindPDF  Kind = "pdf"
	KindDOCX Kind = "docx"
	KindText Kind = "text"
)

// Canonical content types for accepted kinds.
const (
	ContentTypePDF  = "application/pdf"
	ContentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	ContentTypeText = "text/plain"
)

// ContentType returns the canonical media type for k.
func (k Kind) ContentType() string {
	switch k {
	case KindPDF:
		return ContentTypePDF
	case KindDOCX:
		return ContentTypeDOCX
	case KindText:
		return ContentTypeText
	}
	return "application/octet-stream"
}

var mediaKinds = map[string]Kind{
	ContentTypePDF:  KindPDF,
	ContentTypeDOCX: KindDOCX,
	ContentTypeText: KindText,
}

var extensionKinds = map[string]Kind{
	".pdf":  KindPDF,
	".docx": KindDOCX,
	".txt":  KindText,
	".text": KindText,
}

// Payload is an uploaded file before extraction.
type Payload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Size returns the payload length in bytes.
func (p Payload) Size() int64 {
	return int64(len(p.Data))
}

// Detect determines the payload kind from its declared content type, then
// its filename extension, then by sniffing the data.
func Detect(p Payload) (Kind, error) {
	declared := strings.TrimSpace(p.ContentType)
	if declared != "" {
		if media, _, err := mime.ParseMediaType(declared); err == nil {
			media = strings.ToLower(media)
			if kind, ok := mediaKinds[media]; ok {
				return kind, nil
			}
			if media != "application/octet-stream" {
				return "", fmt.Errorf("%w: %s", ErrInvalidPayloadType, media)
			}
		}
	}

	if kind, ok := extensionKinds[strings.ToLower(filepath.Ext(p.Filename))]; ok {
		return kind, nil
	}

	sniffed, _, _ := mime.ParseMediaType(http.DetectContentType(p.Data))
	if kind, ok := mediaKinds[sniffed]; ok {
		return kind, nil
	}

	return "", fmt.Errorf("%w: %s", ErrInvalidPayloadType, p.Filename)
}

// Validate checks the payload type and then its size, before any storage or
// extraction work.
func Validate(p Payload, maxSize int64) (Kind, error) {
	kind, err := Detect(p)
	if err != nil {
		return "", err
	}
	if maxSize > 0 && p.Size() > maxSize {
		return "", fmt.Errorf(
			"%w: %s exceeds %s",
			ErrPayloadTooLarge,
			formatting.FormatBytes(p.Size(), 1),
			formatting.FormatBytes(maxSize, 0),
		)
	}
	return kind, nil
}
