// Package sessions stores analysis sessions: the uploaded source document, its
// report, and the question-and-answer conversation about it. Each session holds
// at most one document; a new upload replaces the previous document, report,
// and conversation atomically.
package sessions

import (
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/counsel/internal/analysis"
)

// Session is a workspace that holds at most one analysed document.
type Session struct {
	ID        uuid.UUID     `json:"id"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	Document  *DocumentInfo `json:"document,omitempty"`
}

// DocumentInfo describes the document currently attached to a session.
type DocumentInfo struct {
	ID          uuid.UUID `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	PageCount   int       `json:"page_count"`
	TextLength  int       `json:"text_length"`
	WordCount   int       `json:"word_count"`
	StorageKey  string    `json:"storage_key"`
	AnalyzedAt  time.Time `json:"analyzed_at"`
}

// Exchange is the result of asking a question about a session's document.
type Exchange struct {
	Question string              `json:"question"`
	Answer   string              `json:"answer"`
	Topic    analysis.ClauseType `json:"topic,omitempty"`
	Matched  bool                `json:"matched"`
}

// AskRequest is the body of a question submission.
type AskRequest struct {
	Question string `json:"question"`
}

// Download is the original uploaded payload. The caller must close Body.
type Download struct {
	Body        io.ReadCloser
	ContentType string
	Filename    string
}

// document is the persisted state needed to rebuild an analysis.Document.
type document struct {
	info    DocumentInfo
	text    string
	pages   []analysis.PageOffset
	summary string
}

func (d *document) analysisDocument() *analysis.Document {
	return analysis.NewDocument(d.info.ID, d.text, d.pages)
}
