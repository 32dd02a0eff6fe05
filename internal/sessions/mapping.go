package sessions

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/google/uuid"

	"github.com/JaimeStill/counsel/internal/analysis"
	"github.com/JaimeStill/counsel/pkg/query"
	"github.com/JaimeStill/counsel/pkg/repository"
)

var sessionProjection = query.
	NewProjectionMap("public", "sessions", "s").
	Project("id", "ID").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt").
	Join("public", "documents", "d", "LEFT JOIN", "d.session_id = s.id").
	Project("id", "DocumentID").
	Project("filename", "Filename").
	Project("content_type", "ContentType").
	Project("size_bytes", "SizeBytes").
	Project("page_count", "PageCount").
	Project("text_length", "TextLength").
	Project("word_count", "WordCount").
	Project("storage_key", "StorageKey").
	Project("analyzed_at", "AnalyzedAt")

var documentProjection = query.
	NewProjectionMap("public", "documents", "d").
	Project("id", "ID").
	Project("filename", "Filename").
	Project("content_type", "ContentType").
	Project("size_bytes", "SizeBytes").
	Project("page_count", "PageCount").
	Project("text_length", "TextLength").
	Project("word_count", "WordCount").
	Project("storage_key", "StorageKey").
	Project("analyzed_at", "AnalyzedAt").
	Project("raw_text", "RawText").
	Project("page_offsets", "PageOffsets").
	Project("summary", "Summary").
	Project("session_id", "SessionID")

var clauseProjection = query.
	NewProjectionMap("public", "clauses", "c").
	Project("document_id", "DocumentID").
	Project("position", "Position").
	Project("clause_type", "Type").
	Project("content", "Content").
	Project("description", "Description").
	Project("risk", "Risk").
	Project("page", "Page").
	Project("span_start", "Start").
	Project("span_end", "End").
	Project("score", "Score")

var defaultClauseSort = query.SortField{
	Field: "Position",
}

// ClauseFilters contains optional filtering criteria for clause queries.
// Nil fields are ignored. Type matches the clause type exactly; Risk accepts
// low, medium, or high.
type ClauseFilters struct {
	Type *string `json:"type,omitempty"`
	Risk *string `json:"risk,omitempty"`
}

// Apply adds filter conditions to a query builder.
// Returns ErrInvalidFilter when Risk is not a known level.
func (f ClauseFilters) Apply(b *query.Builder) (*query.Builder, error) {
	b.WhereEquals("Type", f.Type)

	if f.Risk != nil {
		level, err := analysis.ParseRiskLevel(*f.Risk)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidFilter, err)
		}
		b.WhereEquals("Risk", int(level))
	}

	return b, nil
}

// ClauseFiltersFromQuery extracts filter values from URL query parameters.
func ClauseFiltersFromQuery(values url.Values) ClauseFilters {
	var f ClauseFilters

	if t := values.Get("type"); t != "" {
		f.Type = &t
	}

	if r := values.Get("risk"); r != "" {
		f.Risk = &r
	}

	return f
}

func scanSessionRow(s repository.Scanner) (Session, error) {
	var sess Session
	err := s.Scan(&sess.ID, &sess.CreatedAt, &sess.UpdatedAt)
	return sess, err
}

func scanSession(s repository.Scanner) (Session, error) {
	var (
		sess        Session
		docID       uuid.NullUUID
		filename    sql.NullString
		contentType sql.NullString
		sizeBytes   sql.NullInt64
		pageCount   sql.NullInt64
		textLength  sql.NullInt64
		wordCount   sql.NullInt64
		storageKey  sql.NullString
		analyzedAt  sql.NullTime
	)

	err := s.Scan(
		&sess.ID,
		&sess.CreatedAt,
		&sess.UpdatedAt,
		&docID,
		&filename,
		&contentType,
		&sizeBytes,
		&pageCount,
		&textLength,
		&wordCount,
		&storageKey,
		&analyzedAt,
	)
	if err != nil {
		return sess, err
	}

	if docID.Valid {
		sess.Document = &DocumentInfo{
			ID:          docID.UUID,
			Filename:    filename.String,
			ContentType: contentType.String,
			SizeBytes:   sizeBytes.Int64,
			PageCount:   int(pageCount.Int64),
			TextLength:  int(textLength.Int64),
			WordCount:   int(wordCount.Int64),
			StorageKey:  storageKey.String,
			AnalyzedAt:  analyzedAt.Time,
		}
	}

	return sess, nil
}

func scanDocument(s repository.Scanner) (document, error) {
	var (
		d         document
		pages     []byte
		sessionID uuid.UUID
	)

	err := s.Scan(
		&d.info.ID,
		&d.info.Filename,
		&d.info.ContentType,
		&d.info.SizeBytes,
		&d.info.PageCount,
		&d.info.TextLength,
		&d.info.WordCount,
		&d.info.StorageKey,
		&d.info.AnalyzedAt,
		&d.text,
		&pages,
		&d.summary,
		&sessionID,
	)
	if err != nil {
		return d, err
	}

	if err := json.Unmarshal(pages, &d.pages); err != nil {
		return d, fmt.Errorf("decode page offsets: %w", err)
	}

	return d, nil
}

func scanClause(s repository.Scanner) (analysis.Clause, error) {
	var (
		c          analysis.Clause
		documentID uuid.UUID
		position   int
		risk       int
	)

	err := s.Scan(
		&documentID,
		&position,
		&c.Type,
		&c.Content,
		&c.Description,
		&risk,
		&c.Page,
		&c.Start,
		&c.End,
		&c.Score,
	)
	c.Risk = analysis.RiskLevel(risk)
	return c, err
}
