package sessions

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/counsel/internal/analysis"
	"github.com/JaimeStill/counsel/internal/extract"
	"github.com/JaimeStill/counsel/internal/qa"
	"github.com/JaimeStill/counsel/pkg/pagination"
	"github.com/JaimeStill/counsel/pkg/query"
	"github.com/JaimeStill/counsel/pkg/repository"
	"github.com/JaimeStill/counsel/pkg/storage"
)

// Options holds request limits and export metadata for the session system.
type Options struct {
	MaxUploadSize int64
	Version       string
}

type repo struct {
	db         *sql.DB
	storage    storage.System
	analyzer   *analysis.Analyzer
	extractor  extract.Extractor
	engine     *qa.Engine
	metrics    *Metrics
	uploads    *inflight
	logger     *slog.Logger
	pagination pagination.Config
	opts       Options
	now        func() time.Time
}

// New creates a session repository implementing the System interface.
// The question-answering engine shares the analyzer's lexicon.
func New(
	db *sql.DB,
	store storage.System,
	analyzer *analysis.Analyzer,
	extractor extract.Extractor,
	metrics *Metrics,
	logger *slog.Logger,
	pagination pagination.Config,
	opts Options,
) System {
	return &repo{
		db:         db,
		storage:    store,
		analyzer:   analyzer,
		extractor:  extractor,
		engine:     qa.New(analyzer.Lexicon()),
		metrics:    metrics,
		uploads:    newInflight(),
		logger:     logger.With("system", "sessions"),
		pagination: pagination,
		opts:       opts,
		now:        time.Now,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination, r.opts.MaxUploadSize)
}

func (r *repo) Create(ctx context.Context) (*Session, error) {
	q := `
		INSERT INTO sessions(id)
		VALUES ($1)
		RETURNING id, created_at, updated_at`

	s, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Session, error) {
		return repository.QueryOne(ctx, tx, q, []any{uuid.New()}, scanSessionRow)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("session created", "id", s.ID)
	return &s, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Session, error) {
	q, args := query.NewBuilder(sessionProjection).BuildSingle("ID", id)

	s, err := repository.QueryOne(ctx, r.db, q, args, scanSession)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &s, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	s, err := r.Find(ctx, id)
	if err != nil {
		return err
	}

	r.uploads.abort(id, ErrNotFound)

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM sessions WHERE id = $1",
			id,
		)
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if s.Document != nil {
		r.removeBlob(ctx, s.Document.StorageKey)
	}

	r.logger.Info("session deleted", "id", id)
	return nil
}

func (r *repo) Upload(ctx context.Context, id uuid.UUID, p extract.Payload) (*analysis.Report, error) {
	start := time.Now()
	report, err := r.upload(ctx, id, p)
	r.metrics.observeUpload(report, err, time.Since(start))
	return report, err
}

func (r *repo) upload(ctx context.Context, id uuid.UUID, p extract.Payload) (*analysis.Report, error) {
	kind, err := extract.Validate(p, r.opts.MaxUploadSize)
	if err != nil {
		return nil, err
	}
	p.ContentType = kind.ContentType()

	seq, err := r.beginUpload(ctx, id)
	if err != nil {
		return nil, err
	}

	runCtx, release := r.uploads.begin(ctx, id, seq)
	defer release()

	report, err := r.process(runCtx, id, seq, p)
	if err != nil {
		if cause := context.Cause(runCtx); errors.Is(cause, ErrSuperseded) || errors.Is(cause, ErrNotFound) {
			return nil, cause
		}
		return nil, err
	}
	return report, nil
}

func (r *repo) beginUpload(ctx context.Context, id uuid.UUID) (int64, error) {
	q := `
		UPDATE sessions
		SET upload_seq = upload_seq + 1, updated_at = NOW()
		WHERE id = $1
		RETURNING upload_seq`

	seq, err := repository.QueryScalar[int64](ctx, r.db, q, id)
	if err != nil {
		return 0, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return seq, nil
}

func (r *repo) process(ctx context.Context, id uuid.UUID, seq int64, p extract.Payload) (*analysis.Report, error) {
	docID := uuid.New()
	key := buildStorageKey(id, docID, sanitizeFilename(p.Filename))

	if err := r.storage.Upload(ctx, key, bytes.NewReader(p.Data), p.ContentType); err != nil {
		return nil, fmt.Errorf("upload document blob: %w", err)
	}

	text, err := r.extractor.Extract(ctx, p)
	if err != nil {
		r.removeBlob(ctx, key)
		return nil, err
	}

	doc := analysis.NewDocument(docID, text.Content, text.Pages)
	report, err := r.analyzer.Analyze(ctx, doc)
	if err != nil {
		r.removeBlob(ctx, key)
		return nil, err
	}

	info := DocumentInfo{
		ID:          docID,
		Filename:    p.Filename,
		ContentType: p.ContentType,
		SizeBytes:   p.Size(),
		PageCount:   max(text.PageCount, doc.PageCount()),
		TextLength:  len(doc.Text),
		WordCount:   doc.WordCount(),
		StorageKey:  key,
		AnalyzedAt:  r.now().UTC(),
	}

	prevKey, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (string, error) {
		return r.commit(ctx, tx, id, seq, info, doc, report)
	})
	if err != nil {
		r.removeBlob(ctx, key)
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if prevKey != "" {
		r.removeBlob(ctx, prevKey)
	}

	r.logger.Info(
		"document analyzed",
		"session", id,
		"document", docID,
		"filename", info.Filename,
		"pages", info.PageCount,
		"clauses", report.Risk.Total,
		"high_risk", report.Risk.High,
	)
	return report, nil
}

// commit replaces the session's document with the new one when seq is still
// the latest upload. It returns the storage key of the replaced document.
func (r *repo) commit(
	ctx context.Context,
	tx *sql.Tx,
	id uuid.UUID,
	seq int64,
	info DocumentInfo,
	doc *analysis.Document,
	report *analysis.Report,
) (string, error) {
	current, err := repository.QueryScalar[int64](
		ctx, tx,
		"SELECT upload_seq FROM sessions WHERE id = $1 FOR UPDATE",
		id,
	)
	if err != nil {
		return "", err
	}
	if current != seq {
		return "", ErrSuperseded
	}

	var prevKey string
	err = tx.QueryRowContext(
		ctx,
		"DELETE FROM documents WHERE session_id = $1 RETURNING storage_key",
		id,
	).Scan(&prevKey)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("delete previous document: %w", err)
	}

	pages, err := json.Marshal(doc.Pages)
	if err != nil {
		return "", fmt.Errorf("encode page offsets: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents(
			id, session_id, filename, content_type, size_bytes, page_count,
			text_length, word_count, storage_key, raw_text, page_offsets, summary, analyzed_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		info.ID,
		id,
		info.Filename,
		info.ContentType,
		info.SizeBytes,
		info.PageCount,
		info.TextLength,
		info.WordCount,
		info.StorageKey,
		doc.Text,
		string(pages),
		report.Summary,
		info.AnalyzedAt,
	)
	if err != nil {
		return "", fmt.Errorf("insert document: %w", err)
	}

	insertClause := `
		INSERT INTO clauses(
			id, document_id, position, clause_type, content, description,
			risk, page, span_start, span_end, score
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	for i, c := range report.Clauses {
		_, err := tx.ExecContext(
			ctx, insertClause,
			uuid.New(),
			info.ID,
			i+1,
			string(c.Type),
			c.Content,
			c.Description,
			int(c.Risk),
			c.Page,
			c.Start,
			c.End,
			c.Score,
		)
		if err != nil {
			return "", fmt.Errorf("insert clause %d: %w", i+1, err)
		}
	}

	if err := repository.ExecExpectOne(
		ctx, tx,
		"UPDATE sessions SET updated_at = NOW() WHERE id = $1",
		id,
	); err != nil {
		return "", err
	}

	return prevKey, nil
}

func (r *repo) Report(ctx context.Context, id uuid.UUID) (*analysis.Report, error) {
	_, report, err := r.snapshot(ctx, id)
	return report, err
}

// snapshot reads the document and its clauses from one repeatable-read
// transaction so a concurrent replacement is never half visible.
func (r *repo) snapshot(ctx context.Context, id uuid.UUID) (*document, *analysis.Report, error) {
	type result struct {
		doc    *document
		report *analysis.Report
	}

	res, err := repository.WithTxOptions(
		ctx, r.db,
		&sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true},
		func(tx *sql.Tx) (result, error) {
			doc, err := r.documentOf(ctx, tx, id, false)
			if err != nil {
				return result{}, err
			}
			report, err := r.reportOf(ctx, tx, doc)
			if err != nil {
				return result{}, err
			}
			return result{doc: doc, report: report}, nil
		},
	)
	if err != nil {
		return nil, nil, err
	}
	return res.doc, res.report, nil
}

func (r *repo) Clauses(
	ctx context.Context,
	id uuid.UUID,
	page pagination.PageRequest,
	filters ClauseFilters,
) (*pagination.PageResult[analysis.Clause], error) {
	page.Normalize(r.pagination)

	doc, err := r.documentOf(ctx, r.db, id, false)
	if err != nil {
		return nil, err
	}

	qb := query.
		NewBuilder(clauseProjection, defaultClauseSort).
		WhereEquals("DocumentID", doc.info.ID).
		WhereSearch(page.Search, "Content", "Description")

	if _, err := filters.Apply(qb); err != nil {
		return nil, err
	}

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	total, err := repository.QueryScalar[int](ctx, r.db, countSQL, countArgs...)
	if err != nil {
		return nil, fmt.Errorf("count clauses: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	clauses, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanClause)
	if err != nil {
		return nil, fmt.Errorf("query clauses: %w", err)
	}

	result := pagination.NewPageResult(clauses, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Ask(ctx context.Context, id uuid.UUID, question string) (*Exchange, error) {
	ex, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (*Exchange, error) {
		doc, err := r.documentOf(ctx, tx, id, true)
		if err != nil {
			return nil, err
		}

		report, err := r.reportOf(ctx, tx, doc)
		if err != nil {
			return nil, err
		}

		resp, err := r.engine.Respond(question, report.Clauses, doc.analysisDocument())
		if err != nil {
			return nil, err
		}

		if err := appendTurns(ctx, tx, doc.info.ID, question, resp.Text); err != nil {
			return nil, err
		}

		return &Exchange{
			Question: question,
			Answer:   resp.Text,
			Topic:    resp.Topic,
			Matched:  resp.Matched,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	r.metrics.observeQuestion(ex)
	r.logger.Debug("question answered", "session", id, "topic", ex.Topic, "matched", ex.Matched)
	return ex, nil
}

func (r *repo) Conversation(ctx context.Context, id uuid.UUID) ([]qa.Turn, error) {
	doc, err := r.documentOf(ctx, r.db, id, false)
	if err != nil {
		if errors.Is(err, ErrNoDocument) {
			return []qa.Turn{}, nil
		}
		return nil, err
	}

	q := `
		SELECT role, text
		FROM turns
		WHERE document_id = $1
		ORDER BY position`

	return repository.QueryMany(ctx, r.db, q, []any{doc.info.ID}, func(s repository.Scanner) (qa.Turn, error) {
		var t qa.Turn
		err := s.Scan(&t.Role, &t.Text)
		return t, err
	})
}

func (r *repo) Export(ctx context.Context, id uuid.UUID) (*analysis.Export, error) {
	doc, report, err := r.snapshot(ctx, id)
	if err != nil {
		return nil, err
	}

	export := analysis.NewExport(report, doc.info.Filename, r.now(), r.opts.Version)
	return &export, nil
}

func (r *repo) Download(ctx context.Context, id uuid.UUID) (*Download, error) {
	doc, err := r.documentOf(ctx, r.db, id, false)
	if err != nil {
		return nil, err
	}

	body, err := r.storage.Download(ctx, doc.info.StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: source document missing from storage", ErrNotFound)
		}
		return nil, fmt.Errorf("download document blob: %w", err)
	}

	return &Download{
		Body:        body,
		ContentType: doc.info.ContentType,
		Filename:    doc.info.Filename,
	}, nil
}

// documentOf loads the session's current document. With lock set the row is
// locked until the surrounding transaction ends, which holds off a concurrent
// replacement.
func (r *repo) documentOf(ctx context.Context, q repository.Querier, id uuid.UUID, lock bool) (*document, error) {
	sqlq, args := query.NewBuilder(documentProjection).BuildSingle("SessionID", id)
	if lock {
		sqlq += " FOR UPDATE"
	}

	d, err := repository.QueryOne(ctx, q, sqlq, args, scanDocument)
	if err == nil {
		return &d, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("query document: %w", err)
	}

	exists, err := repository.Exists(ctx, q, "SELECT 1 FROM sessions WHERE id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	if !exists {
		return nil, ErrNotFound
	}
	return nil, ErrNoDocument
}

func (r *repo) reportOf(ctx context.Context, q repository.Querier, doc *document) (*analysis.Report, error) {
	sqlq, args := query.
		NewBuilder(clauseProjection, defaultClauseSort).
		WhereEquals("DocumentID", doc.info.ID).
		Build()

	clauses, err := repository.QueryMany(ctx, q, sqlq, args, scanClause)
	if err != nil {
		return nil, fmt.Errorf("query clauses: %w", err)
	}

	return analysis.NewReport(doc.info.ID, clauses, doc.summary), nil
}

func appendTurns(ctx context.Context, tx *sql.Tx, documentID uuid.UUID, question, answer string) error {
	next, err := repository.QueryScalar[int64](
		ctx, tx,
		"SELECT COALESCE(MAX(position), 0) + 1 FROM turns WHERE document_id = $1",
		documentID,
	)
	if err != nil {
		return fmt.Errorf("next turn position: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO turns(id, document_id, position, role, text)
		VALUES ($1, $2, $3, $4, $5), ($6, $2, $7, $8, $9)`,
		uuid.New(), documentID, next, string(qa.RoleUser), question,
		uuid.New(), next+1, string(qa.RoleAssistant), answer,
	)
	if err != nil {
		return fmt.Errorf("insert turns: %w", err)
	}
	return nil
}

// removeBlob deletes a stored payload. Failures are logged, not returned.
func (r *repo) removeBlob(ctx context.Context, key string) {
	if err := r.storage.Delete(context.WithoutCancel(ctx), key); err != nil {
		r.logger.Warn("blob delete failed", "key", key, "error", err)
	}
}

func buildStorageKey(sessionID, documentID uuid.UUID, filename string) string {
	return storage.Key("sessions", sessionID.String(), documentID.String(), filename)
}

func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(filepath.Base(name), "..", ".")
	if strings.Trim(name, "./") == "" {
		return "document"
	}
	return name
}
