package sessions

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/counsel/internal/analysis"
	"github.com/JaimeStill/counsel/internal/extract"
	"github.com/JaimeStill/counsel/internal/qa"
	"github.com/JaimeStill/counsel/pkg/pagination"
)

// System defines the public contract for session domain operations.
type System interface {
	Handler() *Handler

	Create(ctx context.Context) (*Session, error)
	Find(ctx context.Context, id uuid.UUID) (*Session, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Upload validates, stores, extracts, and analyses p, then replaces the
	// session's document, report, and conversation in one transaction.
	// A concurrent newer upload to the same session makes this one fail with
	// ErrSuperseded and leaves the newer result in place.
	Upload(ctx context.Context, id uuid.UUID, p extract.Payload) (*analysis.Report, error)

	Report(ctx context.Context, id uuid.UUID) (*analysis.Report, error)

	Clauses(
		ctx context.Context,
		id uuid.UUID,
		page pagination.PageRequest,
		filters ClauseFilters,
	) (*pagination.PageResult[analysis.Clause], error)

	Ask(ctx context.Context, id uuid.UUID, question string) (*Exchange, error)
	Conversation(ctx context.Context, id uuid.UUID) ([]qa.Turn, error)
	Export(ctx context.Context, id uuid.UUID) (*analysis.Export, error)
	Download(ctx context.Context, id uuid.UUID) (*Download, error)
}
