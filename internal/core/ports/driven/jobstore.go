package driven

import (
	"context"

	"github.com/planbridge-labs/docrag/internal/core/domain"
)

// JobStore persists processing job history.
// Rows are append-only; the most recently created row per document is
// that document's current status.
type JobStore interface {
	// Append stores a new job row.
	Append(ctx context.Context, job *domain.ProcessingJob) error

	// Update rewrites an existing job row. The state machine guard
	// (terminal jobs never reopened) is enforced by the job tracker,
	// not the store.
	Update(ctx context.Context, job *domain.ProcessingJob) error

	// Latest returns the most recently created job for a document.
	// Returns domain.ErrNotFound when the document has no job history.
	Latest(ctx context.Context, documentID string) (*domain.ProcessingJob, error)

	// ListByDocument returns all jobs for a document, newest first.
	ListByDocument(ctx context.Context, documentID string) ([]domain.ProcessingJob, error)

	// DeleteByDocument removes all job history for a document.
	DeleteByDocument(ctx context.Context, documentID string) error
}
