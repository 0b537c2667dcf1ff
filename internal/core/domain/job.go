package domain

import "time"

// JobType identifies a stage of the ingestion pipeline.
type JobType string

const (
	// JobTypeExtract covers text extraction from raw bytes.
	JobTypeExtract JobType = "extract"

	// JobTypeChunk covers splitting and storing chunks.
	JobTypeChunk JobType = "chunk"

	// JobTypeEmbed covers generating and attaching vectors.
	JobTypeEmbed JobType = "embed"
)

// JobStatus is the lifecycle state of a processing job.
// Valid transitions: pending -> processing -> completed | failed.
// Terminal states are never reopened; reprocessing appends a new job row.
type JobStatus string

const (
	// JobStatusPending means the job row exists but work has not started.
	JobStatusPending JobStatus = "pending"

	// JobStatusProcessing means work is in flight.
	JobStatusProcessing JobStatus = "processing"

	// JobStatusCompleted means the job finished successfully.
	JobStatusCompleted JobStatus = "completed"

	// JobStatusFailed means the job finished with an error.
	JobStatusFailed JobStatus = "failed"

	// JobStatusNotProcessed is a reporting-only status for documents
	// that have no job history at all. Never persisted.
	JobStatusNotProcessed JobStatus = "not_processed"
)

// Terminal reports whether the status is final.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// CanTransitionTo reports whether the state machine allows moving to next.
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	switch s {
	case JobStatusPending:
		return next == JobStatusProcessing
	case JobStatusProcessing:
		return next == JobStatusCompleted || next == JobStatusFailed
	default:
		return false
	}
}

// ProcessingJob is a tracked, auditable unit of ingestion work.
// Job history is append-only; the most recently created row per document
// is that document's current status.
type ProcessingJob struct {
	// ID is the unique identifier for the job.
	ID string

	// DocumentID is the document being processed.
	DocumentID string

	// OwnerID is the participant that owns the document.
	OwnerID string

	// Type is the pipeline stage this job covers.
	Type JobType

	// Status is the current lifecycle state.
	Status JobStatus

	// ChunksCreated is the number of chunks stored by this pass.
	ChunksCreated int

	// ChunksEmbedded is the number of chunks that received a vector.
	ChunksEmbedded int

	// ErrorMessage holds the failure reason when Status is failed.
	ErrorMessage string

	// CreatedAt is when the job row was appended.
	CreatedAt time.Time

	// StartedAt is when the job moved to processing.
	StartedAt time.Time

	// CompletedAt is when the job reached a terminal state.
	// Zero while the job is open.
	CompletedAt time.Time
}
