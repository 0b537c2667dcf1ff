package driving

import (
	"context"

	"github.com/planbridge-labs/docrag/internal/core/domain"
)

// ProcessRequest carries one document upload through the ingestion
// pipeline.
type ProcessRequest struct {
	// DocumentID identifies the document being processed.
	DocumentID string

	// OwnerID is the participant that owns the document.
	OwnerID string

	// Content is the raw uploaded bytes.
	Content []byte

	// MIMEType is the content type hint (e.g. "application/pdf").
	// Unknown types fall back to plain-text extraction.
	MIMEType string
}

// ProcessingStatus is the UI-facing view of a document's latest job.
type ProcessingStatus struct {
	// DocumentID identifies the document.
	DocumentID string

	// Status is the latest job's lifecycle state, or
	// domain.JobStatusNotProcessed when the document has no job history.
	Status domain.JobStatus

	// JobType is the stage the latest job covers.
	JobType domain.JobType

	// ChunksCreated is the chunk count recorded by the latest job.
	ChunksCreated int

	// ChunksEmbedded is the embedded count recorded by the latest job.
	ChunksEmbedded int

	// ChunkCount is the live number of chunk rows for the document,
	// which may differ from ChunksCreated while a reprocess is running.
	ChunkCount int

	// ErrorMessage holds the failure reason when Status is failed.
	ErrorMessage string
}

// RAGService is the public entry point for document ingestion and
// retrieval. It is invoked in-process; there is no wire protocol.
type RAGService interface {
	// ProcessDocument runs the full ingestion pipeline for one upload:
	// extract, chunk, store, and (when an embedding service is wired)
	// embed. Blocking; callers wanting fire-and-forget dispatch use the
	// orchestrator's async variant.
	ProcessDocument(ctx context.Context, req ProcessRequest) error

	// Search returns ranked chunks for an owner's query. Semantic
	// ranking is tried first; keyword ranking is the fallback when
	// embeddings are unavailable or return nothing. "No matches" is an
	// empty slice, never an error.
	Search(ctx context.Context, ownerID, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)

	// GetContext composes Search with context assembly: a length-bounded
	// context string plus the source chunks actually used.
	GetContext(ctx context.Context, ownerID, query string, maxContextLength int) (string, []domain.SearchResult, error)

	// GetProcessingStatus reports the latest job for a document plus a
	// live chunk count.
	GetProcessingStatus(ctx context.Context, documentID string) (*ProcessingStatus, error)

	// ListJobs returns the append-only job history for a document,
	// newest first.
	ListJobs(ctx context.Context, documentID string) ([]domain.ProcessingJob, error)

	// DeleteDocumentData removes all chunks and job history for a
	// document. Called when the owning document is deleted upstream.
	DeleteDocumentData(ctx context.Context, documentID string) error
}
