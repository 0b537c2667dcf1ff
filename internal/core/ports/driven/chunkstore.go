package driven

import (
	"context"

	"github.com/planbridge-labs/docrag/internal/core/domain"
)

// EmbeddingUpdate pairs a chunk with the vector to attach to it.
type EmbeddingUpdate struct {
	// ChunkID is the chunk to update.
	ChunkID string

	// Embedding is the vector to attach.
	Embedding domain.Embedding
}

// ChunkStore persists chunks and their optional vectors.
// Backed by SQLite for durable storage; an in-memory implementation
// exists for tests.
type ChunkStore interface {
	// ReplaceChunks atomically deletes all existing chunks for the
	// document and inserts the given ordered set in one transaction.
	// No reader ever observes the document transiently without chunks.
	// Replacing with an empty set clears the document's chunks.
	ReplaceChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error

	// AttachEmbeddings attaches vectors to chunks that currently lack
	// one. Chunks that already carry a vector are left untouched, and an
	// absent update never clears an existing vector. Returns the number
	// of chunks actually updated.
	AttachEmbeddings(ctx context.Context, updates []EmbeddingUpdate) (int, error)

	// GetChunk retrieves a single chunk by ID.
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)

	// ListByDocument returns the document's chunks ordered by chunk index.
	ListByDocument(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// ListByOwner returns all chunks for an owner, ordered by
	// (document ID, chunk index) for deterministic ranking tie-breaks.
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Chunk, error)

	// CountByDocument returns the live chunk count for a document.
	CountByDocument(ctx context.Context, documentID string) (int, error)

	// DeleteByDocument removes all chunks for a document. Used when the
	// owning document is deleted upstream.
	DeleteByDocument(ctx context.Context, documentID string) error
}
