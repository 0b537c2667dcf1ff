package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates a document format no extractor handles.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrJobClosed indicates an attempt to update a job that already
	// reached a terminal state. Terminal jobs are never reopened.
	ErrJobClosed = errors.New("job already closed")

	// ErrEmbeddingUnavailable indicates no embedding service is configured.
	// Semantic search is disabled without embeddings; keyword search
	// remains available.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)
