package driven

import "context"

// EmbeddingService generates vector embeddings from text.
// This is an optional capability: when no service is wired into the
// orchestrator, documents stay keyword-searchable and semantic search is
// disabled. Provider failures (network, auth, quota, timeout) must never
// fail an ingestion pass; the orchestrator degrades affected items to
// "not embedded" instead.
//
// Implementations include:
//   - Ollama (nomic-embed-text and friends, local inference)
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts in one call.
	// The result is aligned 1:1 with the input, never reordered.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g. 768, 1536).
	Dimensions() int

	// ModelName identifies the model, stored alongside vectors so they
	// can be invalidated when the model changes.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
