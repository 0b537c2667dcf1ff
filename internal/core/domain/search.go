package domain

// SearchType identifies which ranking path produced a result.
type SearchType string

const (
	// SearchTypeSemantic means cosine similarity over embeddings.
	SearchTypeSemantic SearchType = "semantic"

	// SearchTypeKeyword means token-overlap ranking, used when
	// embeddings are unavailable or semantic search returns nothing.
	SearchTypeKeyword SearchType = "keyword"
)

// SearchOptions configures a search query.
// Zero values fall back to the orchestrator's configured defaults.
type SearchOptions struct {
	// TopK is the maximum number of results to return.
	TopK int

	// Threshold is the minimum similarity score for semantic results.
	Threshold float64
}

// SearchResult is a single ranked hit. Results are transient and never
// persisted.
type SearchResult struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// Score is the relevance score in [0, 1].
	Score float64

	// Type records which ranking path produced the result.
	Type SearchType
}
