package domain

// Embedding is the vector representation of a chunk's text.
// The zero value means the chunk has not been embedded; ranking code
// must check Present() rather than assuming a vector exists.
type Embedding struct {
	// Vector is the fixed-length numeric representation.
	Vector []float32

	// Model identifies the provider/model that produced the vector.
	// Used to invalidate stored vectors when the model changes.
	Model string
}

// Present reports whether a vector has been attached.
func (e Embedding) Present() bool {
	return len(e.Vector) > 0
}

// Chunk is a bounded, contiguous slice of a document's extracted text.
// It is the unit of retrieval: chunks are what get embedded, ranked and
// assembled into generation context.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the participant document this chunk came from.
	// Chunks are owned by their document: reprocessing wholesale-replaces
	// the document's chunk set, and deleting the document cascades here.
	DocumentID string

	// OwnerID is the participant that owns the source document,
	// denormalised so searches can be scoped without a document lookup.
	OwnerID string

	// Index is the 0-based ordinal position within the document.
	// Unique and monotonic per document.
	Index int

	// Text is the chunk content.
	Text string

	// CharCount is the length of Text in bytes. Stored so size stats
	// can be queried without loading content.
	CharCount int

	// Embedding is the optional vector representation.
	Embedding Embedding

	// Metadata contains chunk-specific key-value pairs, such as page
	// numbers or source offsets when the extractor provides them.
	Metadata map[string]string
}
