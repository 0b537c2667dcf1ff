// Package memory provides in-memory store implementations used as test
// doubles for service tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/planbridge-labs/docrag/internal/core/domain"
	"github.com/planbridge-labs/docrag/internal/core/ports/driven"
)

// Ensure ChunkStore implements the interface.
var _ driven.ChunkStore = (*ChunkStore)(nil)

// ChunkStore is an in-memory implementation of driven.ChunkStore.
type ChunkStore struct {
	mu     sync.RWMutex
	chunks map[string]domain.Chunk // by chunk ID
}

// NewChunkStore creates a new in-memory chunk store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{
		chunks: make(map[string]domain.Chunk),
	}
}

// ReplaceChunks atomically swaps the document's chunk set.
func (s *ChunkStore) ReplaceChunks(_ context.Context, documentID string, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, c := range s.chunks {
		if c.DocumentID == documentID {
			delete(s.chunks, id)
		}
	}
	for _, c := range chunks {
		s.chunks[c.ID] = c
	}
	return nil
}

// AttachEmbeddings attaches vectors to chunks that lack one.
func (s *ChunkStore) AttachEmbeddings(_ context.Context, updates []driven.EmbeddingUpdate) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	attached := 0
	for _, u := range updates {
		if !u.Embedding.Present() {
			continue
		}
		c, ok := s.chunks[u.ChunkID]
		if !ok || c.Embedding.Present() {
			continue
		}
		c.Embedding = u.Embedding
		s.chunks[u.ChunkID] = c
		attached++
	}
	return attached, nil
}

// GetChunk retrieves a single chunk by ID.
func (s *ChunkStore) GetChunk(_ context.Context, id string) (*domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.chunks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

// ListByDocument returns the document's chunks ordered by chunk index.
func (s *ChunkStore) ListByDocument(_ context.Context, documentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var chunks []domain.Chunk
	for _, c := range s.chunks {
		if c.DocumentID == documentID {
			chunks = append(chunks, c)
		}
	}
	sortChunks(chunks)
	return chunks, nil
}

// ListByOwner returns all chunks for an owner, ordered by
// (document ID, chunk index).
func (s *ChunkStore) ListByOwner(_ context.Context, ownerID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var chunks []domain.Chunk
	for _, c := range s.chunks {
		if c.OwnerID == ownerID {
			chunks = append(chunks, c)
		}
	}
	sortChunks(chunks)
	return chunks, nil
}

// CountByDocument returns the live chunk count for a document.
func (s *ChunkStore) CountByDocument(_ context.Context, documentID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, c := range s.chunks {
		if c.DocumentID == documentID {
			count++
		}
	}
	return count, nil
}

// DeleteByDocument removes all chunks for a document.
func (s *ChunkStore) DeleteByDocument(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, c := range s.chunks {
		if c.DocumentID == documentID {
			delete(s.chunks, id)
		}
	}
	return nil
}

func sortChunks(chunks []domain.Chunk) {
	sort.Slice(chunks, func(i, j int) bool {
		if chunks[i].DocumentID != chunks[j].DocumentID {
			return chunks[i].DocumentID < chunks[j].DocumentID
		}
		return chunks[i].Index < chunks[j].Index
	})
}
