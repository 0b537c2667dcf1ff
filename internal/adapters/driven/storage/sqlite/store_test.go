package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planbridge-labs/docrag/internal/core/domain"
	"github.com/planbridge-labs/docrag/internal/core/ports/driven"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testChunk(docID, ownerID string, index int, text string) domain.Chunk {
	return domain.Chunk{
		ID:         docID + "-" + string(rune('a'+index)),
		DocumentID: docID,
		OwnerID:    ownerID,
		Index:      index,
		Text:       text,
		CharCount:  len(text),
	}
}

func TestNewStore_Migrates(t *testing.T) {
	store := newTestStore(t)
	assert.NotEmpty(t, store.Path())

	// Opening again over the same directory must be a no-op migration.
	again, err := NewStore(store.path[:len(store.path)-len("/docrag.db")])
	require.NoError(t, err)
	require.NoError(t, again.Close())
}

func TestReplaceChunks_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	cs := store.ChunkStore()
	ctx := context.Background()

	chunks := []domain.Chunk{
		testChunk("doc-1", "owner-1", 0, "first chunk text"),
		testChunk("doc-1", "owner-1", 1, "second chunk text"),
	}
	chunks[0].Metadata = map[string]string{"page": "1"}
	require.NoError(t, cs.ReplaceChunks(ctx, "doc-1", chunks))

	got, err := cs.ListByDocument(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 0, got[0].Index)
	assert.Equal(t, "first chunk text", got[0].Text)
	assert.Equal(t, len("first chunk text"), got[0].CharCount)
	assert.Equal(t, map[string]string{"page": "1"}, got[0].Metadata)
	assert.False(t, got[0].Embedding.Present())
}

func TestReplaceChunks_WholesaleReplace(t *testing.T) {
	store := newTestStore(t)
	cs := store.ChunkStore()
	ctx := context.Background()

	var first []domain.Chunk
	for i := 0; i < 10; i++ {
		first = append(first, testChunk("doc-1", "owner-1", i, "original content"))
	}
	require.NoError(t, cs.ReplaceChunks(ctx, "doc-1", first))

	var second []domain.Chunk
	for i := 0; i < 3; i++ {
		second = append(second, testChunk("doc-1b", "owner-1", i, "shorter content"))
	}
	for i := range second {
		second[i].DocumentID = "doc-1"
	}
	require.NoError(t, cs.ReplaceChunks(ctx, "doc-1", second))

	got, err := cs.ListByDocument(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	for _, c := range got {
		assert.Equal(t, "shorter content", c.Text)
	}
}

func TestReplaceChunks_EmptySetClears(t *testing.T) {
	store := newTestStore(t)
	cs := store.ChunkStore()
	ctx := context.Background()

	require.NoError(t, cs.ReplaceChunks(ctx, "doc-1", []domain.Chunk{
		testChunk("doc-1", "owner-1", 0, "soon to disappear"),
	}))
	require.NoError(t, cs.ReplaceChunks(ctx, "doc-1", nil))

	count, err := cs.CountByDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestAttachEmbeddings_OnlyAbsent(t *testing.T) {
	store := newTestStore(t)
	cs := store.ChunkStore()
	ctx := context.Background()

	embedded := testChunk("doc-1", "owner-1", 0, "already embedded")
	embedded.Embedding = domain.Embedding{Vector: []float32{1, 2, 3}, Model: "model-a"}
	bare := testChunk("doc-1", "owner-1", 1, "not embedded yet")

	require.NoError(t, cs.ReplaceChunks(ctx, "doc-1", []domain.Chunk{embedded, bare}))

	attached, err := cs.AttachEmbeddings(ctx, []driven.EmbeddingUpdate{
		{ChunkID: embedded.ID, Embedding: domain.Embedding{Vector: []float32{9, 9, 9}, Model: "model-b"}},
		{ChunkID: bare.ID, Embedding: domain.Embedding{Vector: []float32{4, 5, 6}, Model: "model-b"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, attached)

	got, err := cs.ListByDocument(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []float32{1, 2, 3}, got[0].Embedding.Vector, "existing vector must not be overwritten")
	assert.Equal(t, "model-a", got[0].Embedding.Model)
	assert.Equal(t, []float32{4, 5, 6}, got[1].Embedding.Vector)
	assert.Equal(t, "model-b", got[1].Embedding.Model)
}

func TestAttachEmbeddings_AbsentUpdateIgnored(t *testing.T) {
	store := newTestStore(t)
	cs := store.ChunkStore()
	ctx := context.Background()

	c := testChunk("doc-1", "owner-1", 0, "text")
	require.NoError(t, cs.ReplaceChunks(ctx, "doc-1", []domain.Chunk{c}))

	attached, err := cs.AttachEmbeddings(ctx, []driven.EmbeddingUpdate{
		{ChunkID: c.ID, Embedding: domain.Embedding{}},
	})
	require.NoError(t, err)
	assert.Zero(t, attached)
}

func TestListByOwner_Ordering(t *testing.T) {
	store := newTestStore(t)
	cs := store.ChunkStore()
	ctx := context.Background()

	require.NoError(t, cs.ReplaceChunks(ctx, "doc-b", []domain.Chunk{
		testChunk("doc-b", "owner-1", 0, "b zero"),
		testChunk("doc-b", "owner-1", 1, "b one"),
	}))
	require.NoError(t, cs.ReplaceChunks(ctx, "doc-a", []domain.Chunk{
		testChunk("doc-a", "owner-1", 0, "a zero"),
	}))
	require.NoError(t, cs.ReplaceChunks(ctx, "doc-c", []domain.Chunk{
		testChunk("doc-c", "owner-2", 0, "other owner"),
	}))

	got, err := cs.ListByOwner(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "a zero", got[0].Text)
	assert.Equal(t, "b zero", got[1].Text)
	assert.Equal(t, "b one", got[2].Text)
}

func TestGetChunk_NotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.ChunkStore().GetChunk(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestJobStore_AppendAndLatest(t *testing.T) {
	store := newTestStore(t)
	js := store.JobStore()
	ctx := context.Background()

	older := &domain.ProcessingJob{
		ID:         "job-1",
		DocumentID: "doc-1",
		OwnerID:    "owner-1",
		Type:       domain.JobTypeChunk,
		Status:     domain.JobStatusCompleted,
		CreatedAt:  time.Now().Add(-time.Minute),
	}
	newer := &domain.ProcessingJob{
		ID:         "job-2",
		DocumentID: "doc-1",
		OwnerID:    "owner-1",
		Type:       domain.JobTypeEmbed,
		Status:     domain.JobStatusProcessing,
		CreatedAt:  time.Now(),
	}
	require.NoError(t, js.Append(ctx, older))
	require.NoError(t, js.Append(ctx, newer))

	latest, err := js.Latest(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "job-2", latest.ID)
	assert.Equal(t, domain.JobTypeEmbed, latest.Type)

	jobs, err := js.ListByDocument(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "job-2", jobs[0].ID)
}

func TestJobStore_Update(t *testing.T) {
	store := newTestStore(t)
	js := store.JobStore()
	ctx := context.Background()

	job := &domain.ProcessingJob{
		ID:         "job-1",
		DocumentID: "doc-1",
		OwnerID:    "owner-1",
		Type:       domain.JobTypeChunk,
		Status:     domain.JobStatusPending,
		CreatedAt:  time.Now(),
	}
	require.NoError(t, js.Append(ctx, job))

	job.Status = domain.JobStatusFailed
	job.ErrorMessage = "disk full"
	job.CompletedAt = time.Now()
	require.NoError(t, js.Update(ctx, job))

	latest, err := js.Latest(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusFailed, latest.Status)
	assert.Equal(t, "disk full", latest.ErrorMessage)
	assert.False(t, latest.CompletedAt.IsZero())
}

func TestJobStore_UpdateMissing(t *testing.T) {
	store := newTestStore(t)
	err := store.JobStore().Update(context.Background(), &domain.ProcessingJob{ID: "ghost"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestJobStore_LatestMissing(t *testing.T) {
	store := newTestStore(t)
	_, err := store.JobStore().Latest(context.Background(), "never-processed")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteByDocument_Cascade(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	cs := store.ChunkStore()
	js := store.JobStore()

	require.NoError(t, cs.ReplaceChunks(ctx, "doc-1", []domain.Chunk{
		testChunk("doc-1", "owner-1", 0, "text"),
	}))
	require.NoError(t, js.Append(ctx, &domain.ProcessingJob{
		ID: "job-1", DocumentID: "doc-1", OwnerID: "owner-1",
		Type: domain.JobTypeChunk, Status: domain.JobStatusCompleted, CreatedAt: time.Now(),
	}))

	require.NoError(t, cs.DeleteByDocument(ctx, "doc-1"))
	require.NoError(t, js.DeleteByDocument(ctx, "doc-1"))

	count, err := cs.CountByDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Zero(t, count)

	jobs, err := js.ListByDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestEmbeddingBlobCodec(t *testing.T) {
	vec := []float32{0.5, -1.25, 3.75}
	assert.Equal(t, vec, bytesToFloat32Slice(float32SliceToBytes(vec)))
	assert.Nil(t, bytesToFloat32Slice(nil))
	assert.Nil(t, bytesToFloat32Slice([]byte{1, 2, 3})) // not a multiple of 4
	assert.Nil(t, float32SliceToBytes(nil))
}
