package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/planbridge-labs/docrag/internal/chunking"
	"github.com/planbridge-labs/docrag/internal/core/domain"
	"github.com/planbridge-labs/docrag/internal/core/ports/driven"
	"github.com/planbridge-labs/docrag/internal/core/ports/driving"
	"github.com/planbridge-labs/docrag/internal/extractors"
	"github.com/planbridge-labs/docrag/internal/logger"
)

// Ensure RAGOrchestrator implements the interface.
var _ driving.RAGService = (*RAGOrchestrator)(nil)

// Search defaults applied when SearchOptions carries zero values.
const (
	DefaultTopK      = 5
	DefaultThreshold = 0.5
)

// DefaultEmbedTimeout bounds a single embedding provider call.
const DefaultEmbedTimeout = 60 * time.Second

// RAGOrchestrator coordinates the full pipeline: extraction, chunking,
// storage, embedding, search and context assembly. The embedding
// service is optional; without one, documents stay keyword-searchable.
type RAGOrchestrator struct {
	chunkStore driven.ChunkStore
	jobs       *JobTracker
	embedder   driven.EmbeddingService
	registry   *extractors.Registry
	splitter   *chunking.Splitter
	locks      *documentLocks

	topK         int
	threshold    float64
	embedTimeout time.Duration
}

// RAGOption configures the orchestrator.
type RAGOption func(*RAGOrchestrator)

// WithEmbeddingService wires an embedding provider. Without one,
// semantic search is disabled and ingestion skips the embed stage.
func WithEmbeddingService(svc driven.EmbeddingService) RAGOption {
	return func(o *RAGOrchestrator) {
		o.embedder = svc
	}
}

// WithSplitter overrides the default chunking configuration.
func WithSplitter(s *chunking.Splitter) RAGOption {
	return func(o *RAGOrchestrator) {
		if s != nil {
			o.splitter = s
		}
	}
}

// WithExtractorRegistry overrides the default extractor set.
func WithExtractorRegistry(r *extractors.Registry) RAGOption {
	return func(o *RAGOrchestrator) {
		if r != nil {
			o.registry = r
		}
	}
}

// WithSearchDefaults sets the result limit and similarity threshold
// applied when callers pass zero-valued options.
func WithSearchDefaults(topK int, threshold float64) RAGOption {
	return func(o *RAGOrchestrator) {
		if topK > 0 {
			o.topK = topK
		}
		if threshold > 0 {
			o.threshold = threshold
		}
	}
}

// WithEmbedTimeout bounds each embedding provider call.
func WithEmbedTimeout(d time.Duration) RAGOption {
	return func(o *RAGOrchestrator) {
		if d > 0 {
			o.embedTimeout = d
		}
	}
}

// NewRAGOrchestrator creates the orchestrator over the given stores.
func NewRAGOrchestrator(chunkStore driven.ChunkStore, jobStore driven.JobStore, opts ...RAGOption) *RAGOrchestrator {
	o := &RAGOrchestrator{
		chunkStore:   chunkStore,
		jobs:         NewJobTracker(jobStore),
		registry:     extractors.DefaultRegistry(),
		splitter:     chunking.New(),
		locks:        newDocumentLocks(),
		topK:         DefaultTopK,
		threshold:    DefaultThreshold,
		embedTimeout: DefaultEmbedTimeout,
	}

	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ProcessDocument runs the ingestion pipeline for one upload. Each
// stage is tracked as its own job row: extract, chunk, and embed (when
// an embedding service is wired). Processing for the same document is
// serialised; concurrent calls for different documents run in parallel.
func (o *RAGOrchestrator) ProcessDocument(ctx context.Context, req driving.ProcessRequest) error {
	if req.DocumentID == "" || req.OwnerID == "" {
		return fmt.Errorf("document ID and owner ID are required: %w", domain.ErrInvalidInput)
	}

	release := o.locks.acquire(req.DocumentID)
	defer release()

	logger.Section("Processing Document")
	logger.Info("Document %s (%d bytes, %s)", req.DocumentID, len(req.Content), req.MIMEType)

	text, err := o.runExtract(ctx, req)
	if err != nil {
		return err
	}

	chunks, err := o.runChunk(ctx, req, text)
	if err != nil {
		return err
	}

	if o.embedder == nil {
		logger.Debug("No embedding service wired, skipping embed stage")
		return nil
	}
	if len(chunks) == 0 {
		logger.Debug("No chunks to embed, skipping embed stage")
		return nil
	}
	return o.runEmbed(ctx, req, chunks)
}

// runExtract extracts plain text under an extract job. Extraction is
// best-effort; a corrupt upload completes the job with empty text.
func (o *RAGOrchestrator) runExtract(ctx context.Context, req driving.ProcessRequest) (string, error) {
	job, err := o.jobs.Start(ctx, req.DocumentID, req.OwnerID, domain.JobTypeExtract)
	if err != nil {
		return "", fmt.Errorf("start extract job: %w", err)
	}

	text := o.registry.Extract(ctx, req.Content, req.MIMEType)
	logger.Debug("Extracted %d characters", len(text))

	if err := o.jobs.Complete(ctx, job, 0, 0); err != nil {
		return "", fmt.Errorf("complete extract job: %w", err)
	}
	return text, nil
}

// runChunk splits the text and wholesale-replaces the document's stored
// chunks under a chunk job. Text too short to produce any chunk still
// clears previously stored chunks, so a shrunken re-upload never leaves
// stale content behind.
func (o *RAGOrchestrator) runChunk(ctx context.Context, req driving.ProcessRequest, text string) ([]domain.Chunk, error) {
	job, err := o.jobs.Start(ctx, req.DocumentID, req.OwnerID, domain.JobTypeChunk)
	if err != nil {
		return nil, fmt.Errorf("start chunk job: %w", err)
	}

	pieces := o.splitter.Split(text)
	chunks := make([]domain.Chunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = domain.Chunk{
			ID:         uuid.NewString(),
			DocumentID: req.DocumentID,
			OwnerID:    req.OwnerID,
			Index:      i,
			Text:       piece,
			CharCount:  len(piece),
		}
	}

	if err := o.chunkStore.ReplaceChunks(ctx, req.DocumentID, chunks); err != nil {
		if failErr := o.jobs.Fail(ctx, job, err.Error()); failErr != nil {
			logger.Error("Failed to record job failure: %v", failErr)
		}
		return nil, fmt.Errorf("store chunks: %w", err)
	}
	logger.Info("Stored %d chunks", len(chunks))

	if err := o.jobs.Complete(ctx, job, len(chunks), 0); err != nil {
		return nil, fmt.Errorf("complete chunk job: %w", err)
	}
	return chunks, nil
}

// runEmbed generates vectors for the freshly stored chunks under an
// embed job. Provider failures degrade the affected chunks to
// "not embedded" and never fail the job; only a persistence failure
// does.
func (o *RAGOrchestrator) runEmbed(ctx context.Context, req driving.ProcessRequest, chunks []domain.Chunk) error {
	job, err := o.jobs.Start(ctx, req.DocumentID, req.OwnerID, domain.JobTypeEmbed)
	if err != nil {
		return fmt.Errorf("start embed job: %w", err)
	}

	vectors := o.embedChunks(ctx, chunks)

	model := o.embedder.ModelName()
	updates := make([]driven.EmbeddingUpdate, 0, len(chunks))
	for i, vec := range vectors {
		if vec == nil {
			continue
		}
		updates = append(updates, driven.EmbeddingUpdate{
			ChunkID:   chunks[i].ID,
			Embedding: domain.Embedding{Vector: vec, Model: model},
		})
	}

	embedded := 0
	if len(updates) > 0 {
		embedded, err = o.chunkStore.AttachEmbeddings(ctx, updates)
		if err != nil {
			if failErr := o.jobs.Fail(ctx, job, err.Error()); failErr != nil {
				logger.Error("Failed to record job failure: %v", failErr)
			}
			return fmt.Errorf("attach embeddings: %w", err)
		}
	}
	logger.Info("Embedded %d/%d chunks", embedded, len(chunks))

	if err := o.jobs.Complete(ctx, job, len(chunks), embedded); err != nil {
		return fmt.Errorf("complete embed job: %w", err)
	}
	return nil
}

// embedChunks returns one vector slot per chunk, nil where embedding
// failed. A batch failure falls back to per-item calls so one bad input
// doesn't lose the whole batch.
func (o *RAGOrchestrator) embedChunks(ctx context.Context, chunks []domain.Chunk) [][]float32 {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	batchCtx, cancel := context.WithTimeout(ctx, o.embedTimeout)
	vectors, err := o.embedder.EmbedBatch(batchCtx, texts)
	cancel()
	if err == nil && len(vectors) == len(chunks) {
		return vectors
	}
	if err != nil {
		logger.Warn("Batch embedding failed, retrying per chunk: %v", err)
	}

	vectors = make([][]float32, len(chunks))
	for i, text := range texts {
		itemCtx, cancel := context.WithTimeout(ctx, o.embedTimeout)
		vec, err := o.embedder.Embed(itemCtx, text)
		cancel()
		if err != nil {
			logger.Warn("Embedding chunk %d failed, leaving unembedded: %v", i, err)
			continue
		}
		vectors[i] = vec
	}
	return vectors
}

// Search returns ranked chunks for an owner's query. Semantic ranking
// runs when an embedding service is wired and the query embeds
// successfully; keyword ranking is the fallback, also used when
// semantic ranking returns nothing.
func (o *RAGOrchestrator) Search(ctx context.Context, ownerID, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.SearchResult{}, nil
	}

	topK := opts.TopK
	if topK <= 0 {
		topK = o.topK
	}
	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = o.threshold
	}

	chunks, err := o.chunkStore.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list chunks: %w", err)
	}
	if len(chunks) == 0 {
		return []domain.SearchResult{}, nil
	}

	results, err := o.semanticSearch(ctx, query, chunks, threshold, topK)
	switch {
	case errors.Is(err, domain.ErrEmbeddingUnavailable):
		logger.Debug("Semantic search disabled: %v", err)
	case err != nil:
		logger.Warn("Semantic search unavailable, falling back to keywords: %v", err)
	case len(results) > 0:
		return results, nil
	}

	logger.Debug("Keyword search for %q", query)
	return rankByKeywords(query, chunks, topK), nil
}

// semanticSearch embeds the query and ranks chunks by cosine similarity.
// Returns domain.ErrEmbeddingUnavailable when no embedding service is
// wired; callers fall back to keyword ranking.
func (o *RAGOrchestrator) semanticSearch(ctx context.Context, query string, chunks []domain.Chunk, threshold float64, topK int) ([]domain.SearchResult, error) {
	if o.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	embedCtx, cancel := context.WithTimeout(ctx, o.embedTimeout)
	defer cancel()

	queryVec, err := o.embedder.Embed(embedCtx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return rankBySimilarity(queryVec, chunks, threshold, topK), nil
}

// GetContext composes Search with context assembly: a length-bounded
// context string plus the source chunks actually used.
func (o *RAGOrchestrator) GetContext(ctx context.Context, ownerID, query string, maxContextLength int) (string, []domain.SearchResult, error) {
	results, err := o.Search(ctx, ownerID, query, domain.SearchOptions{})
	if err != nil {
		return "", nil, err
	}

	text, used := assembleContext(results, maxContextLength)
	return text, used, nil
}

// GetProcessingStatus reports the latest job for a document plus a live
// chunk count. A document with no job history reports not_processed
// rather than an error.
func (o *RAGOrchestrator) GetProcessingStatus(ctx context.Context, documentID string) (*driving.ProcessingStatus, error) {
	if documentID == "" {
		return nil, fmt.Errorf("document ID is required: %w", domain.ErrInvalidInput)
	}

	status := &driving.ProcessingStatus{
		DocumentID: documentID,
		Status:     domain.JobStatusNotProcessed,
	}

	job, err := o.jobs.store.Latest(ctx, documentID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		// No history: not_processed with whatever chunks exist.
	case err != nil:
		return nil, fmt.Errorf("latest job: %w", err)
	default:
		status.Status = job.Status
		status.JobType = job.Type
		status.ChunksCreated = job.ChunksCreated
		status.ChunksEmbedded = job.ChunksEmbedded
		status.ErrorMessage = job.ErrorMessage
	}

	count, err := o.chunkStore.CountByDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("count chunks: %w", err)
	}
	status.ChunkCount = count

	return status, nil
}

// ListJobs returns the append-only job history for a document, newest
// first.
func (o *RAGOrchestrator) ListJobs(ctx context.Context, documentID string) ([]domain.ProcessingJob, error) {
	if documentID == "" {
		return nil, fmt.Errorf("document ID is required: %w", domain.ErrInvalidInput)
	}
	return o.jobs.store.ListByDocument(ctx, documentID)
}

// DeleteDocumentData removes all chunks and job history for a document.
func (o *RAGOrchestrator) DeleteDocumentData(ctx context.Context, documentID string) error {
	if documentID == "" {
		return fmt.Errorf("document ID is required: %w", domain.ErrInvalidInput)
	}

	release := o.locks.acquire(documentID)
	defer release()

	if err := o.chunkStore.DeleteByDocument(ctx, documentID); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	if err := o.jobs.store.DeleteByDocument(ctx, documentID); err != nil {
		return fmt.Errorf("delete jobs: %w", err)
	}
	return nil
}

// ProcessingHandle tracks a dispatched background processing run.
// Callers that don't care about the outcome can drop the handle; the
// run finishes regardless.
type ProcessingHandle struct {
	done chan struct{}
	err  error
}

// Done is closed when the run finishes.
func (h *ProcessingHandle) Done() <-chan struct{} {
	return h.done
}

// Err returns the run's outcome. Valid only after Done is closed.
func (h *ProcessingHandle) Err() error {
	return h.err
}

// Wait blocks until the run finishes or the context is cancelled.
func (h *ProcessingHandle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return h.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ProcessDocumentAsync dispatches ProcessDocument on a goroutine and
// returns a handle for callers that want to observe completion. The
// background run uses its own context so it is not cancelled when the
// caller's request context ends.
func (o *RAGOrchestrator) ProcessDocumentAsync(req driving.ProcessRequest) *ProcessingHandle {
	h := &ProcessingHandle{done: make(chan struct{})}
	go func() {
		defer close(h.done)
		h.err = o.ProcessDocument(context.Background(), req)
		if h.err != nil {
			logger.Warn("Background processing of %s failed: %v", req.DocumentID, h.err)
		}
	}()
	return h
}
