// Package sqlite provides the durable chunk and job stores backed by
// SQLite via modernc.org/sqlite (no cgo).
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/planbridge-labs/docrag/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/planbridge-labs/docrag/internal/core/domain"
	"github.com/planbridge-labs/docrag/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to the
// chunk and job store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.docrag/data/docrag.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".docrag", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "docrag.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// ChunkStore returns a ChunkStore interface backed by this store.
func (s *Store) ChunkStore() driven.ChunkStore {
	return &chunkStore{store: s}
}

// JobStore returns a JobStore interface backed by this store.
func (s *Store) JobStore() driven.JobStore {
	return &jobStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Chunk Store ====================

// chunkStore implements driven.ChunkStore.
type chunkStore struct {
	store *Store
}

var _ driven.ChunkStore = (*chunkStore)(nil)

// ReplaceChunks atomically deletes all existing chunks for the document
// and inserts the new ordered set in one transaction, so readers never
// observe the document transiently without chunks.
func (s *chunkStore) ReplaceChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("deleting prior chunks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, owner_id, chunk_index, text, char_count, embedding, embedding_model, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		metadataJSON, err := json.Marshal(chunk.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling chunk metadata: %w", err)
		}

		var embeddingBlob []byte
		if chunk.Embedding.Present() {
			embeddingBlob = float32SliceToBytes(chunk.Embedding.Vector)
		}

		if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.DocumentID, chunk.OwnerID,
			chunk.Index, chunk.Text, chunk.CharCount, embeddingBlob,
			chunk.Embedding.Model, string(metadataJSON)); err != nil {
			return fmt.Errorf("inserting chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// AttachEmbeddings attaches vectors to chunks that currently lack one.
// A chunk that already carries a vector is never overwritten.
func (s *chunkStore) AttachEmbeddings(ctx context.Context, updates []driven.EmbeddingUpdate) (int, error) {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		UPDATE chunks SET embedding = ?, embedding_model = ?
		WHERE id = ? AND (embedding IS NULL OR length(embedding) = 0)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	attached := 0
	for _, u := range updates {
		if !u.Embedding.Present() {
			continue
		}

		res, err := stmt.ExecContext(ctx, float32SliceToBytes(u.Embedding.Vector), u.Embedding.Model, u.ChunkID)
		if err != nil {
			return 0, fmt.Errorf("attaching embedding: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			attached += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return attached, nil
}

// GetChunk retrieves a single chunk by ID.
func (s *chunkStore) GetChunk(ctx context.Context, id string) (*domain.Chunk, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, document_id, owner_id, chunk_index, text, char_count, embedding, embedding_model, metadata
		FROM chunks WHERE id = ?
	`, id)

	chunk, err := scanChunk(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	return chunk, err
}

// ListByDocument returns the document's chunks ordered by chunk index.
func (s *chunkStore) ListByDocument(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	return s.queryChunks(ctx, `
		SELECT id, document_id, owner_id, chunk_index, text, char_count, embedding, embedding_model, metadata
		FROM chunks WHERE document_id = ?
		ORDER BY chunk_index
	`, documentID)
}

// ListByOwner returns all chunks for an owner, ordered by
// (document_id, chunk_index) for deterministic ranking tie-breaks.
func (s *chunkStore) ListByOwner(ctx context.Context, ownerID string) ([]domain.Chunk, error) {
	return s.queryChunks(ctx, `
		SELECT id, document_id, owner_id, chunk_index, text, char_count, embedding, embedding_model, metadata
		FROM chunks WHERE owner_id = ?
		ORDER BY document_id, chunk_index
	`, ownerID)
}

// CountByDocument returns the live chunk count for a document.
func (s *chunkStore) CountByDocument(ctx context.Context, documentID string) (int, error) {
	var count int
	row := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks WHERE document_id = ?", documentID)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return count, nil
}

// DeleteByDocument removes all chunks for a document.
func (s *chunkStore) DeleteByDocument(ctx context.Context, documentID string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}
	return nil
}

func (s *chunkStore) queryChunks(ctx context.Context, query string, arg any) ([]domain.Chunk, error) {
	rows, err := s.store.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, *chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return chunks, nil
}

// scanner abstracts *sql.Row and *sql.Rows for shared scan logic.
type scanner interface {
	Scan(dest ...any) error
}

func scanChunk(row scanner) (*domain.Chunk, error) {
	var chunk domain.Chunk
	var embeddingBlob []byte
	var metadataJSON string

	if err := row.Scan(&chunk.ID, &chunk.DocumentID, &chunk.OwnerID, &chunk.Index,
		&chunk.Text, &chunk.CharCount, &embeddingBlob, &chunk.Embedding.Model,
		&metadataJSON); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}

	chunk.Embedding.Vector = bytesToFloat32Slice(embeddingBlob)
	if metadataJSON != "" && metadataJSON != "null" {
		if err := json.Unmarshal([]byte(metadataJSON), &chunk.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshalling chunk metadata: %w", err)
		}
	}
	return &chunk, nil
}

// float32SliceToBytes converts a vector to little-endian bytes for BLOB
// storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 || len(data)%4 != 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// ==================== Job Store ====================

// jobStore implements driven.JobStore.
type jobStore struct {
	store *Store
}

var _ driven.JobStore = (*jobStore)(nil)

// Append stores a new job row.
func (s *jobStore) Append(ctx context.Context, job *domain.ProcessingJob) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO processing_jobs (id, document_id, owner_id, job_type, status,
			chunks_created, chunks_embedded, error_message, created_at, started_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, job.ID, job.DocumentID, job.OwnerID, string(job.Type), string(job.Status),
		job.ChunksCreated, job.ChunksEmbedded, job.ErrorMessage,
		job.CreatedAt, nullableTime(job.StartedAt), nullableTime(job.CompletedAt))

	if err != nil {
		return fmt.Errorf("appending job: %w", err)
	}
	return nil
}

// Update rewrites an existing job row.
func (s *jobStore) Update(ctx context.Context, job *domain.ProcessingJob) error {
	res, err := s.store.db.ExecContext(ctx, `
		UPDATE processing_jobs SET status = ?, chunks_created = ?, chunks_embedded = ?,
			error_message = ?, started_at = ?, completed_at = ?
		WHERE id = ?
	`, string(job.Status), job.ChunksCreated, job.ChunksEmbedded, job.ErrorMessage,
		nullableTime(job.StartedAt), nullableTime(job.CompletedAt), job.ID)

	if err != nil {
		return fmt.Errorf("updating job: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Latest returns the most recently created job for a document.
func (s *jobStore) Latest(ctx context.Context, documentID string) (*domain.ProcessingJob, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, document_id, owner_id, job_type, status, chunks_created,
			chunks_embedded, error_message, created_at, started_at, completed_at
		FROM processing_jobs WHERE document_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT 1
	`, documentID)

	job, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	return job, err
}

// ListByDocument returns all jobs for a document, newest first.
func (s *jobStore) ListByDocument(ctx context.Context, documentID string) ([]domain.ProcessingJob, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, document_id, owner_id, job_type, status, chunks_created,
			chunks_embedded, error_message, created_at, started_at, completed_at
		FROM processing_jobs WHERE document_id = ?
		ORDER BY created_at DESC, rowid DESC
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying jobs: %w", err)
	}
	defer rows.Close()

	var jobs []domain.ProcessingJob //nolint:prealloc // size unknown from query
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating jobs: %w", err)
	}
	return jobs, nil
}

// DeleteByDocument removes all job history for a document.
func (s *jobStore) DeleteByDocument(ctx context.Context, documentID string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM processing_jobs WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("deleting jobs: %w", err)
	}
	return nil
}

func scanJob(row scanner) (*domain.ProcessingJob, error) {
	var job domain.ProcessingJob
	var jobType, status string
	var startedAt, completedAt sql.NullTime

	if err := row.Scan(&job.ID, &job.DocumentID, &job.OwnerID, &jobType, &status,
		&job.ChunksCreated, &job.ChunksEmbedded, &job.ErrorMessage,
		&job.CreatedAt, &startedAt, &completedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning job: %w", err)
	}

	job.Type = domain.JobType(jobType)
	job.Status = domain.JobStatus(status)
	if startedAt.Valid {
		job.StartedAt = startedAt.Time
	}
	if completedAt.Valid {
		job.CompletedAt = completedAt.Time
	}
	return &job, nil
}

// nullableTime maps the zero time to NULL.
func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
