package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planbridge-labs/docrag/internal/core/domain"
	"github.com/planbridge-labs/docrag/internal/core/ports/driving"
)

// fakeRAGService returns canned data for command output tests.
type fakeRAGService struct {
	results       []domain.SearchResult
	status        *driving.ProcessingStatus
	jobs          []domain.ProcessingJob
	searchErr     error
	deleted       []string
	processed     []driving.ProcessRequest
	contextMaxLen int
}

func (f *fakeRAGService) ProcessDocument(_ context.Context, req driving.ProcessRequest) error {
	f.processed = append(f.processed, req)
	return nil
}

func (f *fakeRAGService) Search(context.Context, string, string, domain.SearchOptions) ([]domain.SearchResult, error) {
	return f.results, f.searchErr
}

func (f *fakeRAGService) GetContext(_ context.Context, _, _ string, maxContextLength int) (string, []domain.SearchResult, error) {
	f.contextMaxLen = maxContextLength
	text := ""
	if len(f.results) > 0 {
		text = f.results[0].Chunk.Text
	}
	return text, f.results, nil
}

func (f *fakeRAGService) GetProcessingStatus(context.Context, string) (*driving.ProcessingStatus, error) {
	return f.status, nil
}

func (f *fakeRAGService) ListJobs(context.Context, string) ([]domain.ProcessingJob, error) {
	return f.jobs, nil
}

func (f *fakeRAGService) DeleteDocumentData(_ context.Context, documentID string) error {
	f.deleted = append(f.deleted, documentID)
	return nil
}

// setupTestService swaps in a fake and returns a cleanup.
func setupTestService(fake *fakeRAGService) func() {
	old := ragService
	ragService = fake
	return func() {
		ragService = old
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestVersionCmd(t *testing.T) {
	cleanup := setupTestService(&fakeRAGService{})
	defer cleanup()

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "docrag version")
}

func TestSearchCmd_Table(t *testing.T) {
	cleanup := setupTestService(&fakeRAGService{
		results: []domain.SearchResult{
			{
				Chunk: domain.Chunk{DocumentID: "care-plan.pdf", Index: 2, Text: "Respite support is scheduled monthly."},
				Score: 0.91,
				Type:  domain.SearchTypeSemantic,
			},
		},
	})
	defer cleanup()

	out, err := execute(t, "search", "--owner", "p-42", "respite")
	require.NoError(t, err)
	assert.Contains(t, out, "care-plan.pdf #2")
	assert.Contains(t, out, "0.91")
	assert.Contains(t, out, "Respite support")
}

func TestSearchCmd_JSON(t *testing.T) {
	cleanup := setupTestService(&fakeRAGService{
		results: []domain.SearchResult{
			{Chunk: domain.Chunk{DocumentID: "doc-1"}, Score: 0.8, Type: domain.SearchTypeKeyword},
		},
	})
	defer cleanup()
	defer func() { searchJSON = false }()

	out, err := execute(t, "search", "--owner", "p-42", "--json", "query")
	require.NoError(t, err)
	assert.Contains(t, out, "\"Score\"")
	assert.Contains(t, out, "doc-1")
}

func TestSearchCmd_NoResults(t *testing.T) {
	cleanup := setupTestService(&fakeRAGService{})
	defer cleanup()

	out, err := execute(t, "search", "--owner", "p-42", "nothing")
	require.NoError(t, err)
	assert.Contains(t, out, "No results found")
}

func TestStatusCmd(t *testing.T) {
	cleanup := setupTestService(&fakeRAGService{
		status: &driving.ProcessingStatus{
			DocumentID:     "care-plan.pdf",
			Status:         domain.JobStatusCompleted,
			JobType:        domain.JobTypeEmbed,
			ChunkCount:     12,
			ChunksEmbedded: 12,
		},
	})
	defer cleanup()

	out, err := execute(t, "status", "care-plan.pdf")
	require.NoError(t, err)
	assert.Contains(t, out, "completed")
	assert.Contains(t, out, "12 stored, 12 embedded")
}

func TestStatusCmd_NotProcessed(t *testing.T) {
	cleanup := setupTestService(&fakeRAGService{
		status: &driving.ProcessingStatus{
			DocumentID: "new.pdf",
			Status:     domain.JobStatusNotProcessed,
		},
	})
	defer cleanup()

	out, err := execute(t, "status", "new.pdf")
	require.NoError(t, err)
	assert.Contains(t, out, "not processed")
}

func TestJobsCmd(t *testing.T) {
	cleanup := setupTestService(&fakeRAGService{
		jobs: []domain.ProcessingJob{
			{
				Type: domain.JobTypeChunk, Status: domain.JobStatusCompleted,
				ChunksCreated: 4, CreatedAt: time.Now(),
			},
			{
				Type: domain.JobTypeExtract, Status: domain.JobStatusFailed,
				ErrorMessage: "boom", CreatedAt: time.Now(),
			},
		},
	})
	defer cleanup()

	out, err := execute(t, "jobs", "doc-1")
	require.NoError(t, err)
	assert.Contains(t, out, "chunks=4")
	assert.Contains(t, out, "error=boom")
}

func TestContextCmd_UsesConfiguredBudget(t *testing.T) {
	fake := &fakeRAGService{
		results: []domain.SearchResult{
			{Chunk: domain.Chunk{DocumentID: "doc-1", Text: "Respite support."}, Score: 0.9},
		},
	}
	cleanup := setupTestService(fake)
	defer cleanup()

	oldConfig := appConfig
	appConfig.Search.MaxContextLength = 750
	defer func() { appConfig = oldConfig }()

	_, err := execute(t, "context", "--owner", "p-42", "respite")
	require.NoError(t, err)
	assert.Equal(t, 750, fake.contextMaxLen, "config budget applies when the flag is unset")
}

func TestContextCmd_FlagOverridesConfig(t *testing.T) {
	fake := &fakeRAGService{}
	cleanup := setupTestService(fake)
	defer cleanup()
	defer func() { contextMaxLen = 0 }()

	oldConfig := appConfig
	appConfig.Search.MaxContextLength = 750
	defer func() { appConfig = oldConfig }()

	_, err := execute(t, "context", "--owner", "p-42", "--max-length", "300", "respite")
	require.NoError(t, err)
	assert.Equal(t, 300, fake.contextMaxLen)
}

func TestDeleteCmd(t *testing.T) {
	fake := &fakeRAGService{}
	cleanup := setupTestService(fake)
	defer cleanup()

	out, err := execute(t, "delete", "doc-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted all data for doc-1")
	assert.Equal(t, []string{"doc-1"}, fake.deleted)
}

func TestMimeTypeFor(t *testing.T) {
	assert.Equal(t, "application/pdf", mimeTypeFor("a/b/plan.PDF"))
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		mimeTypeFor("notes.docx"))
	assert.Equal(t, "text/markdown", mimeTypeFor("README.md"))
	assert.Equal(t, "text/plain", mimeTypeFor("log.txt"))
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "short", snippet("short", 50))
	assert.Equal(t, "a b", snippet("a\nb", 50))
	long := snippet("aaaaaaaaaa", 5)
	assert.Equal(t, "aaaaa...", long)
}
