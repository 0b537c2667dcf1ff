package memory

import (
	"context"
	"sync"

	"github.com/planbridge-labs/docrag/internal/core/domain"
	"github.com/planbridge-labs/docrag/internal/core/ports/driven"
)

// Ensure JobStore implements the interface.
var _ driven.JobStore = (*JobStore)(nil)

// JobStore is an in-memory implementation of driven.JobStore.
type JobStore struct {
	mu   sync.RWMutex
	jobs []domain.ProcessingJob // append order = creation order
}

// NewJobStore creates a new in-memory job store.
func NewJobStore() *JobStore {
	return &JobStore{}
}

// Append stores a new job row.
func (s *JobStore) Append(_ context.Context, job *domain.ProcessingJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, *job)
	return nil
}

// Update rewrites an existing job row.
func (s *JobStore) Update(_ context.Context, job *domain.ProcessingJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.jobs {
		if s.jobs[i].ID == job.ID {
			s.jobs[i] = *job
			return nil
		}
	}
	return domain.ErrNotFound
}

// Latest returns the most recently created job for a document.
func (s *JobStore) Latest(_ context.Context, documentID string) (*domain.ProcessingJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.jobs) - 1; i >= 0; i-- {
		if s.jobs[i].DocumentID == documentID {
			job := s.jobs[i]
			return &job, nil
		}
	}
	return nil, domain.ErrNotFound
}

// ListByDocument returns all jobs for a document, newest first.
func (s *JobStore) ListByDocument(_ context.Context, documentID string) ([]domain.ProcessingJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Walk backward so append order gives newest first, even when two
	// rows share a creation timestamp.
	var jobs []domain.ProcessingJob
	for i := len(s.jobs) - 1; i >= 0; i-- {
		if s.jobs[i].DocumentID == documentID {
			jobs = append(jobs, s.jobs[i])
		}
	}
	return jobs, nil
}

// DeleteByDocument removes all job history for a document.
func (s *JobStore) DeleteByDocument(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.jobs[:0]
	for _, j := range s.jobs {
		if j.DocumentID != documentID {
			kept = append(kept, j)
		}
	}
	s.jobs = kept
	return nil
}
