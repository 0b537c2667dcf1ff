package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/planbridge-labs/docrag/internal/core/domain"
	"github.com/planbridge-labs/docrag/internal/core/ports/driven"
)

// JobTracker drives processing jobs through their lifecycle:
// pending -> processing -> completed | failed. Terminal jobs are never
// reopened; reprocessing a document appends fresh rows instead.
type JobTracker struct {
	store driven.JobStore
	now   func() time.Time
}

// NewJobTracker creates a job tracker backed by the given store.
func NewJobTracker(store driven.JobStore) *JobTracker {
	return &JobTracker{
		store: store,
		now:   time.Now,
	}
}

// Start appends a pending job row for the given stage and immediately
// advances it to processing. The returned job is live: pass it to
// Complete or Fail when the stage finishes.
func (t *JobTracker) Start(ctx context.Context, documentID, ownerID string, jobType domain.JobType) (*domain.ProcessingJob, error) {
	job := &domain.ProcessingJob{
		ID:         uuid.NewString(),
		DocumentID: documentID,
		OwnerID:    ownerID,
		Type:       jobType,
		Status:     domain.JobStatusPending,
		CreatedAt:  t.now(),
	}
	if err := t.store.Append(ctx, job); err != nil {
		return nil, fmt.Errorf("append job: %w", err)
	}

	if err := t.transition(ctx, job, domain.JobStatusProcessing); err != nil {
		return nil, err
	}
	return job, nil
}

// Complete marks the job completed and records the work counters.
func (t *JobTracker) Complete(ctx context.Context, job *domain.ProcessingJob, chunksCreated, chunksEmbedded int) error {
	if err := t.guard(job, domain.JobStatusCompleted); err != nil {
		return err
	}
	job.ChunksCreated = chunksCreated
	job.ChunksEmbedded = chunksEmbedded
	return t.transition(ctx, job, domain.JobStatusCompleted)
}

// Fail marks the job failed with the given reason.
func (t *JobTracker) Fail(ctx context.Context, job *domain.ProcessingJob, reason string) error {
	if err := t.guard(job, domain.JobStatusFailed); err != nil {
		return err
	}
	job.ErrorMessage = reason
	return t.transition(ctx, job, domain.JobStatusFailed)
}

// guard rejects illegal transitions before the caller's job struct is
// touched, so a rejected update leaves it unchanged.
func (t *JobTracker) guard(job *domain.ProcessingJob, next domain.JobStatus) error {
	if job.Status.Terminal() {
		return fmt.Errorf("job %s is %s: %w", job.ID, job.Status, domain.ErrJobClosed)
	}
	if !job.Status.CanTransitionTo(next) {
		return fmt.Errorf("job %s cannot move from %s to %s: %w", job.ID, job.Status, next, domain.ErrInvalidInput)
	}
	return nil
}

// transition enforces the state machine before persisting.
func (t *JobTracker) transition(ctx context.Context, job *domain.ProcessingJob, next domain.JobStatus) error {
	if err := t.guard(job, next); err != nil {
		return err
	}

	job.Status = next
	switch next {
	case domain.JobStatusProcessing:
		job.StartedAt = t.now()
	case domain.JobStatusCompleted, domain.JobStatusFailed:
		job.CompletedAt = t.now()
	}

	if err := t.store.Update(ctx, job); err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	return nil
}
