package ports

import (
	"context"
	"errors"

	"github.com/fr0stylo/webhookd/internal/app/domain"
)

// ErrRateLimited is returned by pullers when the upstream provider throttles the call.
var ErrRateLimited = errors.New("provider rate limited")

// SyncStore holds sync job state and the sync dead-letter ledger.
type SyncStore interface {
	CreateJob(ctx context.Context, job domain.SyncJob) error
	GetJob(ctx context.Context, id string) (domain.SyncJob, error)
	ListJobs(ctx context.Context, filter domain.SyncJobFilter) ([]domain.SyncJob, error)
	// SaveRun persists job and, when non-nil, deadLetter as one atomic update.
	SaveRun(ctx context.Context, job domain.SyncJob, deadLetter *domain.SyncDeadLetter) error
	ListDeadLetters(ctx context.Context, filter domain.SyncDeadLetterFilter) ([]domain.SyncDeadLetter, error)
	Reset(ctx context.Context) error
}

// PullResult is what one upstream pull produced.
type PullResult struct {
	Records int
	Cursor  string
}

// SyncPuller fetches the next page of provider data for a job.
type SyncPuller interface {
	Pull(ctx context.Context, job domain.SyncJob) (PullResult, error)
}
