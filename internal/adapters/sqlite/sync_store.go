package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fr0stylo/webhookd/internal/app/domain"
	"github.com/fr0stylo/webhookd/internal/app/ports"
	"github.com/fr0stylo/webhookd/internal/db/queries"
)

// SyncStore persists sync jobs and sync dead letters.
type SyncStore struct {
	db syncDatabase
}

// NewSyncStore wraps database.
func NewSyncStore(database syncDatabase) *SyncStore {
	return &SyncStore{db: database}
}

func (s *SyncStore) CreateJob(ctx context.Context, job domain.SyncJob) error {
	return s.db.InsertSyncJob(ctx, queries.InsertSyncJobParams{
		ID:            job.ID,
		ProviderKey:   job.ProviderKey,
		BrandID:       job.BrandID,
		Frequency:     string(job.Frequency),
		Status:        string(job.Status),
		Cursor:        nullString(job.Cursor),
		RetryCount:    int64(job.RetryCount),
		MaxRetries:    int64(job.MaxRetries),
		BaseBackoffMs: job.BaseBackoffMS,
		LastRunAt:     nullTime(job.LastRunAt),
		NextRunAt:     nullTime(job.NextRunAt),
		LastError:     nullString(job.LastError),
		CreatedAt:     formatTime(job.CreatedAt),
		UpdatedAt:     formatTime(job.UpdatedAt),
	})
}

func (s *SyncStore) GetJob(ctx context.Context, id string) (domain.SyncJob, error) {
	row, err := s.db.GetSyncJob(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.SyncJob{}, ports.ErrNotFound
	}
	if err != nil {
		return domain.SyncJob{}, err
	}
	return jobFromRow(row)
}

func (s *SyncStore) ListJobs(ctx context.Context, filter domain.SyncJobFilter) ([]domain.SyncJob, error) {
	rows, err := s.db.ListSyncJobs(ctx, queries.ListSyncJobsParams{
		ProviderKey: filter.ProviderKey,
		Status:      string(filter.Status),
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.SyncJob, 0, len(rows))
	for _, row := range rows {
		job, err := jobFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	return out, nil
}

func (s *SyncStore) SaveRun(ctx context.Context, job domain.SyncJob, deadLetter *domain.SyncDeadLetter) error {
	update := queries.UpdateSyncJobRunParams{
		ID:         job.ID,
		Status:     string(job.Status),
		Cursor:     nullString(job.Cursor),
		RetryCount: int64(job.RetryCount),
		LastRunAt:  nullTime(job.LastRunAt),
		NextRunAt:  nullTime(job.NextRunAt),
		LastError:  nullString(job.LastError),
		UpdatedAt:  formatTime(job.UpdatedAt),
	}
	var entry *queries.InsertSyncDeadLetterParams
	if deadLetter != nil {
		entry = &queries.InsertSyncDeadLetterParams{
			ID:          deadLetter.ID,
			JobID:       deadLetter.JobID,
			ProviderKey: deadLetter.ProviderKey,
			FailedAt:    formatTime(deadLetter.FailedAt),
			Reason:      deadLetter.Reason,
			RetryCount:  int64(deadLetter.RetryCount),
		}
	}
	err := s.db.SaveSyncRun(ctx, update, entry)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.ErrNotFound
	}
	return err
}

func (s *SyncStore) ListDeadLetters(ctx context.Context, filter domain.SyncDeadLetterFilter) ([]domain.SyncDeadLetter, error) {
	rows, err := s.db.ListSyncDeadLetters(ctx, queries.ListSyncDeadLettersParams{
		JobID:       filter.JobID,
		ProviderKey: filter.ProviderKey,
		Limit:       queryLimit(filter.Limit),
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.SyncDeadLetter, 0, len(rows))
	for _, row := range rows {
		failedAt, err := parseTime(row.FailedAt)
		if err != nil {
			return nil, fmt.Errorf("parse failed_at of dead letter %s: %w", row.ID, err)
		}
		out = append(out, domain.SyncDeadLetter{
			ID:          row.ID,
			JobID:       row.JobID,
			ProviderKey: row.ProviderKey,
			FailedAt:    failedAt,
			Reason:      row.Reason,
			RetryCount:  int(row.RetryCount),
		})
	}
	return out, nil
}

func (s *SyncStore) Reset(ctx context.Context) error {
	return s.db.ResetSync(ctx)
}

func jobFromRow(row queries.SyncJob) (domain.SyncJob, error) {
	createdAt, err := parseTime(row.CreatedAt)
	if err != nil {
		return domain.SyncJob{}, fmt.Errorf("parse created_at of job %s: %w", row.ID, err)
	}
	updatedAt, err := parseTime(row.UpdatedAt)
	if err != nil {
		return domain.SyncJob{}, fmt.Errorf("parse updated_at of job %s: %w", row.ID, err)
	}
	lastRunAt, err := parseNullTime(row.LastRunAt)
	if err != nil {
		return domain.SyncJob{}, fmt.Errorf("parse last_run_at of job %s: %w", row.ID, err)
	}
	nextRunAt, err := parseNullTime(row.NextRunAt)
	if err != nil {
		return domain.SyncJob{}, fmt.Errorf("parse next_run_at of job %s: %w", row.ID, err)
	}
	return domain.SyncJob{
		ID:            row.ID,
		ProviderKey:   row.ProviderKey,
		BrandID:       row.BrandID,
		Frequency:     domain.SyncFrequency(row.Frequency),
		Status:        domain.SyncJobStatus(row.Status),
		Cursor:        stringPtr(row.Cursor),
		RetryCount:    int(row.RetryCount),
		MaxRetries:    int(row.MaxRetries),
		BaseBackoffMS: row.BaseBackoffMs,
		LastRunAt:     lastRunAt,
		NextRunAt:     nextRunAt,
		LastError:     stringPtr(row.LastError),
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}, nil
}
