package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fr0stylo/webhookd/internal/app/domain"
	"github.com/fr0stylo/webhookd/internal/app/ports"
)

// SyncStore keeps sync jobs and sync dead letters in memory.
type SyncStore struct {
	mu          sync.RWMutex
	order       []string
	jobs        map[string]domain.SyncJob
	deadLetters []domain.SyncDeadLetter
}

// NewSyncStore returns an empty store.
func NewSyncStore() *SyncStore {
	return &SyncStore{jobs: make(map[string]domain.SyncJob)}
}

func (s *SyncStore) CreateJob(_ context.Context, job domain.SyncJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[job.ID]; exists {
		return fmt.Errorf("sync job %s already exists", job.ID)
	}
	s.jobs[job.ID] = cloneJob(job)
	s.order = append(s.order, job.ID)
	return nil
}

func (s *SyncStore) GetJob(_ context.Context, id string) (domain.SyncJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return domain.SyncJob{}, ports.ErrNotFound
	}
	return cloneJob(job), nil
}

func (s *SyncStore) ListJobs(_ context.Context, filter domain.SyncJobFilter) ([]domain.SyncJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.SyncJob, 0, len(s.order))
	for _, id := range s.order {
		job := s.jobs[id]
		if filter.ProviderKey != "" && job.ProviderKey != filter.ProviderKey {
			continue
		}
		if filter.Status != "" && job.Status != filter.Status {
			continue
		}
		out = append(out, cloneJob(job))
	}
	return out, nil
}

func (s *SyncStore) SaveRun(_ context.Context, job domain.SyncJob, deadLetter *domain.SyncDeadLetter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.ID]; !ok {
		return ports.ErrNotFound
	}
	s.jobs[job.ID] = cloneJob(job)
	if deadLetter != nil {
		s.deadLetters = append(s.deadLetters, *deadLetter)
	}
	return nil
}

func (s *SyncStore) ListDeadLetters(_ context.Context, filter domain.SyncDeadLetterFilter) ([]domain.SyncDeadLetter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.SyncDeadLetter, 0)
	for i := len(s.deadLetters) - 1; i >= 0; i-- {
		entry := s.deadLetters[i]
		if filter.JobID != "" && entry.JobID != filter.JobID {
			continue
		}
		if filter.ProviderKey != "" && entry.ProviderKey != filter.ProviderKey {
			continue
		}
		out = append(out, entry)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

// Reset clears jobs and dead letters.
func (s *SyncStore) Reset(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = nil
	s.jobs = make(map[string]domain.SyncJob)
	s.deadLetters = nil
	return nil
}

func cloneJob(job domain.SyncJob) domain.SyncJob {
	job.Cursor = clonePtr(job.Cursor)
	job.LastError = clonePtr(job.LastError)
	job.LastRunAt = clonePtr(job.LastRunAt)
	job.NextRunAt = clonePtr(job.NextRunAt)
	return job
}

func clonePtr[T string | time.Time](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
