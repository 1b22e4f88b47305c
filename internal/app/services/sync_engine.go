package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/fr0stylo/webhookd/internal/app/apperr"
	"github.com/fr0stylo/webhookd/internal/app/domain"
	"github.com/fr0stylo/webhookd/internal/app/ports"
	"github.com/fr0stylo/webhookd/internal/observability"
)

const (
	defaultSyncMaxRetries  = 3
	defaultSyncBaseBackoff = 30 * time.Second
	defaultSyncPullTimeout = 10 * time.Second
	maxSyncBackoff         = 7 * 24 * time.Hour
)

// SyncEngineConfig tunes job defaults and run behaviour.
type SyncEngineConfig struct {
	DefaultMaxRetries  int
	DefaultBaseBackoff time.Duration
	PullTimeout        time.Duration
	Now                func() time.Time
}

// CreateJobInput is the validated input for CreateJob.
type CreateJobInput struct {
	ProviderKey   string `json:"providerKey" validate:"required,max=64"`
	BrandID       string `json:"brandId" validate:"required,max=128"`
	Frequency     string `json:"frequency" validate:"required,oneof=hourly daily"`
	MaxRetries    *int   `json:"maxRetries" validate:"omitempty,min=0,max=20"`
	BaseBackoffMS *int64 `json:"baseBackoffMs" validate:"omitempty,min=1,max=86400000"`
}

// RunCommand triggers one sync run.
type RunCommand struct {
	JobID             string
	SimulateRateLimit bool
}

// SyncEngine runs provider sync jobs with exponential backoff and dead-lettering.
type SyncEngine struct {
	store    ports.SyncStore
	puller   ports.SyncPuller
	notifier ports.DeadLetterNotifier
	log      *slog.Logger
	metrics  syncMetrics
	locks    *keyedMutex
	validate *validator.Validate
	cfg      SyncEngineConfig
}

// NewSyncEngine constructs a sync engine. A nil notifier disables publishing.
func NewSyncEngine(
	store ports.SyncStore,
	puller ports.SyncPuller,
	notifier ports.DeadLetterNotifier,
	log *slog.Logger,
	cfg SyncEngineConfig,
) *SyncEngine {
	if log == nil {
		log = slog.Default()
	}
	if cfg.DefaultMaxRetries < 0 {
		cfg.DefaultMaxRetries = defaultSyncMaxRetries
	}
	if cfg.DefaultBaseBackoff <= 0 {
		cfg.DefaultBaseBackoff = defaultSyncBaseBackoff
	}
	if cfg.PullTimeout <= 0 {
		cfg.PullTimeout = defaultSyncPullTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &SyncEngine{
		store:    store,
		puller:   puller,
		notifier: notifier,
		log:      log.With("component", "sync.engine"),
		metrics:  newSyncMetrics(),
		locks:    newKeyedMutex(),
		validate: newValidator(),
		cfg:      cfg,
	}
}

// CreateJob registers an active job that is due immediately.
func (e *SyncEngine) CreateJob(ctx context.Context, input CreateJobInput) (domain.SyncJob, error) {
	input.ProviderKey = strings.ToLower(strings.TrimSpace(input.ProviderKey))
	input.BrandID = strings.TrimSpace(input.BrandID)
	input.Frequency = strings.ToLower(strings.TrimSpace(input.Frequency))
	if err := e.validate.Struct(input); err != nil {
		return domain.SyncJob{}, validationError(err)
	}

	now := e.cfg.Now().UTC()
	job := domain.SyncJob{
		ID:            uuid.NewString(),
		ProviderKey:   input.ProviderKey,
		BrandID:       input.BrandID,
		Frequency:     domain.SyncFrequency(input.Frequency),
		Status:        domain.SyncJobActive,
		MaxRetries:    e.cfg.DefaultMaxRetries,
		BaseBackoffMS: e.cfg.DefaultBaseBackoff.Milliseconds(),
		NextRunAt:     &now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if input.MaxRetries != nil {
		job.MaxRetries = *input.MaxRetries
	}
	if input.BaseBackoffMS != nil {
		job.BaseBackoffMS = *input.BaseBackoffMS
	}
	if err := e.store.CreateJob(ctx, job); err != nil {
		return domain.SyncJob{}, apperr.Internal(fmt.Errorf("create sync job: %w", err))
	}
	e.log.InfoContext(ctx, "sync job created", "job_id", job.ID, "provider", job.ProviderKey, "brand_id", job.BrandID)
	return job, nil
}

// GetJob returns one job.
func (e *SyncEngine) GetJob(ctx context.Context, id string) (domain.SyncJob, error) {
	job, err := e.store.GetJob(ctx, strings.TrimSpace(id))
	if err != nil {
		return domain.SyncJob{}, jobLookupError(id, err)
	}
	return job, nil
}

// ListJobs returns jobs ordered by creation time.
func (e *SyncEngine) ListJobs(ctx context.Context, filter domain.SyncJobFilter) ([]domain.SyncJob, error) {
	switch filter.Status {
	case "", domain.SyncJobActive, domain.SyncJobPaused:
	default:
		return nil, apperr.ErrValidation.WithMessage("status must be active or paused")
	}
	filter.ProviderKey = strings.ToLower(strings.TrimSpace(filter.ProviderKey))
	jobs, err := e.store.ListJobs(ctx, filter)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("list sync jobs: %w", err))
	}
	return jobs, nil
}

// ListDeadLetters returns sync dead letters, most recent first.
func (e *SyncEngine) ListDeadLetters(ctx context.Context, filter domain.SyncDeadLetterFilter) ([]domain.SyncDeadLetter, error) {
	filter.JobID = strings.TrimSpace(filter.JobID)
	filter.ProviderKey = strings.ToLower(strings.TrimSpace(filter.ProviderKey))
	filter.Limit = normalizeLimit(filter.Limit)
	entries, err := e.store.ListDeadLetters(ctx, filter)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("list sync dead letters: %w", err))
	}
	return entries, nil
}

// ResumeJob reactivates a paused job with a fresh retry budget, due immediately.
func (e *SyncEngine) ResumeJob(ctx context.Context, id string) (domain.SyncJob, error) {
	id = strings.TrimSpace(id)
	unlock, err := e.locks.Lock(ctx, id)
	if err != nil {
		return domain.SyncJob{}, err
	}
	defer unlock()

	job, err := e.store.GetJob(ctx, id)
	if err != nil {
		return domain.SyncJob{}, jobLookupError(id, err)
	}
	if job.Status == domain.SyncJobActive {
		return domain.SyncJob{}, apperr.ErrSyncJobActive.WithDetails(map[string]any{"jobId": id})
	}

	now := e.cfg.Now().UTC()
	job.Status = domain.SyncJobActive
	job.RetryCount = 0
	job.NextRunAt = &now
	job.UpdatedAt = now
	if err := e.store.SaveRun(ctx, job, nil); err != nil {
		return domain.SyncJob{}, apperr.Internal(fmt.Errorf("resume sync job: %w", err))
	}
	e.log.InfoContext(ctx, "sync job resumed", "job_id", job.ID, "provider", job.ProviderKey)
	return job, nil
}

// Run executes one pull for the job and applies success, retry or dead-letter transitions.
func (e *SyncEngine) Run(ctx context.Context, cmd RunCommand) (domain.SyncRunResult, error) {
	jobID := strings.TrimSpace(cmd.JobID)
	unlock, err := e.locks.Lock(ctx, jobID)
	if err != nil {
		return domain.SyncRunResult{}, err
	}
	defer unlock()

	job, err := e.store.GetJob(ctx, jobID)
	if err != nil {
		return domain.SyncRunResult{}, jobLookupError(jobID, err)
	}
	if job.Status != domain.SyncJobActive {
		return domain.SyncRunResult{}, apperr.ErrSyncJobInactive.WithDetails(map[string]any{
			"jobId":  job.ID,
			"status": job.Status,
		})
	}
	ctx = observability.WithSyncIdentity(ctx, job.ID, job.ProviderKey)

	startedAt := e.cfg.Now().UTC()
	result := domain.SyncRunResult{
		JobID:     job.ID,
		RunID:     uuid.NewString(),
		Attempt:   job.RetryCount + 1,
		StartedAt: startedAt,
	}

	pulled, pullErr := e.pull(ctx, job, cmd.SimulateRateLimit)
	if pullErr != nil && ctx.Err() != nil {
		return domain.SyncRunResult{}, fmt.Errorf("sync run canceled: %w", ctx.Err())
	}

	finishedAt := e.cfg.Now().UTC()
	result.FinishedAt = finishedAt
	result.DurationMS = finishedAt.Sub(startedAt).Milliseconds()
	job.LastRunAt = &finishedAt
	job.UpdatedAt = finishedAt

	var deadLetter *domain.SyncDeadLetter
	if pullErr != nil {
		result.RateLimited = errors.Is(pullErr, ports.ErrRateLimited) || errors.Is(pullErr, context.DeadlineExceeded)
		reason := failureReason(pullErr, e.cfg.PullTimeout)
		job.RetryCount++
		job.LastError = &reason
		result.Cursor = job.Cursor

		if job.RetryCount > job.MaxRetries {
			job.Status = domain.SyncJobPaused
			job.NextRunAt = nil
			deadLetter = &domain.SyncDeadLetter{
				ID:          uuid.NewString(),
				JobID:       job.ID,
				ProviderKey: job.ProviderKey,
				FailedAt:    finishedAt,
				Reason:      reason,
				RetryCount:  job.RetryCount,
			}
			result.Status = domain.SyncRunDeadLetter
		} else {
			next := finishedAt.Add(backoffDelay(job.BaseBackoffMS, job.RetryCount))
			job.NextRunAt = &next
			result.NextRetryAt = &next
			result.Status = domain.SyncRunRetryScheduled
		}
	} else {
		cursor := pulled.Cursor
		job.Cursor = &cursor
		job.RetryCount = 0
		job.LastError = nil
		next := finishedAt.Add(job.Frequency.Interval())
		job.NextRunAt = &next
		result.Status = domain.SyncRunSuccess
		result.ProcessedRecords = pulled.Records
		result.Cursor = &cursor
		result.NextScheduledRunAt = &next
	}

	if err := e.store.SaveRun(ctx, job, deadLetter); err != nil {
		return domain.SyncRunResult{}, apperr.Internal(fmt.Errorf("save sync run: %w", err))
	}
	e.metrics.recordRun(ctx, job.ProviderKey, string(result.Status), result.DurationMS)
	e.logRun(ctx, job, result)

	if deadLetter != nil {
		e.metrics.recordDeadLetter(ctx, job.ProviderKey)
		if e.notifier != nil {
			if err := e.notifier.SyncDeadLettered(ctx, *deadLetter); err != nil {
				e.log.WarnContext(ctx, "publish sync dead letter failed", "dead_letter_id", deadLetter.ID, "error", err)
			}
		}
	}
	return result, nil
}

func (e *SyncEngine) pull(ctx context.Context, job domain.SyncJob, simulateRateLimit bool) (ports.PullResult, error) {
	if simulateRateLimit {
		return ports.PullResult{}, ports.ErrRateLimited
	}
	pullCtx, cancel := context.WithTimeout(ctx, e.cfg.PullTimeout)
	defer cancel()
	return e.puller.Pull(pullCtx, job)
}

func (e *SyncEngine) logRun(ctx context.Context, job domain.SyncJob, result domain.SyncRunResult) {
	attrs := []any{
		"job_id", job.ID,
		"run_id", result.RunID,
		"provider", job.ProviderKey,
		"status", result.Status,
		"attempt", result.Attempt,
		"duration_ms", result.DurationMS,
	}
	switch result.Status {
	case domain.SyncRunSuccess:
		e.log.InfoContext(ctx, "sync run succeeded", append(attrs, "records", result.ProcessedRecords)...)
	case domain.SyncRunRetryScheduled:
		e.log.WarnContext(ctx, "sync run failed, retry scheduled", append(attrs, "rate_limited", result.RateLimited, "next_retry_at", result.NextRetryAt)...)
	default:
		e.log.WarnContext(ctx, "sync job dead-lettered", append(attrs, "retry_count", job.RetryCount)...)
	}
}

// backoffDelay returns base·2^(retryCount−1), capped.
func backoffDelay(baseMS int64, retryCount int) time.Duration {
	if baseMS <= 0 {
		baseMS = defaultSyncBaseBackoff.Milliseconds()
	}
	if retryCount < 1 {
		retryCount = 1
	}
	capMS := maxSyncBackoff.Milliseconds()
	exp := retryCount - 1
	if exp >= 62 || float64(baseMS)*math.Pow(2, float64(exp)) >= float64(capMS) {
		return maxSyncBackoff
	}
	return time.Duration(baseMS<<exp) * time.Millisecond
}

func failureReason(err error, timeout time.Duration) string {
	switch {
	case errors.Is(err, ports.ErrRateLimited):
		return "provider rate limited"
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Sprintf("provider pull timed out after %s", timeout)
	default:
		return fmt.Sprintf("provider pull failed: %v", err)
	}
}

func jobLookupError(id string, err error) error {
	if errors.Is(err, ports.ErrNotFound) {
		return apperr.ErrSyncJobNotFound.WithDetails(map[string]any{"jobId": id})
	}
	return apperr.Internal(fmt.Errorf("get sync job: %w", err))
}

func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperr.ErrValidation.Wrap(err)
	}
	details := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fe.Field()] = fe.Tag()
	}
	return apperr.ErrValidation.WithDetails(details)
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
