package domain

import "time"

// SyncFrequency is the scheduled cadence of a sync job.
type SyncFrequency string

const (
	FrequencyHourly SyncFrequency = "hourly"
	FrequencyDaily  SyncFrequency = "daily"
)

// Interval returns the scheduling interval for the frequency.
func (f SyncFrequency) Interval() time.Duration {
	if f == FrequencyDaily {
		return 24 * time.Hour
	}
	return time.Hour
}

// SyncJobStatus is the lifecycle state of a sync job.
type SyncJobStatus string

const (
	SyncJobActive SyncJobStatus = "active"
	SyncJobPaused SyncJobStatus = "paused"
)

// SyncJob is one provider+brand pull cycle definition and its retry state.
type SyncJob struct {
	ID            string        `json:"id"`
	ProviderKey   string        `json:"providerKey"`
	BrandID       string        `json:"brandId"`
	Frequency     SyncFrequency `json:"frequency"`
	Status        SyncJobStatus `json:"status"`
	Cursor        *string       `json:"cursor"`
	RetryCount    int           `json:"retryCount"`
	MaxRetries    int           `json:"maxRetries"`
	BaseBackoffMS int64         `json:"baseBackoffMs"`
	LastRunAt     *time.Time    `json:"lastRunAt"`
	NextRunAt     *time.Time    `json:"nextRunAt"`
	LastError     *string       `json:"lastError"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// SyncDeadLetter is emitted once when a job exhausts its retry budget.
type SyncDeadLetter struct {
	ID          string    `json:"id"`
	JobID       string    `json:"jobId"`
	ProviderKey string    `json:"providerKey"`
	FailedAt    time.Time `json:"failedAt"`
	Reason      string    `json:"reason"`
	RetryCount  int       `json:"retryCount"`
}

// SyncRunStatus is the outcome of one run.
type SyncRunStatus string

const (
	SyncRunSuccess        SyncRunStatus = "success"
	SyncRunRetryScheduled SyncRunStatus = "retry_scheduled"
	SyncRunDeadLetter     SyncRunStatus = "dead_letter"
)

// SyncRunResult describes one run; it is returned to callers and not persisted.
type SyncRunResult struct {
	JobID              string        `json:"jobId"`
	RunID              string        `json:"runId"`
	Status             SyncRunStatus `json:"status"`
	Attempt            int           `json:"attempt"`
	RateLimited        bool          `json:"rateLimited"`
	StartedAt          time.Time     `json:"startedAt"`
	FinishedAt         time.Time     `json:"finishedAt"`
	DurationMS         int64         `json:"durationMs"`
	ProcessedRecords   int           `json:"processedRecords"`
	Cursor             *string       `json:"cursor"`
	NextRetryAt        *time.Time    `json:"nextRetryAt"`
	NextScheduledRunAt *time.Time    `json:"nextScheduledRunAt"`
}

// SyncJobFilter narrows job listings.
type SyncJobFilter struct {
	ProviderKey string
	Status      SyncJobStatus
}

// SyncDeadLetterFilter narrows sync dead-letter listings.
type SyncDeadLetterFilter struct {
	JobID       string
	ProviderKey string
	Limit       int
}
