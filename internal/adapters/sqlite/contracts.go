// Package sqlite adapts the sqlc-backed database to the application store ports.
package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/fr0stylo/webhookd/internal/db/queries"
)

// timeLayout is fixed-width so stored timestamps sort lexicographically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

type webhookDatabase interface {
	InsertWebhookEvent(ctx context.Context, arg queries.InsertWebhookEventParams) error
	ListWebhookEvents(ctx context.Context, arg queries.ListWebhookEventsParams) ([]queries.WebhookEvent, error)
	InsertWebhookDeadLetter(ctx context.Context, arg queries.InsertWebhookDeadLetterParams) error
	ListWebhookDeadLetters(ctx context.Context, arg queries.ListWebhookDeadLettersParams) ([]queries.WebhookDeadLetter, error)
	ResetWebhooks(ctx context.Context) error
}

type syncDatabase interface {
	InsertSyncJob(ctx context.Context, arg queries.InsertSyncJobParams) error
	GetSyncJob(ctx context.Context, id string) (queries.SyncJob, error)
	ListSyncJobs(ctx context.Context, arg queries.ListSyncJobsParams) ([]queries.SyncJob, error)
	ListSyncDeadLetters(ctx context.Context, arg queries.ListSyncDeadLettersParams) ([]queries.SyncDeadLetter, error)
	SaveSyncRun(ctx context.Context, update queries.UpdateSyncJobRunParams, deadLetter *queries.InsertSyncDeadLetterParams) error
	ResetSync(ctx context.Context) error
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) (time.Time, error) {
	return time.Parse(timeLayout, value)
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseNullTime(value sql.NullString) (*time.Time, error) {
	if !value.Valid {
		return nil, nil
	}
	t, err := parseTime(value.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func stringPtr(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	s := value.String
	return &s
}

// queryLimit maps an unset limit to SQLite's unbounded LIMIT -1.
func queryLimit(limit int) int64 {
	if limit <= 0 {
		return -1
	}
	return int64(limit)
}
