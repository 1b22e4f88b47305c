package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fr0stylo/webhookd/internal/db/queries"
)

// ResetWebhooks removes every webhook event and webhook dead letter.
func (c *Database) ResetWebhooks(ctx context.Context) error {
	return c.WithTx(ctx, func(q *queries.Queries) error {
		if err := q.DeleteWebhookDeadLetters(ctx); err != nil {
			return fmt.Errorf("delete webhook dead letters: %w", err)
		}
		if err := q.DeleteWebhookEvents(ctx); err != nil {
			return fmt.Errorf("delete webhook events: %w", err)
		}
		return nil
	})
}

// ResetSync removes every sync job and sync dead letter.
func (c *Database) ResetSync(ctx context.Context) error {
	return c.WithTx(ctx, func(q *queries.Queries) error {
		if err := q.DeleteSyncDeadLetters(ctx); err != nil {
			return fmt.Errorf("delete sync dead letters: %w", err)
		}
		if err := q.DeleteSyncJobs(ctx); err != nil {
			return fmt.Errorf("delete sync jobs: %w", err)
		}
		return nil
	})
}

// SaveSyncRun updates job run state and, when deadLetter is non-nil, appends it in the same transaction.
// It returns sql.ErrNoRows when the job does not exist.
func (c *Database) SaveSyncRun(ctx context.Context, update queries.UpdateSyncJobRunParams, deadLetter *queries.InsertSyncDeadLetterParams) error {
	return c.WithTx(ctx, func(q *queries.Queries) error {
		affected, err := q.UpdateSyncJobRun(ctx, update)
		if err != nil {
			return fmt.Errorf("update sync job: %w", err)
		}
		if affected == 0 {
			return sql.ErrNoRows
		}
		if deadLetter == nil {
			return nil
		}
		if err := q.InsertSyncDeadLetter(ctx, *deadLetter); err != nil {
			return fmt.Errorf("insert sync dead letter: %w", err)
		}
		return nil
	})
}

// WithTx runs a function within a transaction. Queries issued through fn are traced like pool queries.
func (c *Database) WithTx(ctx context.Context, fn func(*queries.Queries) error) error {
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	if err := fn(queries.New(newInstrumentedDBTX(tx, c.tracker))); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return rollbackErr
		}
		return err
	}
	return tx.Commit()
}
