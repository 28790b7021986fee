package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

const (
	defaultRetryAttempts = 3
	defaultRetryBackoff  = 50 * time.Millisecond
)

// RetryPolicy controls how busy transactions are retried.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.Attempts <= 0 {
		p.Attempts = defaultRetryAttempts
	}
	if p.Backoff <= 0 {
		p.Backoff = defaultRetryBackoff
	}
	return p
}

// TransactionWithRetry runs a transaction, retrying while SQLite reports the database
// as busy or locked. The backoff doubles after every attempt.
func (db *DB) TransactionWithRetry(ctx context.Context, policy RetryPolicy, fn func(*sql.Tx) error) error {
	policy = policy.normalized()
	return withRetry(ctx, policy.Attempts, policy.Backoff, func() error {
		return db.Transaction(ctx, fn)
	})
}

func withRetry(ctx context.Context, maxAttempts int, backoff time.Duration, fn func() error) error {
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := fn()
		if err == nil || !isBusyError(err) || attempt >= maxAttempts {
			return err
		}
		if err := sleepWithContext(ctx, backoff); err != nil {
			return err
		}
		backoff *= 2
	}
}

func isBusyError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	message := strings.ToLower(err.Error())
	for _, marker := range []string{"database is locked", "database is busy", "sqlite_busy"} {
		if strings.Contains(message, marker) {
			return true
		}
	}
	return false
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
