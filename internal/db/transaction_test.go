package db

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "habits.db"), 0)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestWithRetry_RetriesOnBusy(t *testing.T) {
	attempts := 0
	err := withRetry(context.Background(), 3, time.Millisecond, func() error {
		attempts++
		if attempts < 3 {
			return errors.New("database is locked")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestWithRetry_StopsOnNonBusy(t *testing.T) {
	attempts := 0
	err := withRetry(context.Background(), 3, time.Millisecond, func() error {
		attempts++
		return errors.New("constraint failed")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestWithRetry_StopsAfterMaxAttempts(t *testing.T) {
	attempts := 0
	err := withRetry(context.Background(), 2, time.Millisecond, func() error {
		attempts++
		return errors.New("SQLITE_BUSY")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
}

func TestWithRetry_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := withRetry(ctx, 3, time.Millisecond, func() error {
		called = true
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if called {
		t.Fatal("fn should not run on a cancelled context")
	}
}

func TestTransactionWithRetry(t *testing.T) {
	db := setupTestDB(t)

	attempts := 0
	err := db.TransactionWithRetry(context.Background(), RetryPolicy{Attempts: 3, Backoff: time.Millisecond}, func(tx *sql.Tx) error {
		attempts++
		if attempts < 2 {
			return errors.New("database is locked")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
}

func TestTransactionRollsBackOnError(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	err := db.Transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO habits (name, position) VALUES ('Read', 0)`); err != nil {
			return err
		}
		return errors.New("abort")
	})
	if err == nil || err.Error() != "abort" {
		t.Fatalf("expected abort error, got %v", err)
	}

	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM habits`).Scan(&count); err != nil {
		t.Fatalf("count habits: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected rollback, found %d habits", count)
	}
}
