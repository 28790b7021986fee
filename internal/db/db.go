// Package db provides SQLite storage for habit documents.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// DefaultBusyTimeoutMs is used when Open is given a non-positive busy timeout.
const DefaultBusyTimeoutMs = 5000

// DB wraps a SQLite connection pool.
type DB struct {
	*sql.DB
	path string
}

// Open opens (creating if needed) the SQLite database at path and applies migrations.
func Open(ctx context.Context, path string, busyTimeoutMs int) (*DB, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("database path is required")
	}
	if busyTimeoutMs <= 0 {
		busyTimeoutMs = DefaultBusyTimeoutMs
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)", path, busyTimeoutMs)
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{DB: sqlDB, path: path}
	if err := db.Migrate(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// Path returns the database file path.
func (db *DB) Path() string { return db.path }

// Migrate creates the schema if it does not exist.
func (db *DB) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS habits (
			name TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			color TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS completions (
			habit TEXT NOT NULL REFERENCES habits(name) ON DELETE CASCADE,
			day TEXT NOT NULL,
			PRIMARY KEY (habit, day)
		)`,
		`CREATE TABLE IF NOT EXISTS commits (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			habit_count INTEGER NOT NULL,
			completion_count INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_habits_position ON habits(position)`,
		`CREATE INDEX IF NOT EXISTS idx_commits_created_at ON commits(created_at)`,
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}

// Transaction runs fn inside a transaction, committing on success and rolling back on
// error or panic.
func (db *DB) Transaction(ctx context.Context, fn func(*sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
