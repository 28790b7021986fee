// Package pgstore stores the habit document in PostgreSQL.
package pgstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tOgg1/habitgrid/internal/datekey"
	"github.com/tOgg1/habitgrid/internal/document"
	"github.com/tOgg1/habitgrid/internal/persist"
)

const (
	maxConns        = 4
	maxConnIdleTime = 5 * time.Minute
)

// Gateway commits documents to Postgres through a connection pool.
type Gateway struct {
	pool *pgxpool.Pool
}

var (
	_ persist.Store   = (*Gateway)(nil)
	_ persist.History = (*Gateway)(nil)
)

// Open connects to url and creates the schema if needed.
func Open(ctx context.Context, url string) (*Gateway, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errors.New("postgres url is required")
	}

	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	poolConfig.MaxConns = maxConns
	poolConfig.MaxConnIdleTime = maxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	g := &Gateway{pool: pool}
	if err := g.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return g, nil
}

func (g *Gateway) migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS habitgrid_habits (
			name TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			color TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS habitgrid_completions (
			habit TEXT NOT NULL REFERENCES habitgrid_habits(name) ON DELETE CASCADE,
			day DATE NOT NULL,
			PRIMARY KEY (habit, day)
		)`,
		`CREATE TABLE IF NOT EXISTS habitgrid_commits (
			id UUID PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			habit_count INTEGER NOT NULL,
			completion_count INTEGER NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := g.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}

// Commit replaces the stored document with doc in a single transaction.
func (g *Gateway) Commit(ctx context.Context, doc document.Document) error {
	doc = doc.Normalize()

	tx, err := g.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM habitgrid_completions`); err != nil {
		return fmt.Errorf("failed to clear completions: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM habitgrid_habits`); err != nil {
		return fmt.Errorf("failed to clear habits: %w", err)
	}

	batch := &pgx.Batch{}
	completions := 0
	for i, name := range doc.Habits {
		batch.Queue(`INSERT INTO habitgrid_habits (name, position, color) VALUES ($1, $2, $3)`, name, i, doc.Colors[name])
	}
	for _, name := range doc.Habits {
		for day, done := range doc.Completions[name] {
			if !done {
				continue
			}
			batch.Queue(`INSERT INTO habitgrid_completions (habit, day) VALUES ($1, $2::date)`, name, day.String())
			completions++
		}
	}
	batch.Queue(
		`INSERT INTO habitgrid_commits (id, habit_count, completion_count) VALUES ($1::uuid, $2, $3)`,
		uuid.NewString(), len(doc.Habits), completions,
	)
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("transaction commit failed: %w", err)
	}
	return nil
}

// Load rebuilds the stored document.
func (g *Gateway) Load(ctx context.Context) (document.Document, error) {
	doc := document.New()

	rows, err := g.pool.Query(ctx, `SELECT name, color FROM habitgrid_habits ORDER BY position, name`)
	if err != nil {
		return document.Document{}, fmt.Errorf("failed to query habits: %w", err)
	}
	for rows.Next() {
		var name, color string
		if err := rows.Scan(&name, &color); err != nil {
			rows.Close()
			return document.Document{}, fmt.Errorf("failed to scan habit: %w", err)
		}
		doc.Habits = append(doc.Habits, name)
		doc.Completions[name] = document.Completions{}
		if color != "" {
			doc.Colors[name] = color
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return document.Document{}, err
	}

	rows, err = g.pool.Query(ctx, `SELECT habit, day FROM habitgrid_completions`)
	if err != nil {
		return document.Document{}, fmt.Errorf("failed to query completions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var habit string
		var day time.Time
		if err := rows.Scan(&habit, &day); err != nil {
			return document.Document{}, fmt.Errorf("failed to scan completion: %w", err)
		}
		if days, ok := doc.Completions[habit]; ok {
			days[datekey.FromTime(day)] = true
		}
	}
	if err := rows.Err(); err != nil {
		return document.Document{}, err
	}
	return doc, nil
}

// Revisions lists the most recent commits, newest first.
func (g *Gateway) Revisions(ctx context.Context, limit int) ([]persist.Revision, error) {
	query := `SELECT id::text, created_at, habit_count, completion_count FROM habitgrid_commits ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := g.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query commits: %w", err)
	}
	defer rows.Close()

	var out []persist.Revision
	for rows.Next() {
		var rev persist.Revision
		if err := rows.Scan(&rev.ID, &rev.CreatedAt, &rev.Habits, &rev.Completions); err != nil {
			return nil, fmt.Errorf("failed to scan commit: %w", err)
		}
		out = append(out, rev)
	}
	return out, rows.Err()
}

// Close closes the pool.
func (g *Gateway) Close() error {
	if g != nil && g.pool != nil {
		g.pool.Close()
	}
	return nil
}
