package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tOgg1/habitgrid/internal/datekey"
	"github.com/tOgg1/habitgrid/internal/document"
	"github.com/tOgg1/habitgrid/internal/persist"
)

// revisionTimeLayout is fixed-width so stored timestamps sort lexically.
const revisionTimeLayout = "2006-01-02T15:04:05.000000000Z"

// Gateway stores the habit document in SQLite. Every commit rewrites the habit and
// completion tables in one transaction and appends a row to the commit log.
type Gateway struct {
	db    *DB
	retry RetryPolicy
	now   func() time.Time
}

var (
	_ persist.Store   = (*Gateway)(nil)
	_ persist.History = (*Gateway)(nil)
)

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithRetryPolicy overrides the busy retry policy.
func WithRetryPolicy(p RetryPolicy) GatewayOption {
	return func(g *Gateway) {
		g.retry = p
	}
}

// WithNow overrides the clock used for revision timestamps.
func WithNow(now func() time.Time) GatewayOption {
	return func(g *Gateway) {
		if now != nil {
			g.now = now
		}
	}
}

// NewGateway returns a gateway over db.
func NewGateway(db *DB, opts ...GatewayOption) *Gateway {
	g := &Gateway{db: db, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// OpenGateway opens the database at path and wraps it in a Gateway.
func OpenGateway(ctx context.Context, path string, busyTimeoutMs int, opts ...GatewayOption) (*Gateway, error) {
	db, err := Open(ctx, path, busyTimeoutMs)
	if err != nil {
		return nil, err
	}
	return NewGateway(db, opts...), nil
}

// Commit replaces the stored document with doc.
func (g *Gateway) Commit(ctx context.Context, doc document.Document) error {
	doc = doc.Normalize()
	return g.db.TransactionWithRetry(ctx, g.retry, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM completions`); err != nil {
			return fmt.Errorf("failed to clear completions: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM habits`); err != nil {
			return fmt.Errorf("failed to clear habits: %w", err)
		}

		habitStmt, err := tx.PrepareContext(ctx, `INSERT INTO habits (name, position, color) VALUES (?, ?, ?)`)
		if err != nil {
			return err
		}
		defer habitStmt.Close()
		dayStmt, err := tx.PrepareContext(ctx, `INSERT INTO completions (habit, day) VALUES (?, ?)`)
		if err != nil {
			return err
		}
		defer dayStmt.Close()

		completions := 0
		for i, name := range doc.Habits {
			if _, err := habitStmt.ExecContext(ctx, name, i, doc.Colors[name]); err != nil {
				return fmt.Errorf("failed to insert habit %q: %w", name, err)
			}
			for day, done := range doc.Completions[name] {
				if !done {
					continue
				}
				if _, err := dayStmt.ExecContext(ctx, name, day.String()); err != nil {
					return fmt.Errorf("failed to insert completion %s/%s: %w", name, day, err)
				}
				completions++
			}
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO commits (id, created_at, habit_count, completion_count) VALUES (?, ?, ?, ?)`,
			uuid.NewString(),
			g.now().UTC().Format(revisionTimeLayout),
			len(doc.Habits),
			completions,
		)
		if err != nil {
			return fmt.Errorf("failed to record commit: %w", err)
		}
		return nil
	})
}

// Load rebuilds the stored document.
func (g *Gateway) Load(ctx context.Context) (document.Document, error) {
	doc := document.New()

	rows, err := g.db.QueryContext(ctx, `SELECT name, color FROM habits ORDER BY position, name`)
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
	if err := rows.Err(); err != nil {
		rows.Close()
		return document.Document{}, err
	}
	rows.Close()

	rows, err = g.db.QueryContext(ctx, `SELECT habit, day FROM completions`)
	if err != nil {
		return document.Document{}, fmt.Errorf("failed to query completions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var habit, day string
		if err := rows.Scan(&habit, &day); err != nil {
			return document.Document{}, fmt.Errorf("failed to scan completion: %w", err)
		}
		date, err := datekey.Parse(day)
		if err != nil {
			return document.Document{}, fmt.Errorf("completion %s/%s: %w", habit, day, err)
		}
		if days, ok := doc.Completions[habit]; ok {
			days[date] = true
		}
	}
	if err := rows.Err(); err != nil {
		return document.Document{}, err
	}
	return doc, nil
}

// Revisions lists the most recent commits, newest first. A non-positive limit
// returns every revision.
func (g *Gateway) Revisions(ctx context.Context, limit int) ([]persist.Revision, error) {
	query := `SELECT id, created_at, habit_count, completion_count FROM commits ORDER BY created_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := g.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query commits: %w", err)
	}
	defer rows.Close()

	var out []persist.Revision
	for rows.Next() {
		var rev persist.Revision
		var createdAt string
		if err := rows.Scan(&rev.ID, &createdAt, &rev.Habits, &rev.Completions); err != nil {
			return nil, fmt.Errorf("failed to scan commit: %w", err)
		}
		rev.CreatedAt, err = time.Parse(revisionTimeLayout, createdAt)
		if err != nil {
			return nil, fmt.Errorf("commit %s: %w", rev.ID, err)
		}
		out = append(out, rev)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (g *Gateway) Close() error {
	if g == nil || g.db == nil {
		return nil
	}
	return g.db.Close()
}
