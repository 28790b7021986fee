// Package persist defines the storage contracts for habit documents and the
// asynchronous committer that sits between the registry and a storage backend.
package persist

import (
	"context"
	"errors"
	"time"

	"github.com/tOgg1/habitgrid/internal/document"
)

// ErrClosed is returned when a committer or gateway is used after Close.
var ErrClosed = errors.New("persist: closed")

// Gateway writes a full document snapshot to durable storage.
type Gateway interface {
	Commit(ctx context.Context, doc document.Document) error
}

// Loader reads the last committed document. A backend with nothing stored returns an
// empty document and no error.
type Loader interface {
	Load(ctx context.Context) (document.Document, error)
}

// Store is a storage backend that can both load and commit.
type Store interface {
	Gateway
	Loader
	Close() error
}

// Revision describes one committed snapshot.
type Revision struct {
	ID          string
	CreatedAt   time.Time
	Habits      int
	Completions int
}

// History is implemented by stores that keep a commit log.
type History interface {
	Revisions(ctx context.Context, limit int) ([]Revision, error)
}
