package persist

import (
	"context"
	"sync"

	"github.com/tOgg1/habitgrid/internal/document"
)

// Memory is an in-process Store. It keeps every committed snapshot.
type Memory struct {
	mu      sync.Mutex
	current document.Document
	history []document.Document
	fail    error
	closed  bool
}

// NewMemory returns a Memory store seeded with doc.
func NewMemory(doc document.Document) *Memory {
	return &Memory{current: doc.Clone()}
}

// Commit stores doc.
func (m *Memory) Commit(ctx context.Context, doc document.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if m.fail != nil {
		return m.fail
	}
	m.current = doc.Clone()
	m.history = append(m.history, doc.Clone())
	return nil
}

// Load returns the last committed document.
func (m *Memory) Load(ctx context.Context) (document.Document, error) {
	if err := ctx.Err(); err != nil {
		return document.Document{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return document.Document{}, ErrClosed
	}
	return m.current.Clone(), nil
}

// Close marks the store closed.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// FailWith makes subsequent commits return err. A nil err restores normal commits.
func (m *Memory) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = err
}

// History returns copies of every committed document in commit order.
func (m *Memory) History() []document.Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]document.Document, 0, len(m.history))
	for _, doc := range m.history {
		out = append(out, doc.Clone())
	}
	return out
}
