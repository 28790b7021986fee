package persist

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tOgg1/habitgrid/internal/document"
	"github.com/tOgg1/habitgrid/internal/logging"
)

// DefaultCommitTimeout bounds a single gateway commit.
const DefaultCommitTimeout = 10 * time.Second

// AsyncCommitter commits document snapshots on a single worker goroutine.
//
// Snapshots are committed in submission order. When several snapshots are waiting,
// only the newest is written; since every snapshot is a full document, the stored
// state after the worker catches up always equals the last submitted one. Commit
// failures are logged and counted, never returned to the submitter.
type AsyncCommitter struct {
	gateway Gateway
	logger  zerolog.Logger
	metrics *Metrics
	timeout time.Duration

	mu         sync.Mutex
	pending    *document.Document
	pendingSeq uint64
	submitted  uint64
	done       uint64
	lastErr    error
	changed    chan struct{}
	closed     bool

	wake     chan struct{}
	stop     chan struct{}
	finished chan struct{}
}

// CommitterOption configures an AsyncCommitter.
type CommitterOption func(*AsyncCommitter)

// WithLogger overrides the committer logger.
func WithLogger(logger zerolog.Logger) CommitterOption {
	return func(c *AsyncCommitter) {
		c.logger = logger
	}
}

// WithMetrics attaches commit metrics.
func WithMetrics(m *Metrics) CommitterOption {
	return func(c *AsyncCommitter) {
		c.metrics = m
	}
}

// WithCommitTimeout bounds each gateway commit. Non-positive values keep the default.
func WithCommitTimeout(d time.Duration) CommitterOption {
	return func(c *AsyncCommitter) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewAsyncCommitter starts a committer writing to gateway.
func NewAsyncCommitter(gateway Gateway, opts ...CommitterOption) *AsyncCommitter {
	c := &AsyncCommitter{
		gateway:  gateway,
		logger:   logging.Component("persist"),
		timeout:  DefaultCommitTimeout,
		changed:  make(chan struct{}),
		wake:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
		finished: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	go c.run()
	return c
}

// Submit queues doc for commit and returns immediately. Snapshots submitted after
// Close are dropped.
func (c *AsyncCommitter) Submit(doc document.Document) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.logger.Warn().Msg("snapshot submitted after close; dropped")
		return
	}
	if c.pending != nil {
		c.metrics.coalesce()
	}
	c.submitted++
	c.pending = &doc
	c.pendingSeq = c.submitted
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// Flush waits until every snapshot submitted before the call has been handled.
func (c *AsyncCommitter) Flush(ctx context.Context) error {
	c.mu.Lock()
	target := c.submitted
	c.mu.Unlock()

	for {
		c.mu.Lock()
		if c.done >= target {
			c.mu.Unlock()
			return nil
		}
		changed := c.changed
		c.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changed:
		case <-c.finished:
			c.mu.Lock()
			reached := c.done >= target
			c.mu.Unlock()
			if reached {
				return nil
			}
			return ErrClosed
		}
	}
}

// Close stops accepting snapshots, commits whatever is pending and waits for the
// worker to exit or ctx to end.
func (c *AsyncCommitter) Close(ctx context.Context) error {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.stop)
	}
	c.mu.Unlock()

	select {
	case <-c.finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LastError returns the error of the most recent commit, or nil if it succeeded.
func (c *AsyncCommitter) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

func (c *AsyncCommitter) run() {
	defer close(c.finished)
	for {
		select {
		case <-c.wake:
			c.drain()
		case <-c.stop:
			c.drain()
			return
		}
	}
}

func (c *AsyncCommitter) drain() {
	for {
		c.mu.Lock()
		if c.pending == nil {
			c.mu.Unlock()
			return
		}
		doc := *c.pending
		seq := c.pendingSeq
		c.pending = nil
		c.mu.Unlock()

		err := c.commit(doc)

		c.mu.Lock()
		c.done = seq
		c.lastErr = err
		close(c.changed)
		c.changed = make(chan struct{})
		c.mu.Unlock()
	}
}

func (c *AsyncCommitter) commit(doc document.Document) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	start := time.Now()
	err := c.gateway.Commit(ctx, doc)
	c.metrics.observe(start, err)
	if err != nil {
		c.logger.Error().
			Err(err).
			Int("habits", len(doc.Habits)).
			Msg("commit failed")
		return err
	}
	c.logger.Debug().
		Int("habits", len(doc.Habits)).
		Int("completions", doc.CompletionCount()).
		Dur("took", time.Since(start)).
		Msg("committed")
	return nil
}
