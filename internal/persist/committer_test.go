package persist

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/tOgg1/habitgrid/internal/datekey"
	"github.com/tOgg1/habitgrid/internal/document"
	"github.com/tOgg1/habitgrid/internal/registry"
)

// gatedGateway blocks every commit until release is signalled.
type gatedGateway struct {
	*Memory
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGatedGateway() *gatedGateway {
	return &gatedGateway{
		Memory:  NewMemory(document.New()),
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (g *gatedGateway) Commit(ctx context.Context, doc document.Document) error {
	g.once.Do(func() { close(g.started) })
	select {
	case <-g.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	return g.Memory.Commit(ctx, doc)
}

func docWith(habits ...string) document.Document {
	doc := document.New()
	doc.Habits = append(doc.Habits, habits...)
	for _, h := range habits {
		doc.Completions[h] = document.Completions{}
	}
	return doc
}

func TestCommitterWritesSnapshot(t *testing.T) {
	mem := NewMemory(document.New())
	c := NewAsyncCommitter(mem, WithLogger(zerolog.Nop()))

	c.Submit(docWith("Read"))
	require.NoError(t, c.Flush(context.Background()))

	stored, err := mem.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"Read"}, stored.Habits)
	require.NoError(t, c.LastError())
	require.NoError(t, c.Close(context.Background()))
}

func TestCommitterCoalescesPendingSnapshots(t *testing.T) {
	gw := newGatedGateway()
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	c := NewAsyncCommitter(gw, WithLogger(zerolog.Nop()), WithMetrics(metrics))

	c.Submit(docWith("a"))
	<-gw.started

	// The worker is blocked on "a"; these three queue up behind it.
	c.Submit(docWith("a", "b"))
	c.Submit(docWith("a", "b", "c"))
	c.Submit(docWith("a", "b", "c", "d"))
	close(gw.release)

	require.NoError(t, c.Flush(context.Background()))

	history := gw.History()
	require.Len(t, history, 2)
	require.Equal(t, []string{"a"}, history[0].Habits)
	require.Equal(t, []string{"a", "b", "c", "d"}, history[1].Habits)

	require.Equal(t, float64(2), testutil.ToFloat64(metrics.commits.WithLabelValues(resultOK)))
	require.Equal(t, float64(2), testutil.ToFloat64(metrics.coalesced))
	require.NoError(t, c.Close(context.Background()))
}

func TestCommitterFailureIsCountedNotSurfaced(t *testing.T) {
	mem := NewMemory(document.New())
	mem.FailWith(errors.New("disk full"))
	metrics := NewMetrics(nil)
	c := NewAsyncCommitter(mem, WithLogger(zerolog.Nop()), WithMetrics(metrics))

	c.Submit(docWith("Read"))
	require.NoError(t, c.Flush(context.Background()))
	require.EqualError(t, c.LastError(), "disk full")
	require.Equal(t, float64(1), testutil.ToFloat64(metrics.commits.WithLabelValues(resultError)))

	mem.FailWith(nil)
	c.Submit(docWith("Read", "Run"))
	require.NoError(t, c.Flush(context.Background()))
	require.NoError(t, c.LastError())
	require.Len(t, mem.History(), 1)
	require.NoError(t, c.Close(context.Background()))
}

func TestCommitterCloseDrainsPending(t *testing.T) {
	gw := newGatedGateway()
	c := NewAsyncCommitter(gw, WithLogger(zerolog.Nop()))

	c.Submit(docWith("a"))
	<-gw.started
	c.Submit(docWith("a", "b"))

	closed := make(chan error, 1)
	go func() { closed <- c.Close(context.Background()) }()
	close(gw.release)
	require.NoError(t, <-closed)

	history := gw.History()
	require.Len(t, history, 2)
	require.Equal(t, []string{"a", "b"}, history[1].Habits)

	// Snapshots after close are dropped.
	c.Submit(docWith("late"))
	require.Len(t, gw.History(), 2)
}

func TestCommitterFlushHonoursContext(t *testing.T) {
	gw := newGatedGateway()
	c := NewAsyncCommitter(gw, WithLogger(zerolog.Nop()), WithCommitTimeout(time.Minute))

	c.Submit(docWith("a"))
	<-gw.started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, c.Flush(ctx), context.DeadlineExceeded)

	close(gw.release)
	require.NoError(t, c.Close(context.Background()))
}

func TestRegistryMutationsReachStoreInOrder(t *testing.T) {
	mem := NewMemory(document.New())
	c := NewAsyncCommitter(mem, WithLogger(zerolog.Nop()))
	now := func() time.Time { return time.Date(2024, time.March, 3, 9, 0, 0, 0, time.Local) }
	reg := registry.New(registry.WithCommitter(c), registry.WithNow(now), registry.WithLogger(zerolog.Nop()))

	require.True(t, reg.AddHabit("Exercise"))
	require.True(t, reg.AddHabit("Read"))
	require.True(t, reg.ToggleHabit("Read", datekey.MustParse("2024-03-02")))
	require.True(t, reg.RenameHabit("Exercise", "Run"))
	require.NoError(t, c.Close(context.Background()))

	stored, err := mem.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, reg.Snapshot(), stored)
}
