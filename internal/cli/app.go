package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tOgg1/habitgrid/internal/config"
	"github.com/tOgg1/habitgrid/internal/datekey"
	"github.com/tOgg1/habitgrid/internal/db"
	"github.com/tOgg1/habitgrid/internal/importer"
	"github.com/tOgg1/habitgrid/internal/logging"
	"github.com/tOgg1/habitgrid/internal/persist"
	"github.com/tOgg1/habitgrid/internal/pgstore"
	"github.com/tOgg1/habitgrid/internal/registry"
	"github.com/tOgg1/habitgrid/internal/state"
)

const closeTimeout = 30 * time.Second

// app is the per-invocation runtime shared by every command.
type app struct {
	cfg       *config.Config
	store     persist.Store
	committer *persist.AsyncCommitter
	registry  *registry.Registry
	metrics   *prometheus.Registry
	now       func() time.Time
	logger    zerolog.Logger
	logFile   io.Closer
}

// openApp loads configuration, opens the configured store and builds a registry over
// its document. The caller must Close the app so pending commits land.
func openApp(cmd *cobra.Command, opts *rootOptions) (*app, error) {
	cfg, err := opts.loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, now: time.Now}
	if err := a.initLogging(cmd); err != nil {
		return nil, err
	}
	a.logger = logging.Component("cli")

	if opts.today != "" {
		today, err := datekey.Parse(opts.today)
		if err != nil {
			a.closeLog()
			return nil, fmt.Errorf("--today: %w", err)
		}
		a.now = func() time.Time { return today.Time(time.Local) }
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	store, err := openStore(ctx, cfg)
	if err != nil {
		a.closeLog()
		return nil, err
	}
	a.store = store

	doc, err := store.Load(ctx)
	if err != nil {
		_ = store.Close()
		a.closeLog()
		return nil, fmt.Errorf("load habits: %w", err)
	}

	a.metrics = prometheus.NewRegistry()
	a.committer = persist.NewAsyncCommitter(store,
		persist.WithMetrics(persist.NewMetrics(a.metrics)),
		persist.WithCommitTimeout(cfg.Storage.CommitTimeout),
	)
	a.registry = registry.FromDocument(doc,
		registry.WithCommitter(a.committer),
		registry.WithNow(a.now),
	)
	a.logger.Debug().
		Str("backend", cfg.Storage.Backend).
		Int("habits", a.registry.Len()).
		Msg("loaded")
	return a, nil
}

func openStore(ctx context.Context, cfg *config.Config) (persist.Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		if err := cfg.EnsureDirectories(); err != nil {
			return nil, err
		}
		g, err := db.OpenGateway(ctx, cfg.SQLitePath(), cfg.Storage.BusyTimeoutMs)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return g, nil
	case config.BackendPostgres:
		g, err := pgstore.Open(ctx, cfg.Storage.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres store %s: %w", logging.RedactDSN(cfg.Storage.PostgresURL), err)
		}
		return g, nil
	default:
		if err := cfg.EnsureDirectories(); err != nil {
			return nil, err
		}
		return state.New(cfg.JSONPath()), nil
	}
}

func (a *app) initLogging(cmd *cobra.Command) error {
	lc := logging.Config{
		Level:        a.cfg.Logging.Level,
		Format:       a.cfg.Logging.Format,
		Output:       cmd.ErrOrStderr(),
		EnableCaller: a.cfg.Logging.EnableCaller,
	}
	if a.cfg.Logging.File != "" {
		f, err := logging.OpenFile(a.cfg.Logging.File)
		if err != nil {
			return err
		}
		a.logFile = f
		lc.Output = f
	}
	logging.Init(lc)
	return nil
}

// bootstrap seeds an empty registry from the configured markdown habit list.
func (a *app) bootstrap() {
	if a.registry.Len() > 0 {
		return
	}
	path := a.cfg.HabitsFilePath()
	if path == "" {
		return
	}
	names, err := importer.ParseFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			a.logger.Warn().Err(err).Str("path", path).Msg("habit list not imported")
		}
		return
	}
	added := importer.Apply(a.registry, names)
	if len(added) > 0 {
		a.logger.Info().Int("habits", len(added)).Str("path", path).Msg("imported habit list")
	}
}

// Close drains the committer, reports commit failures and releases the store.
func (a *app) Close() error {
	defer a.closeLog()

	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	var errs []error
	if err := a.committer.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("flush commits: %w", err))
	}
	if err := a.committer.LastError(); err != nil {
		errs = append(errs, fmt.Errorf("save habits: %w", err))
	}
	a.logMetrics()
	if err := a.store.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (a *app) logMetrics() {
	families, err := a.metrics.Gather()
	if err != nil {
		a.logger.Debug().Err(err).Msg("gather metrics")
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			ev := a.logger.Debug().Str("metric", mf.GetName())
			for _, lp := range m.GetLabel() {
				ev = ev.Str(lp.GetName(), lp.GetValue())
			}
			switch {
			case m.GetCounter() != nil:
				ev = ev.Float64("value", m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				ev = ev.Uint64("count", m.GetHistogram().GetSampleCount()).
					Float64("sum", m.GetHistogram().GetSampleSum())
			}
			ev.Msg("commit metrics")
		}
	}
}

func (a *app) closeLog() {
	if a.logFile != nil {
		_ = a.logFile.Close()
		a.logFile = nil
	}
}

func (a *app) today() datekey.Date {
	return a.registry.Today()
}

// withApp opens the app, seeds it from the habit list when empty, runs fn and closes
// the app, joining errors.
func withApp(cmd *cobra.Command, opts *rootOptions, fn func(a *app) error) (err error) {
	a, err := openApp(cmd, opts)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()
	a.bootstrap()
	return fn(a)
}
