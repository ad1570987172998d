package ledger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/violations/internal/core/config"
	"github.com/colonyops/violations/internal/core/eventbus"
	"github.com/colonyops/violations/internal/core/kv"
	"github.com/colonyops/violations/internal/data/db"
	"github.com/colonyops/violations/internal/data/stores"
	"github.com/colonyops/violations/internal/export"
	"github.com/colonyops/violations/internal/report"
	"github.com/colonyops/violations/internal/store/jsonfile"
)

// App is the central entry point for all ledger operations.
// Commands and the TUI consume App instead of cherry-picking raw dependencies.
type App struct {
	Config  *config.Config
	Store   *Store
	Bus     *eventbus.EventBus
	Metrics *report.Metrics

	logger       zerolog.Logger
	backend      kv.KV
	watchPattern string
	closers      []func() error

	// problems fixed while opening the backend, reported as load warnings
	recovered []error
}

// NewApp opens the configured storage backend and loads the ledger.
func NewApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	a := &App{
		Config:  cfg,
		Bus:     eventbus.New(),
		Metrics: report.NewMetrics(),
		logger:  logger,
	}

	eventbus.RegisterDebugLogger(a.Bus, logger.With().Str("cmp", "eventbus").Logger())
	eventbus.NewNotificationRouter(a.Bus).Register()
	a.Metrics.Subscribe(a.Bus)

	if err := a.openBackend(); err != nil {
		return nil, err
	}

	store, err := Open(ctx, NewGateway(a.backend),
		WithIDGenerator(NewIDGenerator(cfg.IDs)),
		WithLogger(logger.With().Str("cmp", "ledger").Logger()),
		WithBus(a.Bus),
		WithLoadWarnings(a.recovered...),
	)
	if err != nil {
		_ = a.closeBackend()
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	a.Store = store
	a.Metrics.Observe(store.Stats())

	return a, nil
}

// NewIDGenerator returns the generator selected by cfg.
func NewIDGenerator(cfg config.IDConfig) IDGenerator {
	if cfg.Format == config.IDFormatShort {
		return ShortIDGenerator(cfg.Length)
	}
	return UUIDGenerator()
}

func (a *App) openBackend() error {
	cfg := a.Config

	switch cfg.Storage.Driver {
	case config.DriverMemory:
		a.backend = kv.NewMemory()

	case config.DriverJSON:
		a.backend = jsonfile.NewKVStore(cfg.JSONFile(), a.logger.With().Str("cmp", "jsonfile").Logger())
		a.watchPattern = jsonfile.FileName

	default:
		opts := db.OpenOptions{
			MaxOpenConns: cfg.Storage.MaxOpenConns,
			MaxIdleConns: min(cfg.Storage.MaxOpenConns, 2),
			BusyTimeout:  cfg.Storage.BusyTimeout(),
		}

		database, err := db.Open(cfg.DataDir, opts)
		if stores.IsCorruptionError(err) {
			backup, rerr := stores.RecoverFromCorruption(cfg.DataDir)
			if rerr != nil {
				return fmt.Errorf("recover database: %w", errors.Join(err, rerr))
			}
			a.logger.Warn().Err(err).Str("backup", backup).Msg("database was corrupt; starting from an empty ledger")
			a.recovered = append(a.recovered, fmt.Errorf("%w: database could not be opened (%v); moved to %s", ErrMalformedData, err, backup))
			database, err = db.Open(cfg.DataDir, opts)
		}
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}

		a.backend = stores.NewKVStore(database)
		a.watchPattern = db.FileName + "*"
		a.closers = append(a.closers, database.Close)
	}

	return nil
}

func (a *App) closeBackend() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Close flushes pending changes and releases the storage backend.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Store != nil && a.Store.Dirty() {
		if err := a.Store.Flush(ctx); err != nil {
			a.logger.Error().Err(err).Msg("unsaved changes could not be written")
			errs = append(errs, err)
		}
	}
	errs = append(errs, a.closeBackend())
	return errors.Join(errs...)
}

// Watch returns a watcher for the data files backing the ledger, or nil for
// backends without files.
func (a *App) Watch() (*jsonfile.Watcher, error) {
	if a.watchPattern == "" {
		return nil, nil
	}
	return jsonfile.NewWatcher(a.Config.DataDir, a.watchPattern, a.logger.With().Str("cmp", "watcher").Logger())
}

// Export writes the current collection. Empty format and dest fall back to
// the configured values.
func (a *App) Export(ctx context.Context, format, dest string) (export.Result, error) {
	exportCfg := a.Config.Export
	if format != "" {
		exportCfg.Format = format
	}
	if dest != "" {
		exportCfg.Dest = dest
	}

	f, err := export.ParseFormat(exportCfg.Format)
	if err != nil {
		return export.Result{}, err
	}

	sink, err := export.NewSink(ctx, exportCfg)
	if err != nil {
		return export.Result{}, err
	}

	res, err := export.Run(ctx, sink, f, a.Store.Records(), a.Config.Vocabulary)
	if err != nil {
		return export.Result{}, err
	}

	a.logger.Info().Str("location", res.Location).Int("count", res.Count).Msg("exported violations")
	return res, nil
}

// Report summarizes the current collection.
func (a *App) Report(now time.Time) report.Report {
	return report.Build(a.Store.Records(), a.Config.TUI.RecentCount, a.Config.Vocabulary, now)
}

// WriteMetrics refreshes the gauges and writes the configured textfile.
// It does nothing when no textfile is configured.
func (a *App) WriteMetrics() error {
	return a.WriteMetricsTo(a.Config.Metrics.Textfile)
}

// WriteMetricsTo writes the metrics textfile to path. An empty path is a no-op.
func (a *App) WriteMetricsTo(path string) error {
	if path == "" {
		return nil
	}
	a.Metrics.Observe(a.Store.Stats())
	return a.Metrics.WriteTextfile(path)
}
