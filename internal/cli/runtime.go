package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/bitshub/internal/catalog"
	"github.com/roach88/bitshub/internal/config"
	"github.com/roach88/bitshub/internal/domain"
	"github.com/roach88/bitshub/internal/engine"
	"github.com/roach88/bitshub/internal/metrics"
	"github.com/roach88/bitshub/internal/persist"
	"github.com/roach88/bitshub/internal/store"
)

// Runtime is a rehydrated engine wired to its database.
//
// Observers are subscribed after rehydration, so replaying persisted
// slices is neither journaled nor counted.
type Runtime struct {
	Config  *config.Config
	Store   *store.Store
	Engine  *engine.Engine
	Mirror  *persist.Mirror
	Metrics *metrics.Collector
	Logger  *slog.Logger
}

// openRuntime loads config, opens the database and rebuilds the engine from
// the persisted slices. logw receives structured logs.
func openRuntime(ctx context.Context, opts *RootOptions, logw io.Writer) (*Runtime, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	level, _ := cfg.SlogLevel() // validated by LoadConfig
	if opts.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(logw, &slog.HandlerOptions{Level: level}))

	products, err := loadProducts(cfg.Catalog.SeedPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load catalog", err)
	}

	logger.Debug("opening database", "path", cfg.Storage.Path)
	st, err := store.Open(cfg.Storage.Path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	lastSeq, err := st.LastSeq(ctx)
	if err != nil {
		st.Close()
		return nil, WrapExitError(ExitCommandError, "failed to read journal", err)
	}

	eng := engine.New(
		engine.WithPolicy(cfg.Policy()),
		engine.WithCatalog(products),
		engine.WithSequencer(engine.NewSequencerAt(lastSeq)),
		engine.WithLogger(logger),
	)

	if _, err := persist.Rehydrate(ctx, eng, st, logger); err != nil {
		st.Close()
		return nil, WrapExitError(ExitCommandError, "failed to rehydrate", err)
	}

	mirror := persist.NewMirror(ctx, st, logger)
	mirror.Sync(eng.Snapshot())
	collector := metrics.NewCollector()
	collector.Update(eng.Snapshot())

	eng.Subscribe(mirror)
	eng.Subscribe(persist.NewJournal(ctx, st, nil, logger))
	eng.Subscribe(collector)

	return &Runtime{
		Config:  cfg,
		Store:   st,
		Engine:  eng,
		Mirror:  mirror,
		Metrics: collector,
		Logger:  logger,
	}, nil
}

// Close releases the database.
func (rt *Runtime) Close() {
	if err := rt.Store.Close(); err != nil {
		rt.Logger.Error("error closing database", "error", err)
	}
}

// loadConfig reads the config and applies the --db override.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	cfg, err := config.LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.Database != "" {
		cfg.Storage.Path = opts.Database
	}
	return cfg, nil
}

func loadProducts(seedPath string) ([]domain.Product, error) {
	if seedPath == "" {
		return catalog.Load()
	}
	products, err := catalog.LoadFile(seedPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", seedPath, err)
	}
	return products, nil
}
