package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"go.uber.org/zap"

	"github.com/mahgouba/dealerdocs"
	"github.com/mahgouba/dealerdocs/internal/config"
	"github.com/mahgouba/dealerdocs/internal/hints"
	"github.com/mahgouba/dealerdocs/internal/logging"
	"github.com/mahgouba/dealerdocs/internal/store"
)

// app is the configuration and logger shared by one command run.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	closeLog func() error
	env      *Environment
}

// setup loads config (flag, then DEALERDOCS_CONFIG), overlays the
// environment and builds the logger. Callers must call Close.
func setup(common *commonFlags, env *Environment) (*app, error) {
	envCfg := loadEnvConfig()
	warnUnknownEnvVars(env.Stderr)

	cfg := config.DefaultConfig()
	name := common.config
	if name == "" {
		name = envCfg.ConfigPath
	}
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(config.SearchPaths(name)))
		}
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}
	applyEnvConfig(envCfg, cfg)

	switch {
	case common.verbose:
		cfg.Log.Level = "debug"
	case common.quiet:
		cfg.Log.Level = "error"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, closeLog, err := newLogger(cfg.Log, env.Stderr)
	if err != nil {
		return nil, err
	}
	logger.Debug("configuration loaded",
		zap.String("config", name),
		zap.Int("gomaxprocs", runtime.GOMAXPROCS(0)),
		zap.String("store_driver", cfg.Store.Driver),
		zap.Bool("store", cfg.Store.DSN != ""),
		zap.Bool("redis", cfg.Redis.URL != ""))

	return &app{cfg: cfg, logger: logger, closeLog: closeLog, env: env}, nil
}

// newLogger logs to the environment's stderr unless the config names a file
// or stdout.
func newLogger(cfg logging.Config, stderr io.Writer) (*zap.Logger, func() error, error) {
	if cfg.Output == "" || strings.EqualFold(cfg.Output, "stderr") {
		logger, err := logging.NewWriter(stderr, cfg.Level, cfg.Format)
		if err != nil {
			return nil, nil, err
		}
		return logger, func() error { _ = logger.Sync(); return nil }, nil
	}
	return logging.New(cfg)
}

// Close flushes the logger.
func (a *app) Close() {
	_ = a.closeLog()
}

// applyRendererFlags lets command-line renderer flags win over config and env.
func (a *app) applyRendererFlags(f *rendererFlags) {
	if f.assetPath != "" {
		a.cfg.Assets.BasePath = f.assetPath
	}
	if f.logoBaseURL != "" {
		a.cfg.Logos.BaseURL = f.logoBaseURL
	}
	if f.browserBin != "" {
		a.cfg.Browser.Bin = f.browserBin
	}
	if f.workers != 0 {
		a.cfg.Browser.Workers = f.workers
	}
}

// validateWorkers rejects worker counts outside 0..MaxWorkers.
func validateWorkers(n int) error {
	if n < 0 || n > config.MaxWorkers {
		return fmt.Errorf("%w: --workers %d (must be 0-%d)", ErrUsage, n, config.MaxWorkers)
	}
	return nil
}

// rendererOptions translates config into renderer options.
func (a *app) rendererOptions() []dealerdocs.Option {
	opts := []dealerdocs.Option{
		dealerdocs.WithLogger(a.logger),
		dealerdocs.WithNow(a.env.Now),
	}
	if a.cfg.Assets.BasePath != "" {
		opts = append(opts, dealerdocs.WithAssetPath(a.cfg.Assets.BasePath))
	}
	if a.cfg.Logos.BaseURL != "" {
		opts = append(opts, dealerdocs.WithLogoBaseURL(a.cfg.Logos.BaseURL))
	}
	if len(a.cfg.Logos.Aliases) > 0 {
		opts = append(opts, dealerdocs.WithLogoAliases(a.cfg.Logos.Aliases))
	}
	if a.cfg.Browser.Bin != "" {
		opts = append(opts, dealerdocs.WithBrowserBin(a.cfg.Browser.Bin))
	}
	return opts
}

// generator issues timestamp identifiers on the environment's clock.
func (a *app) generator() *dealerdocs.Generator {
	return dealerdocs.NewGenerator(dealerdocs.WithClock(a.env.Now))
}

// openDB opens and migrates the registry database. It returns nil, nil
// when store.dsn is empty.
func (a *app) openDB(ctx context.Context) (*store.DB, error) {
	if a.cfg.Store.DSN == "" {
		return nil, nil
	}

	db, err := store.Open(ctx, store.Config{Driver: a.cfg.Store.Driver, DSN: a.cfg.Store.DSN}, a.logger)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w%s", err, hints.ForStore(a.cfg.Store.Driver))
	}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrating store: %w", err)
	}
	return db, nil
}

// requireDB is openDB that fails with ErrNoStore when no database is configured.
func (a *app) requireDB(ctx context.Context, why string) (*store.DB, error) {
	db, err := a.openDB(ctx)
	if err != nil {
		return nil, err
	}
	if db == nil {
		return nil, fmt.Errorf("%w: %s needs store.dsn or DEALERDOCS_STORE_DSN", ErrNoStore, why)
	}
	return db, nil
}

// openSequencer prefers Redis when redis.url is set, then the SQL counters.
// The returned close function is never nil.
func (a *app) openSequencer(ctx context.Context) (dealerdocs.Sequencer, func(), error) {
	if a.cfg.Redis.URL != "" {
		seq, err := store.NewRedisSequence(ctx, a.cfg.Redis.URL, a.logger)
		if err != nil {
			return nil, func() {}, fmt.Errorf("opening redis: %w", err)
		}
		return seq, func() { _ = seq.Close() }, nil
	}

	db, err := a.openDB(ctx)
	if err != nil {
		return nil, func() {}, err
	}
	if db == nil {
		return nil, func() {}, fmt.Errorf("%w: sequential numbers need redis.url or store.dsn", ErrNoStore)
	}
	return store.NewSQLSequence(db), func() { _ = db.Close() }, nil
}

// readInput reads a file, or stdin for "-".
func (a *app) readInput(path string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(a.env.Stdin)
	} else {
		data, err = os.ReadFile(path) // #nosec G304 -- user-provided input path
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadInput, err)
	}
	return data, nil
}
