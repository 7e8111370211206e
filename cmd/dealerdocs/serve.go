package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mahgouba/dealerdocs"
	"github.com/mahgouba/dealerdocs/internal/server"
	"github.com/mahgouba/dealerdocs/internal/store"
)

// runServe runs the HTTP server until ctx is cancelled.
func runServe(ctx context.Context, args []string, env *Environment) error {
	f, pos, err := parseServeFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(pos) != 0 {
		return fmt.Errorf("%w: serve takes no arguments", ErrUsage)
	}
	if err := validateWorkers(f.renderer.workers); err != nil {
		return err
	}

	a, err := setup(&f.common, env)
	if err != nil {
		return err
	}
	defer a.Close()
	a.applyRendererFlags(&f.renderer)

	addr := f.addr
	if addr == "" {
		addr = a.cfg.Preview.Addr
	}

	gen := a.generator()
	opts := server.Options{
		Generator:   gen,
		Logos:       dealerdocs.NewLogoResolver(a.cfg.Logos.Aliases),
		LogoBaseURL: a.cfg.Logos.BaseURL,
		Policy:      dealerdocs.ExportPolicy(),
		Version:     Version,
		Logger:      a.logger,
		Now:         a.env.Now,
	}

	db, err := a.openDB(ctx)
	if err != nil {
		return err
	}
	if db != nil {
		defer func() { _ = db.Close() }()
		opts.Registry = store.NewRegistry(db)
	}

	switch {
	case a.cfg.Redis.URL != "":
		seq, err := store.NewRedisSequence(ctx, a.cfg.Redis.URL, a.logger)
		if err != nil {
			return fmt.Errorf("opening redis: %w", err)
		}
		defer func() { _ = seq.Close() }()
		opts.Sequencer = seq
	case db != nil:
		opts.Sequencer = store.NewSQLSequence(db)
	}

	size := dealerdocs.ResolvePoolSize(a.cfg.Browser.Workers)
	pool := dealerdocs.NewRendererPool(size, append(a.rendererOptions(), dealerdocs.WithGenerator(gen))...)
	defer func() {
		if err := pool.Close(); err != nil {
			a.logger.Warn("closing renderer pool", zap.Error(err))
		}
	}()
	opts.Renderer = server.PoolRenderer{Pool: pool}

	a.logger.Info("starting server",
		zap.String("addr", addr),
		zap.Int("renderers", size),
		zap.Bool("registry", opts.Registry != nil),
		zap.Bool("sequence", opts.Sequencer != nil))

	return server.Run(ctx, addr, server.NewRouter(opts), a.logger)
}
