// Package server exposes identifiers, styles, logos and document rendering
// over HTTP for the dealership front end and for previewing templates.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mahgouba/dealerdocs"
	"github.com/mahgouba/dealerdocs/internal/store"
)

// Server timeouts. WriteTimeout leaves room for an export that runs to the
// policy timeout.
const (
	readTimeout     = 15 * time.Second
	writeTimeout    = 45 * time.Second
	idleTimeout     = 60 * time.Second
	shutdownTimeout = 30 * time.Second
)

// maxBodyBytes caps request bodies; records are decoded with the same limit.
const maxBodyBytes = 1 << 20

// DocumentRenderer renders documents. *dealerdocs.Renderer and PoolRenderer
// satisfy it.
type DocumentRenderer interface {
	Preview(ctx context.Context, doc *dealerdocs.Document) (*dealerdocs.Preview, error)
	Export(ctx context.Context, doc *dealerdocs.Document, format dealerdocs.ExportFormat) (*dealerdocs.Artifact, error)
}

// Registry is the identifier registry. *store.Registry satisfies it.
type Registry interface {
	dealerdocs.Reserver
	Lookup(ctx context.Context, formatted string) (*store.Record, error)
}

// Options wires the handlers. Renderer is required; Registry and Sequencer
// are optional and their endpoints degrade when absent.
type Options struct {
	Renderer    DocumentRenderer
	Generator   *dealerdocs.Generator
	Registry    Registry
	Sequencer   dealerdocs.Sequencer
	Logos       *dealerdocs.LogoResolver
	LogoBaseURL string
	Policy      dealerdocs.Policy
	Version     string
	Logger      *zap.Logger
	Now         func() time.Time
}

// handler holds the dependencies shared by every route.
type handler struct {
	opts   Options
	logger *zap.Logger
}

// NewRouter builds the HTTP handler. It panics when opts.Renderer is nil.
func NewRouter(opts Options) http.Handler {
	if opts.Renderer == nil {
		panic("server: NewRouter requires a renderer")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Generator == nil {
		opts.Generator = dealerdocs.NewGenerator()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Policy == (dealerdocs.Policy{}) {
		opts.Policy = dealerdocs.ExportPolicy()
	}
	h := &handler{opts: opts, logger: opts.Logger}

	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(Logging(opts.Logger))
	r.Use(Recoverer(opts.Logger))

	r.Get("/health", h.health)
	r.Get("/policy", h.policy)

	r.Route("/identifiers", func(r chi.Router) {
		r.Get("/{formatted}", h.lookupIdentifier)
		r.Post("/{kind}", h.issueIdentifier)
	})

	r.Post("/styles/resolve", h.resolveStyle)
	r.Get("/logos/{name}", h.lookupLogo)

	r.Route("/documents", func(r chi.Router) {
		r.Post("/preview", h.previewDocument)
		r.Post("/export", h.exportDocument)
	})

	return r
}

// Run serves handler on addr until ctx is cancelled, then shuts down
// gracefully.
func Run(ctx context.Context, addr string, handler http.Handler, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("preview server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("serving on %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down preview server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
