package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mahgouba/dealerdocs"
	"github.com/mahgouba/dealerdocs/internal/assets"
	"github.com/mahgouba/dealerdocs/internal/fileutil"
	"github.com/mahgouba/dealerdocs/internal/hints"
	"github.com/mahgouba/dealerdocs/internal/server"
	"github.com/mahgouba/dealerdocs/internal/store"
)

// stdinName labels documents read from stdin in results.
const stdinName = "<stdin>"

// documentExporter renders one document. server.PoolRenderer satisfies it.
type documentExporter interface {
	Export(ctx context.Context, doc *dealerdocs.Document, format dealerdocs.ExportFormat) (*dealerdocs.Artifact, error)
}

// renderJob is one input and where its artifact goes.
type renderJob struct {
	InputPath string
	// OutputPath is a file when set; otherwise the artifact is named after
	// its identifier inside OutputDir.
	OutputPath string
	OutputDir  string
}

// renderResult is the outcome of one job.
type renderResult struct {
	InputPath  string
	OutputPath string
	Number     string
	Duration   time.Duration
	Err        error
}

// renderParams holds what every job in a batch shares.
type renderParams struct {
	format   dealerdocs.ExportFormat
	reserver dealerdocs.Reserver // nil unless --reserve
	issuer   *dealerdocs.Generator
	read     func(path string) ([]byte, error)
	logger   *zap.Logger
}

// runRender renders document records through a renderer pool.
func runRender(ctx context.Context, args []string, env *Environment) error {
	f, pos, err := parseRenderFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(pos) == 0 {
		return fmt.Errorf("%w: render needs at least one document file or '-'", ErrNoInput)
	}
	format, err := dealerdocs.ParseFormat(f.format)
	if err != nil {
		return err
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

	jobs, err := planJobs(pos, f.output, a.cfg.Output.DefaultDir)
	if err != nil {
		return err
	}

	params := &renderParams{
		format: format,
		issuer: a.generator(),
		read:   a.readInput,
		logger: a.logger,
	}
	if f.reserve {
		db, err := a.requireDB(ctx, "--reserve")
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
		params.reserver = store.NewRegistry(db)
	}

	size := min(dealerdocs.ResolvePoolSize(a.cfg.Browser.Workers), len(jobs))
	opts := append(a.rendererOptions(), dealerdocs.WithGenerator(params.issuer))
	pool := dealerdocs.NewRendererPool(size, opts...)
	defer func() {
		if err := pool.Close(); err != nil {
			a.logger.Warn("closing renderer pool", zap.Error(err))
		}
	}()

	a.logger.Debug("rendering",
		zap.Int("documents", len(jobs)),
		zap.Int("workers", size),
		zap.String("format", string(format)))

	results := renderBatch(ctx, server.PoolRenderer{Pool: pool}, size, jobs, params)
	failed := printResults(results, f.common.quiet, f.common.verbose, env)

	switch {
	case failed == 0:
		return nil
	case len(results) == 1:
		return withRenderHint(results[0].Err, size)
	default:
		return fmt.Errorf("%w: %d of %d", ErrBatchFailed, failed, len(results))
	}
}

// planJobs decides each input's destination. A single input with an -o
// that names a file (has an extension and is not a directory) writes there;
// otherwise -o, the configured default directory, or the input's own
// directory receives "<identifier>.<ext>".
func planJobs(inputs []string, output, defaultDir string) ([]renderJob, error) {
	stdin := 0
	for _, in := range inputs {
		if in == "-" {
			stdin++
		}
	}
	if stdin > 1 {
		return nil, fmt.Errorf("%w: stdin ('-') can only be read once", ErrUsage)
	}

	if len(inputs) == 1 && isFileTarget(output) {
		return []renderJob{{InputPath: inputs[0], OutputPath: output}}, nil
	}
	if len(inputs) > 1 && isFileTarget(output) {
		return nil, fmt.Errorf("%w: -o must be a directory when rendering %d documents", ErrUsage, len(inputs))
	}

	jobs := make([]renderJob, len(inputs))
	for i, in := range inputs {
		dir := output
		if dir == "" {
			dir = defaultDir
		}
		if dir == "" && in != "-" {
			dir = filepath.Dir(in)
		}
		if dir == "" {
			dir = "."
		}
		jobs[i] = renderJob{InputPath: in, OutputDir: dir}
	}
	return jobs, nil
}

// isFileTarget reports whether -o names a file rather than a directory.
func isFileTarget(output string) bool {
	if output == "" || strings.HasSuffix(output, "/") || strings.HasSuffix(output, string(filepath.Separator)) {
		return false
	}
	if info, err := os.Stat(output); err == nil && info.IsDir() {
		return false
	}
	return filepath.Ext(output) != ""
}

// renderBatch runs jobs on up to concurrency workers. Results keep the
// order of jobs.
func renderBatch(ctx context.Context, exp documentExporter, concurrency int, jobs []renderJob, params *renderParams) []renderResult {
	if len(jobs) == 0 {
		return nil
	}
	concurrency = min(max(concurrency, 1), len(jobs))

	results := make([]renderResult, len(jobs))
	var wg sync.WaitGroup
	queue := make(chan int, len(jobs))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range queue {
				if ctx.Err() != nil {
					results[idx] = renderResult{InputPath: displayName(jobs[idx].InputPath), Err: ctx.Err()}
					continue
				}
				results[idx] = renderOne(ctx, exp, jobs[idx], params)
			}
		}()
	}

	for i := range jobs {
		queue <- i
	}
	close(queue)

	wg.Wait()
	return results
}

// renderOne reads, optionally numbers, exports and writes one document.
func renderOne(ctx context.Context, exp documentExporter, job renderJob, params *renderParams) renderResult {
	start := time.Now()
	result := renderResult{InputPath: displayName(job.InputPath)}
	fail := func(err error) renderResult {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	data, err := params.read(job.InputPath)
	if err != nil {
		return fail(err)
	}
	doc, err := dealerdocs.DecodeDocument(data)
	if err != nil {
		return fail(err)
	}

	if doc.Number == "" && params.reserver != nil {
		id, err := params.issuer.IssueUnique(ctx, doc.Kind, params.reserver, 0)
		if err != nil {
			return fail(err)
		}
		doc.Number = id.String()
		params.logger.Debug("number reserved", zap.String("input", result.InputPath), zap.String("number", doc.Number))
	}

	artifact, err := exp.Export(ctx, doc, params.format)
	if err != nil {
		return fail(err)
	}
	result.Number = artifact.Preview.Number

	out := job.OutputPath
	if out == "" {
		out = filepath.Join(job.OutputDir, artifact.Filename())
	}
	result.OutputPath = out

	if err := fileutil.WriteOutput(out, artifact.Data); err != nil {
		return fail(fmt.Errorf("%w: %s: %w", ErrWriteOutput, out, err))
	}

	result.Duration = time.Since(start)
	return result
}

// printResults reports each result and returns the number of failures.
func printResults(results []renderResult, quiet, verbose bool, env *Environment) int {
	var succeeded, failed int

	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.InputPath, r.Err)
			continue
		}

		succeeded++
		if quiet {
			continue
		}
		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s [%s] (%v)\n", r.InputPath, r.OutputPath, r.Number, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", succeeded, failed)
	}
	return failed
}

// withRenderHint appends a remedy for the failures users can fix themselves.
func withRenderHint(err error, workers int) error {
	var hint string
	switch {
	case errors.Is(err, dealerdocs.ErrBrowserConnect):
		hint = hints.ForBrowserConnect()
	case errors.Is(err, dealerdocs.ErrExportTimeout):
		hint = hints.ForExportTimeout(workers)
	case errors.Is(err, dealerdocs.ErrTemplateNotFound):
		hint = hints.ForFamilyNotFound(assets.NewEmbeddedLoader().Names())
	case errors.Is(err, dealerdocs.ErrInvalidCompanyRecord):
		hint = hints.ForInvalidCompany()
	case errors.Is(err, ErrWriteOutput):
		hint = hints.ForOutputDirectory()
	}
	if hint == "" {
		return err
	}
	return fmt.Errorf("%w%s", err, hint)
}

func displayName(path string) string {
	if path == "-" {
		return stdinName
	}
	return path
}
