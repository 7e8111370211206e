package main

import (
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// rendererFlags holds flags that shape the renderer pool.
type rendererFlags struct {
	assetPath   string
	logoBaseURL string
	browserBin  string
	workers     int
}

// issueFlags holds flags for the issue command.
type issueFlags struct {
	common     commonFlags
	sequential bool
	reserve    bool
	json       bool
}

// parseFlags holds flags for the parse command.
type parseFlags struct {
	common commonFlags
	lookup bool
	json   bool
}

// outputFormatFlags holds flags for commands that only print a report.
type outputFormatFlags struct {
	common commonFlags
	json   bool
}

// renderFlags holds flags for the render command.
type renderFlags struct {
	common   commonFlags
	renderer rendererFlags
	output   string
	format   string
	reserve  bool
}

// serveFlags holds flags for the serve command.
type serveFlags struct {
	common   commonFlags
	renderer rendererFlags
	addr     string
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "debug logging")
}

// addRendererFlags adds renderer flags to a FlagSet.
func addRendererFlags(fs *flag.FlagSet, f *rendererFlags) {
	fs.StringVar(&f.assetPath, "asset-path", "", "custom template family directory")
	fs.StringVar(&f.logoBaseURL, "logo-base-url", "", "prefix for manufacturer logo paths")
	fs.StringVar(&f.browserBin, "browser-bin", "", "Chrome/Chromium binary")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel renderers (0 = auto)")
}

// newFlagSet creates a FlagSet that reports errors and usage on w.
func newFlagSet(name string, w io.Writer, usage func(io.Writer)) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(w)
	fs.Usage = func() { usage(w) }
	return fs
}

// parse runs fs.Parse and marks failures as usage errors.
// flag.ErrHelp is returned unwrapped so callers can exit 0.
func parse(fs *flag.FlagSet, args []string) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return fs.Args(), nil
}

// parseIssueFlags parses issue command flags and returns positional args.
func parseIssueFlags(args []string, stderr io.Writer) (*issueFlags, []string, error) {
	f := &issueFlags{}
	fs := newFlagSet("issue", stderr, printIssueUsage)
	addCommonFlags(fs, &f.common)
	fs.BoolVarP(&f.sequential, "sequential", "s", false, "take the next value of the persistent counter")
	fs.BoolVarP(&f.reserve, "reserve", "r", false, "record the identifier in the registry")
	fs.BoolVar(&f.json, "json", false, "print JSON")

	pos, err := parse(fs, args)
	return f, pos, err
}

// parseParseFlags parses parse command flags and returns positional args.
func parseParseFlags(args []string, stderr io.Writer) (*parseFlags, []string, error) {
	f := &parseFlags{}
	fs := newFlagSet("parse", stderr, printParseUsage)
	addCommonFlags(fs, &f.common)
	fs.BoolVarP(&f.lookup, "lookup", "l", false, "look identifiers up in the registry")
	fs.BoolVar(&f.json, "json", false, "print JSON")

	pos, err := parse(fs, args)
	return f, pos, err
}

// parseReportFlags parses flags for style, logo and policy.
func parseReportFlags(name string, args []string, stderr io.Writer, usage func(io.Writer)) (*outputFormatFlags, []string, error) {
	f := &outputFormatFlags{}
	fs := newFlagSet(name, stderr, usage)
	addCommonFlags(fs, &f.common)
	fs.BoolVar(&f.json, "json", false, "print JSON")

	pos, err := parse(fs, args)
	return f, pos, err
}

// parseRenderFlags parses render command flags and returns positional args.
func parseRenderFlags(args []string, stderr io.Writer) (*renderFlags, []string, error) {
	f := &renderFlags{}
	fs := newFlagSet("render", stderr, printRenderUsage)
	addCommonFlags(fs, &f.common)
	addRendererFlags(fs, &f.renderer)
	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.StringVarP(&f.format, "format", "f", "pdf", "pdf, png, jpeg or html")
	fs.BoolVarP(&f.reserve, "reserve", "r", false, "reserve numbers for documents without one")

	pos, err := parse(fs, args)
	return f, pos, err
}

// parseServeFlags parses serve command flags.
func parseServeFlags(args []string, stderr io.Writer) (*serveFlags, []string, error) {
	f := &serveFlags{}
	fs := newFlagSet("serve", stderr, printServeUsage)
	addCommonFlags(fs, &f.common)
	addRendererFlags(fs, &f.renderer)
	fs.StringVarP(&f.addr, "addr", "a", "", "listen address (host:port)")

	pos, err := parse(fs, args)
	return f, pos, err
}
