// Package logging builds the zap loggers used by the CLI and the preview server.
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Output formats.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// ErrInvalidConfig indicates an unknown level, format or unusable output.
var ErrInvalidConfig = errors.New("invalid logging configuration")

// Config selects level, encoding and destination.
type Config struct {
	Level  string `yaml:"level"`  // debug, info, warn, error (default info)
	Format string `yaml:"format"` // json or console (default console)
	Output string `yaml:"output"` // stderr, stdout or a file path (default stderr)
}

// Validate checks level and format. A nil config is valid.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if _, err := parseLevel(c.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Format) {
	case "", FormatJSON, FormatConsole:
		return nil
	}
	return fmt.Errorf("%w: format %q (must be json or console)", ErrInvalidConfig, c.Format)
}

// New builds a logger from cfg. The returned close function flushes the
// logger and releases an output file if one was opened.
func New(cfg Config) (*zap.Logger, func() error, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	level, _ := parseLevel(cfg.Level)

	sink, closeSink, err := openSink(cfg.Output)
	if err != nil {
		return nil, nil, err
	}

	logger := zap.New(
		zapcore.NewCore(newEncoder(cfg.Format), sink, level),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)

	closeFn := func() error {
		// Sync on a terminal returns EINVAL on some platforms.
		_ = logger.Sync()
		return closeSink()
	}
	return logger, closeFn, nil
}

// NewWriter builds a logger on an arbitrary writer, for tests and embedding.
func NewWriter(w io.Writer, level, format string) (*zap.Logger, error) {
	cfg := Config{Level: level, Format: format}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	lvl, _ := parseLevel(level)
	return zap.New(zapcore.NewCore(newEncoder(format), zapcore.AddSync(w), lvl)), nil
}

func parseLevel(s string) (zapcore.Level, error) {
	if strings.TrimSpace(s) == "" {
		return zapcore.InfoLevel, nil
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return 0, fmt.Errorf("%w: level %q (must be debug, info, warn or error)", ErrInvalidConfig, s)
	}
	return lvl, nil
}

func newEncoder(format string) zapcore.Encoder {
	if strings.EqualFold(format, FormatJSON) {
		ec := zap.NewProductionEncoderConfig()
		ec.TimeKey = "timestamp"
		ec.EncodeTime = zapcore.ISO8601TimeEncoder
		return zapcore.NewJSONEncoder(ec)
	}
	ec := zap.NewDevelopmentEncoderConfig()
	ec.TimeKey = "timestamp"
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewConsoleEncoder(ec)
}

func openSink(output string) (zapcore.WriteSyncer, func() error, error) {
	noop := func() error { return nil }
	switch output {
	case "", "stderr":
		return zapcore.Lock(os.Stderr), noop, nil
	case "stdout":
		return zapcore.Lock(os.Stdout), noop, nil
	}

	if dir := filepath.Dir(output); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, nil, fmt.Errorf("%w: creating log directory: %v", ErrInvalidConfig, err)
		}
	}
	f, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600) // #nosec G304 -- operator-chosen log path
	if err != nil {
		return nil, nil, fmt.Errorf("%w: opening log file: %v", ErrInvalidConfig, err)
	}
	return zapcore.AddSync(f), f.Close, nil
}
