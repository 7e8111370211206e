package main

import (
	"errors"
	"os"

	"github.com/mahgouba/dealerdocs"
	"github.com/mahgouba/dealerdocs/internal/config"
	"github.com/mahgouba/dealerdocs/internal/logging"
	"github.com/mahgouba/dealerdocs/internal/store"
	"github.com/mahgouba/dealerdocs/internal/yamlutil"
)

// Exit codes for the dealerdocs CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Command succeeded
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser/Chrome errors and export timeouts
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, dealerdocs.ErrBrowserConnect) ||
		errors.Is(err, dealerdocs.ErrPageCreate) ||
		errors.Is(err, dealerdocs.ErrPageLoad) ||
		errors.Is(err, dealerdocs.ErrPDFGeneration) ||
		errors.Is(err, dealerdocs.ErrImageCapture) ||
		errors.Is(err, dealerdocs.ErrExportTimeout) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, ErrNoInput) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrNotIdentifier) ||
		errors.Is(err, ErrNoStore) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, logging.ErrInvalidConfig) ||
		errors.Is(err, store.ErrUnsupportedDriver) ||
		errors.Is(err, store.ErrInvalidConfig) ||
		errors.Is(err, yamlutil.ErrInputTooLarge) ||
		errors.Is(err, dealerdocs.ErrInvalidKind) ||
		errors.Is(err, dealerdocs.ErrInvalidFormat) ||
		errors.Is(err, dealerdocs.ErrInvalidDocument) ||
		errors.Is(err, dealerdocs.ErrInvalidDirection) ||
		errors.Is(err, dealerdocs.ErrInvalidCompanyRecord) ||
		errors.Is(err, dealerdocs.ErrInvalidAssetPath) ||
		errors.Is(err, dealerdocs.ErrTemplateNotFound) {
		return ExitUsage
	}

	return ExitGeneral
}
