package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/go-rod/rod/lib/launcher"

	"github.com/mahgouba/dealerdocs"
	"github.com/mahgouba/dealerdocs/internal/assets"
	"github.com/mahgouba/dealerdocs/internal/store"
)

// doctorCheckTimeout bounds each store and Redis connection attempt.
const doctorCheckTimeout = 5 * time.Second

// Doctor statuses.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string      `json:"status"`
	Chrome   chromeInfo  `json:"chrome"`
	Env      envInfo     `json:"environment"`
	System   systemInfo  `json:"system"`
	Storage  storageInfo `json:"storage"`
	Families []string    `json:"families"`
	Warnings []string    `json:"warnings,omitempty"`
	Errors   []string    `json:"errors,omitempty"`

	// CustomAssets is the configured template directory, when one loaded.
	CustomAssets string `json:"custom_assets,omitempty"`
}

// chromeInfo holds Chrome/Chromium detection results.
type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"browser_bin"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// storageInfo reports the identifier registry and the Redis counter.
type storageInfo struct {
	Driver          string `json:"driver,omitempty"`
	StoreConfigured bool   `json:"store_configured"`
	StoreReachable  bool   `json:"store_reachable"`
	RedisConfigured bool   `json:"redis_configured"`
	RedisReachable  bool   `json:"redis_reachable"`

	// Counters holds the sequential counter per kind when the store is reachable.
	Counters map[string]int `json:"counters,omitempty"`
}

// runDoctor checks that the environment can issue numbers and render.
// Warnings still exit 0; any error returns ErrDoctorFailed.
func runDoctor(ctx context.Context, args []string, env *Environment) error {
	f, pos, err := parseReportFlags("doctor", args, env.Stderr, printDoctorUsage)
	if err != nil {
		return err
	}
	if len(pos) != 0 {
		return fmt.Errorf("%w: doctor takes no arguments", ErrUsage)
	}

	a, err := setup(&f.common, env)
	if err != nil {
		return err
	}
	defer a.Close()

	result := diagnose(ctx, a)

	if f.json {
		if err := writeJSON(env, result); err != nil {
			return err
		}
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == statusErrors {
		return ErrDoctorFailed
	}
	return nil
}

// diagnose performs all checks.
func diagnose(ctx context.Context, a *app) *doctorResult {
	result := &doctorResult{
		Status: statusReady,
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  os.Getenv("ROD_NO_SANDBOX"),
			BrowserBin: browserBin(a.cfg.Browser.Bin),
		},
	}

	checkChrome(result)
	checkEnvironment(result)
	checkSystem(result)
	checkFamilies(result, a.cfg.Assets.BasePath)
	checkStore(ctx, result, a)
	checkRedis(ctx, result, a)

	if len(result.Errors) > 0 {
		result.Status = statusErrors
	} else if len(result.Warnings) > 0 {
		result.Status = statusWarnings
	}
	return result
}

// browserBin returns the configured binary, then ROD_BROWSER_BIN.
// DEALERDOCS_BROWSER_BIN already reached cfg through the env overlay.
func browserBin(configured string) string {
	if configured != "" {
		return configured
	}
	return os.Getenv("ROD_BROWSER_BIN")
}

// checkChrome detects Chrome/Chromium installation.
func checkChrome(result *doctorResult) {
	chromePath := result.Env.BrowserBin

	if chromePath == "" {
		var found bool
		chromePath, found = launcher.LookPath()
		if !found {
			result.Errors = append(result.Errors,
				"Chrome/Chromium not found. Install Chrome or set DEALERDOCS_BROWSER_BIN (html output still works)")
			return
		}
	}

	if _, err := os.Stat(chromePath); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Chrome not found at %s", chromePath))
		return
	}

	result.Chrome.Found = true
	result.Chrome.Path = chromePath

	out, err := exec.Command(chromePath, "--version").Output() // #nosec G204 -- configured browser binary
	if err == nil {
		result.Chrome.Version = strings.TrimSpace(string(out))
	} else {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Could not get Chrome version: %v", err))
	}

	result.Chrome.Sandbox = result.Env.NoSandbox != "1"
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult) {
	result.Env.Container, result.Env.ContainerHint = isContainer()

	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if os.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	if (result.Env.Container || result.Env.CI) && result.Env.NoSandbox != "1" {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
}

// isContainer returns whether we run in a container and which signal said so.
func isContainer() (bool, string) {
	if os.Getenv("DEALERDOCS_CONTAINER") == "1" {
		return true, "DEALERDOCS_CONTAINER=1"
	}
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true, "/.dockerenv"
	}
	if v := os.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies the temp directory used for page loads is writable.
func checkSystem(result *doctorResult) {
	tmpDir := os.TempDir()
	testFile := filepath.Join(tmpDir, "dealerdocs-doctor-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Temp directory not writable: %s", tmpDir))
		return
	}
	_ = os.Remove(testFile)
	result.System.TempWritable = true
}

// checkFamilies lists embedded template families and validates a custom
// asset directory.
func checkFamilies(result *doctorResult, assetPath string) {
	resolver, err := assets.NewResolver(assetPath)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Asset path %s: %v", assetPath, err))
		result.Families = assets.NewEmbeddedLoader().Names()
		return
	}
	result.Families = resolver.BuiltinNames()
	if resolver.HasCustomLoader() {
		result.CustomAssets = assetPath
	}
}

// checkStore opens and migrates the registry when one is configured.
func checkStore(ctx context.Context, result *doctorResult, a *app) {
	result.Storage.Driver = a.cfg.Store.Driver
	if a.cfg.Store.DSN == "" {
		return
	}
	result.Storage.StoreConfigured = true

	ctx, cancel := context.WithTimeout(ctx, doctorCheckTimeout)
	defer cancel()

	db, err := a.openDB(ctx)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Store (%s): %v", a.cfg.Store.Driver, err))
		return
	}
	defer func() { _ = db.Close() }()
	result.Storage.StoreReachable = true

	seq := store.NewSQLSequence(db)
	result.Storage.Counters = make(map[string]int, 2)
	for _, kind := range []dealerdocs.Kind{dealerdocs.KindQuote, dealerdocs.KindInvoice} {
		n, err := seq.Current(ctx, kind)
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Store counter %s: %v", kind, err))
			continue
		}
		result.Storage.Counters[string(kind)] = n
	}
}

// checkRedis pings the Redis counter when one is configured.
func checkRedis(ctx context.Context, result *doctorResult, a *app) {
	if a.cfg.Redis.URL == "" {
		return
	}
	result.Storage.RedisConfigured = true

	ctx, cancel := context.WithTimeout(ctx, doctorCheckTimeout)
	defer cancel()

	seq, err := store.NewRedisSequence(ctx, a.cfg.Redis.URL, a.logger)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Redis: %v", err))
		return
	}
	_ = seq.Close()
	result.Storage.RedisReachable = true
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "dealerdocs doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Chrome/Chromium")
	if r.Chrome.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Chrome.Path)
		if r.Chrome.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Chrome.Version)
		}
		if r.Chrome.Sandbox {
			fmt.Fprintln(w, "  [OK] Sandbox: enabled")
		} else {
			fmt.Fprintln(w, "  [OK] Sandbox: disabled (ROD_NO_SANDBOX=1)")
		}
	} else {
		fmt.Fprintln(w, "  [ERROR] Not found")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintf(w, "  [OK] Template families: %s\n", strings.Join(r.Families, ", "))
	if r.CustomAssets != "" {
		fmt.Fprintf(w, "  [OK] Custom templates: %s\n", r.CustomAssets)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Storage")
	printStorageLine(w, "Store ("+r.Storage.Driver+")", r.Storage.StoreConfigured, r.Storage.StoreReachable)
	if r.Storage.StoreReachable && r.Storage.Counters != nil {
		fmt.Fprintf(w, "  [OK] Counters: quote %d, invoice %d\n",
			r.Storage.Counters[string(dealerdocs.KindQuote)], r.Storage.Counters[string(dealerdocs.KindInvoice)])
	}
	printStorageLine(w, "Redis", r.Storage.RedisConfigured, r.Storage.RedisReachable)
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready")
	case statusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case statusErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}

func printStorageLine(w io.Writer, name string, configured, reachable bool) {
	switch {
	case !configured:
		fmt.Fprintf(w, "  [--] %s: not configured\n", name)
	case reachable:
		fmt.Fprintf(w, "  [OK] %s: reachable\n", name)
	default:
		fmt.Fprintf(w, "  [ERROR] %s: unreachable\n", name)
	}
}
