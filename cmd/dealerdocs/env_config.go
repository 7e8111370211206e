package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mahgouba/dealerdocs/internal/config"
)

// envPrefix namespaces every environment variable the CLI reads.
const envPrefix = "DEALERDOCS_"

// envConfig holds configuration from environment variables.
// Deployments use it to point at a database or Redis without a YAML file.
type envConfig struct {
	ConfigPath string // DEALERDOCS_CONFIG: config file name or path

	AssetPath   string // DEALERDOCS_ASSET_PATH: custom template families
	LogoBaseURL string // DEALERDOCS_LOGO_BASE_URL: prefix for logo paths
	OutputDir   string // DEALERDOCS_OUTPUT_DIR: default render directory
	BrowserBin  string // DEALERDOCS_BROWSER_BIN: Chrome binary
	Workers     int    // DEALERDOCS_WORKERS: renderer pool size

	LogLevel  string // DEALERDOCS_LOG_LEVEL: debug, info, warn, error
	LogFormat string // DEALERDOCS_LOG_FORMAT: json or console

	StoreDriver string // DEALERDOCS_STORE_DRIVER: sqlite3 or postgres
	StoreDSN    string // DEALERDOCS_STORE_DSN: registry database
	RedisURL    string // DEALERDOCS_REDIS_URL: counter store
	PreviewAddr string // DEALERDOCS_PREVIEW_ADDR: serve listen address
}

// knownEnvVars lists valid DEALERDOCS_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"DEALERDOCS_CONFIG":        true,
	"DEALERDOCS_ASSET_PATH":    true,
	"DEALERDOCS_LOGO_BASE_URL": true,
	"DEALERDOCS_OUTPUT_DIR":    true,
	"DEALERDOCS_BROWSER_BIN":   true,
	"DEALERDOCS_WORKERS":       true,
	"DEALERDOCS_LOG_LEVEL":     true,
	"DEALERDOCS_LOG_FORMAT":    true,
	"DEALERDOCS_STORE_DRIVER":  true,
	"DEALERDOCS_STORE_DSN":     true,
	"DEALERDOCS_REDIS_URL":     true,
	"DEALERDOCS_PREVIEW_ADDR":  true,
	"DEALERDOCS_CONTAINER":     true, // doctor
	// Integration test targets.
	"DEALERDOCS_TEST_POSTGRES_DSN": true,
	"DEALERDOCS_TEST_REDIS_URL":    true,
}

// loadEnvConfig reads configuration from environment variables.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath:  os.Getenv("DEALERDOCS_CONFIG"),
		AssetPath:   os.Getenv("DEALERDOCS_ASSET_PATH"),
		LogoBaseURL: os.Getenv("DEALERDOCS_LOGO_BASE_URL"),
		OutputDir:   os.Getenv("DEALERDOCS_OUTPUT_DIR"),
		BrowserBin:  os.Getenv("DEALERDOCS_BROWSER_BIN"),
		LogLevel:    os.Getenv("DEALERDOCS_LOG_LEVEL"),
		LogFormat:   os.Getenv("DEALERDOCS_LOG_FORMAT"),
		StoreDriver: os.Getenv("DEALERDOCS_STORE_DRIVER"),
		StoreDSN:    os.Getenv("DEALERDOCS_STORE_DSN"),
		RedisURL:    os.Getenv("DEALERDOCS_REDIS_URL"),
		PreviewAddr: os.Getenv("DEALERDOCS_PREVIEW_ADDR"),
	}

	// Invalid or non-positive worker counts are ignored.
	if workers := os.Getenv("DEALERDOCS_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars reports DEALERDOCS_* variables nobody reads.
// Catches typos like DEALERDOCS_STORE_URL for DEALERDOCS_STORE_DSN.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, envPrefix) {
			name, _, _ := strings.Cut(env, "=")
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies environment values to cfg wherever cfg still holds
// its default, so a config file wins over the environment.
// Precedence: CLI flags > env vars > config file > defaults
// (CLI flags are applied later by each command).
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	def := config.DefaultConfig()

	setIfDefault(&cfg.Assets.BasePath, env.AssetPath, def.Assets.BasePath)
	setIfDefault(&cfg.Logos.BaseURL, env.LogoBaseURL, def.Logos.BaseURL)
	setIfDefault(&cfg.Output.DefaultDir, env.OutputDir, def.Output.DefaultDir)
	setIfDefault(&cfg.Browser.Bin, env.BrowserBin, def.Browser.Bin)
	if env.Workers > 0 && cfg.Browser.Workers == def.Browser.Workers {
		cfg.Browser.Workers = env.Workers
	}

	setIfDefault(&cfg.Log.Level, env.LogLevel, def.Log.Level)
	setIfDefault(&cfg.Log.Format, env.LogFormat, def.Log.Format)

	setIfDefault(&cfg.Store.Driver, env.StoreDriver, def.Store.Driver)
	setIfDefault(&cfg.Store.DSN, env.StoreDSN, def.Store.DSN)
	setIfDefault(&cfg.Redis.URL, env.RedisURL, def.Redis.URL)
	setIfDefault(&cfg.Preview.Addr, env.PreviewAddr, def.Preview.Addr)
}

func setIfDefault(dst *string, envValue, defValue string) {
	if envValue != "" && *dst == defValue {
		*dst = envValue
	}
}
