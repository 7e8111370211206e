package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/mahgouba/dealerdocs/internal/logging"
	"github.com/mahgouba/dealerdocs/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxPathLength      = 4096 // PATH_MAX
	MaxURLLength       = 2048 // Browser limit
	MaxDSNLength       = 2048
	MaxAddrLength      = 255
	MaxAliasNameLength = 100
	MaxAliases         = 500
	MaxWorkers         = 8
)

// Store drivers.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Config holds the settings shared by the CLI and the preview server.
type Config struct {
	Assets  AssetsConfig   `yaml:"assets"`
	Logos   LogosConfig    `yaml:"logos"`
	Output  OutputConfig   `yaml:"output"`
	Browser BrowserConfig  `yaml:"browser"`
	Log     logging.Config `yaml:"log"`
	Store   StoreConfig    `yaml:"store"`
	Redis   RedisConfig    `yaml:"redis"`
	Preview PreviewConfig  `yaml:"preview"`
}

// AssetsConfig defines template family loading.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = embedded families only
}

// LogosConfig defines how manufacturer logos are addressed.
type LogosConfig struct {
	BaseURL string            `yaml:"baseURL"` // Prefix for logos/<name>.svg
	Aliases map[string]string `yaml:"aliases"` // Extra manufacturer spellings
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Empty = current directory
}

// BrowserConfig defines headless Chrome options.
type BrowserConfig struct {
	Bin     string `yaml:"bin"`     // Empty = ROD_BROWSER_BIN or auto-download
	Workers int    `yaml:"workers"` // 0 = auto
}

// StoreConfig selects the identifier registry database.
type StoreConfig struct {
	Driver string `yaml:"driver"` // sqlite3 or postgres
	DSN    string `yaml:"dsn"`    // Empty = no registry
}

// RedisConfig enables Redis-backed sequential counters.
type RedisConfig struct {
	URL string `yaml:"url"` // redis:// or rediss://, empty = disabled
}

// PreviewConfig defines the preview HTTP server.
type PreviewConfig struct {
	Addr string `yaml:"addr"` // host:port
}

// Validate checks field lengths and enumerations. Called by LoadConfig, and
// available for callers that assemble a Config themselves.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}

	if err := validateFieldLength("assets.basePath", c.Assets.BasePath, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("output.defaultDir", c.Output.DefaultDir, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("browser.bin", c.Browser.Bin, MaxPathLength); err != nil {
		return err
	}
	if c.Browser.Workers < 0 || c.Browser.Workers > MaxWorkers {
		return fmt.Errorf("%w: browser.workers must be between 0 and %d, got %d", ErrInvalidValue, MaxWorkers, c.Browser.Workers)
	}

	if err := validateFieldLength("logos.baseURL", c.Logos.BaseURL, MaxURLLength); err != nil {
		return err
	}
	if len(c.Logos.Aliases) > MaxAliases {
		return fmt.Errorf("%w: logos.aliases has %d entries (max %d)", ErrInvalidValue, len(c.Logos.Aliases), MaxAliases)
	}
	for name, path := range c.Logos.Aliases {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: logos.aliases: empty manufacturer name", ErrInvalidValue)
		}
		if err := validateFieldLength("logos.aliases name", name, MaxAliasNameLength); err != nil {
			return err
		}
		if err := validateFieldLength(fmt.Sprintf("logos.aliases[%s]", name), path, MaxPathLength); err != nil {
			return err
		}
	}

	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}

	switch c.Store.Driver {
	case "", DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("%w: store.driver %q (must be %s or %s)", ErrInvalidValue, c.Store.Driver, DriverSQLite, DriverPostgres)
	}
	if err := validateFieldLength("store.dsn", c.Store.DSN, MaxDSNLength); err != nil {
		return err
	}

	if c.Redis.URL != "" {
		if err := validateFieldLength("redis.url", c.Redis.URL, MaxURLLength); err != nil {
			return err
		}
		u, err := url.Parse(c.Redis.URL)
		if err != nil || (u.Scheme != "redis" && u.Scheme != "rediss") {
			return fmt.Errorf("%w: redis.url %q (must start with redis:// or rediss://)", ErrInvalidValue, c.Redis.URL)
		}
	}

	if c.Preview.Addr != "" {
		if err := validateFieldLength("preview.addr", c.Preview.Addr, MaxAddrLength); err != nil {
			return err
		}
		if _, _, err := net.SplitHostPort(c.Preview.Addr); err != nil {
			return fmt.Errorf("%w: preview.addr %q: %v", ErrInvalidValue, c.Preview.Addr, err)
		}
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Log: logging.Config{
			Level:  "info",
			Format: logging.FormatConsole,
			Output: "stderr",
		},
		Store:   StoreConfig{Driver: DriverSQLite},
		Preview: PreviewConfig{Addr: "127.0.0.1:8080"},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Fields absent from the file keep their DefaultConfig values.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// SearchPaths lists where LoadConfig looks for a config name, in order:
// ./<name>.yaml, ./<name>.yml, then the same under <user config dir>/dealerdocs/.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, "dealerdocs", name+ext))
		}
	}
	return paths
}

// resolveConfigPath returns the first of SearchPaths(name) that exists.
func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
