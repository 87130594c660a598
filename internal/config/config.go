package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the catalogd configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	DataSource DataSourceConfig `yaml:"data_source"`
	Search     SearchConfig     `yaml:"search"`
	Expander   ExpanderConfig   `yaml:"expander"`
	Auth       AuthConfig       `yaml:"auth"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// Database drivers.
const (
	DriverNone   = "none"
	DriverMemory = "memory"
	DriverBadger = "badger"
	DriverRedis  = "redis"
	DriverValkey = "valkey"
)

// DatabaseConfig selects the key-value store shared by index snapshots and the expander cache.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // none (default), memory, badger, redis, valkey
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	Path             string   `yaml:"path"` // badger directory
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Data source kinds.
const (
	SourceMock = "mock"
	SourceFile = "file"
)

// DataSourceConfig selects where catalog records come from.
type DataSourceConfig struct {
	Kind        string  `yaml:"kind"` // mock (default), file
	Path        string  `yaml:"path"`
	Seed        uint64  `yaml:"seed"`
	FailureRate float64 `yaml:"failure_rate"`
	LatencyMs   int     `yaml:"latency_ms"`
}

// Latency returns the simulated mock latency.
func (d DataSourceConfig) Latency() time.Duration {
	return time.Duration(d.LatencyMs) * time.Millisecond
}

// SearchConfig holds index and ranking settings.
type SearchConfig struct {
	IndexTTLSec  int `yaml:"index_ttl_sec"`
	DefaultLimit int `yaml:"default_limit"`
}

// IndexTTL returns how long a built index stays fresh.
func (s SearchConfig) IndexTTL() time.Duration {
	return time.Duration(s.IndexTTLSec) * time.Second
}

// ExpanderConfig holds the optional semantic expander provider settings.
type ExpanderConfig struct {
	Enabled     bool         `yaml:"enabled"`
	Provider    string       `yaml:"provider"`
	APIKey      string       `yaml:"api_key"`
	BaseURL     string       `yaml:"base_url"`
	Model       string       `yaml:"model"`
	CacheTTLSec int          `yaml:"cache_ttl_sec"`
	Budget      BudgetConfig `yaml:"budget"`
}

// Budget actions.
const (
	BudgetWarn   = "warn"
	BudgetReject = "reject"
)

// BudgetConfig caps expander token spend. Zero limits mean unlimited.
type BudgetConfig struct {
	DailyTokens   int64  `yaml:"daily_tokens"`
	MonthlyTokens int64  `yaml:"monthly_tokens"`
	Action        string `yaml:"action"` // warn (default), reject
}

// CacheTTL returns how long expansions stay cached.
func (e ExpanderConfig) CacheTTL() time.Duration {
	return time.Duration(e.CacheTTLSec) * time.Second
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from path.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration, expanding ${VAR} references first.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverNone
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.DataSource.Kind == "" {
		c.DataSource.Kind = SourceMock
	}
	if c.DataSource.Seed == 0 {
		c.DataSource.Seed = 42
	}
	if c.Search.IndexTTLSec <= 0 {
		c.Search.IndexTTLSec = 300
	}
	if c.Search.DefaultLimit <= 0 {
		c.Search.DefaultLimit = 50
	}
	if c.Expander.Provider == "" {
		c.Expander.Provider = "openai"
	}
	if c.Expander.Model == "" {
		c.Expander.Model = "gpt-4o-mini"
	}
	if c.Expander.CacheTTLSec <= 0 {
		c.Expander.CacheTTLSec = 24 * 3600
	}
	if c.Expander.Budget.Action == "" {
		c.Expander.Budget.Action = BudgetWarn
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}

	switch c.Database.Driver {
	case DriverNone, DriverMemory:
	case DriverBadger:
		if c.Database.Path == "" {
			return errors.New("database.path is required for the badger driver")
		}
	case DriverRedis, DriverValkey:
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required for the %s driver", c.Database.Driver)
		}
	default:
		return fmt.Errorf("database.driver must be one of none, memory, badger, redis, valkey, got %q",
			c.Database.Driver)
	}

	switch c.DataSource.Kind {
	case SourceMock:
		if c.DataSource.FailureRate < 0 || c.DataSource.FailureRate > 1 {
			return fmt.Errorf("data_source.failure_rate must be between 0 and 1, got %g", c.DataSource.FailureRate)
		}
		if c.DataSource.LatencyMs < 0 {
			return fmt.Errorf("data_source.latency_ms must not be negative, got %d", c.DataSource.LatencyMs)
		}
	case SourceFile:
		if c.DataSource.Path == "" {
			return errors.New("data_source.path is required for the file source")
		}
	default:
		return fmt.Errorf("data_source.kind must be \"mock\" or \"file\", got %q", c.DataSource.Kind)
	}

	if c.Search.DefaultLimit > 200 {
		return fmt.Errorf("search.default_limit must not exceed 200, got %d", c.Search.DefaultLimit)
	}

	if c.Expander.Budget.Action != BudgetWarn && c.Expander.Budget.Action != BudgetReject {
		return fmt.Errorf("expander.budget.action must be warn or reject, got %q", c.Expander.Budget.Action)
	}
	if c.Expander.Budget.DailyTokens < 0 || c.Expander.Budget.MonthlyTokens < 0 {
		return errors.New("expander.budget token limits must not be negative")
	}
	if c.Expander.Enabled && c.Expander.APIKey == "" {
		return errors.New("expander.api_key is required when the expander is enabled")
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
