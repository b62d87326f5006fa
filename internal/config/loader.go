package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// MaxPageSize is the largest page the Gmail list call accepts
const MaxPageSize = 100

// Load reads and parses the configuration file, then applies
// INBOXDOMAINS_* environment overrides (a .env file in the working
// directory is honoured when present).
func Load(path string) (*Config, error) {
	// Expand path
	expandedPath, err := expandPath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand config path: %w", err)
	}

	// Read file
	data, err := os.ReadFile(expandedPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s (run 'inboxdomains config init' to create)", expandedPath)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	// Parse TOML
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	// Expand paths in config
	if err := cfg.expandPaths(); err != nil {
		return nil, fmt.Errorf("failed to expand paths: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// applyEnv overlays environment variables on cfg. Unset variables leave the
// file values alone.
func applyEnv(cfg *Config) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}
	return nil
}

// expandPath expands ~ to home directory
func expandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, path[1:]), nil
}

// expandPaths expands ~ in all path fields
func (c *Config) expandPaths() error {
	var err error

	c.Gmail.CredentialsPath, err = expandPath(c.Gmail.CredentialsPath)
	if err != nil {
		return err
	}

	c.Gmail.TokenPath, err = expandPath(c.Gmail.TokenPath)
	if err != nil {
		return err
	}

	c.Cache.Path, err = expandPath(c.Cache.Path)
	if err != nil {
		return err
	}

	c.Metrics.TextfilePath, err = expandPath(c.Metrics.TextfilePath)
	if err != nil {
		return err
	}

	return nil
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	// Gmail validation
	if c.Gmail.CredentialsPath == "" {
		errs = append(errs, errors.New("gmail.credentials_path is required"))
	}
	if c.Gmail.TokenPath == "" {
		errs = append(errs, errors.New("gmail.token_path is required"))
	}
	if c.Gmail.Label == "" {
		errs = append(errs, errors.New("gmail.label is required"))
	}

	// Cache validation
	switch c.Cache.Backend {
	case BackendJSON, BackendSQLite, BackendBolt:
	default:
		errs = append(errs, fmt.Errorf("cache.backend must be 'json', 'sqlite' or 'bolt', got '%s'", c.Cache.Backend))
	}
	if c.Cache.Path == "" {
		errs = append(errs, errors.New("cache.path is required"))
	}

	// Fetch validation
	if c.Fetch.MaxPerFetch < 1 {
		errs = append(errs, errors.New("fetch.max_per_fetch must be at least 1"))
	}
	if c.Fetch.PageSize < 1 || c.Fetch.PageSize > MaxPageSize {
		errs = append(errs, fmt.Errorf("fetch.page_size must be between 1 and %d", MaxPageSize))
	}
	if c.Fetch.BatchSize < 1 {
		errs = append(errs, errors.New("fetch.batch_size must be at least 1"))
	}
	if c.Fetch.PageDelayMs < 0 || c.Fetch.BatchDelayMs < 0 || c.Fetch.RateLimitDelayMs < 0 {
		errs = append(errs, errors.New("fetch delays must not be negative"))
	}

	// Log validation
	if _, err := zap.ParseAtomicLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log.format must be 'console' or 'json', got '%s'", c.Log.Format))
	}

	// Schedule validation
	if _, err := cronParser.Parse(c.Schedule.Cron); err != nil {
		errs = append(errs, fmt.Errorf("schedule.cron: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// cronParser accepts the seconds-first spec the scheduler runs with
var cronParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// EnsureDirectories creates necessary directories for the cache and token
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		filepath.Dir(c.Cache.Path),
		filepath.Dir(c.Gmail.TokenPath),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
