package config

import "time"

// Config represents the application configuration
type Config struct {
	Gmail    GmailConfig    `toml:"gmail"`
	Cache    CacheConfig    `toml:"cache"`
	Fetch    FetchConfig    `toml:"fetch"`
	Log      LogConfig      `toml:"log"`
	Metrics  MetricsConfig  `toml:"metrics"`
	Schedule ScheduleConfig `toml:"schedule"`
}

// GmailConfig contains Gmail-specific settings
type GmailConfig struct {
	CredentialsPath string `toml:"credentials_path" env:"INBOXDOMAINS_GMAIL_CREDENTIALS_PATH"`
	TokenPath       string `toml:"token_path" env:"INBOXDOMAINS_GMAIL_TOKEN_PATH"`
	Label           string `toml:"label" env:"INBOXDOMAINS_GMAIL_LABEL"`
}

// Cache backends
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
	BackendBolt   = "bolt"
)

// CacheConfig selects where the aggregate snapshot is kept
type CacheConfig struct {
	Backend string `toml:"backend" env:"INBOXDOMAINS_CACHE_BACKEND"`
	Path    string `toml:"path" env:"INBOXDOMAINS_CACHE_PATH"`
}

// FetchConfig contains paging and pacing settings for one fetch invocation
type FetchConfig struct {
	MaxPerFetch      int `toml:"max_per_fetch" env:"INBOXDOMAINS_FETCH_MAX_PER_FETCH"`
	PageSize         int `toml:"page_size" env:"INBOXDOMAINS_FETCH_PAGE_SIZE"`
	BatchSize        int `toml:"batch_size" env:"INBOXDOMAINS_FETCH_BATCH_SIZE"`
	PageDelayMs      int `toml:"page_delay_ms" env:"INBOXDOMAINS_FETCH_PAGE_DELAY_MS"`
	BatchDelayMs     int `toml:"batch_delay_ms" env:"INBOXDOMAINS_FETCH_BATCH_DELAY_MS"`
	RateLimitDelayMs int `toml:"rate_limit_delay_ms" env:"INBOXDOMAINS_FETCH_RATE_LIMIT_DELAY_MS"`
}

// PageDelay returns the pause between list pages
func (f FetchConfig) PageDelay() time.Duration {
	return time.Duration(f.PageDelayMs) * time.Millisecond
}

// BatchDelay returns the pause after each metadata batch
func (f FetchConfig) BatchDelay() time.Duration {
	return time.Duration(f.BatchDelayMs) * time.Millisecond
}

// RateLimitDelay returns the pause after a rate-limited metadata call
func (f FetchConfig) RateLimitDelay() time.Duration {
	return time.Duration(f.RateLimitDelayMs) * time.Millisecond
}

// LogConfig contains logger settings
type LogConfig struct {
	Level  string `toml:"level" env:"INBOXDOMAINS_LOG_LEVEL"`
	Format string `toml:"format" env:"INBOXDOMAINS_LOG_FORMAT"`
}

// MetricsConfig contains metrics export settings.
// An empty TextfilePath disables the export.
type MetricsConfig struct {
	TextfilePath string `toml:"textfile_path" env:"INBOXDOMAINS_METRICS_TEXTFILE_PATH"`
}

// ScheduleConfig contains the repeated fetch schedule
type ScheduleConfig struct {
	Cron string `toml:"cron" env:"INBOXDOMAINS_SCHEDULE_CRON"`
}

// Default returns a Config with sensible defaults
func Default() *Config {
	return &Config{
		Gmail: GmailConfig{
			CredentialsPath: "~/.config/inboxdomains/credentials.json",
			TokenPath:       "~/.config/inboxdomains/token.json",
			Label:           "INBOX",
		},
		Cache: CacheConfig{
			Backend: BackendJSON,
			Path:    "~/.local/share/inboxdomains/email_cache.json",
		},
		Fetch: FetchConfig{
			MaxPerFetch:      1000,
			PageSize:         100,
			BatchSize:        40,
			PageDelayMs:      100,
			BatchDelayMs:     1000,
			RateLimitDelayMs: 5000,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Schedule: ScheduleConfig{
			Cron: "0 */30 * * * *",
		},
	}
}
