// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Document DocumentConfig
	Calendar CalendarConfig
	Sheet    SheetConfig
	Scrape   ScrapeConfig
	Run      RunConfig
	Database DatabaseConfig
	Server   ServerConfig
	Security SecurityConfig
	Logging  LoggingConfig
	Schedule ScheduleConfig
}

// DocumentConfig locates the template and the populated output.
type DocumentConfig struct {
	// TemplatePath is the country list spreadsheet a populate run starts from
	TemplatePath string `env:"DOC_TEMPLATE" default:"country_List.ods"`

	// OutputDir is where populated calendars are written (default: current directory)
	OutputDir string `env:"DOC_OUTPUT_DIR" default:"."`

	// OutputPrefix is prepended to the run date in output file names
	OutputPrefix string `env:"DOC_OUTPUT_PREFIX" default:"BH_List_"`
}

// CalendarConfig selects the date window written into the header.
type CalendarConfig struct {
	// Year is the target year; 0 means the current year
	Year int `env:"CALENDAR_YEAR" default:"0"`

	// FiscalOffsetWeeks shifts the window start from 1 January (default: 0, solar year)
	FiscalOffsetWeeks int `env:"CALENDAR_FISCAL_OFFSET_WEEKS" default:"0"`
}

// SheetConfig describes the template's metadata columns (zero-based).
type SheetConfig struct {
	// StatusColumn holds Yes/No: whether the country is supported
	StatusColumn int `env:"SHEET_STATUS_COLUMN" default:"0"`

	// OverrideURLColumn receives the source URL of hand-entered holidays
	OverrideURLColumn int `env:"SHEET_OVERRIDE_URL_COLUMN" default:"2"`

	// CountryColumn holds the country name, possibly as a hyperlink
	CountryColumn int `env:"SHEET_COUNTRY_COLUMN" default:"3"`

	// SourceURLColumn holds the listing page URL used for scraping
	SourceURLColumn int `env:"SHEET_SOURCE_URL_COLUMN" default:"4"`
}

// ScrapeConfig controls fetching and parsing of listing pages.
type ScrapeConfig struct {
	// BaseURL is the country index the URL refresh builds on
	BaseURL string `env:"SCRAPE_BASE_URL" default:"https://www.officeholidays.com/countries"`

	// SourceHost restricts scraping to URLs on this host
	SourceHost string `env:"SCRAPE_SOURCE_HOST" default:"officeholidays.com"`

	// UserAgent is sent with every request
	UserAgent string `env:"SCRAPE_USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"`

	// Timeout bounds each request (default: 10s)
	Timeout time.Duration `env:"SCRAPE_TIMEOUT" default:"10s"`

	// Delay is the pause between consecutive requests (default: 200ms)
	Delay time.Duration `env:"SCRAPE_DELAY" default:"200ms"`

	// TypeColumn is the 1-based table column holding the holiday type (default: 4)
	TypeColumn int `env:"SCRAPE_TYPE_COLUMN" default:"4"`

	// TableClass marks the holiday table
	TableClass string `env:"SCRAPE_TABLE_CLASS" default:"country-table"`

	// NameClass marks the link holding a holiday name
	NameClass string `env:"SCRAPE_NAME_CLASS" default:"country-listing"`

	// MaxBodyBytes caps how much of a page is read (default: 10MB)
	MaxBodyBytes int64 `env:"SCRAPE_MAX_BODY_BYTES" default:"10485760"`
}

// RunConfig bounds populate and override runs.
type RunConfig struct {
	// Timeout is the maximum duration of one run (default: 30m)
	Timeout time.Duration `env:"RUN_TIMEOUT" default:"30m"`

	// MaxWaitTime is how long a scheduled run waits for a running one (default: 1m)
	MaxWaitTime time.Duration `env:"RUN_MAX_WAIT_TIME" default:"1m"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string; empty disables the holiday archive
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 4)
	MaxConns int `env:"DB_MAX_CONNS" default:"4"`

	// MinConns is the minimum number of connections to keep open (default: 0)
	MinConns int `env:"DB_MIN_CONNS" default:"0"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// Enabled reports whether a database is configured.
func (c *DatabaseConfig) Enabled() bool {
	return c.URL != ""
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 30s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// RequireAPIKey protects run-starting endpoints with X-API-Key (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted keys
	APIKeys []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// ScheduleConfig holds periodic refresh settings for serve mode.
type ScheduleConfig struct {
	// RefreshInterval re-runs populate this often; 0 disables (default: 0s)
	RefreshInterval time.Duration `env:"SCHEDULE_REFRESH_INTERVAL" default:"0s"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// TargetYear resolves Year against now.
func (c *CalendarConfig) TargetYear(now time.Time) int {
	if c.Year > 0 {
		return c.Year
	}
	return now.Year()
}

// MetadataWidth returns the number of columns the metadata block occupies:
// one past the rightmost configured column.
func (c *SheetConfig) MetadataWidth() int {
	return max(c.StatusColumn, c.OverrideURLColumn, c.CountryColumn, c.SourceURLColumn) + 1
}
