package config

import (
	"fmt"
	"net/url"
	"os"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Load reads configuration from environment variables.
// It applies defaults for unset values and validates the result.
// Returns an error if required values are missing or validation fails.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// loadStruct recursively populates struct fields from environment variables.
func loadStruct(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)

		// Skip unexported fields
		if !fieldVal.CanSet() {
			continue
		}

		// Recurse into nested structs
		if field.Type.Kind() == reflect.Struct && field.Type != reflect.TypeOf(time.Time{}) {
			if err := loadStruct(fieldVal); err != nil {
				return err
			}
			continue
		}

		// Get tags
		envName := field.Tag.Get("env")
		envAlt := field.Tag.Get("envAlt")
		defaultVal := field.Tag.Get("default")
		required := field.Tag.Get("required") == "true"

		if envName == "" {
			continue
		}

		// Try primary env var, then alternate
		value := os.Getenv(envName)
		if value == "" && envAlt != "" {
			value = os.Getenv(envAlt)
		}

		// Apply default if not set
		if value == "" {
			if required {
				return fmt.Errorf("required environment variable %s is not set", envName)
			}
			value = defaultVal
		}

		if value == "" {
			continue
		}

		// Set the field value
		if err := setField(fieldVal, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", envName, value, err)
		}
	}

	return nil
}

// setField sets a reflect.Value from a string based on its type.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int32, reflect.Int64:
		// Handle time.Duration specially
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration: %w", err)
			}
			field.Set(reflect.ValueOf(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer: %w", err)
			}
			field.SetInt(i)
		}

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String {
			// Split comma-separated values, trim whitespace
			parts := strings.Split(value, ",")
			result := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					result = append(result, p)
				}
			}
			field.Set(reflect.ValueOf(result))
		} else {
			return fmt.Errorf("unsupported slice type: %s", field.Type().Elem().Kind())
		}

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// Document validation
	if strings.TrimSpace(c.Document.TemplatePath) == "" {
		errs = append(errs, "DOC_TEMPLATE must not be empty")
	}
	if strings.ContainsAny(c.Document.OutputPrefix, `/\`) {
		errs = append(errs, fmt.Sprintf("DOC_OUTPUT_PREFIX (%q) must not contain a path separator", c.Document.OutputPrefix))
	}

	// Calendar validation
	if c.Calendar.Year < 0 || c.Calendar.Year > 9999 {
		errs = append(errs, fmt.Sprintf("CALENDAR_YEAR (%d) must be 0 or a four-digit year", c.Calendar.Year))
	}
	if c.Calendar.FiscalOffsetWeeks < 0 || c.Calendar.FiscalOffsetWeeks > 52 {
		errs = append(errs, fmt.Sprintf("CALENDAR_FISCAL_OFFSET_WEEKS (%d) must be 0-52", c.Calendar.FiscalOffsetWeeks))
	}

	// Sheet validation
	cols := map[string]int{
		"SHEET_STATUS_COLUMN":       c.Sheet.StatusColumn,
		"SHEET_OVERRIDE_URL_COLUMN": c.Sheet.OverrideURLColumn,
		"SHEET_COUNTRY_COLUMN":      c.Sheet.CountryColumn,
		"SHEET_SOURCE_URL_COLUMN":   c.Sheet.SourceURLColumn,
	}
	seen := make(map[int]string)
	for _, name := range sortedKeys(cols) {
		col := cols[name]
		if col < 0 {
			errs = append(errs, fmt.Sprintf("%s (%d) must be non-negative", name, col))
			continue
		}
		if other, dup := seen[col]; dup {
			errs = append(errs, fmt.Sprintf("%s and %s both use column %d", other, name, col))
		}
		seen[col] = name
	}

	// Scrape validation
	if c.Scrape.Timeout <= 0 {
		errs = append(errs, "SCRAPE_TIMEOUT must be positive")
	}
	if c.Scrape.Delay < 0 {
		errs = append(errs, "SCRAPE_DELAY must be non-negative")
	}
	if c.Scrape.TypeColumn < 1 {
		errs = append(errs, "SCRAPE_TYPE_COLUMN must be 1 or greater")
	}
	if c.Scrape.MaxBodyBytes <= 0 {
		errs = append(errs, "SCRAPE_MAX_BODY_BYTES must be positive")
	}
	if u, err := url.Parse(c.Scrape.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Sprintf("SCRAPE_BASE_URL (%q) must be an absolute URL", c.Scrape.BaseURL))
	}

	// Run validation
	if c.Run.Timeout <= 0 {
		errs = append(errs, "RUN_TIMEOUT must be positive")
	}
	if c.Run.MaxWaitTime <= 0 {
		errs = append(errs, "RUN_MAX_WAIT_TIME must be positive")
	}

	// Database validation
	if c.Database.MaxConns < c.Database.MinConns {
		errs = append(errs, fmt.Sprintf("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)",
			c.Database.MaxConns, c.Database.MinConns))
	}
	if c.Database.MaxConns <= 0 {
		errs = append(errs, "DB_MAX_CONNS must be positive")
	}
	if c.Database.MinConns < 0 {
		errs = append(errs, "DB_MIN_CONNS must be non-negative")
	}

	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT must be non-negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}

	// Schedule validation
	if c.Schedule.RefreshInterval < 0 {
		errs = append(errs, "SCHEDULE_REFRESH_INTERVAL must be non-negative")
	}

	// Security validation
	if c.Security.RequireAPIKey && len(c.Security.APIKeys) == 0 {
		errs = append(errs, "REQUIRE_API_KEY is true but API_KEYS is empty; configure at least one API key or disable auth")
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String returns a safe string representation of the config for logging.
// Sensitive values like database URLs are masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Document: {Template: %q, OutputDir: %q}, ", c.Document.TemplatePath, c.Document.OutputDir))
	b.WriteString(fmt.Sprintf("Calendar: {Year: %d, FiscalOffsetWeeks: %d}, ", c.Calendar.Year, c.Calendar.FiscalOffsetWeeks))
	b.WriteString(fmt.Sprintf("Scrape: {SourceHost: %q, Timeout: %s, Delay: %s}, ",
		c.Scrape.SourceHost, c.Scrape.Timeout, c.Scrape.Delay))
	dbURL := "[NONE]"
	if c.Database.Enabled() {
		dbURL = "[MASKED]"
	}
	b.WriteString(fmt.Sprintf("Database: {URL: %s, MaxConns: %d}, ", dbURL, c.Database.MaxConns))
	b.WriteString(fmt.Sprintf("Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port))
	b.WriteString(fmt.Sprintf("Security: {RequireAPIKey: %v, APIKeys: %d}, ", c.Security.RequireAPIKey, len(c.Security.APIKeys)))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format))
	b.WriteString("}")
	return b.String()
}
