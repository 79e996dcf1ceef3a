package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // CSV_TIME_ZONE must resolve without a system zoneinfo
)

// Load reads configuration from environment variables.
// Unset values take their defaults. Every unreadable or invalid value is
// reported, not just the first.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// normalize lower-cases the enumerated settings.
func (c *Config) normalize() {
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	c.Logging.Format = strings.ToLower(c.Logging.Format)
}

// lookup returns the first non-empty variable among names.
func lookup(names ...string) (string, bool) {
	for _, name := range names {
		if name == "" {
			continue
		}
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v, true
		}
	}
	return "", false
}

var durationType = reflect.TypeOf(time.Duration(0))

// loadStruct populates tagged fields of v, descending into nested structs,
// and joins the errors of all fields.
func loadStruct(v reflect.Value) error {
	t := v.Type()
	var errs []error

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)
		if !fieldVal.CanSet() {
			continue
		}

		if field.Type.Kind() == reflect.Struct {
			if err := loadStruct(fieldVal); err != nil {
				errs = append(errs, err)
			}
			continue
		}

		envName := field.Tag.Get("env")
		if envName == "" {
			continue
		}

		value, ok := lookup(envName, field.Tag.Get("envAlt"))
		if !ok {
			if field.Tag.Get("required") == "true" {
				errs = append(errs, fmt.Errorf("required environment variable %s is not set", envName))
				continue
			}
			value = field.Tag.Get("default")
		}
		if value == "" {
			continue
		}

		if err := setField(fieldVal, value); err != nil {
			errs = append(errs, fmt.Errorf("invalid value for %s=%q: %w", envName, value, err))
		}
	}

	return errors.Join(errs...)
}

// setField parses value into field according to its type.
func setField(field reflect.Value, value string) error {
	switch {
	case field.Type() == durationType:
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
		field.SetInt(int64(d))

	case field.Kind() == reflect.String:
		field.SetString(value)

	case field.Kind() == reflect.Int, field.Kind() == reflect.Int64:
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		field.SetInt(i)

	case field.Kind() == reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var problems []string
	problems = append(problems, c.Database.problems()...)
	problems = append(problems, c.Export.problems()...)
	problems = append(problems, c.Import.problems()...)
	problems = append(problems, c.Logging.problems()...)

	if len(problems) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

func (d DatabaseConfig) problems() []string {
	var p []string
	switch strings.ToLower(d.Driver) {
	case DriverPostgres, DriverSQLite:
	default:
		p = append(p, fmt.Sprintf("DB_DRIVER (%q) must be one of: postgres, sqlite", d.Driver))
	}
	if d.URL == "" {
		p = append(p, "DATABASE_URL is required")
	}
	if d.MaxConns <= 0 {
		p = append(p, "DB_MAX_CONNS must be positive")
	}
	if d.MinConns < 0 {
		p = append(p, "DB_MIN_CONNS must be non-negative")
	}
	if d.MaxConns < d.MinConns {
		p = append(p, fmt.Sprintf("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)", d.MaxConns, d.MinConns))
	}
	return p
}

func (e ExportConfig) problems() []string {
	var p []string
	if e.Dir == "" {
		p = append(p, "EXPORT_DIR must not be empty")
	}
	if e.BatchSize <= 0 {
		p = append(p, "EXPORT_BATCH_SIZE must be positive")
	}
	if e.TimeZone == "" {
		p = append(p, "CSV_TIME_ZONE must not be empty")
	} else if _, err := time.LoadLocation(e.TimeZone); err != nil {
		p = append(p, fmt.Sprintf("CSV_TIME_ZONE (%q) is not a known time zone", e.TimeZone))
	}
	return p
}

func (i ImportConfig) problems() []string {
	if i.BatchSize <= 0 {
		return []string{"IMPORT_BATCH_SIZE must be positive"}
	}
	return nil
}

func (l LoggingConfig) problems() []string {
	var p []string
	switch strings.ToLower(l.Level) {
	case "debug", "info", "warn", "error":
	default:
		p = append(p, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", l.Level))
	}
	switch strings.ToLower(l.Format) {
	case "text", "json":
	default:
		p = append(p, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", l.Format))
	}
	return p
}

// String returns a safe string representation of the config for logging.
// The database URL is masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Database: {Driver: %q, URL: [MASKED], MaxConns: %d, MinConns: %d}, "+
			"Export: {Dir: %q, BatchSize: %d, TimeZone: %q}, "+
			"Import: {BatchSize: %d}, "+
			"Logging: {Level: %q, Format: %q}}",
		c.Database.Driver, c.Database.MaxConns, c.Database.MinConns,
		c.Export.Dir, c.Export.BatchSize, c.Export.TimeZone,
		c.Import.BatchSize,
		c.Logging.Level, c.Logging.Format,
	)
}
