package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"hfcheck/adapters/datareadiness/coercer"
	"hfcheck/adapters/source"
	"hfcheck/app"
	"hfcheck/domain/quality"
	"hfcheck/domain/survey"
	"hfcheck/internal/errors"
	checks "hfcheck/internal/quality"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ConfigFileEnv names the optional YAML file layered under the environment
const ConfigFileEnv = "HFCHECK_CONFIG"

// Survey exports audited when nothing else is configured
const (
	DefaultSourceAName = "Docentes"
	DefaultSourceAURL  = "https://www.dropbox.com/scl/fi/ub2g0606rmqu4ykn4ef15/Docentes.csv?rlkey=3v26fp1cp4tjam3j7si17f5e2&st=aea42d23&dl=1"
	DefaultSourceBName = "Docentes-Autoadministrada"
	DefaultSourceBURL  = "https://www.dropbox.com/scl/fi/o7fhl9bvp1ey89qdwworu/Docentes-Autoadministrada.csv?rlkey=0a8a8gg61eus8bssvilievbkk&st=86wyxizg&dl=1"
)

// Config represents the complete application configuration
type Config struct {
	Sources           []survey.Source        `yaml:"sources" validate:"required,min=1,dive"`
	Fetch             FetchConfig            `yaml:"fetch"`
	Coercion          coercer.CoercionConfig `yaml:"coercion"`
	Duration          checks.DurationOptions `yaml:"duration"`
	DuplicateKeys     []string               `yaml:"duplicate_keys" validate:"required,min=1,dive,required"`
	StrictCategorical bool                   `yaml:"strict_categorical"`
	Modules           []quality.ModuleSpec   `yaml:"modules" validate:"required,min=1,dive"`
	DisplayColumns    []string               `yaml:"display_columns" validate:"dive,required"`
	Report            ReportConfig           `yaml:"report"`
	Server            ServerConfig           `yaml:"server"`
	Profiling         ProfilingConfig        `yaml:"profiling"`
	LogLevel          string                 `yaml:"log_level" validate:"oneof=ERROR WARN INFO DEBUG TRACE error warn info debug trace"`
}

// FetchConfig holds source retrieval settings
type FetchConfig struct {
	Timeout  time.Duration `yaml:"timeout" validate:"gt=0"`
	MaxBytes int64         `yaml:"max_bytes" validate:"gt=0"`
	NATokens []string      `yaml:"na_tokens"`
}

// ReportConfig holds export settings
type ReportConfig struct {
	Precision int    `yaml:"precision" validate:"gte=0,lte=10"`
	MaxRows   int    `yaml:"max_rows" validate:"gte=0"`
	Title     string `yaml:"title"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string `yaml:"port" validate:"required,numeric"`
	GinMode string `yaml:"gin_mode" validate:"oneof=debug release test"`
}

// ProfilingConfig holds performance profiling settings
type ProfilingConfig struct {
	Port    string `yaml:"port" validate:"required_if=Enabled true"`
	Enabled bool   `yaml:"enabled"`
}

// Default returns the configuration used when neither a file nor the
// environment overrides a setting
func Default() *Config {
	opts := app.DefaultAuditOptions()
	return &Config{
		Sources: []survey.Source{
			{Name: DefaultSourceAName, Location: DefaultSourceAURL},
			{Name: DefaultSourceBName, Location: DefaultSourceBURL},
		},
		Fetch: FetchConfig{
			Timeout:  source.DefaultFetchTimeout,
			MaxBytes: source.DefaultMaxSourceBytes,
			NATokens: append([]string(nil), source.DefaultNATokens...),
		},
		Coercion:       coercer.DefaultCoercionConfig(),
		Duration:       opts.Duration,
		DuplicateKeys:  opts.DuplicateKeys,
		Modules:        opts.Modules,
		DisplayColumns: opts.DisplayColumns,
		Report:         ReportConfig{Precision: 4, MaxRows: 200, Title: "High-frequency checks"},
		Server:         ServerConfig{Port: "8080", GinMode: "debug"},
		Profiling:      ProfilingConfig{Port: "6060"},
		LogLevel:       "INFO",
	}
}

// Load reads the optional YAML file, applies environment overrides and
// validates the result
func Load() (*Config, error) {
	config := Default()

	if path := os.Getenv(ConfigFileEnv); path != "" {
		if err := config.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := config.applyEnv(); err != nil {
		return nil, errors.Wrap(err, "failed to read environment configuration")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("read %s: %w", path, err))
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("parse %s: %w", path, err))
	}
	return nil
}

func (c *Config) applyEnv() error {
	if err := c.applySourceEnv(0, "SOURCE_A"); err != nil {
		return err
	}
	if err := c.applySourceEnv(1, "SOURCE_B"); err != nil {
		return err
	}

	c.Fetch.Timeout = getEnvDurationOrDefault("FETCH_TIMEOUT", c.Fetch.Timeout)
	c.Fetch.MaxBytes = int64(getEnvIntOrDefault("FETCH_MAX_BYTES", int(c.Fetch.MaxBytes)))
	c.Duration.MinMinutes = getEnvFloatOrDefault("DURATION_MIN_MINUTES", c.Duration.MinMinutes)
	c.Duration.MaxMinutes = getEnvFloatOrDefault("DURATION_MAX_MINUTES", c.Duration.MaxMinutes)
	c.Duration.MissingPolicy = quality.MissingDurationPolicy(
		getEnvOrDefault("DURATION_MISSING_POLICY", string(c.Duration.MissingPolicy)))
	if keys := getEnvList("DUPLICATE_KEYS"); keys != nil {
		c.DuplicateKeys = keys
	}
	c.Coercion.MaxCategories = getEnvIntOrDefault("MAX_CATEGORIES", c.Coercion.MaxCategories)
	c.StrictCategorical = getEnvBoolOrDefault("STRICT_CATEGORICAL", c.StrictCategorical)

	c.Server.Port = getEnvOrDefault("PORT", c.Server.Port)
	c.Server.GinMode = getEnvOrDefault("GIN_MODE", c.Server.GinMode)
	c.Profiling.Port = getEnvOrDefault("PPROF_PORT", c.Profiling.Port)
	c.Profiling.Enabled = getEnvBoolOrDefault("PPROF_ENABLED", c.Profiling.Enabled)
	c.LogLevel = getEnvOrDefault("LOG_LEVEL", c.LogLevel)
	return nil
}

// applySourceEnv overrides the source at index; a URL for a source beyond the
// configured list appends it
func (c *Config) applySourceEnv(index int, prefix string) error {
	url := os.Getenv(prefix + "_URL")
	name := os.Getenv(prefix + "_NAME")
	if url == "" && name == "" {
		return nil
	}
	if index >= len(c.Sources) {
		if url == "" {
			return errors.ConfigInvalid(prefix + "_NAME set without " + prefix + "_URL")
		}
		c.Sources = append(c.Sources, survey.Source{})
		index = len(c.Sources) - 1
	}
	if url != "" {
		c.Sources[index].Location = url
	}
	if name != "" {
		c.Sources[index].Name = name
	}
	return nil
}

// Validate checks struct constraints and returns a CONFIG_INVALID error
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("configuration validation failed: %w", err))
	}
	return nil
}

// AuditOptions maps the configuration onto the audit pipeline options
func (c *Config) AuditOptions() app.AuditOptions {
	return app.AuditOptions{
		Sources:           append([]survey.Source(nil), c.Sources...),
		Modules:           append([]quality.ModuleSpec(nil), c.Modules...),
		Duration:          c.Duration,
		DuplicateKeys:     append([]string(nil), c.DuplicateKeys...),
		StrictCategorical: c.StrictCategorical,
		DisplayColumns:    append([]string(nil), c.DisplayColumns...),
	}
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvList splits a comma-separated variable; nil when unset or empty
func getEnvList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
