// Package config handles loading, parsing, and validating application configuration.
// Values come from DefaultConfig, then an optional YAML file, then environment
// variables, and are validated last.
// file: internal/config/config.go.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/camptools/internal/logging"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ServerConfig contains settings for the MCP tool server.
type ServerConfig struct {
	// Name is reported to MCP clients during initialization.
	Name string `yaml:"name" validate:"required"`
	// Transport is "stdio" or "http".
	Transport string `yaml:"transport" validate:"oneof=stdio http"`
	// Addr is the listen address for the http transport.
	Addr string `yaml:"addr" validate:"required_if=Transport http"`
}

// BasecampConfig contains account and credential settings for the remote service.
type BasecampConfig struct {
	AccountID    string `yaml:"account_id"`
	BaseURL      string `yaml:"base_url" validate:"required,url"`
	UserAgent    string `yaml:"user_agent" validate:"required"`
	AccessToken  string `yaml:"access_token"`
	RefreshToken string `yaml:"refresh_token"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	// TokenURL is the OAuth token endpoint used only for refreshes.
	TokenURL string `yaml:"token_url" validate:"omitempty,url"`
}

// APIConfig bounds outbound traffic to the remote service.
type APIConfig struct {
	RequestTimeout  time.Duration `yaml:"request_timeout" validate:"min=1s,max=5m"`
	RatePerSecond   float64       `yaml:"rate_per_second" validate:"gt=0"`
	Burst           int           `yaml:"burst" validate:"min=1"`
	MaxConnsPerHost int           `yaml:"max_conns_per_host" validate:"min=1"`
	// MaxWait caps how long a call may queue on the rate limiter.
	MaxWait time.Duration `yaml:"max_wait" validate:"min=0"`
}

// ConcurrencyConfig bounds fan-out.
type ConcurrencyConfig struct {
	Projects   int `yaml:"projects" validate:"min=1,max=64"`
	PerProject int `yaml:"per_project" validate:"min=1,max=64"`
}

// AnalysisConfig holds defaults for classification.
type AnalysisConfig struct {
	StaleDays int `yaml:"stale_days" validate:"min=1"`
	// Timezone decides what "today" means. Empty means local time.
	Timezone string `yaml:"timezone"`
}

// LoggingConfig selects log level and handler.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn warning error"`
	Format string `yaml:"format" validate:"oneof=json text"`
}

// Config is the root configuration structure.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Basecamp    BasecampConfig    `yaml:"basecamp"`
	API         APIConfig         `yaml:"api"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Analysis    AnalysisConfig    `yaml:"analysis"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// DefaultConfig returns a configuration populated with default values and
// environment overrides applied.
func DefaultConfig() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Name:      "camptools",
			Transport: "stdio",
			Addr:      "127.0.0.1:8484",
		},
		Basecamp: BasecampConfig{
			BaseURL:   "https://3.basecampapi.com",
			UserAgent: "camptools (https://github.com/dkoosis/camptools)",
			TokenURL:  "https://launchpad.37signals.com/authorization/token?type=refresh",
		},
		API: APIConfig{
			RequestTimeout:  20 * time.Second,
			RatePerSecond:   5,
			Burst:           10,
			MaxConnsPerHost: 8,
			MaxWait:         30 * time.Second,
		},
		Concurrency: ConcurrencyConfig{
			Projects:   4,
			PerProject: 4,
		},
		Analysis: AnalysisConfig{
			StaleDays: 7,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
	applyEnvironmentOverrides(cfg, logging.GetLogger("config_default"))
	return cfg
}

// LoadFromFile loads configuration from the specified YAML file path on top of
// DefaultConfig, applies environment overrides and validates the result.
// Supports '~' expansion in the file path.
func LoadFromFile(path string) (*Config, error) {
	expanded, err := expandHome(path)
	if err != nil {
		return nil, err
	}

	// #nosec G304 -- path comes from a command-line flag.
	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file: %s", expanded)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config file YAML: %s", expanded)
	}

	applyEnvironmentOverrides(cfg, logging.GetLogger("config_load"))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load returns DefaultConfig when path is empty, otherwise LoadFromFile.
func Load(path string) (*Config, error) {
	if path == "" {
		cfg := DefaultConfig()
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return LoadFromFile(path)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			first := verrs[0]
			return errors.WithHintf(
				errors.Newf("invalid configuration: %s failed %q", first.Namespace(), first.Tag()),
				"%d field(s) failed validation", len(verrs))
		}
		return errors.Wrap(err, "invalid configuration")
	}
	if c.Analysis.Timezone != "" {
		if _, err := time.LoadLocation(c.Analysis.Timezone); err != nil {
			return errors.Wrapf(err, "invalid configuration: unknown timezone %q", c.Analysis.Timezone)
		}
	}
	return nil
}

// Location returns the configured timezone, defaulting to local time.
func (c *Config) Location() *time.Location {
	if c.Analysis.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Analysis.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func expandHome(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Wrap(err, "failed to get home directory to expand path")
		}
		return filepath.Join(homeDir, path[1:]), nil
	}
	return path, nil
}

// DefaultPath returns ~/.config/camptools/camptools.yaml, or a relative
// fallback when the home directory is unknown.
func DefaultPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "camptools.yaml"
	}
	return filepath.Join(homeDir, ".config", "camptools", "camptools.yaml")
}

// applyEnvironmentOverrides applies configuration overrides from environment variables.
// Environment variables take precedence over values set in configuration files or defaults.
func applyEnvironmentOverrides(cfg *Config, logger logging.Logger) {
	stringOverride(logger, "BASECAMP_ACCOUNT_ID", &cfg.Basecamp.AccountID, false)
	stringOverride(logger, "BASECAMP_ACCESS_TOKEN", &cfg.Basecamp.AccessToken, true)
	stringOverride(logger, "BASECAMP_REFRESH_TOKEN", &cfg.Basecamp.RefreshToken, true)
	stringOverride(logger, "BASECAMP_CLIENT_ID", &cfg.Basecamp.ClientID, false)
	stringOverride(logger, "BASECAMP_CLIENT_SECRET", &cfg.Basecamp.ClientSecret, true)
	stringOverride(logger, "BASECAMP_BASE_URL", &cfg.Basecamp.BaseURL, false)
	stringOverride(logger, "BASECAMP_USER_AGENT", &cfg.Basecamp.UserAgent, false)
	stringOverride(logger, "CAMPTOOLS_TRANSPORT", &cfg.Server.Transport, false)
	stringOverride(logger, "CAMPTOOLS_ADDR", &cfg.Server.Addr, false)
	stringOverride(logger, "CAMPTOOLS_LOG_LEVEL", &cfg.Logging.Level, false)
	stringOverride(logger, "CAMPTOOLS_TIMEZONE", &cfg.Analysis.Timezone, false)

	if v := os.Getenv("CAMPTOOLS_REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			logger.Debug("Overriding request timeout from environment.", "envVar", "CAMPTOOLS_REQUEST_TIMEOUT", "value", d)
			cfg.API.RequestTimeout = d
		} else {
			logger.Warn("Invalid CAMPTOOLS_REQUEST_TIMEOUT environment variable ignored.", "value", v, "error", err)
		}
	}
	if v := os.Getenv("CAMPTOOLS_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			logger.Debug("Overriding project concurrency from environment.", "envVar", "CAMPTOOLS_CONCURRENCY", "value", n)
			cfg.Concurrency.Projects = n
		} else {
			logger.Warn("Invalid CAMPTOOLS_CONCURRENCY environment variable ignored.", "value", v, "error", err)
		}
	}
}

func stringOverride(logger logging.Logger, envVar string, target *string, secret bool) {
	v := os.Getenv(envVar)
	if v == "" {
		return
	}
	shown := any(v)
	if secret {
		shown = "[redacted]"
	}
	logger.Debug("Overriding value from environment.", "envVar", envVar, "value", shown)
	*target = v
}
