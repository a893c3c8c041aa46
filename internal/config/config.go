// Package config loads server settings from the environment, an optional
// .env file and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	redditmcp "github.com/jamesprial/go-reddit-mcp"
	pkgerrs "github.com/jamesprial/go-reddit-mcp/pkg/errors"
)

// Environment variables read by Load.
const (
	EnvClientID     = "REDDIT_CLIENT_ID"
	EnvClientSecret = "REDDIT_CLIENT_SECRET"
	EnvRefreshToken = "REDDIT_REFRESH_TOKEN"
	EnvUserAgent    = "REDDIT_USER_AGENT"
	EnvLogLevel     = "LOG_LEVEL"
	EnvLogFormat    = "LOG_FORMAT"
	EnvHTTPAddr     = "REDDIT_MCP_HTTP_ADDR"
	EnvConfigFile   = "REDDIT_MCP_CONFIG"
)

// DefaultEnvFile is read when present in the working directory.
const DefaultEnvFile = ".env"

// Config is the resolved server configuration.
type Config struct {
	Credentials redditmcp.Credentials
	UserAgent   string
	Timeout     time.Duration
	RateLimit   redditmcp.RateLimitConfig
	HTTPAddr    string
	LogLevel    string
	LogFormat   string
}

// fileConfig mirrors the YAML file layout.
type fileConfig struct {
	UserAgent string `yaml:"user_agent"`
	Timeout   string `yaml:"timeout"`
	RateLimit struct {
		RequestsPerMinute float64 `yaml:"requests_per_minute"`
		Burst             int     `yaml:"burst"`
	} `yaml:"rate_limit"`
	HTTPAddr  string `yaml:"http_addr"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// LoadDotEnv loads path into the process environment without overriding
// variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed loading %s: %w", path, err)
	}
	return nil
}

// Load reads .env, then the YAML file named by REDDIT_MCP_CONFIG, then the
// environment. Environment values win over the file.
func Load() (*Config, error) {
	if err := LoadDotEnv(DefaultEnvFile); err != nil {
		return nil, err
	}
	return FromEnv(os.Getenv)
}

// FromEnv resolves configuration using getenv for every lookup.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{}

	if path := getenv(EnvConfigFile); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	creds, err := redditmcp.CredentialsFrom(
		strings.TrimSpace(getenv(EnvClientID)),
		strings.TrimSpace(getenv(EnvClientSecret)),
		strings.TrimSpace(getenv(EnvRefreshToken)),
	)
	if err != nil {
		return nil, err
	}
	cfg.Credentials = creds

	override(&cfg.UserAgent, getenv(EnvUserAgent))
	override(&cfg.HTTPAddr, getenv(EnvHTTPAddr))
	override(&cfg.LogLevel, getenv(EnvLogLevel))
	override(&cfg.LogFormat, getenv(EnvLogFormat))
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed reading config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return &pkgerrs.ConfigError{Field: EnvConfigFile, Message: "failed parsing config file: " + err.Error()}
	}

	if fc.Timeout != "" {
		d, err := time.ParseDuration(fc.Timeout)
		if err != nil || d < 0 {
			return &pkgerrs.ConfigError{Field: "timeout", Message: fmt.Sprintf("invalid duration %q", fc.Timeout)}
		}
		c.Timeout = d
	}
	if fc.RateLimit.RequestsPerMinute < 0 || fc.RateLimit.Burst < 0 {
		return &pkgerrs.ConfigError{Field: "rate_limit", Message: "values must not be negative"}
	}

	c.UserAgent = fc.UserAgent
	c.RateLimit = redditmcp.RateLimitConfig{
		RequestsPerMinute: fc.RateLimit.RequestsPerMinute,
		Burst:             fc.RateLimit.Burst,
	}
	c.HTTPAddr = fc.HTTPAddr
	c.LogLevel = fc.LogLevel
	c.LogFormat = fc.LogFormat
	return nil
}

func override(dst *string, value string) {
	if v := strings.TrimSpace(value); v != "" {
		*dst = v
	}
}

// ClientConfig returns the Reddit client configuration. Zero values fall back
// to the client defaults.
func (c *Config) ClientConfig(logger *slog.Logger) *redditmcp.Config {
	cfg := &redditmcp.Config{
		Credentials: c.Credentials,
		UserAgent:   c.UserAgent,
		RateLimit:   c.RateLimit,
		Logger:      logger,
	}
	if c.Timeout > 0 {
		cfg.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	return cfg
}
