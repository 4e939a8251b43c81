// Package config loads the application configuration from a YAML file
// with environment variable overrides. Configuration is read once in main
// and passed into components at construction time; nothing reads the
// environment mid-computation.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full application configuration.
type Config struct {
	Postgres struct {
		DSN string `yaml:"dsn"`
	} `yaml:"postgres"`
	ClickHouse struct {
		DSN string `yaml:"dsn"`
	} `yaml:"clickhouse"`
	Server struct {
		Addr            string        `yaml:"addr"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Source struct {
		Type   string `yaml:"type"` // "http" or "csv"
		URL    string `yaml:"url"`
		Path   string `yaml:"path"`
		Symbol string `yaml:"symbol"`
	} `yaml:"source"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // "json" or "console"
	} `yaml:"logging"`
}

// Load reads and parses a YAML configuration file, applies environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	c := defaults()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyEnv()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func defaults() *Config {
	c := &Config{}
	c.Server.Addr = ":8000"
	c.Server.ShutdownTimeout = 30 * time.Second
	c.Source.Type = "http"
	c.Source.Symbol = "BTC-USD"
	c.Logging.Level = "info"
	c.Logging.Format = "json"
	return c
}

// applyEnv overrides file values from the environment. DSNs carry
// credentials, so the env vars win when set.
func (c *Config) applyEnv() {
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		c.Postgres.DSN = v
	}
	if v := os.Getenv("CLICKHOUSE_DSN"); v != "" {
		c.ClickHouse.DSN = v
	}
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("SOURCE_URL"); v != "" {
		c.Source.URL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks required fields and enum values.
func (c *Config) Validate() error {
	switch c.Source.Type {
	case "http":
		if c.Source.URL == "" {
			return fmt.Errorf("source.url is required for http source")
		}
	case "csv":
		if c.Source.Path == "" {
			return fmt.Errorf("source.path is required for csv source")
		}
	default:
		return fmt.Errorf("unknown source.type %q", c.Source.Type)
	}

	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("unknown logging.format %q", c.Logging.Format)
	}

	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	return nil
}
