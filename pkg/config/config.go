// Package config loads server configuration from a YAML file with
// environment variable overrides for secrets and deployment knobs.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`
	MarketData struct {
		Token     string `yaml:"token"`
		Endpoint  string `yaml:"endpoint"`
		ScrapeURL string `yaml:"scrape_url"`
	} `yaml:"market_data"`
	Valuation struct {
		MonteCarloIterations int `yaml:"monte_carlo_iterations"`
		Workers              int `yaml:"workers"`
	} `yaml:"valuation"`
}

// Default returns a config usable without any file, suitable for local
// runs where everything comes from the environment.
func Default() *Config {
	var c Config
	c.Environment = "development"
	c.Server.Port = 8080
	c.Server.ReadTimeout = 30 * time.Second
	c.Server.WriteTimeout = 60 * time.Second
	c.Server.ShutdownTimeout = 10 * time.Second
	c.Log.Level = "info"
	c.Log.Format = "console"
	c.Log.Output = "stderr"
	c.Metrics.Enabled = true
	c.Metrics.Path = "/metrics"
	return &c
}

// Load reads and parses a YAML configuration file. Missing fields keep
// their defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

// LoadWithEnv loads config from YAML, falling back to pure defaults when
// the file does not exist, then overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	var c *Config
	if _, statErr := os.Stat(path); statErr == nil {
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		c = loaded
	} else {
		c = Default()
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv("TUSHARE_TOKEN"); v != "" {
		c.MarketData.Token = v
	}
	if v := os.Getenv("MARKET_DATA_ENDPOINT"); v != "" {
		c.MarketData.Endpoint = v
	}

	return c, c.Validate()
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535, got %d", c.Server.Port)
	}
	if c.Valuation.MonteCarloIterations < 0 {
		return fmt.Errorf("valuation.monte_carlo_iterations cannot be negative")
	}
	if c.Valuation.Workers < 0 {
		return fmt.Errorf("valuation.workers cannot be negative")
	}
	return nil
}
