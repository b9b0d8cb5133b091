package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if c.Server.Port != 8080 {
		t.Errorf("default port = %d, want 8080", c.Server.Port)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
environment: production
server:
  port: 9090
  read_timeout: 5s
log:
  level: debug
market_data:
  token: abc123
valuation:
  monte_carlo_iterations: 5000
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", c.Server.Port)
	}
	if c.Server.ReadTimeout != 5*time.Second {
		t.Errorf("read_timeout = %v, want 5s", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout != 60*time.Second {
		t.Errorf("unset write_timeout should keep default, got %v", c.Server.WriteTimeout)
	}
	if c.MarketData.Token != "abc123" {
		t.Errorf("token = %q", c.MarketData.Token)
	}
	if c.Valuation.MonteCarloIterations != 5000 {
		t.Errorf("iterations = %d", c.Valuation.MonteCarloIterations)
	}
}

func TestLoadRejectsBadPort(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for negative port")
	}
}

func TestLoadWithEnvMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("PORT", "7070")
	t.Setenv("DATABASE_URL", "postgres://localhost/valuations")

	c, err := LoadWithEnv(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadWithEnv: %v", err)
	}
	if c.Server.Port != 7070 {
		t.Errorf("port = %d, want 7070 from env", c.Server.Port)
	}
	if c.Database.URL != "postgres://localhost/valuations" {
		t.Errorf("database url = %q", c.Database.URL)
	}
}
