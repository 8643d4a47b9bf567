package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./shelf.db" {
			t.Errorf("expected database path ./shelf.db, got %s", config.Database.Path)
		}
		if config.Env() != EnvDev {
			t.Errorf("expected dev environment, got %s", config.Env())
		}
		if config.BaseURL() != "http://127.0.0.1:8080" {
			t.Errorf("expected dev URL http://127.0.0.1:8080, got %s", config.BaseURL())
		}
		if config.Backend.Timeout.Duration != 15*time.Second {
			t.Errorf("expected timeout 15s, got %v", config.Backend.Timeout.Duration)
		}
		if config.Backend.Breaker.Enabled {
			t.Error("expected breaker to be disabled by default")
		}
		if err := config.Validate(); err != nil {
			t.Errorf("default config should validate: %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		testConfig := `[backend]
environment = "prod"
prod_url = "https://api.example.com/"
timeout = "3s"

[backend.breaker]
enabled = true
max_failures = 2
cooldown = "1m"

[session]
store = "memory"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Env() != EnvProd {
			t.Errorf("expected prod, got %s", config.Env())
		}
		if config.BaseURL() != "https://api.example.com" {
			t.Errorf("expected trailing slash trimmed, got %s", config.BaseURL())
		}
		if config.Backend.Timeout.Duration != 3*time.Second {
			t.Errorf("expected 3s timeout, got %v", config.Backend.Timeout.Duration)
		}
		if !config.Backend.Breaker.Enabled || config.Backend.Breaker.MaxFailures != 2 {
			t.Errorf("unexpected breaker config: %+v", config.Backend.Breaker)
		}
		if config.Backend.Breaker.Cooldown.Duration != time.Minute {
			t.Errorf("expected 1m cooldown, got %v", config.Backend.Breaker.Cooldown.Duration)
		}
		if config.Database.Path != "./shelf.db" {
			t.Errorf("expected defaults for unset keys, got %s", config.Database.Path)
		}
	})

	t.Run("Validate", func(t *testing.T) {
		tt := []struct {
			name   string
			mutate func(*Config)
		}{
			{"unknown environment", func(c *Config) { c.Backend.Environment = "staging" }},
			{"missing url", func(c *Config) { c.Backend.DevURL = "" }},
			{"negative rate limit", func(c *Config) { c.Backend.RateLimit = -1 }},
			{"unknown store", func(c *Config) { c.Session.Store = "redis" }},
		}

		for _, tc := range tt {
			t.Run(tc.name, func(t *testing.T) {
				config := DefaultConfig()
				tc.mutate(config)
				if err := config.Validate(); !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got %v", err)
				}
			})
		}
	})

	t.Run("Invalid Duration", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[backend]\ntimeout = \"soon\"\n"), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		if _, err := LoadConfig(configPath); err == nil {
			t.Error("expected parse error for invalid duration")
		}
	})
}
