package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment names the backend deployment a session is scoped to.
type Environment string

const (
	EnvDev  Environment = "dev"
	EnvProd Environment = "prod"
)

// ParseEnvironment converts a string to an [Environment], rejecting unknown values.
func ParseEnvironment(s string) (Environment, error) {
	switch Environment(strings.ToLower(strings.TrimSpace(s))) {
	case EnvDev:
		return EnvDev, nil
	case EnvProd:
		return EnvProd, nil
	default:
		return "", fmt.Errorf("%w: unknown environment %q", ErrInvalidConfig, s)
	}
}

// Duration wraps [time.Duration] so it can be written as "15s" in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}

// MarshalText implements [encoding.TextMarshaler].
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Backend  BackendConfig  `toml:"backend"`
	Database DatabaseConfig `toml:"database"`
	Session  SessionConfig  `toml:"session"`
	UI       UIConfig       `toml:"ui"`
}

// BackendConfig contains the REST backend location and client behaviour.
type BackendConfig struct {
	Environment string        `toml:"environment"`
	DevURL      string        `toml:"dev_url"`
	ProdURL     string        `toml:"prod_url"`
	Timeout     Duration      `toml:"timeout"`
	RateLimit   float64       `toml:"rate_limit"` // requests per second, 0 disables
	Burst       int           `toml:"burst"`
	Breaker     BreakerConfig `toml:"breaker"`
}

// BreakerConfig controls the optional circuit breaker in front of the backend.
type BreakerConfig struct {
	Enabled     bool     `toml:"enabled"`
	MaxFailures uint32   `toml:"max_failures"`
	Cooldown    Duration `toml:"cooldown"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// SessionConfig selects where the bearer token is persisted.
type SessionConfig struct {
	Store string `toml:"store"` // sqlite or memory
}

// UIConfig contains presentation preferences.
type UIConfig struct {
	Locale string `toml:"locale"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks the configuration for values the client cannot work with.
func (c *Config) Validate() error {
	if _, err := ParseEnvironment(c.Backend.Environment); err != nil {
		return err
	}
	if c.BaseURL() == "" {
		return fmt.Errorf("%w: no backend URL for environment %q", ErrInvalidConfig, c.Backend.Environment)
	}
	if c.Backend.RateLimit < 0 {
		return fmt.Errorf("%w: rate_limit must not be negative", ErrInvalidConfig)
	}
	switch c.Session.Store {
	case "", "sqlite", "memory":
	default:
		return fmt.Errorf("%w: unknown session store %q", ErrInvalidConfig, c.Session.Store)
	}
	return nil
}

// Env returns the configured [Environment], falling back to [EnvDev].
func (c *Config) Env() Environment {
	env, err := ParseEnvironment(c.Backend.Environment)
	if err != nil {
		return EnvDev
	}
	return env
}

// BaseURL returns the backend URL for the configured environment without a trailing slash.
func (c *Config) BaseURL() string {
	var u string
	switch c.Env() {
	case EnvProd:
		u = c.Backend.ProdURL
	default:
		u = c.Backend.DevURL
	}
	return strings.TrimRight(u, "/")
}
