// Package config handles configuration loading from TOML files and environment variables.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/xonecas/hollow/internal/constants"
)

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Game     GameConfig     `toml:"game"`
	Provider ProviderConfig `toml:"provider"`
	Journal  JournalConfig  `toml:"journal"`
}

// ServerConfig holds HTTP settings.
type ServerConfig struct {
	Addr           string   `toml:"addr"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// GameConfig holds progression settings.
type GameConfig struct {
	MaxArcs       int  `toml:"max_arcs"`
	StrictUnlocks bool `toml:"strict_unlocks"`
	// SessionIdleTTL evicts sessions idle for this long. Zero keeps them forever.
	SessionIdleTTL Duration `toml:"session_idle_ttl"`
}

// ProviderConfig holds LLM provider settings.
type ProviderConfig struct {
	Name        string  `toml:"name"`
	Endpoint    string  `toml:"endpoint"`
	Model       string  `toml:"model"`
	Temperature float64 `toml:"temperature"`
	RateLimit   float64 `toml:"rate_limit"`
	RateBurst   int     `toml:"rate_burst"`
	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `toml:"api_key_env"`
}

// APIKey reads the provider key from the environment.
func (p ProviderConfig) APIKey() string {
	if p.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(p.APIKeyEnv)
}

// JournalConfig holds diagnostic journal settings. An empty path means
// journal.db in the data directory.
type JournalConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Duration is a time.Duration that decodes from TOML strings like "30m".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           ":8000",
			AllowedOrigins: []string{"*"},
		},
		Game: GameConfig{
			MaxArcs: constants.MaxArcsPerSession,
		},
		Provider: ProviderConfig{
			Name:        "gemini",
			Endpoint:    "https://generativelanguage.googleapis.com/v1beta/openai/",
			Model:       "gemini-2.0-flash-001",
			Temperature: 0.9,
			RateLimit:   2.0,
			RateBurst:   4,
			APIKeyEnv:   "GEMINI_API_KEY",
		},
	}
}

// Load reads configuration from a TOML file and applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	// Load from file if it exists
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, err
			}
		}
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HOLLOW_ADDR"); v != "" {
		cfg.Server.Addr = v
	}

	if v := os.Getenv("HOLLOW_MAX_ARCS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Game.MaxArcs = n
		}
	}

	if v := os.Getenv("HOLLOW_STRICT_UNLOCKS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Game.StrictUnlocks = b
		}
	}

	if v := os.Getenv("HOLLOW_SESSION_IDLE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Game.SessionIdleTTL = Duration{d}
		}
	}

	if v := os.Getenv("HOLLOW_PROVIDER_ENDPOINT"); v != "" {
		cfg.Provider.Endpoint = v
	}

	if v := os.Getenv("HOLLOW_PROVIDER_MODEL"); v != "" {
		cfg.Provider.Model = v
	}

	if v := os.Getenv("HOLLOW_PROVIDER_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Provider.Temperature = f
		}
	}

	if v := os.Getenv("HOLLOW_PROVIDER_RATE_LIMIT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Provider.RateLimit = f
		}
	}

	if v := os.Getenv("HOLLOW_PROVIDER_RATE_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Provider.RateBurst = n
		}
	}

	if v := os.Getenv("HOLLOW_JOURNAL"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Journal.Enabled = b
		}
	}

	if v := os.Getenv("HOLLOW_JOURNAL_PATH"); v != "" {
		cfg.Journal.Path = v
	}
}

// DataDir returns the path to the Hollow data directory (~/.hollow).
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".hollow"), nil
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}
