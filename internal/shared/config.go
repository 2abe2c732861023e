package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Service  ServiceConfig  `toml:"service"`
	Extract  ExtractConfig  `toml:"extract"`
	UI       UIConfig       `toml:"ui"`
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
}

// ServiceConfig describes how to reach the remote extraction service.
type ServiceConfig struct {
	BaseURL           string  `toml:"base_url"`
	Token             string  `toml:"token"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	ListRetries       int     `toml:"list_retries"`
}

// Timeout returns the per-request timeout for non-streaming calls.
func (c ServiceConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ExtractConfig holds defaults for extraction jobs.
type ExtractConfig struct {
	Archive     string `toml:"archive"`
	Destination string `toml:"destination"`
}

// UIConfig contains TUI settings.
type UIConfig struct {
	SettleDelayMS int `toml:"settle_delay_ms"`
}

// SettleDelay is the pause between a run ending and the result view being shown.
func (c UIConfig) SettleDelay() time.Duration {
	if c.SettleDelayMS < 0 {
		return 0
	}
	return time.Duration(c.SettleDelayMS) * time.Millisecond
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains settings for the local mock extraction service.
type ServerConfig struct {
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	Root        string `toml:"root"`
	LineDelayMS int    `toml:"line_delay_ms"`
}

// Addr returns the listen address for the mock service.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LineDelay is the simulated time spent per streamed line.
func (c ServerConfig) LineDelay() time.Duration {
	if c.LineDelayMS < 0 {
		return 0
	}
	return time.Duration(c.LineDelayMS) * time.Millisecond
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values of [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
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
