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

		if config.Database.Path != "./zipx.db" {
			t.Errorf("expected database path ./zipx.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 8080 {
			t.Errorf("expected server port 8080, got %d", config.Server.Port)
		}

		if config.Service.BaseURL != "http://127.0.0.1:8080" {
			t.Errorf("expected service base URL http://127.0.0.1:8080, got %s", config.Service.BaseURL)
		}

		if config.Extract.Destination != "./extracted_files" {
			t.Errorf("expected destination ./extracted_files, got %s", config.Extract.Destination)
		}

		if config.UI.SettleDelay() != 600*time.Millisecond {
			t.Errorf("expected settle delay 600ms, got %v", config.UI.SettleDelay())
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
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
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[service]
base_url = "https://extract.example.com"
token = "secret"
timeout_seconds = 5

[ui]
settle_delay_ms = 0

[server]
port = 9090
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Service.BaseURL != "https://extract.example.com" {
			t.Errorf("expected base URL https://extract.example.com, got %s", config.Service.BaseURL)
		}
		if config.Service.Token != "secret" {
			t.Errorf("expected token secret, got %s", config.Service.Token)
		}
		if config.Service.Timeout() != 5*time.Second {
			t.Errorf("expected timeout 5s, got %v", config.Service.Timeout())
		}
		if config.UI.SettleDelay() != 0 {
			t.Errorf("expected zero settle delay, got %v", config.UI.SettleDelay())
		}
		if config.Server.Port != 9090 {
			t.Errorf("expected server port 9090, got %d", config.Server.Port)
		}
		if config.Database.Path != "./zipx.db" {
			t.Errorf("expected unset keys to keep defaults, got database path %s", config.Database.Path)
		}
	})

	t.Run("LoadConfig With Invalid TOML", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[service\nbase_url = "), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("Timeout Falls Back When Unset", func(t *testing.T) {
		var c ServiceConfig
		if c.Timeout() != 30*time.Second {
			t.Errorf("expected 30s fallback, got %v", c.Timeout())
		}
	})

	t.Run("Server Addr", func(t *testing.T) {
		c := ServerConfig{Host: "127.0.0.1", Port: 9999}
		if c.Addr() != "127.0.0.1:9999" {
			t.Errorf("expected 127.0.0.1:9999, got %s", c.Addr())
		}
	})
}
