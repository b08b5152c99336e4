package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./midias.db" {
			t.Errorf("expected database path ./midias.db, got %s", config.Database.Path)
		}
		if config.Server.Port != 8000 {
			t.Errorf("expected server port 8000, got %d", config.Server.Port)
		}
		if config.Auth.Mode != AuthModeSession {
			t.Errorf("expected auth mode %s, got %s", AuthModeSession, config.Auth.Mode)
		}
		if config.Auth.SessionTTL != 8*time.Hour {
			t.Errorf("expected session ttl 8h, got %s", config.Auth.SessionTTL)
		}
		if len(config.Server.AllowedOrigins) != 2 {
			t.Errorf("expected 2 allowed origins, got %v", config.Server.AllowedOrigins)
		}
		if err := config.Validate(); err != nil {
			t.Errorf("default config should be valid: %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

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

	t.Run("LoadConfig keeps defaults for missing keys", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[database]
path = "/custom/path.db"

[server]
port = 9090

[auth]
mode = "api_key"
api_key = "k3y"
session_ttl = "30m"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}
		if config.Server.Port != 9090 {
			t.Errorf("expected server port 9090, got %d", config.Server.Port)
		}
		if config.Server.Host != "127.0.0.1" {
			t.Errorf("expected default host to survive, got %s", config.Server.Host)
		}
		if config.Auth.Mode != AuthModeAPIKey || config.Auth.APIKey != "k3y" {
			t.Errorf("unexpected auth config: %+v", config.Auth)
		}
		if config.Auth.SessionTTL != 30*time.Minute {
			t.Errorf("expected session ttl 30m, got %s", config.Auth.SessionTTL)
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		config := DefaultConfig()
		err := config.ApplyEnv(envMap(map[string]string{
			"DB_PATH":        "/data/app.db",
			"SCHEMA_PATH":    "db/schema.sql",
			"APP_SECRET":     "s3cret",
			"ADMIN_USERNAME": "root",
			"ADMIN_TOKEN":    "hunter2",
			"API_KEY":        "abc",
			"CORS_ORIGINS":   "https://a.example, https://b.example,,",
			"PORT":           "8081",
			"LOG_LEVEL":      "",
		}))
		if err != nil {
			t.Fatalf("ApplyEnv() error = %v", err)
		}

		if config.Database.Path != "/data/app.db" {
			t.Errorf("DB_PATH not applied: %s", config.Database.Path)
		}
		if config.Database.SchemaPath != "db/schema.sql" {
			t.Errorf("SCHEMA_PATH not applied: %s", config.Database.SchemaPath)
		}
		if config.Auth.Secret != "s3cret" || config.Auth.APIKey != "abc" {
			t.Errorf("secrets not applied: %+v", config.Auth)
		}
		if config.Auth.AdminUsername != "root" || config.Auth.AdminSecret != "hunter2" {
			t.Errorf("admin settings not applied: %+v", config.Auth)
		}
		if config.Server.Port != 8081 {
			t.Errorf("PORT not applied: %d", config.Server.Port)
		}
		if len(config.Server.AllowedOrigins) != 2 || config.Server.AllowedOrigins[1] != "https://b.example" {
			t.Errorf("CORS_ORIGINS not applied: %v", config.Server.AllowedOrigins)
		}
		if config.Log.Level != "info" {
			t.Errorf("empty LOG_LEVEL should keep the default, got %s", config.Log.Level)
		}
	})

	t.Run("ApplyEnv rejects a bad port", func(t *testing.T) {
		config := DefaultConfig()
		err := config.ApplyEnv(envMap(map[string]string{"PORT": "eighty"}))
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("Validate", func(t *testing.T) {
		tests := []struct {
			name   string
			mutate func(c *Config)
		}{
			{name: "unknown auth mode", mutate: func(c *Config) { c.Auth.Mode = "oauth" }},
			{name: "empty secret", mutate: func(c *Config) { c.Auth.Secret = "" }},
			{name: "zero ttl", mutate: func(c *Config) { c.Auth.SessionTTL = 0 }},
			{name: "empty database path", mutate: func(c *Config) { c.Database.Path = "" }},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				config := DefaultConfig()
				tt.mutate(config)
				if err := config.Validate(); !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got %v", err)
				}
			})
		}
	})
}
