package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Server.Port != "8000" {
		t.Errorf("expected port 8000, got %s", cfg.Server.Port)
	}
	if cfg.SQLite.Path != "movi_transport.db" {
		t.Errorf("expected default db path, got %s", cfg.SQLite.Path)
	}
	if cfg.OpenAI.VisionModel != "gpt-4o" {
		t.Errorf("expected vision model gpt-4o, got %s", cfg.OpenAI.VisionModel)
	}
	if cfg.Session.TTL != time.Hour {
		t.Errorf("expected session ttl 1h, got %v", cfg.Session.TTL)
	}
	if cfg.Breaker.Timeout != 30*time.Second {
		t.Errorf("expected breaker timeout 30s, got %v", cfg.Breaker.Timeout)
	}
}

func TestLoadYAMLOverride(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "test.yaml")

	content := `
server:
  port: "9090"
  cors_origin: "http://example.com"
sqlite:
  path: "/tmp/movi-test.db"
openai:
  model: "gpt-4o-mini"
logging:
  level: "debug"
session:
  confirmation_ttl: 2m
`
	if err := os.WriteFile(yamlPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Defaults()
	if err := loadYAML(&cfg, yamlPath); err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Server.CORSOrigin != "http://example.com" {
		t.Errorf("expected cors http://example.com, got %s", cfg.Server.CORSOrigin)
	}
	if cfg.SQLite.Path != "/tmp/movi-test.db" {
		t.Errorf("expected overridden db path, got %s", cfg.SQLite.Path)
	}
	if cfg.OpenAI.Model != "gpt-4o-mini" {
		t.Errorf("expected model gpt-4o-mini, got %s", cfg.OpenAI.Model)
	}
	if cfg.Session.ConfirmationTTL != 2*time.Minute {
		t.Errorf("expected confirmation ttl 2m, got %v", cfg.Session.ConfirmationTTL)
	}
	// Unchanged fields keep defaults
	if cfg.Deepgram.Model != "nova-2" {
		t.Errorf("expected default deepgram model, got %s", cfg.Deepgram.Model)
	}
}

func TestLoadYAMLMissing(t *testing.T) {
	cfg := Defaults()
	err := loadYAML(&cfg, "/nonexistent/path.yaml")
	if err != nil {
		t.Errorf("missing YAML should not error, got %v", err)
	}
}

func TestEnvOverride(t *testing.T) {
	cfg := Defaults()

	t.Setenv("MOVI_PORT", "7070")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("MOVI_DB_PATH", "/data/movi.db")
	t.Setenv("MOVI_LOG_LEVEL", "warn")
	t.Setenv("MOVI_CONFIRMATION_TTL", "90s")

	loadEnv(&cfg)

	if cfg.Server.Port != "7070" {
		t.Errorf("expected port 7070, got %s", cfg.Server.Port)
	}
	if cfg.OpenAI.APIKey != "sk-test" {
		t.Errorf("expected api key from env, got %s", cfg.OpenAI.APIKey)
	}
	if cfg.SQLite.Path != "/data/movi.db" {
		t.Errorf("expected db path from env, got %s", cfg.SQLite.Path)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected log level warn, got %s", cfg.Logging.Level)
	}
	if cfg.Session.ConfirmationTTL != 90*time.Second {
		t.Errorf("expected confirmation ttl 90s, got %v", cfg.Session.ConfirmationTTL)
	}
}

func TestEnvIgnoresInvalidValues(t *testing.T) {
	cfg := Defaults()

	t.Setenv("MOVI_CONFIRMATION_TTL", "not-a-duration")
	t.Setenv("OPENAI_MAX_TOKENS", "many")

	loadEnv(&cfg)

	if cfg.Session.ConfirmationTTL != 10*time.Minute {
		t.Errorf("invalid duration should keep default, got %v", cfg.Session.ConfirmationTTL)
	}
	if cfg.OpenAI.MaxTokens != 1024 {
		t.Errorf("invalid int should keep default, got %d", cfg.OpenAI.MaxTokens)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(*Config) {}, false},
		{"empty port", func(c *Config) { c.Server.Port = "" }, true},
		{"empty db path", func(c *Config) { c.SQLite.Path = "" }, true},
		{"zero breaker failures", func(c *Config) { c.Breaker.MaxFailures = 0 }, true},
		{"zero session ttl", func(c *Config) { c.Session.TTL = 0 }, true},
		{"zero confirmation ttl", func(c *Config) { c.Session.ConfirmationTTL = 0 }, true},
		{"tiny history", func(c *Config) { c.Session.MaxHistory = 1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := validate(&cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
