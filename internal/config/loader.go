package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "movi.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// The YAML file is optional; a missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is validated by caller
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "MOVI_PORT")
	setString(&cfg.Server.CORSOrigin, "MOVI_CORS_ORIGIN")
	setString(&cfg.SQLite.Path, "MOVI_DB_PATH")

	setString(&cfg.OpenAI.BaseURL, "OPENAI_BASE_URL")
	setString(&cfg.OpenAI.APIKey, "OPENAI_API_KEY")
	setString(&cfg.OpenAI.Model, "OPENAI_MODEL")
	setString(&cfg.OpenAI.VisionModel, "OPENAI_VISION_MODEL")
	setFloat64(&cfg.OpenAI.Temperature, "OPENAI_TEMPERATURE")
	setInt(&cfg.OpenAI.MaxTokens, "OPENAI_MAX_TOKENS")
	setDuration(&cfg.OpenAI.Timeout, "OPENAI_TIMEOUT")

	setString(&cfg.Deepgram.BaseURL, "DEEPGRAM_BASE_URL")
	setString(&cfg.Deepgram.APIKey, "DEEPGRAM_API_KEY")
	setString(&cfg.Deepgram.Model, "DEEPGRAM_MODEL")

	setString(&cfg.ElevenLabs.BaseURL, "ELEVENLABS_BASE_URL")
	setString(&cfg.ElevenLabs.APIKey, "ELEVENLABS_API_KEY")
	setString(&cfg.ElevenLabs.VoiceID, "ELEVENLABS_VOICE_ID")
	setString(&cfg.ElevenLabs.ModelID, "ELEVENLABS_MODEL_ID")

	setString(&cfg.Logging.Level, "MOVI_LOG_LEVEL")
	setString(&cfg.Logging.Service, "MOVI_LOG_SERVICE")
	setBool(&cfg.Logging.Async, "MOVI_LOG_ASYNC")

	setInt(&cfg.Breaker.MaxFailures, "MOVI_BREAKER_MAX_FAILURES")
	setDuration(&cfg.Breaker.Timeout, "MOVI_BREAKER_TIMEOUT")

	setDuration(&cfg.Session.TTL, "MOVI_SESSION_TTL")
	setDuration(&cfg.Session.ConfirmationTTL, "MOVI_CONFIRMATION_TTL")
	setDuration(&cfg.Session.CleanupInterval, "MOVI_SESSION_CLEANUP_INTERVAL")
	setInt(&cfg.Session.MaxHistory, "MOVI_SESSION_MAX_HISTORY")

	setInt64(&cfg.Cache.MaxSizeMB, "MOVI_CACHE_SIZE_MB")
	setDuration(&cfg.Cache.TTL, "MOVI_CACHE_TTL")

	setBool(&cfg.Telemetry.Enabled, "MOVI_OTEL_ENABLED")
	setString(&cfg.Telemetry.OTLPEndpoint, "MOVI_OTEL_ENDPOINT")
}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if cfg.SQLite.Path == "" {
		return errors.New("sqlite.path is required")
	}
	if cfg.Breaker.MaxFailures < 1 {
		return errors.New("breaker.max_failures must be >= 1")
	}
	if cfg.Session.TTL <= 0 {
		return errors.New("session.ttl must be positive")
	}
	if cfg.Session.ConfirmationTTL <= 0 {
		return errors.New("session.confirmation_ttl must be positive")
	}
	if cfg.Session.MaxHistory < 2 {
		return errors.New("session.max_history must be >= 2")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
