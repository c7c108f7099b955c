// Package config provides hierarchical configuration loading for Movi.
// Precedence: defaults < YAML file < environment variables.
package config

import "time"

// Config holds all runtime configuration for the Movi backend.
type Config struct {
	Server     Server     `yaml:"server"`
	SQLite     SQLite     `yaml:"sqlite"`
	OpenAI     OpenAI     `yaml:"openai"`
	Deepgram   Deepgram   `yaml:"deepgram"`
	ElevenLabs ElevenLabs `yaml:"elevenlabs"`
	Logging    Logging    `yaml:"logging"`
	Breaker    Breaker    `yaml:"breaker"`
	Session    Session    `yaml:"session"`
	Cache      Cache      `yaml:"cache"`
	Telemetry  Telemetry  `yaml:"telemetry"`
}

// Server holds HTTP server configuration.
type Server struct {
	Port       string `yaml:"port"`
	CORSOrigin string `yaml:"cors_origin"`
}

// SQLite holds the database file configuration.
type SQLite struct {
	Path string `yaml:"path"`
}

// OpenAI holds configuration for the chat-completions and vision models.
type OpenAI struct {
	BaseURL     string        `yaml:"base_url"`
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"`
	VisionModel string        `yaml:"vision_model"`
	Temperature float64       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Deepgram holds speech-to-text configuration.
type Deepgram struct {
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

// ElevenLabs holds text-to-speech configuration.
type ElevenLabs struct {
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"`
	VoiceID string        `yaml:"voice_id"`
	ModelID string        `yaml:"model_id"`
	Timeout time.Duration `yaml:"timeout"`
}

// Logging holds structured logging configuration.
type Logging struct {
	Level   string `yaml:"level"`
	Service string `yaml:"service"`
	Async   bool   `yaml:"async"`
}

// Breaker holds circuit breaker configuration for outbound HTTP clients.
type Breaker struct {
	MaxFailures int           `yaml:"max_failures"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Session holds conversation session configuration.
type Session struct {
	TTL             time.Duration `yaml:"ttl"`
	ConfirmationTTL time.Duration `yaml:"confirmation_ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
	MaxHistory      int           `yaml:"max_history"`
}

// Cache holds read-tool result cache configuration.
type Cache struct {
	MaxSizeMB int64         `yaml:"max_size_mb"`
	TTL       time.Duration `yaml:"ttl"`
}

// Telemetry holds OpenTelemetry exporter configuration.
type Telemetry struct {
	Enabled      bool   `yaml:"enabled"`
	OTLPEndpoint string `yaml:"otlp_endpoint"`
}

// Defaults returns a Config with sensible default values for local development.
func Defaults() Config {
	return Config{
		Server: Server{
			Port:       "8000",
			CORSOrigin: "http://localhost:5173",
		},
		SQLite: SQLite{
			Path: "movi_transport.db",
		},
		OpenAI: OpenAI{
			BaseURL:     "https://api.openai.com/v1",
			Model:       "gpt-4-turbo-preview",
			VisionModel: "gpt-4o",
			Temperature: 0,
			MaxTokens:   1024,
			Timeout:     120 * time.Second,
		},
		Deepgram: Deepgram{
			BaseURL: "https://api.deepgram.com",
			Model:   "nova-2",
			Timeout: 30 * time.Second,
		},
		ElevenLabs: ElevenLabs{
			BaseURL: "https://api.elevenlabs.io",
			VoiceID: "21m00Tcm4TlvDq8ikWAM",
			ModelID: "eleven_turbo_v2",
			Timeout: 30 * time.Second,
		},
		Logging: Logging{
			Level:   "info",
			Service: "movi-backend",
		},
		Breaker: Breaker{
			MaxFailures: 5,
			Timeout:     30 * time.Second,
		},
		Session: Session{
			TTL:             time.Hour,
			ConfirmationTTL: 10 * time.Minute,
			CleanupInterval: 5 * time.Minute,
			MaxHistory:      40,
		},
		Cache: Cache{
			MaxSizeMB: 16,
			TTL:       15 * time.Second,
		},
		Telemetry: Telemetry{
			Enabled:      false,
			OTLPEndpoint: "localhost:4317",
		},
	}
}
