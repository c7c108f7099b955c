// Package elevenlabs provides an HTTP client for the ElevenLabs
// text-to-speech API.
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/moveinsync/movi/internal/config"
	"github.com/moveinsync/movi/internal/domain"
	"github.com/moveinsync/movi/internal/resilience"
)

// Client talks to the ElevenLabs text-to-speech endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	voiceID    string
	modelID    string
	httpClient *http.Client
	breaker    *resilience.Breaker
}

// NewClient creates a synthesis client from config.
func NewClient(cfg config.ElevenLabs) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		voiceID: cfg.VoiceID,
		modelID: cfg.ModelID,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// SetBreaker attaches a circuit breaker to all outgoing HTTP calls.
func (c *Client) SetBreaker(b *resilience.Breaker) {
	c.breaker = b
}

// Synthesize converts text into MPEG audio using the configured voice.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	payload := map[string]any{
		"text":     text,
		"model_id": c.modelID,
		"voice_settings": map[string]any{
			"stability":         0.5,
			"similarity_boost":  0.75,
			"style":             0.0,
			"use_speaker_boost": true,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal tts request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/text-to-speech/%s", c.baseURL, c.voiceID)

	var audio []byte
	call := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("xi-api-key", c.apiKey)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "audio/mpeg")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("http request: %w: %v", domain.ErrUpstream, err)
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w: %v", domain.ErrUpstream, err)
		}
		if resp.StatusCode >= 400 {
			return fmt.Errorf("elevenlabs API error %d: %s: %w", resp.StatusCode, string(data), domain.ErrUpstream)
		}

		audio = data
		return nil
	}

	if c.breaker != nil {
		if err := c.breaker.Execute(ctx, call); err != nil {
			return nil, fmt.Errorf("synthesize: %w", err)
		}
		return audio, nil
	}
	if err := call(); err != nil {
		return nil, fmt.Errorf("synthesize: %w", err)
	}
	return audio, nil
}
