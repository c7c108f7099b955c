// Package deepgram provides an HTTP client for the Deepgram prerecorded
// transcription API.
package deepgram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/moveinsync/movi/internal/config"
	"github.com/moveinsync/movi/internal/domain"
	"github.com/moveinsync/movi/internal/resilience"
)

// Client talks to the Deepgram listen endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	breaker    *resilience.Breaker
}

// NewClient creates a transcription client from config.
func NewClient(cfg config.Deepgram) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// SetBreaker attaches a circuit breaker to all outgoing HTTP calls.
func (c *Client) SetBreaker(b *resilience.Breaker) {
	c.breaker = b
}

type listenResponse struct {
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string `json:"transcript"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

// Transcribe sends recorded audio and returns the first-channel transcript.
// Smart formatting and numerals are on so spoken times and license plates
// come back in a form the agent can match against the fleet data.
func (c *Client) Transcribe(ctx context.Context, audio []byte, contentType string) (string, error) {
	if contentType == "" {
		contentType = "audio/webm"
	}

	params := url.Values{}
	params.Set("model", c.model)
	params.Set("smart_format", "true")
	params.Set("language", "en-US")
	params.Set("punctuate", "true")
	params.Set("numerals", "true")

	endpoint := c.baseURL + "/v1/listen?" + params.Encode()

	var transcript string
	call := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(audio))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Authorization", "Token "+c.apiKey)
		req.Header.Set("Content-Type", contentType)

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
			return fmt.Errorf("deepgram API error %d: %s: %w", resp.StatusCode, string(data), domain.ErrUpstream)
		}

		var parsed listenResponse
		if err := json.Unmarshal(data, &parsed); err != nil {
			return fmt.Errorf("unmarshal transcript: %w: %v", domain.ErrUpstream, err)
		}
		if len(parsed.Results.Channels) == 0 || len(parsed.Results.Channels[0].Alternatives) == 0 {
			return fmt.Errorf("transcript missing from response: %w", domain.ErrUpstream)
		}
		transcript = parsed.Results.Channels[0].Alternatives[0].Transcript
		return nil
	}

	if c.breaker != nil {
		if err := c.breaker.Execute(ctx, call); err != nil {
			return "", fmt.Errorf("transcribe: %w", err)
		}
		return transcript, nil
	}
	if err := call(); err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}
	return transcript, nil
}
