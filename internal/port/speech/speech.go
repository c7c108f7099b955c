// Package speech defines the speech-to-text and text-to-speech ports.
package speech

import "context"

// Transcriber converts recorded audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, contentType string) (string, error)
}

// Synthesizer converts text into spoken audio.
// The returned bytes are an encoded audio stream (MPEG for the default voice).
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}
