// Package llm defines the language-model port (interface).
package llm

import (
	"context"

	"github.com/moveinsync/movi/internal/domain/chat"
)

// ToolSpec describes one callable tool in the wire format the model expects.
type ToolSpec struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// CompletionRequest is a single chat-completion call.
type CompletionRequest struct {
	Messages    []chat.Message
	Tools       []ToolSpec
	Temperature float64
	MaxTokens   int
}

// Completion is the model's reply: either assistant text or tool calls.
type Completion struct {
	Content   string
	ToolCalls []chat.ToolCall
}

// Client is the port interface for chat-completion models.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
}

// VisionRequest is one screenshot analysis call. Page selects the
// screen-specific prompt; UserMessage is the text that accompanied the image.
type VisionRequest struct {
	ImageB64    string
	MimeType    string
	Page        string
	UserMessage string
}

// VisionClient describes an image in the context of a given screen.
type VisionClient interface {
	DescribeImage(ctx context.Context, req VisionRequest) (string, error)
}
