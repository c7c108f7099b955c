// Package chat defines the conversation types shared by the agent core:
// message history, tool calls, consequence reports, and the per-session
// pending-confirmation state.
package chat

import "time"

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is one entry in a conversation history.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ToolCall identifies one requested tool invocation. ID is the model's
// correlation identifier, used to match the tool result back to the request.
type ToolCall struct {
	ID   string         `json:"id"`
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// ConsequenceReport is the outcome of evaluating a high-risk tool call
// before execution. Warnings is non-empty iff NeedsConfirmation is true.
type ConsequenceReport struct {
	NeedsConfirmation bool
	Warnings          []string
	Call              ToolCall
}

// PendingConfirmation parks a high-risk tool call until the user replies.
// A session holds at most one at a time.
type PendingConfirmation struct {
	Call      ToolCall
	Report    ConsequenceReport
	CreatedAt time.Time
}

// Session is the per-conversation aggregate. Messages and Pending persist
// across turns; the page hint and any attached image are turn-scoped
// arguments and are never stored here.
type Session struct {
	ID         string
	Page       string
	Messages   []Message
	Pending    *PendingConfirmation
	LastAccess time.Time
}
