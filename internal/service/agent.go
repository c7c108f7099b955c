package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/moveinsync/movi/internal/adapter/otel"
	"github.com/moveinsync/movi/internal/config"
	"github.com/moveinsync/movi/internal/domain/chat"
	"github.com/moveinsync/movi/internal/logger"
	"github.com/moveinsync/movi/internal/port/broadcast"
	"github.com/moveinsync/movi/internal/port/llm"
)

// Fallback messages for upstream failures, surfaced in-turn instead of an
// HTTP error so the conversation keeps flowing.
const (
	modelUnreachableMessage = "I ran into an issue reaching my language model, but I'm still here. " +
		"Please try again in a moment."

	visionUnreachableMessage = "I couldn't analyze the attached image right now. " +
		"Please try again in a moment, or describe what you see."

	consequenceCheckFailedMessage = "I couldn't verify the consequences of that action, so I haven't made any changes. " +
		"Please try again in a moment."
)

// Agent is the conversation turn dispatcher: it feeds history and tool
// schemas to the model, routes tool calls through the risk classifier and
// confirmation gate, and formats results for speech.
type Agent struct {
	sessions    *SessionManager
	executor    Executor
	evaluator   *ConsequenceEvaluator
	model       llm.Client
	vision      llm.VisionClient
	specs       []llm.ToolSpec
	broadcaster broadcast.Broadcaster
	metrics     *otel.Metrics
	cfg         config.Session
	logger      *slog.Logger
	now         func() time.Time
}

// NewAgent wires the dispatcher. The executor is normally the cached
// executor over the registry; tests substitute fakes.
func NewAgent(
	sessions *SessionManager,
	executor Executor,
	evaluator *ConsequenceEvaluator,
	model llm.Client,
	vision llm.VisionClient,
	registry *Registry,
	broadcaster broadcast.Broadcaster,
	metrics *otel.Metrics,
	cfg config.Session,
	log *slog.Logger,
) *Agent {
	return &Agent{
		sessions:    sessions,
		executor:    executor,
		evaluator:   evaluator,
		model:       model,
		vision:      vision,
		specs:       registry.Specs(),
		broadcaster: broadcaster,
		metrics:     metrics,
		cfg:         cfg,
		logger:      log,
		now:         time.Now,
	}
}

// Image is an optional screenshot attached to a turn.
type Image struct {
	Data     []byte
	MimeType string
}

// HandleTurn processes one chat turn for the conversation tied to page.
// It blocks while a previous turn for the same session is still running.
func (a *Agent) HandleTurn(ctx context.Context, page, message string, image *Image) (string, error) {
	sessionID := sessionIDForPage(page)
	ctx = logger.WithSessionID(ctx, sessionID)

	session, release, err := a.sessions.Acquire(ctx, sessionID, page)
	if err != nil {
		return "", fmt.Errorf("acquire session %s: %w", sessionID, err)
	}
	defer release()

	ctx, span := otel.StartTurnSpan(ctx, sessionID, page)
	defer span.End()
	start := a.now()
	a.metrics.TurnsStarted.Add(ctx, 1)
	defer func() {
		a.metrics.TurnDuration.Record(ctx, a.now().Sub(start).Seconds())
	}()

	reply := a.runTurn(ctx, session, message, image)
	capHistory(session, a.cfg.MaxHistory)
	return reply, nil
}

func sessionIDForPage(page string) string {
	if page == "" {
		page = "unknown"
	}
	return "session_" + page
}

// runTurn executes the turn against an acquired session. Failures surface
// as in-turn natural-language messages; the session is always left
// consistent.
func (a *Agent) runTurn(ctx context.Context, session *chat.Session, message string, image *Image) string {
	session.Messages = append(session.Messages, chat.Message{Role: chat.RoleUser, Content: message})

	// A pending confirmation consumes the message before anything else.
	if session.Pending != nil {
		return a.resolvePending(ctx, session, message)
	}

	// Vision pre-step: summarize the screenshot and inject the summary as
	// auxiliary context for the model.
	if image != nil && len(image.Data) > 0 {
		summary, err := a.vision.DescribeImage(ctx, llm.VisionRequest{
			ImageB64:    base64.StdEncoding.EncodeToString(image.Data),
			MimeType:    image.MimeType,
			Page:        session.Page,
			UserMessage: message,
		})
		if err != nil {
			a.logger.Error("vision analysis failed", "session_id", session.ID, "error", err)
			return a.respond(session, visionUnreachableMessage)
		}
		session.Messages = append(session.Messages, chat.Message{
			Role:    chat.RoleSystem,
			Content: "📷 Image Analysis:\n" + summary,
		})
	}

	completion, err := a.complete(ctx, session)
	if err != nil {
		a.logger.Error("model completion failed", "session_id", session.ID, "error", err)
		return a.respond(session, modelUnreachableMessage)
	}

	if len(completion.ToolCalls) == 0 {
		return a.respond(session, completion.Content)
	}

	// One tool call per turn; extras are dropped like any other model
	// output we do not act on.
	call := completion.ToolCalls[0]
	if len(completion.ToolCalls) > 1 {
		a.logger.Warn("model requested multiple tool calls, executing first only",
			"session_id", session.ID, "count", len(completion.ToolCalls))
	}
	if call.ID == "" {
		call.ID = uuid.NewString()
	}

	session.Messages = append(session.Messages, chat.Message{
		Role:      chat.RoleAssistant,
		Content:   completion.Content,
		ToolCalls: []chat.ToolCall{call},
	})

	if ClassifyTool(call.Name) == HighRisk {
		return a.dispatchHighRisk(ctx, session, call)
	}
	return a.dispatchSafe(ctx, session, call)
}

// dispatchSafe executes the call immediately, then feeds the formatted
// result back to the model for a final natural-language answer. If that
// round-trip fails the formatted tool output is the reply.
func (a *Agent) dispatchSafe(ctx context.Context, session *chat.Session, call chat.ToolCall) string {
	output, err := a.executeCall(ctx, call)
	if err != nil {
		a.logger.Warn("tool call failed", "session_id", session.ID, "tool", call.Name, "error", err)
		reply := toolErrorMessage(call.Name, err)
		session.Messages = append(session.Messages, chat.Message{
			Role: chat.RoleTool, Content: "Error: " + err.Error(), ToolCallID: call.ID,
		})
		return a.respond(session, reply)
	}

	formatted := formatToolOutput(call.Name, output)
	session.Messages = append(session.Messages, chat.Message{
		Role: chat.RoleTool, Content: formatted, ToolCallID: call.ID,
	})

	completion, err := a.complete(ctx, session)
	if err != nil || completion.Content == "" || len(completion.ToolCalls) > 0 {
		// The tool result stands on its own when the follow-up answer
		// is unavailable.
		if err != nil {
			a.logger.Warn("follow-up completion failed, returning tool output",
				"session_id", session.ID, "tool", call.Name, "error", err)
		}
		return a.respond(session, formatted)
	}
	return a.respond(session, completion.Content)
}

// dispatchHighRisk evaluates consequences and either executes immediately
// (no consequences) or parks the call in the confirmation gate.
func (a *Agent) dispatchHighRisk(ctx context.Context, session *chat.Session, call chat.ToolCall) string {
	report, err := a.evaluator.Evaluate(ctx, call)
	if err != nil {
		a.logger.Error("consequence evaluation failed",
			"session_id", session.ID, "tool", call.Name, "error", err)
		session.Messages = append(session.Messages, chat.Message{
			Role: chat.RoleTool, Content: "Error: " + err.Error(), ToolCallID: call.ID,
		})
		return a.respond(session, consequenceCheckFailedMessage)
	}

	if !report.NeedsConfirmation {
		return a.dispatchSafe(ctx, session, call)
	}

	session.Pending = &chat.PendingConfirmation{
		Call:      call,
		Report:    report,
		CreatedAt: a.now(),
	}
	a.metrics.ConfirmationsAsked.Add(ctx, 1)
	a.broadcaster.BroadcastEvent(ctx, broadcast.EventConfirmation, broadcast.ConfirmationEvent{
		SessionID: session.ID,
		Tool:      call.Name,
		Warnings:  report.Warnings,
	})
	a.logger.Info("high-risk action parked for confirmation",
		"session_id", session.ID, "tool", call.Name, "call_id", call.ID)

	session.Messages = append(session.Messages, chat.Message{
		Role: chat.RoleTool, Content: "⏸️ Action paused pending confirmation. No changes made yet.", ToolCallID: call.ID,
	})
	return a.respond(session, confirmationPrompt(report))
}

// resolvePending resolves the parked call against the user's reply:
// affirmative executes exactly the parked call, negative discards it,
// anything else re-prompts without consuming it.
func (a *Agent) resolvePending(ctx context.Context, session *chat.Session, message string) string {
	pending := session.Pending

	if a.cfg.ConfirmationTTL > 0 && a.now().Sub(pending.CreatedAt) > a.cfg.ConfirmationTTL {
		session.Pending = nil
		a.logger.Info("pending confirmation expired",
			"session_id", session.ID, "tool", pending.Call.Name)
		return a.respond(session, expiredMessage)
	}

	switch classifyReply(message) {
	case replyAffirmative:
		session.Pending = nil
		a.metrics.ConfirmationsYes.Add(ctx, 1)
		output, err := a.executeCall(ctx, pending.Call)
		if err != nil {
			a.logger.Warn("confirmed action failed",
				"session_id", session.ID, "tool", pending.Call.Name, "error", err)
			session.Messages = append(session.Messages, chat.Message{
				Role: chat.RoleTool, Content: "Error: " + err.Error(), ToolCallID: pending.Call.ID,
			})
			return a.respond(session, "❌ Error executing action: "+err.Error())
		}
		session.Messages = append(session.Messages, chat.Message{
			Role: chat.RoleTool, Content: output, ToolCallID: pending.Call.ID,
		})
		a.logger.Info("confirmed action executed",
			"session_id", session.ID, "tool", pending.Call.Name, "call_id", pending.Call.ID)
		return a.respond(session, "✅ Action completed\n\n"+output)

	case replyNegative:
		session.Pending = nil
		a.metrics.ConfirmationsNo.Add(ctx, 1)
		a.logger.Info("pending action cancelled",
			"session_id", session.ID, "tool", pending.Call.Name)
		return a.respond(session, cancelledMessage)

	default:
		return a.respond(session, clarifyMessage)
	}
}

// executeCall runs one tool call with its own span and metric.
func (a *Agent) executeCall(ctx context.Context, call chat.ToolCall) (string, error) {
	ctx, span := otel.StartToolCallSpan(ctx, call.ID, call.Name)
	defer span.End()
	a.metrics.ToolCalls.Add(ctx, 1)

	output, err := a.executor.Execute(ctx, call)
	if err != nil {
		span.SetAttributes(attribute.Bool("toolcall.failed", true))
	}
	return output, err
}

func (a *Agent) complete(ctx context.Context, session *chat.Session) (*llm.Completion, error) {
	messages := make([]chat.Message, 0, len(session.Messages)+1)
	messages = append(messages, chat.Message{
		Role:    chat.RoleSystem,
		Content: systemPrompt(session.Page),
	})
	messages = append(messages, session.Messages...)

	return a.model.Complete(ctx, llm.CompletionRequest{
		Messages: messages,
		Tools:    a.specs,
	})
}

// respond appends the assistant reply to the history and returns it.
func (a *Agent) respond(session *chat.Session, reply string) string {
	session.Messages = append(session.Messages, chat.Message{Role: chat.RoleAssistant, Content: reply})
	return reply
}

func toolErrorMessage(toolName string, err error) string {
	return fmt.Sprintf("I couldn't complete '%s': %s.", toolName, err.Error())
}
