package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/moveinsync/movi/internal/config"
	"github.com/moveinsync/movi/internal/domain/chat"
)

func testSessionConfig() config.Session {
	return config.Session{
		TTL:             time.Hour,
		ConfirmationTTL: 10 * time.Minute,
		CleanupInterval: time.Minute,
		MaxHistory:      40,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSessionManagerCreateAndReuse(t *testing.T) {
	t.Parallel()
	m := NewSessionManager(testSessionConfig(), discardLogger())
	ctx := context.Background()

	s1, release1, err := m.Acquire(ctx, "session_busDashboard", "busDashboard")
	if err != nil {
		t.Fatal(err)
	}
	s1.Messages = append(s1.Messages, chat.Message{Role: chat.RoleUser, Content: "hi"})
	release1()

	s2, release2, err := m.Acquire(ctx, "session_busDashboard", "busDashboard")
	if err != nil {
		t.Fatal(err)
	}
	defer release2()

	if s2 != s1 {
		t.Error("expected the same session object on re-acquire")
	}
	if len(s2.Messages) != 1 {
		t.Errorf("expected history to persist, got %d messages", len(s2.Messages))
	}
	if m.Len() != 1 {
		t.Errorf("expected 1 session, got %d", m.Len())
	}
}

func TestSessionManagerSerializesTurns(t *testing.T) {
	t.Parallel()
	m := NewSessionManager(testSessionConfig(), discardLogger())

	_, release, err := m.Acquire(context.Background(), "session_a", "a")
	if err != nil {
		t.Fatal(err)
	}

	// A second acquire for the same session must block until release.
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, _, err := m.Acquire(ctx, "session_a", "a"); err == nil {
		t.Fatal("expected second acquire to block and time out")
	}

	// A different session is independent.
	_, releaseB, err := m.Acquire(context.Background(), "session_b", "b")
	if err != nil {
		t.Fatalf("independent session blocked: %v", err)
	}
	releaseB()

	release()
	_, release2, err := m.Acquire(context.Background(), "session_a", "a")
	if err != nil {
		t.Fatalf("acquire after release failed: %v", err)
	}
	release2()
}

func TestSessionManagerSweepExpiresIdle(t *testing.T) {
	t.Parallel()
	m := NewSessionManager(testSessionConfig(), discardLogger())

	_, release, err := m.Acquire(context.Background(), "session_old", "old")
	if err != nil {
		t.Fatal(err)
	}
	release()

	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	m.sweep()

	if m.Len() != 0 {
		t.Errorf("expected idle session swept, got %d sessions", m.Len())
	}
}

func TestSessionManagerSweepSkipsInFlight(t *testing.T) {
	t.Parallel()
	m := NewSessionManager(testSessionConfig(), discardLogger())

	_, release, err := m.Acquire(context.Background(), "session_busy", "busy")
	if err != nil {
		t.Fatal(err)
	}
	defer release()

	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	m.sweep()

	if m.Len() != 1 {
		t.Error("session with an in-flight turn must survive the sweep")
	}
}

func TestCapHistory(t *testing.T) {
	t.Parallel()

	s := &chat.Session{}
	for i := 0; i < 50; i++ {
		s.Messages = append(s.Messages, chat.Message{Role: chat.RoleUser, Content: "m"})
	}
	capHistory(s, 40)
	if len(s.Messages) != 40 {
		t.Errorf("expected 40 messages, got %d", len(s.Messages))
	}

	capHistory(s, 0) // no cap
	if len(s.Messages) != 40 {
		t.Errorf("cap of 0 must not truncate, got %d", len(s.Messages))
	}
}

func TestCapHistorySkipsOrphanedToolResults(t *testing.T) {
	t.Parallel()

	// Build a history where the cut would land on the tool results of an
	// assistant tool call that gets trimmed away.
	s := &chat.Session{}
	for i := 0; i < 4; i++ {
		s.Messages = append(s.Messages,
			chat.Message{Role: chat.RoleUser, Content: "status?"},
			chat.Message{Role: chat.RoleAssistant, ToolCalls: []chat.ToolCall{{ID: "call", Name: "get_trip_status"}}},
			chat.Message{Role: chat.RoleTool, ToolCallID: "call", Content: "ok"},
			chat.Message{Role: chat.RoleAssistant, Content: "All good."},
		)
	}

	capHistory(s, 6) // cut lands on a RoleTool message
	if len(s.Messages) != 5 {
		t.Fatalf("expected 5 messages after trim, got %d", len(s.Messages))
	}
	if s.Messages[0].Role == chat.RoleTool {
		t.Error("history must not start with a tool result")
	}
	if s.Messages[0].Role != chat.RoleAssistant || s.Messages[0].Content != "All good." {
		t.Errorf("unexpected head message: %+v", s.Messages[0])
	}
}
