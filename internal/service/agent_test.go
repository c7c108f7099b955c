package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/moveinsync/movi/internal/adapter/otel"
	"github.com/moveinsync/movi/internal/domain/chat"
	"github.com/moveinsync/movi/internal/port/broadcast"
	"github.com/moveinsync/movi/internal/port/database"
	"github.com/moveinsync/movi/internal/port/llm"
)

// fakeModel replays scripted completions in order.
type fakeModel struct {
	mu        sync.Mutex
	responses []llm.Completion
	err       error
	requests  []llm.CompletionRequest
}

func (f *fakeModel) Complete(_ context.Context, req llm.CompletionRequest) (*llm.Completion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.responses) == 0 {
		return &llm.Completion{Content: "Anything else I can help with?"}, nil
	}
	next := f.responses[0]
	f.responses = f.responses[1:]
	return &next, nil
}

type fakeVision struct {
	summary string
	err     error
	calls   int
}

func (f *fakeVision) DescribeImage(_ context.Context, _ llm.VisionRequest) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.summary, nil
}

type agentFixture struct {
	agent       *Agent
	store       database.Store
	model       *fakeModel
	vision      *fakeVision
	broadcaster *fakeBroadcaster
	sessions    *SessionManager
}

func newAgentFixture(t *testing.T) *agentFixture {
	t.Helper()

	store := newSeededStore(t)
	broadcaster := &fakeBroadcaster{}
	registry := NewRegistry(store, broadcaster)
	model := &fakeModel{}
	vision := &fakeVision{summary: "The user is pointing at trip 'Bulk - 00:01'."}
	sessions := NewSessionManager(testSessionConfig(), discardLogger())

	metrics, err := otel.NewMetrics()
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}

	agent := NewAgent(
		sessions,
		NewCachedExecutor(registry, newFakeCache(), time.Minute, discardLogger()),
		NewConsequenceEvaluator(store),
		model, vision, registry, broadcaster, metrics,
		testSessionConfig(), discardLogger(),
	)
	return &agentFixture{
		agent:       agent,
		store:       store,
		model:       model,
		vision:      vision,
		broadcaster: broadcaster,
		sessions:    sessions,
	}
}

func (f *agentFixture) pending(t *testing.T, sessionID string) *chat.PendingConfirmation {
	t.Helper()
	f.sessions.mu.Lock()
	defer f.sessions.mu.Unlock()
	entry, ok := f.sessions.sessions[sessionID]
	if !ok {
		t.Fatalf("session %s not found", sessionID)
	}
	return entry.session.Pending
}

func toolCallCompletion(name string, args map[string]any) llm.Completion {
	return llm.Completion{ToolCalls: []chat.ToolCall{{ID: "call-1", Name: name, Args: args}}}
}

func TestHandleTurnDirectAnswer(t *testing.T) {
	f := newAgentFixture(t)
	f.model.responses = []llm.Completion{{Content: "Hello! How can I help with your fleet today?"}}

	reply, err := f.agent.HandleTurn(context.Background(), "busDashboard", "hi", nil)
	if err != nil {
		t.Fatal(err)
	}
	if reply != "Hello! How can I help with your fleet today?" {
		t.Errorf("unexpected reply: %q", reply)
	}
	if len(f.model.requests) != 1 {
		t.Fatalf("expected 1 completion call, got %d", len(f.model.requests))
	}
	// Tool schemas and the persona prompt ride along on every call.
	req := f.model.requests[0]
	if len(req.Tools) != 16 {
		t.Errorf("expected 16 tool schemas, got %d", len(req.Tools))
	}
	if req.Messages[0].Role != chat.RoleSystem || !strings.Contains(req.Messages[0].Content, "Page: busDashboard") {
		t.Error("expected leading system prompt with the page hint")
	}
}

func TestHandleTurnSafeToolWithFollowUp(t *testing.T) {
	f := newAgentFixture(t)
	f.model.responses = []llm.Completion{
		toolCallCompletion("get_trip_status", map[string]any{"trip_name": "Bulk - 00:01"}),
		{Content: "The Bulk trip is in progress and twenty five percent booked."},
	}

	reply, err := f.agent.HandleTurn(context.Background(), "busDashboard", "What's the status of Bulk - 00:01?", nil)
	if err != nil {
		t.Fatal(err)
	}
	if reply != "The Bulk trip is in progress and twenty five percent booked." {
		t.Errorf("unexpected reply: %q", reply)
	}
	if len(f.model.requests) != 2 {
		t.Fatalf("expected 2 completion calls, got %d", len(f.model.requests))
	}

	// The tool result fed back to the model is speech-formatted.
	second := f.model.requests[1]
	last := second.Messages[len(second.Messages)-1]
	if last.Role != chat.RoleTool || !strings.Contains(last.Content, "K A dash 0 1 dash A B dash 1 2 3 4") {
		t.Errorf("expected speakable tool message, got %+v", last)
	}
	if f.pending(t, "session_busDashboard") != nil {
		t.Error("safe tool must not create a pending confirmation")
	}
}

func TestHandleTurnSafeToolFallbackOnFollowUpFailure(t *testing.T) {
	f := newAgentFixture(t)
	f.model.responses = []llm.Completion{
		toolCallCompletion("get_trip_bookings", map[string]any{"trip_name": "Bulk - 00:01"}),
	}
	// Second completion returns another tool call, which cannot be a final
	// answer; the formatted tool output is used instead.
	f.model.responses = append(f.model.responses,
		toolCallCompletion("get_trip_bookings", map[string]any{"trip_name": "Bulk - 00:01"}))

	reply, err := f.agent.HandleTurn(context.Background(), "busDashboard", "bookings for bulk?", nil)
	if err != nil {
		t.Fatal(err)
	}
	if reply != "Trip 'Bulk - 00:01' is 25.0% booked." {
		t.Errorf("unexpected reply: %q", reply)
	}
}

func TestHandleTurnModelFailure(t *testing.T) {
	f := newAgentFixture(t)
	f.model.err = errors.New("connection refused")

	reply, err := f.agent.HandleTurn(context.Background(), "busDashboard", "hello", nil)
	if err != nil {
		t.Fatal(err)
	}
	if reply != modelUnreachableMessage {
		t.Errorf("unexpected reply: %q", reply)
	}
}

func TestHandleTurnUnknownTool(t *testing.T) {
	f := newAgentFixture(t)
	// Unknown names classify high-risk, and lacking an evaluation rule
	// they park for confirmation rather than executing.
	f.model.responses = []llm.Completion{
		toolCallCompletion("purge_fleet", map[string]any{}),
	}

	reply, err := f.agent.HandleTurn(context.Background(), "busDashboard", "purge everything", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(reply, "CONSEQUENCE WARNING") {
		t.Errorf("expected confirmation prompt, got %q", reply)
	}

	// Confirming surfaces the unknown-tool failure without executing anything.
	reply, err = f.agent.HandleTurn(context.Background(), "busDashboard", "yes", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(reply, "❌ Error executing action") {
		t.Errorf("expected execution error, got %q", reply)
	}
	if f.pending(t, "session_busDashboard") != nil {
		t.Error("pending must be cleared after resolution")
	}
}

func TestHighRiskWithBookingsAsksThenExecutesOnYes(t *testing.T) {
	f := newAgentFixture(t)
	f.model.responses = []llm.Completion{
		toolCallCompletion("remove_vehicle_from_trip", map[string]any{"trip_name": "Bulk - 00:01"}),
	}
	ctx := context.Background()

	reply, err := f.agent.HandleTurn(ctx, "busDashboard", "Remove the vehicle from Bulk - 00:01", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(reply, "25.0%") || !strings.Contains(reply, "CONSEQUENCE WARNING") {
		t.Errorf("expected warning mentioning the booking percentage, got %q", reply)
	}
	if f.pending(t, "session_busDashboard") == nil {
		t.Fatal("expected a pending confirmation")
	}

	// Vehicle untouched while awaiting confirmation.
	td, err := f.store.FindTripByName(ctx, "Bulk - 00:01")
	if err != nil {
		t.Fatal(err)
	}
	if td.Vehicle == nil {
		t.Fatal("vehicle must remain assigned until confirmed")
	}

	// Confirmation broadcast reached the dashboard.
	if len(f.broadcaster.events) != 1 || f.broadcaster.events[0] != broadcast.EventConfirmation {
		t.Errorf("expected one agent.confirmation broadcast, got %v", f.broadcaster.events)
	}

	reply, err = f.agent.HandleTurn(ctx, "busDashboard", "yes", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(reply, "✅ Action completed") ||
		!strings.Contains(reply, "Removed vehicle KA-01-AB-1234 from trip 'Bulk - 00:01'") {
		t.Errorf("unexpected reply: %q", reply)
	}
	if f.pending(t, "session_busDashboard") != nil {
		t.Error("gate must return to idle after execution")
	}

	td, err = f.store.FindTripByName(ctx, "Bulk - 00:01")
	if err != nil {
		t.Fatal(err)
	}
	if td.Vehicle != nil {
		t.Error("vehicle must be removed after confirmation")
	}

	// The confirmed turn resolves without invoking the model.
	if len(f.model.requests) != 1 {
		t.Errorf("expected 1 completion call total, got %d", len(f.model.requests))
	}

	// The executed mutation tells open dashboards to refresh the trip.
	if len(f.broadcaster.events) != 2 || f.broadcaster.events[1] != broadcast.EventTripUpdated {
		t.Errorf("expected trip.updated after confirmed execution, got %v", f.broadcaster.events)
	}
}

func TestHighRiskCancelledOnNo(t *testing.T) {
	f := newAgentFixture(t)
	f.model.responses = []llm.Completion{
		toolCallCompletion("remove_vehicle_from_trip", map[string]any{"trip_name": "Bulk - 00:01"}),
	}
	ctx := context.Background()

	if _, err := f.agent.HandleTurn(ctx, "busDashboard", "Remove the vehicle from Bulk - 00:01", nil); err != nil {
		t.Fatal(err)
	}

	reply, err := f.agent.HandleTurn(ctx, "busDashboard", "no", nil)
	if err != nil {
		t.Fatal(err)
	}
	if reply != cancelledMessage {
		t.Errorf("unexpected reply: %q", reply)
	}
	if f.pending(t, "session_busDashboard") != nil {
		t.Error("gate must return to idle after cancellation")
	}

	td, err := f.store.FindTripByName(ctx, "Bulk - 00:01")
	if err != nil {
		t.Fatal(err)
	}
	if td.Vehicle == nil {
		t.Error("vehicle must remain assigned after cancellation")
	}
}

func TestAmbiguousReplyRepromptsAndKeepsPending(t *testing.T) {
	f := newAgentFixture(t)
	f.model.responses = []llm.Completion{
		toolCallCompletion("delete_daily_trip", map[string]any{"trip_name": "Bulk - 00:01"}),
	}
	ctx := context.Background()

	if _, err := f.agent.HandleTurn(ctx, "busDashboard", "Delete Bulk - 00:01", nil); err != nil {
		t.Fatal(err)
	}
	parked := f.pending(t, "session_busDashboard")
	if parked == nil {
		t.Fatal("expected pending confirmation")
	}

	reply, err := f.agent.HandleTurn(ctx, "busDashboard", "what happens to the bookings?", nil)
	if err != nil {
		t.Fatal(err)
	}
	if reply != clarifyMessage {
		t.Errorf("unexpected reply: %q", reply)
	}
	if got := f.pending(t, "session_busDashboard"); got != parked {
		t.Error("ambiguous reply must not consume the parked call")
	}

	// The eventual yes executes exactly the parked call.
	if _, err := f.agent.HandleTurn(ctx, "busDashboard", "yes", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := f.store.FindTripByName(ctx, "Bulk - 00:01"); err == nil {
		t.Error("trip should be deleted after confirmed yes")
	}
}

func TestHighRiskWithoutConsequencesExecutesImmediately(t *testing.T) {
	f := newAgentFixture(t)
	f.model.responses = []llm.Completion{
		toolCallCompletion("deactivate_route", map[string]any{"route_name": "South-Loop - 18:00"}),
		{Content: "Done, the South-Loop evening route is already deactivated."},
	}
	ctx := context.Background()

	reply, err := f.agent.HandleTurn(ctx, "manageRoute", "Deactivate South-Loop - 18:00", nil)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(reply, "CONSEQUENCE WARNING") {
		t.Errorf("route without trips must not prompt, got %q", reply)
	}
	if f.pending(t, "session_manageRoute") != nil {
		t.Error("no pending confirmation expected")
	}
	if len(f.broadcaster.events) != 0 {
		t.Errorf("no confirmation broadcast expected, got %v", f.broadcaster.events)
	}
}

func TestPendingConfirmationExpires(t *testing.T) {
	f := newAgentFixture(t)
	f.model.responses = []llm.Completion{
		toolCallCompletion("remove_vehicle_from_trip", map[string]any{"trip_name": "Bulk - 00:01"}),
	}
	ctx := context.Background()

	if _, err := f.agent.HandleTurn(ctx, "busDashboard", "Remove the vehicle from Bulk - 00:01", nil); err != nil {
		t.Fatal(err)
	}

	// Age the parked call past the confirmation TTL.
	f.pending(t, "session_busDashboard").CreatedAt = time.Now().Add(-time.Hour)

	reply, err := f.agent.HandleTurn(ctx, "busDashboard", "yes", nil)
	if err != nil {
		t.Fatal(err)
	}
	if reply != expiredMessage {
		t.Errorf("unexpected reply: %q", reply)
	}
	if f.pending(t, "session_busDashboard") != nil {
		t.Error("expired pending must be discarded")
	}

	td, err := f.store.FindTripByName(ctx, "Bulk - 00:01")
	if err != nil {
		t.Fatal(err)
	}
	if td.Vehicle == nil {
		t.Error("expired action must not execute")
	}
}

func TestVisionSummaryInjected(t *testing.T) {
	f := newAgentFixture(t)
	f.model.responses = []llm.Completion{{Content: "That is the Bulk trip, currently twenty five percent booked."}}

	_, err := f.agent.HandleTurn(context.Background(), "busDashboard", "what's this trip?", &Image{
		Data: []byte("fake-png-bytes"), MimeType: "image/png",
	})
	if err != nil {
		t.Fatal(err)
	}
	if f.vision.calls != 1 {
		t.Fatalf("expected one vision call, got %d", f.vision.calls)
	}

	req := f.model.requests[0]
	var found bool
	for _, msg := range req.Messages {
		if msg.Role == chat.RoleSystem && strings.Contains(msg.Content, "Image Analysis") &&
			strings.Contains(msg.Content, "Bulk - 00:01") {
			found = true
		}
	}
	if !found {
		t.Error("expected vision summary injected as a system message")
	}
}

func TestVisionFailureSurfacesInTurn(t *testing.T) {
	f := newAgentFixture(t)
	f.vision.err = errors.New("vision down")

	reply, err := f.agent.HandleTurn(context.Background(), "busDashboard", "what's this?", &Image{
		Data: []byte("img"), MimeType: "image/jpeg",
	})
	if err != nil {
		t.Fatal(err)
	}
	if reply != visionUnreachableMessage {
		t.Errorf("unexpected reply: %q", reply)
	}
	if len(f.model.requests) != 0 {
		t.Error("model must not be called when vision fails")
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	f := newAgentFixture(t)
	f.model.responses = []llm.Completion{
		toolCallCompletion("remove_vehicle_from_trip", map[string]any{"trip_name": "Bulk - 00:01"}),
		{Content: "There are eight routes in total."},
	}
	ctx := context.Background()

	if _, err := f.agent.HandleTurn(ctx, "busDashboard", "Remove the vehicle from Bulk - 00:01", nil); err != nil {
		t.Fatal(err)
	}
	if f.pending(t, "session_busDashboard") == nil {
		t.Fatal("expected pending on the dashboard session")
	}

	// A turn on another page is unaffected by the dashboard's pending gate.
	reply, err := f.agent.HandleTurn(ctx, "manageRoute", "how many routes are there?", nil)
	if err != nil {
		t.Fatal(err)
	}
	if reply != "There are eight routes in total." {
		t.Errorf("unexpected reply: %q", reply)
	}
	if f.pending(t, "session_busDashboard") == nil {
		t.Error("dashboard pending must survive turns on other sessions")
	}
}
