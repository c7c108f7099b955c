package service

import (
	"context"
	"strings"
	"testing"

	"github.com/moveinsync/movi/internal/domain/chat"
)

func TestEvaluateRemoveVehicleWithBookings(t *testing.T) {
	e := NewConsequenceEvaluator(newSeededStore(t))

	call := chat.ToolCall{ID: "c1", Name: "remove_vehicle_from_trip", Args: map[string]any{"trip_name": "Bulk - 00:01"}}
	report, err := e.Evaluate(context.Background(), call)
	if err != nil {
		t.Fatal(err)
	}
	if !report.NeedsConfirmation {
		t.Fatal("expected confirmation required for a 25% booked trip")
	}
	if len(report.Warnings) == 0 {
		t.Fatal("expected warning lines")
	}
	joined := strings.Join(report.Warnings, "\n")
	for _, want := range []string{"25.0% booked", "cancel these bookings", "Trip-sheet generation will fail", "notified"} {
		if !strings.Contains(joined, want) {
			t.Errorf("warnings missing %q:\n%s", want, joined)
		}
	}
	if report.Call.ID != "c1" {
		t.Error("report must reference the originating call")
	}
}

func TestEvaluateRemoveVehicleNoBookings(t *testing.T) {
	e := NewConsequenceEvaluator(newSeededStore(t))

	report, err := e.Evaluate(context.Background(), chat.ToolCall{
		Name: "remove_vehicle_from_trip", Args: map[string]any{"trip_name": "Path Path - 00:02"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if report.NeedsConfirmation {
		t.Error("a trip with zero bookings must not require confirmation")
	}
}

func TestEvaluateDeleteTripWithBookings(t *testing.T) {
	e := NewConsequenceEvaluator(newSeededStore(t))

	report, err := e.Evaluate(context.Background(), chat.ToolCall{
		Name: "delete_daily_trip", Args: map[string]any{"trip_name": "Path-1 Evening - 19:00"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !report.NeedsConfirmation {
		t.Fatal("expected confirmation required")
	}
	joined := strings.Join(report.Warnings, "\n")
	for _, want := range []string{"60.0% booked", "permanently remove all bookings", "cannot be undone"} {
		if !strings.Contains(joined, want) {
			t.Errorf("warnings missing %q:\n%s", want, joined)
		}
	}
}

func TestEvaluateDeactivateRouteWithTrips(t *testing.T) {
	e := NewConsequenceEvaluator(newSeededStore(t))

	// Route 1 carries two trips.
	report, err := e.Evaluate(context.Background(), chat.ToolCall{
		Name: "deactivate_route", Args: map[string]any{"route_name": "Path-1 - 07:00"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !report.NeedsConfirmation {
		t.Fatal("expected confirmation required")
	}
	if !strings.Contains(strings.Join(report.Warnings, "\n"), "2 active trip(s)") {
		t.Errorf("expected trip count in warnings, got %v", report.Warnings)
	}
}

func TestEvaluateDeactivateRouteNoTrips(t *testing.T) {
	e := NewConsequenceEvaluator(newSeededStore(t))

	// South-Loop - 18:00 has no trips scheduled.
	report, err := e.Evaluate(context.Background(), chat.ToolCall{
		Name: "deactivate_route", Args: map[string]any{"route_name": "South-Loop - 18:00"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if report.NeedsConfirmation {
		t.Error("a route with no trips must not require confirmation")
	}
}

func TestEvaluateUnknownTarget(t *testing.T) {
	e := NewConsequenceEvaluator(newSeededStore(t))

	// Evaluation on a missing entity reports no consequences; execution
	// surfaces the not-found error itself.
	report, err := e.Evaluate(context.Background(), chat.ToolCall{
		Name: "delete_daily_trip", Args: map[string]any{"trip_name": "Ghost Trip"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if report.NeedsConfirmation {
		t.Error("unknown trip must not require confirmation")
	}
}

func TestEvaluateUnknownHighRiskTool(t *testing.T) {
	e := NewConsequenceEvaluator(newSeededStore(t))

	report, err := e.Evaluate(context.Background(), chat.ToolCall{Name: "purge_fleet", Args: map[string]any{}})
	if err != nil {
		t.Fatal(err)
	}
	if !report.NeedsConfirmation {
		t.Error("a tool without an evaluation rule must require confirmation")
	}
}

func TestConfirmationPromptWording(t *testing.T) {
	e := NewConsequenceEvaluator(newSeededStore(t))

	report, err := e.Evaluate(context.Background(), chat.ToolCall{
		Name: "remove_vehicle_from_trip", Args: map[string]any{"trip_name": "Bulk - 00:01"},
	})
	if err != nil {
		t.Fatal(err)
	}
	prompt := confirmationPrompt(report)
	for _, want := range []string{
		"CONSEQUENCE WARNING",
		"I can remove the vehicle from 'Bulk - 00:01'",
		"25.0% booked",
		"This is a high-impact operation.",
		"Reply 'yes' to confirm or 'no' to cancel",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}
