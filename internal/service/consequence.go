package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/moveinsync/movi/internal/domain"
	"github.com/moveinsync/movi/internal/domain/chat"
	"github.com/moveinsync/movi/internal/port/database"
)

// ConsequenceEvaluator inspects the current state of a high-risk tool
// call's target and decides whether the user must confirm before execution.
// It only reads; the parked call is executed later by the gate.
type ConsequenceEvaluator struct {
	store database.Store
}

// NewConsequenceEvaluator returns an evaluator over the given store.
func NewConsequenceEvaluator(store database.Store) *ConsequenceEvaluator {
	return &ConsequenceEvaluator{store: store}
}

// Evaluate produces a consequence report for the call. Calls whose target
// does not exist report no consequences; execution will surface the
// not-found error itself. A store failure aborts evaluation so no pending
// confirmation is created on partial information.
func (e *ConsequenceEvaluator) Evaluate(ctx context.Context, call chat.ToolCall) (chat.ConsequenceReport, error) {
	report := chat.ConsequenceReport{Call: call}

	switch call.Name {
	case "remove_vehicle_from_trip", "delete_daily_trip":
		tripName, err := stringArg(call.Args, "trip_name")
		if err != nil {
			return report, err
		}
		td, err := e.store.FindTripByName(ctx, tripName)
		if errors.Is(err, domain.ErrNotFound) {
			return report, nil
		}
		if err != nil {
			return report, fmt.Errorf("evaluate %s: %w", call.Name, err)
		}
		if td.BookingPct <= 0 {
			return report, nil
		}
		report.NeedsConfirmation = true
		if call.Name == "remove_vehicle_from_trip" {
			report.Warnings = []string{
				fmt.Sprintf("This trip is currently %s%% booked by employees", formatPct(td.BookingPct)),
				"Removing the vehicle will cancel these bookings",
				"Trip-sheet generation will fail",
				"Affected employees will need to be notified",
			}
		} else {
			report.Warnings = []string{
				fmt.Sprintf("This trip is currently %s%% booked by employees", formatPct(td.BookingPct)),
				"Deleting this trip will permanently remove all bookings",
				"Assigned vehicle and driver will be freed up",
				"Affected employees will need to be notified and rescheduled",
				"This action cannot be undone",
			}
		}
		return report, nil

	case "deactivate_route":
		routeName, err := stringArg(call.Args, "route_name")
		if err != nil {
			return report, err
		}
		route, err := e.store.FindRouteByName(ctx, routeName)
		if errors.Is(err, domain.ErrNotFound) {
			return report, nil
		}
		if err != nil {
			return report, fmt.Errorf("evaluate %s: %w", call.Name, err)
		}
		trips, err := e.store.ListTripsByRoute(ctx, route.ID)
		if err != nil {
			return report, fmt.Errorf("evaluate %s: %w", call.Name, err)
		}
		if len(trips) == 0 {
			return report, nil
		}
		report.NeedsConfirmation = true
		report.Warnings = []string{
			fmt.Sprintf("This route currently has %d active trip(s)", len(trips)),
			"Deactivating will affect these trips",
			"New bookings will be disabled",
			"Existing schedules may need adjustment",
		}
		return report, nil

	default:
		// Unknown high-risk tools carry no evaluation rule; require
		// confirmation with a generic warning rather than skipping the gate.
		report.NeedsConfirmation = true
		report.Warnings = []string{
			fmt.Sprintf("The operation '%s' may have irreversible side effects", call.Name),
		}
		return report, nil
	}
}

// confirmationPrompt renders the report as the user-facing warning message,
// including the yes/no instruction.
func confirmationPrompt(report chat.ConsequenceReport) string {
	var intro string
	switch report.Call.Name {
	case "remove_vehicle_from_trip":
		name, _ := stringArg(report.Call.Args, "trip_name")
		intro = fmt.Sprintf("I can remove the vehicle from '%s'. However, please be aware that:", name)
	case "delete_daily_trip":
		name, _ := stringArg(report.Call.Args, "trip_name")
		intro = fmt.Sprintf("I can delete the trip '%s'. However, please be aware that:", name)
	case "deactivate_route":
		name, _ := stringArg(report.Call.Args, "route_name")
		intro = fmt.Sprintf("I can deactivate route '%s'. However, please be aware that:", name)
	default:
		intro = fmt.Sprintf("I can run '%s'. However, please be aware that:", report.Call.Name)
	}

	var b strings.Builder
	b.WriteString("⚠️ CONSEQUENCE WARNING\n\n")
	b.WriteString(intro)
	b.WriteString("\n\n")
	for _, warning := range report.Warnings {
		b.WriteString("• ")
		b.WriteString(warning)
		b.WriteString("\n")
	}
	b.WriteString("\nThis is a high-impact operation.\n\n")
	b.WriteString("❓ Do you want to proceed? (Reply 'yes' to confirm or 'no' to cancel)")
	return b.String()
}
