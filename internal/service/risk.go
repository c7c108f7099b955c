package service

// Risk classifies a tool by the severity of its side effects.
type Risk int

const (
	// Safe tools execute immediately without user confirmation.
	Safe Risk = iota
	// HighRisk tools are routed through consequence evaluation and may
	// require an explicit yes/no from the user before execution.
	HighRisk
)

func (r Risk) String() string {
	if r == HighRisk {
		return "high-risk"
	}
	return "safe"
}

// safeTools is the closed set of tools known to be free of destructive or
// booking-affecting side effects. Anything outside this set is treated as
// HighRisk so a future destructive tool can never slip past the
// confirmation gate by being missing from a list.
var safeTools = map[string]struct{}{
	"get_trip_status":           {},
	"get_unassigned_vehicles":   {},
	"get_trip_bookings":         {},
	"list_stops_for_path":       {},
	"list_routes_for_path":      {},
	"list_all_routes":           {},
	"create_daily_trip":         {},
	"assign_vehicle_and_driver": {},
	"create_new_stop":           {},
	"create_new_path":           {},
	"create_new_route":          {},
	"get_all_drivers":           {},
	"get_vehicle_details":       {},
}

// highRiskTools enumerates the destructive operations. Kept explicit so the
// classifier is exhaustive over the registry rather than defined by omission.
var highRiskTools = map[string]struct{}{
	"delete_daily_trip":        {},
	"remove_vehicle_from_trip": {},
	"deactivate_route":         {},
}

// ClassifyTool returns the risk class for a tool name. Unknown names
// classify as HighRisk.
func ClassifyTool(name string) Risk {
	if _, ok := safeTools[name]; ok {
		return Safe
	}
	return HighRisk
}
