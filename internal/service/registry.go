package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/moveinsync/movi/internal/domain"
	"github.com/moveinsync/movi/internal/domain/chat"
	"github.com/moveinsync/movi/internal/domain/transport"
	"github.com/moveinsync/movi/internal/port/broadcast"
	"github.com/moveinsync/movi/internal/port/database"
	"github.com/moveinsync/movi/internal/port/llm"
)

// ToolFunc executes one tool against the domain store and returns the
// canonical result text shown (and spoken) to the user.
type ToolFunc func(ctx context.Context, args map[string]any) (string, error)

// Tool is one registry entry: the schema advertised to the model plus the
// backing implementation. ReadOnly tools are eligible for result caching.
type Tool struct {
	Spec     llm.ToolSpec
	ReadOnly bool
	Run      ToolFunc
}

// Executor runs a requested tool call. The registry is the base
// implementation; CachedExecutor decorates it with a read-tool cache.
type Executor interface {
	Execute(ctx context.Context, call chat.ToolCall) (string, error)
}

// Registry is the immutable catalog of agent tools, built once at startup.
type Registry struct {
	tools map[string]Tool
	specs []llm.ToolSpec
}

// NewRegistry builds the catalog of the sixteen transport tools over the
// given store. Mutating tools push trip and route events through events so
// open dashboards refresh without polling.
func NewRegistry(store database.Store, events broadcast.Broadcaster) *Registry {
	r := &Registry{tools: make(map[string]Tool)}
	for _, t := range buildTools(store, events) {
		r.tools[t.Spec.Name] = t
		r.specs = append(r.specs, t.Spec)
	}
	return r
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (Tool, error) {
	t, ok := r.tools[name]
	if !ok {
		return Tool{}, fmt.Errorf("%q: %w", name, domain.ErrUnknownTool)
	}
	return t, nil
}

// Specs returns the tool schemas in registration order, for binding to the
// model.
func (r *Registry) Specs() []llm.ToolSpec {
	return r.specs
}

// Execute runs the named tool with the call's arguments.
func (r *Registry) Execute(ctx context.Context, call chat.ToolCall) (string, error) {
	t, err := r.Lookup(call.Name)
	if err != nil {
		return "", err
	}
	return t.Run(ctx, call.Args)
}

// --- argument decoding ---

func stringArg(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", fmt.Errorf("missing argument %q: %w", key, domain.ErrValidation)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %q must be a string: %w", key, domain.ErrValidation)
	}
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("argument %q must not be empty: %w", key, domain.ErrValidation)
	}
	return s, nil
}

func optStringArg(args map[string]any, key, def string) (string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %q must be a string: %w", key, domain.ErrValidation)
	}
	if s == "" {
		return def, nil
	}
	return s, nil
}

func floatArg(args map[string]any, key string) (float64, error) {
	v, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("missing argument %q: %w", key, domain.ErrValidation)
	}
	return decodeFloat(v, key)
}

func optFloatArg(args map[string]any, key string, def float64) (float64, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return def, nil
	}
	return decodeFloat(v, key)
}

func decodeFloat(v any, key string) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("argument %q must be a number: %w", key, domain.ErrValidation)
	}
}

func optBoolArg(args map[string]any, key string, def bool) (bool, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("argument %q must be a boolean: %w", key, domain.ErrValidation)
	}
	return b, nil
}

func stringListArg(args map[string]any, key string) ([]string, error) {
	v, ok := args[key]
	if !ok {
		return nil, fmt.Errorf("missing argument %q: %w", key, domain.ErrValidation)
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("argument %q must be a list of strings: %w", key, domain.ErrValidation)
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("argument %q must be a list of strings: %w", key, domain.ErrValidation)
		}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("argument %q must not be empty: %w", key, domain.ErrValidation)
	}
	return out, nil
}

// formatPct renders a booking percentage the way the dashboard shows it:
// whole numbers keep one decimal place ("25.0"), fractions print as-is.
func formatPct(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// objectSchema is a shorthand for the JSON-schema object shape the
// completions API expects for tool parameters.
func objectSchema(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func buildTools(store database.Store, events broadcast.Broadcaster) []Tool {
	return []Tool{
		{
			Spec: llm.ToolSpec{
				Name:        "get_trip_status",
				Description: "Gets the live status and booking percentage for a specific trip, including its vehicle and driver. Use when the user asks about trip status, booking information, or trip details.",
				Parameters: objectSchema(map[string]any{
					"trip_name": map[string]any{"type": "string", "description": "The display name of the trip, e.g. 'Bulk - 00:01'"},
				}, "trip_name"),
			},
			ReadOnly: true,
			Run: func(ctx context.Context, args map[string]any) (string, error) {
				name, err := stringArg(args, "trip_name")
				if err != nil {
					return "", err
				}
				td, err := store.FindTripByName(ctx, name)
				if err != nil {
					return "", err
				}
				var vehicleInfo, driverInfo string
				if td.Vehicle != nil {
					vehicleInfo = ", Vehicle: " + td.Vehicle.LicensePlate
				}
				if td.Driver != nil {
					driverInfo = ", Driver: " + td.Driver.Name
				}
				return fmt.Sprintf("Trip '%s': Status: %s, Booking: %s%%%s%s",
					td.DisplayName, td.LiveStatus, formatPct(td.BookingPct), vehicleInfo, driverInfo), nil
			},
		},
		{
			Spec: llm.ToolSpec{
				Name:        "get_unassigned_vehicles",
				Description: "Returns the count and list of vehicles that are not currently assigned to any trip.",
				Parameters:  objectSchema(map[string]any{}),
			},
			ReadOnly: true,
			Run: func(ctx context.Context, args map[string]any) (string, error) {
				vehicles, err := store.ListUnassignedVehicles(ctx)
				if err != nil {
					return "", err
				}
				if len(vehicles) == 0 {
					return "All vehicles are currently assigned.", nil
				}
				entries := make([]string, 0, len(vehicles))
				for _, v := range vehicles {
					entries = append(entries, fmt.Sprintf("%s (%s)", v.LicensePlate, v.Type))
				}
				return fmt.Sprintf("Unassigned vehicles (%d): %s", len(vehicles), strings.Join(entries, ", ")), nil
			},
		},
		{
			Spec: llm.ToolSpec{
				Name:        "get_trip_bookings",
				Description: "Gets detailed booking information for a specific trip.",
				Parameters: objectSchema(map[string]any{
					"trip_name": map[string]any{"type": "string", "description": "The display name of the trip"},
				}, "trip_name"),
			},
			ReadOnly: true,
			Run: func(ctx context.Context, args map[string]any) (string, error) {
				name, err := stringArg(args, "trip_name")
				if err != nil {
					return "", err
				}
				td, err := store.FindTripByName(ctx, name)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("Trip '%s' is %s%% booked.", td.DisplayName, formatPct(td.BookingPct)), nil
			},
		},
		{
			Spec: llm.ToolSpec{
				Name:        "list_stops_for_path",
				Description: "Lists all stops in order for a given path.",
				Parameters: objectSchema(map[string]any{
					"path_name": map[string]any{"type": "string", "description": "The name of the path, e.g. 'Path-2'"},
				}, "path_name"),
			},
			ReadOnly: true,
			Run: func(ctx context.Context, args map[string]any) (string, error) {
				name, err := stringArg(args, "path_name")
				if err != nil {
					return "", err
				}
				p, err := store.FindPathByName(ctx, name)
				if err != nil {
					return "", err
				}
				var stopNames []string
				for _, stopID := range p.StopIDs {
					st, err := store.GetStop(ctx, stopID)
					if err != nil {
						if errors.Is(err, domain.ErrNotFound) {
							continue
						}
						return "", err
					}
					stopNames = append(stopNames, st.Name)
				}
				return fmt.Sprintf("Path '%s' stops: %s", p.Name, strings.Join(stopNames, " → ")), nil
			},
		},
		{
			Spec: llm.ToolSpec{
				Name:        "list_routes_for_path",
				Description: "Shows all routes that use a specific path, including their status.",
				Parameters: objectSchema(map[string]any{
					"path_name": map[string]any{"type": "string", "description": "The name of the path"},
				}, "path_name"),
			},
			ReadOnly: true,
			Run: func(ctx context.Context, args map[string]any) (string, error) {
				name, err := stringArg(args, "path_name")
				if err != nil {
					return "", err
				}
				p, err := store.FindPathByName(ctx, name)
				if err != nil {
					return "", err
				}
				routes, err := store.ListRoutesByPath(ctx, p.ID)
				if err != nil {
					return "", err
				}
				if len(routes) == 0 {
					return fmt.Sprintf("No routes found for path '%s'.", p.Name), nil
				}
				entries := make([]string, 0, len(routes))
				for _, r := range routes {
					entries = append(entries, fmt.Sprintf("%s (%s)", r.DisplayName, r.Status))
				}
				return fmt.Sprintf("Routes for '%s' (%d): %s", p.Name, len(routes), strings.Join(entries, ", ")), nil
			},
		},
		{
			Spec: llm.ToolSpec{
				Name:        "list_all_routes",
				Description: "Lists all routes, optionally filtered by status ('active' or 'deactivated').",
				Parameters: objectSchema(map[string]any{
					"status": map[string]any{"type": "string", "enum": []string{"active", "deactivated"}, "description": "Optional status filter; omit for all routes"},
				}),
			},
			ReadOnly: true,
			Run: func(ctx context.Context, args map[string]any) (string, error) {
				status, err := optStringArg(args, "status", "")
				if err != nil {
					return "", err
				}
				routes, err := store.ListRoutes(ctx)
				if err != nil {
					return "", err
				}
				if status != "" {
					filtered := routes[:0]
					for _, r := range routes {
						if r.Status == status {
							filtered = append(filtered, r)
						}
					}
					routes = filtered
				}
				if len(routes) == 0 {
					if status != "" {
						return fmt.Sprintf("No routes found with status %s.", status), nil
					}
					return "No routes found.", nil
				}
				shown := routes
				if len(shown) > 10 {
					shown = shown[:10]
				}
				lines := make([]string, 0, len(shown))
				for _, r := range shown {
					lines = append(lines, fmt.Sprintf("- %s: %s → %s (%s)", r.DisplayName, r.StartPoint, r.EndPoint, r.Status))
				}
				out := fmt.Sprintf("Routes (%d):\n%s", len(routes), strings.Join(lines, "\n"))
				if len(routes) > 10 {
					out += fmt.Sprintf("\n... and %d more routes", len(routes)-10)
				}
				return out, nil
			},
		},
		{
			Spec: llm.ToolSpec{
				Name:        "create_daily_trip",
				Description: "Creates a new daily trip for an existing route.",
				Parameters: objectSchema(map[string]any{
					"route_name":         map[string]any{"type": "string", "description": "The display name of the route, e.g. 'Path-1 - 07:00'"},
					"display_name":       map[string]any{"type": "string", "description": "The display name for the new trip"},
					"booking_percentage": map[string]any{"type": "number", "description": "Initial booking percentage, 0-100 (default 0)"},
					"live_status":        map[string]any{"type": "string", "description": "Initial status (default 'NOT STARTED')"},
				}, "route_name", "display_name"),
			},
			Run: func(ctx context.Context, args map[string]any) (string, error) {
				routeName, err := stringArg(args, "route_name")
				if err != nil {
					return "", err
				}
				displayName, err := stringArg(args, "display_name")
				if err != nil {
					return "", err
				}
				bookingPct, err := optFloatArg(args, "booking_percentage", 0)
				if err != nil {
					return "", err
				}
				liveStatus, err := optStringArg(args, "live_status", "NOT STARTED")
				if err != nil {
					return "", err
				}
				if bookingPct < 0 || bookingPct > 100 {
					return "", fmt.Errorf("booking percentage must be between 0 and 100: %w", domain.ErrValidation)
				}
				route, err := store.FindRouteByName(ctx, routeName)
				if err != nil {
					return "", err
				}
				if _, err := store.FindTripByName(ctx, displayName); err == nil {
					return "", fmt.Errorf("trip %q already exists: %w", displayName, domain.ErrConflict)
				} else if !errors.Is(err, domain.ErrNotFound) {
					return "", err
				}
				trip, err := store.CreateTrip(ctx, transport.CreateTripRequest{
					RouteID:     route.ID,
					DisplayName: displayName,
					BookingPct:  bookingPct,
					LiveStatus:  liveStatus,
				})
				if err != nil {
					return "", err
				}
				events.BroadcastEvent(ctx, broadcast.EventTripCreated, broadcast.TripEvent{
					TripID:      trip.ID,
					DisplayName: trip.DisplayName,
					LiveStatus:  trip.LiveStatus,
				})
				return fmt.Sprintf("✅ Created daily trip '%s' (ID: %d) for route '%s'",
					trip.DisplayName, trip.ID, route.DisplayName), nil
			},
		},
		{
			Spec: llm.ToolSpec{
				Name:        "assign_vehicle_and_driver",
				Description: "Assigns a vehicle and driver to a specific trip.",
				Parameters: objectSchema(map[string]any{
					"trip_name":       map[string]any{"type": "string", "description": "The display name of the trip"},
					"vehicle_license": map[string]any{"type": "string", "description": "The license plate of the vehicle, e.g. 'MH-12-3456'"},
					"driver_name":     map[string]any{"type": "string", "description": "The name of the driver, e.g. 'Amit Kumar'"},
				}, "trip_name", "vehicle_license", "driver_name"),
			},
			Run: func(ctx context.Context, args map[string]any) (string, error) {
				tripName, err := stringArg(args, "trip_name")
				if err != nil {
					return "", err
				}
				plate, err := stringArg(args, "vehicle_license")
				if err != nil {
					return "", err
				}
				driverName, err := stringArg(args, "driver_name")
				if err != nil {
					return "", err
				}
				trip, err := store.FindTripByName(ctx, tripName)
				if err != nil {
					return "", err
				}
				vehicle, err := store.FindVehicleByPlate(ctx, plate)
				if err != nil {
					return "", err
				}
				driver, err := store.FindDriverByName(ctx, driverName)
				if err != nil {
					return "", err
				}
				if err := store.AssignVehicle(ctx, trip.ID, vehicle.ID); err != nil {
					return "", err
				}
				if err := store.AssignDriver(ctx, trip.ID, driver.ID); err != nil {
					return "", err
				}
				events.BroadcastEvent(ctx, broadcast.EventTripUpdated, broadcast.TripEvent{
					TripID:      trip.ID,
					DisplayName: trip.DisplayName,
					LiveStatus:  trip.LiveStatus,
				})
				return fmt.Sprintf("✅ Updated deployment: %s with driver %s assigned to '%s'",
					vehicle.LicensePlate, driver.Name, trip.DisplayName), nil
			},
		},
		{
			Spec: llm.ToolSpec{
				Name:        "delete_daily_trip",
				Description: "Deletes a daily trip and its deployment. HIGH CONSEQUENCE ACTION: removing the trip affects any bookings.",
				Parameters: objectSchema(map[string]any{
					"trip_name": map[string]any{"type": "string", "description": "The display name of the trip to delete"},
				}, "trip_name"),
			},
			Run: func(ctx context.Context, args map[string]any) (string, error) {
				name, err := stringArg(args, "trip_name")
				if err != nil {
					return "", err
				}
				td, err := store.FindTripByName(ctx, name)
				if err != nil {
					return "", err
				}
				if err := store.DeleteTrip(ctx, td.ID); err != nil {
					return "", err
				}
				events.BroadcastEvent(ctx, broadcast.EventTripDeleted, broadcast.TripEvent{
					TripID:      td.ID,
					DisplayName: td.DisplayName,
				})
				var assignmentInfo, bookingInfo string
				if td.Vehicle != nil || td.Driver != nil {
					assignmentInfo = " (freed up assigned vehicle/driver)"
				}
				if td.BookingPct > 0 {
					bookingInfo = fmt.Sprintf(" [had %s%% bookings]", formatPct(td.BookingPct))
				}
				return fmt.Sprintf("✅ Deleted daily trip '%s' (ID: %d)%s%s",
					td.DisplayName, td.ID, assignmentInfo, bookingInfo), nil
			},
		},
		{
			Spec: llm.ToolSpec{
				Name:        "remove_vehicle_from_trip",
				Description: "Removes the assigned vehicle from a specific trip. HIGH CONSEQUENCE ACTION: may affect bookings and trip-sheet generation.",
				Parameters: objectSchema(map[string]any{
					"trip_name": map[string]any{"type": "string", "description": "The display name of the trip"},
				}, "trip_name"),
			},
			Run: func(ctx context.Context, args map[string]any) (string, error) {
				name, err := stringArg(args, "trip_name")
				if err != nil {
					return "", err
				}
				td, err := store.FindTripByName(ctx, name)
				if err != nil {
					return "", err
				}
				if td.Vehicle == nil {
					return fmt.Sprintf("No vehicle assigned to trip '%s'.", td.DisplayName), nil
				}
				if err := store.RemoveVehicle(ctx, td.ID); err != nil {
					return "", err
				}
				events.BroadcastEvent(ctx, broadcast.EventTripUpdated, broadcast.TripEvent{
					TripID:      td.ID,
					DisplayName: td.DisplayName,
					LiveStatus:  td.LiveStatus,
				})
				return fmt.Sprintf("✅ Removed vehicle %s from trip '%s'",
					td.Vehicle.LicensePlate, td.DisplayName), nil
			},
		},
		{
			Spec: llm.ToolSpec{
				Name:        "create_new_stop",
				Description: "Creates a new stop location.",
				Parameters: objectSchema(map[string]any{
					"stop_name": map[string]any{"type": "string", "description": "Name of the new stop"},
					"latitude":  map[string]any{"type": "number", "description": "Latitude coordinate"},
					"longitude": map[string]any{"type": "number", "description": "Longitude coordinate"},
				}, "stop_name", "latitude", "longitude"),
			},
			Run: func(ctx context.Context, args map[string]any) (string, error) {
				name, err := stringArg(args, "stop_name")
				if err != nil {
					return "", err
				}
				lat, err := floatArg(args, "latitude")
				if err != nil {
					return "", err
				}
				lng, err := floatArg(args, "longitude")
				if err != nil {
					return "", err
				}
				st, err := store.CreateStop(ctx, transport.CreateStopRequest{
					Name: name, Latitude: lat, Longitude: lng,
				})
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("✅ Created stop '%s' (ID: %d) at (%s, %s)",
					st.Name, st.ID, formatCoord(lat), formatCoord(lng)), nil
			},
		},
		{
			Spec: llm.ToolSpec{
				Name:        "create_new_path",
				Description: "Creates a new path as an ordered sequence of existing stops.",
				Parameters: objectSchema(map[string]any{
					"path_name":  map[string]any{"type": "string", "description": "Name for the new path"},
					"stop_names": map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Stop names in order"},
				}, "path_name", "stop_names"),
			},
			Run: func(ctx context.Context, args map[string]any) (string, error) {
				name, err := stringArg(args, "path_name")
				if err != nil {
					return "", err
				}
				stopNames, err := stringListArg(args, "stop_names")
				if err != nil {
					return "", err
				}
				stopIDs := make([]int64, 0, len(stopNames))
				for _, stopName := range stopNames {
					st, err := store.FindStopByName(ctx, stopName)
					if err != nil {
						return "", fmt.Errorf("stop %q: %w", stopName, err)
					}
					stopIDs = append(stopIDs, st.ID)
				}
				p, err := store.CreatePath(ctx, transport.CreatePathRequest{Name: name, StopIDs: stopIDs})
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("✅ Created path '%s' (ID: %d) with %d stops", p.Name, p.ID, len(stopIDs)), nil
			},
		},
		{
			Spec: llm.ToolSpec{
				Name:        "create_new_route",
				Description: "Creates a new route by assigning a shift time to an existing path.",
				Parameters: objectSchema(map[string]any{
					"path_name":  map[string]any{"type": "string", "description": "Name of the existing path"},
					"shift_time": map[string]any{"type": "string", "description": "Time in HH:MM format, e.g. '19:45'"},
					"direction":  map[string]any{"type": "string", "enum": []string{"Inbound", "Outbound", "Circular"}, "description": "Route direction"},
				}, "path_name", "shift_time", "direction"),
			},
			Run: func(ctx context.Context, args map[string]any) (string, error) {
				pathName, err := stringArg(args, "path_name")
				if err != nil {
					return "", err
				}
				shiftTime, err := stringArg(args, "shift_time")
				if err != nil {
					return "", err
				}
				direction, err := stringArg(args, "direction")
				if err != nil {
					return "", err
				}
				p, err := store.FindPathByName(ctx, pathName)
				if err != nil {
					return "", err
				}
				startPoint, endPoint := "Unknown", "Unknown"
				if len(p.StopIDs) > 0 {
					if st, err := store.GetStop(ctx, p.StopIDs[0]); err == nil {
						startPoint = st.Name
					}
					if st, err := store.GetStop(ctx, p.StopIDs[len(p.StopIDs)-1]); err == nil {
						endPoint = st.Name
					}
				}
				route, err := store.CreateRoute(ctx, transport.CreateRouteRequest{
					PathID:      p.ID,
					DisplayName: fmt.Sprintf("%s - %s", p.Name, shiftTime),
					ShiftTime:   shiftTime,
					Direction:   direction,
					StartPoint:  startPoint,
					EndPoint:    endPoint,
					Status:      transport.RouteActive,
				})
				if err != nil {
					return "", err
				}
				events.BroadcastEvent(ctx, broadcast.EventRouteCreated, broadcast.RouteEvent{
					RouteID:     route.ID,
					DisplayName: route.DisplayName,
					Status:      route.Status,
				})
				return fmt.Sprintf("✅ Created route '%s' (ID: %d)", route.DisplayName, route.ID), nil
			},
		},
		{
			Spec: llm.ToolSpec{
				Name:        "deactivate_route",
				Description: "Deactivates a route. HIGH CONSEQUENCE ACTION: may affect active trips using this route.",
				Parameters: objectSchema(map[string]any{
					"route_name": map[string]any{"type": "string", "description": "The display name of the route, e.g. 'Path-1 - 07:00'"},
				}, "route_name"),
			},
			Run: func(ctx context.Context, args map[string]any) (string, error) {
				name, err := stringArg(args, "route_name")
				if err != nil {
					return "", err
				}
				route, err := store.FindRouteByName(ctx, name)
				if err != nil {
					return "", err
				}
				if route.Status == transport.RouteDeactivated {
					return fmt.Sprintf("Route '%s' is already deactivated.", route.DisplayName), nil
				}
				if err := store.UpdateRouteStatus(ctx, route.ID, transport.RouteDeactivated); err != nil {
					return "", err
				}
				events.BroadcastEvent(ctx, broadcast.EventRouteUpdated, broadcast.RouteEvent{
					RouteID:     route.ID,
					DisplayName: route.DisplayName,
					Status:      transport.RouteDeactivated,
				})
				return fmt.Sprintf("✅ Route '%s' has been deactivated", route.DisplayName), nil
			},
		},
		{
			Spec: llm.ToolSpec{
				Name:        "get_all_drivers",
				Description: "Lists all drivers with their phone numbers, optionally only those currently assigned to trips.",
				Parameters: objectSchema(map[string]any{
					"assigned_only": map[string]any{"type": "boolean", "description": "If true, only show drivers currently assigned to trips"},
				}),
			},
			ReadOnly: true,
			Run: func(ctx context.Context, args map[string]any) (string, error) {
				assignedOnly, err := optBoolArg(args, "assigned_only", false)
				if err != nil {
					return "", err
				}
				var drivers []transport.Driver
				if assignedOnly {
					drivers, err = store.ListAssignedDrivers(ctx)
				} else {
					drivers, err = store.ListDrivers(ctx)
				}
				if err != nil {
					return "", err
				}
				if len(drivers) == 0 {
					return "No drivers found.", nil
				}
				shown := drivers
				if len(shown) > 10 {
					shown = shown[:10]
				}
				entries := make([]string, 0, len(shown))
				for _, d := range shown {
					entries = append(entries, fmt.Sprintf("%s (%s)", d.Name, d.PhoneNumber))
				}
				list := strings.Join(entries, ", ")
				if len(drivers) > 10 {
					list += fmt.Sprintf(", ... and %d more", len(drivers)-10)
				}
				return fmt.Sprintf("Drivers (%d): %s", len(drivers), list), nil
			},
		},
		{
			Spec: llm.ToolSpec{
				Name:        "get_vehicle_details",
				Description: "Gets detailed information about a specific vehicle, including its current assignment.",
				Parameters: objectSchema(map[string]any{
					"license_plate": map[string]any{"type": "string", "description": "The license plate of the vehicle, e.g. 'KA-01-AB-1234'"},
				}, "license_plate"),
			},
			ReadOnly: true,
			Run: func(ctx context.Context, args map[string]any) (string, error) {
				plate, err := stringArg(args, "license_plate")
				if err != nil {
					return "", err
				}
				vehicle, err := store.FindVehicleByPlate(ctx, plate)
				if err != nil {
					return "", err
				}
				assignment := "Not assigned"
				trip, err := store.FindTripByVehicle(ctx, vehicle.ID)
				switch {
				case err == nil:
					assignment = fmt.Sprintf("Assigned to trip '%s'", trip.DisplayName)
				case !errors.Is(err, domain.ErrNotFound):
					return "", err
				}
				return fmt.Sprintf("Vehicle %s: Type: %s, Capacity: %d, Status: %s",
					vehicle.LicensePlate, vehicle.Type, vehicle.Capacity, assignment), nil
			},
		},
	}
}
