// Package transport defines the entities of the Movi transport domain:
// the static network (stops, paths, routes) shown on the manageRoute page
// and the dynamic assets (vehicles, drivers, daily trips, deployments)
// shown on the busDashboard page.
package transport

// Route status values.
const (
	RouteActive      = "active"
	RouteDeactivated = "deactivated"
)

// Stop is a physical stop location.
type Stop struct {
	ID        int64   `json:"stop_id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Path is an ordered sequence of stops.
type Path struct {
	ID      int64   `json:"path_id"`
	Name    string  `json:"path_name"`
	StopIDs []int64 `json:"ordered_list_of_stop_ids"`
}

// Route binds a path to a shift time and direction.
type Route struct {
	ID          int64  `json:"route_id"`
	PathID      int64  `json:"path_id"`
	DisplayName string `json:"route_display_name"`
	ShiftTime   string `json:"shift_time"`
	Direction   string `json:"direction"`
	StartPoint  string `json:"start_point"`
	EndPoint    string `json:"end_point"`
	Status      string `json:"status"`
}

// Vehicle is a bus or cab in the fleet.
type Vehicle struct {
	ID           int64  `json:"vehicle_id"`
	LicensePlate string `json:"license_plate"`
	Type         string `json:"type"`
	Capacity     int    `json:"capacity"`
}

// Driver is a driver available for deployment.
type Driver struct {
	ID          int64  `json:"driver_id"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
}

// Trip is a daily trip instance on a route.
type Trip struct {
	ID          int64   `json:"trip_id"`
	RouteID     int64   `json:"route_id"`
	DisplayName string  `json:"display_name"`
	BookingPct  float64 `json:"booking_status_percentage"`
	LiveStatus  string  `json:"live_status"`
}

// Deployment links a trip to its assigned vehicle and driver.
// Either assignment may be absent.
type Deployment struct {
	ID        int64  `json:"deployment_id"`
	TripID    int64  `json:"trip_id"`
	VehicleID *int64 `json:"vehicle_id"`
	DriverID  *int64 `json:"driver_id"`
}

// TripDetail is a trip joined with its deployment for the dashboard.
type TripDetail struct {
	Trip
	Vehicle *Vehicle `json:"vehicle"`
	Driver  *Driver  `json:"driver"`
}

// CreateStopRequest carries the fields for creating a stop.
type CreateStopRequest struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CreatePathRequest carries the resolved fields for creating a path.
// Callers resolve stop names to IDs before reaching the store.
type CreatePathRequest struct {
	Name    string  `json:"path_name"`
	StopIDs []int64 `json:"ordered_list_of_stop_ids"`
}

// CreateTripRequest carries the resolved fields for creating a daily trip.
// Callers resolve route names to IDs before reaching the store.
type CreateTripRequest struct {
	RouteID     int64   `json:"route_id"`
	DisplayName string  `json:"display_name"`
	BookingPct  float64 `json:"booking_status_percentage"`
	LiveStatus  string  `json:"live_status"`
}

// CreateRouteRequest carries the resolved fields for creating a route on a path.
type CreateRouteRequest struct {
	PathID      int64  `json:"path_id"`
	DisplayName string `json:"route_display_name"`
	ShiftTime   string `json:"shift_time"`
	Direction   string `json:"direction"`
	StartPoint  string `json:"start_point"`
	EndPoint    string `json:"end_point"`
	Status      string `json:"status"`
}
