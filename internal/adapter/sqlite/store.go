package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/moveinsync/movi/internal/domain"
	"github.com/moveinsync/movi/internal/domain/transport"
)

// Store implements database.Store using SQLite.
type Store struct {
	db *sql.DB
}

// NewStore creates a Store backed by the given database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// scannable abstracts *sql.Row and *sql.Rows for shared scan helpers.
type scannable interface {
	Scan(dest ...any) error
}

// notFoundWrap maps sql.ErrNoRows onto domain.ErrNotFound, keeping the query context.
func notFoundWrap(err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", msg, domain.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// execExpectOne verifies that an Exec affected at least one row. If not
// (and err is nil), it returns domain.ErrNotFound with the given message.
func execExpectOne(res sql.Result, err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", msg, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", msg, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", msg, domain.ErrNotFound)
	}
	return nil
}

// --- Stops ---

func scanStop(row scannable) (transport.Stop, error) {
	var st transport.Stop
	err := row.Scan(&st.ID, &st.Name, &st.Latitude, &st.Longitude)
	return st, err
}

func (s *Store) ListStops(ctx context.Context) ([]transport.Stop, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT stop_id, name, latitude, longitude FROM stops ORDER BY stop_id`)
	if err != nil {
		return nil, fmt.Errorf("list stops: %w", err)
	}
	defer rows.Close()

	var stops []transport.Stop
	for rows.Next() {
		st, err := scanStop(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stop: %w", err)
		}
		stops = append(stops, st)
	}
	return stops, rows.Err()
}

func (s *Store) GetStop(ctx context.Context, id int64) (*transport.Stop, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT stop_id, name, latitude, longitude FROM stops WHERE stop_id = ?`, id)
	st, err := scanStop(row)
	if err != nil {
		return nil, notFoundWrap(err, "get stop %d", id)
	}
	return &st, nil
}

func (s *Store) FindStopByName(ctx context.Context, name string) (*transport.Stop, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT stop_id, name, latitude, longitude FROM stops WHERE name = ? COLLATE NOCASE`, name)
	st, err := scanStop(row)
	if err != nil {
		return nil, notFoundWrap(err, "find stop %q", name)
	}
	return &st, nil
}

func (s *Store) CreateStop(ctx context.Context, req transport.CreateStopRequest) (*transport.Stop, error) {
	if _, err := s.FindStopByName(ctx, req.Name); err == nil {
		return nil, fmt.Errorf("create stop %q: %w", req.Name, domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("create stop: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO stops (name, latitude, longitude) VALUES (?, ?, ?)`,
		req.Name, req.Latitude, req.Longitude)
	if err != nil {
		return nil, fmt.Errorf("create stop: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create stop: %w", err)
	}
	return s.GetStop(ctx, id)
}

// --- Paths ---

func scanPath(row scannable) (transport.Path, error) {
	var p transport.Path
	var stopIDs string
	if err := row.Scan(&p.ID, &p.Name, &stopIDs); err != nil {
		return p, err
	}
	if err := json.Unmarshal([]byte(stopIDs), &p.StopIDs); err != nil {
		return p, fmt.Errorf("decode stop ids: %w", err)
	}
	return p, nil
}

func (s *Store) ListPaths(ctx context.Context) ([]transport.Path, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path_id, path_name, ordered_list_of_stop_ids FROM paths ORDER BY path_id`)
	if err != nil {
		return nil, fmt.Errorf("list paths: %w", err)
	}
	defer rows.Close()

	var paths []transport.Path
	for rows.Next() {
		p, err := scanPath(rows)
		if err != nil {
			return nil, fmt.Errorf("scan path: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

func (s *Store) GetPath(ctx context.Context, id int64) (*transport.Path, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT path_id, path_name, ordered_list_of_stop_ids FROM paths WHERE path_id = ?`, id)
	p, err := scanPath(row)
	if err != nil {
		return nil, notFoundWrap(err, "get path %d", id)
	}
	return &p, nil
}

func (s *Store) FindPathByName(ctx context.Context, name string) (*transport.Path, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT path_id, path_name, ordered_list_of_stop_ids FROM paths WHERE path_name = ? COLLATE NOCASE`, name)
	p, err := scanPath(row)
	if err != nil {
		return nil, notFoundWrap(err, "find path %q", name)
	}
	return &p, nil
}

func (s *Store) CreatePath(ctx context.Context, req transport.CreatePathRequest) (*transport.Path, error) {
	if _, err := s.FindPathByName(ctx, req.Name); err == nil {
		return nil, fmt.Errorf("create path %q: %w", req.Name, domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("create path: %w", err)
	}
	for _, stopID := range req.StopIDs {
		if _, err := s.GetStop(ctx, stopID); err != nil {
			return nil, fmt.Errorf("create path: %w", err)
		}
	}

	encoded, err := json.Marshal(req.StopIDs)
	if err != nil {
		return nil, fmt.Errorf("create path: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO paths (path_name, ordered_list_of_stop_ids) VALUES (?, ?)`,
		req.Name, string(encoded))
	if err != nil {
		return nil, fmt.Errorf("create path: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create path: %w", err)
	}
	return s.GetPath(ctx, id)
}

// --- Routes ---

func scanRoute(row scannable) (transport.Route, error) {
	var r transport.Route
	err := row.Scan(&r.ID, &r.PathID, &r.DisplayName, &r.ShiftTime,
		&r.Direction, &r.StartPoint, &r.EndPoint, &r.Status)
	return r, err
}

const routeColumns = `route_id, path_id, route_display_name, shift_time, direction, start_point, end_point, status`

func (s *Store) ListRoutes(ctx context.Context) ([]transport.Route, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+routeColumns+` FROM routes ORDER BY route_id`)
	if err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}
	defer rows.Close()

	var routes []transport.Route
	for rows.Next() {
		r, err := scanRoute(rows)
		if err != nil {
			return nil, fmt.Errorf("scan route: %w", err)
		}
		routes = append(routes, r)
	}
	return routes, rows.Err()
}

func (s *Store) ListRoutesByPath(ctx context.Context, pathID int64) ([]transport.Route, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+routeColumns+` FROM routes WHERE path_id = ? ORDER BY route_id`, pathID)
	if err != nil {
		return nil, fmt.Errorf("list routes for path %d: %w", pathID, err)
	}
	defer rows.Close()

	var routes []transport.Route
	for rows.Next() {
		r, err := scanRoute(rows)
		if err != nil {
			return nil, fmt.Errorf("scan route: %w", err)
		}
		routes = append(routes, r)
	}
	return routes, rows.Err()
}

func (s *Store) GetRoute(ctx context.Context, id int64) (*transport.Route, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+routeColumns+` FROM routes WHERE route_id = ?`, id)
	r, err := scanRoute(row)
	if err != nil {
		return nil, notFoundWrap(err, "get route %d", id)
	}
	return &r, nil
}

// FindRouteByName matches the display name case-insensitively so spoken
// route names resolve without exact casing.
func (s *Store) FindRouteByName(ctx context.Context, displayName string) (*transport.Route, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+routeColumns+` FROM routes WHERE route_display_name = ? COLLATE NOCASE`, displayName)
	r, err := scanRoute(row)
	if err != nil {
		return nil, notFoundWrap(err, "find route %q", displayName)
	}
	return &r, nil
}

func (s *Store) CreateRoute(ctx context.Context, req transport.CreateRouteRequest) (*transport.Route, error) {
	if _, err := s.GetPath(ctx, req.PathID); err != nil {
		return nil, fmt.Errorf("create route: %w", err)
	}

	status := req.Status
	if status == "" {
		status = transport.RouteActive
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO routes (path_id, route_display_name, shift_time, direction, start_point, end_point, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		req.PathID, req.DisplayName, req.ShiftTime, req.Direction, req.StartPoint, req.EndPoint, status)
	if err != nil {
		return nil, fmt.Errorf("create route: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create route: %w", err)
	}
	return s.GetRoute(ctx, id)
}

func (s *Store) UpdateRouteStatus(ctx context.Context, id int64, status string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE routes SET status = ? WHERE route_id = ?`, status, id)
	return execExpectOne(res, err, "update route %d status", id)
}

// --- Vehicles ---

func scanVehicle(row scannable) (transport.Vehicle, error) {
	var v transport.Vehicle
	err := row.Scan(&v.ID, &v.LicensePlate, &v.Type, &v.Capacity)
	return v, err
}

func (s *Store) ListVehicles(ctx context.Context) ([]transport.Vehicle, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT vehicle_id, license_plate, type, capacity FROM vehicles ORDER BY vehicle_id`)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []transport.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vehicle: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

func (s *Store) GetVehicle(ctx context.Context, id int64) (*transport.Vehicle, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT vehicle_id, license_plate, type, capacity FROM vehicles WHERE vehicle_id = ?`, id)
	v, err := scanVehicle(row)
	if err != nil {
		return nil, notFoundWrap(err, "get vehicle %d", id)
	}
	return &v, nil
}

func (s *Store) FindVehicleByPlate(ctx context.Context, licensePlate string) (*transport.Vehicle, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT vehicle_id, license_plate, type, capacity FROM vehicles WHERE license_plate = ? COLLATE NOCASE`, licensePlate)
	v, err := scanVehicle(row)
	if err != nil {
		return nil, notFoundWrap(err, "find vehicle %q", licensePlate)
	}
	return &v, nil
}

func (s *Store) ListUnassignedVehicles(ctx context.Context) ([]transport.Vehicle, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT vehicle_id, license_plate, type, capacity FROM vehicles
		 WHERE vehicle_id NOT IN (SELECT vehicle_id FROM deployments WHERE vehicle_id IS NOT NULL)
		 ORDER BY vehicle_id`)
	if err != nil {
		return nil, fmt.Errorf("list unassigned vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []transport.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vehicle: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

func (s *Store) FindTripByVehicle(ctx context.Context, vehicleID int64) (*transport.Trip, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT t.trip_id, t.route_id, t.display_name, t.booking_status_percentage, t.live_status
		 FROM daily_trips t
		 JOIN deployments dep ON dep.trip_id = t.trip_id
		 WHERE dep.vehicle_id = ?`, vehicleID)
	var t transport.Trip
	if err := row.Scan(&t.ID, &t.RouteID, &t.DisplayName, &t.BookingPct, &t.LiveStatus); err != nil {
		return nil, notFoundWrap(err, "find trip for vehicle %d", vehicleID)
	}
	return &t, nil
}

// --- Drivers ---

func scanDriver(row scannable) (transport.Driver, error) {
	var d transport.Driver
	err := row.Scan(&d.ID, &d.Name, &d.PhoneNumber)
	return d, err
}

func (s *Store) ListDrivers(ctx context.Context) ([]transport.Driver, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT driver_id, name, phone_number FROM drivers ORDER BY driver_id`)
	if err != nil {
		return nil, fmt.Errorf("list drivers: %w", err)
	}
	defer rows.Close()

	var drivers []transport.Driver
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, fmt.Errorf("scan driver: %w", err)
		}
		drivers = append(drivers, d)
	}
	return drivers, rows.Err()
}

func (s *Store) GetDriver(ctx context.Context, id int64) (*transport.Driver, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT driver_id, name, phone_number FROM drivers WHERE driver_id = ?`, id)
	d, err := scanDriver(row)
	if err != nil {
		return nil, notFoundWrap(err, "get driver %d", id)
	}
	return &d, nil
}

func (s *Store) FindDriverByName(ctx context.Context, name string) (*transport.Driver, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT driver_id, name, phone_number FROM drivers WHERE name = ? COLLATE NOCASE`, name)
	d, err := scanDriver(row)
	if err != nil {
		return nil, notFoundWrap(err, "find driver %q", name)
	}
	return &d, nil
}

func (s *Store) ListAssignedDrivers(ctx context.Context) ([]transport.Driver, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT driver_id, name, phone_number FROM drivers
		 WHERE driver_id IN (SELECT driver_id FROM deployments WHERE driver_id IS NOT NULL)
		 ORDER BY driver_id`)
	if err != nil {
		return nil, fmt.Errorf("list assigned drivers: %w", err)
	}
	defer rows.Close()

	var drivers []transport.Driver
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, fmt.Errorf("scan driver: %w", err)
		}
		drivers = append(drivers, d)
	}
	return drivers, rows.Err()
}

// --- Trips ---

const tripDetailQuery = `
	SELECT t.trip_id, t.route_id, t.display_name, t.booking_status_percentage, t.live_status,
	       v.vehicle_id, v.license_plate, v.type, v.capacity,
	       d.driver_id, d.name, d.phone_number
	FROM daily_trips t
	LEFT JOIN deployments dep ON dep.trip_id = t.trip_id
	LEFT JOIN vehicles v ON v.vehicle_id = dep.vehicle_id
	LEFT JOIN drivers d ON d.driver_id = dep.driver_id`

func scanTripDetail(row scannable) (transport.TripDetail, error) {
	var td transport.TripDetail
	var (
		vehID    sql.NullInt64
		vehPlate sql.NullString
		vehType  sql.NullString
		vehCap   sql.NullInt64
		drvID    sql.NullInt64
		drvName  sql.NullString
		drvPhone sql.NullString
	)
	err := row.Scan(&td.ID, &td.RouteID, &td.DisplayName, &td.BookingPct, &td.LiveStatus,
		&vehID, &vehPlate, &vehType, &vehCap,
		&drvID, &drvName, &drvPhone)
	if err != nil {
		return td, err
	}
	if vehID.Valid {
		td.Vehicle = &transport.Vehicle{
			ID:           vehID.Int64,
			LicensePlate: vehPlate.String,
			Type:         vehType.String,
			Capacity:     int(vehCap.Int64),
		}
	}
	if drvID.Valid {
		td.Driver = &transport.Driver{
			ID:          drvID.Int64,
			Name:        drvName.String,
			PhoneNumber: drvPhone.String,
		}
	}
	return td, nil
}

func (s *Store) ListTrips(ctx context.Context) ([]transport.TripDetail, error) {
	rows, err := s.db.QueryContext(ctx, tripDetailQuery+` ORDER BY t.trip_id`)
	if err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}
	defer rows.Close()

	var trips []transport.TripDetail
	for rows.Next() {
		td, err := scanTripDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trip: %w", err)
		}
		trips = append(trips, td)
	}
	return trips, rows.Err()
}

func (s *Store) GetTrip(ctx context.Context, id int64) (*transport.TripDetail, error) {
	row := s.db.QueryRowContext(ctx, tripDetailQuery+` WHERE t.trip_id = ?`, id)
	td, err := scanTripDetail(row)
	if err != nil {
		return nil, notFoundWrap(err, "get trip %d", id)
	}
	return &td, nil
}

func (s *Store) FindTripByName(ctx context.Context, displayName string) (*transport.TripDetail, error) {
	row := s.db.QueryRowContext(ctx, tripDetailQuery+` WHERE t.display_name = ? COLLATE NOCASE`, displayName)
	td, err := scanTripDetail(row)
	if err != nil {
		return nil, notFoundWrap(err, "find trip %q", displayName)
	}
	return &td, nil
}

func (s *Store) ListTripsByRoute(ctx context.Context, routeID int64) ([]transport.Trip, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT trip_id, route_id, display_name, booking_status_percentage, live_status
		 FROM daily_trips WHERE route_id = ? ORDER BY trip_id`, routeID)
	if err != nil {
		return nil, fmt.Errorf("list trips for route %d: %w", routeID, err)
	}
	defer rows.Close()

	var trips []transport.Trip
	for rows.Next() {
		var t transport.Trip
		if err := rows.Scan(&t.ID, &t.RouteID, &t.DisplayName, &t.BookingPct, &t.LiveStatus); err != nil {
			return nil, fmt.Errorf("scan trip: %w", err)
		}
		trips = append(trips, t)
	}
	return trips, rows.Err()
}

func (s *Store) CreateTrip(ctx context.Context, req transport.CreateTripRequest) (*transport.Trip, error) {
	if _, err := s.GetRoute(ctx, req.RouteID); err != nil {
		return nil, fmt.Errorf("create trip: %w", err)
	}

	liveStatus := req.LiveStatus
	if liveStatus == "" {
		liveStatus = "NOT STARTED"
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("create trip: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO daily_trips (route_id, display_name, booking_status_percentage, live_status)
		 VALUES (?, ?, ?, ?)`,
		req.RouteID, req.DisplayName, req.BookingPct, liveStatus)
	if err != nil {
		return nil, fmt.Errorf("create trip: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create trip: %w", err)
	}

	// Every trip carries a deployment row, initially unassigned.
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO deployments (trip_id, vehicle_id, driver_id) VALUES (?, NULL, NULL)`, id); err != nil {
		return nil, fmt.Errorf("create trip deployment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("create trip: %w", err)
	}

	return &transport.Trip{
		ID:          id,
		RouteID:     req.RouteID,
		DisplayName: req.DisplayName,
		BookingPct:  req.BookingPct,
		LiveStatus:  liveStatus,
	}, nil
}

func (s *Store) DeleteTrip(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM daily_trips WHERE trip_id = ?`, id)
	return execExpectOne(res, err, "delete trip %d", id)
}

func (s *Store) UpdateTripStatus(ctx context.Context, id int64, liveStatus string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE daily_trips SET live_status = ? WHERE trip_id = ?`, liveStatus, id)
	return execExpectOne(res, err, "update trip %d status", id)
}

// --- Deployments ---

// ensureDeployment guarantees a deployment row exists for the trip.
// Seeded trips always have one; this covers rows created by hand.
func (s *Store) ensureDeployment(ctx context.Context, tripID int64) error {
	if _, err := s.GetTrip(ctx, tripID); err != nil {
		return err
	}
	var n int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM deployments WHERE trip_id = ?`, tripID).Scan(&n); err != nil {
		return fmt.Errorf("count deployments for trip %d: %w", tripID, err)
	}
	if n == 0 {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO deployments (trip_id, vehicle_id, driver_id) VALUES (?, NULL, NULL)`, tripID); err != nil {
			return fmt.Errorf("create deployment for trip %d: %w", tripID, err)
		}
	}
	return nil
}

func (s *Store) AssignVehicle(ctx context.Context, tripID, vehicleID int64) error {
	if _, err := s.GetVehicle(ctx, vehicleID); err != nil {
		return fmt.Errorf("assign vehicle: %w", err)
	}
	if err := s.ensureDeployment(ctx, tripID); err != nil {
		return fmt.Errorf("assign vehicle: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE deployments SET vehicle_id = ? WHERE trip_id = ?`, vehicleID, tripID)
	return execExpectOne(res, err, "assign vehicle %d to trip %d", vehicleID, tripID)
}

func (s *Store) RemoveVehicle(ctx context.Context, tripID int64) error {
	if err := s.ensureDeployment(ctx, tripID); err != nil {
		return fmt.Errorf("remove vehicle: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE deployments SET vehicle_id = NULL WHERE trip_id = ?`, tripID)
	return execExpectOne(res, err, "remove vehicle from trip %d", tripID)
}

func (s *Store) AssignDriver(ctx context.Context, tripID, driverID int64) error {
	if _, err := s.GetDriver(ctx, driverID); err != nil {
		return fmt.Errorf("assign driver: %w", err)
	}
	if err := s.ensureDeployment(ctx, tripID); err != nil {
		return fmt.Errorf("assign driver: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE deployments SET driver_id = ? WHERE trip_id = ?`, driverID, tripID)
	return execExpectOne(res, err, "assign driver %d to trip %d", driverID, tripID)
}
