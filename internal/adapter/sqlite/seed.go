package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// Seed wipes the database and repopulates it with the demo fleet dataset.
// The "Bulk - 00:01" trip is seeded at 25% booking with a vehicle and
// driver assigned so the confirmation flow has something to warn about.
func Seed(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"deployments", "daily_trips", "routes", "paths", "stops", "vehicles", "drivers"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("seed: clear %s: %w", table, err)
		}
	}
	// Reset AUTOINCREMENT counters so re-seeding yields stable IDs.
	if _, err := tx.ExecContext(ctx, `DELETE FROM sqlite_sequence`); err != nil {
		return fmt.Errorf("seed: reset sequences: %w", err)
	}

	stops := []struct {
		name     string
		lat, lng float64
	}{
		{"Gavipuram", 12.9350, 77.5850},
		{"Peenya", 13.0330, 77.5200},
		{"Temple", 12.9480, 77.5820},
		{"Electronic City", 12.8450, 77.6600},
		{"Whitefield", 12.9698, 77.7499},
		{"Marathahalli", 12.9591, 77.6974},
		{"Koramangala", 12.9352, 77.6245},
		{"HSR Layout", 12.9121, 77.6446},
		{"Indiranagar", 12.9784, 77.6408},
		{"JP Nagar", 12.9082, 77.5855},
		{"BTM Layout", 12.9165, 77.6101},
		{"Jayanagar", 12.9250, 77.5937},
		{"MG Road", 12.9750, 77.6060},
		{"Bangalore Airport", 13.1986, 77.7066},
	}
	for _, st := range stops {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO stops (name, latitude, longitude) VALUES (?, ?, ?)`,
			st.name, st.lat, st.lng); err != nil {
			return fmt.Errorf("seed: stop %s: %w", st.name, err)
		}
	}

	paths := []struct {
		name    string
		stopIDs []int64
	}{
		{"Path-1", []int64{1, 3, 7, 13}},
		{"Path-2", []int64{2, 5, 6, 9}},
		{"Tech-Park-Route", []int64{4, 11, 12, 10}},
		{"Airport-Express", []int64{14, 13, 9, 5}},
		{"South-Loop", []int64{7, 8, 11, 10, 1}},
	}
	for _, p := range paths {
		encoded, err := json.Marshal(p.stopIDs)
		if err != nil {
			return fmt.Errorf("seed: path %s: %w", p.name, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO paths (path_name, ordered_list_of_stop_ids) VALUES (?, ?)`,
			p.name, string(encoded)); err != nil {
			return fmt.Errorf("seed: path %s: %w", p.name, err)
		}
	}

	routes := []struct {
		pathID             int64
		name, shift, dir   string
		start, end, status string
	}{
		{1, "Path-1 - 07:00", "07:00", "Inbound", "Gavipuram", "MG Road", "active"},
		{1, "Path-1 - 19:00", "19:00", "Outbound", "MG Road", "Gavipuram", "active"},
		{2, "Path-2 - 08:30", "08:30", "Inbound", "Peenya", "Indiranagar", "active"},
		{2, "Path-2 - 19:45", "19:45", "Outbound", "Indiranagar", "Peenya", "active"},
		{3, "Tech-Park-Route - 09:00", "09:00", "Inbound", "Electronic City", "JP Nagar", "active"},
		{4, "Airport-Express - 05:30", "05:30", "Inbound", "Bangalore Airport", "Whitefield", "active"},
		{5, "South-Loop - 06:45", "06:45", "Circular", "Koramangala", "Gavipuram", "active"},
		{5, "South-Loop - 18:00", "18:00", "Circular", "Koramangala", "Gavipuram", "deactivated"},
	}
	for _, r := range routes {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO routes (path_id, route_display_name, shift_time, direction, start_point, end_point, status)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			r.pathID, r.name, r.shift, r.dir, r.start, r.end, r.status); err != nil {
			return fmt.Errorf("seed: route %s: %w", r.name, err)
		}
	}

	vehicles := []struct {
		plate, vtype string
		capacity     int
	}{
		{"KA-01-AB-1234", "Bus", 40},
		{"KA-02-CD-5678", "Bus", 45},
		{"KA-03-EF-9012", "Bus", 40},
		{"MH-12-3456", "Bus", 50},
		{"KA-05-GH-3456", "Bus", 40},
		{"KA-06-IJ-7890", "Cab", 6},
		{"KA-07-KL-1234", "Cab", 4},
		{"KA-08-MN-5678", "Cab", 6},
		{"KA-09-OP-9012", "Bus", 40},
		{"KA-10-QR-3456", "Bus", 45},
	}
	for _, v := range vehicles {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO vehicles (license_plate, type, capacity) VALUES (?, ?, ?)`,
			v.plate, v.vtype, v.capacity); err != nil {
			return fmt.Errorf("seed: vehicle %s: %w", v.plate, err)
		}
	}

	drivers := []struct {
		name, phone string
	}{
		{"Amit Kumar", "+91-9876543210"},
		{"Rajesh Singh", "+91-9876543211"},
		{"Suresh Patel", "+91-9876543212"},
		{"Vijay Sharma", "+91-9876543213"},
		{"Prakash Reddy", "+91-9876543214"},
		{"Deepak Rao", "+91-9876543215"},
		{"Ravi Kumar", "+91-9876543216"},
		{"Anil Verma", "+91-9876543217"},
		{"Manoj Gupta", "+91-9876543218"},
		{"Sandeep Jain", "+91-9876543219"},
	}
	for _, d := range drivers {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO drivers (name, phone_number) VALUES (?, ?)`,
			d.name, d.phone); err != nil {
			return fmt.Errorf("seed: driver %s: %w", d.name, err)
		}
	}

	trips := []struct {
		routeID    int64
		name       string
		bookingPct float64
		liveStatus string
	}{
		{1, "Bulk - 00:01", 25.0, "00:01 IN"},
		{2, "Path-1 Evening - 19:00", 60.0, "DEPLOYED"},
		{3, "Path Path - 00:02", 0.0, "NOT STARTED"},
		{4, "Path-2 Evening - 19:45", 45.0, "DEPLOYED"},
		{5, "Tech-Park Morning", 80.0, "EN ROUTE"},
		{6, "Airport Express - 05:30", 30.0, "DEPLOYED"},
		{7, "South Circular - Morning", 15.0, "READY"},
		{1, "Path-1 Extra - 07:15", 0.0, "NOT STARTED"},
	}
	for _, t := range trips {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO daily_trips (route_id, display_name, booking_status_percentage, live_status)
			 VALUES (?, ?, ?, ?)`,
			t.routeID, t.name, t.bookingPct, t.liveStatus); err != nil {
			return fmt.Errorf("seed: trip %s: %w", t.name, err)
		}
	}

	deployments := []struct {
		tripID    int64
		vehicleID *int64
		driverID  *int64
	}{
		{1, ptr(int64(1)), ptr(int64(1))}, // Bulk - 00:01 gets KA-01-AB-1234 and Amit Kumar
		{2, ptr(int64(2)), ptr(int64(2))},
		{3, nil, nil},
		{4, ptr(int64(3)), ptr(int64(3))},
		{5, ptr(int64(4)), ptr(int64(4))},
		{6, ptr(int64(5)), ptr(int64(5))},
		{7, ptr(int64(6)), ptr(int64(6))},
		{8, nil, nil},
	}
	for _, d := range deployments {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO deployments (trip_id, vehicle_id, driver_id) VALUES (?, ?, ?)`,
			d.tripID, d.vehicleID, d.driverID); err != nil {
			return fmt.Errorf("seed: deployment for trip %d: %w", d.tripID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	return nil
}

func ptr[T any](v T) *T { return &v }
