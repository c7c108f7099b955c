// Package database defines the transport datastore port (interface).
package database

import (
	"context"

	"github.com/moveinsync/movi/internal/domain/transport"
)

// Store is the port interface for transport data operations.
type Store interface {
	// Stops
	ListStops(ctx context.Context) ([]transport.Stop, error)
	GetStop(ctx context.Context, id int64) (*transport.Stop, error)
	FindStopByName(ctx context.Context, name string) (*transport.Stop, error)
	CreateStop(ctx context.Context, req transport.CreateStopRequest) (*transport.Stop, error)

	// Paths
	ListPaths(ctx context.Context) ([]transport.Path, error)
	GetPath(ctx context.Context, id int64) (*transport.Path, error)
	FindPathByName(ctx context.Context, name string) (*transport.Path, error)
	CreatePath(ctx context.Context, req transport.CreatePathRequest) (*transport.Path, error)

	// Routes
	ListRoutes(ctx context.Context) ([]transport.Route, error)
	ListRoutesByPath(ctx context.Context, pathID int64) ([]transport.Route, error)
	GetRoute(ctx context.Context, id int64) (*transport.Route, error)
	FindRouteByName(ctx context.Context, displayName string) (*transport.Route, error)
	CreateRoute(ctx context.Context, req transport.CreateRouteRequest) (*transport.Route, error)
	UpdateRouteStatus(ctx context.Context, id int64, status string) error

	// Vehicles
	ListVehicles(ctx context.Context) ([]transport.Vehicle, error)
	GetVehicle(ctx context.Context, id int64) (*transport.Vehicle, error)
	FindVehicleByPlate(ctx context.Context, licensePlate string) (*transport.Vehicle, error)
	ListUnassignedVehicles(ctx context.Context) ([]transport.Vehicle, error)
	FindTripByVehicle(ctx context.Context, vehicleID int64) (*transport.Trip, error)

	// Drivers
	ListDrivers(ctx context.Context) ([]transport.Driver, error)
	GetDriver(ctx context.Context, id int64) (*transport.Driver, error)
	FindDriverByName(ctx context.Context, name string) (*transport.Driver, error)
	ListAssignedDrivers(ctx context.Context) ([]transport.Driver, error)

	// Trips
	ListTrips(ctx context.Context) ([]transport.TripDetail, error)
	GetTrip(ctx context.Context, id int64) (*transport.TripDetail, error)
	FindTripByName(ctx context.Context, displayName string) (*transport.TripDetail, error)
	ListTripsByRoute(ctx context.Context, routeID int64) ([]transport.Trip, error)
	CreateTrip(ctx context.Context, req transport.CreateTripRequest) (*transport.Trip, error)
	DeleteTrip(ctx context.Context, id int64) error
	UpdateTripStatus(ctx context.Context, id int64, liveStatus string) error

	// Deployments
	AssignVehicle(ctx context.Context, tripID, vehicleID int64) error
	RemoveVehicle(ctx context.Context, tripID int64) error
	AssignDriver(ctx context.Context, tripID, driverID int64) error

	Close() error
}
