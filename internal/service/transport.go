package service

import (
	"context"
	"log/slog"

	"github.com/moveinsync/movi/internal/domain/transport"
	"github.com/moveinsync/movi/internal/port/database"
)

// TransportService exposes the read side of the fleet to the REST API:
// the dashboard and route builder render from these lists.
type TransportService struct {
	store  database.Store
	logger *slog.Logger
}

// NewTransportService creates a TransportService over the given store.
func NewTransportService(store database.Store, logger *slog.Logger) *TransportService {
	return &TransportService{store: store, logger: logger}
}

func (s *TransportService) ListStops(ctx context.Context) ([]transport.Stop, error) {
	return s.store.ListStops(ctx)
}

func (s *TransportService) ListPaths(ctx context.Context) ([]transport.Path, error) {
	return s.store.ListPaths(ctx)
}

func (s *TransportService) ListRoutes(ctx context.Context) ([]transport.Route, error) {
	return s.store.ListRoutes(ctx)
}

func (s *TransportService) ListVehicles(ctx context.Context) ([]transport.Vehicle, error) {
	return s.store.ListVehicles(ctx)
}

func (s *TransportService) ListDrivers(ctx context.Context) ([]transport.Driver, error) {
	return s.store.ListDrivers(ctx)
}

// ListTrips returns trips joined with their vehicle and driver assignments.
func (s *TransportService) ListTrips(ctx context.Context) ([]transport.TripDetail, error) {
	return s.store.ListTrips(ctx)
}
