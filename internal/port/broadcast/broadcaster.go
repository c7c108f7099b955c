// Package broadcast defines the port for pushing real-time fleet events to connected clients.
package broadcast

import "context"

// Event types published by the agent and CRUD services.
const (
	EventTripCreated  = "trip.created"
	EventTripUpdated  = "trip.updated"
	EventTripDeleted  = "trip.deleted"
	EventRouteCreated = "route.created"
	EventRouteUpdated = "route.updated"
	EventConfirmation = "agent.confirmation"
)

// TripEvent is the payload for trip.created, trip.updated and trip.deleted.
type TripEvent struct {
	TripID      int64  `json:"trip_id"`
	DisplayName string `json:"display_name"`
	LiveStatus  string `json:"live_status,omitempty"`
}

// RouteEvent is the payload for route.created and route.updated.
type RouteEvent struct {
	RouteID     int64  `json:"route_id"`
	DisplayName string `json:"route_display_name"`
	Status      string `json:"status"`
}

// ConfirmationEvent is the payload for agent.confirmation, emitted when the
// agent parks a high-risk action and waits for the user's yes/no.
type ConfirmationEvent struct {
	SessionID string   `json:"session_id"`
	Tool      string   `json:"tool"`
	Warnings  []string `json:"warnings"`
}

// Broadcaster sends real-time events to all connected clients.
type Broadcaster interface {
	// BroadcastEvent sends a typed event to all connected clients.
	BroadcastEvent(ctx context.Context, eventType string, payload any)
}
