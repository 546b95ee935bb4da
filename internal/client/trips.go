package client

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/pkordes/tripsync/internal/domain"
	"github.com/pkordes/tripsync/internal/live"
	"github.com/pkordes/tripsync/internal/realtime"
)

// CreateTrip creates a trip owned by this client's identity. Name and both
// dates are required; the gateway assigns id and created_at.
//
// A new trip has no membership rows: callers wanting the owner listed as a
// member issue AddMember separately. The two writes are independent, so
// callers must tolerate the pair completing partially.
func (c *Client) CreateTrip(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	var created domain.Trip
	err := c.do(ctx, http.MethodPost, "/api/trips", trip, &created)
	return created, err
}

// GetTrip returns one trip by id.
func (c *Client) GetTrip(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	var trip domain.Trip
	err := c.get(ctx, "/api/trips/"+id.String(), &trip)
	return trip, err
}

// ListTrips returns the trips owned by this client's identity.
func (c *Client) ListTrips(ctx context.Context) ([]domain.Trip, error) {
	var trips []domain.Trip
	err := c.get(ctx, "/api/trips", &trips)
	return trips, err
}

// PatchTrip merges the patch's non-nil fields into the trip.
func (c *Client) PatchTrip(ctx context.Context, id uuid.UUID, patch domain.TripPatch) (domain.Trip, error) {
	var updated domain.Trip
	err := c.do(ctx, http.MethodPatch, "/api/trips/"+id.String(), patch, &updated)
	return updated, err
}

// SubscribeTrips delivers the owned-trip list now and again on every
// change (push) or every poll tick. Callers must invoke the returned
// cancel when the view goes away, or the subscription leaks.
func (c *Client) SubscribeTrips(deliver func([]domain.Trip)) live.CancelFunc {
	return live.Subscribe(c.mux, realtime.TopicTrips, c.ListTrips, deliver)
}

// SubscribeTrip delivers one trip's document snapshots.
func (c *Client) SubscribeTrip(id uuid.UUID, deliver func(domain.Trip)) live.CancelFunc {
	fetch := func(ctx context.Context) (domain.Trip, error) { return c.GetTrip(ctx, id) }
	return live.Subscribe(c.mux, realtime.TopicTrip(id), fetch, deliver)
}
