package client

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/pkordes/tripsync/internal/domain"
)

// CreateInvite mints a shareable invite token for a trip.
func (c *Client) CreateInvite(ctx context.Context, tripID uuid.UUID) (domain.Invite, error) {
	var inv domain.Invite
	err := c.do(ctx, http.MethodPost, "/api/trips/"+tripID.String()+"/invites", nil, &inv)
	return inv, err
}

// ResolveInvite looks up an invite token. domain.ErrNotFound is the
// expected result for an unknown or mistyped token; render it as an
// informative message, not a failure.
func (c *Client) ResolveInvite(ctx context.Context, token string) (domain.Invite, error) {
	var inv domain.Invite
	err := c.get(ctx, "/api/invites/"+token, &inv)
	return inv, err
}

// Join adds this client's identity to the trip behind the token and
// returns the trip id. Idempotent: joining again (including a creator
// joining their own trip) changes nothing and still returns the id.
func (c *Client) Join(ctx context.Context, token string) (uuid.UUID, error) {
	var resp struct {
		TripID uuid.UUID `json:"trip_id"`
	}
	err := c.do(ctx, http.MethodPost, "/api/invites/"+token+"/join", nil, &resp)
	return resp.TripID, err
}
