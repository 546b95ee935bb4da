package client

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/pkordes/tripsync/internal/domain"
	"github.com/pkordes/tripsync/internal/live"
	"github.com/pkordes/tripsync/internal/realtime"
)

// AddMember upserts a membership row. An empty m.Identity enrolls this
// client's own identity. Adding the same identity twice updates the row
// in place; it never duplicates.
func (c *Client) AddMember(ctx context.Context, tripID uuid.UUID, m domain.Member) (domain.Member, error) {
	var added domain.Member
	err := c.do(ctx, http.MethodPost, "/api/trips/"+tripID.String()+"/members", m, &added)
	return added, err
}

// ListMembers returns a trip's members in join order.
func (c *Client) ListMembers(ctx context.Context, tripID uuid.UUID) ([]domain.Member, error) {
	var members []domain.Member
	err := c.get(ctx, "/api/trips/"+tripID.String()+"/members", &members)
	return members, err
}

// SubscribeMembers delivers membership snapshots for a trip.
func (c *Client) SubscribeMembers(tripID uuid.UUID, deliver func([]domain.Member)) live.CancelFunc {
	fetch := func(ctx context.Context) ([]domain.Member, error) { return c.ListMembers(ctx, tripID) }
	return live.Subscribe(c.mux, realtime.TopicMembers(tripID), fetch, deliver)
}
