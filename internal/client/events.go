package client

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/pkordes/tripsync/internal/domain"
	"github.com/pkordes/tripsync/internal/live"
	"github.com/pkordes/tripsync/internal/realtime"
)

// CreateEvent adds an itinerary event to a trip. The event's day must fall
// within the trip's dates and its time must be "HH:mm".
func (c *Client) CreateEvent(ctx context.Context, tripID uuid.UUID, e domain.Event) (domain.Event, error) {
	var created domain.Event
	err := c.do(ctx, http.MethodPost, "/api/trips/"+tripID.String()+"/events", e, &created)
	return created, err
}

// ListEvents returns a trip's events ordered by day, then time ascending,
// equal times in insertion order.
func (c *Client) ListEvents(ctx context.Context, tripID uuid.UUID) ([]domain.Event, error) {
	var events []domain.Event
	err := c.get(ctx, "/api/trips/"+tripID.String()+"/events", &events)
	return events, err
}

// DeleteEvent removes an event from the trip it belongs to.
func (c *Client) DeleteEvent(ctx context.Context, tripID, eventID uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/trips/"+tripID.String()+"/events/"+eventID.String(), nil, nil)
}

// SubscribeEvents delivers full itinerary snapshots for a trip.
func (c *Client) SubscribeEvents(tripID uuid.UUID, deliver func([]domain.Event)) live.CancelFunc {
	fetch := func(ctx context.Context) ([]domain.Event, error) { return c.ListEvents(ctx, tripID) }
	return live.Subscribe(c.mux, realtime.TopicEvents(tripID), fetch, deliver)
}

// SubscribeEventsOn narrows SubscribeEvents to a single day, preserving
// the time-ascending order within it.
func (c *Client) SubscribeEventsOn(tripID uuid.UUID, day domain.Date, deliver func([]domain.Event)) live.CancelFunc {
	return c.SubscribeEvents(tripID, func(events []domain.Event) {
		daily := make([]domain.Event, 0, len(events))
		for _, e := range events {
			if e.Day.Equal(day) {
				daily = append(daily, e)
			}
		}
		deliver(daily)
	})
}
