package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/tripsync/internal/domain"
	"github.com/pkordes/tripsync/internal/realtime"
	"github.com/pkordes/tripsync/internal/repo"
)

// EventService implements business logic for itinerary events.
type EventService struct {
	trips  repo.TripRepo
	events repo.EventRepo
	pub    Publisher
}

// NewEventService constructs an EventService backed by the provided repos.
func NewEventService(trips repo.TripRepo, events repo.EventRepo, pub Publisher) *EventService {
	return &EventService{trips: trips, events: events, pub: pub}
}

// Create validates the event against its parent trip and persists it.
// Returns domain.ErrNotFound if the trip does not exist and
// domain.ErrValidation if a rule is violated.
func (s *EventService) Create(ctx context.Context, tripID uuid.UUID, identity string, e domain.Event) (domain.Event, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.Event{}, fmt.Errorf("service.EventService.Create: %w", err)
	}

	e.ID = uuid.New()
	e.TripID = tripID
	e.CreatedBy = identity
	e.CreatedAt = now()

	if err := validateEvent(trip, e); err != nil {
		return domain.Event{}, err
	}

	result, err := s.events.Create(ctx, e)
	if err != nil {
		return domain.Event{}, fmt.Errorf("service.EventService.Create: %w", err)
	}

	s.pub.Publish(realtime.TopicEvents(tripID))
	return result, nil
}

// List returns all events of a trip ordered by day, then time ascending,
// equal times keeping insertion order.
// Always returns a non-nil slice so callers can safely range over it.
func (s *EventService) List(ctx context.Context, tripID uuid.UUID) ([]domain.Event, error) {
	if _, err := s.trips.GetByID(ctx, tripID); err != nil {
		return nil, fmt.Errorf("service.EventService.List: %w", err)
	}
	events, err := s.events.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.EventService.List: %w", err)
	}
	if events == nil {
		return []domain.Event{}, nil
	}
	return events, nil
}

// Delete removes an event, verifying it belongs to the trip named in the
// request. Returns domain.ErrNotFound if the event does not exist and
// domain.ErrScope if it exists under a different trip.
func (s *EventService) Delete(ctx context.Context, tripID, eventID uuid.UUID) error {
	e, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return fmt.Errorf("service.EventService.Delete: %w", err)
	}
	if e.TripID != tripID {
		return fmt.Errorf("service.EventService.Delete: %w: event belongs to another trip", domain.ErrScope)
	}
	if err := s.events.Delete(ctx, eventID); err != nil {
		return fmt.Errorf("service.EventService.Delete: %w", err)
	}

	s.pub.Publish(realtime.TopicEvents(tripID))
	return nil
}

// validateEvent enforces business rules for event creation.
//   - Title must be non-empty.
//   - Time must be a well-formed "HH:mm" clock time.
//   - Day must fall within the trip's [start_date, end_date] range.
func validateEvent(trip domain.Trip, e domain.Event) error {
	if strings.TrimSpace(e.Title) == "" {
		return fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if !domain.ValidEventTime(e.Time) {
		return fmt.Errorf("%w: time must be HH:mm", domain.ErrValidation)
	}
	if e.Day.IsZero() {
		return fmt.Errorf("%w: day is required", domain.ErrValidation)
	}
	if e.Day.Before(trip.StartDate) || e.Day.After(trip.EndDate) {
		return fmt.Errorf("%w: day is outside the trip dates", domain.ErrValidation)
	}
	return nil
}
