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

// TripService implements business logic for Trip operations.
type TripService struct {
	trips repo.TripRepo
	pub   Publisher
}

// NewTripService constructs a TripService backed by the provided repo.
func NewTripService(trips repo.TripRepo, pub Publisher) *TripService {
	return &TripService{trips: trips, pub: pub}
}

// Create validates and persists a new trip owned by the calling identity.
// The id and creation timestamp are assigned here; the returned trip is
// immediately resolvable by id and visible to trip-list subscribers.
func (s *TripService) Create(ctx context.Context, identity string, trip domain.Trip) (domain.Trip, error) {
	trip.ID = uuid.New()
	trip.OwnerIdentity = identity
	trip.CreatedAt = now()
	trip.UpdatedAt = nil

	if err := validateTrip(trip); err != nil {
		return domain.Trip{}, err
	}

	result, err := s.trips.Create(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}

	s.pub.Publish(realtime.TopicTrips, realtime.TopicTrip(result.ID))
	return result, nil
}

// GetByID returns a single trip by ID.
func (s *TripService) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	result, err := s.trips.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}
	return result, nil
}

// ListByOwner returns all trips created by the given identity.
// Always returns a non-nil slice so callers can safely range over it.
func (s *TripService) ListByOwner(ctx context.Context, identity string) ([]domain.Trip, error) {
	trips, err := s.trips.ListByOwner(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.ListByOwner: %w", err)
	}
	if trips == nil {
		return []domain.Trip{}, nil
	}
	return trips, nil
}

// Patch merges the non-nil fields of patch into an existing trip.
// Untouched fields keep their values; id, owner and created_at never change.
// Returns domain.ErrNotFound if the trip does not exist and
// domain.ErrValidation if the merged result violates business rules.
func (s *TripService) Patch(ctx context.Context, id uuid.UUID, patch domain.TripPatch) (domain.Trip, error) {
	current, err := s.trips.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Patch: %w", err)
	}

	merged := patch.Apply(current)
	if err := validateTrip(merged); err != nil {
		return domain.Trip{}, err
	}
	ua := now()
	merged.UpdatedAt = &ua

	result, err := s.trips.Update(ctx, merged)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Patch: %w", err)
	}

	s.pub.Publish(realtime.TopicTrips, realtime.TopicTrip(id))
	return result, nil
}

// validateTrip enforces business rules common to Create and Patch.
//   - Name must be non-empty (whitespace-only names are rejected).
//   - Both dates are required; end_date must not be before start_date.
func validateTrip(trip domain.Trip) error {
	if strings.TrimSpace(trip.Name) == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if trip.StartDate.IsZero() {
		return fmt.Errorf("%w: start_date is required", domain.ErrValidation)
	}
	if trip.EndDate.IsZero() {
		return fmt.Errorf("%w: end_date is required", domain.ErrValidation)
	}
	if trip.EndDate.Before(trip.StartDate) {
		return fmt.Errorf("%w: end_date must not be before start_date", domain.ErrValidation)
	}
	return nil
}
