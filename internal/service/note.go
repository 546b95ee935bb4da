package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/tripsync/internal/domain"
	"github.com/pkordes/tripsync/internal/realtime"
	"github.com/pkordes/tripsync/internal/repo"
)

// NoteService implements business logic for the per-trip shared note.
type NoteService struct {
	trips repo.TripRepo
	notes repo.NoteRepo
	pub   Publisher
}

// NewNoteService constructs a NoteService backed by the provided repos.
func NewNoteService(trips repo.TripRepo, notes repo.NoteRepo, pub Publisher) *NoteService {
	return &NoteService{trips: trips, notes: notes, pub: pub}
}

// Get returns the trip's note. A trip that has never had its note written
// yields the zero Note, not an error.
// Returns domain.ErrNotFound if the trip itself does not exist.
func (s *NoteService) Get(ctx context.Context, tripID uuid.UUID) (domain.Note, error) {
	if _, err := s.trips.GetByID(ctx, tripID); err != nil {
		return domain.Note{}, fmt.Errorf("service.NoteService.Get: %w", err)
	}
	n, err := s.notes.Get(ctx, tripID)
	if err != nil {
		return domain.Note{}, fmt.Errorf("service.NoteService.Get: %w", err)
	}
	return n, nil
}

// Put replaces the trip's note with the given content. Last writer wins;
// no history is kept. An empty content is a valid note.
// Returns domain.ErrNotFound if the trip does not exist.
func (s *NoteService) Put(ctx context.Context, tripID uuid.UUID, identity, content string) (domain.Note, error) {
	if _, err := s.trips.GetByID(ctx, tripID); err != nil {
		return domain.Note{}, fmt.Errorf("service.NoteService.Put: %w", err)
	}

	ua := now()
	n := domain.Note{Content: content, UpdatedBy: identity, UpdatedAt: &ua}
	if err := s.notes.Put(ctx, tripID, n); err != nil {
		return domain.Note{}, fmt.Errorf("service.NoteService.Put: %w", err)
	}

	s.pub.Publish(realtime.TopicNotes(tripID))
	return n, nil
}
