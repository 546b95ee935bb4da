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

// MemberService implements business logic for trip membership.
// It holds the trips repo because adding a member requires verifying the
// parent trip exists.
type MemberService struct {
	trips   repo.TripRepo
	members repo.MemberRepo
	pub     Publisher
}

// NewMemberService constructs a MemberService backed by the provided repos.
func NewMemberService(trips repo.TripRepo, members repo.MemberRepo, pub Publisher) *MemberService {
	return &MemberService{trips: trips, members: members, pub: pub}
}

// Add upserts a membership row for the given identity. A second Add for
// the same (trip, identity) overwrites role/phone/display_name but keeps
// the original join timestamp — membership is keyed, never appended.
// Returns domain.ErrNotFound if the trip does not exist.
func (s *MemberService) Add(ctx context.Context, tripID uuid.UUID, m domain.Member) (domain.Member, error) {
	if _, err := s.trips.GetByID(ctx, tripID); err != nil {
		return domain.Member{}, fmt.Errorf("service.MemberService.Add: %w", err)
	}
	if strings.TrimSpace(m.Identity) == "" {
		return domain.Member{}, fmt.Errorf("%w: identity is required", domain.ErrValidation)
	}
	if m.Role == "" {
		m.Role = domain.RoleMember
	}
	m.JoinedAt = now()

	if err := s.members.Upsert(ctx, tripID, m); err != nil {
		return domain.Member{}, fmt.Errorf("service.MemberService.Add: %w", err)
	}

	s.pub.Publish(realtime.TopicMembers(tripID))
	return m, nil
}

// List returns all members of a trip in join order.
// Always returns a non-nil slice so callers can safely range over it.
func (s *MemberService) List(ctx context.Context, tripID uuid.UUID) ([]domain.Member, error) {
	if _, err := s.trips.GetByID(ctx, tripID); err != nil {
		return nil, fmt.Errorf("service.MemberService.List: %w", err)
	}
	members, err := s.members.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.MemberService.List: %w", err)
	}
	if members == nil {
		return []domain.Member{}, nil
	}
	return members, nil
}
