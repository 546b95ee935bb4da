package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/tripsync/internal/domain"
	"github.com/pkordes/tripsync/internal/realtime"
	"github.com/pkordes/tripsync/internal/repo"
)

// InviteService implements the invite/join protocol.
//
// Tokens are durable and reusable: creation is the only state transition,
// resolution never consumes, and joining is made safe by the membership
// upsert rather than by single-use tokens.
type InviteService struct {
	trips   repo.TripRepo
	members repo.MemberRepo
	invites repo.InviteRepo
	pub     Publisher
}

// NewInviteService constructs an InviteService backed by the provided repos.
func NewInviteService(trips repo.TripRepo, members repo.MemberRepo, invites repo.InviteRepo, pub Publisher) *InviteService {
	return &InviteService{trips: trips, members: members, invites: invites, pub: pub}
}

// Create mints a new unguessable token for the trip.
// Returns domain.ErrNotFound if the trip does not exist.
func (s *InviteService) Create(ctx context.Context, tripID uuid.UUID, identity string) (domain.Invite, error) {
	if _, err := s.trips.GetByID(ctx, tripID); err != nil {
		return domain.Invite{}, fmt.Errorf("service.InviteService.Create: %w", err)
	}

	inv := domain.Invite{
		Token:     uuid.NewString(),
		TripID:    tripID,
		CreatedBy: identity,
		CreatedAt: now(),
	}
	if err := s.invites.Create(ctx, inv); err != nil {
		return domain.Invite{}, fmt.Errorf("service.InviteService.Create: %w", err)
	}

	s.pub.Publish(realtime.TopicInvite(inv.Token))
	return inv, nil
}

// Resolve looks up a token. domain.ErrNotFound is the expected outcome for
// an unknown or mistyped token, not a fault.
func (s *InviteService) Resolve(ctx context.Context, token string) (domain.Invite, error) {
	inv, err := s.invites.GetByToken(ctx, token)
	if err != nil {
		return domain.Invite{}, fmt.Errorf("service.InviteService.Resolve: %w", err)
	}
	return inv, nil
}

// Join resolves a token and adds the identity to the trip's membership.
// Joining is idempotent per identity: a membership row is inserted only if
// none exists, so joining twice — or a creator joining their own trip —
// is a no-op that still returns the trip id. There is never ownership
// escalation; joined members always get RoleMember.
func (s *InviteService) Join(ctx context.Context, token, identity string) (uuid.UUID, error) {
	inv, err := s.invites.GetByToken(ctx, token)
	if err != nil {
		return uuid.Nil, fmt.Errorf("service.InviteService.Join: %w", err)
	}

	m := domain.Member{Identity: identity, Role: domain.RoleMember, JoinedAt: now()}
	created, err := s.members.InsertIfAbsent(ctx, inv.TripID, m)
	if err != nil {
		return uuid.Nil, fmt.Errorf("service.InviteService.Join: %w", err)
	}
	if created {
		s.pub.Publish(realtime.TopicMembers(inv.TripID))
	}
	return inv.TripID, nil
}
