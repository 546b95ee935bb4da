package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/tripsync/internal/domain"
	"github.com/pkordes/tripsync/internal/realtime"
	"github.com/pkordes/tripsync/internal/repo"
	"github.com/pkordes/tripsync/internal/service"
)

type mockMemberRepo struct {
	upsert         func(ctx context.Context, tripID uuid.UUID, m domain.Member) error
	insertIfAbsent func(ctx context.Context, tripID uuid.UUID, m domain.Member) (bool, error)
	listByTrip     func(ctx context.Context, tripID uuid.UUID) ([]domain.Member, error)
}

func (m *mockMemberRepo) Upsert(ctx context.Context, tripID uuid.UUID, mem domain.Member) error {
	return m.upsert(ctx, tripID, mem)
}
func (m *mockMemberRepo) InsertIfAbsent(ctx context.Context, tripID uuid.UUID, mem domain.Member) (bool, error) {
	return m.insertIfAbsent(ctx, tripID, mem)
}
func (m *mockMemberRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Member, error) {
	return m.listByTrip(ctx, tripID)
}

var _ repo.MemberRepo = (*mockMemberRepo)(nil)

type mockInviteRepo struct {
	create     func(ctx context.Context, inv domain.Invite) error
	getByToken func(ctx context.Context, token string) (domain.Invite, error)
}

func (m *mockInviteRepo) Create(ctx context.Context, inv domain.Invite) error {
	return m.create(ctx, inv)
}
func (m *mockInviteRepo) GetByToken(ctx context.Context, token string) (domain.Invite, error) {
	return m.getByToken(ctx, token)
}

var _ repo.InviteRepo = (*mockInviteRepo)(nil)

// ---- Create tests ----------------------------------------------------------

func TestInviteService_Create_MintsToken(t *testing.T) {
	trip := validTrip()
	trip.ID = uuid.New()
	var stored domain.Invite
	invites := &mockInviteRepo{
		create: func(_ context.Context, inv domain.Invite) error { stored = inv; return nil },
	}
	svc := service.NewInviteService(tripRepoWith(trip), &mockMemberRepo{}, invites, &recordPublisher{})

	got, err := svc.Create(context.Background(), trip.ID, "caller-1")

	require.NoError(t, err)
	assert.NotEmpty(t, got.Token)
	assert.Equal(t, trip.ID, got.TripID)
	assert.Equal(t, "caller-1", got.CreatedBy)
	assert.Equal(t, stored, got)
}

func TestInviteService_Create_TripNotFound(t *testing.T) {
	trips := &mockTripRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Trip, error) {
			return domain.Trip{}, domain.ErrNotFound
		},
	}
	svc := service.NewInviteService(trips, &mockMemberRepo{}, &mockInviteRepo{}, &recordPublisher{})

	_, err := svc.Create(context.Background(), uuid.New(), "caller-1")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ---- Resolve tests ---------------------------------------------------------

func TestInviteService_Resolve_UnknownToken(t *testing.T) {
	invites := &mockInviteRepo{
		getByToken: func(_ context.Context, _ string) (domain.Invite, error) {
			return domain.Invite{}, domain.ErrNotFound
		},
	}
	svc := service.NewInviteService(&mockTripRepo{}, &mockMemberRepo{}, invites, &recordPublisher{})

	_, err := svc.Resolve(context.Background(), "no-such-token")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ---- Join tests ------------------------------------------------------------

func inviteRepoWith(inv domain.Invite) *mockInviteRepo {
	return &mockInviteRepo{
		getByToken: func(_ context.Context, _ string) (domain.Invite, error) { return inv, nil },
	}
}

func TestInviteService_Join_AddsMember(t *testing.T) {
	tripID := uuid.New()
	inv := domain.Invite{Token: "tok", TripID: tripID}

	var joined domain.Member
	members := &mockMemberRepo{
		insertIfAbsent: func(_ context.Context, _ uuid.UUID, m domain.Member) (bool, error) {
			joined = m
			return true, nil
		},
	}
	pub := &recordPublisher{}
	svc := service.NewInviteService(&mockTripRepo{}, members, inviteRepoWith(inv), pub)

	got, err := svc.Join(context.Background(), "tok", "member-2")

	require.NoError(t, err)
	assert.Equal(t, tripID, got)
	assert.Equal(t, "member-2", joined.Identity)
	// Joining never escalates: always a plain member.
	assert.Equal(t, domain.RoleMember, joined.Role)
	assert.Contains(t, pub.topics, realtime.TopicMembers(tripID))
}

func TestInviteService_Join_AlreadyMember(t *testing.T) {
	tripID := uuid.New()
	inv := domain.Invite{Token: "tok", TripID: tripID}
	members := &mockMemberRepo{
		insertIfAbsent: func(_ context.Context, _ uuid.UUID, _ domain.Member) (bool, error) {
			return false, nil // row already exists, untouched
		},
	}
	pub := &recordPublisher{}
	svc := service.NewInviteService(&mockTripRepo{}, members, inviteRepoWith(inv), pub)

	got, err := svc.Join(context.Background(), "tok", "member-2")

	// Joining twice still succeeds and returns the trip id, but publishes
	// nothing because nothing changed.
	require.NoError(t, err)
	assert.Equal(t, tripID, got)
	assert.Empty(t, pub.topics)
}

func TestInviteService_Join_UnknownToken(t *testing.T) {
	invites := &mockInviteRepo{
		getByToken: func(_ context.Context, _ string) (domain.Invite, error) {
			return domain.Invite{}, domain.ErrNotFound
		},
	}
	svc := service.NewInviteService(&mockTripRepo{}, &mockMemberRepo{}, invites, &recordPublisher{})

	_, err := svc.Join(context.Background(), "no-such-token", "member-2")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
