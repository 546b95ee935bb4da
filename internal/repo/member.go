package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pkordes/tripsync/internal/domain"
)

// MemberRepo defines the persistence operations for trip membership.
// Membership is keyed by (tripID, identity); there is never more than one
// row per identity per trip.
type MemberRepo interface {
	// Upsert inserts the member or, if a row for (tripID, identity) already
	// exists, overwrites its mutable fields (role, phone, display_name).
	Upsert(ctx context.Context, tripID uuid.UUID, m domain.Member) error

	// InsertIfAbsent inserts the member only when no row for
	// (tripID, identity) exists yet. Returns true when a row was created.
	// An existing row is left completely untouched — this is what makes
	// join idempotent without a lock.
	InsertIfAbsent(ctx context.Context, tripID uuid.UUID, m domain.Member) (bool, error)

	// ListByTrip returns all members of a trip ordered by joined_at ascending.
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Member, error)
}

type pgMemberRepo struct {
	db db
}

// NewMemberRepo constructs a MemberRepo backed by the provided db connection.
func NewMemberRepo(db db) MemberRepo {
	return &pgMemberRepo{db: db}
}

func (r *pgMemberRepo) Upsert(ctx context.Context, tripID uuid.UUID, m domain.Member) error {
	const q = `
		INSERT INTO members (trip_id, identity, role, phone, display_name, joined_at)
		VALUES (@trip_id, @identity, @role, @phone, @display_name, @joined_at)
		ON CONFLICT (trip_id, identity)
		DO UPDATE SET role = @role, phone = @phone, display_name = @display_name`

	_, err := r.db.Exec(ctx, q, memberArgs(tripID, m))
	if err != nil {
		return fmt.Errorf("repo.MemberRepo.Upsert: %w", err)
	}
	return nil
}

func (r *pgMemberRepo) InsertIfAbsent(ctx context.Context, tripID uuid.UUID, m domain.Member) (bool, error) {
	const q = `
		INSERT INTO members (trip_id, identity, role, phone, display_name, joined_at)
		VALUES (@trip_id, @identity, @role, @phone, @display_name, @joined_at)
		ON CONFLICT (trip_id, identity) DO NOTHING`

	tag, err := r.db.Exec(ctx, q, memberArgs(tripID, m))
	if err != nil {
		return false, fmt.Errorf("repo.MemberRepo.InsertIfAbsent: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *pgMemberRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Member, error) {
	const q = `
		SELECT identity, role, phone, display_name, joined_at
		FROM members
		WHERE trip_id = @trip_id
		ORDER BY joined_at, identity`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.MemberRepo.ListByTrip: %w", err)
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		var m domain.Member
		if err := rows.Scan(&m.Identity, &m.Role, &m.Phone, &m.DisplayName, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("repo.MemberRepo.ListByTrip: scan: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.MemberRepo.ListByTrip: rows: %w", err)
	}
	return members, nil
}

func memberArgs(tripID uuid.UUID, m domain.Member) pgx.NamedArgs {
	return pgx.NamedArgs{
		"trip_id":      tripID,
		"identity":     m.Identity,
		"role":         string(m.Role),
		"phone":        m.Phone,
		"display_name": m.DisplayName,
		"joined_at":    m.JoinedAt,
	}
}
