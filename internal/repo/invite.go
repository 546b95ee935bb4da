package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/tripsync/internal/domain"
)

// InviteRepo defines the persistence operations for invite tokens.
// Tokens are durable: nothing ever deletes or expires them in this core.
type InviteRepo interface {
	Create(ctx context.Context, inv domain.Invite) error

	// GetByToken resolves a token. Returns domain.ErrNotFound for unknown
	// tokens — an expected outcome for mistyped links, not a fault.
	GetByToken(ctx context.Context, token string) (domain.Invite, error)
}

type pgInviteRepo struct {
	db db
}

// NewInviteRepo constructs an InviteRepo backed by the provided db connection.
func NewInviteRepo(db db) InviteRepo {
	return &pgInviteRepo{db: db}
}

func (r *pgInviteRepo) Create(ctx context.Context, inv domain.Invite) error {
	const q = `
		INSERT INTO invites (token, trip_id, created_by, created_at)
		VALUES (@token, @trip_id, @created_by, @created_at)`

	args := pgx.NamedArgs{
		"token":      inv.Token,
		"trip_id":    inv.TripID,
		"created_by": inv.CreatedBy,
		"created_at": inv.CreatedAt,
	}
	if _, err := r.db.Exec(ctx, q, args); err != nil {
		return fmt.Errorf("repo.InviteRepo.Create: %w", err)
	}
	return nil
}

func (r *pgInviteRepo) GetByToken(ctx context.Context, token string) (domain.Invite, error) {
	const q = `
		SELECT token, trip_id, created_by, created_at
		FROM invites
		WHERE token = @token`

	var (
		inv    domain.Invite
		tripID pgtype.UUID
	)
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"token": token}).
		Scan(&inv.Token, &tripID, &inv.CreatedBy, &inv.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Invite{}, fmt.Errorf("repo.InviteRepo.GetByToken: %w", domain.ErrNotFound)
		}
		return domain.Invite{}, fmt.Errorf("repo.InviteRepo.GetByToken: %w", err)
	}
	inv.TripID = uuid.UUID(tripID.Bytes)
	return inv, nil
}
