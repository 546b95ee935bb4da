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

// NoteRepo defines the persistence operations for the per-trip singleton
// note. There is at most one row per trip; writes are last-writer-wins.
type NoteRepo interface {
	// Get returns the trip's note, or the zero Note when none has been
	// written yet — a missing note is not an error.
	Get(ctx context.Context, tripID uuid.UUID) (domain.Note, error)

	// Put overwrites the trip's note, creating it on first write.
	Put(ctx context.Context, tripID uuid.UUID, n domain.Note) error
}

type pgNoteRepo struct {
	db db
}

// NewNoteRepo constructs a NoteRepo backed by the provided db connection.
func NewNoteRepo(db db) NoteRepo {
	return &pgNoteRepo{db: db}
}

func (r *pgNoteRepo) Get(ctx context.Context, tripID uuid.UUID) (domain.Note, error) {
	const q = `
		SELECT content, updated_by, updated_at
		FROM notes
		WHERE trip_id = @trip_id`

	var (
		n         domain.Note
		updatedAt pgtype.Timestamptz
	)
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"trip_id": tripID}).
		Scan(&n.Content, &n.UpdatedBy, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Note{}, nil
		}
		return domain.Note{}, fmt.Errorf("repo.NoteRepo.Get: %w", err)
	}
	if updatedAt.Valid {
		ua := updatedAt.Time
		n.UpdatedAt = &ua
	}
	return n, nil
}

func (r *pgNoteRepo) Put(ctx context.Context, tripID uuid.UUID, n domain.Note) error {
	const q = `
		INSERT INTO notes (trip_id, content, updated_by, updated_at)
		VALUES (@trip_id, @content, @updated_by, @updated_at)
		ON CONFLICT (trip_id)
		DO UPDATE SET content = @content, updated_by = @updated_by, updated_at = @updated_at`

	args := pgx.NamedArgs{
		"trip_id":    tripID,
		"content":    n.Content,
		"updated_by": n.UpdatedBy,
		"updated_at": n.UpdatedAt,
	}
	if _, err := r.db.Exec(ctx, q, args); err != nil {
		return fmt.Errorf("repo.NoteRepo.Put: %w", err)
	}
	return nil
}
