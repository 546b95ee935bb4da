package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/tripsync/internal/domain"
)

// EventRepo defines the persistence operations for itinerary events.
type EventRepo interface {
	// Create inserts a new event. Id and created_at are assigned by the
	// service before calling.
	Create(ctx context.Context, e domain.Event) (domain.Event, error)

	// GetByID retrieves an event by id regardless of trip. The service uses
	// this to distinguish "missing" from "belongs to another trip".
	GetByID(ctx context.Context, id uuid.UUID) (domain.Event, error)

	// ListByTrip returns all events of a trip ordered by day ascending,
	// then time ascending, ties broken by insertion order.
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Event, error)

	// Delete removes an event by id. Returns domain.ErrNotFound if absent.
	Delete(ctx context.Context, id uuid.UUID) error
}

type pgEventRepo struct {
	db db
}

// NewEventRepo constructs an EventRepo backed by the provided db connection.
func NewEventRepo(db db) EventRepo {
	return &pgEventRepo{db: db}
}

func (r *pgEventRepo) Create(ctx context.Context, e domain.Event) (domain.Event, error) {
	// The position column is a bigserial: it records insertion order so
	// ListByTrip can break equal-time ties stably.
	const q = `
		INSERT INTO events (id, trip_id, day, title, time, notes, location, created_by, created_at)
		VALUES (@id, @trip_id, @day, @title, @time, @notes, @location, @created_by, @created_at)
		RETURNING id, trip_id, day, title, time, notes, location, created_by, created_at`

	loc, err := locationJSON(e.Location)
	if err != nil {
		return domain.Event{}, fmt.Errorf("repo.EventRepo.Create: %w", err)
	}
	args := pgx.NamedArgs{
		"id":         e.ID,
		"trip_id":    e.TripID,
		"day":        e.Day.Time(),
		"title":      e.Title,
		"time":       e.Time,
		"notes":      e.Notes,
		"location":   loc,
		"created_by": e.CreatedBy,
		"created_at": e.CreatedAt,
	}

	result, err := scanEvent(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Event{}, fmt.Errorf("repo.EventRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgEventRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Event, error) {
	const q = `
		SELECT id, trip_id, day, title, time, notes, location, created_by, created_at
		FROM events
		WHERE id = @id`

	result, err := scanEvent(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Event{}, fmt.Errorf("repo.EventRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgEventRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Event, error) {
	const q = `
		SELECT id, trip_id, day, title, time, notes, location, created_by, created_at
		FROM events
		WHERE trip_id = @trip_id
		ORDER BY day, time, position`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.EventRepo.ListByTrip: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.EventRepo.ListByTrip: scan: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.EventRepo.ListByTrip: rows: %w", err)
	}
	return events, nil
}

func (r *pgEventRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM events WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.EventRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.EventRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanEvent maps a single database row into a domain.Event.
func scanEvent(s scanner) (domain.Event, error) {
	var (
		e      domain.Event
		id     pgtype.UUID
		tripID pgtype.UUID
		day    pgtype.Date
		loc    []byte
	)

	err := s.Scan(&id, &tripID, &day, &e.Title, &e.Time, &e.Notes, &loc, &e.CreatedBy, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Event{}, domain.ErrNotFound
		}
		return domain.Event{}, err
	}

	e.ID = uuid.UUID(id.Bytes)
	e.TripID = uuid.UUID(tripID.Bytes)
	e.Day = domain.DateOf(day.Time)
	if len(loc) > 0 {
		var l domain.Location
		if err := json.Unmarshal(loc, &l); err != nil {
			return domain.Event{}, err
		}
		e.Location = &l
	}
	return e, nil
}
