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

// TripRepo defines the persistence operations for Trips.
// The service layer depends on this interface, not a concrete backend,
// which allows the service to be unit-tested with a mock and lets the
// gateway swap Postgres for the in-memory backend without touching logic.
type TripRepo interface {
	// Create inserts a new trip. The service assigns id and created_at
	// before calling so both backends persist identical rows.
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByID retrieves a single trip by its UUID primary key.
	// Returns domain.ErrNotFound if no trip with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)

	// ListByOwner returns all trips created by the given identity,
	// ordered by start_date ascending.
	ListByOwner(ctx context.Context, ownerIdentity string) ([]domain.Trip, error)

	// Update overwrites the mutable fields of an existing trip and returns
	// the updated record. Returns domain.ErrNotFound if the ID is unknown.
	Update(ctx context.Context, trip domain.Trip) (domain.Trip, error)
}

// pgTripRepo is the Postgres implementation of TripRepo.
type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

func (r *pgTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		INSERT INTO trips (id, name, location, start_date, end_date,
		                   notification_enabled, owner_identity, created_at)
		VALUES (@id, @name, @location, @start_date, @end_date,
		        @notification_enabled, @owner_identity, @created_at)
		RETURNING id, name, location, start_date, end_date,
		          notification_enabled, owner_identity, created_at, updated_at`

	loc, err := locationJSON(trip.Location)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}
	args := pgx.NamedArgs{
		"id":                   trip.ID,
		"name":                 trip.Name,
		"location":             loc,
		"start_date":           trip.StartDate.Time(),
		"end_date":             trip.EndDate.Time(),
		"notification_enabled": trip.NotificationEnabled,
		"owner_identity":       trip.OwnerIdentity,
		"created_at":           trip.CreatedAt,
	}

	result, err := scanTrip(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	const q = `
		SELECT id, name, location, start_date, end_date,
		       notification_enabled, owner_identity, created_at, updated_at
		FROM trips
		WHERE id = @id`

	result, err := scanTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgTripRepo) ListByOwner(ctx context.Context, ownerIdentity string) ([]domain.Trip, error) {
	const q = `
		SELECT id, name, location, start_date, end_date,
		       notification_enabled, owner_identity, created_at, updated_at
		FROM trips
		WHERE owner_identity = @owner
		ORDER BY start_date, created_at`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"owner": ownerIdentity})
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.ListByOwner: %w", err)
	}
	defer rows.Close()

	var trips []domain.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.TripRepo.ListByOwner: scan: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TripRepo.ListByOwner: rows: %w", err)
	}
	return trips, nil
}

func (r *pgTripRepo) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		UPDATE trips
		SET name                 = @name,
		    location             = @location,
		    start_date           = @start_date,
		    end_date             = @end_date,
		    notification_enabled = @notification_enabled,
		    updated_at           = now()
		WHERE id = @id
		RETURNING id, name, location, start_date, end_date,
		          notification_enabled, owner_identity, created_at, updated_at`

	loc, err := locationJSON(trip.Location)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: %w", err)
	}
	args := pgx.NamedArgs{
		"id":                   trip.ID,
		"name":                 trip.Name,
		"location":             loc,
		"start_date":           trip.StartDate.Time(),
		"end_date":             trip.EndDate.Time(),
		"notification_enabled": trip.NotificationEnabled,
	}

	result, err := scanTrip(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: %w", err)
	}
	return result, nil
}

// locationJSON marshals an optional location for a jsonb column.
// nil stays nil so the column is NULL rather than the string "null".
func locationJSON(loc *domain.Location) ([]byte, error) {
	if loc == nil {
		return nil, nil
	}
	return json.Marshal(loc)
}

// scanTrip maps a single database row into a domain.Trip.
// It handles the UUID, jsonb location, date, and nullable updated_at columns.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t         domain.Trip
		id        pgtype.UUID
		loc       []byte
		startDate pgtype.Date
		endDate   pgtype.Date
		updatedAt pgtype.Timestamptz
	)

	err := s.Scan(&id, &t.Name, &loc, &startDate, &endDate,
		&t.NotificationEnabled, &t.OwnerIdentity, &t.CreatedAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	t.StartDate = domain.DateOf(startDate.Time)
	t.EndDate = domain.DateOf(endDate.Time)
	if len(loc) > 0 {
		var l domain.Location
		if err := json.Unmarshal(loc, &l); err != nil {
			return domain.Trip{}, err
		}
		t.Location = &l
	}
	if updatedAt.Valid {
		ua := updatedAt.Time
		t.UpdatedAt = &ua
	}
	return t, nil
}
