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

// TaskRepo defines the persistence operations for shared checklist tasks.
// The derived CheckedBy list is filled in by ListByTrip/GetByID from the
// checks collection; task rows themselves carry no completion state.
type TaskRepo interface {
	Create(ctx context.Context, t domain.Task) (domain.Task, error)

	// GetByID retrieves a task by id regardless of trip, with CheckedBy
	// populated. Returns domain.ErrNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Task, error)

	// ListByTrip returns all tasks of a trip in creation order, each with
	// its CheckedBy identity list populated.
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Task, error)

	// Delete removes a task and its check rows.
	// Returns domain.ErrNotFound if the task is absent.
	Delete(ctx context.Context, id uuid.UUID) error
}

// CheckRepo defines the persistence operations for the completion set.
// Rows are keyed by (taskID, identity) so concurrent toggles by different
// identities never touch the same record.
type CheckRepo interface {
	// Set upserts a check row. Repeated sets for the same (task, identity)
	// do not duplicate and keep the original checked_at.
	Set(ctx context.Context, c domain.Check) error

	// Unset removes a check row if present. Removing an absent row is a
	// no-op, not an error.
	Unset(ctx context.Context, taskID uuid.UUID, identity string) error

	// ListByTask returns the check rows of a task ordered by checked_at,
	// ties broken by identity.
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]domain.Check, error)
}

type pgTaskRepo struct {
	db db
}

// NewTaskRepo constructs a TaskRepo backed by the provided db connection.
func NewTaskRepo(db db) TaskRepo {
	return &pgTaskRepo{db: db}
}

const taskColumns = `
	t.id, t.trip_id, t.title, t.notes, t.due_at, t.created_by, t.created_at,
	coalesce(array_agg(c.identity ORDER BY c.checked_at, c.identity)
	         FILTER (WHERE c.identity IS NOT NULL), '{}')`

func (r *pgTaskRepo) Create(ctx context.Context, t domain.Task) (domain.Task, error) {
	const q = `
		INSERT INTO tasks (id, trip_id, title, notes, due_at, created_by, created_at)
		VALUES (@id, @trip_id, @title, @notes, @due_at, @created_by, @created_at)
		RETURNING id, trip_id, title, notes, due_at, created_by, created_at, '{}'::text[]`

	args := pgx.NamedArgs{
		"id":         t.ID,
		"trip_id":    t.TripID,
		"title":      t.Title,
		"notes":      t.Notes,
		"due_at":     t.DueAt,
		"created_by": t.CreatedBy,
		"created_at": t.CreatedAt,
	}

	result, err := scanTask(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Task{}, fmt.Errorf("repo.TaskRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgTaskRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Task, error) {
	const q = `
		SELECT ` + taskColumns + `
		FROM tasks t
		LEFT JOIN checks c ON c.task_id = t.id
		WHERE t.id = @id
		GROUP BY t.id`

	result, err := scanTask(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Task{}, fmt.Errorf("repo.TaskRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgTaskRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Task, error) {
	const q = `
		SELECT ` + taskColumns + `
		FROM tasks t
		LEFT JOIN checks c ON c.task_id = t.id
		WHERE t.trip_id = @trip_id
		GROUP BY t.id
		ORDER BY t.created_at, t.id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.TaskRepo.ListByTrip: %w", err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.TaskRepo.ListByTrip: scan: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TaskRepo.ListByTrip: rows: %w", err)
	}
	return tasks, nil
}

func (r *pgTaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	// Check rows go with the task (ON DELETE CASCADE in the schema).
	const q = `DELETE FROM tasks WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.TaskRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TaskRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanTask maps a single database row (task columns + aggregated identity
// array) into a domain.Task.
func scanTask(s scanner) (domain.Task, error) {
	var (
		t      domain.Task
		id     pgtype.UUID
		tripID pgtype.UUID
		dueAt  pgtype.Timestamptz
	)

	err := s.Scan(&id, &tripID, &t.Title, &t.Notes, &dueAt, &t.CreatedBy, &t.CreatedAt, &t.CheckedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Task{}, domain.ErrNotFound
		}
		return domain.Task{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	t.TripID = uuid.UUID(tripID.Bytes)
	if dueAt.Valid {
		da := dueAt.Time
		t.DueAt = &da
	}
	if t.CheckedBy == nil {
		t.CheckedBy = []string{}
	}
	return t, nil
}

type pgCheckRepo struct {
	db db
}

// NewCheckRepo constructs a CheckRepo backed by the provided db connection.
func NewCheckRepo(db db) CheckRepo {
	return &pgCheckRepo{db: db}
}

func (r *pgCheckRepo) Set(ctx context.Context, c domain.Check) error {
	// DO NOTHING keeps the original checked_at: re-checking is idempotent.
	const q = `
		INSERT INTO checks (task_id, identity, checked_at)
		VALUES (@task_id, @identity, @checked_at)
		ON CONFLICT (task_id, identity) DO NOTHING`

	args := pgx.NamedArgs{
		"task_id":    c.TaskID,
		"identity":   c.Identity,
		"checked_at": c.CheckedAt,
	}
	if _, err := r.db.Exec(ctx, q, args); err != nil {
		return fmt.Errorf("repo.CheckRepo.Set: %w", err)
	}
	return nil
}

func (r *pgCheckRepo) Unset(ctx context.Context, taskID uuid.UUID, identity string) error {
	const q = `DELETE FROM checks WHERE task_id = @task_id AND identity = @identity`

	args := pgx.NamedArgs{"task_id": taskID, "identity": identity}
	if _, err := r.db.Exec(ctx, q, args); err != nil {
		return fmt.Errorf("repo.CheckRepo.Unset: %w", err)
	}
	return nil
}

func (r *pgCheckRepo) ListByTask(ctx context.Context, taskID uuid.UUID) ([]domain.Check, error) {
	const q = `
		SELECT task_id, identity, checked_at
		FROM checks
		WHERE task_id = @task_id
		ORDER BY checked_at, identity`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"task_id": taskID})
	if err != nil {
		return nil, fmt.Errorf("repo.CheckRepo.ListByTask: %w", err)
	}
	defer rows.Close()

	var checks []domain.Check
	for rows.Next() {
		var (
			c  domain.Check
			id pgtype.UUID
		)
		if err := rows.Scan(&id, &c.Identity, &c.CheckedAt); err != nil {
			return nil, fmt.Errorf("repo.CheckRepo.ListByTask: scan: %w", err)
		}
		c.TaskID = uuid.UUID(id.Bytes)
		checks = append(checks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.CheckRepo.ListByTask: rows: %w", err)
	}
	return checks, nil
}
