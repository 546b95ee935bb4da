// Package repo contains all persistence logic for TripSync.
// Each collection has its own file with an interface and a Postgres
// implementation; memory.go provides the in-memory reference backend.
// No business logic lives here — only storage access and type mapping.
package repo

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the per-type
// scan helpers to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// Repos bundles one repo per collection so wiring code can pass a single
// value around. Both backends populate every field.
type Repos struct {
	Trips   TripRepo
	Members MemberRepo
	Events  EventRepo
	Tasks   TaskRepo
	Checks  CheckRepo
	Notes   NoteRepo
	Invites InviteRepo
}

// NewPostgres returns a Repos backed by Postgres.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewPostgres(db db) Repos {
	return Repos{
		Trips:   NewTripRepo(db),
		Members: NewMemberRepo(db),
		Events:  NewEventRepo(db),
		Tasks:   NewTaskRepo(db),
		Checks:  NewCheckRepo(db),
		Notes:   NewNoteRepo(db),
		Invites: NewInviteRepo(db),
	}
}
