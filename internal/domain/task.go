package domain

import (
	"time"

	"github.com/google/uuid"
)

// Task is a shared checklist entry. Completion is deliberately NOT a field
// on the task row: each identity tracks its own completion through a Check
// row keyed by (taskID, identity), so concurrent toggles by different
// members never touch the same record.
type Task struct {
	ID        uuid.UUID  `json:"id"`
	TripID    uuid.UUID  `json:"trip_id"`
	Title     string     `json:"title"`
	Notes     string     `json:"notes,omitempty"`
	DueAt     *time.Time `json:"due_at,omitempty"`
	CreatedBy string     `json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`

	// CheckedBy is derived from the task's check rows on read.
	// It is never written directly.
	CheckedBy []string `json:"checked_by"`
}

// Check records that one identity has marked one task done.
// Unique per (taskID, identity).
type Check struct {
	TaskID    uuid.UUID `json:"task_id"`
	Identity  string    `json:"identity"`
	CheckedAt time.Time `json:"checked_at"`
}
