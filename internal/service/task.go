package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/tripsync/internal/domain"
	"github.com/pkordes/tripsync/internal/realtime"
	"github.com/pkordes/tripsync/internal/repo"
)

// TaskService implements business logic for shared checklist tasks and
// their per-identity completion sets.
type TaskService struct {
	trips  repo.TripRepo
	tasks  repo.TaskRepo
	checks repo.CheckRepo
	pub    Publisher
}

// NewTaskService constructs a TaskService backed by the provided repos.
func NewTaskService(trips repo.TripRepo, tasks repo.TaskRepo, checks repo.CheckRepo, pub Publisher) *TaskService {
	return &TaskService{trips: trips, tasks: tasks, checks: checks, pub: pub}
}

// Create validates and persists a new task with an empty completion set.
// Returns domain.ErrNotFound if the trip does not exist.
func (s *TaskService) Create(ctx context.Context, tripID uuid.UUID, identity string, t domain.Task) (domain.Task, error) {
	if _, err := s.trips.GetByID(ctx, tripID); err != nil {
		return domain.Task{}, fmt.Errorf("service.TaskService.Create: %w", err)
	}
	if strings.TrimSpace(t.Title) == "" {
		return domain.Task{}, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}

	t.ID = uuid.New()
	t.TripID = tripID
	t.CreatedBy = identity
	t.CreatedAt = now()

	result, err := s.tasks.Create(ctx, t)
	if err != nil {
		return domain.Task{}, fmt.Errorf("service.TaskService.Create: %w", err)
	}

	s.pub.Publish(realtime.TopicTasks(tripID))
	return result, nil
}

// List returns all tasks of a trip in creation order, each with its
// derived checked_by identity list.
// Always returns a non-nil slice so callers can safely range over it.
func (s *TaskService) List(ctx context.Context, tripID uuid.UUID) ([]domain.Task, error) {
	if _, err := s.trips.GetByID(ctx, tripID); err != nil {
		return nil, fmt.Errorf("service.TaskService.List: %w", err)
	}
	tasks, err := s.tasks.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.TaskService.List: %w", err)
	}
	if tasks == nil {
		return []domain.Task{}, nil
	}
	return tasks, nil
}

// SetChecked records or removes one identity's completion of a task.
// Both directions are idempotent: re-checking keeps the original timestamp
// and does not duplicate; unchecking an unchecked task is a no-op. Each
// identity only ever touches its own (taskID, identity) row, so concurrent
// toggles by different members never conflict.
// Returns the task with its refreshed checked_by list.
// Returns domain.ErrNotFound if the task does not exist and domain.ErrScope
// if it exists under a different trip.
func (s *TaskService) SetChecked(ctx context.Context, tripID, taskID uuid.UUID, identity string, checked bool) (domain.Task, error) {
	if err := s.inScope(ctx, tripID, taskID, "SetChecked"); err != nil {
		return domain.Task{}, err
	}

	if checked {
		err := s.checks.Set(ctx, domain.Check{TaskID: taskID, Identity: identity, CheckedAt: now()})
		if err != nil {
			return domain.Task{}, fmt.Errorf("service.TaskService.SetChecked: %w", err)
		}
	} else {
		if err := s.checks.Unset(ctx, taskID, identity); err != nil {
			return domain.Task{}, fmt.Errorf("service.TaskService.SetChecked: %w", err)
		}
	}

	result, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return domain.Task{}, fmt.Errorf("service.TaskService.SetChecked: %w", err)
	}

	s.pub.Publish(realtime.TopicTasks(tripID), realtime.TopicChecks(tripID, taskID))
	return result, nil
}

// ListChecked returns the completion set of a task: the check rows of every
// identity that currently has it checked, ordered by check time.
func (s *TaskService) ListChecked(ctx context.Context, tripID, taskID uuid.UUID) ([]domain.Check, error) {
	if err := s.inScope(ctx, tripID, taskID, "ListChecked"); err != nil {
		return nil, err
	}
	checks, err := s.checks.ListByTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("service.TaskService.ListChecked: %w", err)
	}
	if checks == nil {
		return []domain.Check{}, nil
	}
	return checks, nil
}

// Delete removes a task and its completion set.
// Returns domain.ErrNotFound if the task does not exist and domain.ErrScope
// if it exists under a different trip.
func (s *TaskService) Delete(ctx context.Context, tripID, taskID uuid.UUID) error {
	if err := s.inScope(ctx, tripID, taskID, "Delete"); err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, taskID); err != nil {
		return fmt.Errorf("service.TaskService.Delete: %w", err)
	}

	s.pub.Publish(realtime.TopicTasks(tripID), realtime.TopicChecks(tripID, taskID))
	return nil
}

// inScope verifies the task exists and belongs to tripID.
func (s *TaskService) inScope(ctx context.Context, tripID, taskID uuid.UUID, op string) error {
	t, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return fmt.Errorf("service.TaskService.%s: %w", op, err)
	}
	if t.TripID != tripID {
		return fmt.Errorf("service.TaskService.%s: %w: task belongs to another trip", op, domain.ErrScope)
	}
	return nil
}
