package client

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/pkordes/tripsync/internal/domain"
	"github.com/pkordes/tripsync/internal/live"
	"github.com/pkordes/tripsync/internal/realtime"
)

// CreateTask adds a shared checklist task with an empty completion set.
func (c *Client) CreateTask(ctx context.Context, tripID uuid.UUID, t domain.Task) (domain.Task, error) {
	var created domain.Task
	err := c.do(ctx, http.MethodPost, "/api/trips/"+tripID.String()+"/tasks", t, &created)
	return created, err
}

// ListTasks returns a trip's tasks in creation order, each carrying the
// identities that currently have it checked.
func (c *Client) ListTasks(ctx context.Context, tripID uuid.UUID) ([]domain.Task, error) {
	var tasks []domain.Task
	err := c.get(ctx, "/api/trips/"+tripID.String()+"/tasks", &tasks)
	return tasks, err
}

// SetChecked marks or unmarks the task done for this client's identity
// only. Both directions are idempotent; other members' completions are
// never affected. Returns the task with its refreshed checked_by list.
func (c *Client) SetChecked(ctx context.Context, tripID, taskID uuid.UUID, checked bool) (domain.Task, error) {
	var task domain.Task
	path := "/api/trips/" + tripID.String() + "/tasks/" + taskID.String() + "/check"
	err := c.do(ctx, http.MethodPatch, path, map[string]bool{"checked": checked}, &task)
	return task, err
}

// DeleteTask removes a task and its completion set.
func (c *Client) DeleteTask(ctx context.Context, tripID, taskID uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/trips/"+tripID.String()+"/tasks/"+taskID.String(), nil, nil)
}

// SubscribeTasks delivers checklist snapshots for a trip.
func (c *Client) SubscribeTasks(tripID uuid.UUID, deliver func([]domain.Task)) live.CancelFunc {
	fetch := func(ctx context.Context) ([]domain.Task, error) { return c.ListTasks(ctx, tripID) }
	return live.Subscribe(c.mux, realtime.TopicTasks(tripID), fetch, deliver)
}

// SubscribeChecked delivers the live completion set of one task: the
// identities that currently have it checked, in check order.
func (c *Client) SubscribeChecked(tripID, taskID uuid.UUID, deliver func([]string)) live.CancelFunc {
	fetch := func(ctx context.Context) ([]string, error) {
		tasks, err := c.ListTasks(ctx, tripID)
		if err != nil {
			return nil, err
		}
		for _, t := range tasks {
			if t.ID == taskID {
				return t.CheckedBy, nil
			}
		}
		return nil, domain.ErrNotFound
	}
	return live.Subscribe(c.mux, realtime.TopicChecks(tripID, taskID), fetch, deliver)
}
