package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/tripsync/internal/domain"
	"github.com/pkordes/tripsync/internal/realtime"
	"github.com/pkordes/tripsync/internal/repo"
	"github.com/pkordes/tripsync/internal/service"
)

type mockTaskRepo struct {
	create     func(ctx context.Context, task domain.Task) (domain.Task, error)
	getByID    func(ctx context.Context, id uuid.UUID) (domain.Task, error)
	listByTrip func(ctx context.Context, tripID uuid.UUID) ([]domain.Task, error)
	delete     func(ctx context.Context, id uuid.UUID) error
}

func (m *mockTaskRepo) Create(ctx context.Context, task domain.Task) (domain.Task, error) {
	return m.create(ctx, task)
}
func (m *mockTaskRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Task, error) {
	return m.getByID(ctx, id)
}
func (m *mockTaskRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Task, error) {
	return m.listByTrip(ctx, tripID)
}
func (m *mockTaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

var _ repo.TaskRepo = (*mockTaskRepo)(nil)

type mockCheckRepo struct {
	set        func(ctx context.Context, c domain.Check) error
	unset      func(ctx context.Context, taskID uuid.UUID, identity string) error
	listByTask func(ctx context.Context, taskID uuid.UUID) ([]domain.Check, error)
}

func (m *mockCheckRepo) Set(ctx context.Context, c domain.Check) error { return m.set(ctx, c) }
func (m *mockCheckRepo) Unset(ctx context.Context, taskID uuid.UUID, identity string) error {
	return m.unset(ctx, taskID, identity)
}
func (m *mockCheckRepo) ListByTask(ctx context.Context, taskID uuid.UUID) ([]domain.Check, error) {
	return m.listByTask(ctx, taskID)
}

var _ repo.CheckRepo = (*mockCheckRepo)(nil)

// taskRepoWith resolves every id to the given task.
func taskRepoWith(task domain.Task) *mockTaskRepo {
	return &mockTaskRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Task, error) { return task, nil },
	}
}

// ---- Create tests ----------------------------------------------------------

func TestTaskService_Create_Valid(t *testing.T) {
	trip := validTrip()
	trip.ID = uuid.New()
	tasks := &mockTaskRepo{
		create: func(_ context.Context, task domain.Task) (domain.Task, error) { return task, nil },
	}
	pub := &recordPublisher{}
	svc := service.NewTaskService(tripRepoWith(trip), tasks, &mockCheckRepo{}, pub)

	got, err := svc.Create(context.Background(), trip.ID, "caller-1", domain.Task{Title: "Pack bags"})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, got.ID)
	assert.Equal(t, trip.ID, got.TripID)
	assert.Equal(t, "caller-1", got.CreatedBy)
	assert.Contains(t, pub.topics, realtime.TopicTasks(trip.ID))
}

func TestTaskService_Create_MissingTitle(t *testing.T) {
	trip := validTrip()
	trip.ID = uuid.New()
	svc := service.NewTaskService(tripRepoWith(trip), &mockTaskRepo{}, &mockCheckRepo{}, &recordPublisher{})

	_, err := svc.Create(context.Background(), trip.ID, "caller-1", domain.Task{Title: " "})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ---- SetChecked tests ------------------------------------------------------

func TestTaskService_SetChecked_Check(t *testing.T) {
	tripID := uuid.New()
	task := domain.Task{ID: uuid.New(), TripID: tripID, Title: "Pack bags"}

	var recorded domain.Check
	checks := &mockCheckRepo{
		set: func(_ context.Context, c domain.Check) error { recorded = c; return nil },
	}
	tasks := taskRepoWith(task)
	pub := &recordPublisher{}
	svc := service.NewTaskService(&mockTripRepo{}, tasks, checks, pub)

	_, err := svc.SetChecked(context.Background(), tripID, task.ID, "member-2", true)

	require.NoError(t, err)
	// The write touches only this identity's (task, identity) row.
	assert.Equal(t, task.ID, recorded.TaskID)
	assert.Equal(t, "member-2", recorded.Identity)
	assert.False(t, recorded.CheckedAt.IsZero())
	assert.Contains(t, pub.topics, realtime.TopicChecks(tripID, task.ID))
	assert.Contains(t, pub.topics, realtime.TopicTasks(tripID))
}

func TestTaskService_SetChecked_Uncheck(t *testing.T) {
	tripID := uuid.New()
	task := domain.Task{ID: uuid.New(), TripID: tripID, Title: "Pack bags"}

	var unsetIdentity string
	checks := &mockCheckRepo{
		unset: func(_ context.Context, _ uuid.UUID, identity string) error {
			unsetIdentity = identity
			return nil
		},
	}
	svc := service.NewTaskService(&mockTripRepo{}, taskRepoWith(task), checks, &recordPublisher{})

	_, err := svc.SetChecked(context.Background(), tripID, task.ID, "member-2", false)

	require.NoError(t, err)
	assert.Equal(t, "member-2", unsetIdentity)
}

func TestTaskService_SetChecked_WrongTrip(t *testing.T) {
	task := domain.Task{ID: uuid.New(), TripID: uuid.New(), Title: "Pack bags"}
	svc := service.NewTaskService(&mockTripRepo{}, taskRepoWith(task), &mockCheckRepo{}, &recordPublisher{})

	_, err := svc.SetChecked(context.Background(), uuid.New(), task.ID, "member-2", true)

	assert.ErrorIs(t, err, domain.ErrScope)
}

func TestTaskService_SetChecked_TaskNotFound(t *testing.T) {
	tasks := &mockTaskRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Task, error) {
			return domain.Task{}, domain.ErrNotFound
		},
	}
	svc := service.NewTaskService(&mockTripRepo{}, tasks, &mockCheckRepo{}, &recordPublisher{})

	_, err := svc.SetChecked(context.Background(), uuid.New(), uuid.New(), "member-2", true)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ---- Delete tests ----------------------------------------------------------

func TestTaskService_Delete_OK(t *testing.T) {
	tripID := uuid.New()
	task := domain.Task{ID: uuid.New(), TripID: tripID, Title: "Pack bags"}
	tasks := taskRepoWith(task)
	tasks.delete = func(_ context.Context, _ uuid.UUID) error { return nil }
	pub := &recordPublisher{}
	svc := service.NewTaskService(&mockTripRepo{}, tasks, &mockCheckRepo{}, pub)

	err := svc.Delete(context.Background(), tripID, task.ID)

	require.NoError(t, err)
	assert.Contains(t, pub.topics, realtime.TopicTasks(tripID))
}

func TestTaskService_Delete_WrongTrip(t *testing.T) {
	task := domain.Task{ID: uuid.New(), TripID: uuid.New(), Title: "Pack bags"}
	svc := service.NewTaskService(&mockTripRepo{}, taskRepoWith(task), &mockCheckRepo{}, &recordPublisher{})

	err := svc.Delete(context.Background(), uuid.New(), task.ID)

	assert.ErrorIs(t, err, domain.ErrScope)
}
