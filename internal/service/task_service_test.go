package service

import (
	"context"
	"errors"
	"testing"

	"task_tracker/internal/models"
	"task_tracker/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedEvents struct {
	events []models.TaskEvent
}

func (r *recordedEvents) Record(_ context.Context, e models.TaskEvent) {
	r.events = append(r.events, e)
}

func newTestTaskService() (*TaskService, *recordedEvents) {
	rec := &recordedEvents{}
	repo := repository.NewMemoryRepository()
	return NewTaskService(repo.Tasks, rec), rec
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestTaskService_CreateAndGet(t *testing.T) {
	svc, rec := newTestTaskService()
	ctx := context.Background()

	created, err := svc.CreateTask(ctx, "alice", "Buy milk", "2%")
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.False(t, created.Completed)
	assert.Equal(t, "alice", created.Owner)

	got, err := svc.GetTask(ctx, created.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.Title, got.Title)

	require.Len(t, rec.events, 1)
	assert.Equal(t, models.EventTaskCreated, rec.events[0].Type)
	assert.Equal(t, created.ID, rec.events[0].TaskID)
	assert.Equal(t, "alice", rec.events[0].Owner)
}

func TestTaskService_OtherOwnersTasksLookMissing(t *testing.T) {
	svc, rec := newTestTaskService()
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, "alice", "private", "")
	require.NoError(t, err)
	rec.events = nil

	_, err = svc.GetTask(ctx, task.ID, "bob")
	assert.ErrorIs(t, err, ErrTaskNotFound)

	_, err = svc.UpdateTask(ctx, task.ID, "bob", models.TaskPatch{Completed: boolPtr(true)})
	assert.ErrorIs(t, err, ErrTaskNotFound)

	err = svc.DeleteTask(ctx, task.ID, "bob")
	assert.ErrorIs(t, err, ErrTaskNotFound)

	// same answer as for an id that never existed
	_, err = svc.GetTask(ctx, 999, "alice")
	assert.ErrorIs(t, err, ErrTaskNotFound)

	list, err := svc.ListTasks(ctx, "bob")
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	// alice's task is untouched
	got, err := svc.GetTask(ctx, task.ID, "alice")
	require.NoError(t, err)
	assert.False(t, got.Completed)
	assert.Empty(t, rec.events, "failed mutations must not record events")
}

func TestTaskService_UpdatePartial(t *testing.T) {
	svc, rec := newTestTaskService()
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, "alice", "Buy milk", "2%")
	require.NoError(t, err)

	updated, err := svc.UpdateTask(ctx, task.ID, "alice", models.TaskPatch{Completed: boolPtr(true)})
	require.NoError(t, err)
	assert.True(t, updated.Completed)
	assert.Equal(t, "Buy milk", updated.Title)
	assert.Equal(t, "2%", updated.Description)

	updated, err = svc.UpdateTask(ctx, task.ID, "alice", models.TaskPatch{Description: strPtr("")})
	require.NoError(t, err)
	assert.Equal(t, "", updated.Description)
	assert.True(t, updated.Completed)

	require.Len(t, rec.events, 3)
	assert.Equal(t, models.EventTaskUpdated, rec.events[2].Type)
}

func TestTaskService_DeleteThenMissing(t *testing.T) {
	svc, rec := newTestTaskService()
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, "alice", "t", "")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTask(ctx, task.ID, "alice"))
	assert.ErrorIs(t, svc.DeleteTask(ctx, task.ID, "alice"), ErrTaskNotFound)

	_, err = svc.GetTask(ctx, task.ID, "alice")
	assert.ErrorIs(t, err, ErrTaskNotFound)

	require.Len(t, rec.events, 2)
	assert.Equal(t, models.EventTaskDeleted, rec.events[1].Type)
	assert.Equal(t, task.ID, rec.events[1].TaskID)
}

func TestTaskService_ListOnlyOwn(t *testing.T) {
	svc, _ := newTestTaskService()
	ctx := context.Background()

	for _, title := range []string{"a1", "a2"} {
		_, err := svc.CreateTask(ctx, "alice", title, "")
		require.NoError(t, err)
	}
	_, err := svc.CreateTask(ctx, "bob", "b1", "")
	require.NoError(t, err)

	list, err := svc.ListTasks(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a1", list[0].Title)
	assert.Equal(t, "a2", list[1].Title)
}

type failingTaskRepo struct {
	repository.TaskRepo
}

func (failingTaskRepo) Create(context.Context, models.Task) (models.Task, error) {
	return models.Task{}, errors.New("db down")
}

func TestTaskService_RepoErrorIsWrapped(t *testing.T) {
	rec := &recordedEvents{}
	svc := NewTaskService(failingTaskRepo{}, rec)

	_, err := svc.CreateTask(context.Background(), "alice", "t", "")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrTaskNotFound))
	assert.Empty(t, rec.events)
}

func TestTaskService_NilActivityIsAllowed(t *testing.T) {
	svc := NewTaskService(repository.NewMemoryRepository().Tasks, nil)
	_, err := svc.CreateTask(context.Background(), "alice", "t", "")
	assert.NoError(t, err)
}

func TestNewService_WiresActivityIntoTasks(t *testing.T) {
	tokens, err := NewTokenManager(testSecret)
	require.NoError(t, err)

	svc, err := NewService(repository.NewMemoryRepository(), Deps{
		Hasher: sha256Hasher{},
		Tokens: tokens,
	})
	require.NoError(t, err)

	ctx := context.Background()
	_, err = svc.Register(ctx, "alice", "a@x.com", "pw1")
	require.NoError(t, err)

	task, err := svc.CreateTask(ctx, "alice", "Buy milk", "")
	require.NoError(t, err)
	_, err = svc.UpdateTask(ctx, task.ID, "alice", models.TaskPatch{Completed: boolPtr(true)})
	require.NoError(t, err)

	events, err := svc.ListEvents(ctx, "alice", LogFilter{})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, models.EventTaskCreated, events[0].Type)
	assert.Equal(t, models.EventTaskUpdated, events[1].Type)

	none, err := svc.ListEvents(ctx, "bob", LogFilter{})
	require.NoError(t, err)
	assert.Empty(t, none)
}
