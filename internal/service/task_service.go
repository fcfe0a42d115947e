package service

import (
	"context"
	"errors"
	"fmt"

	"task_tracker/internal/models"
	"task_tracker/internal/repository"
)

// ErrTaskNotFound covers both missing tasks and tasks owned by someone else,
// so callers cannot probe for other users' ids.
var ErrTaskNotFound = errors.New("task not found")

type activityRecorder interface {
	Record(ctx context.Context, e models.TaskEvent)
}

type TaskService struct {
	taskRepo repository.TaskRepo
	activity activityRecorder
}

// NewTaskService builds the service; activity may be nil.
func NewTaskService(taskRepo repository.TaskRepo, activity activityRecorder) *TaskService {
	return &TaskService{taskRepo: taskRepo, activity: activity}
}

func (s *TaskService) CreateTask(ctx context.Context, owner, title, description string) (models.Task, error) {
	t, err := s.taskRepo.Create(ctx, models.Task{
		Title:       title,
		Description: description,
		Owner:       owner,
	})
	if err != nil {
		return models.Task{}, fmt.Errorf("create task: %w", err)
	}
	s.record(ctx, models.EventTaskCreated, t, "Task created")
	return t, nil
}

func (s *TaskService) GetTask(ctx context.Context, id int64, owner string) (models.Task, error) {
	t, err := s.taskRepo.Get(ctx, id)
	if err != nil {
		return models.Task{}, fmt.Errorf("get task %d: %w", id, err)
	}
	if t == nil || t.Owner != owner {
		return models.Task{}, ErrTaskNotFound
	}
	return *t, nil
}

func (s *TaskService) ListTasks(ctx context.Context, owner string) ([]models.Task, error) {
	tasks, err := s.taskRepo.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

// UpdateTask applies the supplied fields of p. UpdatedAt always moves forward.
func (s *TaskService) UpdateTask(ctx context.Context, id int64, owner string, p models.TaskPatch) (models.Task, error) {
	t, err := s.taskRepo.Update(ctx, id, owner, p)
	if err != nil {
		return models.Task{}, fmt.Errorf("update task %d: %w", id, err)
	}
	if t == nil {
		return models.Task{}, ErrTaskNotFound
	}
	s.record(ctx, models.EventTaskUpdated, *t, "Task updated")
	return *t, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, id int64, owner string) error {
	ok, err := s.taskRepo.Delete(ctx, id, owner)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	if !ok {
		return ErrTaskNotFound
	}
	s.record(ctx, models.EventTaskDeleted, models.Task{ID: id, Owner: owner}, "Task deleted")
	return nil
}

func (s *TaskService) record(ctx context.Context, typ string, t models.Task, msg string) {
	if s.activity == nil {
		return
	}
	s.activity.Record(ctx, models.TaskEvent{
		Type:        typ,
		TaskID:      t.ID,
		Owner:       t.Owner,
		Description: msg,
	})
}
