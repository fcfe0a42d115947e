package service

import (
	"context"
	"fmt"
	"time"

	"task_tracker/internal/logger"
	"task_tracker/internal/models"
	"task_tracker/internal/repository"
)

type Authorization interface {
	Register(ctx context.Context, username, email, password string) (string, error)
	Login(ctx context.Context, username, password string) (string, error)
	ParseToken(ctx context.Context, accessToken string) (string, error)
}

// Tasks exposes ownership-scoped CRUD. Every call names the acting user.
type Tasks interface {
	CreateTask(ctx context.Context, owner, title, description string) (models.Task, error)
	GetTask(ctx context.Context, id int64, owner string) (models.Task, error)
	ListTasks(ctx context.Context, owner string) ([]models.Task, error)
	UpdateTask(ctx context.Context, id int64, owner string, p models.TaskPatch) (models.Task, error)
	DeleteTask(ctx context.Context, id int64, owner string) error
}

// Activity exposes the per-user task event log and its live feed.
type Activity interface {
	ListEvents(ctx context.Context, owner string, f LogFilter) ([]models.TaskEvent, error)
	Subscribe(owner string) (<-chan models.TaskEvent, func())
}

// Service aggregates all sub-services.
type Service struct {
	Authorization
	Tasks
	Activity
}

// Deps carries what NewService needs beyond the repositories.
type Deps struct {
	Hasher   PasswordHasher
	Tokens   *TokenManager
	TokenTTL time.Duration
	Log      *logger.Logger
}

// NewService wires the repository layer into concrete services.
func NewService(repos *repository.Repository, deps Deps) (*Service, error) {
	auth, err := NewAuthService(repos.Users, deps.Hasher, deps.Tokens, deps.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("init auth service: %w", err)
	}
	activity := NewActivityService(repos.Events, NewFeedHub(), deps.Log)

	return &Service{
		Authorization: auth,
		Tasks:         NewTaskService(repos.Tasks, activity),
		Activity:      activity,
	}, nil
}
