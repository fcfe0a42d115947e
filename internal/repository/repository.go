package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"task_tracker/internal/models"
)

// ErrUserExists is returned when the username or the email is already taken.
var ErrUserExists = errors.New("username or email already registered")

type UserRepo interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// TaskRepo stores tasks. Lookups that miss, or that name a task owned by
// someone else, return nil without an error.
type TaskRepo interface {
	Create(ctx context.Context, t models.Task) (models.Task, error)
	Get(ctx context.Context, id int64) (*models.Task, error)
	ListByOwner(ctx context.Context, owner string) ([]models.Task, error)
	Update(ctx context.Context, id int64, owner string, p models.TaskPatch) (*models.Task, error)
	Delete(ctx context.Context, id int64, owner string) (bool, error)
}

type EventRepo interface {
	Append(ctx context.Context, e models.TaskEvent) error
	List(ctx context.Context, owner string, from, to time.Time, typ string) ([]models.TaskEvent, error)
}

type Repository struct {
	Users  UserRepo
	Tasks  TaskRepo
	Events EventRepo
}

// NewMemoryRepository returns a repository backed by a fresh process-local store.
func NewMemoryRepository() *Repository {
	store := NewMemoryStore()
	return &Repository{
		Users:  store.Users(),
		Tasks:  store.Tasks(),
		Events: NewMemoryEventLog(),
	}
}

func NewSQLiteRepository(db *sql.DB) *Repository {
	return &Repository{
		Users:  NewUserRepository(db),
		Tasks:  NewTaskSQLite(db),
		Events: NewEventSQLite(db),
	}
}
