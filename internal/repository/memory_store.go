package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"task_tracker/internal/models"
)

// MemoryStore keeps users and tasks in process memory. A single lock covers
// both maps so every check-then-write sequence runs as one critical section.
type MemoryStore struct {
	mu sync.RWMutex

	users  map[string]models.User // by username
	emails map[string]string      // email -> username
	tasks  map[int64]models.Task
	lastID int64

	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:  make(map[string]models.User),
		emails: make(map[string]string),
		tasks:  make(map[int64]models.Task),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source used for timestamps.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	return s
}

// Users returns the user repository view of the store.
func (s *MemoryStore) Users() UserRepo { return memoryUsers{s} }

// Tasks returns the task repository view of the store.
func (s *MemoryStore) Tasks() TaskRepo { return memoryTasks{s} }

type memoryUsers struct{ s *MemoryStore }

type memoryTasks struct{ s *MemoryStore }

// Ensure implementation of the repository interfaces at compile time.
var (
	_ UserRepo = memoryUsers{}
	_ TaskRepo = memoryTasks{}
)

// Create inserts a new user unless the username or email is taken.
func (r memoryUsers) Create(_ context.Context, u models.User) (models.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[u.Username]; ok {
		return models.User{}, ErrUserExists
	}
	if _, ok := s.emails[u.Email]; ok {
		return models.User{}, ErrUserExists
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now()
	}
	s.users[u.Username] = u
	s.emails[u.Email] = u.Username
	return u, nil
}

// GetByUsername returns (nil, nil) if the user does not exist.
func (r memoryUsers) GetByUsername(_ context.Context, username string) (*models.User, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[username]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// Create assigns the next id and timestamps, then stores the task.
func (r memoryTasks) Create(_ context.Context, t models.Task) (models.Task, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastID++
	now := s.now()
	t.ID = s.lastID
	t.Completed = false
	t.CreatedAt = now
	t.UpdatedAt = now
	s.tasks[t.ID] = t
	return t, nil
}

func (r memoryTasks) Get(_ context.Context, id int64) (*models.Task, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

// ListByOwner returns the owner's tasks in ascending id order.
func (r memoryTasks) ListByOwner(_ context.Context, owner string) ([]models.Task, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Task, 0)
	for _, t := range s.tasks {
		if t.Owner == owner {
			out = append(out, t)
		}
	}
	slices.SortFunc(out, func(a, b models.Task) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return out, nil
}

// Update applies p iff the task exists and belongs to owner.
// UpdatedAt is refreshed even when p carries no fields.
func (r memoryTasks) Update(_ context.Context, id int64, owner string, p models.TaskPatch) (*models.Task, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok || t.Owner != owner {
		return nil, nil
	}
	p.Apply(&t)
	// a wall-clock step back must not leave UpdatedAt behind
	now := s.now()
	if !now.After(t.UpdatedAt) {
		now = t.UpdatedAt.Add(time.Nanosecond)
	}
	t.UpdatedAt = now
	s.tasks[id] = t
	return &t, nil
}

// Delete removes the task iff it exists and belongs to owner.
func (r memoryTasks) Delete(_ context.Context, id int64, owner string) (bool, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok || t.Owner != owner {
		return false, nil
	}
	delete(s.tasks, id)
	return true, nil
}
