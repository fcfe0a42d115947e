package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"task_tracker/internal/models"

	"github.com/google/uuid"
)

// DefaultEventLogCapacity bounds the in-memory activity log.
const DefaultEventLogCapacity = 10_000

// MemoryEventLog is a process-local activity log kept in a fixed-size ring.
// Once full, each append evicts the oldest event.
type MemoryEventLog struct {
	mu       sync.RWMutex
	buf      []models.TaskEvent // grows up to capacity, then wraps
	capacity int
	start    int // index of the oldest event once wrapped
}

var _ EventRepo = (*MemoryEventLog)(nil)

func NewMemoryEventLog() *MemoryEventLog { return NewMemoryEventLogWithCapacity(DefaultEventLogCapacity) }

// NewMemoryEventLogWithCapacity keeps at most capacity events; values below 1 mean 1.
func NewMemoryEventLogWithCapacity(capacity int) *MemoryEventLog {
	if capacity < 1 {
		capacity = 1
	}
	return &MemoryEventLog{capacity: capacity}
}

// Append stores e. If EventID or OccurredAt are empty, they’re set.
func (l *MemoryEventLog) Append(_ context.Context, e models.TaskEvent) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	} else {
		e.OccurredAt = e.OccurredAt.UTC()
	}
	e.Type = strings.ToUpper(strings.TrimSpace(e.Type))

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.buf) < l.capacity {
		l.buf = append(l.buf, e)
		return nil
	}
	l.buf[l.start] = e
	l.start = (l.start + 1) % l.capacity
	return nil
}

// Len reports how many events are retained.
func (l *MemoryEventLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.buf)
}

// List returns the owner's events filtered by [from, to] (inclusive) and/or
// type, oldest first. Zero bounds and an empty type are not applied.
func (l *MemoryEventLog) List(_ context.Context, owner string, from, to time.Time, typ string) ([]models.TaskEvent, error) {
	typ = strings.ToUpper(strings.TrimSpace(typ))

	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]models.TaskEvent, 0)
	for i := range len(l.buf) {
		e := l.buf[(l.start+i)%len(l.buf)]
		if e.Owner != owner {
			continue
		}
		if !from.IsZero() && e.OccurredAt.Before(from) {
			continue
		}
		if !to.IsZero() && e.OccurredAt.After(to) {
			continue
		}
		if typ != "" && e.Type != typ {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
