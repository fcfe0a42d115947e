package models

import "time"

const (
	EventTaskCreated = "CREATED"
	EventTaskUpdated = "UPDATED"
	EventTaskDeleted = "DELETED"
)

// TaskEvent is a single activity log entry.
type TaskEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"` // CREATED | UPDATED | DELETED
	TaskID      int64     `json:"task_id"`
	Owner       string    `json:"-"`
	Description string    `json:"description"` // human-readable
}
