package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"task_tracker/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestEventSQLite_Append_SetsDefaults(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer func() { _ = db.Close() }()

	repo := NewEventSQLite(db)

	// generated id and timestamp are unknown; type must be normalized
	mock.ExpectExec(regexp.QuoteMeta(insertEventSQL)).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "CREATED", int64(4), "alice", "task created").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Append(context.Background(), models.TaskEvent{
		Type:        "  created ",
		TaskID:      4,
		Owner:       "alice",
		Description: "task created",
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestEventSQLite_Append_DBError(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta(insertEventSQL)).WillReturnError(errors.New("boom"))

	if err := NewEventSQLite(db).Append(context.Background(), models.TaskEvent{Type: "DELETED"}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestEventSQLite_List_BuildsFilters(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer func() { _ = db.Close() }()

	from := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	rows := sqlmock.NewRows([]string{"id", "occurred_at", "type", "task_id", "owner_username", "message"}).
		AddRow("e1", from.Add(time.Hour), "UPDATED", 9, "alice", "task updated")

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT id, occurred_at, type, task_id, owner_username, message FROM task_events WHERE owner_username = ? AND occurred_at >= ? AND occurred_at <= ? AND type = ? ORDER BY occurred_at ASC`,
	)).
		WithArgs("alice", from, to, "UPDATED").
		WillReturnRows(rows)

	got, err := NewEventSQLite(db).List(context.Background(), "alice", from, to, "updated")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 || got[0].EventID != "e1" || got[0].TaskID != 9 {
		t.Fatalf("unexpected events: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestMemoryEventLog_FiltersByOwnerRangeAndType(t *testing.T) {
	t.Parallel()

	log := NewMemoryEventLog()
	ctx := context.Background()
	base := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)

	for i, e := range []models.TaskEvent{
		{Type: models.EventTaskCreated, TaskID: 1, Owner: "alice", OccurredAt: base},
		{Type: models.EventTaskUpdated, TaskID: 1, Owner: "alice", OccurredAt: base.Add(time.Minute)},
		{Type: models.EventTaskCreated, TaskID: 2, Owner: "bob", OccurredAt: base.Add(2 * time.Minute)},
		{Type: models.EventTaskDeleted, TaskID: 1, Owner: "alice", OccurredAt: base.Add(3 * time.Minute)},
	} {
		if err := log.Append(ctx, e); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	all, _ := log.List(ctx, "alice", time.Time{}, time.Time{}, "")
	if len(all) != 3 {
		t.Fatalf("expected 3 events for alice, got %d", len(all))
	}
	for _, e := range all {
		if e.EventID == "" {
			t.Fatalf("expected generated event id")
		}
	}

	ranged, _ := log.List(ctx, "alice", base.Add(30*time.Second), base.Add(3*time.Minute), "")
	if len(ranged) != 2 {
		t.Fatalf("expected 2 events in range, got %d", len(ranged))
	}

	typed, _ := log.List(ctx, "alice", time.Time{}, time.Time{}, " deleted")
	if len(typed) != 1 || typed[0].Type != models.EventTaskDeleted {
		t.Fatalf("unexpected typed result: %+v", typed)
	}
}

func TestMemoryEventLog_EvictsOldestWhenFull(t *testing.T) {
	t.Parallel()

	log := NewMemoryEventLogWithCapacity(3)
	ctx := context.Background()
	base := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)

	for i := 1; i <= 5; i++ {
		e := models.TaskEvent{Type: models.EventTaskCreated, TaskID: int64(i), Owner: "alice", OccurredAt: base.Add(time.Duration(i) * time.Minute)}
		if err := log.Append(ctx, e); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	if log.Len() != 3 {
		t.Fatalf("expected 3 retained events, got %d", log.Len())
	}
	got, _ := log.List(ctx, "alice", time.Time{}, time.Time{}, "")
	if len(got) != 3 {
		t.Fatalf("expected 3 events, got %d", len(got))
	}
	for i, want := range []int64{3, 4, 5} {
		if got[i].TaskID != want {
			t.Fatalf("event %d: task id %d, want %d (oldest first)", i, got[i].TaskID, want)
		}
	}
}
