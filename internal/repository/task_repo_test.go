package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"task_tracker/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var taskColumns = []string{"id", "title", "description", "owner_username", "completed", "created_at", "updated_at"}

func newMockTaskRepo(t *testing.T) (*TaskSQLite, sqlmock.Sqlmock, time.Time) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})

	now := time.Date(2025, 5, 1, 9, 30, 0, 0, time.UTC)
	repo := NewTaskSQLite(db)
	repo.now = func() time.Time { return now }
	return repo, mock, now
}

func TestTaskSQLite_Create(t *testing.T) {
	repo, mock, now := newMockTaskRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(insertTaskSQL)).
		WithArgs("T", "D", "alice", now, now).
		WillReturnResult(sqlmock.NewResult(7, 1))

	task, err := repo.Create(context.Background(), models.Task{Title: "T", Description: "D", Owner: "alice", Completed: true})
	require.NoError(t, err)
	assert.Equal(t, int64(7), task.ID)
	assert.False(t, task.Completed)
	assert.Equal(t, now, task.CreatedAt)
	assert.Equal(t, now, task.UpdatedAt)
}

func TestTaskSQLite_Create_ExecError(t *testing.T) {
	repo, mock, now := newMockTaskRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(insertTaskSQL)).
		WithArgs("T", "", "alice", now, now).
		WillReturnError(errors.New("disk I/O error"))

	_, err := repo.Create(context.Background(), models.Task{Title: "T", Owner: "alice"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert task")
}

func TestTaskSQLite_Get(t *testing.T) {
	repo, mock, now := newMockTaskRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectTaskSQL)).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(taskColumns).AddRow(3, "T", "D", "alice", true, now, now))
	mock.ExpectQuery(regexp.QuoteMeta(selectTaskSQL)).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows(taskColumns))

	task, err := repo.Get(context.Background(), 3)
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Equal(t, "alice", task.Owner)
	assert.True(t, task.Completed)

	missing, err := repo.Get(context.Background(), 4)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestTaskSQLite_ListByOwner(t *testing.T) {
	repo, mock, now := newMockTaskRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectTasksByOwnerSQL)).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(taskColumns).
			AddRow(1, "a", "", "alice", false, now, now).
			AddRow(5, "b", "", "alice", true, now, now))

	list, err := repo.ListByOwner(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(1), list[0].ID)
	assert.Equal(t, int64(5), list[1].ID)
}

func TestTaskSQLite_Update_AppliesOnlySuppliedFields(t *testing.T) {
	repo, mock, now := newMockTaskRepo(t)
	created := now.Add(-time.Hour)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(updateTaskSQL)).
		WithArgs(nil, nil, true, now, int64(2), "alice").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(selectTaskSQL)).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows(taskColumns).AddRow(2, "T", "D", "alice", true, created, now))
	mock.ExpectCommit()

	done := true
	task, err := repo.Update(context.Background(), 2, "alice", models.TaskPatch{Completed: &done})
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Equal(t, "T", task.Title)
	assert.True(t, task.Completed)
	assert.Equal(t, now, task.UpdatedAt)
}

func TestTaskSQLite_Update_NotOwnedIsAbsent(t *testing.T) {
	repo, mock, now := newMockTaskRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(updateTaskSQL)).
		WithArgs("x", nil, nil, now, int64(2), "bob").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	title := "x"
	task, err := repo.Update(context.Background(), 2, "bob", models.TaskPatch{Title: &title})
	require.NoError(t, err)
	assert.Nil(t, task)
}

func TestTaskSQLite_Delete(t *testing.T) {
	repo, mock, _ := newMockTaskRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(deleteTaskSQL)).
		WithArgs(int64(1), "alice").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(deleteTaskSQL)).
		WithArgs(int64(1), "bob").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.Delete(context.Background(), 1, "alice")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Delete(context.Background(), 1, "bob")
	require.NoError(t, err)
	assert.False(t, ok)
}
