package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"task_tracker/internal/models"
)

type TaskSQLite struct {
	db  *sql.DB
	now func() time.Time
}

var _ TaskRepo = (*TaskSQLite)(nil)

func NewTaskSQLite(db *sql.DB) *TaskSQLite {
	return &TaskSQLite{db: db, now: func() time.Time { return time.Now().UTC() }}
}

const (
	insertTaskSQL = `
		INSERT INTO tasks (title, description, owner_username, completed, created_at, updated_at)
		VALUES (?, ?, ?, 0, ?, ?)
	`
	selectTaskSQL = `
		SELECT id, title, description, owner_username, completed, created_at, updated_at
		FROM tasks WHERE id = ?
	`
	selectTasksByOwnerSQL = `
		SELECT id, title, description, owner_username, completed, created_at, updated_at
		FROM tasks WHERE owner_username = ? ORDER BY id ASC
	`
	// COALESCE keeps the stored value for every field the caller left out.
	updateTaskSQL = `
		UPDATE tasks SET
			title = COALESCE(?, title),
			description = COALESCE(?, description),
			completed = COALESCE(?, completed),
			updated_at = ?
		WHERE id = ? AND owner_username = ?
	`
	deleteTaskSQL = `DELETE FROM tasks WHERE id = ? AND owner_username = ?`
)

// Create inserts t and returns it with the id and timestamps assigned by the store.
func (r *TaskSQLite) Create(ctx context.Context, t models.Task) (models.Task, error) {
	now := r.now()
	res, err := r.db.ExecContext(ctx, insertTaskSQL, t.Title, t.Description, t.Owner, now, now)
	if err != nil {
		return models.Task{}, fmt.Errorf("insert task for %q: %w", t.Owner, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Task{}, fmt.Errorf("get last insert id for task: %w", err)
	}
	t.ID = id
	t.Completed = false
	t.CreatedAt = now
	t.UpdatedAt = now
	return t, nil
}

// Get returns (nil, nil) if the task does not exist.
func (r *TaskSQLite) Get(ctx context.Context, id int64) (*models.Task, error) {
	t, err := scanTask(r.db.QueryRowContext(ctx, selectTaskSQL, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select task %d: %w", id, err)
	}
	return &t, nil
}

func (r *TaskSQLite) ListByOwner(ctx context.Context, owner string) ([]models.Task, error) {
	rows, err := r.db.QueryContext(ctx, selectTasksByOwnerSQL, owner)
	if err != nil {
		return nil, fmt.Errorf("select tasks for %q: %w", owner, err)
	}
	defer rows.Close()

	out := make([]models.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update patches the task and reads it back inside one transaction.
func (r *TaskSQLite) Update(ctx context.Context, id int64, owner string, p models.TaskPatch) (*models.Task, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin update task %d: %w", id, err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, updateTaskSQL,
		nullString(p.Title),
		nullString(p.Description),
		nullBool(p.Completed),
		r.now(),
		id, owner,
	)
	if err != nil {
		return nil, fmt.Errorf("update task %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected for task %d: %w", id, err)
	}
	if n == 0 {
		return nil, nil
	}

	t, err := scanTask(tx.QueryRowContext(ctx, selectTaskSQL, id))
	if err != nil {
		return nil, fmt.Errorf("reload task %d: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update task %d: %w", id, err)
	}
	return &t, nil
}

func (r *TaskSQLite) Delete(ctx context.Context, id int64, owner string) (bool, error) {
	res, err := r.db.ExecContext(ctx, deleteTaskSQL, id, owner)
	if err != nil {
		return false, fmt.Errorf("delete task %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected for task %d: %w", id, err)
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (models.Task, error) {
	var t models.Task
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Owner, &t.Completed, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return models.Task{}, err
	}
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return t, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}
