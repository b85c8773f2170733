package repository

import (
	"context"
	"database/sql"
	"errors"

	"taskhive/internal/model"
)

// TaskShareRepo persists rows of the 'task_shares' table. The pair
// (task_id, shared_with) carries a unique constraint.
type TaskShareRepo struct{ DB *sql.DB }

func NewTaskShareRepo(db *sql.DB) *TaskShareRepo { return &TaskShareRepo{DB: db} }

// Create inserts a share row.
func (r *TaskShareRepo) Create(ctx context.Context, s *model.TaskShare) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO task_shares (task_id, shared_with, permission, created_at) VALUES (?,?,?,?)",
		s.TaskID, s.SharedWith, s.Permission, s.CreatedAt)
	if isDuplicate(err) {
		return ErrDuplicate
	}
	return err
}

// FindByTaskAndUser fetches the share row for one (task, user) pair.
func (r *TaskShareRepo) FindByTaskAndUser(ctx context.Context, taskID, userID string) (*model.TaskShare, error) {
	var s model.TaskShare
	err := r.DB.QueryRowContext(ctx,
		"SELECT task_id, shared_with, permission, created_at FROM task_shares WHERE task_id=? AND shared_with=? LIMIT 1",
		taskID, userID).Scan(&s.TaskID, &s.SharedWith, &s.Permission, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListByTask returns every recipient of a task joined with user
// identity, for the owner's share listing.
func (r *TaskShareRepo) ListByTask(ctx context.Context, taskID string) ([]model.SharedUser, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT u.id, u.username, u.email, s.permission, s.created_at
		 FROM task_shares s JOIN users u ON u.id = s.shared_with
		 WHERE s.task_id=? ORDER BY s.created_at`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.SharedUser
	for rows.Next() {
		var su model.SharedUser
		if err := rows.Scan(&su.UserID, &su.Username, &su.Email, &su.Permission, &su.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, su)
	}
	return out, rows.Err()
}

// ListSharedWith returns the tasks shared with userID.
func (r *TaskShareRepo) ListSharedWith(ctx context.Context, userID string) ([]model.Task, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT t.id,t.title,t.description,t.status,t.priority,t.due_date,t.completed_at,t.owner_id,t.created_at,t.updated_at
		 FROM task_shares s JOIN tasks t ON t.id = s.task_id
		 WHERE s.shared_with=? ORDER BY s.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Task
	for rows.Next() {
		var t model.Task
		if err := scanTask(rows, &t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// UpdatePermission changes the permission of an existing share. The
// caller checks existence first; rows-affected is not consulted since
// MySQL reports zero for a no-change update.
func (r *TaskShareRepo) UpdatePermission(ctx context.Context, taskID, userID, permission string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE task_shares SET permission=? WHERE task_id=? AND shared_with=?",
		permission, taskID, userID)
	return err
}

// Delete revokes a share and reports whether a row was removed.
func (r *TaskShareRepo) Delete(ctx context.Context, taskID, userID string) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM task_shares WHERE task_id=? AND shared_with=?", taskID, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
