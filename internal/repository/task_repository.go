package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskhive/internal/model"
)

// TaskFilter narrows a task list/stat query. Zero values mean "no
// constraint".
type TaskFilter struct {
	Status      string
	Priority    string
	Search      string
	DueDateFrom *time.Time
	DueDateTo   *time.Time
	Overdue     bool
}

// Page carries pagination and ordering for a task list query.
type Page struct {
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// sortColumns whitelists sortable columns so request input never
// reaches the ORDER BY clause directly.
var sortColumns = map[string]string{
	"createdAt": "created_at",
	"dueDate":   "due_date",
	"priority":  "priority",
	"title":     "title",
}

// TaskRepo persists rows of the 'tasks' table.
type TaskRepo struct{ DB *sql.DB }

func NewTaskRepo(db *sql.DB) *TaskRepo { return &TaskRepo{DB: db} }

const taskColumns = "id,title,description,status,priority,due_date,completed_at,owner_id,created_at,updated_at"

// Create inserts a fully-populated task row.
func (r *TaskRepo) Create(ctx context.Context, t *model.Task) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO tasks (id, title, description, status, priority, due_date, completed_at, owner_id, created_at, updated_at) VALUES (?,?,?,?,?,?,?,?,?,?)",
		t.ID, t.Title, t.Description, t.Status, t.Priority, t.DueDate, t.CompletedAt, t.OwnerID, t.CreatedAt, t.UpdatedAt)
	return err
}

// FindByID fetches a task regardless of owner. Authorization against
// the caller happens in the service layer, which needs the row either
// way to resolve ownership and shares.
func (r *TaskRepo) FindByID(ctx context.Context, id string) (*model.Task, error) {
	return r.findOne(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id=? LIMIT 1", id)
}

// FindOwned fetches a task only when ownerID owns it. Share management
// uses this owner-scoped lookup so a non-owner cannot distinguish
// "absent" from "not yours".
func (r *TaskRepo) FindOwned(ctx context.Context, id, ownerID string) (*model.Task, error) {
	return r.findOne(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id=? AND owner_id=? LIMIT 1", id, ownerID)
}

// List returns one page of tasks within scope plus the total match
// count. now anchors the overdue filter.
func (r *TaskRepo) List(ctx context.Context, scope Scope, f TaskFilter, p Page, now time.Time) ([]model.Task, int, error) {
	where, args := buildWhere(scope, f, now)

	var total int
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM tasks"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	col, ok := sortColumns[p.SortBy]
	if !ok {
		col = "created_at"
	}
	dir := "DESC"
	if strings.EqualFold(p.SortOrder, "asc") {
		dir = "ASC"
	}
	query := fmt.Sprintf("SELECT %s FROM tasks%s ORDER BY %s %s LIMIT ? OFFSET ?", taskColumns, where, col, dir)
	args = append(args, p.PageSize, (p.Page-1)*p.PageSize)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	tasks := make([]model.Task, 0, p.PageSize)
	for rows.Next() {
		var t model.Task
		if err := scanTask(rows, &t); err != nil {
			return nil, 0, err
		}
		tasks = append(tasks, t)
	}
	return tasks, total, rows.Err()
}

// Update rewrites the mutable columns of a task row.
func (r *TaskRepo) Update(ctx context.Context, t *model.Task) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE tasks SET title=?, description=?, status=?, priority=?, due_date=?, completed_at=?, updated_at=? WHERE id=?",
		t.Title, t.Description, t.Status, t.Priority, t.DueDate, t.CompletedAt, t.UpdatedAt, t.ID)
	return err
}

// Delete removes a task row; shares and attachments cascade via
// foreign keys. Reports whether a row was removed.
func (r *TaskRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM tasks WHERE id=?", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Stats aggregates per-status counts and the overdue count for scope
// in a single scan.
func (r *TaskRepo) Stats(ctx context.Context, scope Scope, now time.Time) (*model.TaskStats, error) {
	where, args := buildWhere(scope, TaskFilter{}, now)
	query := `SELECT
		COUNT(*),
		COALESCE(SUM(status='TODO'),0),
		COALESCE(SUM(status='IN_PROGRESS'),0),
		COALESCE(SUM(status='COMPLETED'),0),
		COALESCE(SUM(due_date IS NOT NULL AND due_date < ? AND status <> 'COMPLETED'),0)
		FROM tasks` + where
	args = append([]interface{}{now}, args...)

	var s model.TaskStats
	err := r.DB.QueryRowContext(ctx, query, args...).
		Scan(&s.Total, &s.Todo, &s.InProgress, &s.Completed, &s.Overdue)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func buildWhere(scope Scope, f TaskFilter, now time.Time) (string, []interface{}) {
	var conds []string
	var args []interface{}

	if !scope.All() {
		conds = append(conds, "owner_id=?")
		args = append(args, scope.UserID())
	}
	if f.Status != "" {
		conds = append(conds, "status=?")
		args = append(args, f.Status)
	}
	if f.Priority != "" {
		conds = append(conds, "priority=?")
		args = append(args, f.Priority)
	}
	if f.DueDateFrom != nil {
		conds = append(conds, "due_date >= ?")
		args = append(args, *f.DueDateFrom)
	}
	if f.DueDateTo != nil {
		conds = append(conds, "due_date <= ?")
		args = append(args, *f.DueDateTo)
	}
	if f.Overdue {
		conds = append(conds, "due_date < ?", "status <> 'COMPLETED'")
		args = append(args, now)
	}
	if f.Search != "" {
		conds = append(conds, "(title LIKE ? OR description LIKE ?)")
		like := "%" + f.Search + "%"
		args = append(args, like, like)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *TaskRepo) findOne(ctx context.Context, query string, args ...interface{}) (*model.Task, error) {
	var t model.Task
	err := scanTask(r.DB.QueryRowContext(ctx, query, args...), &t)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

type rowScanner interface{ Scan(dest ...interface{}) error }

func scanTask(row rowScanner, t *model.Task) error {
	return row.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&t.DueDate, &t.CompletedAt, &t.OwnerID, &t.CreatedAt, &t.UpdatedAt)
}
