package repository

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhive/internal/model"
)

func taskRepo(t *testing.T) (*TaskRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewTaskRepo(db), mock
}

var taskCols = []string{"id", "title", "description", "status", "priority", "due_date", "completed_at", "owner_id", "created_at", "updated_at"}

func taskRow(id, owner string, now time.Time) []driver.Value {
	return []driver.Value{id, "write report", nil, model.StatusTodo, model.PriorityMedium, nil, nil, owner, now, now}
}

func TestTaskFindByID(t *testing.T) {
	repo, mock := taskRepo(t)
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM tasks WHERE id=? LIMIT 1")).
		WithArgs("t-1").
		WillReturnRows(sqlmock.NewRows(taskCols).AddRow(taskRow("t-1", "u-1", now)...))

	got, err := repo.FindByID(context.Background(), "t-1")
	require.NoError(t, err)
	assert.Equal(t, "t-1", got.ID)
	assert.Equal(t, "u-1", got.OwnerID)
	assert.Nil(t, got.Description)
	assert.Nil(t, got.DueDate)
}

func TestTaskFindOwnedMissesForeignRow(t *testing.T) {
	repo, mock := taskRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM tasks WHERE id=? AND owner_id=? LIMIT 1")).
		WithArgs("t-1", "intruder").
		WillReturnRows(sqlmock.NewRows(taskCols))

	_, err := repo.FindOwned(context.Background(), "t-1", "intruder")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTaskListScopedWithFilters(t *testing.T) {
	repo, mock := taskRepo(t)
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM tasks WHERE owner_id=? AND status=? AND (title LIKE ? OR description LIKE ?)")).
		WithArgs("u-1", model.StatusTodo, "%report%", "%report%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM tasks WHERE owner_id=? AND status=? AND (title LIKE ? OR description LIKE ?) ORDER BY created_at DESC LIMIT ? OFFSET ?")).
		WithArgs("u-1", model.StatusTodo, "%report%", "%report%", 20, 0).
		WillReturnRows(sqlmock.NewRows(taskCols).AddRow(taskRow("t-1", "u-1", now)...))

	tasks, total, err := repo.List(context.Background(),
		OwnedBy("u-1"),
		TaskFilter{Status: model.StatusTodo, Search: "report"},
		Page{Page: 1, PageSize: 20},
		now)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, tasks, 1)
	assert.Equal(t, "t-1", tasks[0].ID)
}

// The unscoped variant must not constrain on owner_id at all.
func TestTaskListAllOwners(t *testing.T) {
	repo, mock := taskRepo(t)
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM tasks")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(regexp.QuoteMeta("FROM tasks ORDER BY due_date ASC LIMIT ? OFFSET ?")).
		WithArgs(10, 10).
		WillReturnRows(sqlmock.NewRows(taskCols).
			AddRow(taskRow("t-1", "u-1", now)...).
			AddRow(taskRow("t-2", "u-2", now)...))

	tasks, total, err := repo.List(context.Background(),
		AllOwners(),
		TaskFilter{},
		Page{Page: 2, PageSize: 10, SortBy: "dueDate", SortOrder: "asc"},
		now)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, tasks, 2)
}

// Unknown sort input falls back to created_at DESC instead of reaching
// the ORDER BY clause.
func TestTaskListRejectsUnknownSortColumn(t *testing.T) {
	repo, mock := taskRepo(t)
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM tasks WHERE owner_id=?")).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC LIMIT ? OFFSET ?")).
		WithArgs("u-1", 20, 0).
		WillReturnRows(sqlmock.NewRows(taskCols))

	_, _, err := repo.List(context.Background(),
		OwnedBy("u-1"),
		TaskFilter{},
		Page{Page: 1, PageSize: 20, SortBy: "password_hash; DROP TABLE users"},
		now)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskDeleteReportsRowsAffected(t *testing.T) {
	repo, mock := taskRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tasks WHERE id=?")).
		WithArgs("t-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	deleted, err := repo.Delete(context.Background(), "t-1")
	require.NoError(t, err)
	assert.True(t, deleted)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tasks WHERE id=?")).
		WithArgs("gone").
		WillReturnResult(sqlmock.NewResult(0, 0))
	deleted, err = repo.Delete(context.Background(), "gone")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestTaskStats(t *testing.T) {
	repo, mock := taskRepo(t)
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT").
		WithArgs(now, "u-1").
		WillReturnRows(sqlmock.NewRows([]string{"total", "todo", "in_progress", "completed", "overdue"}).
			AddRow(10, 4, 3, 3, 2))

	s, err := repo.Stats(context.Background(), OwnedBy("u-1"), now)
	require.NoError(t, err)
	assert.Equal(t, &model.TaskStats{Total: 10, Todo: 4, InProgress: 3, Completed: 3, Overdue: 2}, s)
}
