package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhive/internal/model"
)

func mockDB(t *testing.T) (*UserRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewUserRepo(db), mock
}

func sampleUser() *model.User {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return &model.User{
		ID:           "u-1",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "$2a$10$hash",
		Role:         model.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestUserCreate(t *testing.T) {
	repo, mock := mockDB(t)
	u := sampleUser()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs(u.ID, u.Username, u.Email, u.PasswordHash, u.Role, u.CreatedAt, u.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), u))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreateMapsDuplicateEmail(t *testing.T) {
	repo, mock := mockDB(t)
	u := sampleUser()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'alice@example.com' for key 'users.uq_users_email'"))

	assert.ErrorIs(t, repo.Create(context.Background(), u), ErrEmailExists)
}

func TestUserCreateMapsDuplicateUsername(t *testing.T) {
	repo, mock := mockDB(t)
	u := sampleUser()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'alice' for key 'users.uq_users_username'"))

	assert.ErrorIs(t, repo.Create(context.Background(), u), ErrUsernameExists)
}

func TestUserFindByEmail(t *testing.T) {
	repo, mock := mockDB(t)
	u := sampleUser()

	rows := sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "role", "created_at", "updated_at"}).
		AddRow(u.ID, u.Username, u.Email, u.PasswordHash, u.Role, u.CreatedAt, u.UpdatedAt)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id,username,email,password_hash,role,created_at,updated_at FROM users WHERE email=? LIMIT 1")).
		WithArgs("alice@example.com").
		WillReturnRows(rows)

	got, err := repo.FindByEmail(context.Background(), "Alice@Example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, u.Username, got.Username)
}

func TestUserFindByIDNotFound(t *testing.T) {
	repo, mock := mockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id=? LIMIT 1")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "role", "created_at", "updated_at"}))

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserEmailExists(t *testing.T) {
	repo, mock := mockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM users WHERE email=? LIMIT 1")).
		WithArgs("alice@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	ok, err := repo.EmailExists(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.True(t, ok)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM users WHERE email=? LIMIT 1")).
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	ok, err = repo.EmailExists(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.False(t, ok)
}
