// Package service holds the business core: the auth orchestrator, the
// task and sharing services with their resource authorization, and the
// attachment service. Store dependencies are narrow interfaces so the
// state-machine behavior can be tested without a database.
package service

import (
	"context"
	"time"

	"taskhive/internal/model"
	"taskhive/internal/queue"
	"taskhive/internal/repository"
)

// UserStore is the identity store contract.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
}

// SessionStore is the persisted refresh-token session contract.
// Delete reports whether a row was actually removed so concurrent
// rotations can detect losing the race.
type SessionStore interface {
	Create(ctx context.Context, t *model.RefreshToken) error
	FindByToken(ctx context.Context, tok string) (*model.RefreshToken, error)
	Delete(ctx context.Context, tok string) (bool, error)
	DeleteAllByUser(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// TaskStore is the task persistence contract.
type TaskStore interface {
	Create(ctx context.Context, t *model.Task) error
	FindByID(ctx context.Context, id string) (*model.Task, error)
	FindOwned(ctx context.Context, id, ownerID string) (*model.Task, error)
	List(ctx context.Context, scope repository.Scope, f repository.TaskFilter, p repository.Page, now time.Time) ([]model.Task, int, error)
	Update(ctx context.Context, t *model.Task) error
	Delete(ctx context.Context, id string) (bool, error)
	Stats(ctx context.Context, scope repository.Scope, now time.Time) (*model.TaskStats, error)
}

// ShareStore is the delegated-permission persistence contract.
type ShareStore interface {
	Create(ctx context.Context, s *model.TaskShare) error
	FindByTaskAndUser(ctx context.Context, taskID, userID string) (*model.TaskShare, error)
	ListByTask(ctx context.Context, taskID string) ([]model.SharedUser, error)
	ListSharedWith(ctx context.Context, userID string) ([]model.Task, error)
	UpdatePermission(ctx context.Context, taskID, userID, permission string) error
	Delete(ctx context.Context, taskID, userID string) (bool, error)
}

// AttachmentStore is the attachment metadata contract.
type AttachmentStore interface {
	Create(ctx context.Context, a *model.Attachment) error
	FindByID(ctx context.Context, id string) (*model.Attachment, error)
	ListByTask(ctx context.Context, taskID string) ([]model.Attachment, error)
	Delete(ctx context.Context, id string) error
}

// EventPublisher pushes task lifecycle events to the broker. A nil
// publisher disables events; a publish failure never fails the
// request that triggered it.
type EventPublisher interface {
	PublishTaskCompleted(ctx context.Context, ev queue.TaskCompletedEvent) error
}
