package service

import (
	"context"
	"errors"
	"time"

	"taskhive/internal/apperr"
	"taskhive/internal/model"
	"taskhive/internal/repository"
)

// ShareService manages delegated task permissions. Every management
// operation starts with an owner-scoped task lookup, so "task doesn't
// exist" and "you don't own it" collapse into one response and task
// existence never leaks to non-owners.
type ShareService struct {
	tasks  TaskStore
	shares ShareStore
	users  UserStore
	now    func() time.Time
}

// NewShareService wires the sharing service.
func NewShareService(tasks TaskStore, shares ShareStore, users UserStore) *ShareService {
	return &ShareService{
		tasks:  tasks,
		shares: shares,
		users:  users,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Share grants sharedWith the given permission on a task owned by
// ownerID. Checks run in contract order: owner-scoped task lookup,
// self-share, recipient existence, duplicate share.
func (s *ShareService) Share(ctx context.Context, ownerID, taskID, sharedWith, permission string) (*model.TaskShare, error) {
	if err := s.requireOwned(ctx, ownerID, taskID); err != nil {
		return nil, err
	}
	if sharedWith == ownerID {
		return nil, apperr.Forbidden("Cannot share task with yourself")
	}
	if _, err := s.users.FindByID(ctx, sharedWith); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("Recipient user not found")
		}
		return nil, apperr.Internal("share task failed", err)
	}
	_, err := s.shares.FindByTaskAndUser(ctx, taskID, sharedWith)
	if err == nil {
		return nil, apperr.Conflict("Task already shared with this user")
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Internal("share task failed", err)
	}

	share := &model.TaskShare{
		TaskID:     taskID,
		SharedWith: sharedWith,
		Permission: permission,
		CreatedAt:  s.now(),
	}
	if err := s.shares.Create(ctx, share); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict("Task already shared with this user")
		}
		return nil, apperr.Internal("share task failed", err)
	}
	return share, nil
}

// SharedUsers lists who a task is shared with. Owner only.
func (s *ShareService) SharedUsers(ctx context.Context, ownerID, taskID string) ([]model.SharedUser, error) {
	if err := s.requireOwned(ctx, ownerID, taskID); err != nil {
		return nil, err
	}
	out, err := s.shares.ListByTask(ctx, taskID)
	if err != nil {
		return nil, apperr.Internal("list shares failed", err)
	}
	return out, nil
}

// UpdatePermission changes an existing share's permission. Owner only.
func (s *ShareService) UpdatePermission(ctx context.Context, ownerID, taskID, sharedWith, permission string) (*model.TaskShare, error) {
	if err := s.requireOwned(ctx, ownerID, taskID); err != nil {
		return nil, err
	}
	share, err := s.shares.FindByTaskAndUser(ctx, taskID, sharedWith)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("Share not found")
	}
	if err != nil {
		return nil, apperr.Internal("update share failed", err)
	}
	if err := s.shares.UpdatePermission(ctx, taskID, sharedWith, permission); err != nil {
		return nil, apperr.Internal("update share failed", err)
	}
	share.Permission = permission
	return share, nil
}

// Revoke removes a share. Owner only.
func (s *ShareService) Revoke(ctx context.Context, ownerID, taskID, sharedWith string) error {
	if err := s.requireOwned(ctx, ownerID, taskID); err != nil {
		return err
	}
	deleted, err := s.shares.Delete(ctx, taskID, sharedWith)
	if err != nil {
		return apperr.Internal("revoke share failed", err)
	}
	if !deleted {
		return apperr.NotFound("Share not found")
	}
	return nil
}

// SharedWithMe lists the tasks other owners shared with userID.
func (s *ShareService) SharedWithMe(ctx context.Context, userID string) ([]model.Task, error) {
	out, err := s.shares.ListSharedWith(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("list shared tasks failed", err)
	}
	return out, nil
}

func (s *ShareService) requireOwned(ctx context.Context, ownerID, taskID string) error {
	_, err := s.tasks.FindOwned(ctx, taskID, ownerID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("Task not found or access denied")
	}
	if err != nil {
		return apperr.Internal("load task failed", err)
	}
	return nil
}
