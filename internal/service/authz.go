package service

import (
	"context"
	"errors"

	"taskhive/internal/apperr"
	"taskhive/internal/model"
	"taskhive/internal/repository"
	"taskhive/internal/token"
)

// Resource authorization for task-scoped operations. A read is allowed
// to the owner, any ADMIN, or a user holding a share (VIEW suffices).
// A write is owner/admin only; a share grants no mutation through the
// exposed endpoints. Denied callers get the same NotFound as an absent
// task so existence is never leaked.

func resolveTaskForRead(ctx context.Context, tasks TaskStore, shares ShareStore, cl token.Claims, taskID string) (*model.Task, error) {
	t, err := loadTask(ctx, tasks, taskID)
	if err != nil {
		return nil, err
	}
	if cl.Role == model.RoleAdmin || t.OwnerID == cl.UserID {
		return t, nil
	}
	_, err = shares.FindByTaskAndUser(ctx, taskID, cl.UserID)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Internal("load share failed", err)
	}
	return nil, apperr.NotFound("Task not found")
}

func resolveTaskForWrite(ctx context.Context, tasks TaskStore, cl token.Claims, taskID string) (*model.Task, error) {
	t, err := loadTask(ctx, tasks, taskID)
	if err != nil {
		return nil, err
	}
	if cl.Role == model.RoleAdmin || t.OwnerID == cl.UserID {
		return t, nil
	}
	return nil, apperr.NotFound("Task not found")
}

func loadTask(ctx context.Context, tasks TaskStore, taskID string) (*model.Task, error) {
	t, err := tasks.FindByID(ctx, taskID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("Task not found")
	}
	if err != nil {
		return nil, apperr.Internal("load task failed", err)
	}
	return t, nil
}

// queryScope maps a claim to the explicit list/stat scope: ADMIN
// bypasses ownership filtering, everyone else sees their own rows.
func queryScope(cl token.Claims) repository.Scope {
	if cl.Role == model.RoleAdmin {
		return repository.AllOwners()
	}
	return repository.OwnedBy(cl.UserID)
}
