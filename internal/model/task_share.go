package model

import "time"

// Permission values stored in task_shares.permission.
const (
	PermissionView = "VIEW"
	PermissionEdit = "EDIT"
)

// ValidPermission reports whether p is a known share permission.
func ValidPermission(p string) bool {
	return p == PermissionView || p == PermissionEdit
}

// TaskShare represents a row in the `task_shares` table. The pair
// (TaskID, SharedWith) is unique; the task owner never appears here
// because ownership supersedes any share.
type TaskShare struct {
	TaskID     string    // task_shares.task_id
	SharedWith string    // task_shares.shared_with
	Permission string    // task_shares.permission
	CreatedAt  time.Time // task_shares.created_at
}

// SharedUser is the joined view of a share and the recipient user,
// returned when the owner lists who a task is shared with.
type SharedUser struct {
	UserID     string    `json:"userId"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Permission string    `json:"permission"`
	CreatedAt  time.Time `json:"createdAt"`
}
