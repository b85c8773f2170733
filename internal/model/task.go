package model

import "time"

// Status values stored in tasks.status.
const (
	StatusTodo       = "TODO"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
)

// Priority values stored in tasks.priority.
const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
)

// ValidStatus reports whether s is a known task status.
func ValidStatus(s string) bool {
	return s == StatusTodo || s == StatusInProgress || s == StatusCompleted
}

// ValidPriority reports whether p is a known task priority.
func ValidPriority(p string) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Task represents a row in the `tasks` table. CompletedAt is set
// exactly when Status transitions to COMPLETED and cleared when it
// leaves that state.
//
// Fields:
//  ID          – primary key (UUID string).
//  Title       – short title, 1–200 chars.
//  Description – optional longer text.
//  Status      – TODO, IN_PROGRESS or COMPLETED.
//  Priority    – LOW, MEDIUM or HIGH.
//  DueDate     – optional deadline.
//  CompletedAt – when the task entered COMPLETED (nullable).
//  OwnerID     – user owning the task.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Task struct {
	ID          string     // tasks.id
	Title       string     // tasks.title
	Description *string    // tasks.description (nullable)
	Status      string     // tasks.status
	Priority    string     // tasks.priority
	DueDate     *time.Time // tasks.due_date (nullable)
	CompletedAt *time.Time // tasks.completed_at (nullable)
	OwnerID     string     // tasks.owner_id
	CreatedAt   time.Time  // tasks.created_at
	UpdatedAt   time.Time  // tasks.updated_at
}

// TaskStats aggregates task counts for one query scope.
type TaskStats struct {
	Total      int `json:"total"`
	Todo       int `json:"todo"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
	Overdue    int `json:"overdue"`
}
