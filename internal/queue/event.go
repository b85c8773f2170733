// Package queue defines the task lifecycle events exchanged over the
// message broker and the consumer that logs them.
package queue

// TaskCompletedEvent is published when a task transitions to
// COMPLETED. It carries enough for downstream consumers to log or
// notify without querying the primary database.
type TaskCompletedEvent struct {
	TaskID      string `json:"task_id"`
	Title       string `json:"title"`
	OwnerID     string `json:"owner_id"`
	CompletedAt string `json:"completed_at"`
}
