package handler

import (
	"time"

	"taskhive/internal/model"
)

// Response views. Users are always projected through userView so the
// password digest cannot leak into a response body.

type userView struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toUserView(u *model.User) userView {
	return userView{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type taskView struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
	CompletedAt *time.Time `json:"completedAt"`
	OwnerID     string     `json:"ownerId"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func toTaskView(t *model.Task) taskView {
	return taskView{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		DueDate:     t.DueDate,
		CompletedAt: t.CompletedAt,
		OwnerID:     t.OwnerID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func toTaskViews(tasks []model.Task) []taskView {
	out := make([]taskView, 0, len(tasks))
	for i := range tasks {
		out = append(out, toTaskView(&tasks[i]))
	}
	return out
}

type shareView struct {
	TaskID     string    `json:"taskId"`
	SharedWith string    `json:"sharedWith"`
	Permission string    `json:"permission"`
	CreatedAt  time.Time `json:"createdAt"`
}

func toShareView(s *model.TaskShare) shareView {
	return shareView{
		TaskID:     s.TaskID,
		SharedWith: s.SharedWith,
		Permission: s.Permission,
		CreatedAt:  s.CreatedAt,
	}
}

type attachmentView struct {
	ID           string    `json:"id"`
	TaskID       string    `json:"taskId"`
	OriginalName string    `json:"originalName"`
	MimeType     string    `json:"mimeType"`
	Size         int64     `json:"size"`
	UploadedBy   string    `json:"uploadedBy"`
	CreatedAt    time.Time `json:"createdAt"`
}

func toAttachmentView(a *model.Attachment) attachmentView {
	return attachmentView{
		ID:           a.ID,
		TaskID:       a.TaskID,
		OriginalName: a.OriginalName,
		MimeType:     a.MimeType,
		Size:         a.Size,
		UploadedBy:   a.UploadedBy,
		CreatedAt:    a.CreatedAt,
	}
}
