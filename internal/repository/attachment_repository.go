package repository

import (
	"context"
	"database/sql"
	"errors"

	"taskhive/internal/model"
)

// AttachmentRepo persists rows of the 'attachments' table.
type AttachmentRepo struct{ DB *sql.DB }

func NewAttachmentRepo(db *sql.DB) *AttachmentRepo { return &AttachmentRepo{DB: db} }

const attachmentColumns = "id,task_id,filename,original_name,mime_type,size,path,uploaded_by,created_at"

// Create inserts an attachment metadata row.
func (r *AttachmentRepo) Create(ctx context.Context, a *model.Attachment) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO attachments (id, task_id, filename, original_name, mime_type, size, path, uploaded_by, created_at) VALUES (?,?,?,?,?,?,?,?,?)",
		a.ID, a.TaskID, a.Filename, a.OriginalName, a.MimeType, a.Size, a.Path, a.UploadedBy, a.CreatedAt)
	return err
}

// FindByID fetches an attachment by id.
func (r *AttachmentRepo) FindByID(ctx context.Context, id string) (*model.Attachment, error) {
	var a model.Attachment
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+attachmentColumns+" FROM attachments WHERE id=? LIMIT 1", id).
		Scan(&a.ID, &a.TaskID, &a.Filename, &a.OriginalName, &a.MimeType, &a.Size, &a.Path, &a.UploadedBy, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListByTask returns every attachment of a task, newest first.
func (r *AttachmentRepo) ListByTask(ctx context.Context, taskID string) ([]model.Attachment, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+attachmentColumns+" FROM attachments WHERE task_id=? ORDER BY created_at DESC", taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Attachment
	for rows.Next() {
		var a model.Attachment
		if err := rows.Scan(&a.ID, &a.TaskID, &a.Filename, &a.OriginalName, &a.MimeType, &a.Size, &a.Path, &a.UploadedBy, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Delete removes an attachment row.
func (r *AttachmentRepo) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM attachments WHERE id=?", id)
	return err
}
