package model

import "time"

// Attachment represents a row in the `attachments` table. The file
// itself lives on local disk at Path; the row only carries metadata.
type Attachment struct {
	ID           string    // attachments.id
	TaskID       string    // attachments.task_id
	Filename     string    // attachments.filename (name on disk)
	OriginalName string    // attachments.original_name (client file name)
	MimeType     string    // attachments.mime_type
	Size         int64     // attachments.size in bytes
	Path         string    // attachments.path
	UploadedBy   string    // attachments.uploaded_by
	CreatedAt    time.Time // attachments.created_at
}
