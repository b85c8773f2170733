package service

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"taskhive/internal/apperr"
	"taskhive/internal/model"
	"taskhive/internal/repository"
	"taskhive/internal/token"
)

// AttachmentService manages file attachments on tasks. Uploading and
// deleting require write access to the task; listing and downloading
// require read access. Authorization failures reuse the task NotFound
// masking.
type AttachmentService struct {
	attachments AttachmentStore
	tasks       TaskStore
	shares      ShareStore
	now         func() time.Time
	log         *logrus.Logger
}

// NewAttachmentService wires the attachment service.
func NewAttachmentService(attachments AttachmentStore, tasks TaskStore, shares ShareStore, log *logrus.Logger) *AttachmentService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &AttachmentService{
		attachments: attachments,
		tasks:       tasks,
		shares:      shares,
		now:         func() time.Time { return time.Now().UTC() },
		log:         log,
	}
}

// UploadedFile describes a file the handler already wrote to disk.
type UploadedFile struct {
	Filename     string
	OriginalName string
	MimeType     string
	Size         int64
	Path         string
}

// Upload records an attachment for a task the caller may write. When
// the task check fails the just-written file is removed again.
func (s *AttachmentService) Upload(ctx context.Context, cl token.Claims, taskID string, f UploadedFile) (*model.Attachment, error) {
	if _, err := resolveTaskForWrite(ctx, s.tasks, cl, taskID); err != nil {
		if rmErr := os.Remove(f.Path); rmErr != nil {
			s.log.WithError(rmErr).WithField("path", f.Path).Warn("attachment: orphan file cleanup failed")
		}
		return nil, err
	}
	a := &model.Attachment{
		ID:           uuid.NewString(),
		TaskID:       taskID,
		Filename:     f.Filename,
		OriginalName: f.OriginalName,
		MimeType:     f.MimeType,
		Size:         f.Size,
		Path:         f.Path,
		UploadedBy:   cl.UserID,
		CreatedAt:    s.now(),
	}
	if err := s.attachments.Create(ctx, a); err != nil {
		return nil, apperr.Internal("save attachment failed", err)
	}
	return a, nil
}

// List returns the attachments of a task the caller may read.
func (s *AttachmentService) List(ctx context.Context, cl token.Claims, taskID string) ([]model.Attachment, error) {
	if _, err := resolveTaskForRead(ctx, s.tasks, s.shares, cl, taskID); err != nil {
		return nil, err
	}
	out, err := s.attachments.ListByTask(ctx, taskID)
	if err != nil {
		return nil, apperr.Internal("list attachments failed", err)
	}
	return out, nil
}

// Download resolves an attachment for sending if the caller may read
// its task and the file still exists on disk.
func (s *AttachmentService) Download(ctx context.Context, cl token.Claims, attachmentID string) (*model.Attachment, error) {
	a, err := s.load(ctx, cl, attachmentID, false)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(a.Path); err != nil {
		return nil, apperr.NotFound("File not found on disk")
	}
	return a, nil
}

// Delete removes an attachment of a task the caller may write, file
// first by best effort, then the row.
func (s *AttachmentService) Delete(ctx context.Context, cl token.Claims, attachmentID string) error {
	a, err := s.load(ctx, cl, attachmentID, true)
	if err != nil {
		return err
	}
	if err := os.Remove(a.Path); err != nil && !os.IsNotExist(err) {
		s.log.WithError(err).WithField("path", a.Path).Warn("attachment: file removal failed")
	}
	if err := s.attachments.Delete(ctx, a.ID); err != nil {
		return apperr.Internal("delete attachment failed", err)
	}
	return nil
}

// load fetches the attachment and authorizes against its task. The
// task-level denial is reported as the attachment being absent.
func (s *AttachmentService) load(ctx context.Context, cl token.Claims, attachmentID string, write bool) (*model.Attachment, error) {
	a, err := s.attachments.FindByID(ctx, attachmentID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("Attachment not found")
	}
	if err != nil {
		return nil, apperr.Internal("load attachment failed", err)
	}
	if write {
		_, err = resolveTaskForWrite(ctx, s.tasks, cl, a.TaskID)
	} else {
		_, err = resolveTaskForRead(ctx, s.tasks, s.shares, cl, a.TaskID)
	}
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, apperr.NotFound("Attachment not found")
		}
		return nil, err
	}
	return a, nil
}
