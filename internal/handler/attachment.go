package handler

import (
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"taskhive/internal/middleware"
	"taskhive/internal/service"
)

// maxAttachmentSize caps uploads at 5 MB.
const maxAttachmentSize = 5 * 1024 * 1024

// allowedMimeTypes lists the content types accepted for upload.
var allowedMimeTypes = map[string]bool{
	"image/jpeg":         true,
	"image/png":          true,
	"image/gif":          true,
	"image/webp":         true,
	"application/pdf":    true,
	"text/plain":         true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

// AttachmentHandler serves the file-attachment endpoints. Files land in
// UploadDir under a generated name; the original name survives only in
// the database row and the download header.
type AttachmentHandler struct {
	Attachments *service.AttachmentService
	UploadDir   string
	Log         *logrus.Logger
}

func NewAttachmentHandler(attachments *service.AttachmentService, uploadDir string, log *logrus.Logger) *AttachmentHandler {
	return &AttachmentHandler{Attachments: attachments, UploadDir: uploadDir, Log: log}
}

// Upload stores a multipart file and records it against a task.
// POST /api/tasks/:id/attachments
func (h *AttachmentHandler) Upload(c echo.Context) error {
	cl, ok := middleware.ClaimsFrom(c)
	if !ok {
		return badRequest(c, "User not authenticated")
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "No file uploaded")
	}
	if fh.Size > maxAttachmentSize {
		return badRequest(c, "File too large. Maximum size is 5MB")
	}
	mimeType := fh.Header.Get("Content-Type")
	if !allowedMimeTypes[mimeType] {
		return badRequest(c, "File type not allowed")
	}

	src, err := fh.Open()
	if err != nil {
		return fail(c, h.Log, err)
	}
	defer src.Close()

	if err := os.MkdirAll(h.UploadDir, 0o755); err != nil {
		return fail(c, h.Log, err)
	}
	filename := uuid.NewString() + filepath.Ext(fh.Filename)
	path := filepath.Join(h.UploadDir, filename)
	dst, err := os.Create(path)
	if err != nil {
		return fail(c, h.Log, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return fail(c, h.Log, err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return fail(c, h.Log, err)
	}

	a, err := h.Attachments.Upload(c.Request().Context(), cl, c.Param("id"), service.UploadedFile{
		Filename:     filename,
		OriginalName: fh.Filename,
		MimeType:     mimeType,
		Size:         fh.Size,
		Path:         path,
	})
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "File uploaded successfully",
		"data":    toAttachmentView(a),
	})
}

// List returns the attachments of a task.
// GET /api/tasks/:id/attachments
func (h *AttachmentHandler) List(c echo.Context) error {
	cl, ok := middleware.ClaimsFrom(c)
	if !ok {
		return badRequest(c, "User not authenticated")
	}
	attachments, err := h.Attachments.List(c.Request().Context(), cl, c.Param("id"))
	if err != nil {
		return fail(c, h.Log, err)
	}
	views := make([]attachmentView, 0, len(attachments))
	for i := range attachments {
		views = append(views, toAttachmentView(&attachments[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Attachments retrieved successfully",
		"data":    views,
	})
}

// Get returns the metadata of a single attachment.
// GET /api/attachments/:id
func (h *AttachmentHandler) Get(c echo.Context) error {
	cl, ok := middleware.ClaimsFrom(c)
	if !ok {
		return badRequest(c, "User not authenticated")
	}
	a, err := h.Attachments.Download(c.Request().Context(), cl, c.Param("id"))
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Attachment retrieved successfully",
		"data":    toAttachmentView(a),
	})
}

// Download streams an attachment back under its original name.
// GET /api/attachments/:id/download
func (h *AttachmentHandler) Download(c echo.Context) error {
	cl, ok := middleware.ClaimsFrom(c)
	if !ok {
		return badRequest(c, "User not authenticated")
	}
	a, err := h.Attachments.Download(c.Request().Context(), cl, c.Param("id"))
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.Attachment(a.Path, a.OriginalName)
}

// Delete removes an attachment row and its file.
// DELETE /api/attachments/:id
func (h *AttachmentHandler) Delete(c echo.Context) error {
	cl, ok := middleware.ClaimsFrom(c)
	if !ok {
		return badRequest(c, "User not authenticated")
	}
	if err := h.Attachments.Delete(c.Request().Context(), cl, c.Param("id")); err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Attachment deleted successfully"})
}
