package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"taskhive/internal/middleware"
	"taskhive/internal/model"
	"taskhive/internal/service"
)

// ShareHandler exposes the sharing-management endpoints. All of them
// act on behalf of the task owner; the service enforces that.
type ShareHandler struct {
	Shares *service.ShareService
	Log    *logrus.Logger
}

func NewShareHandler(shares *service.ShareService, log *logrus.Logger) *ShareHandler {
	return &ShareHandler{Shares: shares, Log: log}
}

type shareTaskReq struct {
	SharedWith string `json:"sharedWith"`
	Permission string `json:"permission"`
}

type updatePermissionReq struct {
	Permission string `json:"permission"`
}

// Share grants another user access to a task.
// POST /api/tasks/:id/shares
func (h *ShareHandler) Share(c echo.Context) error {
	cl, ok := middleware.ClaimsFrom(c)
	if !ok {
		return badRequest(c, "User not authenticated")
	}
	var req shareTaskReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.SharedWith == "" {
		return badRequest(c, "sharedWith is required")
	}
	if !model.ValidPermission(req.Permission) {
		return badRequest(c, "Invalid permission")
	}

	share, err := h.Shares.Share(c.Request().Context(), cl.UserID, c.Param("id"), req.SharedWith, req.Permission)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Task shared successfully",
		"data":    toShareView(share),
	})
}

// SharedUsers lists the recipients of a task.
// GET /api/tasks/:id/shares
func (h *ShareHandler) SharedUsers(c echo.Context) error {
	cl, ok := middleware.ClaimsFrom(c)
	if !ok {
		return badRequest(c, "User not authenticated")
	}
	users, err := h.Shares.SharedUsers(c.Request().Context(), cl.UserID, c.Param("id"))
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Shared users retrieved successfully",
		"data":    users,
	})
}

// UpdatePermission changes a recipient's permission.
// PATCH /api/tasks/:id/shares/:userId
func (h *ShareHandler) UpdatePermission(c echo.Context) error {
	cl, ok := middleware.ClaimsFrom(c)
	if !ok {
		return badRequest(c, "User not authenticated")
	}
	var req updatePermissionReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if !model.ValidPermission(req.Permission) {
		return badRequest(c, "Invalid permission")
	}

	share, err := h.Shares.UpdatePermission(c.Request().Context(), cl.UserID, c.Param("id"), c.Param("userId"), req.Permission)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Permission updated successfully",
		"data":    toShareView(share),
	})
}

// Revoke removes a recipient's access.
// DELETE /api/tasks/:id/shares/:userId
func (h *ShareHandler) Revoke(c echo.Context) error {
	cl, ok := middleware.ClaimsFrom(c)
	if !ok {
		return badRequest(c, "User not authenticated")
	}
	if err := h.Shares.Revoke(c.Request().Context(), cl.UserID, c.Param("id"), c.Param("userId")); err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Share revoked successfully"})
}

// SharedWithMe lists tasks other owners shared with the caller.
// GET /api/shared-with-me
func (h *ShareHandler) SharedWithMe(c echo.Context) error {
	cl, ok := middleware.ClaimsFrom(c)
	if !ok {
		return badRequest(c, "User not authenticated")
	}
	tasks, err := h.Shares.SharedWithMe(c.Request().Context(), cl.UserID)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Shared tasks retrieved successfully",
		"data":    toTaskViews(tasks),
	})
}
