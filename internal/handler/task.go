package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"taskhive/internal/middleware"
	"taskhive/internal/model"
	"taskhive/internal/repository"
	"taskhive/internal/service"
)

// TaskHandler exposes the task CRUD and stats endpoints.
type TaskHandler struct {
	Tasks *service.TaskService
	Log   *logrus.Logger
}

func NewTaskHandler(tasks *service.TaskService, log *logrus.Logger) *TaskHandler {
	return &TaskHandler{Tasks: tasks, Log: log}
}

type createTaskReq struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	DueDate     string  `json:"dueDate"`
}

type updateTaskReq struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	DueDate     *string `json:"dueDate"`
}

// Create creates a task owned by the caller.
// POST /api/tasks
func (h *TaskHandler) Create(c echo.Context) error {
	cl, ok := middleware.ClaimsFrom(c)
	if !ok {
		return badRequest(c, "User not authenticated")
	}
	var req createTaskReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if msg := validateTitle(req.Title, true); msg != "" {
		return badRequest(c, msg)
	}
	if req.Description != nil && len(*req.Description) > 2000 {
		return badRequest(c, "Description must not exceed 2000 characters")
	}
	if req.Status != "" && !model.ValidStatus(req.Status) {
		return badRequest(c, "Invalid status")
	}
	if req.Priority != "" && !model.ValidPriority(req.Priority) {
		return badRequest(c, "Invalid priority")
	}
	in := service.CreateTaskInput{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
	}
	if req.DueDate != "" {
		due, ok := parseDate(req.DueDate)
		if !ok {
			return badRequest(c, "Invalid dueDate, want RFC3339")
		}
		in.DueDate = &due
	}

	t, err := h.Tasks.Create(c.Request().Context(), cl.UserID, in)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Task created successfully",
		"data":    toTaskView(t),
	})
}

// List returns one page of tasks in the caller's scope.
// GET /api/tasks
func (h *TaskHandler) List(c echo.Context) error {
	cl, ok := middleware.ClaimsFrom(c)
	if !ok {
		return badRequest(c, "User not authenticated")
	}
	q, errMsg := parseTaskQuery(c)
	if errMsg != "" {
		return badRequest(c, errMsg)
	}

	page, err := h.Tasks.List(c.Request().Context(), cl, q)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Tasks retrieved successfully",
		"data":    toTaskViews(page.Tasks),
		"pagination": echo.Map{
			"page":       page.Page,
			"pageSize":   page.PageSize,
			"total":      page.Total,
			"totalPages": page.TotalPages,
		},
	})
}

// Get returns a single task.
// GET /api/tasks/:id
func (h *TaskHandler) Get(c echo.Context) error {
	cl, ok := middleware.ClaimsFrom(c)
	if !ok {
		return badRequest(c, "User not authenticated")
	}
	t, err := h.Tasks.Get(c.Request().Context(), cl, c.Param("id"))
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Task retrieved successfully",
		"data":    toTaskView(t),
	})
}

// Update patches a task.
// PATCH /api/tasks/:id
func (h *TaskHandler) Update(c echo.Context) error {
	cl, ok := middleware.ClaimsFrom(c)
	if !ok {
		return badRequest(c, "User not authenticated")
	}
	var req updateTaskReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	in := service.UpdateTaskInput{Description: req.Description}
	if req.Title != nil {
		if msg := validateTitle(*req.Title, false); msg != "" {
			return badRequest(c, msg)
		}
		trimmed := strings.TrimSpace(*req.Title)
		in.Title = &trimmed
	}
	if req.Description != nil && len(*req.Description) > 2000 {
		return badRequest(c, "Description must not exceed 2000 characters")
	}
	if req.Status != nil {
		if !model.ValidStatus(*req.Status) {
			return badRequest(c, "Invalid status")
		}
		in.Status = req.Status
	}
	if req.Priority != nil {
		if !model.ValidPriority(*req.Priority) {
			return badRequest(c, "Invalid priority")
		}
		in.Priority = req.Priority
	}
	if req.DueDate != nil {
		due, ok := parseDate(*req.DueDate)
		if !ok {
			return badRequest(c, "Invalid dueDate, want RFC3339")
		}
		in.DueDate = &due
	}

	t, err := h.Tasks.Update(c.Request().Context(), cl, c.Param("id"), in)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Task updated successfully",
		"data":    toTaskView(t),
	})
}

// Delete removes a task.
// DELETE /api/tasks/:id
func (h *TaskHandler) Delete(c echo.Context) error {
	cl, ok := middleware.ClaimsFrom(c)
	if !ok {
		return badRequest(c, "User not authenticated")
	}
	if err := h.Tasks.Delete(c.Request().Context(), cl, c.Param("id")); err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Task deleted successfully"})
}

// Stats returns aggregate counts for the caller's scope.
// GET /api/tasks/stats
func (h *TaskHandler) Stats(c echo.Context) error {
	cl, ok := middleware.ClaimsFrom(c)
	if !ok {
		return badRequest(c, "User not authenticated")
	}
	stats, err := h.Tasks.Stats(c.Request().Context(), cl)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Stats retrieved successfully",
		"data":    stats,
	})
}

func parseTaskQuery(c echo.Context) (service.TaskQuery, string) {
	q := service.TaskQuery{
		Page: repository.Page{Page: 1, PageSize: 10, SortBy: "createdAt", SortOrder: "desc"},
	}
	if v := c.QueryParam("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return q, "Invalid page"
		}
		q.Page.Page = n
	}
	if v := c.QueryParam("pageSize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			return q, "Invalid pageSize, want 1-100"
		}
		q.Page.PageSize = n
	}
	if v := c.QueryParam("sortBy"); v != "" {
		switch v {
		case "createdAt", "dueDate", "priority", "title":
			q.Page.SortBy = v
		default:
			return q, "Invalid sortBy"
		}
	}
	if v := c.QueryParam("sortOrder"); v != "" {
		switch v {
		case "asc", "desc":
			q.Page.SortOrder = v
		default:
			return q, "Invalid sortOrder"
		}
	}
	if v := c.QueryParam("status"); v != "" {
		if !model.ValidStatus(v) {
			return q, "Invalid status"
		}
		q.Filter.Status = v
	}
	if v := c.QueryParam("priority"); v != "" {
		if !model.ValidPriority(v) {
			return q, "Invalid priority"
		}
		q.Filter.Priority = v
	}
	if v := c.QueryParam("search"); v != "" {
		if len(v) > 200 {
			return q, "Search must not exceed 200 characters"
		}
		q.Filter.Search = v
	}
	if v := c.QueryParam("dueDateFrom"); v != "" {
		t, ok := parseDate(v)
		if !ok {
			return q, "Invalid dueDateFrom, want RFC3339"
		}
		q.Filter.DueDateFrom = &t
	}
	if v := c.QueryParam("dueDateTo"); v != "" {
		t, ok := parseDate(v)
		if !ok {
			return q, "Invalid dueDateTo, want RFC3339"
		}
		q.Filter.DueDateTo = &t
	}
	if v := c.QueryParam("overdue"); v == "true" {
		q.Filter.Overdue = true
	}
	return q, ""
}
