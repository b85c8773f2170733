package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"taskhive/internal/apperr"
	"taskhive/internal/cache"
	"taskhive/internal/model"
	"taskhive/internal/queue"
	"taskhive/internal/repository"
	"taskhive/internal/token"
)

// Cache TTLs. The cache is an optimization only; short lifetimes keep
// the blast radius of a missed invalidation small.
const (
	detailTTL = 5 * time.Minute
	listTTL   = time.Minute
	statsTTL  = time.Minute
)

// TaskService implements task CRUD with resource authorization and the
// read-through cache coordinator in front of list/detail/stat queries.
type TaskService struct {
	tasks  TaskStore
	shares ShareStore
	cache  *cache.Cache
	events EventPublisher
	now    func() time.Time
	log    *logrus.Logger
}

// NewTaskService wires the task service. events may be nil.
func NewTaskService(tasks TaskStore, shares ShareStore, c *cache.Cache, events EventPublisher, log *logrus.Logger) *TaskService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &TaskService{
		tasks:  tasks,
		shares: shares,
		cache:  c,
		events: events,
		now:    func() time.Time { return time.Now().UTC() },
		log:    log,
	}
}

// CreateTaskInput carries an already-validated create payload.
type CreateTaskInput struct {
	Title       string
	Description *string
	Status      string
	Priority    string
	DueDate     *time.Time
}

// UpdateTaskInput carries an already-validated patch payload. Nil
// fields stay unchanged.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	DueDate     *time.Time
}

// TaskQuery bundles the list filter and pagination.
type TaskQuery struct {
	Filter repository.TaskFilter
	Page   repository.Page
}

// normalized clamps pagination to sane bounds so a zero-value query is
// usable and the cache fingerprint never varies on equivalent inputs.
func (q TaskQuery) normalized() TaskQuery {
	if q.Page.Page < 1 {
		q.Page.Page = 1
	}
	if q.Page.PageSize < 1 {
		q.Page.PageSize = 10
	}
	if q.Page.PageSize > 100 {
		q.Page.PageSize = 100
	}
	return q
}

// TaskPage is one page of a task listing, as cached and returned.
type TaskPage struct {
	Tasks      []model.Task `json:"tasks"`
	Page       int          `json:"page"`
	PageSize   int          `json:"pageSize"`
	Total      int          `json:"total"`
	TotalPages int          `json:"totalPages"`
}

// Create persists a new task owned by ownerID.
func (s *TaskService) Create(ctx context.Context, ownerID string, in CreateTaskInput) (*model.Task, error) {
	now := s.now()
	t := &model.Task{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if t.Status == "" {
		t.Status = model.StatusTodo
	}
	if t.Priority == "" {
		t.Priority = model.PriorityMedium
	}
	if t.Status == model.StatusCompleted {
		t.CompletedAt = &now
	}
	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, apperr.Internal("create task failed", err)
	}
	s.invalidate(ctx, t)
	return t, nil
}

// List returns one page of tasks visible in the caller's scope.
func (s *TaskService) List(ctx context.Context, cl token.Claims, q TaskQuery) (*TaskPage, error) {
	q = q.normalized()
	scope := queryScope(cl)
	key := cache.ListKey(scope.CacheKey(), listFingerprint(q))

	var page TaskPage
	if s.cache.Get(ctx, key, &page) {
		return &page, nil
	}

	tasks, total, err := s.tasks.List(ctx, scope, q.Filter, q.Page, s.now())
	if err != nil {
		return nil, apperr.Internal("list tasks failed", err)
	}
	page = TaskPage{
		Tasks:      tasks,
		Page:       q.Page.Page,
		PageSize:   q.Page.PageSize,
		Total:      total,
		TotalPages: (total + q.Page.PageSize - 1) / q.Page.PageSize,
	}
	s.cache.Set(ctx, key, &page, listTTL)
	return &page, nil
}

// Get returns a single task if the caller may read it. The cache sits
// in front of the row load only; authorization runs on every call,
// cache hit or not.
func (s *TaskService) Get(ctx context.Context, cl token.Claims, taskID string) (*model.Task, error) {
	var t *model.Task
	var cached model.Task
	if s.cache.Get(ctx, cache.DetailKey(taskID), &cached) {
		t = &cached
	} else {
		loaded, err := loadTask(ctx, s.tasks, taskID)
		if err != nil {
			return nil, err
		}
		t = loaded
		s.cache.Set(ctx, cache.DetailKey(taskID), t, detailTTL)
	}

	if cl.Role == model.RoleAdmin || t.OwnerID == cl.UserID {
		return t, nil
	}
	_, err := s.shares.FindByTaskAndUser(ctx, taskID, cl.UserID)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Internal("load share failed", err)
	}
	return nil, apperr.NotFound("Task not found")
}

// Update patches a task the caller may write. Status transitions
// maintain CompletedAt: entering COMPLETED stamps it, leaving clears
// it. Cache invalidation happens only after the row update committed.
func (s *TaskService) Update(ctx context.Context, cl token.Claims, taskID string, in UpdateTaskInput) (*model.Task, error) {
	t, err := resolveTaskForWrite(ctx, s.tasks, cl, taskID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	completedNow := false
	if in.Title != nil {
		t.Title = *in.Title
	}
	if in.Description != nil {
		t.Description = in.Description
	}
	if in.Priority != nil {
		t.Priority = *in.Priority
	}
	if in.DueDate != nil {
		t.DueDate = in.DueDate
	}
	if in.Status != nil && *in.Status != t.Status {
		t.Status = *in.Status
		if t.Status == model.StatusCompleted {
			t.CompletedAt = &now
			completedNow = true
		} else {
			t.CompletedAt = nil
		}
	}
	t.UpdatedAt = now

	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, apperr.Internal("update task failed", err)
	}
	s.invalidate(ctx, t)

	if completedNow && s.events != nil {
		ev := queue.TaskCompletedEvent{
			TaskID:      t.ID,
			Title:       t.Title,
			OwnerID:     t.OwnerID,
			CompletedAt: now.Format(time.RFC3339),
		}
		if err := s.events.PublishTaskCompleted(ctx, ev); err != nil {
			s.log.WithError(err).WithField("task_id", t.ID).Warn("task: publish completed event failed")
		}
	}
	return t, nil
}

// Delete removes a task the caller may write.
func (s *TaskService) Delete(ctx context.Context, cl token.Claims, taskID string) error {
	t, err := resolveTaskForWrite(ctx, s.tasks, cl, taskID)
	if err != nil {
		return err
	}
	if _, err := s.tasks.Delete(ctx, taskID); err != nil {
		return apperr.Internal("delete task failed", err)
	}
	s.invalidate(ctx, t)
	return nil
}

// Stats returns aggregate counts for the caller's scope.
func (s *TaskService) Stats(ctx context.Context, cl token.Claims) (*model.TaskStats, error) {
	scope := queryScope(cl)
	key := cache.StatsKey(scope.CacheKey())

	var stats model.TaskStats
	if s.cache.Get(ctx, key, &stats) {
		return &stats, nil
	}
	fresh, err := s.tasks.Stats(ctx, scope, s.now())
	if err != nil {
		return nil, apperr.Internal("task stats failed", err)
	}
	s.cache.Set(ctx, key, fresh, statsTTL)
	return fresh, nil
}

// invalidate drops the task's detail entry, every list entry for its
// owner and for the admin scope, and both stats entries. Called only
// after the durable write succeeded; a crash between write and
// invalidate leaves at worst a stale entry that the TTL bounds.
func (s *TaskService) invalidate(ctx context.Context, t *model.Task) {
	s.cache.Del(ctx,
		cache.DetailKey(t.ID),
		cache.StatsKey(t.OwnerID),
		cache.StatsKey(repository.AllOwners().CacheKey()),
	)
	s.cache.DelByPattern(ctx, cache.ListPattern(t.OwnerID))
	s.cache.DelByPattern(ctx, cache.ListPattern(repository.AllOwners().CacheKey()))
}

// listFingerprint canonicalizes the query into a fixed field order so
// identical queries always land on the same cache key.
func listFingerprint(q TaskQuery) string {
	from, to := "", ""
	if q.Filter.DueDateFrom != nil {
		from = q.Filter.DueDateFrom.UTC().Format(time.RFC3339)
	}
	if q.Filter.DueDateTo != nil {
		to = q.Filter.DueDateTo.UTC().Format(time.RFC3339)
	}
	return cache.Fingerprint(
		q.Filter.Status,
		q.Filter.Priority,
		q.Filter.Search,
		from,
		to,
		strconv.FormatBool(q.Filter.Overdue),
		strconv.Itoa(q.Page.Page),
		strconv.Itoa(q.Page.PageSize),
		q.Page.SortBy,
		q.Page.SortOrder,
	)
}
