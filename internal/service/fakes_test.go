package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"taskhive/internal/model"
	"taskhive/internal/queue"
	"taskhive/internal/repository"
)

// In-memory store fakes. The session fake takes a mutex per operation
// so rotation races can be exercised with real goroutines, which a
// scripted SQL mock cannot interleave.

type memUsers struct {
	mu   sync.Mutex
	byID map[string]*model.User
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[string]*model.User{}}
}

func (m *memUsers) add(u *model.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.byID[u.ID] = &cp
}

func (m *memUsers) Create(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Email == u.Email {
			return repository.ErrEmailExists
		}
		if existing.Username == u.Username {
			return repository.ErrUsernameExists
		}
	}
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) FindByUsername(_ context.Context, username string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) FindByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) EmailExists(_ context.Context, email string) (bool, error) {
	_, err := m.FindByEmail(context.Background(), email)
	return err == nil, nil
}

func (m *memUsers) UsernameExists(_ context.Context, username string) (bool, error) {
	_, err := m.FindByUsername(context.Background(), username)
	return err == nil, nil
}

type memSessions struct {
	mu      sync.Mutex
	byToken map[string]*model.RefreshToken
}

func newMemSessions() *memSessions {
	return &memSessions{byToken: map[string]*model.RefreshToken{}}
}

func (m *memSessions) Create(_ context.Context, t *model.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byToken[t.Token]; ok {
		return repository.ErrDuplicate
	}
	cp := *t
	m.byToken[t.Token] = &cp
	return nil
}

func (m *memSessions) FindByToken(_ context.Context, tok string) (*model.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byToken[tok]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memSessions) Delete(_ context.Context, tok string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byToken[tok]; !ok {
		return false, nil
	}
	delete(m.byToken, tok)
	return true, nil
}

func (m *memSessions) DeleteAllByUser(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for tok, t := range m.byToken {
		if t.UserID == userID {
			delete(m.byToken, tok)
		}
	}
	return nil
}

func (m *memSessions) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for tok, t := range m.byToken {
		if !now.Before(t.ExpiresAt) {
			delete(m.byToken, tok)
			n++
		}
	}
	return n, nil
}

func (m *memSessions) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byToken)
}

type memTasks struct {
	mu   sync.Mutex
	byID map[string]*model.Task
}

func newMemTasks() *memTasks {
	return &memTasks{byID: map[string]*model.Task{}}
}

func (m *memTasks) add(t *model.Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.byID[t.ID] = &cp
}

func (m *memTasks) Create(_ context.Context, t *model.Task) error {
	m.add(t)
	return nil
}

func (m *memTasks) FindByID(_ context.Context, id string) (*model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memTasks) FindOwned(_ context.Context, id, ownerID string) (*model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byID[id]
	if !ok || t.OwnerID != ownerID {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memTasks) List(_ context.Context, scope repository.Scope, f repository.TaskFilter, p repository.Page, _ time.Time) ([]model.Task, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []model.Task
	for _, t := range m.byID {
		if !scope.All() && t.OwnerID != scope.UserID() {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.Priority != "" && t.Priority != f.Priority {
			continue
		}
		matched = append(matched, *t)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	total := len(matched)
	start := (p.Page - 1) * p.PageSize
	if start > total {
		start = total
	}
	end := start + p.PageSize
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (m *memTasks) Update(_ context.Context, t *model.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[t.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *t
	m.byID[t.ID] = &cp
	return nil
}

func (m *memTasks) Delete(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return false, nil
	}
	delete(m.byID, id)
	return true, nil
}

func (m *memTasks) Stats(_ context.Context, scope repository.Scope, now time.Time) (*model.TaskStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var s model.TaskStats
	for _, t := range m.byID {
		if !scope.All() && t.OwnerID != scope.UserID() {
			continue
		}
		s.Total++
		switch t.Status {
		case model.StatusTodo:
			s.Todo++
		case model.StatusInProgress:
			s.InProgress++
		case model.StatusCompleted:
			s.Completed++
		}
		if t.DueDate != nil && t.DueDate.Before(now) && t.Status != model.StatusCompleted {
			s.Overdue++
		}
	}
	return &s, nil
}

type shareKey struct{ taskID, userID string }

type memShares struct {
	mu    sync.Mutex
	rows  map[shareKey]*model.TaskShare
	tasks *memTasks
}

func newMemShares(tasks *memTasks) *memShares {
	return &memShares{rows: map[shareKey]*model.TaskShare{}, tasks: tasks}
}

func (m *memShares) add(s *model.TaskShare) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.rows[shareKey{s.TaskID, s.SharedWith}] = &cp
}

func (m *memShares) Create(_ context.Context, s *model.TaskShare) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := shareKey{s.TaskID, s.SharedWith}
	if _, ok := m.rows[k]; ok {
		return repository.ErrDuplicate
	}
	cp := *s
	m.rows[k] = &cp
	return nil
}

func (m *memShares) FindByTaskAndUser(_ context.Context, taskID, userID string) (*model.TaskShare, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rows[shareKey{taskID, userID}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memShares) ListByTask(_ context.Context, taskID string) ([]model.SharedUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.SharedUser
	for k, s := range m.rows {
		if k.taskID == taskID {
			out = append(out, model.SharedUser{
				UserID:     s.SharedWith,
				Permission: s.Permission,
				CreatedAt:  s.CreatedAt,
			})
		}
	}
	return out, nil
}

func (m *memShares) ListSharedWith(ctx context.Context, userID string) ([]model.Task, error) {
	m.mu.Lock()
	var ids []string
	for k := range m.rows {
		if k.userID == userID {
			ids = append(ids, k.taskID)
		}
	}
	m.mu.Unlock()
	sort.Strings(ids)

	var out []model.Task
	for _, id := range ids {
		t, err := m.tasks.FindByID(ctx, id)
		if err != nil {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

func (m *memShares) UpdatePermission(_ context.Context, taskID, userID, permission string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.rows[shareKey{taskID, userID}]; ok {
		s.Permission = permission
	}
	return nil
}

func (m *memShares) Delete(_ context.Context, taskID, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := shareKey{taskID, userID}
	if _, ok := m.rows[k]; !ok {
		return false, nil
	}
	delete(m.rows, k)
	return true, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.TaskCompletedEvent
}

func (p *recordingPublisher) PublishTaskCompleted(_ context.Context, ev queue.TaskCompletedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) published() []queue.TaskCompletedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]queue.TaskCompletedEvent(nil), p.events...)
}
