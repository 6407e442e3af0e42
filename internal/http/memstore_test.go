package http_test

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"taskmaster/internal/db"
	"taskmaster/internal/domain"

	"github.com/google/uuid"
)

// memStore mirrors the PostgreSQL stores closely enough to drive the router:
// ownership scoping, global categories, uniqueness and ON DELETE SET NULL.
type memStore struct {
	mu         sync.Mutex
	users      map[uuid.UUID]domain.User
	categories map[uuid.UUID]domain.Category
	tasks      map[uuid.UUID]domain.Task
}

func newMemStore() *memStore {
	return &memStore{
		users:      map[uuid.UUID]domain.User{},
		categories: map[uuid.UUID]domain.Category{},
		tasks:      map[uuid.UUID]domain.Task{},
	}
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// users

type memUsers struct{ s *memStore }

func (u memUsers) CreateWithCategories(_ context.Context, user *domain.User, categories []domain.CategoryInput) error {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == user.Username ||
			(user.Email != nil && existing.Email != nil && *existing.Email == *user.Email) {
			return domain.Conflict("username or email already in use")
		}
	}
	user.ID = uuid.New()
	user.CreatedAt = now()
	s.users[user.ID] = *user

	owner := user.ID
	for _, c := range categories {
		id := uuid.New()
		s.categories[id] = domain.Category{ID: id, UserID: &owner, Name: c.Name, Color: c.Color, Icon: c.Icon, CreatedAt: user.CreatedAt}
	}
	return nil
}

func (u memUsers) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	for _, user := range u.s.users {
		if user.Username == username {
			cp := user
			return &cp, nil
		}
	}
	return nil, domain.NotFound("user not found")
}

func (u memUsers) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	user, ok := u.s.users[id]
	if !ok {
		return nil, domain.NotFound("user not found")
	}
	return &user, nil
}

func (u memUsers) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	_, ok := u.s.users[id]
	return ok, nil
}

// categories

type memCategories struct{ s *memStore }

func owns(c domain.Category, owner uuid.UUID) bool {
	return c.UserID != nil && *c.UserID == owner
}

func (m memCategories) List(_ context.Context, owner uuid.UUID) ([]domain.Category, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	res := []domain.Category{}
	for _, c := range m.s.categories {
		if c.UserID == nil || owns(c, owner) {
			res = append(res, c)
		}
	}
	slices.SortFunc(res, func(a, b domain.Category) int { return strings.Compare(a.Name, b.Name) })
	return res, nil
}

func (m memCategories) nameTaken(owner uuid.UUID, name string, except uuid.UUID) bool {
	for _, c := range m.s.categories {
		if c.ID != except && owns(c, owner) && c.Name == name {
			return true
		}
	}
	return false
}

func (m memCategories) Create(_ context.Context, owner uuid.UUID, in domain.CategoryInput) (*domain.Category, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.nameTaken(owner, in.Name, uuid.Nil) {
		return nil, domain.Conflict("a category with this name already exists")
	}
	color := in.Color
	if color == "" {
		color = domain.DefaultCategoryColor
	}
	c := domain.Category{ID: uuid.New(), UserID: &owner, Name: in.Name, Color: color, Icon: in.Icon, CreatedAt: now()}
	m.s.categories[c.ID] = c
	return &c, nil
}

func (m memCategories) Update(_ context.Context, owner, id uuid.UUID, p domain.CategoryPatch) (*domain.Category, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	c, ok := m.s.categories[id]
	if !ok || !owns(c, owner) {
		return nil, domain.NotFound("category not found")
	}
	if p.Empty() {
		return nil, domain.BadRequest("no fields to update")
	}
	if p.Name != nil {
		if m.nameTaken(owner, *p.Name, id) {
			return nil, domain.Conflict("a category with this name already exists")
		}
		c.Name = *p.Name
	}
	if p.Color != nil {
		c.Color = *p.Color
	}
	if p.IconSet {
		c.Icon = p.Icon
	}
	m.s.categories[id] = c
	return &c, nil
}

func (m memCategories) Delete(_ context.Context, owner, id uuid.UUID) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	c, ok := m.s.categories[id]
	if !ok || !owns(c, owner) {
		return domain.NotFound("category not found")
	}
	delete(m.s.categories, id)
	for tid, t := range m.s.tasks {
		if t.CategoryID != nil && *t.CategoryID == id {
			t.CategoryID = nil
			m.s.tasks[tid] = t
		}
	}
	return nil
}

// tasks

type memTasks struct{ s *memStore }

func (m memTasks) visible(owner, categoryID uuid.UUID) bool {
	c, ok := m.s.categories[categoryID]
	return ok && (c.UserID == nil || owns(c, owner))
}

// joined fills the category columns the way the LEFT JOIN does.
func (m memTasks) joined(t domain.Task) domain.Task {
	t.CategoryName, t.CategoryColor, t.CategoryIcon = nil, nil, nil
	if t.CategoryID != nil {
		if c, ok := m.s.categories[*t.CategoryID]; ok {
			name, color := c.Name, c.Color
			t.CategoryName, t.CategoryColor, t.CategoryIcon = &name, &color, c.Icon
		}
	}
	t.Tags = slices.Clone(t.Tags)
	t.Images = slices.Clone(t.Images)
	return t
}

func (m memTasks) Create(_ context.Context, owner uuid.UUID, in domain.TaskInput) (*domain.Task, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if in.CategoryID != nil && !m.visible(owner, *in.CategoryID) {
		return nil, domain.NotFound("category not found")
	}
	ts := now()
	t := domain.Task{
		ID: uuid.New(), UserID: owner, Title: in.Title, Description: in.Description,
		CategoryID: in.CategoryID, Tags: slices.Clone(in.Tags), Priority: in.Priority, Status: in.Status,
		CompletionPercentage: in.CompletionPercentage, Images: slices.Clone(in.Images), DueDate: in.DueDate,
		CreatedAt: ts, UpdatedAt: ts,
	}
	m.s.tasks[t.ID] = t
	out := m.joined(t)
	return &out, nil
}

func (m memTasks) Get(_ context.Context, owner, id uuid.UUID) (*domain.Task, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	t, ok := m.s.tasks[id]
	if !ok || t.UserID != owner {
		return nil, domain.NotFound("task not found")
	}
	out := m.joined(t)
	return &out, nil
}

func (m memTasks) List(_ context.Context, owner uuid.UUID, f domain.TaskFilter) ([]domain.Task, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var categoryID *uuid.UUID
	if f.Category != "" {
		id, err := uuid.Parse(f.Category)
		if err != nil {
			return []domain.Task{}, nil
		}
		categoryID = &id
	}
	res := []domain.Task{}
	for _, t := range m.s.tasks {
		if t.UserID != owner {
			continue
		}
		if categoryID != nil && (t.CategoryID == nil || *t.CategoryID != *categoryID) {
			continue
		}
		if f.Priority != "" && t.Priority != f.Priority {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		res = append(res, m.joined(t))
	}
	slices.SortFunc(res, func(a, b domain.Task) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return res, nil
}

func (m memTasks) Recent(ctx context.Context, owner uuid.UUID, limit int) ([]domain.Task, error) {
	res, _ := m.List(ctx, owner, domain.TaskFilter{})
	if len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

func (m memTasks) Update(_ context.Context, owner, id uuid.UUID, p domain.TaskPatch) (*domain.Task, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	t, ok := m.s.tasks[id]
	if !ok || t.UserID != owner {
		return nil, domain.NotFound("task not found")
	}
	if p.CategorySet && p.CategoryID != nil && !m.visible(owner, *p.CategoryID) {
		return nil, domain.NotFound("category not found")
	}
	if p.Empty() {
		return nil, domain.BadRequest("no fields to update")
	}
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.CategorySet {
		t.CategoryID = p.CategoryID
	}
	if p.Tags != nil {
		t.Tags = slices.Clone(*p.Tags)
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.CompletionPercentage != nil {
		t.CompletionPercentage = *p.CompletionPercentage
	}
	if p.Images != nil {
		t.Images = slices.Clone(*p.Images)
	}
	if p.DueDateSet {
		t.DueDate = p.DueDate
	}
	ts := now()
	if !ts.After(t.UpdatedAt) {
		ts = t.UpdatedAt.Add(time.Microsecond)
	}
	t.UpdatedAt = ts
	m.s.tasks[id] = t
	out := m.joined(t)
	return &out, nil
}

func (m memTasks) Delete(_ context.Context, owner, id uuid.UUID) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	t, ok := m.s.tasks[id]
	if !ok || t.UserID != owner {
		return domain.NotFound("task not found")
	}
	delete(m.s.tasks, id)
	return nil
}

// infrastructure

type countingAcquirer struct {
	mu       sync.Mutex
	acquired int
	released int
}

func (a *countingAcquirer) Acquire(context.Context) (db.Querier, func(), error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acquired++
	return nil, func() {
		a.mu.Lock()
		a.released++
		a.mu.Unlock()
	}, nil
}

func (a *countingAcquirer) balanced() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.acquired == a.released
}

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }
