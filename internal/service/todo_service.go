package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"todo_webapp/internal/cache"
	"todo_webapp/internal/domain"
	"todo_webapp/internal/repository"
	"todo_webapp/internal/security"

	"golang.org/x/sync/singleflight"
)

// defaultDeadline is applied when a creation request omits the deadline.
const defaultDeadline = 7 * 24 * time.Hour

// TodoNotifier receives change events for live subscribers. A nil
// notifier disables delivery.
type TodoNotifier interface {
	TodoChanged(ownerID int64, event string, todo *domain.Todo)
}

// Events emitted to the notifier.
const (
	EventTodoCreated = "todo.created"
	EventTodoUpdated = "todo.updated"
	EventTodoDeleted = "todo.deleted"
)

// CreateTodoInput carries already-validated creation fields. Sanitization
// happens here so no caller can persist raw text.
type CreateTodoInput struct {
	Title       string
	Description string
	Deadline    *time.Time
	Priority    string
}

// TodoPatch is a partial update. Nil means "key not provided"; a pointer
// to the zero value is still applied, so completed=false sticks.
type TodoPatch struct {
	Title       *string
	Description *string
	Completed   *bool
	Deadline    *time.Time
	Priority    *string
}

// TodoService composes sanitization, the injection heuristic, ownership
// checks and persistence for the todo endpoints.
type TodoService struct {
	repo     repository.TodoRepo
	cache    *cache.TodoCache
	notifier TodoNotifier
	sf       singleflight.Group
}

// NewTodoService creates a TodoService. cache and notifier may be nil.
func NewTodoService(repo repository.TodoRepo, c *cache.TodoCache, n TodoNotifier) *TodoService {
	return &TodoService{repo: repo, cache: c, notifier: n}
}

// Create builds and persists a todo owned by ownerID. The owner always
// comes from the authenticated principal, never from client input.
func (s *TodoService) Create(ctx context.Context, ownerID int64, in CreateTodoInput) (*domain.Todo, error) {
	// The heuristic runs on raw input; escaping introduces entity
	// semicolons that would trip it.
	if security.HasSQLInjection(in.Title) || security.HasSQLInjection(in.Description) {
		return nil, ErrUnsafeInput
	}
	title := security.Sanitize(in.Title)
	description := security.Sanitize(in.Description)

	deadline := time.Now().Add(defaultDeadline)
	if in.Deadline != nil {
		deadline = *in.Deadline
	}
	priority := in.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}

	t := &domain.Todo{
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		Completed:   false,
		Deadline:    deadline,
		Priority:    priority,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	s.invalidate(ctx, ownerID)
	s.notify(ownerID, EventTodoCreated, t)
	return t, nil
}

// List returns todos owned by userID, newest-created first.
func (s *TodoService) List(ctx context.Context, userID int64) ([]*domain.Todo, error) {
	if s.cache == nil {
		return s.repo.ListByOwner(ctx, userID)
	}
	key := "list:" + strconv.FormatInt(userID, 10)
	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		if list, err := s.cache.GetList(ctx, userID); err == nil && list != nil {
			return list, nil
		}
		list, err := s.repo.ListByOwner(ctx, userID)
		if err != nil {
			return nil, err
		}
		_ = s.cache.SetList(ctx, userID, list)
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]*domain.Todo), nil
}

// Update applies a partial patch to the todo with the given id.
// Existence is checked before ownership: a missing todo is ErrNotFound
// for any caller, a foreign one is ErrForbidden.
func (s *TodoService) Update(ctx context.Context, userID, id int64, p TodoPatch) (*domain.Todo, error) {
	t, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.OwnerID != userID {
		return nil, ErrForbidden
	}

	if p.Title != nil {
		if security.HasSQLInjection(*p.Title) {
			return nil, ErrUnsafeInput
		}
		t.Title = security.Sanitize(*p.Title)
	}
	if p.Description != nil {
		if security.HasSQLInjection(*p.Description) {
			return nil, ErrUnsafeInput
		}
		t.Description = security.Sanitize(*p.Description)
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Deadline != nil {
		t.Deadline = *p.Deadline
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}

	if err := s.repo.Update(ctx, t); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.invalidate(ctx, userID)
	s.notify(userID, EventTodoUpdated, t)
	return t, nil
}

// Delete removes the todo and returns it. Same existence-then-ownership
// order as Update; a second delete of the same id is ErrNotFound.
func (s *TodoService) Delete(ctx context.Context, userID, id int64) (*domain.Todo, error) {
	t, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.OwnerID != userID {
		return nil, ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.invalidate(ctx, userID)
	s.notify(userID, EventTodoDeleted, t)
	return t, nil
}

func (s *TodoService) load(ctx context.Context, id int64) (*domain.Todo, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (s *TodoService) invalidate(ctx context.Context, ownerID int64) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, ownerID)
	}
}

func (s *TodoService) notify(ownerID int64, event string, t *domain.Todo) {
	if s.notifier != nil {
		s.notifier.TodoChanged(ownerID, event, t)
	}
}
