package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"todo_webapp/internal/domain"
)

// MemoryUserRepo is an in-memory UserRepo used in tests and local runs
// without Postgres. Safe for concurrent use.
type MemoryUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*domain.User
}

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{nextID: 1, users: make(map[int64]*domain.User)}
}

func (r *MemoryUserRepo) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email || existing.Username == u.Username {
			return ErrDuplicate
		}
	}
	u.ID = r.nextID
	r.nextID++
	u.CreatedAt = time.Now()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *MemoryUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *MemoryUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

// MemoryTodoRepo is an in-memory TodoRepo counterpart.
type MemoryTodoRepo struct {
	mu     sync.Mutex
	nextID int64
	todos  map[int64]*domain.Todo
}

func NewMemoryTodoRepo() *MemoryTodoRepo {
	return &MemoryTodoRepo{nextID: 1, todos: make(map[int64]*domain.Todo)}
}

func (r *MemoryTodoRepo) Create(_ context.Context, t *domain.Todo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.ID = r.nextID
	r.nextID++
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now
	cp := *t
	r.todos[t.ID] = &cp
	return nil
}

func (r *MemoryTodoRepo) GetByID(_ context.Context, id int64) (*domain.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.todos[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *MemoryTodoRepo) ListByOwner(_ context.Context, ownerID int64) ([]*domain.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []*domain.Todo
	for _, t := range r.todos {
		if t.OwnerID == ownerID {
			cp := *t
			res = append(res, &cp)
		}
	}
	// Newest-created first, matching the Postgres ordering.
	sort.Slice(res, func(i, j int) bool {
		if res[i].CreatedAt.Equal(res[j].CreatedAt) {
			return res[i].ID > res[j].ID
		}
		return res[i].CreatedAt.After(res[j].CreatedAt)
	})
	return res, nil
}

func (r *MemoryTodoRepo) Update(_ context.Context, t *domain.Todo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.todos[t.ID]
	if !ok {
		return ErrNotFound
	}
	t.CreatedAt = stored.CreatedAt
	t.UpdatedAt = time.Now()
	cp := *t
	r.todos[t.ID] = &cp
	return nil
}

func (r *MemoryTodoRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.todos[id]; !ok {
		return ErrNotFound
	}
	delete(r.todos, id)
	return nil
}
