package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"todo_webapp/internal/domain"
	"todo_webapp/internal/repository"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) TodoChanged(_ int64, event string, _ *domain.Todo) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func newTodoService() (*TodoService, *recordingNotifier) {
	n := &recordingNotifier{}
	return NewTodoService(repository.NewMemoryTodoRepo(), nil, n), n
}

func TestCreateAppliesDefaults(t *testing.T) {
	svc, _ := newTodoService()
	before := time.Now()
	todo, err := svc.Create(context.Background(), 1, CreateTodoInput{Title: "Buy milk"})
	if err != nil {
		t.Fatal(err)
	}
	if todo.Completed {
		t.Error("new todo should not be completed")
	}
	if todo.Priority != domain.PriorityMedium {
		t.Errorf("priority = %q, want medium", todo.Priority)
	}
	want := before.Add(defaultDeadline)
	if todo.Deadline.Before(want.Add(-time.Minute)) || todo.Deadline.After(want.Add(time.Minute)) {
		t.Errorf("deadline %v not about a week out", todo.Deadline)
	}
	if todo.ID == 0 || todo.OwnerID != 1 {
		t.Errorf("unexpected identity: id=%d owner=%d", todo.ID, todo.OwnerID)
	}
}

func TestCreateSanitizesText(t *testing.T) {
	svc, _ := newTodoService()
	todo, err := svc.Create(context.Background(), 1, CreateTodoInput{
		Title:       `  <script>alert(1)</script>Call mom  `,
		Description: `a<b`,
	})
	if err != nil {
		t.Fatal(err)
	}
	if todo.Title != "Call mom" {
		t.Errorf("title = %q", todo.Title)
	}
	if todo.Description != "a&lt;b" {
		t.Errorf("description = %q", todo.Description)
	}
}

func TestCreateRejectsSQLPayloads(t *testing.T) {
	svc, _ := newTodoService()
	_, err := svc.Create(context.Background(), 1, CreateTodoInput{Title: "x; DROP TABLE todos"})
	if !errors.Is(err, ErrUnsafeInput) {
		t.Fatalf("got %v, want ErrUnsafeInput", err)
	}
}

func TestCreateNotifies(t *testing.T) {
	svc, n := newTodoService()
	if _, err := svc.Create(context.Background(), 1, CreateTodoInput{Title: "x"}); err != nil {
		t.Fatal(err)
	}
	if len(n.events) != 1 || n.events[0] != EventTodoCreated {
		t.Fatalf("events = %v", n.events)
	}
}

func TestListIsScopedToOwner(t *testing.T) {
	svc, _ := newTodoService()
	ctx := context.Background()
	if _, err := svc.Create(ctx, 1, CreateTodoInput{Title: "mine"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(ctx, 2, CreateTodoInput{Title: "theirs"}); err != nil {
		t.Fatal(err)
	}
	list, err := svc.List(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Title != "mine" {
		t.Fatalf("list = %+v", list)
	}
}

func TestUpdatePartialPatch(t *testing.T) {
	svc, _ := newTodoService()
	ctx := context.Background()
	todo, err := svc.Create(ctx, 1, CreateTodoInput{Title: "Draft notes", Description: "for the standup", Priority: domain.PriorityHigh})
	if err != nil {
		t.Fatal(err)
	}

	done := true
	updated, err := svc.Update(ctx, 1, todo.ID, TodoPatch{Completed: &done})
	if err != nil {
		t.Fatal(err)
	}
	if !updated.Completed {
		t.Error("completed not applied")
	}
	if updated.Title != "Draft notes" || updated.Description != "for the standup" || updated.Priority != domain.PriorityHigh {
		t.Errorf("unpatched fields changed: %+v", updated)
	}

	// A pointer to false is a real value, not an absent key.
	undone := false
	updated, err = svc.Update(ctx, 1, todo.ID, TodoPatch{Completed: &undone})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Completed {
		t.Error("completed=false not applied")
	}
}

func TestUpdateSanitizesPatchedText(t *testing.T) {
	svc, _ := newTodoService()
	ctx := context.Background()
	todo, err := svc.Create(ctx, 1, CreateTodoInput{Title: "x"})
	if err != nil {
		t.Fatal(err)
	}
	title := `<script>steal()</script>Pay rent`
	updated, err := svc.Update(ctx, 1, todo.ID, TodoPatch{Title: &title})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Title != "Pay rent" {
		t.Errorf("title = %q", updated.Title)
	}

	bad := "'; DROP TABLE users; --"
	if _, err := svc.Update(ctx, 1, todo.ID, TodoPatch{Title: &bad}); !errors.Is(err, ErrUnsafeInput) {
		t.Fatalf("got %v, want ErrUnsafeInput", err)
	}
}

func TestOwnershipChecks(t *testing.T) {
	svc, _ := newTodoService()
	ctx := context.Background()
	todo, err := svc.Create(ctx, 1, CreateTodoInput{Title: "private"})
	if err != nil {
		t.Fatal(err)
	}

	done := true
	if _, err := svc.Update(ctx, 2, todo.ID, TodoPatch{Completed: &done}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign update: got %v, want ErrForbidden", err)
	}
	if _, err := svc.Delete(ctx, 2, todo.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign delete: got %v, want ErrForbidden", err)
	}

	// Missing ids are not found for everyone, owner or not.
	if _, err := svc.Update(ctx, 2, 9999, TodoPatch{Completed: &done}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing update: got %v, want ErrNotFound", err)
	}
	if _, err := svc.Delete(ctx, 1, 9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing delete: got %v, want ErrNotFound", err)
	}
}

func TestDeleteTwice(t *testing.T) {
	svc, n := newTodoService()
	ctx := context.Background()
	todo, err := svc.Create(ctx, 1, CreateTodoInput{Title: "once"})
	if err != nil {
		t.Fatal(err)
	}
	deleted, err := svc.Delete(ctx, 1, todo.ID)
	if err != nil {
		t.Fatal(err)
	}
	if deleted.ID != todo.ID {
		t.Fatalf("deleted id = %d, want %d", deleted.ID, todo.ID)
	}
	if _, err := svc.Delete(ctx, 1, todo.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: got %v, want ErrNotFound", err)
	}
	if len(n.events) != 2 || n.events[1] != EventTodoDeleted {
		t.Fatalf("events = %v", n.events)
	}
}
