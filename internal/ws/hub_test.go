package ws

import (
	"encoding/json"
	"testing"
	"time"

	"todo_webapp/internal/domain"
	"todo_webapp/internal/service"
)

func newTestClient(userID int64) *Client {
	return NewClient(userID, nil, nil)
}

func TestHubFansOutToOwnerOnly(t *testing.T) {
	h := NewHub()
	owner1 := newTestClient(1)
	owner1b := newTestClient(1)
	other := newTestClient(2)
	for _, c := range []*Client{owner1, owner1b, other} {
		h.register(c)
	}

	todo := &domain.Todo{ID: 5, OwnerID: 1, Title: "Water plants"}
	h.TodoChanged(1, service.EventTodoCreated, todo)

	for _, c := range []*Client{owner1, owner1b} {
		select {
		case msg := <-c.send:
			var ev Event
			if err := json.Unmarshal(msg, &ev); err != nil {
				t.Fatal(err)
			}
			if ev.Type != service.EventTodoCreated || ev.Data.ID != 5 {
				t.Fatalf("event = %+v", ev)
			}
		default:
			t.Fatal("owner connection got no event")
		}
	}
	select {
	case <-other.send:
		t.Fatal("event leaked to another user")
	default:
	}
}

func TestHubUnregister(t *testing.T) {
	h := NewHub()
	c := newTestClient(1)
	h.register(c)
	h.unregister(c)

	h.TodoChanged(1, service.EventTodoDeleted, &domain.Todo{ID: 1, OwnerID: 1})
	select {
	case <-c.send:
		t.Fatal("unregistered client got an event")
	default:
	}
	if len(h.clients) != 0 {
		t.Fatalf("clients map not cleaned up: %v", h.clients)
	}
}

func TestHubSkipsSlowClients(t *testing.T) {
	h := NewHub()
	c := newTestClient(1)
	h.register(c)

	// fill the buffer; further events must not block the caller
	for i := 0; i < sendBuffer; i++ {
		h.TodoChanged(1, service.EventTodoUpdated, &domain.Todo{ID: int64(i), OwnerID: 1})
	}
	done := make(chan struct{})
	go func() {
		h.TodoChanged(1, service.EventTodoUpdated, &domain.Todo{ID: 999, OwnerID: 1})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("TodoChanged blocked on a full send buffer")
	}
}
