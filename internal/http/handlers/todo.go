package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"todo_webapp/internal/domain"
	"todo_webapp/internal/http/middleware"
	"todo_webapp/internal/logger"
	"todo_webapp/internal/service"
	"todo_webapp/internal/validation"

	"github.com/gin-gonic/gin"
)

type createTodoRequest struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Deadline    validation.DateTime `json:"deadline"`
	Priority    string              `json:"priority"`
}

type updateTodoRequest struct {
	Title       *string             `json:"title"`
	Description *string             `json:"description"`
	Completed   *bool               `json:"completed"`
	Deadline    validation.DateTime `json:"deadline"`
	Priority    *string             `json:"priority"`
}

// ListTodos returns the caller's todos, newest-created first.
func (h *Handler) ListTodos(c *gin.Context) {
	todos, err := h.Todos.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		logger.Error("list todos failed", "error", err)
		respondError(c, http.StatusInternalServerError, "Error fetching todos")
		return
	}
	if todos == nil {
		todos = []*domain.Todo{}
	}
	respondList(c, todos, len(todos))
}

// CreateTodo validates, sanitizes and persists a new todo owned by the
// caller. Deadline defaults to a week out, priority to medium.
func (h *Handler) CreateTodo(c *gin.Context) {
	var req createTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := validation.TodoCreate(req.Title, req.Description, req.Deadline, req.Priority, time.Now()); !errs.Empty() {
		respondValidation(c, errs)
		return
	}

	in := service.CreateTodoInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
	}
	if req.Deadline.Provided() {
		d := req.Deadline.Time()
		in.Deadline = &d
	}

	todo, err := h.Todos.Create(c.Request.Context(), middleware.UserID(c), in)
	if err != nil {
		h.todoError(c, err, "Error creating todo")
		return
	}
	respondData(c, http.StatusCreated, "Todo created successfully", todo)
}

// UpdateTodo applies a partial update. Only keys present in the body are
// touched; completed=false is presence, not truthiness.
func (h *Handler) UpdateTodo(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req updateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := validation.TodoUpdate(req.Title, req.Description, req.Deadline, req.Priority, time.Now()); !errs.Empty() {
		respondValidation(c, errs)
		return
	}

	patch := service.TodoPatch{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		Priority:    req.Priority,
	}
	if req.Deadline.Provided() {
		d := req.Deadline.Time()
		patch.Deadline = &d
	}

	todo, err := h.Todos.Update(c.Request.Context(), middleware.UserID(c), id, patch)
	if err != nil {
		h.todoError(c, err, "Error updating todo")
		return
	}
	respondData(c, http.StatusOK, "Todo updated successfully", todo)
}

// DeleteTodo removes the caller's todo and echoes its identity.
func (h *Handler) DeleteTodo(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	todo, err := h.Todos.Delete(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		h.todoError(c, err, "Error deleting todo")
		return
	}
	respondData(c, http.StatusOK, "Todo deleted successfully", gin.H{"id": todo.ID})
}

// todoError maps service sentinels onto the error taxonomy. Unknown
// errors are logged and reported generically.
func (h *Handler) todoError(c *gin.Context, err error, internalMsg string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		respondError(c, http.StatusNotFound, "Todo not found")
	case errors.Is(err, service.ErrForbidden):
		respondError(c, http.StatusForbidden, "Not authorized to modify this todo")
	case errors.Is(err, service.ErrUnsafeInput):
		respondError(c, http.StatusBadRequest, "Invalid input detected")
	default:
		logger.Error(internalMsg, "error", err)
		respondError(c, http.StatusInternalServerError, internalMsg)
	}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "Invalid ID format")
		return 0, false
	}
	return id, true
}
