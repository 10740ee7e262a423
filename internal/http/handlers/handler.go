package handlers

import (
	"todo_webapp/internal/service"
)

// Handler bundles the services behind the HTTP surface. The token issuer
// is injected so handlers never touch signing details.
type Handler struct {
	Users  *service.UserService
	Todos  *service.TodoService
	Tokens service.TokenIssuer
}

func NewHandler(users *service.UserService, todos *service.TodoService, tokens service.TokenIssuer) *Handler {
	return &Handler{Users: users, Todos: todos, Tokens: tokens}
}
