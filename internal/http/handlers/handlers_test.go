package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"todo_webapp/internal/http/middleware"
	"todo_webapp/internal/repository"
	"todo_webapp/internal/service"
	"todo_webapp/internal/validation"

	"github.com/gin-gonic/gin"
)

type apiResponse struct {
	Success bool                    `json:"success"`
	Message string                  `json:"message"`
	Data    json.RawMessage         `json:"data"`
	Errors  []validation.FieldError `json:"errors"`
	Count   *int                    `json:"count"`
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	users := service.NewUserService(repository.NewMemoryUserRepo(), &service.BcryptHasher{})
	todos := service.NewTodoService(repository.NewMemoryTodoRepo(), nil, nil)
	tokens := service.NewJWTIssuer("test-secret", time.Hour)
	h := NewHandler(users, todos, tokens)

	r := gin.New()
	auth := r.Group("/auth")
	auth.POST("/register", h.Register)
	auth.POST("/login", h.Login)
	auth.GET("/me", middleware.Auth(tokens), h.Me)
	t := r.Group("/todos", middleware.Auth(tokens))
	t.GET("", h.ListTodos)
	t.POST("", h.CreateTodo)
	t.PUT("/:id", h.UpdateTodo)
	t.DELETE("/:id", h.DeleteTodo)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token, body string) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var resp apiResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("%s %s: bad response body %q: %v", method, path, w.Body.String(), err)
	}
	return w, resp
}

func register(t *testing.T, r *gin.Engine, username, email string) string {
	t.Helper()
	w, resp := doJSON(t, r, http.MethodPost, "/auth/register", "",
		`{"username":"`+username+`","email":"`+email+`","password":"Passw0rd!"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: %d %s", username, w.Code, w.Body.String())
	}
	var payload struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(resp.Data, &payload); err != nil || payload.Token == "" {
		t.Fatalf("register %s: no token in %s", username, resp.Data)
	}
	return payload.Token
}

func TestRegisterLoginMe(t *testing.T) {
	r := newTestRouter()
	register(t, r, "alice", "alice@example.com")

	w, resp := doJSON(t, r, http.MethodPost, "/auth/login", "",
		`{"email":"alice@example.com","password":"Passw0rd!"}`)
	if w.Code != http.StatusOK || !resp.Success || resp.Message != "Login successful" {
		t.Fatalf("login: %d %s", w.Code, w.Body.String())
	}
	var payload struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(w.Body.String(), "password") {
		t.Error("login response leaks a password field")
	}

	w, resp = doJSON(t, r, http.MethodGet, "/auth/me", payload.Token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("me: %d %s", w.Code, w.Body.String())
	}
	if !strings.Contains(string(resp.Data), `"alice"`) {
		t.Fatalf("me data = %s", resp.Data)
	}
}

func TestRegisterValidation(t *testing.T) {
	r := newTestRouter()
	w, resp := doJSON(t, r, http.MethodPost, "/auth/register", "",
		`{"username":"x","email":"not-an-email","password":"abc"}`)
	if w.Code != http.StatusBadRequest || resp.Message != "Validation failed" {
		t.Fatalf("got %d %s", w.Code, w.Body.String())
	}
	if len(resp.Errors) != 3 {
		t.Fatalf("errors = %v", resp.Errors)
	}
	seen := map[string]bool{}
	for _, e := range resp.Errors {
		seen[e.Field] = true
	}
	if !seen["username"] || !seen["email"] || !seen["password"] {
		t.Fatalf("errors = %v", resp.Errors)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	r := newTestRouter()
	register(t, r, "alice", "alice@example.com")
	w, resp := doJSON(t, r, http.MethodPost, "/auth/register", "",
		`{"username":"alice","email":"alice@example.com","password":"Passw0rd!"}`)
	if w.Code != http.StatusBadRequest || resp.Message != "User already exists with this email or username" {
		t.Fatalf("got %d %s", w.Code, w.Body.String())
	}
}

func TestLoginWrongPassword(t *testing.T) {
	r := newTestRouter()
	register(t, r, "alice", "alice@example.com")
	w, resp := doJSON(t, r, http.MethodPost, "/auth/login", "",
		`{"email":"alice@example.com","password":"WrongPass1!"}`)
	if w.Code != http.StatusUnauthorized || resp.Message != "Invalid credentials" {
		t.Fatalf("got %d %s", w.Code, w.Body.String())
	}
}

func TestAuthRequired(t *testing.T) {
	r := newTestRouter()
	for _, token := range []string{"", "not-a-real-token"} {
		w, resp := doJSON(t, r, http.MethodGet, "/todos", token, "")
		if w.Code != http.StatusUnauthorized || resp.Message != "Not authorized, token missing or invalid" {
			t.Fatalf("token %q: %d %s", token, w.Code, w.Body.String())
		}
	}
}

func TestTodoLifecycle(t *testing.T) {
	r := newTestRouter()
	alice := register(t, r, "alice", "alice@example.com")
	bob := register(t, r, "bob", "bob@example.com")

	w, resp := doJSON(t, r, http.MethodPost, "/todos", alice,
		`{"title":"Ship report","deadline":"2999-01-01","priority":"high"}`)
	if w.Code != http.StatusCreated || resp.Message != "Todo created successfully" {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	var created struct {
		ID        int64  `json:"id"`
		Completed bool   `json:"completed"`
		Priority  string `json:"priority"`
	}
	if err := json.Unmarshal(resp.Data, &created); err != nil {
		t.Fatal(err)
	}
	if created.Completed || created.Priority != "high" || created.ID == 0 {
		t.Fatalf("created = %+v", created)
	}
	id := "/todos/" + strconvID(created.ID)

	w, resp = doJSON(t, r, http.MethodGet, "/todos", alice, "")
	if w.Code != http.StatusOK || resp.Count == nil || *resp.Count != 1 {
		t.Fatalf("alice list: %d %s", w.Code, w.Body.String())
	}
	w, resp = doJSON(t, r, http.MethodGet, "/todos", bob, "")
	if w.Code != http.StatusOK || resp.Count == nil || *resp.Count != 0 {
		t.Fatalf("bob list: %d %s", w.Code, w.Body.String())
	}

	w, resp = doJSON(t, r, http.MethodPut, id, bob, `{"completed":true}`)
	if w.Code != http.StatusForbidden || resp.Message != "Not authorized to modify this todo" {
		t.Fatalf("foreign update: %d %s", w.Code, w.Body.String())
	}
	w, resp = doJSON(t, r, http.MethodDelete, id, bob, "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("foreign delete: %d %s", w.Code, w.Body.String())
	}

	w, resp = doJSON(t, r, http.MethodPut, "/todos/9999", bob, `{"completed":true}`)
	if w.Code != http.StatusNotFound || resp.Message != "Todo not found" {
		t.Fatalf("missing update: %d %s", w.Code, w.Body.String())
	}
	w, resp = doJSON(t, r, http.MethodPut, "/todos/abc", alice, `{"completed":true}`)
	if w.Code != http.StatusBadRequest || resp.Message != "Invalid ID format" {
		t.Fatalf("bad id: %d %s", w.Code, w.Body.String())
	}

	w, resp = doJSON(t, r, http.MethodPut, id, alice, `{"completed":true}`)
	if w.Code != http.StatusOK || resp.Message != "Todo updated successfully" {
		t.Fatalf("update: %d %s", w.Code, w.Body.String())
	}
	var updated struct {
		Completed bool   `json:"completed"`
		Title     string `json:"title"`
	}
	if err := json.Unmarshal(resp.Data, &updated); err != nil {
		t.Fatal(err)
	}
	if !updated.Completed || updated.Title != "Ship report" {
		t.Fatalf("updated = %+v", updated)
	}

	w, resp = doJSON(t, r, http.MethodDelete, id, alice, "")
	if w.Code != http.StatusOK || resp.Message != "Todo deleted successfully" {
		t.Fatalf("delete: %d %s", w.Code, w.Body.String())
	}
	w, resp = doJSON(t, r, http.MethodDelete, id, alice, "")
	if w.Code != http.StatusNotFound || resp.Message != "Todo not found" {
		t.Fatalf("second delete: %d %s", w.Code, w.Body.String())
	}
}

func TestCreateTodoValidationCollectsAll(t *testing.T) {
	r := newTestRouter()
	alice := register(t, r, "alice", "alice@example.com")
	w, resp := doJSON(t, r, http.MethodPost, "/todos", alice,
		`{"title":"","deadline":"2001-01-01","priority":"urgent"}`)
	if w.Code != http.StatusBadRequest || resp.Message != "Validation failed" {
		t.Fatalf("got %d %s", w.Code, w.Body.String())
	}
	if len(resp.Errors) != 3 {
		t.Fatalf("errors = %v", resp.Errors)
	}
	for _, e := range resp.Errors {
		if e.Field == "deadline" && e.Message != "Deadline must be in the future" {
			t.Fatalf("deadline message = %q", e.Message)
		}
	}
}

func TestCreateTodoRejectsInjection(t *testing.T) {
	r := newTestRouter()
	alice := register(t, r, "alice", "alice@example.com")
	w, resp := doJSON(t, r, http.MethodPost, "/todos", alice,
		`{"title":"Robert'); DROP TABLE students; --"}`)
	if w.Code != http.StatusBadRequest || resp.Message != "Invalid input detected" {
		t.Fatalf("got %d %s", w.Code, w.Body.String())
	}
}

func TestCreateTodoSanitizesScript(t *testing.T) {
	r := newTestRouter()
	alice := register(t, r, "alice", "alice@example.com")
	w, resp := doJSON(t, r, http.MethodPost, "/todos", alice,
		`{"title":"<script>alert(1)</script>Water plants"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("got %d %s", w.Code, w.Body.String())
	}
	var created struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(resp.Data, &created); err != nil {
		t.Fatal(err)
	}
	if created.Title != "Water plants" {
		t.Fatalf("title = %q", created.Title)
	}
}

func strconvID(id int64) string {
	return strconv.FormatInt(id, 10)
}
