package handlers

import (
	"errors"
	"net/http"

	"todo_webapp/internal/domain"
	"todo_webapp/internal/http/middleware"
	"todo_webapp/internal/logger"
	"todo_webapp/internal/service"
	"todo_webapp/internal/validation"

	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authPayload struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

// Register creates an account and returns a bearer token.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := validation.Register(req.Username, req.Email, req.Password); !errs.Empty() {
		respondValidation(c, errs)
		return
	}

	user, err := h.Users.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			respondError(c, http.StatusBadRequest, "User already exists with this email or username")
			return
		}
		logger.Error("register failed", "error", err)
		respondError(c, http.StatusInternalServerError, "Registration failed")
		return
	}

	token, err := h.Tokens.Issue(user.ID)
	if err != nil {
		logger.Error("token issue failed", "error", err)
		respondError(c, http.StatusInternalServerError, "Registration failed")
		return
	}

	respondData(c, http.StatusCreated, "User registered successfully", authPayload{User: user, Token: token})
}

// Login checks credentials and returns a bearer token. The error is the
// same whichever credential was wrong.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := validation.Login(req.Email, req.Password); !errs.Empty() {
		respondValidation(c, errs)
		return
	}

	user, err := h.Users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondError(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		logger.Error("login failed", "error", err)
		respondError(c, http.StatusInternalServerError, "Login failed")
		return
	}

	token, err := h.Tokens.Issue(user.ID)
	if err != nil {
		logger.Error("token issue failed", "error", err)
		respondError(c, http.StatusInternalServerError, "Login failed")
		return
	}

	respondData(c, http.StatusOK, "Login successful", authPayload{User: user, Token: token})
}

// Me returns the authenticated user.
func (h *Handler) Me(c *gin.Context) {
	user, err := h.Users.GetByID(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, http.StatusNotFound, "User not found")
			return
		}
		logger.Error("me lookup failed", "error", err)
		respondError(c, http.StatusInternalServerError, "Error fetching user")
		return
	}
	respondData(c, http.StatusOK, "", gin.H{"user": user})
}
