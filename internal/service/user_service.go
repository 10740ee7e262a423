package service

import (
	"context"
	"errors"

	"todo_webapp/internal/domain"
	"todo_webapp/internal/repository"
	"todo_webapp/internal/security"
)

// UserService handles registration and credential checks.
type UserService struct {
	repo   repository.UserRepo
	hasher PasswordHasher
}

func NewUserService(repo repository.UserRepo, hasher PasswordHasher) *UserService {
	return &UserService{repo: repo, hasher: hasher}
}

// Register creates a user with a hashed password. Field validation runs
// at the handler boundary before this is called.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		Username:     username,
		Email:        security.NormalizeEmail(email),
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	return u, nil
}

// Authenticate checks email and password. The caller gets a single
// generic error either way, never which credential failed.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	u, err := s.repo.GetByEmail(ctx, security.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.hasher.Compare(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// GetByID returns the user or ErrNotFound.
func (s *UserService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}
