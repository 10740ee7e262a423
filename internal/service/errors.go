package service

import "errors"

// Sentinel errors mapped to HTTP statuses at the handler boundary.
// Anything else coming out of a service is an internal error and is
// reported generically.
var (
	ErrNotFound           = errors.New("todo not found")
	ErrForbidden          = errors.New("not the owner")
	ErrUnsafeInput        = errors.New("invalid input detected")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists with this email or username")
)
