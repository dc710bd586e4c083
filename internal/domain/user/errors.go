package user

import "errors"

// Domain errors for identity operations
var (
	ErrEmptyUsername = errors.New("username must not be empty")
	ErrEmptyEmail    = errors.New("email must not be empty")
	ErrEmptyPassword = errors.New("password hash must not be empty")
	ErrInvalidAge    = errors.New("age must not be negative")

	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateIdentity = errors.New("username or email already exists")
)
