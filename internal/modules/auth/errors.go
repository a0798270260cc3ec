package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrInvalidPhone       = errors.New("phone must contain digits only")
	ErrInvalidCode        = errors.New("invalid recovery code")
	ErrCodeExpired        = errors.New("recovery code has expired")
)
