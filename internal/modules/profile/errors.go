package profile

import "errors"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrInvalidBirthDate = errors.New("birth_date must be YYYY-MM-DD")
)
