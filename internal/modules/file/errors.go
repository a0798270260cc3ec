package file

import "errors"

var (
	ErrFileNotFound = errors.New("file not found")

	// validation
	ErrNameRequired   = errors.New("name is required")
	ErrNameTooLong    = errors.New("name exceeds 128 characters")
	ErrNoFiles        = errors.New("at least one of mainFile or additionalFiles is required")
	ErrInvalidBackend = errors.New("invalid storage backend")

	// storage orchestration
	ErrRemoteUnavailable = errors.New("remote media store is not configured")
	ErrMigration         = errors.New("storage migration failed")
	ErrNotImplemented    = errors.New("migration from remote to local storage is not implemented")
)
