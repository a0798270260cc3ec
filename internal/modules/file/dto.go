package file

import "mediavault/internal/domain"

// StagedUpload is an uploaded item already written to a temporary local path
// by the HTTP boundary. Staging bytes are transient: once an operation
// acknowledges them stored (or fails), the staging copy is cleaned up.
type StagedUpload struct {
	FieldName    string
	OriginalName string
	Encoding     string
	MimeType     string
	Size         int64
	Path         string
}

type CreateFileInput struct {
	Name       string
	Backend    domain.StorageBackend
	Main       *StagedUpload
	Additional []StagedUpload
}

// UpdateFileInput is partial: nil fields leave the record untouched.
// Main replaces the main attachment; Additional (non-nil) replaces the whole
// additional set.
type UpdateFileInput struct {
	Name       string
	Main       *StagedUpload
	Additional []StagedUpload
}

type MigrateRequest struct {
	TargetStorage string `json:"target_storage" binding:"required"`
}
