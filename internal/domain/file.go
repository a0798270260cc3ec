package domain

import "time"

// StorageBackend identifies which adapter holds a file's bytes.
type StorageBackend string

const (
	BackendLocal  StorageBackend = "local"
	BackendRemote StorageBackend = "remote"
)

func (b StorageBackend) Valid() bool {
	return b == BackendLocal || b == BackendRemote
}

// LocalFileInfo describes bytes stored on the local disk.
type LocalFileInfo struct {
	Destination string `json:"destination"`
	Filename    string `json:"filename"`
	Path        string `json:"path"`
	URL         string `json:"url,omitempty"`
}

// RemoteFileInfo describes bytes stored in the remote media store.
type RemoteFileInfo struct {
	PublicID     string `json:"public_id"`
	SecureURL    string `json:"secure_url"`
	Format       string `json:"format"`
	ResourceType string `json:"resource_type,omitempty"`
}

// Attachment is one uploaded item (main or additional) belonging to a File.
// Exactly one of Local/Remote is set, and it must match the owning record's
// StorageBackend; a record never mixes variants across its attachments.
type Attachment struct {
	FieldName    string `json:"fieldname"`
	OriginalName string `json:"originalname"`
	Encoding     string `json:"encoding"`
	MimeType     string `json:"mimetype"`
	Size         int64  `json:"size"`

	Local  *LocalFileInfo  `json:"local,omitempty"`
	Remote *RemoteFileInfo `json:"remote,omitempty"`
}

// File is the persisted record describing one logical file: a display name,
// the backend that currently holds its content, an optional main attachment
// and zero or more additional attachments in upload order.
type File struct {
	ID              int64          `json:"id"`
	Name            string         `json:"name"`
	StorageBackend  StorageBackend `json:"storage_backend"`
	MainFile        *Attachment    `json:"main_file,omitempty"`
	AdditionalFiles []Attachment   `json:"additional_files,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// MaxFileNameLen limits File.Name (mirrors the VARCHAR(128) column).
const MaxFileNameLen = 128
