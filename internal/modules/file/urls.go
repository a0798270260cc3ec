package file

import (
	"time"

	"mediavault/internal/domain"
)

// URLResolver computes the public URL for a locally stored filename.
type URLResolver func(filename string) string

type AttachmentResponse struct {
	FieldName    string `json:"fieldname"`
	OriginalName string `json:"originalname"`
	Encoding     string `json:"encoding,omitempty"`
	MimeType     string `json:"mimetype"`
	Size         int64  `json:"size"`
	URL          string `json:"url"`

	// local variant
	Filename string `json:"filename,omitempty"`

	// remote variant
	PublicID     string `json:"public_id,omitempty"`
	Format       string `json:"format,omitempty"`
	ResourceType string `json:"resource_type,omitempty"`
}

type FileResponse struct {
	ID              int64                 `json:"id"`
	Name            string                `json:"name"`
	StorageBackend  domain.StorageBackend `json:"storage_backend"`
	MainFile        *AttachmentResponse   `json:"main_file,omitempty"`
	AdditionalFiles []AttachmentResponse  `json:"additional_files"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// ProjectURLs builds the externally consumable projection of a record: local
// attachments gain a URL computed from the resolver, remote attachments use
// their stored secure URL verbatim. Pure, no I/O.
func ProjectURLs(f *domain.File, resolve URLResolver) FileResponse {
	resp := FileResponse{
		ID:              f.ID,
		Name:            f.Name,
		StorageBackend:  f.StorageBackend,
		AdditionalFiles: make([]AttachmentResponse, 0, len(f.AdditionalFiles)),
		CreatedAt:       f.CreatedAt,
		UpdatedAt:       f.UpdatedAt,
	}

	if f.MainFile != nil {
		att := projectAttachment(*f.MainFile, resolve)
		resp.MainFile = &att
	}
	for _, a := range f.AdditionalFiles {
		resp.AdditionalFiles = append(resp.AdditionalFiles, projectAttachment(a, resolve))
	}

	return resp
}

func projectAttachment(a domain.Attachment, resolve URLResolver) AttachmentResponse {
	resp := AttachmentResponse{
		FieldName:    a.FieldName,
		OriginalName: a.OriginalName,
		Encoding:     a.Encoding,
		MimeType:     a.MimeType,
		Size:         a.Size,
	}

	switch {
	case a.Local != nil:
		resp.Filename = a.Local.Filename
		resp.URL = resolve(a.Local.Filename)
	case a.Remote != nil:
		resp.PublicID = a.Remote.PublicID
		resp.Format = a.Remote.Format
		resp.ResourceType = a.Remote.ResourceType
		resp.URL = a.Remote.SecureURL
	}

	return resp
}
