package file

import (
	"context"

	"mediavault/internal/domain"
)

// Repository persists file records.
type Repository interface {
	Create(ctx context.Context, f *domain.File) error
	GetByID(ctx context.Context, id int64) (*domain.File, error)
	List(ctx context.Context) ([]domain.File, error)
	Update(ctx context.Context, f *domain.File) error
	Delete(ctx context.Context, id int64) error
}

// LocalStore holds file bytes on local disk.
type LocalStore interface {
	Store(stagedPath, originalName string) (*domain.LocalFileInfo, error)
	Remove(path string) error
	ResolveURL(filename string) string
}

// MediaStore holds file bytes in the remote media store.
type MediaStore interface {
	Upload(ctx context.Context, localPath, folder string) (*domain.RemoteFileInfo, error)
	Remove(ctx context.Context, publicID string) error
}
