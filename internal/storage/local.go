package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"mediavault/internal/domain"
)

// LocalStore keeps file bytes on the local filesystem under a single upload
// directory and resolves public URLs against a configured base.
type LocalStore struct {
	dir     string
	baseURL string
}

func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve upload dir: %w", err)
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &LocalStore{dir: abs, baseURL: baseURL}, nil
}

// Store moves a staged file into the upload directory under a collision-free
// generated name. The upload directory is created on first use.
func (s *LocalStore) Store(stagedPath, originalName string) (*domain.LocalFileInfo, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}

	filename := uuid.New().String() + filepath.Ext(originalName)
	dstPath := filepath.Join(s.dir, filename)

	if err := moveFile(stagedPath, dstPath); err != nil {
		return nil, fmt.Errorf("store %s: %w", originalName, err)
	}

	return &domain.LocalFileInfo{
		Destination: s.dir,
		Filename:    filename,
		Path:        dstPath,
	}, nil
}

// Remove deletes the file at path. A file that is already gone is not an
// error: delete is idempotent.
func (s *LocalStore) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

// ResolveURL composes the public URL for a stored filename. No I/O.
func (s *LocalStore) ResolveURL(filename string) string {
	return s.baseURL + filename
}

// moveFile renames when possible and falls back to copy+remove for
// cross-device staging directories.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		_ = os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return err
	}

	return os.Remove(src)
}
