package storage

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"mediavault/internal/config"
	"mediavault/internal/domain"
)

// MediaStore uploads file bytes to an S3-compatible media store. Objects are
// grouped by folder key ({recordName}/main, {recordName}/additional); the
// object key doubles as the attachment's public id.
type MediaStore struct {
	client *minio.Client
	bucket string
	// precomputed URL prefix: scheme://endpoint/bucket/
	urlBase string
}

func NewMediaStore(cfg config.MediaConfig) (*MediaStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create media client: %w", err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check media bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create media bucket: %w", err)
		}
	}

	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}

	return &MediaStore{
		client:  client,
		bucket:  cfg.Bucket,
		urlBase: fmt.Sprintf("%s://%s/%s/", scheme, cfg.Endpoint, cfg.Bucket),
	}, nil
}

// Upload pushes local bytes to the media store under folder. The caller must
// not assume a partial upload completed when an error is returned.
func (s *MediaStore) Upload(ctx context.Context, localPath, folder string) (*domain.RemoteFileInfo, error) {
	ext := filepath.Ext(localPath)
	key := folder + "/" + uuid.New().String() + ext

	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.FPutObject(ctx, s.bucket, key, localPath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", localPath, err)
	}

	return &domain.RemoteFileInfo{
		PublicID:     key,
		SecureURL:    s.urlBase + key,
		Format:       strings.TrimPrefix(ext, "."),
		ResourceType: resourceType(contentType),
	}, nil
}

// Remove deletes an object by public id. An object that is already absent is
// treated as success: delete is idempotent.
func (s *MediaStore) Remove(ctx context.Context, publicID string) error {
	err := s.client.RemoveObject(ctx, s.bucket, publicID, minio.RemoveObjectOptions{})
	if err != nil {
		var resp minio.ErrorResponse
		if errors.As(err, &resp) && resp.Code == "NoSuchKey" {
			return nil
		}
		return fmt.Errorf("remove %s: %w", publicID, err)
	}
	return nil
}

func resourceType(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return "image"
	case strings.HasPrefix(contentType, "video/"):
		return "video"
	default:
		return "raw"
	}
}
