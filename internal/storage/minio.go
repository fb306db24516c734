package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/ovechkin-dev/marketplace/internal/config"
)

const objectPrefix = "products"

// ObjectStore relays image uploads to an S3-compatible bucket and hands back
// the public URL that gets persisted on the product row.
type ObjectStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

func NewObjectStore(ctx context.Context, cfg *config.Config) (*ObjectStore, error) {
	client, err := minio.New(cfg.S3_ENDPOINT, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3_ACCESS_KEY, cfg.S3_SECRET_KEY, ""),
		Secure: cfg.S3_USE_SSL,
	})
	if err != nil {
		return nil, fmt.Errorf("object store client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.S3_BUCKET)
	if err != nil {
		return nil, fmt.Errorf("object store bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.S3_BUCKET, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("object store bucket create: %w", err)
		}
	}

	publicURL := cfg.S3_PUBLIC_URL
	if publicURL == "" {
		scheme := "http"
		if cfg.S3_USE_SSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s", scheme, cfg.S3_ENDPOINT)
	}

	return &ObjectStore{
		client:    client,
		bucket:    cfg.S3_BUCKET,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

// Upload streams the payload under a random object name and returns its URL.
// The caller must not persist anything referencing a failed upload.
func (s *ObjectStore) Upload(ctx context.Context, filename, contentType string, r io.Reader, size int64) (string, error) {
	objectName := fmt.Sprintf("%s/%s%s", objectPrefix, uuid.NewString(), path.Ext(filename))

	_, err := s.client.PutObject(ctx, s.bucket, objectName, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("object store put: %w", err)
	}

	return fmt.Sprintf("%s/%s/%s", s.publicURL, s.bucket, objectName), nil
}
