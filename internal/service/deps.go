package service

import (
	"context"
	"io"

	"github.com/ovechkin-dev/marketplace/internal/models"
)

// Publisher emits domain events. Publishing is best-effort everywhere: a
// failed publish is logged and never fails the request.
type Publisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

// Uploader relays an image payload to the external object store and returns
// the URL to persist. Implemented by storage.ObjectStore.
type Uploader interface {
	Upload(ctx context.Context, filename, contentType string, r io.Reader, size int64) (string, error)
}

// Indexer keeps the search index in step with the product table,
// best-effort. Implemented by es.ProductIndex.
type Indexer interface {
	IndexProduct(ctx context.Context, prod *models.Product) error
	DeleteProduct(ctx context.Context, id uint) error
}
