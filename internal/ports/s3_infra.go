package ports

import (
	"context"
	"io"
)

// Low-level S3 client
type S3Client interface {
	PutObject(ctx context.Context, key string, r io.Reader, size int64, contentType string) (publicURL string, err error)
	// Ping verifies the bucket is still reachable.
	Ping(ctx context.Context) error
}
