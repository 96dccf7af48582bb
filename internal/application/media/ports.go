package media

import (
	"context"
	"io"
	"time"
)

// ObjectInfo describes a stored object
type ObjectInfo struct {
	Size        int64
	ContentType string
}

// ObjectStorage is the blob store behind the media library.
// Implemented by infrastructure/storage (S3-compatible or in-memory).
type ObjectStorage interface {
	// GenerateUploadURL returns a presigned PUT URL and its expiry
	GenerateUploadURL(ctx context.Context, key, contentType string, size int64, expiresIn time.Duration) (string, time.Time, error)

	// GenerateDownloadURL returns a presigned GET URL that downloads as fileName
	GenerateDownloadURL(ctx context.Context, key, fileName string, expiresIn time.Duration) (string, time.Time, error)

	// Upload streams body to key
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error

	// StatObject returns nil info and no error when the object does not exist
	StatObject(ctx context.Context, key string) (*ObjectInfo, error)

	DeleteObject(ctx context.Context, key string) error

	// PublicURL is the unsigned URL used by the storefront
	PublicURL(key string) string
}
