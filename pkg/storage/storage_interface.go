package storage

import (
	"context"
	"io"
	"time"
)

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

type StorageProvider interface {
	// PutObject stores body under key with a private ACL and returns the full key.
	PutObject(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	// PresignGet returns a time-limited download URL for key.
	PresignGet(ctx context.Context, key string, expire time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
	// List returns every object whose key starts with prefix.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	// Health checks the credentials by listing buckets.
	Health(ctx context.Context) error
}
