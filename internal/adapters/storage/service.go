// Package storage provides a small interface over S3-compatible object storage.
// The digest module archives rendered emails through it.
package storage

import (
	"context"
	"errors"
)

// ErrObjectNotFound is returned when a key does not exist in the bucket.
var ErrObjectNotFound = errors.New("object not found")

// ObjectStore defines the object storage operations the application uses.
type ObjectStore interface {
	// PutObject stores data under key, replacing any previous object.
	PutObject(ctx context.Context, bucket, key, contentType string, data []byte) error

	// GetObject reads a whole object. Missing keys yield ErrObjectNotFound.
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)

	// EnsureBucketExists creates the bucket if it doesn't exist.
	EnsureBucketExists(ctx context.Context, bucket string) error
}

// Config defines the configuration interface for storage.
type Config interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	IsMinIOEnabled() bool
}
