// Package storage wraps all object storage operations behind a small
// interface so the lifecycle coordinator can be tested with fakes.
package storage

import (
	"context"
	"io"
	"time"
)

type ObjectStore interface {
	// Put writes a blob. It must not overwrite an existing object at
	// the same key.
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error

	// Delete removes the given keys best-effort. A missing key is not
	// an error.
	Delete(ctx context.Context, keys ...string) error

	// Exists reports whether an object is present at key.
	Exists(ctx context.Context, key string) (bool, error)

	// SignedURL returns a time-limited download URL for key.
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)

	// PresignPut returns a time-limited direct-upload URL for key.
	PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error)
}
