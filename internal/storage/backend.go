// Package storage persists the application state document through an opaque
// key-value backend.
package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by a backend when a key has never been written.
	ErrNotFound = errors.New("storage key not found")
	// ErrKeyRequired is returned when a backend is called with an empty key.
	ErrKeyRequired = errors.New("storage key is required")
)

// Backend is the key-value contract offered by the host environment.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}
