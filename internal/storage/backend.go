package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Backend.Load for keys that were never saved.
var ErrNotFound = errors.New("storage: key not found")

// Backend is durable key-value storage for persisted values.
type Backend interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Close() error
}
