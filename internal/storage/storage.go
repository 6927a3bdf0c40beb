package storage

import (
	"context"
	"errors"
)

// KV is the durable key-value store a shopper's cart is written to.
// Consumers define this interface, not the backends.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

var ErrNotFound = errors.New("key not found")
