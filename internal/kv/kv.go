// Package kv provides the namespaced key-value abstraction backing tombola
// session state. Values carry a per-key TTL; an expired or absent key reads
// back as not found, never as an error.
package kv

import (
	"context"
	"time"
)

type Store interface {
	// Get returns the value for key, and whether the key exists and has not
	// expired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set writes the value for key. A non-zero ttl replaces any previous
	// expiry for the key.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error

	Close() error
}
