// Package kv is the small expiring key-value store behind single-use OAuth
// state values. Valkey backs it in deployments; MemoryStore backs tests and
// single-process runs.
package kv

import (
	"context"
	"time"
)

// Store is a byte-valued key-value store with per-key TTL.
type Store interface {
	// Set stores value under key. A zero TTL means the key never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Take returns the value and removes the key in one atomic step, so a
	// value can be redeemed at most once. Returns ErrNotFound when the key is
	// absent or expired.
	Take(ctx context.Context, key string) ([]byte, error)

	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}
