// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FieldSync

// Package cache provides the TTL'd byte cache used to hold generated
// restore payloads and in-flight task handles between requests.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Get when the key is absent or its entry has
// expired. Callers should use [errors.Is] to match against it.
var ErrCacheMiss = errors.New("cache miss")

// Cache is a byte store with per-entry expiry. Implementations must be safe
// for concurrent use.
type Cache interface {
	// Get returns the value stored under key, or ErrCacheMiss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key. A positive ttl expires the entry after
	// that duration; zero or negative keeps it until deleted.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes the entry under key. Deleting an absent key is a
	// no-op.
	Delete(ctx context.Context, key string) error

	// Close releases the underlying storage.
	Close() error
}
