// Package cachemanager keeps computed query results in go-cache behind a typed
// interface and loads them on a miss.
package cachemanager

import (
	"context"
	"time"
)

// Cache stores values of one type under string-like keys.
type Cache[K ~string, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	Set(ctx context.Context, key K, value V, ttl time.Duration)
	Flush(ctx context.Context) error
	Len() int
}
