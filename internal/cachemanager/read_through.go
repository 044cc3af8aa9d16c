package cachemanager

import (
	"context"
	"time"
)

// LoadFunc computes the value for input when it is not cached.
type LoadFunc[V any, I any] func(ctx context.Context, input I) (V, error)

// ReadThrough answers from Cache and calls Load on a miss. Load errors are returned
// and never cached. A disabled ReadThrough calls Load every time.
type ReadThrough[K ~string, V any, I any] struct {
	cache    Cache[K, V]
	load     LoadFunc[V, I]
	ttl      time.Duration
	disabled bool
}

// ReadThroughConfig configures a ReadThrough.
type ReadThroughConfig[K ~string, V any, I any] struct {
	Cache Cache[K, V]
	Load  LoadFunc[V, I]

	// TTL of stored values. Zero uses the cache default.
	TTL time.Duration

	Disabled bool
}

func NewReadThrough[K ~string, V any, I any](cfg ReadThroughConfig[K, V, I]) *ReadThrough[K, V, I] {
	return &ReadThrough[K, V, I]{
		cache:    cfg.Cache,
		load:     cfg.Load,
		ttl:      cfg.TTL,
		disabled: cfg.Disabled || cfg.Cache == nil,
	}
}

// Get returns the value for key, loading it from input on a miss. cached reports
// whether the value came from the cache.
func (r *ReadThrough[K, V, I]) Get(ctx context.Context, key K, input I) (value V, cached bool, err error) {
	if r.disabled {
		value, err = r.load(ctx, input)
		return value, false, err
	}
	if value, ok := r.cache.Get(ctx, key); ok {
		return value, true, nil
	}
	value, err = r.load(ctx, input)
	if err != nil {
		return value, false, err
	}
	r.cache.Set(ctx, key, value, r.ttl)
	return value, false, nil
}

// Invalidate drops every cached value.
func (r *ReadThrough[K, V, I]) Invalidate(ctx context.Context) error {
	if r.disabled {
		return nil
	}
	return r.cache.Flush(ctx)
}

func (r *ReadThrough[K, V, I]) Enabled() bool {
	return !r.disabled
}
