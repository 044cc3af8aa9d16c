package cachemanager

import (
	"context"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/zjrosen/coordsys/internal/log"
)

const (
	DefaultExpiration      = 10 * time.Minute
	DefaultCleanupInterval = 30 * time.Minute
)

// Stats counts lookups since the cache was created.
type Stats struct {
	Hits   uint64
	Misses uint64
	Items  int
}

// Memory is the go-cache implementation of Cache. Keys are prefixed with the
// cache name so entries from different caches are told apart in logs.
type Memory[K ~string, V any] struct {
	name   string
	items  *gocache.Cache
	hits   atomic.Uint64
	misses atomic.Uint64
}

var _ Cache[string, any] = (*Memory[string, any])(nil)

// NewMemory returns an empty cache whose entries expire after ttl unless Set
// gives another one.
func NewMemory[K ~string, V any](name string, ttl time.Duration) *Memory[K, V] {
	return &Memory[K, V]{
		name:  name,
		items: gocache.New(ttl, DefaultCleanupInterval),
	}
}

func (m *Memory[K, V]) key(k K) string {
	return m.name + ":" + string(k)
}

// Get returns the live value stored under key.
func (m *Memory[K, V]) Get(_ context.Context, key K) (V, bool) {
	var zero V
	raw, found := m.items.Get(m.key(key))
	if !found {
		m.misses.Add(1)
		return zero, false
	}
	v, ok := raw.(V)
	if !ok {
		m.misses.Add(1)
		log.Error(log.CatCache, "Cached value has the wrong type", "cache", m.name, "key", key)
		return zero, false
	}
	m.hits.Add(1)
	return v, true
}

// Set stores value under key. A ttl of zero uses the cache default.
func (m *Memory[K, V]) Set(_ context.Context, key K, value V, ttl time.Duration) {
	m.items.Set(m.key(key), value, ttl)
}

func (m *Memory[K, V]) Flush(_ context.Context) error {
	n := m.items.ItemCount()
	m.items.Flush()
	log.Debug(log.CatCache, "Flushed cache", "cache", m.name, "items", n)
	return nil
}

// Len includes expired entries the janitor has not removed yet.
func (m *Memory[K, V]) Len() int {
	return m.items.ItemCount()
}

func (m *Memory[K, V]) Stats() Stats {
	return Stats{Hits: m.hits.Load(), Misses: m.misses.Load(), Items: m.Len()}
}
