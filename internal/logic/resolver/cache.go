package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/skillcoder/kube-service-resolver/internal/infra/metrics"
)

// Entry is one cached directory lookup. Entries are replaced wholesale
// on refresh, never mutated in place.
type Entry struct {
	Endpoints Endpoints
	FetchedAt time.Time
	TTL       time.Duration
}

// valid reports whether the entry is still fresh for the given ttl.
func (e *Entry) valid(ttl time.Duration, now time.Time) bool {
	return now.Before(e.FetchedAt.Add(ttl))
}

// Cache stores the most recent directory lookup per ServiceKey and
// coalesces concurrent refreshes for the same key into one directory call.
type Cache struct {
	logger     *slog.Logger
	directory  Directory
	serveStale bool

	mu      sync.RWMutex
	entries map[ServiceKey]*Entry
	group   singleflight.Group
}

// NewCache creates a discovery cache backed by the given directory.
// When serveStale is true, an expired entry is served instead of failing
// while the directory is temporarily unavailable.
func NewCache(logger *slog.Logger, directory Directory, serveStale bool) *Cache {
	return &Cache{
		logger:     logger,
		directory:  directory,
		serveStale: serveStale,
		entries:    make(map[ServiceKey]*Entry),
	}
}

// GetOrRefresh returns the cached entry for key when it is still valid,
// otherwise refreshes it from the directory. Concurrent callers for the
// same key share a single in-flight refresh.
func (c *Cache) GetOrRefresh(
	ctx context.Context,
	key ServiceKey,
	ttl time.Duration,
	labelSelector string,
) (*Entry, error) {
	if entry := c.lookupValid(key, ttl); entry != nil {
		metrics.RecordCacheLookup(key.Namespace, key.Service, "hit")

		return entry, nil
	}

	metrics.RecordCacheLookup(key.Namespace, key.Service, "miss")

	v, err, _ := c.group.Do(key.String(), func() (any, error) {
		// A waiter queued behind the previous flight may arrive after the
		// entry was just written; serve it instead of refreshing again.
		if entry := c.lookupValid(key, ttl); entry != nil {
			return entry, nil
		}

		return c.refresh(ctx, key, ttl, labelSelector)
	})
	if err != nil {
		if c.serveStale && errors.Is(err, ErrDirectoryUnavailable) {
			if stale := c.lookupAny(key); stale != nil {
				c.logger.WarnContext(ctx, "directory unavailable, serving stale entry",
					"key", key.String(),
					"age", time.Since(stale.FetchedAt),
					"reason", err,
				)
				metrics.RecordStaleServed(key.Namespace, key.Service)

				return stale, nil
			}
		}

		return nil, err
	}

	entry, ok := v.(*Entry)
	if !ok {
		return nil, fmt.Errorf("get or refresh %s: unexpected flight result %T", key, v)
	}

	return entry, nil
}

// Sweep drops expired entries and returns the number removed.
func (c *Cache) Sweep() int {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0

	for key, entry := range c.entries {
		if !entry.valid(entry.TTL, now) {
			delete(c.entries, key)

			removed++
		}
	}

	return removed
}

// Len returns the number of entries currently held, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

func (c *Cache) refresh(
	ctx context.Context,
	key ServiceKey,
	ttl time.Duration,
	labelSelector string,
) (*Entry, error) {
	endpoints, err := c.directory.LookupEndpointsQuery(ctx, key.Namespace, key.Service, labelSelector)
	if err != nil {
		var target notFound
		if errors.As(err, &target) {
			metrics.RecordCacheRefresh(key.Namespace, key.Service, "not_found")

			return nil, fmt.Errorf("lookup %s: %w", key, ErrServiceNotFound)
		}

		metrics.RecordCacheRefresh(key.Namespace, key.Service, "unavailable")

		return nil, fmt.Errorf("lookup %s: %w: %w", key, ErrDirectoryUnavailable, err)
	}

	entry := &Entry{
		Endpoints: *endpoints,
		FetchedAt: time.Now(),
		TTL:       ttl,
	}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()

	metrics.RecordCacheRefresh(key.Namespace, key.Service, "success")

	c.logger.DebugContext(ctx, "cache entry refreshed",
		"key", key.String(),
		"pods", len(endpoints.Pods),
		"port", endpoints.Port,
	)

	return entry, nil
}

func (c *Cache) lookupValid(key ServiceKey, ttl time.Duration) *Entry {
	entry := c.lookupAny(key)
	if entry == nil || !entry.valid(ttl, time.Now()) {
		return nil
	}

	return entry
}

func (c *Cache) lookupAny(key ServiceKey) *Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.entries[key]
}
