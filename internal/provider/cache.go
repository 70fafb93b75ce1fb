package provider

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/patrickmn/go-cache"
)

func init() {
	// go-cache persists items with gob, which needs the concrete types.
	gob.Register([]Candidate{})
	gob.Register(&Show{})
}

// Cache holds provider responses across runs. Only the process holding the file
// lock persists; any other process gets a private in-memory cache.
type Cache struct {
	store   *cache.Cache
	path    string
	lock    *flock.Flock
	persist bool
	closed  bool
}

// NewMemoryCache returns a Cache that is never written to disk.
func NewMemoryCache(ttl time.Duration) *Cache {
	return &Cache{store: cache.New(ttl, 2*ttl)}
}

// OpenCache loads the cache file at path, creating its directory if needed.
func OpenCache(path string, ttl time.Duration) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock cache %s: %w", path, err)
	}
	if !locked {
		return NewMemoryCache(ttl), nil
	}

	c := &Cache{
		store:   cache.New(ttl, 2*ttl),
		path:    path,
		lock:    lock,
		persist: true,
	}
	// A missing or unreadable cache file starts an empty cache
	_ = c.store.LoadFile(path)
	c.store.DeleteExpired()
	return c, nil
}

// Persistent reports whether Close will write the cache file.
func (c *Cache) Persistent() bool {
	return c.persist
}

// Get returns a cached value.
func (c *Cache) Get(key string) (interface{}, bool) {
	return c.store.Get(key)
}

// Set stores a value with the default expiration.
func (c *Cache) Set(key string, value interface{}) {
	c.store.SetDefault(key, value)
}

// Len reports the number of cached items.
func (c *Cache) Len() int {
	return c.store.ItemCount()
}

// Close flushes the cache to disk and releases the file lock. It is safe to call
// more than once.
func (c *Cache) Close() error {
	if c == nil || c.closed {
		return nil
	}
	c.closed = true
	if !c.persist {
		return nil
	}

	var errs []error
	if err := c.store.SaveFile(c.path); err != nil {
		errs = append(errs, fmt.Errorf("save cache %s: %w", c.path, err))
	}
	if err := c.lock.Unlock(); err != nil {
		errs = append(errs, fmt.Errorf("unlock cache %s: %w", c.path, err))
	}
	return errors.Join(errs...)
}

// cached wraps a Provider so identical requests are answered from a Cache.
type cached struct {
	Provider
	cache *Cache
}

// Cached returns p with Search and Series results memoized in c.
func Cached(p Provider, c *Cache) Provider {
	if c == nil {
		return p
	}
	return &cached{Provider: p, cache: c}
}

func searchKey(providerName string, request SearchRequest) string {
	return fmt.Sprintf("search:%s:%s:%s", providerName, request.Language, strings.ToLower(strings.TrimSpace(request.Name)))
}

func seriesKey(providerName string, request SeriesRequest) string {
	return fmt.Sprintf("series:%s:%s:%d", providerName, request.Language, request.ID)
}

func (c *cached) Search(ctx context.Context, request SearchRequest) ([]Candidate, error) {
	key := searchKey(c.Name(), request)
	if v, ok := c.cache.Get(key); ok {
		if candidates, ok := v.([]Candidate); ok {
			return candidates, nil
		}
	}

	candidates, err := c.Provider.Search(ctx, request)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, candidates)
	return candidates, nil
}

func (c *cached) Series(ctx context.Context, request SeriesRequest) (*Show, error) {
	key := seriesKey(c.Name(), request)
	if v, ok := c.cache.Get(key); ok {
		if show, ok := v.(*Show); ok {
			return show, nil
		}
	}

	show, err := c.Provider.Series(ctx, request)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, show)
	return show, nil
}
