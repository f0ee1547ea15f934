package route

import (
	"context"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Cache is the in-memory route cache for one run. It is not safe for
// concurrent use.
type Cache struct {
	store   Store
	entries map[string]Route
	changed map[string]struct{}
}

// NewCache returns an empty cache backed by store. store may be nil for a
// purely in-memory cache.
func NewCache(store Store) *Cache {
	return &Cache{
		store:   store,
		entries: make(map[string]Route),
		changed: make(map[string]struct{}),
	}
}

// LoadCache reads the store into a new cache. A failing store is not fatal:
// the run starts from an empty cache and the failure is logged.
func LoadCache(ctx context.Context, store Store) *Cache {
	c := NewCache(store)
	if store == nil {
		return c
	}
	entries, err := store.Load(ctx)
	if err != nil {
		zap.L().Warn("route: cache unavailable, starting empty", zap.Error(err))
		return c
	}
	for k, v := range entries {
		c.entries[k] = v
	}
	zap.L().Debug("route: cache loaded", zap.Int("entries", len(c.entries)))
	return c
}

// Lookup returns the cached route for callsign.
func (c *Cache) Lookup(callsign string) (Route, bool) {
	r, ok := c.entries[callsign]
	return r, ok
}

// Put records r for callsign. Empty routes are never stored and an unchanged
// route does not dirty the cache. It reports whether the cache changed.
func (c *Cache) Put(callsign string, r Route) bool {
	if callsign == "" || r.Empty() {
		return false
	}
	if old, ok := c.entries[callsign]; ok && old.Equal(r) {
		return false
	}
	c.entries[callsign] = r
	c.changed[callsign] = struct{}{}
	return true
}

// Dirty reports whether the cache has unsaved changes.
func (c *Cache) Dirty() bool {
	return len(c.changed) > 0
}

// Len returns the number of cached callsigns.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Entries returns a copy of every cached entry.
func (c *Cache) Entries() map[string]Route {
	out := make(map[string]Route, len(c.entries))
	for k, v := range c.entries {
		out[k] = v
	}
	return out
}

// Flush writes the cache to its store when dirty. It is a no-op otherwise.
func (c *Cache) Flush(ctx context.Context) error {
	if !c.Dirty() || c.store == nil {
		return nil
	}
	changed := make([]string, 0, len(c.changed))
	for k := range c.changed {
		changed = append(changed, k)
	}
	sort.Strings(changed)

	if err := c.store.Save(ctx, c.entries, changed); err != nil {
		return eris.Wrap(err, "route: flush cache")
	}
	zap.L().Info("route: cache flushed", zap.Int("entries", len(c.entries)), zap.Int("changed", len(changed)))
	c.changed = make(map[string]struct{})
	return nil
}
