package domain

// Cache memoizes the two dict snapshots of an item: the raw projection
// and the resolved projection. Both slots are gated by the settings
// cache_enabled flag, so disabling caching turns every call into a miss
// without touching the items.
type Cache struct {
	settings Settings
	raw      map[string]any
	resolved map[string]any
	hits     uint64
}

func newCache(settings Settings) *Cache {
	return &Cache{settings: settings}
}

// GetDict returns the memoized snapshot for the requested mode, or nil on
// a miss or while caching is disabled.
func (c *Cache) GetDict(resolved bool) map[string]any {
	if c.settings == nil || !c.settings.CacheEnabled() {
		return nil
	}
	var d map[string]any
	if resolved {
		d = c.resolved
	} else {
		d = c.raw
	}
	if d != nil {
		c.hits++
	}
	return d
}

// SetDict stores a snapshot for the requested mode.
func (c *Cache) SetDict(d map[string]any, resolved bool) {
	if c.settings == nil || !c.settings.CacheEnabled() {
		return
	}
	if resolved {
		c.resolved = d
	} else {
		c.raw = d
	}
}

// CleanResolved drops only the resolved snapshot. Used when an ancestor's
// inheritable attribute changed: the raw values of this item are still
// valid, what they resolve to is not.
func (c *Cache) CleanResolved() {
	c.resolved = nil
}

// Clean drops both snapshots.
func (c *Cache) Clean() {
	c.raw = nil
	c.resolved = nil
}

// Hits exposes the cache-hit count for instrumentation and tests.
func (c *Cache) Hits() uint64 {
	return c.hits
}
