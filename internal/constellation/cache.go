package constellation

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/jonathan/raveliquar/internal/catalog"
)

// DefaultCacheSize bounds how many distinct canvas sizes are kept.
const DefaultCacheSize = 16

// Cache memoizes layouts of one immutable entry set by canvas size.
type Cache struct {
	entries []catalog.Entry
	layouts *lru.Cache[float64, Constellation]
}

// NewCache creates a cache over entries. size <= 0 uses DefaultCacheSize.
func NewCache(entries []catalog.Entry, size int) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	// lru.New only errors on non-positive size, guarded above.
	layouts, _ := lru.New[float64, Constellation](size)
	return &Cache{entries: entries, layouts: layouts}
}

// Layout returns the layout for size, computing it on a miss. Callers must
// treat the result as read-only; it is shared between requests.
func (c *Cache) Layout(size float64) Constellation {
	if size <= 0 {
		size = DefaultSize
	}
	if cached, ok := c.layouts.Get(size); ok {
		return cached
	}
	layout := Layout(c.entries, size)
	c.layouts.Add(size, layout)
	return layout
}

// Len reports how many layouts are cached.
func (c *Cache) Len() int {
	return c.layouts.Len()
}
