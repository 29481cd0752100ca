package imagegen

import "sync"

const VariantsPerKey = 5

// Cache keeps recent images per (prompt, style). Keys are evicted oldest
// inserted first once more than maxKeys are held.
type Cache struct {
	mu      sync.Mutex
	maxKeys int
	order   []string
	entries map[string][]string
}

func NewCache(maxKeys int) *Cache {
	if maxKeys <= 0 {
		maxKeys = 1
	}
	return &Cache{
		maxKeys: maxKeys,
		entries: make(map[string][]string),
	}
}

func cacheKey(prompt, style string) string {
	return prompt + "|||" + style
}

// Get returns a copy of the cached variants.
func (c *Cache) Get(prompt, style string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.entries[cacheKey(prompt, style)]...)
}

func (c *Cache) Put(prompt, style, image string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := cacheKey(prompt, style)
	variants, exists := c.entries[key]
	if !exists {
		c.order = append(c.order, key)
	}
	variants = append(variants, image)
	if len(variants) > VariantsPerKey {
		variants = variants[len(variants)-VariantsPerKey:]
	}
	c.entries[key] = variants
	for len(c.order) > c.maxKeys {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
