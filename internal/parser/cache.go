package parser

import "github.com/deploymenttheory/go-etl-bridge/internal/workflow"

// Cache holds parsed documents keyed by canonical absolute path. Entries are
// only dropped by Clear; file modification is never checked. A Cache is not
// safe for concurrent use. A nil *Cache is valid and never stores anything.
type Cache struct {
	entries map[string]*workflow.Document
	hits    int
	misses  int
}

// NewCache creates an empty cache
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*workflow.Document)}
}

// Get returns the cached document for key when it was parsed with schema
func (c *Cache) Get(key string, schema workflow.Schema) (*workflow.Document, bool) {
	if c == nil {
		return nil, false
	}
	doc, ok := c.entries[key]
	if !ok || doc.Schema != schema {
		c.misses++
		return nil, false
	}
	c.hits++
	return doc, true
}

// Put stores doc under key
func (c *Cache) Put(key string, doc *workflow.Document) {
	if c == nil {
		return
	}
	c.entries[key] = doc
}

// Clear removes every entry
func (c *Cache) Clear() {
	if c == nil {
		return
	}
	clear(c.entries)
}

// Len returns the number of cached documents
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Stats returns the hit and miss counters
func (c *Cache) Stats() (hits, misses int) {
	if c == nil {
		return 0, 0
	}
	return c.hits, c.misses
}
