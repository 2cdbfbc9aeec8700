// Package keycache implements the (magic||label) -> unwrapped-key map
// populated once a database key becomes known and read thereafter.
package keycache

import "fmt"

// Cache maps a 24-byte (magic||label) key-blob identifier to its
// unwrapped 24-byte Triple-DES key. Writes happen only during the
// one-shot population pass that follows DB-key recovery; it is otherwise
// read-only.
type Cache struct {
	entries map[[24]byte][]byte
}

// New returns an empty Cache.
func New() *Cache {
	return &Cache{entries: make(map[[24]byte][]byte)}
}

// Put inserts key under id. Put must never be called twice for the same
// id: the cache is populated exactly once per instance.
func (c *Cache) Put(id [24]byte, key []byte) error {
	if _, exists := c.entries[id]; exists {
		return fmt.Errorf("key cache entry already populated for id %x", id)
	}
	c.entries[id] = key
	return nil
}

// Get looks up the unwrapped key for id. The second return value is
// false on a cache miss, which the caller reports as a locked record.
func (c *Cache) Get(id [24]byte) ([]byte, bool) {
	key, ok := c.entries[id]
	return key, ok
}

// Len returns the number of populated entries.
func (c *Cache) Len() int {
	return len(c.entries)
}
