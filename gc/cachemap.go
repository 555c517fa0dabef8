// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package gc

import "github.com/spezifisch/artgc/bitmap"

// CacheEntry pairs a cache key with the bitmap stored under it.
type CacheEntry struct {
	Key    string
	Bitmap *bitmap.Bitmap
}

// CacheMap is a keyed bitmap store that remembers the order in which its
// keys were last used. Get and Set both count as a use.
//
// A bitmap is stored under at most one key. The reverse index makes
// lookups by bitmap identity O(1).
type CacheMap struct {
	entries map[string]*CacheEntry
	index   map[*bitmap.Bitmap]string
	keys    Queue[string]
}

func NewCacheMap() *CacheMap {
	return &CacheMap{
		entries: make(map[string]*CacheEntry),
		index:   make(map[*bitmap.Bitmap]string),
	}
}

// Get returns the bitmap stored under key and marks key as most recently
// used. A missing key returns nil and changes nothing.
func (c *CacheMap) Get(key string) *bitmap.Bitmap {
	entry, ok := c.entries[key]
	if !ok {
		return nil
	}
	c.keys.Push(key)
	return entry.Bitmap
}

// Set stores b under key and marks key as most recently used.
//
// A bitmap previously stored under key loses its cache association but is
// not freed; disposing of it is up to the caller. If b was stored under a
// different key, it moves to key.
func (c *CacheMap) Set(key string, b *bitmap.Bitmap) *CacheEntry {
	if b == nil {
		return nil
	}
	if oldKey, ok := c.index[b]; ok && oldKey != key {
		c.Unset(oldKey)
	}

	entry, ok := c.entries[key]
	if ok {
		if entry.Bitmap != b {
			delete(c.index, entry.Bitmap)
			entry.Bitmap = b
		}
	} else {
		entry = &CacheEntry{Key: key, Bitmap: b}
		c.entries[key] = entry
	}
	c.index[b] = key
	c.keys.Push(key)
	return entry
}

// Unset forgets key without freeing its bitmap.
func (c *CacheMap) Unset(key string) {
	entry, ok := c.entries[key]
	if !ok {
		return
	}
	c.keys.Remove(key)
	delete(c.entries, key)
	delete(c.index, entry.Bitmap)
}

// RemoveItem evicts the entry holding b and frees b. It reports whether b
// was cached.
func (c *CacheMap) RemoveItem(b *bitmap.Bitmap) bool {
	key, ok := c.index[b]
	if !ok {
		return false
	}
	c.Unset(key)
	b.Free()
	return true
}

// Key returns the key b is stored under.
func (c *CacheMap) Key(b *bitmap.Bitmap) (string, bool) {
	key, ok := c.index[b]
	return key, ok
}

func (c *CacheMap) Contains(b *bitmap.Bitmap) bool {
	_, ok := c.index[b]
	return ok
}

func (c *CacheMap) Len() int {
	return len(c.entries)
}

// Keys returns the cache keys, least recently used first.
func (c *CacheMap) Keys() []string {
	return c.keys.Items()
}

// Items returns the cached bitmaps, least recently used first.
func (c *CacheMap) Items() []*bitmap.Bitmap {
	keys := c.keys.Items()
	out := make([]*bitmap.Bitmap, 0, len(keys))
	for _, key := range keys {
		out = append(out, c.entries[key].Bitmap)
	}
	return out
}
