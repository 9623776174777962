// Package lru provides the scraper's URL dedupe set: a capacity-bounded
// cache with move-to-end-on-hit / evict-oldest-on-insert semantics,
// equivalent to the original's collections.OrderedDict-backed LRUCache.
package lru

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// Dedupe is a fixed-capacity set of seen keys with LRU eviction.
type Dedupe struct {
	cache *lru.Cache[string, struct{}]
}

// New creates a Dedupe set holding at most capacity keys.
func New(capacity int) (*Dedupe, error) {
	c, err := lru.New[string, struct{}](capacity)
	if err != nil {
		return nil, err
	}
	return &Dedupe{cache: c}, nil
}

// Seen reports whether key has been recorded before, refreshing its
// recency on a hit. On a miss it records key, evicting the least recently
// used entry first if the set is at capacity.
func (d *Dedupe) Seen(key string) bool {
	if _, ok := d.cache.Get(key); ok {
		return true
	}
	d.cache.Add(key, struct{}{})
	return false
}

// Len returns the number of keys currently held.
func (d *Dedupe) Len() int {
	return d.cache.Len()
}
