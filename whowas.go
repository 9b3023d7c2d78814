// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package ircd

import (
	"sync"
	"time"
)

// WhowasEntry is one historical record of a nickname that has since quit,
// kept for the WHOWAS command.
type WhowasEntry struct {
	Nick    string
	Ident   string
	Host    string
	Real    string
	Server  string
	QuitAt  time.Time
}

// WhowasCache is a per-nick bounded ring of WhowasEntry, capped at Cap
// entries per nickname (SPEC_FULL.md §4.O; default 10), compacted on the
// 3600s housekeeping tick by age rather than count.
type WhowasCache struct {
	mu      sync.RWMutex
	cap     int
	maxAge  time.Duration
	entries map[string][]*WhowasEntry // keyed by case-folded nick
}

// NewWhowasCache returns a cache holding at most cap entries per nickname,
// expiring entries older than maxAge.
func NewWhowasCache(cap int, maxAge time.Duration) *WhowasCache {
	if cap <= 0 {
		cap = 10
	}
	return &WhowasCache{cap: cap, maxAge: maxAge, entries: make(map[string][]*WhowasEntry)}
}

// Record appends a new entry for a disconnecting user, trimming
// the oldest entry for that nick if the cap is exceeded.
func (c *WhowasCache) Record(e *WhowasEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := ToRFC1459(e.Nick)
	list := append(c.entries[key], e)
	if len(list) > c.cap {
		list = list[len(list)-c.cap:]
	}
	c.entries[key] = list
}

// Lookup returns the recorded history for nick, most recent last.
func (c *WhowasCache) Lookup(nick string) []*WhowasEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	list := c.entries[ToRFC1459(nick)]
	out := make([]*WhowasEntry, len(list))
	copy(out, list)
	return out
}

// Compact drops entries older than maxAge (and any nick left with none),
// called from the 3600s tier of the timer wheel.
func (c *WhowasCache) Compact(now time.Time) {
	if c.maxAge <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for key, list := range c.entries {
		kept := list[:0]
		for _, e := range list {
			if now.Sub(e.QuitAt) <= c.maxAge {
				kept = append(kept, e)
			}
		}
		if len(kept) == 0 {
			delete(c.entries, key)
			continue
		}
		c.entries[key] = kept
	}
}
