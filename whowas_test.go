// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package ircd

import (
	"testing"
	"time"
)

func TestWhowasCacheCap(t *testing.T) {
	c := NewWhowasCache(2, 0)
	now := time.Now()

	for i := 0; i < 3; i++ {
		c.Record(&WhowasEntry{Nick: "dan", Ident: "dan", Host: "example.com", QuitAt: now})
	}

	entries := c.Lookup("dan")
	if len(entries) != 2 {
		t.Fatalf("expected cap of 2 entries, got %d", len(entries))
	}
}

func TestWhowasCacheCompact(t *testing.T) {
	c := NewWhowasCache(10, time.Minute)
	c.Record(&WhowasEntry{Nick: "old", QuitAt: time.Now().Add(-time.Hour)})
	c.Record(&WhowasEntry{Nick: "new", QuitAt: time.Now()})

	c.Compact(time.Now())

	if len(c.Lookup("old")) != 0 {
		t.Fatalf("expected old entries to be compacted away")
	}
	if len(c.Lookup("new")) != 1 {
		t.Fatalf("expected recent entry to survive compaction")
	}
}
