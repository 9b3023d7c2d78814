// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package ircd

import "testing"

func TestCModesApply(t *testing.T) {
	cm := NewCModes(ModeDefaults, DefaultPrefixes)

	changes := cm.parse("+nt", nil)
	cm.apply(changes)

	if !cm.Has('n') || !cm.Has('t') {
		t.Fatalf("expected +n +t to be set, got %q", cm.String())
	}

	changes = cm.parse("-n", nil)
	cm.apply(changes)
	if cm.Has('n') {
		t.Fatalf("expected -n to clear n, got %q", cm.String())
	}
	if !cm.Has('t') {
		t.Fatalf("expected t to remain set")
	}
}

func TestCModesArgModes(t *testing.T) {
	cm := NewCModes(ModeDefaults, DefaultPrefixes)

	changes := cm.parse("+kl", []string{"secret", "10"})
	cm.apply(changes)

	if !cm.Has('k') || !cm.Has('l') {
		t.Fatalf("expected +k +l set, got %q", cm.String())
	}
}

func TestRankOfPrefix(t *testing.T) {
	tests := []struct {
		prefix byte
		want   int
	}{
		{'@', 3},
		{'+', 1},
		{'~', 5},
		{'x', 0},
	}
	for _, tt := range tests {
		if got := rankOfPrefix(tt.prefix); got != tt.want {
			t.Errorf("rankOfPrefix(%q) = %d, want %d", tt.prefix, got, tt.want)
		}
	}
}

func TestParsePrefixes(t *testing.T) {
	modes, prefixes := ParsePrefixes("(ov)@+")
	if modes != "ov" || prefixes != "@+" {
		t.Fatalf("got modes=%q prefixes=%q", modes, prefixes)
	}
}
