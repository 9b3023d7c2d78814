// Copyright 2016 Liam Stanley <me@liamstanley.io>. All rights reserved.
// Use of this source code is governed by the MIT license that can be
// found in the LICENSE file.

package ircd

import "testing"

func TestParseSource(t *testing.T) {
	tests := []struct {
		raw   string
		name  string
		ident string
		host  string
	}{
		{"irc.example.com", "irc.example.com", "", ""},
		{"nick!user@host", "nick", "user", "host"},
		{"nick!user", "nick", "user", ""},
		{"nick@host", "nick", "", "host"},
	}

	for _, tt := range tests {
		src := ParseSource(tt.raw)
		if src.Name != tt.name || src.Ident != tt.ident || src.Host != tt.host {
			t.Errorf("ParseSource(%q) = %+v, want {%q %q %q}", tt.raw, src, tt.name, tt.ident, tt.host)
		}

		if src.String() != tt.raw {
			t.Errorf("Source.String() = %q, want %q", src.String(), tt.raw)
		}

		if src.Len() != len(tt.raw) {
			t.Errorf("Source.Len() = %d, want %d", src.Len(), len(tt.raw))
		}
	}
}

func TestSourceIsHostmask(t *testing.T) {
	if !ParseSource("nick!user@host").IsHostmask() {
		t.Error("expected hostmask source to report IsHostmask")
	}

	if !ParseSource("irc.example.com").IsServer() {
		t.Error("expected bare server name to report IsServer")
	}
}
