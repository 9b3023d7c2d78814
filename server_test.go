// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package ircd

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestServerUptime(t *testing.T) {
	s := newTestServer()
	time.Sleep(time.Millisecond)
	if s.Uptime() <= 0 {
		t.Fatalf("expected positive uptime")
	}
}

func TestServerRehashAppliesConfigAndFiresHook(t *testing.T) {
	s := newTestServer()

	var sawRehash bool
	s.Modules.Load(&rehashModule{fn: func() { sawRehash = true }})

	path := filepath.Join(t.TempDir(), "ircd.toml")
	if err := os.WriteFile(path, []byte(`network_name = "Rehashed"`), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := s.Rehash(path); err != nil {
		t.Fatalf("Rehash: %v", err)
	}
	if s.Config.NetworkName != "Rehashed" {
		t.Fatalf("expected config to be swapped in, got %q", s.Config.NetworkName)
	}
	if !sawRehash {
		t.Fatalf("expected OnRehash hook to fire")
	}
}

func TestServerRehashRejectsMissingFile(t *testing.T) {
	s := newTestServer()
	before := s.Config.NetworkName

	if err := s.Rehash(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatalf("expected error rehashing from a missing file")
	}
	if s.Config.NetworkName != before {
		t.Fatalf("expected config to be left untouched on a failed rehash")
	}
}

type rehashModule struct {
	fn func()
}

func (m *rehashModule) Name() string { return "rehash-test" }

func (m *rehashModule) OnRehash(s *Server) {
	m.fn()
}
