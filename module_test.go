// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package ircd

import "testing"

type fakeModule struct {
	name string
	quit func(s *Server, u *User, reason string)
}

func (m *fakeModule) Name() string { return m.name }

func (m *fakeModule) OnUserQuit(s *Server, u *User, reason string) {
	if m.quit != nil {
		m.quit(s, u, reason)
	}
}

func newTestServer() *Server {
	return NewServer(defaultConfig())
}

func TestRegistryLoadUnload(t *testing.T) {
	s := newTestServer()

	m := &fakeModule{name: "test"}
	if err := s.Modules.Load(m); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Modules.Count() != 1 {
		t.Fatalf("expected 1 module loaded, got %d", s.Modules.Count())
	}

	if err := s.Modules.Load(m); err == nil {
		t.Fatalf("expected error loading duplicate module name")
	}

	if err := s.Modules.Unload("test"); err != nil {
		t.Fatalf("Unload: %v", err)
	}
	if s.Modules.Count() != 0 {
		t.Fatalf("expected 0 modules after unload, got %d", s.Modules.Count())
	}

	if err := s.Modules.Unload("test"); err == nil {
		t.Fatalf("expected error unloading missing module")
	}
}

func TestRegistryUnloadDuringIteration(t *testing.T) {
	s := newTestServer()

	var calledB bool
	a := &fakeModule{name: "a"}
	a.quit = func(s *Server, u *User, reason string) {
		_ = s.Modules.Unload("a")
	}
	b := &fakeModule{name: "b"}
	b.quit = func(s *Server, u *User, reason string) { calledB = true }

	if err := s.Modules.Load(a); err != nil {
		t.Fatalf("Load a: %v", err)
	}
	if err := s.Modules.Load(b); err != nil {
		t.Fatalf("Load b: %v", err)
	}

	s.Modules.fanOut(HookUserQuit, func(mod Module) {
		if h, ok := mod.(UserQuitHook); ok {
			h.OnUserQuit(s, nil, "test")
		}
	})

	if !calledB {
		t.Fatalf("expected module b to still run after a unloaded itself mid-iteration")
	}
	if s.Modules.Count() != 1 {
		t.Fatalf("expected module a to be fully removed after iteration, got %d modules", s.Modules.Count())
	}
}

type priorityModule struct {
	fakeModule
	hint  PriorityHint
	pivot string
}

func (m *priorityModule) Priority() (PriorityHint, string) { return m.hint, m.pivot }

func TestRegistryLoadAppliesPriorityHint(t *testing.T) {
	s := newTestServer()

	if err := s.Modules.Load(&fakeModule{name: "a"}); err != nil {
		t.Fatalf("Load a: %v", err)
	}
	if err := s.Modules.Load(&fakeModule{name: "b"}); err != nil {
		t.Fatalf("Load b: %v", err)
	}
	// c requests PriorityFirst at load time, via Load() itself -- not a
	// manual MoveFirst call after the fact.
	if err := s.Modules.Load(&priorityModule{fakeModule: fakeModule{name: "c"}, hint: PriorityFirst}); err != nil {
		t.Fatalf("Load c: %v", err)
	}

	names := s.Modules.Names()
	if names[0] != "c" {
		t.Fatalf("expected c to be placed first by its own PriorityModule hint, got %v", names)
	}

	// d requests PriorityAfter "a", also applied automatically by Load.
	if err := s.Modules.Load(&priorityModule{fakeModule: fakeModule{name: "d"}, hint: PriorityAfter, pivot: "a"}); err != nil {
		t.Fatalf("Load d: %v", err)
	}

	names = s.Modules.Names()
	var aIdx, dIdx int
	for i, n := range names {
		if n == "a" {
			aIdx = i
		}
		if n == "d" {
			dIdx = i
		}
	}
	if dIdx != aIdx+1 {
		t.Fatalf("expected d immediately after a, got %v", names)
	}
}

func TestRegistryMoveOrdering(t *testing.T) {
	s := newTestServer()

	for _, name := range []string{"a", "b", "c"} {
		if err := s.Modules.Load(&fakeModule{name: name}); err != nil {
			t.Fatalf("Load %s: %v", name, err)
		}
	}

	s.Modules.MoveFirst("c")
	names := s.Modules.Names()
	if names[0] != "c" {
		t.Fatalf("expected c first, got %v", names)
	}

	s.Modules.MoveAfter("a", "b")
	names = s.Modules.Names()
	var aIdx, bIdx int
	for i, n := range names {
		if n == "a" {
			aIdx = i
		}
		if n == "b" {
			bIdx = i
		}
	}
	if aIdx != bIdx+1 {
		t.Fatalf("expected a immediately after b, got %v", names)
	}
}
