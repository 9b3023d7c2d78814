// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package ircd

import "testing"

func nextOutbound(t *testing.T, u *User) *Event {
	t.Helper()
	select {
	case e := <-u.outbox:
		return e
	default:
		t.Fatalf("expected an event in the outbox, got none")
		return nil
	}
}

func TestDispatchUnknownCommand(t *testing.T) {
	s := newTestServer()
	u := NewUser(1, nil)
	u.Registered = true

	s.Dispatcher.Dispatch(s, u, []byte("FROBNICATE foo\r\n"))

	got := nextOutbound(t, u)
	if got.Command != ERR_UNKNOWNCOMMAND {
		t.Fatalf("expected ERR_UNKNOWNCOMMAND, got %v", got.Command)
	}
}

func TestDispatchRequiresRegistration(t *testing.T) {
	s := newTestServer()
	u := NewUser(1, nil)

	called := false
	s.Dispatcher.Register("WHOAMI", 0, true, false, "", func(s *Server, u *User, e *Event) {
		called = true
	})

	s.Dispatcher.Dispatch(s, u, []byte("WHOAMI\r\n"))
	if called {
		t.Fatalf("expected handler not to run before registration")
	}

	got := nextOutbound(t, u)
	if got.Command != ERR_NOTREGISTERED {
		t.Fatalf("expected ERR_NOTREGISTERED, got %v", got.Command)
	}
}

func TestDispatchRequiresOper(t *testing.T) {
	s := newTestServer()
	u := NewUser(1, nil)
	u.Registered = true
	u.Nick = "dan"

	s.Dispatcher.Register("DIE", 0, true, true, "", func(s *Server, u *User, e *Event) {
		t.Fatalf("handler should not run for a non-oper")
	})

	s.Dispatcher.Dispatch(s, u, []byte("DIE\r\n"))

	got := nextOutbound(t, u)
	if got.Command != ERR_NOPRIVILEGES {
		t.Fatalf("expected ERR_NOPRIVILEGES, got %v", got.Command)
	}
}

func TestDispatchMinParams(t *testing.T) {
	s := newTestServer()
	u := NewUser(1, nil)
	u.Registered = true
	u.Nick = "dan"

	s.Dispatcher.Register("KICK", 2, true, false, "", func(s *Server, u *User, e *Event) {
		t.Fatalf("handler should not run with too few params")
	})

	s.Dispatcher.Dispatch(s, u, []byte("KICK #test\r\n"))

	got := nextOutbound(t, u)
	if got.Command != ERR_NEEDMOREPARAMS {
		t.Fatalf("expected ERR_NEEDMOREPARAMS, got %v", got.Command)
	}
}

func TestDispatchRunsRegisteredHandler(t *testing.T) {
	s := newTestServer()
	u := NewUser(1, nil)
	u.Registered = true

	var gotCmd string
	s.Dispatcher.Register("PING", 0, true, false, "", func(s *Server, u *User, e *Event) {
		gotCmd = e.Command
	})

	s.Dispatcher.Dispatch(s, u, []byte("PING :hi\r\n"))
	if gotCmd != "PING" {
		t.Fatalf("expected handler to run, got gotCmd=%q", gotCmd)
	}
}

func TestDropModuleCommands(t *testing.T) {
	d := NewDispatcher()
	d.Register("FOO", 0, false, false, "mymod", func(s *Server, u *User, e *Event) {})
	d.Register("BAR", 0, false, false, "", func(s *Server, u *User, e *Event) {})

	d.dropModuleCommands("mymod")

	d.mu.RLock()
	_, fooOK := d.commands["FOO"]
	_, barOK := d.commands["BAR"]
	d.mu.RUnlock()

	if fooOK {
		t.Fatalf("expected module-owned command to be dropped")
	}
	if !barOK {
		t.Fatalf("expected built-in command to survive")
	}
}

func TestDispatchPanicRecovery(t *testing.T) {
	s := newTestServer()
	u := NewUser(1, nil)
	u.Registered = true

	s.Dispatcher.Register("BOOM", 0, true, false, "", func(s *Server, u *User, e *Event) {
		panic("boom")
	})

	// Must not panic the test/loop.
	s.Dispatcher.Dispatch(s, u, []byte("BOOM\r\n"))
}
