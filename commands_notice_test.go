// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package ircd

import "testing"

func newRegisteredUser(fd int, nick string) *User {
	u := NewUser(fd, nil)
	u.Nick = nick
	u.Ident = "u"
	u.Host = "h"
	u.Registered = true
	return u
}

func drainOutbound(u *User) (*Event, bool) {
	select {
	case e := <-u.outbox:
		return e, true
	default:
		return nil, false
	}
}

// TestNoticeChannelBroadcast is S1: a channel NOTICE reaches other members
// verbatim and never echoes back to the sender.
func TestNoticeChannelBroadcast(t *testing.T) {
	s := newTestServer()
	alice := newRegisteredUser(1, "alice")
	bob := newRegisteredUser(2, "bob")
	ch, _ := s.Channels.GetOrCreate("#room", NewCModes(ModeDefaults, DefaultPrefixes))
	ch.addUser(alice, 0)
	ch.addUser(bob, 0)

	dispatchMessage(s, alice, &Event{Params: []string{"#room"}, Trailing: "hi"}, NOTICE, HookUserPreNotice, HookUserNotice)

	got, ok := drainOutbound(bob)
	if !ok || got.Command != NOTICE || got.Trailing != "hi" || got.Params[0] != "#room" {
		t.Fatalf("expected bob to receive the channel NOTICE, got %+v ok=%v", got, ok)
	}
	if _, ok := drainOutbound(alice); ok {
		t.Fatalf("expected alice (sender) to receive nothing")
	}
}

// TestNoticeStatusPrefixBroadcast is S2: a "@#room" target only reaches
// members whose rank meets the prefix's threshold, never the sender.
func TestNoticeStatusPrefixBroadcast(t *testing.T) {
	s := newTestServer()
	alice := newRegisteredUser(1, "alice")
	bob := newRegisteredUser(2, "bob")
	carol := newRegisteredUser(3, "carol")
	dave := newRegisteredUser(4, "dave")
	ch, _ := s.Channels.GetOrCreate("#room", NewCModes(ModeDefaults, DefaultPrefixes))
	ch.addUser(alice, rankOf('o'))
	ch.addUser(bob, rankOf('v'))
	ch.addUser(carol, 0)
	ch.addUser(dave, rankOf('o'))

	dispatchMessage(s, alice, &Event{Params: []string{"@#room"}, Trailing: "ops"}, NOTICE, HookUserPreNotice, HookUserNotice)

	if _, ok := drainOutbound(bob); ok {
		t.Fatalf("expected bob (voice) not to receive an op-only status NOTICE")
	}
	if _, ok := drainOutbound(carol); ok {
		t.Fatalf("expected carol (none) not to receive an op-only status NOTICE")
	}
	if got, ok := drainOutbound(dave); !ok || got.Trailing != "ops" {
		t.Fatalf("expected dave (op) to receive the status NOTICE, got %+v ok=%v", got, ok)
	}
}

// TestNoticeServerMask is S3: an oper's "$mask" NOTICE reaches every local
// user (subject to glob-matching the server name) and touches no channel.
func TestNoticeServerMask(t *testing.T) {
	s := newTestServer()
	s.Config.ServerName = "irc.example.net"
	alice := newRegisteredUser(1, "alice")
	alice.Oper = true
	bob := newRegisteredUser(2, "bob")
	s.Users.Add(alice)
	s.Users.Add(bob)

	dispatchMessage(s, alice, &Event{Params: []string{"$*.example.net"}, Trailing: "maint"}, NOTICE, HookUserPreNotice, HookUserNotice)

	got, ok := drainOutbound(bob)
	if !ok || got.Trailing != "maint" {
		t.Fatalf("expected bob to receive the server-mask NOTICE, got %+v ok=%v", got, ok)
	}
}

// TestNoticeServerMaskRequiresOper covers the oper-only gate on the "$mask"
// branch.
func TestNoticeServerMaskRequiresOper(t *testing.T) {
	s := newTestServer()
	s.Config.ServerName = "irc.example.net"
	alice := newRegisteredUser(1, "alice")

	dispatchMessage(s, alice, &Event{Params: []string{"$*.example.net"}, Trailing: "maint"}, NOTICE, HookUserPreNotice, HookUserNotice)

	got, ok := drainOutbound(alice)
	if !ok || got.Command != ERR_NOPRIVILEGES {
		t.Fatalf("expected ERR_NOPRIVILEGES for a non-oper $mask NOTICE, got %+v ok=%v", got, ok)
	}
}

func TestNoticeServerMaskRejectsNonMatchingMask(t *testing.T) {
	s := newTestServer()
	s.Config.ServerName = "irc.example.net"
	alice := newRegisteredUser(1, "alice")
	alice.Oper = true

	dispatchMessage(s, alice, &Event{Params: []string{"$*.other.net"}, Trailing: "maint"}, NOTICE, HookUserPreNotice, HookUserNotice)

	got, ok := drainOutbound(alice)
	if !ok || got.Command != ERR_NOSUCHSERVER {
		t.Fatalf("expected ERR_NOSUCHSERVER for a non-matching mask, got %+v ok=%v", got, ok)
	}
}

type vetoModule struct {
	blockedText string
	notified    bool
}

func (m *vetoModule) Name() string { return "veto-test" }

func (m *vetoModule) OnUserPreNotice(s *Server, sender *User, target string, kind NoticeKind, text *string, status int) bool {
	return *text == m.blockedText
}

func (m *vetoModule) OnUserNotice(s *Server, sender *User, target string, kind NoticeKind, text string, status int) {
	m.notified = true
}

// TestNoticeHookVeto is S4: a collector veto suppresses delivery and the
// post-delivery fan-out both.
func TestNoticeHookVeto(t *testing.T) {
	s := newTestServer()
	alice := newRegisteredUser(1, "alice")
	bob := newRegisteredUser(2, "bob")
	s.Users.Add(alice)
	s.Users.Add(bob)

	mod := &vetoModule{blockedText: "blocked"}
	if err := s.Modules.Load(mod); err != nil {
		t.Fatalf("Load: %v", err)
	}

	dispatchMessage(s, alice, &Event{Params: []string{"bob"}, Trailing: "blocked"}, NOTICE, HookUserPreNotice, HookUserNotice)

	if _, ok := drainOutbound(bob); ok {
		t.Fatalf("expected bob to receive nothing after a veto")
	}
	if mod.notified {
		t.Fatalf("expected OnUserNotice not to fire after a veto")
	}
}

type rewriteModule struct {
	from, to string
}

func (m *rewriteModule) Name() string { return "rewrite-test" }

func (m *rewriteModule) OnUserPreNotice(s *Server, sender *User, target string, kind NoticeKind, text *string, status int) bool {
	if *text == m.from {
		*text = m.to
	}
	return false
}

// TestNoticeHookRewrite is S5: a collector hook may rewrite the text in
// place and the rewritten text is what gets delivered.
func TestNoticeHookRewrite(t *testing.T) {
	s := newTestServer()
	alice := newRegisteredUser(1, "alice")
	bob := newRegisteredUser(2, "bob")
	ch, _ := s.Channels.GetOrCreate("#room", NewCModes(ModeDefaults, DefaultPrefixes))
	ch.addUser(alice, 0)
	ch.addUser(bob, 0)

	if err := s.Modules.Load(&rewriteModule{from: "hi", to: "[mod] hi"}); err != nil {
		t.Fatalf("Load: %v", err)
	}

	dispatchMessage(s, alice, &Event{Params: []string{"#room"}, Trailing: "hi"}, NOTICE, HookUserPreNotice, HookUserNotice)

	got, ok := drainOutbound(bob)
	if !ok || got.Trailing != "[mod] hi" {
		t.Fatalf("expected bob to see the rewritten text, got %+v ok=%v", got, ok)
	}
}

// TestNoticeRewrittenToEmptyIsRejected is testable property 10: a hook
// rewriting text down to "" results in 412 and no delivery.
func TestNoticeRewrittenToEmptyIsRejected(t *testing.T) {
	s := newTestServer()
	alice := newRegisteredUser(1, "alice")
	bob := newRegisteredUser(2, "bob")
	s.Users.Add(alice)
	s.Users.Add(bob)

	if err := s.Modules.Load(&rewriteModule{from: "hi", to: ""}); err != nil {
		t.Fatalf("Load: %v", err)
	}

	dispatchMessage(s, alice, &Event{Params: []string{"bob"}, Trailing: "hi"}, NOTICE, HookUserPreNotice, HookUserNotice)

	if _, ok := drainOutbound(bob); ok {
		t.Fatalf("expected bob to receive nothing when text is rewritten to empty")
	}
	got, ok := drainOutbound(alice)
	if !ok || got.Command != ERR_NOTEXTTOSEND {
		t.Fatalf("expected ERR_NOTEXTTOSEND, got %+v ok=%v", got, ok)
	}
}

// TestNoticeChannelRejectsNoExternalMessages is testable property 8.
func TestNoticeChannelRejectsNoExternalMessages(t *testing.T) {
	s := newTestServer()
	alice := newRegisteredUser(1, "alice")
	modes := NewCModes(ModeDefaults, DefaultPrefixes)
	ch, _ := s.Channels.GetOrCreate("#room", modes)
	ch.Modes.apply(ch.Modes.parse("+n", nil))

	dispatchMessage(s, alice, &Event{Params: []string{"#room"}, Trailing: "hi"}, NOTICE, HookUserPreNotice, HookUserNotice)

	got, ok := drainOutbound(alice)
	if !ok || got.Command != ERR_CANNOTSENDTOCHAN {
		t.Fatalf("expected 404 for NOTICE to a +n channel from a non-member, got %+v ok=%v", got, ok)
	}
}

// TestNoticeModeratedChannelRejectsBelowVoice is testable property 9.
func TestNoticeModeratedChannelRejectsBelowVoice(t *testing.T) {
	s := newTestServer()
	alice := newRegisteredUser(1, "alice")
	modes := NewCModes(ModeDefaults, DefaultPrefixes)
	ch, _ := s.Channels.GetOrCreate("#room", modes)
	ch.addUser(alice, 0)
	ch.Modes.apply(ch.Modes.parse("+m", nil))

	dispatchMessage(s, alice, &Event{Params: []string{"#room"}, Trailing: "hi"}, NOTICE, HookUserPreNotice, HookUserNotice)

	got, ok := drainOutbound(alice)
	if !ok || got.Command != ERR_CANNOTSENDTOCHAN {
		t.Fatalf("expected 404 for NOTICE to a +m channel below voice, got %+v ok=%v", got, ok)
	}
}
