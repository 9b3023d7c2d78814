// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package ircd

import (
	"strings"
)

// handleNotice and handlePrivmsg share one implementation distinguished
// only by which hook pair and command name they use, mirroring how the
// reference daemon's NOTICE and PRIVMSG commands are two thin instances of
// the same control flow.
func handleNotice(s *Server, u *User, e *Event) {
	dispatchMessage(s, u, e, NOTICE, HookUserPreNotice, HookUserNotice)
}

func handlePrivmsg(s *Server, u *User, e *Event) {
	dispatchMessage(s, u, e, PRIVMSG, HookUserPrePrivmsg, HookUserPrivmsg)
}

// dispatchMessage implements the normative multi-target, status-prefix,
// veto-before-delivery control flow for NOTICE/PRIVMSG.
func dispatchMessage(s *Server, u *User, e *Event, cmd string, preHook, postHook Hook) {
	if len(e.Params) < 1 {
		u.Send(&Event{Command: ERR_NEEDMOREPARAMS, Params: []string{u.Nick, cmd}, Trailing: "Not enough parameters"})
		return
	}
	text := e.Trailing
	targets := strings.Split(e.Params[0], ",")
	if len(targets) > s.Config.MaxTargets {
		targets = targets[:s.Config.MaxTargets]
	}

	for _, target := range targets {
		dispatchOneTarget(s, u, cmd, target, text, preHook, postHook)
	}
}

func dispatchOneTarget(s *Server, u *User, cmd, target, text string, preHook, postHook Hook) {
	if strings.HasPrefix(target, "$") {
		dispatchServerMessage(s, u, cmd, target, text, preHook, postHook)
		return
	}

	name := target
	minRank := 0
	if len(name) > 0 {
		if r := rankOfPrefix(name[0]); r > 0 {
			minRank = r
			name = name[1:]
		}
	}

	if strings.HasPrefix(name, ChanTypes) {
		dispatchChannelMessage(s, u, cmd, name, minRank, text, preHook, postHook)
		return
	}

	dispatchUserMessage(s, u, cmd, name, text, preHook, postHook)
}

// dispatchServerMessage implements the "$<mask>" server-broadcast target:
// OPER-only, delivered only when mask glob-matches the local server name,
// and run through the same collector/fan-out hook pair as any other
// target so modules can veto or observe it uniformly.
func dispatchServerMessage(s *Server, u *User, cmd, target, text string, preHook, postHook Hook) {
	if !u.Oper {
		u.Send(&Event{Command: ERR_NOPRIVILEGES, Params: []string{u.Nick}, Trailing: "Permission Denied- You're not an IRC operator"})
		return
	}

	mask := strings.TrimPrefix(target, "$")
	if !globMatch(mask, s.Config.ServerName) {
		u.Send(&Event{Command: ERR_NOSUCHSERVER, Params: []string{u.Nick, target}, Trailing: "No such server"})
		return
	}

	kind := NoticeKindServer
	vetoed := s.Modules.collect(preHook, func(m Module) bool {
		if cmd == PRIVMSG {
			if h, ok := m.(UserPrePrivmsgHook); ok {
				return h.OnUserPrePrivmsg(s, u, target, kind, &text, 0)
			}
			return false
		}
		if h, ok := m.(UserPreNoticeHook); ok {
			return h.OnUserPreNotice(s, u, target, kind, &text, 0)
		}
		return false
	})
	if vetoed {
		return
	}
	if text == "" {
		u.Send(&Event{Command: ERR_NOTEXTTOSEND, Params: []string{u.Nick}, Trailing: "No text to send"})
		return
	}

	s.Users.ForEach(func(other *User) {
		other.Send(&Event{Source: u.Source(), Command: cmd, Params: []string{target}, Trailing: text})
	})

	s.Modules.fanOut(postHook, func(m Module) {
		if cmd == PRIVMSG {
			if h, ok := m.(UserPrivmsgHook); ok {
				h.OnUserPrivmsg(s, u, target, kind, text, 0)
			}
			return
		}
		if h, ok := m.(UserNoticeHook); ok {
			h.OnUserNotice(s, u, target, kind, text, 0)
		}
	})
}

func dispatchChannelMessage(s *Server, u *User, cmd, chanName string, minRank int, text string, preHook, postHook Hook) {
	ch := s.Channels.Find(chanName)
	if ch == nil {
		u.Send(&Event{Command: ERR_NOSUCHCHANNEL, Params: []string{u.Nick, chanName}, Trailing: "No such channel"})
		return
	}

	if ch.Modes.Has('n') && !ch.UserIn(u.Nick) {
		u.Send(&Event{Command: ERR_CANNOTSENDTOCHAN, Params: []string{u.Nick, chanName}, Trailing: "Cannot send to channel"})
		return
	}
	if ch.Modes.Has('m') && ch.StatusOf(u.Nick) == 0 && !u.Oper {
		u.Send(&Event{Command: ERR_CANNOTSENDTOCHAN, Params: []string{u.Nick, chanName}, Trailing: "Cannot send to channel"})
		return
	}

	kind := NoticeKindChannel
	vetoed := s.Modules.collect(preHook, func(m Module) bool {
		if cmd == PRIVMSG {
			if h, ok := m.(UserPrePrivmsgHook); ok {
				return h.OnUserPrePrivmsg(s, u, chanName, kind, &text, minRank)
			}
			return false
		}
		if h, ok := m.(UserPreNoticeHook); ok {
			return h.OnUserPreNotice(s, u, chanName, kind, &text, minRank)
		}
		return false
	})
	if vetoed {
		return
	}
	if text == "" {
		u.Send(&Event{Command: ERR_NOTEXTTOSEND, Params: []string{u.Nick}, Trailing: "No text to send"})
		return
	}

	ch.WriteAllExceptSender(u, minRank, &Event{Source: u.Source(), Command: cmd, Params: []string{chanName}, Trailing: text})

	s.Modules.fanOut(postHook, func(m Module) {
		if cmd == PRIVMSG {
			if h, ok := m.(UserPrivmsgHook); ok {
				h.OnUserPrivmsg(s, u, chanName, kind, text, minRank)
			}
			return
		}
		if h, ok := m.(UserNoticeHook); ok {
			h.OnUserNotice(s, u, chanName, kind, text, minRank)
		}
	})
}

func dispatchUserMessage(s *Server, u *User, cmd, nick string, text string, preHook, postHook Hook) {
	target := s.Users.FindByNick(nick)
	if target == nil {
		u.Send(&Event{Command: ERR_NOSUCHNICK, Params: []string{u.Nick, nick}, Trailing: "No such nick/channel"})
		return
	}

	kind := NoticeKindUser
	vetoed := s.Modules.collect(preHook, func(m Module) bool {
		if cmd == PRIVMSG {
			if h, ok := m.(UserPrePrivmsgHook); ok {
				return h.OnUserPrePrivmsg(s, u, nick, kind, &text, 0)
			}
			return false
		}
		if h, ok := m.(UserPreNoticeHook); ok {
			return h.OnUserPreNotice(s, u, nick, kind, &text, 0)
		}
		return false
	})
	if vetoed {
		return
	}
	if text == "" {
		u.Send(&Event{Command: ERR_NOTEXTTOSEND, Params: []string{u.Nick}, Trailing: "No text to send"})
		return
	}

	target.Send(&Event{Source: u.Source(), Command: cmd, Params: []string{nick}, Trailing: text})

	s.Modules.fanOut(postHook, func(m Module) {
		if cmd == PRIVMSG {
			if h, ok := m.(UserPrivmsgHook); ok {
				h.OnUserPrivmsg(s, u, nick, kind, text, 0)
			}
			return
		}
		if h, ok := m.(UserNoticeHook); ok {
			h.OnUserNotice(s, u, nick, kind, text, 0)
		}
	})
}
