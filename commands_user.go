// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package ircd

import (
	"strconv"
	"strings"
	"time"
)

// registerBuiltinCommands wires every built-in command handler into d. A
// module-contributed command follows the same Register call with a
// non-empty owning module name (see module.go's Loader path).
func registerBuiltinCommands(d *Dispatcher) {
	d.Register(NICK, 1, false, false, "", handleNick)
	d.Register(USER, 4, false, false, "", handleUser)
	d.Register(PASS, 1, false, false, "", handlePass)
	d.Register(PING, 1, false, false, "", handlePing)
	d.Register(PONG, 0, false, false, "", handlePong)
	d.Register(QUIT, 0, false, false, "", handleQuit)

	d.Register(PRIVMSG, 1, true, false, "", handlePrivmsg)
	d.Register(NOTICE, 1, true, false, "", handleNotice)

	d.Register(JOIN, 1, true, false, "", handleJoin)
	d.Register(PART, 1, true, false, "", handlePart)
	d.Register(KICK, 2, true, false, "", handleKick)
	d.Register(TOPIC, 1, true, false, "", handleTopic)
	d.Register(MODE, 1, true, false, "", handleMode)

	d.Register(WHO, 0, true, false, "", handleWho)
	d.Register(WHOIS, 1, true, false, "", handleWhois)
	d.Register(WHOWAS, 1, true, false, "", handleWhowas)
	d.Register(AWAY, 0, true, false, "", handleAway)
	d.Register(OPER, 2, true, false, "", handleOper)

	d.Register(LOADMODULE, 1, true, true, "", handleLoadModule)
	d.Register(UNLOADMODULE, 1, true, true, "", handleUnloadModule)
	d.Register(REHASH, 0, true, true, "", handleRehash)
	d.Register(LUSERS, 0, true, false, "", handleLusers)
	d.Register(STATS, 0, true, false, "", handleStats)
}

func handlePass(s *Server, u *User, e *Event) {
	// Accepted pre-registration but otherwise a no-op: no link passwords
	// are modeled, only the oper credential list in Config.
}

func handleNick(s *Server, u *User, e *Event) {
	nick := e.Params[0]
	if !IsValidNickLen(nick, s.Config.NickLen) {
		u.Send(&Event{Command: ERR_ERRONEUSNICKNAME, Params: []string{"*", nick}, Trailing: "Erroneous nickname"})
		return
	}
	if existing := s.Users.FindByNick(nick); existing != nil && existing != u {
		u.Send(&Event{Command: ERR_NICKNAMEINUSE, Params: []string{"*", nick}, Trailing: "Nickname is already in use"})
		return
	}
	if x := s.XLines.Match(XLineQLine, nick); x != nil {
		u.Send(&Event{Command: ERR_ERRONEUSNICKNAME, Params: []string{"*", nick}, Trailing: "Nickname is reserved: " + x.Reason})
		return
	}

	oldNick := u.Nick
	wasRegistered := u.Registered
	s.Users.Rename(u, nick)

	if wasRegistered {
		u.Send(&Event{Source: &Source{Name: oldNick, Ident: u.Ident, Host: u.Host}, Command: NICK, Trailing: nick})
		s.Modules.fanOut(HookUserNickChange, func(m Module) {
			if h, ok := m.(UserNickChangeHook); ok {
				h.OnUserNickChange(s, u, oldNick)
			}
		})
	}

	completeRegistration(s, u)
}

func handleUser(s *Server, u *User, e *Event) {
	if u.Registered {
		return
	}
	u.Ident = e.Params[0]
	u.Real = e.Trailing
	completeRegistration(s, u)
}

// completeRegistration finishes registering u once both NICK and USER have
// been seen, sending the welcome burst and firing OnUserConnect.
func completeRegistration(s *Server, u *User) {
	if u.Registered || u.Nick == "" || u.Ident == "" {
		return
	}
	u.Registered = true

	u.Send(&Event{Command: RPL_WELCOME, Params: []string{u.Nick}, Trailing: "Welcome to " + s.Config.NetworkName + ", " + u.Mask()})
	u.Send(&Event{Command: RPL_YOURHOST, Params: []string{u.Nick}, Trailing: "Your host is " + s.Config.ServerName})

	tokens := BuildISupport(s)
	for _, line := range ISupportLines(tokens, 13) {
		params := append([]string{u.Nick}, strings.Fields(line)...)
		u.Send(&Event{Command: RPL_ISUPPORT, Params: params, Trailing: "are supported by this server"})
	}

	s.Modules.fanOut(HookUserConnect, func(m Module) {
		if h, ok := m.(UserConnectHook); ok {
			h.OnUserConnect(s, u)
		}
	})
}

func handlePing(s *Server, u *User, e *Event) {
	u.Send(&Event{Command: PONG, Params: []string{s.Config.ServerName}, Trailing: e.Last()})
}

func handlePong(s *Server, u *User, e *Event) {
	// Keepalive only; LastActive is already bumped by the read loop.
}

func handleQuit(s *Server, u *User, e *Event) {
	reason := e.Trailing
	if reason == "" {
		reason = "Client Quit"
	}
	disconnectUser(s, u, reason)
}

// disconnectUser performs the full teardown for a departing user: part
// every channel, fire OnUserQuit, record a WHOWAS entry, and deregister.
func disconnectUser(s *Server, u *User, reason string) {
	for _, name := range channelNamesOf(u) {
		if ch := s.Channels.Find(name); ch != nil {
			ch.removeUser(u.Nick)
			ch.WriteAllExceptSender(u, 0, &Event{Source: u.Source(), Command: QUIT, Trailing: reason})
			s.Channels.DestroyIfEmpty(ch)
		}
	}

	s.Modules.fanOut(HookUserQuit, func(m Module) {
		if h, ok := m.(UserQuitHook); ok {
			h.OnUserQuit(s, u, reason)
		}
	})

	if u.Nick != "" {
		server := s.Config.ServerName
		s.Whowas.Record(&WhowasEntry{Nick: u.Nick, Ident: u.Ident, Host: u.Host, Real: u.Real, Server: server, QuitAt: time.Now()})
	}

	s.Users.Remove(u)
}

func channelNamesOf(u *User) []string {
	var out []string
	for item := range u.ChannelList.IterBuffered() {
		out = append(out, item.Key)
	}
	return out
}

func handleWho(s *Server, u *User, e *Event) {
	var mask string
	if len(e.Params) > 0 {
		mask = e.Params[0]
	}
	s.Users.ForEach(func(target *User) {
		if mask != "" && !strings.EqualFold(target.Nick, mask) && !globMatch(mask, target.Host) {
			return
		}
		u.Send(&Event{Command: RPL_WHOREPLY, Params: []string{u.Nick, "*", target.Ident, target.Host, s.Config.ServerName, target.Nick, "H"}, Trailing: "0 " + target.Real})
	})
	u.Send(&Event{Command: RPL_ENDOFWHO, Params: []string{u.Nick, mask}, Trailing: "End of /WHO list."})
}

func handleWhois(s *Server, u *User, e *Event) {
	target := s.Users.FindByNick(e.Params[0])
	if target == nil {
		u.Send(&Event{Command: ERR_NOSUCHNICK, Params: []string{u.Nick, e.Params[0]}, Trailing: "No such nick/channel"})
		return
	}
	u.Send(&Event{Command: RPL_WHOISUSER, Params: []string{u.Nick, target.Nick, target.Ident, target.Host, "*"}, Trailing: target.Real})
	u.Send(&Event{Command: RPL_WHOISSERVER, Params: []string{u.Nick, target.Nick, s.Config.ServerName}, Trailing: "server info"})
	if target.Away != "" {
		u.Send(&Event{Command: RPL_AWAY, Params: []string{u.Nick, target.Nick}, Trailing: target.Away})
	}
	u.Send(&Event{Command: RPL_WHOISIDLE, Params: []string{u.Nick, target.Nick, strconv.Itoa(int(target.Idle().Seconds())), "0"}, Trailing: "seconds idle, signon time"})
	u.Send(&Event{Command: RPL_ENDOFWHOIS, Params: []string{u.Nick, target.Nick}, Trailing: "End of /WHOIS list."})
}

func handleWhowas(s *Server, u *User, e *Event) {
	entries := s.Whowas.Lookup(e.Params[0])
	if len(entries) == 0 {
		u.Send(&Event{Command: ERR_WASNOSUCHNICK, Params: []string{u.Nick, e.Params[0]}, Trailing: "There was no such nickname"})
		return
	}
	for _, entry := range entries {
		u.Send(&Event{Command: RPL_WHOWASUSER, Params: []string{u.Nick, entry.Nick, entry.Ident, entry.Host, "*"}, Trailing: entry.Real})
	}
	u.Send(&Event{Command: RPL_ENDOFWHOWAS, Params: []string{u.Nick, e.Params[0]}, Trailing: "End of WHOWAS"})
}

func handleAway(s *Server, u *User, e *Event) {
	if e.Trailing == "" {
		u.Away = ""
		u.Send(&Event{Command: RPL_UNAWAY, Params: []string{u.Nick}, Trailing: "You are no longer marked as being away"})
		return
	}
	msg := e.Trailing
	if len(msg) > s.Config.AwayLen {
		msg = msg[:s.Config.AwayLen]
	}
	u.Away = msg
	u.Send(&Event{Command: RPL_NOWAWAY, Params: []string{u.Nick}, Trailing: "You have been marked as being away"})
}

func handleOper(s *Server, u *User, e *Event) {
	name, pass := e.Params[0], e.Params[1]
	for _, o := range s.Config.Opers {
		if o.Name != name {
			continue
		}
		if !checkOperPassword(o.PassHash, pass) {
			break
		}
		if o.Host != "" && !globMatch(o.Host, u.Host) {
			break
		}
		u.Oper = true
		u.Send(&Event{Command: RPL_YOUREOPER, Params: []string{u.Nick}, Trailing: "You are now an IRC operator"})
		return
	}
	u.Send(&Event{Command: ERR_PASSWDMISMATCH, Params: []string{u.Nick}, Trailing: "Password incorrect"})
}
