// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package ircd

import "strings"

func handleJoin(s *Server, u *User, e *Event) {
	names := strings.Split(e.Params[0], ",")
	if u.ChannelList.Count() >= s.Config.MaxChannels {
		u.Send(&Event{Command: ERR_NOSUCHCHANNEL, Params: []string{u.Nick, e.Params[0]}, Trailing: "You have joined too many channels"})
		return
	}

	for _, name := range names {
		if !IsValidChannel(name) {
			u.Send(&Event{Command: ERR_NOSUCHCHANNEL, Params: []string{u.Nick, name}, Trailing: "No such channel"})
			continue
		}

		modes := NewCModes(ModeDefaults, DefaultPrefixes)
		ch, created := s.Channels.GetOrCreate(name, modes)

		rank := 0
		if created {
			rank = rankOf('o')
		}
		ch.addUser(u, rank)

		join := &Event{Source: u.Source(), Command: JOIN, Params: []string{name}}
		ch.WriteAllExceptSender(u, 0, join)
		u.Send(join)

		sendNames(s, u, ch)

		if ch.Topic != "" {
			u.Send(&Event{Command: RPL_TOPIC, Params: []string{u.Nick, name}, Trailing: ch.Topic})
		} else {
			u.Send(&Event{Command: RPL_NOTOPIC, Params: []string{u.Nick, name}, Trailing: "No topic is set"})
		}

		s.Modules.fanOut(HookUserJoin, func(m Module) {
			if h, ok := m.(UserJoinHook); ok {
				h.OnUserJoin(s, u, ch)
			}
		})
	}
}

func sendNames(s *Server, u *User, ch *Channel) {
	var names []string
	for _, member := range ch.Members() {
		prefix := ""
		switch ch.StatusOf(member.Nick) {
		case 5:
			prefix = OwnerPrefix
		case 4:
			prefix = AdminPrefix
		case 3:
			prefix = OperatorPrefix
		case 2:
			prefix = HalfOperatorPrefix
		case 1:
			prefix = VoicePrefix
		}
		names = append(names, prefix+member.Nick)
	}
	u.Send(&Event{Command: RPL_NAMREPLY, Params: []string{u.Nick, "=", ch.Name}, Trailing: strings.Join(names, " ")})
	u.Send(&Event{Command: RPL_ENDOFNAMES, Params: []string{u.Nick, ch.Name}, Trailing: "End of /NAMES list."})
}

func handlePart(s *Server, u *User, e *Event) {
	names := strings.Split(e.Params[0], ",")
	reason := e.Trailing
	if reason == "" {
		reason = u.Nick
	}

	for _, name := range names {
		ch := s.Channels.Find(name)
		if ch == nil {
			u.Send(&Event{Command: ERR_NOSUCHCHANNEL, Params: []string{u.Nick, name}, Trailing: "No such channel"})
			continue
		}
		if !ch.UserIn(u.Nick) {
			u.Send(&Event{Command: ERR_NOTONCHANNEL, Params: []string{u.Nick, name}, Trailing: "You're not on that channel"})
			continue
		}

		part := &Event{Source: u.Source(), Command: PART, Params: []string{name}, Trailing: reason}
		ch.WriteAllExceptSender(u, 0, part)
		u.Send(part)

		ch.removeUser(u.Nick)
		u.leaveChannel(name)
		s.Channels.DestroyIfEmpty(ch)

		s.Modules.fanOut(HookUserPart, func(m Module) {
			if h, ok := m.(UserPartHook); ok {
				h.OnUserPart(s, u, ch, reason)
			}
		})
	}
}

func handleKick(s *Server, u *User, e *Event) {
	chanName, targetNick := e.Params[0], e.Params[1]
	reason := e.Trailing
	if reason == "" {
		reason = u.Nick
	}

	ch := s.Channels.Find(chanName)
	if ch == nil {
		u.Send(&Event{Command: ERR_NOSUCHCHANNEL, Params: []string{u.Nick, chanName}, Trailing: "No such channel"})
		return
	}
	if ch.StatusOf(u.Nick) < rankOf('o') && !u.Oper {
		u.Send(&Event{Command: ERR_CHANOPRIVSNEEDED, Params: []string{u.Nick, chanName}, Trailing: "You're not a channel operator"})
		return
	}
	target := s.Users.FindByNick(targetNick)
	if target == nil || !ch.UserIn(targetNick) {
		u.Send(&Event{Command: ERR_USERNOTINCHANNEL, Params: []string{u.Nick, targetNick, chanName}, Trailing: "They aren't on that channel"})
		return
	}

	kick := &Event{Source: u.Source(), Command: KICK, Params: []string{chanName, targetNick}, Trailing: reason}
	ch.WriteAllExceptSender(target, 0, kick)
	target.Send(kick)

	ch.removeUser(targetNick)
	target.leaveChannel(chanName)
	s.Channels.DestroyIfEmpty(ch)

	s.Modules.fanOut(HookUserKick, func(m Module) {
		if h, ok := m.(UserKickHook); ok {
			h.OnUserKick(s, u, ch, target, reason)
		}
	})
}

func handleTopic(s *Server, u *User, e *Event) {
	chanName := e.Params[0]
	ch := s.Channels.Find(chanName)
	if ch == nil {
		u.Send(&Event{Command: ERR_NOSUCHCHANNEL, Params: []string{u.Nick, chanName}, Trailing: "No such channel"})
		return
	}

	if len(e.Params) == 1 && !e.EmptyTrailing {
		if ch.Topic == "" {
			u.Send(&Event{Command: RPL_NOTOPIC, Params: []string{u.Nick, chanName}, Trailing: "No topic is set"})
			return
		}
		u.Send(&Event{Command: RPL_TOPIC, Params: []string{u.Nick, chanName}, Trailing: ch.Topic})
		return
	}

	if ch.Modes.Has('t') && ch.StatusOf(u.Nick) < rankOf('o') && !u.Oper {
		u.Send(&Event{Command: ERR_CHANOPRIVSNEEDED, Params: []string{u.Nick, chanName}, Trailing: "You're not a channel operator"})
		return
	}

	topic := e.Trailing
	if len(topic) > s.Config.TopicLen {
		topic = topic[:s.Config.TopicLen]
	}

	ch.mu.Lock()
	ch.Topic = topic
	ch.TopicSetBy = u.Mask()
	ch.mu.Unlock()

	event := &Event{Source: u.Source(), Command: TOPIC, Params: []string{chanName}, Trailing: topic}
	ch.WriteAllExceptSender(u, 0, event)
	u.Send(event)
}

func handleMode(s *Server, u *User, e *Event) {
	target := e.Params[0]

	if IsValidChannel(target) {
		handleChannelMode(s, u, e, target)
		return
	}

	// User modes are not supported: every user-mode query or change is
	// answered with ERR_UMODEUNKNOWNFLAG.
	u.Send(&Event{Command: ERR_UMODEUNKNOWNFLAG, Params: []string{u.Nick}, Trailing: "Unknown MODE flag"})
}

func handleChannelMode(s *Server, u *User, e *Event, chanName string) {
	ch := s.Channels.Find(chanName)
	if ch == nil {
		u.Send(&Event{Command: ERR_NOSUCHCHANNEL, Params: []string{u.Nick, chanName}, Trailing: "No such channel"})
		return
	}

	if len(e.Params) < 2 {
		u.Send(&Event{Command: RPL_CHANNELMODEIS, Params: []string{u.Nick, chanName, ch.Modes.String()}})
		return
	}

	if ch.StatusOf(u.Nick) < rankOf('o') && !u.Oper {
		u.Send(&Event{Command: ERR_CHANOPRIVSNEEDED, Params: []string{u.Nick, chanName}, Trailing: "You're not a channel operator"})
		return
	}

	flags := e.Params[1]
	args := e.Params[2:]

	ch.mu.Lock()
	changes := ch.Modes.parse(flags, args)
	ch.Modes.apply(changes)
	ch.mu.Unlock()

	mode := &Event{Source: u.Source(), Command: MODE, Params: append([]string{chanName}, e.Params[1:]...)}
	ch.WriteAllExceptSender(u, 0, mode)
	u.Send(mode)
}
