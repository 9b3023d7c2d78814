// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package ircd

import (
	"sync"
	"time"

	cmap "github.com/orcaman/concurrent-map"
)

// Channel is a server-owned channel record: name, topic, membership, and
// modes. Unlike a client library's Channel (a cache of what a server told
// it), this is the authoritative copy.
type Channel struct {
	mu sync.RWMutex

	Name       string
	Topic      string
	TopicSetBy string
	TopicSetAt time.Time
	Created    time.Time

	// UserList maps case-folded nickname to *User for every member.
	UserList cmap.ConcurrentMap

	Modes CModes

	// Bans holds ban masks (channel mode 'b').
	Bans []string
}

func newChannel(name string, modes CModes) *Channel {
	return &Channel{
		Name:     name,
		Created:  time.Now(),
		UserList: cmap.New(),
		Modes:    modes,
	}
}

// Len returns the number of members.
func (ch *Channel) Len() int { return ch.UserList.Count() }

// UserIn reports whether nick is a current member.
func (ch *Channel) UserIn(nick string) bool {
	return ch.UserList.Has(ToRFC1459(nick))
}

// StatusOf returns the privilege rank nick holds in the channel, 0 if not a
// member or unranked.
func (ch *Channel) StatusOf(nick string) int {
	v, ok := ch.UserList.Get(ToRFC1459(nick))
	if !ok {
		return 0
	}
	return v.(*membership).rank
}

type membership struct {
	user *User
	rank int
}

// addUser adds user to the channel's member list at the given initial rank
// (0 for a plain join; a status rank when e.g. the first joiner is auto-opped).
func (ch *Channel) addUser(user *User, rank int) {
	ch.UserList.Set(ToRFC1459(user.Nick), &membership{user: user, rank: rank})
	user.setStatus(ch.Name, rank)
}

// removeUser removes nick from the channel's member list.
func (ch *Channel) removeUser(nick string) {
	ch.UserList.Remove(ToRFC1459(nick))
}

// setStatus updates nick's rank within the channel, leaving membership
// otherwise unchanged.
func (ch *Channel) setStatus(nick string, rank int) {
	key := ToRFC1459(nick)
	v, ok := ch.UserList.Get(key)
	if !ok {
		return
	}
	m := v.(*membership)
	m.rank = rank
	m.user.setStatus(ch.Name, rank)
}

// Members returns a snapshot slice of every user currently in the channel.
func (ch *Channel) Members() []*User {
	out := make([]*User, 0, ch.UserList.Count())
	for item := range ch.UserList.IterBuffered() {
		out = append(out, item.Val.(*membership).user)
	}
	return out
}

// WriteAllExceptSender delivers event to every member except sender. If
// minRank is non-zero, only members whose status rank is ≥ minRank
// receive it (implements the STATUSMSG @/%/+ targeting prefix).
func (ch *Channel) WriteAllExceptSender(sender *User, minRank int, event *Event) {
	for item := range ch.UserList.IterBuffered() {
		m := item.Val.(*membership)
		if m.user == sender {
			continue
		}
		if minRank > 0 && m.rank < minRank {
			continue
		}
		_ = m.user.Send(event)
	}
}

// ChannelTable owns every live channel, keyed by case-folded name.
type ChannelTable struct {
	channels cmap.ConcurrentMap
}

// NewChannelTable returns an empty ChannelTable.
func NewChannelTable() *ChannelTable {
	return &ChannelTable{channels: cmap.New()}
}

// Find returns the channel named name, or nil.
func (t *ChannelTable) Find(name string) *Channel {
	v, ok := t.channels.Get(ToRFC1459(name))
	if !ok {
		return nil
	}
	return v.(*Channel)
}

// GetOrCreate returns the existing channel named name, or creates and
// registers a new one (reporting created=true) using the server's current
// mode classification.
func (t *ChannelTable) GetOrCreate(name string, modes CModes) (ch *Channel, created bool) {
	key := ToRFC1459(name)
	if v, ok := t.channels.Get(key); ok {
		return v.(*Channel), false
	}

	ch = newChannel(name, modes)
	t.channels.Set(key, ch)
	return ch, true
}

// DestroyIfEmpty removes ch from the table if it has no members left.
func (t *ChannelTable) DestroyIfEmpty(ch *Channel) {
	if ch.Len() == 0 {
		t.channels.Remove(ToRFC1459(ch.Name))
	}
}

// Count returns the number of live channels.
func (t *ChannelTable) Count() int { return t.channels.Count() }

// ForEach calls fn for every tracked channel.
func (t *ChannelTable) ForEach(fn func(*Channel)) {
	for item := range t.channels.IterBuffered() {
		fn(item.Val.(*Channel))
	}
}
