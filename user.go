// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package ircd

import (
	"bufio"
	"net"
	"sync"
	"time"

	cmap "github.com/orcaman/concurrent-map"
)

// User is a connected (or, for a service pseudo-user, virtual) client
// session and the state the server authoritatively holds about it.
type User struct {
	mu sync.Mutex

	// FD is the descriptor registered with the multiplexer. A negative FD
	// marks a remote/virtual user with no local socket (a services pseudo
	// client, for instance); such a user is absent from the user table's
	// fd index.
	FD int

	Nick  string
	Ident string
	Host  string
	Real  string

	// Server is the interned name of the server this user is connected to.
	Server *string

	Registered bool // both NICK and USER have been received
	Oper       bool
	Away       string
	Account    string

	FirstSeen  time.Time
	LastActive time.Time

	// ChannelList maps case-folded channel name to the user's membership
	// status rank on that channel (see rankOf/rankOfPrefix).
	ChannelList cmap.ConcurrentMap

	conn   net.Conn
	rw     *bufio.ReadWriter
	outbox chan *Event
	done   chan struct{}
	hook   IOHook
}

// NewUser constructs a freshly-accepted, unregistered user bound to conn.
func NewUser(fd int, conn net.Conn) *User {
	now := time.Now()
	return &User{
		FD:          fd,
		FirstSeen:   now,
		LastActive:  now,
		ChannelList: cmap.New(),
		conn:        conn,
		outbox:      make(chan *Event, 64),
		done:        make(chan struct{}),
	}
}

// Mask returns the nick!ident@host hostmask used as a message Source.
func (u *User) Mask() string {
	return u.Nick + "!" + u.Ident + "@" + u.Host
}

// Source returns a *Source suitable for use as the prefix of events this
// user generates.
func (u *User) Source() *Source {
	return &Source{Name: u.Nick, Ident: u.Ident, Host: u.Host}
}

// Send queues event on this user's outbox, which the event loop writes to
// the socket when it is writable; it never blocks. Satisfies Sender.
func (u *User) Send(event *Event) error {
	if u.FD < 0 {
		return nil // virtual user, nothing to deliver to
	}

	select {
	case u.outbox <- event:
		return nil
	default:
		// Outbox full: the connection is not draining fast enough. Rather
		// than block the single loop goroutine, the event is discarded; the
		// user stays connected.
		return errOutboxFull
	}
}

var errOutboxFull = &ErrInvalidTarget{Target: "<outbox full>"}

// InChannel reports whether the user is a member of the named channel.
func (u *User) InChannel(name string) bool {
	return u.ChannelList.Has(ToRFC1459(name))
}

// StatusIn returns the user's privilege rank on the named channel, 0 if not
// a member or not ranked.
func (u *User) StatusIn(name string) int {
	v, ok := u.ChannelList.Get(ToRFC1459(name))
	if !ok {
		return 0
	}
	return v.(int)
}

func (u *User) setStatus(name string, rank int) {
	u.ChannelList.Set(ToRFC1459(name), rank)
}

func (u *User) leaveChannel(name string) {
	u.ChannelList.Remove(ToRFC1459(name))
}

// Idle returns the time elapsed since the user's last message.
func (u *User) Idle() time.Duration {
	return time.Since(u.LastActive)
}

// UserTable owns the fd→user and nickname→user indices for every connected
// user. The fd index is a plain slice (indexed by descriptor, which is
// small and dense); the nickname index is the teacher's concurrent-map
// container, kept even though the loop is single-threaded.
type UserTable struct {
	mu      sync.RWMutex
	byFD    []*User
	byNick  cmap.ConcurrentMap
	count   int
}

// NewUserTable returns an empty UserTable.
func NewUserTable() *UserTable {
	return &UserTable{byNick: cmap.New()}
}

// Add registers a user under its descriptor. A user that already carries a
// nickname is indexed under it as well; a freshly accepted user has none
// and becomes findable by nick once NICK registers one via Rename.
func (t *UserTable) Add(u *User) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if u.FD >= 0 {
		for len(t.byFD) <= u.FD {
			t.byFD = append(t.byFD, nil)
		}
		t.byFD[u.FD] = u
	}
	if u.Nick != "" {
		t.byNick.Set(ToRFC1459(u.Nick), u)
	}
	t.count++
}

// FindByFD returns the user registered under fd, or nil.
func (t *UserTable) FindByFD(fd int) *User {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if fd < 0 || fd >= len(t.byFD) {
		return nil
	}
	return t.byFD[fd]
}

// FindByNick returns the user with the given (case-insensitive) nickname,
// or nil.
func (t *UserTable) FindByNick(nick string) *User {
	v, ok := t.byNick.Get(ToRFC1459(nick))
	if !ok {
		return nil
	}
	return v.(*User)
}

// Rename claims nick for u, releasing any previous nickname it held. The
// caller must have already verified the nick is not in use.
func (t *UserTable) Rename(u *User, nick string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if u.Nick != "" {
		t.byNick.Remove(ToRFC1459(u.Nick))
	}
	u.Nick = nick
	u.LastActive = time.Now()
	t.byNick.Set(ToRFC1459(nick), u)
}

// Remove deregisters u entirely: from the fd index and the nickname index.
func (t *UserTable) Remove(u *User) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if u.FD >= 0 && u.FD < len(t.byFD) && t.byFD[u.FD] == u {
		t.byFD[u.FD] = nil
	}
	if u.Nick != "" {
		t.byNick.Remove(ToRFC1459(u.Nick))
	}
	t.count--
}

// Count returns the number of currently registered users.
func (t *UserTable) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.count
}

// ForEach calls fn for every tracked user that holds a nickname; users that
// have not sent NICK yet are not visited. fn must not call back into the
// UserTable's mutating methods.
func (t *UserTable) ForEach(fn func(*User)) {
	for item := range t.byNick.IterBuffered() {
		fn(item.Val.(*User))
	}
}
