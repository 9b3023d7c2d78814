// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package ircd

import (
	"bufio"
	"io"
	"net"
	"time"
)

// conn holds the per-user socket state the event loop needs beyond what
// User itself tracks: the buffered reader the loop reads lines from, and
// whether the multiplexer currently watches this fd for writability.
type conn struct {
	user       *User
	netConn    net.Conn
	reader     *bufio.Reader
	wantsWrite bool
}

// Loop is the single-goroutine reactor: one Wait call per iteration,
// followed by servicing every ready descriptor, a resolver drain, and a
// timer tick, translated from the reference daemon's one-iteration
// algorithm (accept -> read -> process -> write -> background tasks).
type Loop struct {
	server    *Server
	conns     map[int]*conn
	listeners map[int]*Listener
}

// NewLoop builds a Loop bound to s. Call Run after Server.Start has bound
// listeners and loaded modules.
func NewLoop(s *Server) *Loop {
	return &Loop{server: s, conns: make(map[int]*conn), listeners: make(map[int]*Listener)}
}

// Run services the reactor until the server's shutdown channel closes.
func (l *Loop) Run() {
	for _, ln := range l.server.listeners {
		if fd, err := ln.FD(); err == nil {
			l.listeners[fd] = ln
		}
	}

	for {
		select {
		case <-l.server.shutdown:
			return
		default:
		}

		l.doOneIteration()
	}
}

// doOneIteration is the translated DoOneIteration: wait for readiness (for
// at most one second, and no longer than until the next timer tick is due),
// service ready descriptors, drain resolver results, then run the timer
// wheel.
func (l *Loop) doOneIteration() {
	select {
	case path := <-l.server.rehashRequests:
		if err := l.server.Rehash(path); err != nil {
			l.server.logger.Printf("rehash failed: %v", err)
		}
	default:
	}

	now := time.Now()
	timeout := l.server.Timers.NextDeadline(now)
	if timeout > time.Second {
		timeout = time.Second
	}

	events, err := l.server.mux.Wait(int(timeout / time.Millisecond))
	if err != nil {
		l.server.logger.Printf("multiplexer wait: %v", err)
		return
	}

	for _, ev := range events {
		if ln, ok := l.listeners[ev.FD]; ok {
			l.acceptOn(ln)
			continue
		}
		if c, ok := l.conns[ev.FD]; ok {
			if ev.Error {
				l.closeConn(c, "Connection reset")
				continue
			}
			if ev.Readable {
				l.readFrom(c)
			}
			if ev.Writable && c.wantsWrite {
				l.flushTo(c)
			}
			continue
		}
		if owner, ok := l.server.moduleSockets[ev.FD]; ok {
			h, ok := owner.(ModuleSocketPollHook)
			if !ok || !h.OnModuleSocketPoll(l.server, ev.FD, ev) {
				l.server.UnregisterModuleSocket(ev.FD)
			}
			continue
		}
		// Unknown kind: a stale descriptor the loop no longer has any
		// record of owning. Deregister it rather than let a
		// level-triggered fd spin the loop forever.
		_ = l.server.mux.Remove(ev.FD)
	}

	l.server.Resolver.Drain(func(fd int, host string, err error) {
		if c, ok := l.conns[fd]; ok && err == nil {
			c.user.Host = host
		}
	})

	l.server.Timers.Tick(time.Now())
}

func (l *Loop) acceptOn(ln *Listener) {
	for {
		netConn, err := ln.Accept()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				jitterSleep()
			}
			return
		}

		u := NewUser(-1, netConn)
		if tcp, ok := netConn.RemoteAddr().(*net.TCPAddr); ok {
			u.Host = tcp.IP.String()
			if x := l.server.XLines.Match(XLineZLine, u.Host); x != nil {
				_ = netConn.Close()
				continue
			}
		}

		fd, err := fdOf(netConn)
		if err != nil {
			_ = netConn.Close()
			continue
		}
		u.FD = fd

		l.server.Users.Add(u)
		l.conns[fd] = &conn{user: u, netConn: netConn, reader: bufio.NewReaderSize(netConn, 4096)}
		_ = l.server.mux.Add(fd, false, KindEstabClient)

		if tcp, ok := netConn.RemoteAddr().(*net.TCPAddr); ok {
			l.server.Resolver.ResolveAsync(fd, tcp.IP.String())
		}
	}
}

func (l *Loop) readFrom(c *conn) {
	for {
		line, err := c.reader.ReadString('\n')
		if len(line) > 0 {
			c.user.LastActive = time.Now()
			l.server.Dispatcher.Dispatch(l.server, c.user, []byte(line))
		}
		if err != nil {
			if err != io.EOF && !isWouldBlock(err) {
				l.closeConn(c, "Read error")
			} else if err == io.EOF {
				l.closeConn(c, "Connection closed")
			}
			return
		}
	}
}

func (l *Loop) flushTo(c *conn) {
	for {
		select {
		case event, ok := <-c.user.outbox:
			if !ok {
				return
			}
			if _, err := c.netConn.Write(append(event.Bytes(), '\r', '\n')); err != nil {
				l.closeConn(c, "Write error")
				return
			}
		default:
			c.wantsWrite = false
			_ = l.server.mux.Modify(c.user.FD, false)
			return
		}
	}
}

func (l *Loop) closeConn(c *conn, reason string) {
	disconnectUser(l.server, c.user, reason)
	_ = l.server.mux.Remove(c.user.FD)
	_ = c.netConn.Close()
	delete(l.conns, c.user.FD)
}

func fdOf(nc net.Conn) (int, error) {
	tc, ok := nc.(*net.TCPConn)
	if !ok {
		return -1, errNotTCPListener
	}
	f, err := tc.File()
	if err != nil {
		return -1, err
	}
	return int(f.Fd()), nil
}

func isWouldBlock(err error) bool {
	ne, ok := err.(net.Error)
	return ok && ne.Timeout()
}
