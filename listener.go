// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package ircd

import (
	"net"
)

// Listener is one bound, listening port, optionally wrapping accepted
// connections through an IOHook (TLS termination, for instance).
type Listener struct {
	Addr string
	ln   net.Listener
	hook IOHook
}

// NewListener binds addr (host:port) and returns a Listener wrapping every
// accepted connection through hook, if non-nil.
func NewListener(addr string, hook IOHook) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Listener{Addr: addr, ln: ln, hook: hook}, nil
}

// FD returns the listening socket's file descriptor, for registration with
// the multiplexer.
func (l *Listener) FD() (int, error) {
	tl, ok := l.ln.(*net.TCPListener)
	if !ok {
		return -1, errNotTCPListener
	}
	f, err := tl.File()
	if err != nil {
		return -1, err
	}
	return int(f.Fd()), nil
}

var errNotTCPListener = &ErrInvalidTarget{Target: "<listener>"}

// Accept accepts one pending connection and runs it through the
// configured IOHook, returning the ready-to-use net.Conn.
func (l *Listener) Accept() (net.Conn, error) {
	conn, err := l.ln.Accept()
	if err != nil {
		return nil, err
	}
	if l.hook == nil {
		return conn, nil
	}
	return l.hook.Wrap(conn)
}

// Close stops accepting new connections on this listener.
func (l *Listener) Close() error {
	return l.ln.Close()
}
