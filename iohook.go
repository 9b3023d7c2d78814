// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package ircd

import (
	"crypto/tls"
	"net"
)

// IOHook lets a listener or a per-connection socket be wrapped by something
// that transforms bytes in flight -- TLS termination, traffic accounting,
// or a module's own RawSocket* hooks. A nil IOHook means the raw net.Conn is
// used as-is.
type IOHook interface {
	// Wrap is called once, immediately after accept, and returns the
	// net.Conn the server should read/write from then on.
	Wrap(conn net.Conn) (net.Conn, error)
}

// tlsIOHook terminates TLS on accept using the configured certificate.
type tlsIOHook struct {
	config *tls.Config
}

// NewTLSIOHook builds an IOHook that wraps accepted connections in a TLS
// server handshake using the certificate/key at certFile/keyFile.
func NewTLSIOHook(certFile, keyFile string) (IOHook, error) {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, err
	}
	return &tlsIOHook{config: &tls.Config{Certificates: []tls.Certificate{cert}}}, nil
}

func (h *tlsIOHook) Wrap(conn net.Conn) (net.Conn, error) {
	tconn := tls.Server(conn, h.config)
	if err := tconn.Handshake(); err != nil {
		return nil, err
	}
	return tconn, nil
}

// moduleIOHook adapts a module implementing the RawSocket* hooks into an
// IOHook, so module-intercepted bytes flow through the same Wrap path as
// TLS termination.
type moduleIOHook struct {
	server *Server
	fd     int
}

func (h *moduleIOHook) Wrap(conn net.Conn) (net.Conn, error) {
	h.server.Modules.fanOut(HookRawSocketAccept, func(m Module) {
		if rh, ok := m.(RawSocketAcceptHook); ok {
			_ = rh.OnRawSocketAccept(h.server, h.fd, conn.RemoteAddr().String())
		}
	})
	return conn, nil
}
