// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package ircd

import (
	"os"
	"os/signal"
	"syscall"
)

// WatchSignalsAndRun wires SIGHUP/SIGTERM/SIGINT handling and then runs the
// event loop on the calling goroutine until shutdown, the shape a cmd/ircd
// main package drives the server with.
func WatchSignalsAndRun(s *Server, configPath string) {
	watchSignals(s, configPath)
	NewLoop(s).Run()
}

// watchSignals wires SIGHUP to a rehash request and SIGTERM/SIGINT to a
// clean shutdown, in a background goroutine. SIGHUP never mutates Config
// itself -- it only posts the request onto a channel the loop goroutine
// drains, since Config is otherwise single-writer/single-reader on the
// loop goroutine.
func watchSignals(s *Server, configPath string) {
	ch := make(chan os.Signal, 4)
	signal.Notify(ch, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGINT, syscall.SIGPIPE, syscall.SIGALRM)

	go func() {
		for sig := range ch {
			switch sig {
			case syscall.SIGHUP:
				s.RequestRehash(configPath)
			case syscall.SIGTERM, syscall.SIGINT:
				s.logger.Printf("received %s, shutting down", sig)
				s.Shutdown()
				return
			case syscall.SIGPIPE, syscall.SIGALRM:
				// Ignored: a write to an already-closed client socket
				// surfaces through the normal error path instead, and no
				// alarm timer is used.
			}
		}
	}()
}
