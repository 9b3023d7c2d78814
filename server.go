// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package ircd

import (
	"log"
	"sync"
	"time"
)

// Server is the process-wide state a running daemon holds: the user and
// channel tables, the module registry and command dispatcher, the
// listening sockets and the reactor that services them, and the
// configuration currently in effect. Exactly one Server exists per
// process; modules and command handlers receive it as their first
// argument rather than reaching for a package-level global.
type Server struct {
	mu sync.RWMutex

	Config  Config
	Users   *UserTable
	Channels *ChannelTable
	Modules *Registry
	Dispatcher *Dispatcher

	XLines *XLineStore
	Whowas *WhowasCache
	Timers *TimerWheel
	Resolver *Resolver

	mux           Multiplexer
	listeners     []*Listener
	moduleSockets map[int]Module

	logger *log.Logger

	startedAt time.Time
	shutdown  chan struct{}

	// rehashRequests carries config paths from signal handlers to the
	// loop goroutine, which is the only goroutine allowed to call Rehash;
	// this keeps Config single-writer/single-reader instead of requiring
	// every read site to take a lock.
	rehashRequests chan string
}

// NewServer constructs a Server from cfg, bringing up the module registry,
// dispatcher, and table state, but neither binding listeners nor loading
// modules -- callers do that explicitly via Start so partially-constructed
// servers are usable in tests.
func NewServer(cfg Config) *Server {
	s := &Server{
		Config:    cfg,
		Users:     NewUserTable(),
		Channels:  NewChannelTable(),
		XLines:    NewXLineStore(),
		Whowas:    NewWhowasCache(cfg.WhowasCap, 0),
		logger:         newLogger(cfg.Out, "ircd "),
		startedAt:      time.Now(),
		shutdown:       make(chan struct{}),
		rehashRequests: make(chan string, 1),
		moduleSockets:  make(map[int]Module),
	}
	s.Modules = NewRegistry(s)
	s.Dispatcher = NewDispatcher()
	s.Timers = NewTimerWheel(s)
	s.Resolver = NewResolver(nil)

	registerBuiltinCommands(s.Dispatcher)

	return s
}

// Start brings up the reactor, binds every configured listener, and loads
// the given modules, in that order (Config.AutoloadModule is not read
// here): the reference
// implementation's startup sequence brings sockets up before extensions so
// a module's OnLoad can safely assume the multiplexer already exists.
func (s *Server) Start(modules []Module) error {
	mux, err := NewMultiplexer(256)
	if err != nil {
		return err
	}
	s.mux = mux

	for _, lc := range s.Config.Listen {
		var hook IOHook
		if lc.TLS {
			hook, err = NewTLSIOHook(lc.Cert, lc.Key)
			if err != nil {
				return err
			}
		}
		ln, err := NewListener(lc.Addr, hook)
		if err != nil {
			return err
		}
		fd, err := ln.FD()
		if err != nil {
			return err
		}
		if err := s.mux.Add(fd, false, KindListener); err != nil {
			return err
		}
		s.listeners = append(s.listeners, ln)
	}

	for _, m := range modules {
		if err := s.Modules.Load(m); err != nil {
			return err
		}
	}

	s.logger.Printf("listening on %d socket(s), %d module(s) loaded", len(s.listeners), s.Modules.Count())
	return nil
}

// Shutdown signals the event loop to stop after its current iteration and
// closes every listening socket.
func (s *Server) Shutdown() {
	close(s.shutdown)
	for _, ln := range s.listeners {
		_ = ln.Close()
	}
	if s.mux != nil {
		_ = s.mux.Close()
	}
}

// RequestRehash posts a rehash request for path, to be picked up and run by
// the loop goroutine on its next iteration. Safe to call from a signal
// handler or any other goroutine; non-blocking, since the request channel
// is single-slot and a pending request makes a duplicate one redundant.
func (s *Server) RequestRehash(path string) {
	select {
	case s.rehashRequests <- path:
	default:
	}
}

// Rehash reloads configuration from path, swapping it in only if the new
// file parses successfully, then fires OnRehash across every module.
// Listeners are never touched by a rehash.
func (s *Server) Rehash(path string) error {
	cfg, err := LoadConfig(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.Config = *cfg
	s.mu.Unlock()

	s.Modules.fanOut(HookRehash, func(m Module) {
		if h, ok := m.(RehashHook); ok {
			h.OnRehash(s)
		}
	})
	return nil
}

// RegisterModuleSocket binds fd to the reactor as an ESTAB_MODULE descriptor
// owned by owner, which must implement ModuleSocketPollHook. The loop calls
// owner's OnModuleSocketPoll on every readiness event for fd until it
// returns false, at which point the loop deregisters and the caller is
// expected to have already closed or be closing the underlying descriptor.
func (s *Server) RegisterModuleSocket(fd int, owner Module) error {
	if _, ok := owner.(ModuleSocketPollHook); !ok {
		return &ErrModuleSocketHook{Name: owner.Name()}
	}
	if err := s.mux.Add(fd, false, KindEstabModule); err != nil {
		return err
	}
	s.moduleSockets[fd] = owner
	return nil
}

// UnregisterModuleSocket deregisters fd from the reactor. Safe to call even
// if fd was never registered.
func (s *Server) UnregisterModuleSocket(fd int) {
	delete(s.moduleSockets, fd)
	_ = s.mux.Remove(fd)
}

// Uptime returns how long the server has been running.
func (s *Server) Uptime() time.Duration {
	return time.Since(s.startedAt)
}
