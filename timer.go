// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package ircd

import (
	"sync"
	"time"
)

// TimerWheel drives the server's periodic housekeeping: a 5-second gated
// tick that fires BackgroundTimerHook and expires X-lines, and a
// 3600-second tick that compacts the WHOWAS cache. Like the reference
// event loop, a tick that is late (the loop was busy) still only fires
// once per period rather than "catching up" with a burst -- missed ticks
// are simply skipped forward to now.
type TimerWheel struct {
	mu           sync.Mutex
	server       *Server
	lastShort    time.Time
	lastLong     time.Time
	shortPeriod  time.Duration
	longPeriod   time.Duration
}

// NewTimerWheel returns a wheel with the default 5s/3600s periods.
func NewTimerWheel(s *Server) *TimerWheel {
	now := time.Now()
	return &TimerWheel{
		server:      s,
		lastShort:   now,
		lastLong:    now,
		shortPeriod: 5 * time.Second,
		longPeriod:  3600 * time.Second,
	}
}

// Tick is called once per event loop iteration (from loop.go) with the
// current time; it fires either or both tiers if their period has elapsed.
func (w *TimerWheel) Tick(now time.Time) {
	w.mu.Lock()
	fireShort := now.Sub(w.lastShort) >= w.shortPeriod
	if fireShort {
		w.lastShort = now
	}
	fireLong := now.Sub(w.lastLong) >= w.longPeriod
	if fireLong {
		w.lastLong = now
	}
	w.mu.Unlock()

	if fireShort {
		w.server.Modules.fanOut(HookBackgroundTimer, func(m Module) {
			if h, ok := m.(BackgroundTimerHook); ok {
				h.OnBackgroundTimer(w.server, now.Unix())
			}
		})

		removed := w.server.XLines.Expire(now)
		if removed > 0 {
			w.server.logger.Printf("expired %d x-line(s)", removed)
		}
	}

	if fireLong {
		w.server.Whowas.Compact(now)
	}
}

// NextDeadline returns how long the caller may block (in the multiplexer's
// wait call) before a tick is due, so the loop sleeps no longer than
// necessary between housekeeping ticks.
func (w *TimerWheel) NextDeadline(now time.Time) time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()

	shortRemaining := w.shortPeriod - now.Sub(w.lastShort)
	if shortRemaining < 0 {
		shortRemaining = 0
	}
	return shortRemaining
}
