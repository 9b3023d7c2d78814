// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package ircd

import (
	"testing"
	"time"
)

func TestTimerWheelFiresShortTickAfterPeriod(t *testing.T) {
	s := newTestServer()
	w := NewTimerWheel(s)

	var fired int
	s.Modules.Load(&backgroundTimerModule{fn: func() { fired++ }})

	base := time.Now()
	w.Tick(base)
	if fired != 0 {
		t.Fatalf("expected no tick immediately, got %d", fired)
	}

	w.Tick(base.Add(6 * time.Second))
	if fired != 1 {
		t.Fatalf("expected one tick after the short period elapses, got %d", fired)
	}
}

func TestTimerWheelNextDeadlineShrinksTowardZero(t *testing.T) {
	s := newTestServer()
	w := NewTimerWheel(s)

	base := time.Now()
	first := w.NextDeadline(base)
	later := w.NextDeadline(base.Add(2 * time.Second))

	if later >= first {
		t.Fatalf("expected deadline to shrink as time passes: first=%v later=%v", first, later)
	}
}

func TestTimerWheelTickExpiresXLines(t *testing.T) {
	s := newTestServer()
	w := NewTimerWheel(s)

	s.XLines.Add(&XLine{Kind: XLineKLine, Mask: "*@old.example.com", ExpiresAt: time.Now().Add(-time.Minute)})

	w.Tick(time.Now().Add(2 * time.Hour))

	if len(s.XLines.All()) != 0 {
		t.Fatalf("expected expired x-line to be removed by the 5-second tick")
	}
}

type backgroundTimerModule struct {
	fn func()
}

func (m *backgroundTimerModule) Name() string { return "timer-test" }

func (m *backgroundTimerModule) OnBackgroundTimer(s *Server, now int64) {
	m.fn()
}
