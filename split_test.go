// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package ircd

import "testing"

func TestSplitEventShort(t *testing.T) {
	e := &Event{Command: PRIVMSG, Params: []string{"#chan"}, Trailing: "hello"}
	out := splitEvent(e, 40)
	if len(out) != 1 {
		t.Fatalf("expected no split for a short message, got %d events", len(out))
	}
}

func TestSplitEventLong(t *testing.T) {
	long := make([]byte, 600)
	for i := range long {
		long[i] = 'a'
		if i%10 == 0 {
			long[i] = ' '
		}
	}

	e := &Event{Command: PRIVMSG, Params: []string{"#chan"}, Trailing: string(long)}
	out := splitEvent(e, 40)
	if len(out) < 2 {
		t.Fatalf("expected split into multiple events, got %d", len(out))
	}

	for _, ev := range out {
		if ev.Len() > maxIRCLen-40 {
			t.Errorf("split event exceeds max length: %d > %d", ev.Len(), maxIRCLen-40)
		}
	}
}
