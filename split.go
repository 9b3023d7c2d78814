// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package ircd

import (
	"bytes"
	"unicode/utf8"
)

// splitFunc splits a too-long outbound event into several that each fit
// within maxLen once encoded.
type splitFunc func(event *Event, maxLen int) []*Event

var splitFuncs = map[string]splitFunc{
	PRIVMSG: splitTrailing,
	NOTICE:  splitTrailing,
}

// maxIRCLen is the wire limit from RFC 2812 section 2.3: 512 octets
// including the trailing CRLF.
const maxIRCLen = 512 - len("\r\n")

func splitTrailing(event *Event, maxLen int) (events []*Event) {
	newMsg := func(text []byte) *Event {
		e := event.Copy()
		e.Trailing = string(text)
		e.EmptyTrailing = len(text) == 0
		return e
	}

	rawEvent := event.Copy()
	rawEvent.Trailing = ""
	rawEvent.EmptyTrailing = false

	// maxTextLen must not be exceeded by the trailing parameter; include
	// the " :" that introduces it.
	maxTextLen := maxLen - rawEvent.Len() - len(" :")
	if maxTextLen <= 0 {
		return []*Event{event}
	}

	b := []byte(event.Last())
	for len(b) > maxTextLen {
		idx := bytes.LastIndexByte(b[:maxTextLen], ' ')
		if idx > 0 {
			idx++
		} else {
			idx = bytes.LastIndexFunc(b[:maxTextLen+1], utf8.ValidRune)
		}

		events = append(events, newMsg(b[:idx]))
		b = b[idx:]
	}
	events = append(events, newMsg(b))

	return events
}

// splitEvent splits event, with an assumed sender prefix of the given
// length, into one or more events that each fit the wire limit. Only
// commands with an entry in splitFuncs are split; any other event is
// returned whole. The dispatcher and command handlers do not call it.
func splitEvent(event *Event, prefixLen int) []*Event {
	maxLen := maxIRCLen - prefixLen
	if event.Len() <= maxLen {
		return []*Event{event}
	}

	if fn, ok := splitFuncs[event.Command]; ok {
		return fn(event, maxLen)
	}

	return []*Event{event}
}
