// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package ircd

import (
	"fmt"
	"strings"
)

// BuildISupport assembles the server's 005 token list from its
// configuration and mode tables, in the fixed order SPEC_FULL.md §6
// documents, then gives every Numeric005Hook module a chance to append
// additional tokens before the list is split into 005-line-sized chunks by
// the caller.
func BuildISupport(s *Server) []string {
	cfg := s.Config

	tokens := []string{
		"WALLCHOPS",
		"WALLVOICES",
		fmt.Sprintf("MODES=%d", 20),
		"CHANTYPES=" + ChanTypes,
		"PREFIX=" + DefaultPrefixes,
		"MAP",
		fmt.Sprintf("MAXCHANNELS=%d", cfg.MaxChannels),
		fmt.Sprintf("MAXBANS=%d", cfg.MaxBans),
		"VBANLIST",
		fmt.Sprintf("NICKLEN=%d", cfg.NickLen),
		"CASEMAPPING=rfc1459",
		"STATUSMSG=@%+",
		"CHARSET=ascii",
		fmt.Sprintf("TOPICLEN=%d", cfg.TopicLen),
		fmt.Sprintf("KICKLEN=%d", cfg.KickLen),
		fmt.Sprintf("MAXTARGETS=%d", cfg.MaxTargets),
		fmt.Sprintf("AWAYLEN=%d", cfg.AwayLen),
		"CHANMODES=" + ModeDefaults,
		"FNC",
		"NETWORK=" + cfg.NetworkName,
		"MAXPARA=32",
	}

	s.Modules.fanOut(Hook005Numeric, func(m Module) {
		if h, ok := m.(Numeric005Hook); ok {
			tokens = h.On005Numeric(s, tokens)
		}
	})

	return tokens
}

// ISupportLines splits tokens into one or more 005 numeric parameter lists,
// each holding at most maxPerLine tokens, matching the multi-line 005 behavior
// real clients expect when the token count is large.
func ISupportLines(tokens []string, maxPerLine int) []string {
	if maxPerLine <= 0 {
		maxPerLine = 13
	}
	var lines []string
	for i := 0; i < len(tokens); i += maxPerLine {
		end := i + maxPerLine
		if end > len(tokens) {
			end = len(tokens)
		}
		lines = append(lines, strings.Join(tokens[i:end], " "))
	}
	return lines
}
