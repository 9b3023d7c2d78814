// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package ircd

import "strings"

// ModeDefaults is the CHANMODES value advertised when configuration does not
// override it: b (ban list), k (key), l (limit), psmnti (no-arg settings).
const ModeDefaults = "b,k,l,psmnti"

// DefaultPrefixes is the PREFIX value advertised when configuration does not
// override it: op, halfop and voice.
const DefaultPrefixes = "(ohv)@%+"

// Status rank prefix characters, ordered from least to most privileged.
const (
	VoicePrefix        = "+"
	HalfOperatorPrefix = "%"
	OperatorPrefix     = "@"
	AdminPrefix        = "&"
	OwnerPrefix        = "~"
)

// Mode letters corresponding to the status ranks above.
const (
	ModeVoice        = "v"
	ModeHalfOperator = "h"
	ModeOperator     = "o"
	ModeAdmin        = "a"
	ModeOwner        = "q"
)

// CMode is a single applied channel mode: +o, -b host!*@*, etc.
type CMode struct {
	add     bool
	name    byte
	setting bool
	args    string
}

func (c *CMode) Short() string {
	status := "-"
	if c.add {
		status = "+"
	}
	return status + string(c.name)
}

func (c *CMode) String() string {
	if len(c.args) == 0 {
		return c.Short()
	}
	return c.Short() + " " + c.args
}

// CModes is the authoritative mode bitset for a single channel, together
// with the server's current CHANMODES/PREFIX classification.
//
// "modes" is a list of channel modes according to 4 types: "A,B,C,D".
// A = Mode that adds or removes a nick or address to a list. Always has a parameter.
// B = Mode that changes a setting and always has a parameter.
// C = Mode that changes a setting and only has a parameter when set.
// D = Mode that changes a setting and never has a parameter.
type CModes struct {
	raw           string
	modesListArgs string
	modesArgs     string
	modesSetArgs  string
	modesNoArgs   string

	prefixes string
	modes    []CMode
}

func (c *CModes) String() string {
	var out, args string

	if len(c.modes) > 0 {
		out += "+"
	}

	for i := 0; i < len(c.modes); i++ {
		out += string(c.modes[i].name)
		if len(c.modes[i].args) > 0 {
			args += " " + c.modes[i].args
		}
	}

	return out + args
}

// Has reports whether the no-argument/setting mode m is currently set.
func (c *CModes) Has(m byte) bool {
	for i := range c.modes {
		if c.modes[i].name == m {
			return true
		}
	}
	return false
}

func (c *CModes) hasArg(set bool, mode byte) (hasArgs, isSetting bool) {
	if len(c.raw) < 1 {
		return false, true
	}

	if strings.IndexByte(c.modesListArgs, mode) > -1 {
		return true, false
	}

	if strings.IndexByte(c.modesArgs, mode) > -1 {
		return true, true
	}

	if strings.IndexByte(c.modesSetArgs, mode) > -1 {
		if set {
			return true, true
		}
		return false, true
	}

	if strings.IndexByte(c.prefixes, mode) > -1 {
		return true, false
	}

	return false, true
}

// apply merges a parsed mode change list into the channel's live mode set.
func (c *CModes) apply(modes []CMode) {
	var newModes []CMode

	for j := 0; j < len(c.modes); j++ {
		isin := false
		for i := 0; i < len(modes); i++ {
			if !modes[i].setting {
				continue
			}
			if c.modes[j].name == modes[i].name && modes[i].add {
				newModes = append(newModes, modes[i])
				isin = true
				break
			}
		}

		if !isin {
			newModes = append(newModes, c.modes[j])
		}
	}

	for i := 0; i < len(modes); i++ {
		if !modes[i].setting || !modes[i].add {
			continue
		}

		isin := false
		for j := 0; j < len(newModes); j++ {
			if modes[i].name == newModes[j].name {
				isin = true
				break
			}
		}

		if !isin {
			newModes = append(newModes, modes[i])
		}
	}

	c.modes = newModes
}

// parse turns a MODE flags string ("+nt-l") plus its arguments into a
// sequence of CMode changes, consuming arguments as the A/B/C classification
// dictates.
func (c *CModes) parse(flags string, args []string) (out []CMode) {
	add := true
	var argCount int

	for i := 0; i < len(flags); i++ {
		if flags[i] == '+' {
			add = true
			continue
		}
		if flags[i] == '-' {
			add = false
			continue
		}

		mode := CMode{name: flags[i], add: add}

		hasArgs, isSetting := c.hasArg(add, flags[i])
		if hasArgs && len(args) >= argCount+1 {
			mode.args = args[argCount]
			argCount++
		}
		mode.setting = isSetting

		out = append(out, mode)
	}

	return out
}

// Copy returns an independent copy of the mode set.
func (c CModes) Copy() CModes {
	nc := c
	nc.modes = make([]CMode, len(c.modes))
	copy(nc.modes, c.modes)
	return nc
}

// NewCModes constructs a CModes classified against the server's advertised
// CHANMODES and PREFIX values.
func NewCModes(channelModes, userPrefixes string) CModes {
	split := strings.SplitN(channelModes, ",", 4)
	for i := len(split); i < 4; i++ {
		split = append(split, "")
	}

	return CModes{
		raw:           channelModes,
		modesListArgs: split[0],
		modesArgs:     split[1],
		modesSetArgs:  split[2],
		modesNoArgs:   split[3],

		prefixes: userPrefixes,
		modes:    []CMode{},
	}
}

func isValidChannelMode(raw string) bool {
	if len(raw) < 1 {
		return false
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] != ',' && (raw[i] < 'A' || raw[i] > 'Z') && (raw[i] < 'a' || raw[i] > 'z') {
			return false
		}
	}
	return true
}

func isValidUserPrefix(raw string) bool {
	if len(raw) < 1 || raw[0] != '(' {
		return false
	}

	var keys, rep int
	var passedKeys bool

	for i := 1; i < len(raw); i++ {
		if raw[i] == ')' {
			passedKeys = true
			continue
		}
		if passedKeys {
			rep++
		} else {
			keys++
		}
	}

	return keys == rep
}

// ParsePrefixes splits a PREFIX=(ov)@+ token into its mode-letter and
// status-prefix halves.
func ParsePrefixes(raw string) (modes, prefixes string) {
	if !isValidUserPrefix(raw) {
		return modes, prefixes
	}

	i := strings.Index(raw, ")")
	if i < 1 {
		return modes, prefixes
	}

	return raw[1:i], raw[i+1:]
}

// rankOf returns the numeric privilege rank of a status mode letter (higher
// is more privileged), or 0 if m is not a status mode.
func rankOf(m byte) int {
	switch string(m) {
	case ModeOwner:
		return 5
	case ModeAdmin:
		return 4
	case ModeOperator:
		return 3
	case ModeHalfOperator:
		return 2
	case ModeVoice:
		return 1
	default:
		return 0
	}
}

// rankOfPrefix returns the numeric privilege rank of a status prefix
// character (@, %, +, ...), or 0 if c is not a recognized prefix.
func rankOfPrefix(c byte) int {
	switch string(c) {
	case OwnerPrefix:
		return 5
	case AdminPrefix:
		return 4
	case OperatorPrefix:
		return 3
	case HalfOperatorPrefix:
		return 2
	case VoicePrefix:
		return 1
	default:
		return 0
	}
}
