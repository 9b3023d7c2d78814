// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package ircd

// caseFoldTable implements RFC 1459 case folding: ASCII letters lowercase as
// usual, and the "tetrad" []\ additionally folds to {}| so that a channel or
// nickname containing either spelling compares equal.
var caseFoldTable [256]byte

func init() {
	for i := 0; i < 256; i++ {
		caseFoldTable[i] = byte(i)
	}
	for c := byte('A'); c <= 'Z'; c++ {
		caseFoldTable[c] = c + ('a' - 'A')
	}
	caseFoldTable['['] = '{'
	caseFoldTable[']'] = '}'
	caseFoldTable['\\'] = '|'
}

// ToRFC1459 returns the canonical case-folded form of s, as used for every
// nickname and channel-name comparison in the server.
func ToRFC1459(s string) string {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		out[i] = caseFoldTable[s[i]]
	}
	return string(out)
}

// EqualFold reports whether a and b are equal under RFC 1459 case folding.
func EqualFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		if caseFoldTable[a[i]] != caseFoldTable[b[i]] {
			return false
		}
	}
	return true
}

const (
	// NickLenDefault is used when a Config does not set NickLen.
	NickLenDefault = 31
	// IdentLenDefault bounds the ident (username) portion of a hostmask.
	IdentLenDefault = 12
)

func isNickChar(c byte, first bool) bool {
	switch {
	case c >= 'A' && c <= '}':
		return true
	case !first && c >= '0' && c <= '9':
		return true
	case !first && c == '-':
		return true
	default:
		return false
	}
}

// IsValidNick reports whether name is a syntactically valid nickname, per
// the grammar: the first character is in A-} and subsequent characters may
// additionally be digits or '-'.
func IsValidNick(name string) bool {
	return IsValidNickLen(name, NickLenDefault)
}

// IsValidNickLen is IsValidNick against a server-configured NICKLEN instead
// of NickLenDefault.
func IsValidNickLen(name string, max int) bool {
	if max <= 0 {
		max = NickLenDefault
	}
	if len(name) == 0 || len(name) > max {
		return false
	}
	for i := 0; i < len(name); i++ {
		if !isNickChar(name[i], i == 0) {
			return false
		}
	}
	return true
}

// IsValidUser reports whether ident is a syntactically valid username/ident
// token: letters, digits, '-', and '.' anywhere, non-empty.
func IsValidUser(ident string) bool {
	if len(ident) == 0 || len(ident) > IdentLenDefault {
		return false
	}
	for i := 0; i < len(ident); i++ {
		c := ident[i]
		switch {
		case c >= 'A' && c <= '}':
		case c >= '0' && c <= '9':
		case c == '-' || c == '.':
		default:
			return false
		}
	}
	return true
}

// ChanTypes lists the channel-name prefix characters this server recognizes.
// Only "#" is supported; "&" (server-local) channels are not implemented.
const ChanTypes = "#"

// IsValidChannel reports whether name looks like a syntactically valid
// channel name: begins with a character from ChanTypes, contains no space,
// comma, BEL, CR or LF, and is 2 to 64 bytes long.
func IsValidChannel(name string) bool {
	if len(name) < 2 || len(name) > 64 {
		return false
	}
	found := false
	for i := 0; i < len(ChanTypes); i++ {
		if name[0] == ChanTypes[i] {
			found = true
			break
		}
	}
	if !found {
		return false
	}
	for i := 1; i < len(name); i++ {
		switch name[i] {
		case ' ', ',', '\x07', '\r', '\n':
			return false
		}
	}
	return true
}
