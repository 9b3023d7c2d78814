// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

// Package ircd implements a single-process IRC daemon core: a single-
// threaded reactor event loop, an authoritative user/channel table, and a
// priority-ordered module and hook system that extensions attach to rather
// than forking the dispatcher itself.
//
// See cmd/ircd for the daemon entry point.
package ircd
