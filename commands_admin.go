// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package ircd

import "strconv"

func handleLoadModule(s *Server, u *User, e *Event) {
	name := e.Params[0]
	factory, ok := staticModuleFactories[name]
	if !ok {
		u.Send(&Event{Command: NOTICE, Params: []string{u.Nick}, Trailing: "No such module: " + name})
		return
	}
	if err := s.Modules.Load(factory()); err != nil {
		u.Send(&Event{Command: NOTICE, Params: []string{u.Nick}, Trailing: "Failed to load " + name + ": " + err.Error()})
		return
	}
	u.Send(&Event{Command: NOTICE, Params: []string{u.Nick}, Trailing: "Loaded module " + name})
}

func handleUnloadModule(s *Server, u *User, e *Event) {
	name := e.Params[0]
	if err := s.Modules.Unload(name); err != nil {
		u.Send(&Event{Command: NOTICE, Params: []string{u.Nick}, Trailing: "Failed to unload " + name + ": " + err.Error()})
		return
	}
	u.Send(&Event{Command: NOTICE, Params: []string{u.Nick}, Trailing: "Unloaded module " + name})
}

func handleRehash(s *Server, u *User, e *Event) {
	u.Send(&Event{Command: RPL_REHASHING, Params: []string{u.Nick, "ircd.conf"}, Trailing: "Rehashing"})
	path := e.Last()
	if path == "" {
		path = defaultConfigPath
	}
	if err := s.Rehash(path); err != nil {
		u.Send(&Event{Command: NOTICE, Params: []string{u.Nick}, Trailing: "Rehash failed: " + err.Error()})
	}
}

func handleLusers(s *Server, u *User, e *Event) {
	u.Send(&Event{Command: RPL_LUSERCLIENT, Params: []string{u.Nick}, Trailing: "There are " + strconv.Itoa(s.Users.Count()) + " users on 1 server"})
	u.Send(&Event{Command: RPL_LUSERCHANNELS, Params: []string{u.Nick, strconv.Itoa(s.Channels.Count())}, Trailing: "channels formed"})
	u.Send(&Event{Command: RPL_LUSERME, Params: []string{u.Nick}, Trailing: "I have " + strconv.Itoa(s.Users.Count()) + " clients and 1 server"})
}

func handleStats(s *Server, u *User, e *Event) {
	u.Send(&Event{Command: NOTICE, Params: []string{u.Nick}, Trailing: FormatStats(s)})
}

// defaultConfigPath is used by REHASH when no path argument is given.
const defaultConfigPath = "/etc/ircd/ircd.conf"

// staticModuleFactories maps a compiled-in module's advertised name to a
// constructor, the set LOADMODULE/UNLOADMODULE can act on. Real-world
// third-party modules would register here from an init() in their own
// package; this server ships none built in.
var staticModuleFactories = map[string]func() Module{}
