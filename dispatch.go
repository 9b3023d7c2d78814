// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package ircd

import (
	"strings"
	"sync"
)

// CommandHandler processes one parsed command from a registered user.
type CommandHandler func(s *Server, u *User, e *Event)

// commandSpec is what the dispatcher keeps per registered command name.
type commandSpec struct {
	handler       CommandHandler
	minParams     int
	requireOper   bool
	requireReg    bool // false only for NICK/USER/PASS/QUIT/PING/PONG pre-registration
	owningModule  string // "" for built-ins; used by dropModuleCommands
}

// Dispatcher tokenizes incoming lines into Events and routes them to the
// registered handler for the command name, enforcing arity and
// registration/oper prerequisites uniformly so individual handlers don't
// have to repeat that boilerplate.
type Dispatcher struct {
	mu       sync.RWMutex
	commands map[string]*commandSpec
}

// NewDispatcher returns a Dispatcher with no commands registered; built-ins
// are added by registerBuiltinCommands (see commands_*.go).
func NewDispatcher() *Dispatcher {
	return &Dispatcher{commands: make(map[string]*commandSpec)}
}

// Register adds a command under name. moduleName is "" for a built-in
// command; a module-owned command is automatically dropped when that
// module unloads.
func (d *Dispatcher) Register(name string, minParams int, requireReg, requireOper bool, moduleName string, fn CommandHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.commands[strings.ToUpper(name)] = &commandSpec{
		handler:      fn,
		minParams:    minParams,
		requireOper:  requireOper,
		requireReg:   requireReg,
		owningModule: moduleName,
	}
}

// dropModuleCommands removes every command owned by name, called by
// Registry.Unload after a module's own OnUnload has run.
func (d *Dispatcher) dropModuleCommands(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for cmd, spec := range d.commands {
		if spec.owningModule == name {
			delete(d.commands, cmd)
		}
	}
}

// Dispatch parses line as one IRC event from u and routes it to the
// registered handler, enforcing arity, registration, and oper
// prerequisites. A line that does not parse is dropped silently; an unknown
// command is answered with ERR_UNKNOWNCOMMAND only when u is registered.
func (d *Dispatcher) Dispatch(s *Server, u *User, line []byte) {
	event := ParseEvent(string(line))
	if event == nil || event.Command == "" {
		return
	}

	d.mu.RLock()
	spec, ok := d.commands[strings.ToUpper(event.Command)]
	d.mu.RUnlock()

	if !ok {
		if u.Registered {
			u.Send(&Event{Command: ERR_UNKNOWNCOMMAND, Params: []string{u.Nick, event.Command}, Trailing: "Unknown command"})
		}
		return
	}

	if spec.requireReg && !u.Registered {
		u.Send(&Event{Command: ERR_NOTREGISTERED, Params: []string{"*"}, Trailing: "You have not registered"})
		return
	}
	if spec.requireOper && !u.Oper {
		u.Send(&Event{Command: ERR_NOPRIVILEGES, Params: []string{u.Nick}, Trailing: "Permission Denied- You're not an IRC operator"})
		return
	}
	if len(event.Params)+boolToInt(event.Trailing != "") < spec.minParams {
		u.Send(&Event{Command: ERR_NEEDMOREPARAMS, Params: []string{u.Nick, event.Command}, Trailing: "Not enough parameters"})
		return
	}

	d.callHandler(spec.handler, s, u, event)
}

// callHandler runs a command handler with panic recovery, matching the
// teacher's treatment of user-supplied callbacks: a bug in one handler (or
// a module-contributed one) must not take down the event loop.
func (d *Dispatcher) callHandler(fn CommandHandler, s *Server, u *User, e *Event) {
	defer func() {
		if p := recover(); p != nil {
			s.logger.Printf("recovered panic in command handler %s: %v", e.Command, p)
		}
	}()
	fn(s, u, e)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
