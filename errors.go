// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package ircd

import "fmt"

// ErrInvalidTarget reports a target the server cannot act on, named by
// Target: a listener or connection that is not TCP, or a user whose outbox
// is full ("<outbox full>").
type ErrInvalidTarget struct {
	Target string
}

func (e *ErrInvalidTarget) Error() string {
	return fmt.Sprintf("invalid target: %q", e.Target)
}

// ErrModuleExists is returned by the module registry when loading a module
// whose name is already registered.
type ErrModuleExists struct {
	Name string
}

func (e *ErrModuleExists) Error() string {
	return fmt.Sprintf("module already loaded: %s", e.Name)
}

// ErrModuleNotFound is returned when unloading, moving, or otherwise
// referencing a module name the registry doesn't know about.
type ErrModuleNotFound struct {
	Name string
}

func (e *ErrModuleNotFound) Error() string {
	return fmt.Sprintf("no such module: %s", e.Name)
}

// ErrModuleStatic is returned when attempting to unload a module whose
// StaticModule.Static method reports true.
type ErrModuleStatic struct {
	Name string
}

func (e *ErrModuleStatic) Error() string {
	return fmt.Sprintf("module is static and cannot be unloaded: %s", e.Name)
}

// ErrModuleFactory wraps a panic or error raised while constructing or
// initializing a module, so Load() always returns a plain error rather than
// letting a misbehaving module bring down the loop.
type ErrModuleFactory struct {
	Name string
	Err  error
}

func (e *ErrModuleFactory) Error() string {
	return fmt.Sprintf("module %s failed to initialize: %v", e.Name, e.Err)
}

func (e *ErrModuleFactory) Unwrap() error { return e.Err }

// ErrModuleSocketHook is returned by RegisterModuleSocket when owner does
// not implement ModuleSocketPollHook.
type ErrModuleSocketHook struct {
	Name string
}

func (e *ErrModuleSocketHook) Error() string {
	return fmt.Sprintf("module %s does not implement ModuleSocketPollHook", e.Name)
}

// ErrConfig is returned by the configuration loader for a malformed or
// invalid configuration file. At startup this is fatal; on rehash it is
// recoverable and the previous configuration remains live.
type ErrConfig struct {
	Path string
	Err  error
}

func (e *ErrConfig) Error() string {
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *ErrConfig) Unwrap() error { return e.Err }
