// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package ircd

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Module is the minimum a dynamically loaded extension unit must provide.
// Everything else a module does is expressed by additionally implementing
// one or more of the hook interfaces in hooks.go, and optionally Loader,
// Unloader, StaticModule, or PriorityModule below.
type Module interface {
	Name() string
}

// Loader lets a module run setup when it is loaded (register commands,
// allocate state). Returning an error aborts the load.
type Loader interface {
	OnLoad(s *Server) error
}

// Unloader lets a module run teardown before it is removed from the
// registry, after CleanupHook has already run over every channel and user.
type Unloader interface {
	OnUnload(s *Server) error
}

// StaticModule marks a module that cannot be unloaded at runtime (compiled
// in, not dynamically loaded).
type StaticModule interface {
	Static() bool
}

// PriorityHint is a module's request for where in hook-iteration order it
// should sit relative to its peers.
type PriorityHint int

const (
	PriorityDontCare PriorityHint = iota
	PriorityFirst
	PriorityLast
	PriorityBefore
	PriorityAfter
)

// PriorityModule lets a module request a specific load-time position.
// Pivot names another module and is only meaningful for PriorityBefore/
// PriorityAfter.
type PriorityModule interface {
	Priority() (hint PriorityHint, pivot string)
}

type modSlot struct {
	module    Module
	bitmap    [hookCount]bool
	unloading bool
}

// Registry is the module table: a priority-ordered, growable sequence of
// loaded modules, a per-hook bitmap per module, and a global per-hook
// implementation counter used to skip hook iteration entirely when no
// module cares about it.
//
// The distilled design this generalizes used a fixed 256-slot array because
// the reference implementation's module count was capped by its hook-id
// space; here the hook-id space is still capped at 256 (hookCount), but the
// module table itself grows as modules load, since nothing requires the two
// to share a bound.
type Registry struct {
	mu     sync.Mutex
	server *Server

	slots  []*modSlot
	byName map[string]int
	global [hookCount]int

	iterating      int32
	pendingRemoval []string
}

// NewRegistry returns an empty module registry bound to s.
func NewRegistry(s *Server) *Registry {
	return &Registry{server: s, byName: make(map[string]int)}
}

// Count returns the number of currently loaded modules.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.slots)
}

// Names returns the loaded module names in priority order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.slots))
	for _, sl := range r.slots {
		out = append(out, sl.module.Name())
	}
	return out
}

// Load registers m under its own Name(), runs its OnLoad hook, applies its
// requested priority, and fires OnLoadModule.
func (r *Registry) Load(m Module) (err error) {
	name := m.Name()

	r.mu.Lock()
	if _, exists := r.byName[name]; exists {
		r.mu.Unlock()
		return &ErrModuleExists{Name: name}
	}

	sl := &modSlot{module: m, bitmap: implementedHooks(m)}
	r.slots = append(r.slots, sl)
	r.byName[name] = len(r.slots) - 1
	r.addCounters(sl.bitmap)
	r.mu.Unlock()

	if loader, ok := m.(Loader); ok {
		if ferr := r.callFactory(name, loader); ferr != nil {
			r.rollback(name)
			return ferr
		}
	}

	if pm, ok := m.(PriorityModule); ok {
		hint, pivot := pm.Priority()
		r.applyPriority(name, hint, pivot)
	}

	r.fanOut(HookLoadModule, func(other Module) {
		if h, ok := other.(LoadModuleHook); ok {
			h.OnLoadModule(r.server, name)
		}
	})

	return nil
}

// callFactory runs a module's OnLoad, converting any panic into a plain
// error so a misbehaving module cannot bring down the loop.
func (r *Registry) callFactory(name string, loader Loader) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &ErrModuleFactory{Name: name, Err: fmt.Errorf("panic: %v", p)}
		}
	}()

	if ferr := loader.OnLoad(r.server); ferr != nil {
		return &ErrModuleFactory{Name: name, Err: ferr}
	}
	return nil
}

func (r *Registry) rollback(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, ok := r.byName[name]
	if !ok {
		return
	}
	r.subCounters(r.slots[idx].bitmap)
	r.removeSlotLocked(idx)
}

// Unload removes a module: runs CleanupHook over every channel then every
// user, fires OnUnloadModule, runs the module's own OnUnload, drops its
// commands, and removes it from the table.
//
// If Unload is called from inside a fanOut/collect iteration (a hook handler that
// unloads its own or another module), the slot is marked unloading
// immediately -- it stops participating in any further hook iteration right
// away -- but the actual compaction of the slot table is deferred until the
// outstanding iteration(s) finish, so indices a snapshot captured stay valid
// for its duration.
func (r *Registry) Unload(name string) error {
	r.mu.Lock()
	idx, ok := r.byName[name]
	if !ok {
		r.mu.Unlock()
		return &ErrModuleNotFound{Name: name}
	}
	sl := r.slots[idx]
	if sm, ok := sl.module.(StaticModule); ok && sm.Static() {
		r.mu.Unlock()
		return &ErrModuleStatic{Name: name}
	}
	sl.unloading = true
	r.mu.Unlock()

	if hook, ok := sl.module.(CleanupHook); ok {
		r.server.Channels.ForEach(func(ch *Channel) { hook.OnCleanupChannel(r.server, ch) })
		r.server.Users.ForEach(func(u *User) { hook.OnCleanupUser(r.server, u) })
	}

	r.fanOut(HookUnloadModule, func(other Module) {
		if other.Name() == name {
			return
		}
		if h, ok := other.(UnloadModuleHook); ok {
			h.OnUnloadModule(r.server, name)
		}
	})

	if unloader, ok := sl.module.(Unloader); ok {
		_ = unloader.OnUnload(r.server)
	}

	r.server.Dispatcher.dropModuleCommands(name)

	r.mu.Lock()
	r.subCounters(sl.bitmap)
	if atomic.LoadInt32(&r.iterating) > 0 {
		r.pendingRemoval = append(r.pendingRemoval, name)
		r.mu.Unlock()
		return nil
	}
	r.removeSlotLocked(idx)
	r.mu.Unlock()

	return nil
}

// removeSlotLocked compacts the slot slice, shifting every later slot's
// index down by one and subtracting nothing further (counters were already
// adjusted by the caller). Must hold r.mu.
func (r *Registry) removeSlotLocked(idx int) {
	name := r.slots[idx].module.Name()
	r.slots = append(r.slots[:idx], r.slots[idx+1:]...)
	delete(r.byName, name)
	for n, i := range r.byName {
		if i > idx {
			r.byName[n] = i - 1
		}
	}
}

func (r *Registry) addCounters(bitmap [hookCount]bool) {
	for h := Hook(0); h < hookCount; h++ {
		if bitmap[h] {
			r.global[h]++
		}
	}
}

func (r *Registry) subCounters(bitmap [hookCount]bool) {
	for h := Hook(0); h < hookCount; h++ {
		if bitmap[h] {
			r.global[h]--
		}
	}
}

// applyPriority moves the named module's slot per its requested hint.
func (r *Registry) applyPriority(name string, hint PriorityHint, pivot string) {
	switch hint {
	case PriorityFirst:
		r.MoveFirst(name)
	case PriorityLast:
		r.MoveLast(name)
	case PriorityBefore:
		r.MoveBefore(name, pivot)
	case PriorityAfter:
		r.MoveAfter(name, pivot)
	}
}

func (r *Registry) moveTo(name string, destIndex int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, ok := r.byName[name]
	if !ok {
		return
	}

	sl := r.slots[idx]
	r.slots = append(r.slots[:idx], r.slots[idx+1:]...)

	if destIndex > idx {
		destIndex--
	}
	if destIndex < 0 {
		destIndex = 0
	}
	if destIndex > len(r.slots) {
		destIndex = len(r.slots)
	}

	r.slots = append(r.slots, nil)
	copy(r.slots[destIndex+1:], r.slots[destIndex:])
	r.slots[destIndex] = sl

	for n := range r.byName {
		for i, s := range r.slots {
			if s.module.Name() == n {
				r.byName[n] = i
				break
			}
		}
	}
}

// MoveFirst moves name to the highest-priority slot.
func (r *Registry) MoveFirst(name string) { r.moveTo(name, 0) }

// MoveLast moves name to the lowest-priority slot.
func (r *Registry) MoveLast(name string) {
	r.mu.Lock()
	n := len(r.slots)
	r.mu.Unlock()
	r.moveTo(name, n)
}

// MoveBefore moves name to immediately precede pivot in iteration order.
func (r *Registry) MoveBefore(name, pivot string) {
	r.mu.Lock()
	idx, ok := r.byName[pivot]
	r.mu.Unlock()
	if !ok {
		return
	}
	r.moveTo(name, idx)
}

// MoveAfter moves name to immediately follow pivot in iteration order.
func (r *Registry) MoveAfter(name, pivot string) {
	r.mu.Lock()
	idx, ok := r.byName[pivot]
	r.mu.Unlock()
	if !ok {
		return
	}
	r.moveTo(name, idx+1)
}

// beginIteration/endIteration bracket a snapshot-based fanOut/collect so Unload
// knows whether it is safe to compact the slot table immediately.
func (r *Registry) beginIteration() { atomic.AddInt32(&r.iterating, 1) }

func (r *Registry) endIteration() {
	if atomic.AddInt32(&r.iterating, -1) != 0 {
		return
	}

	r.mu.Lock()
	pending := r.pendingRemoval
	r.pendingRemoval = nil
	r.mu.Unlock()

	for _, name := range pending {
		r.mu.Lock()
		if idx, ok := r.byName[name]; ok {
			r.removeSlotLocked(idx)
		}
		r.mu.Unlock()
	}
}

// snapshotFor returns the modules implementing hook, in priority order, as
// of right now. Taking this snapshot is what lets Unload run concurrently
// (from within a nested hook call) without invalidating the iteration in
// progress.
func (r *Registry) snapshotFor(hook Hook) []Module {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Module, 0, len(r.slots))
	for _, sl := range r.slots {
		if sl.unloading || !sl.bitmap[hook] {
			continue
		}
		out = append(out, sl.module)
	}
	return out
}

// fanOut calls fn once for every module implementing hook, in priority
// order, ignoring any return value. A no-op if global[hook] is zero.
func (r *Registry) fanOut(hook Hook, fn func(Module)) {
	r.mu.Lock()
	n := r.global[hook]
	r.mu.Unlock()
	if n == 0 {
		return
	}

	r.beginIteration()
	defer r.endIteration()

	for _, m := range r.snapshotFor(hook) {
		fn(m)
	}
}

// collect calls fn for every module implementing hook, in priority order,
// stopping at the first call that returns true (a veto). Returns whether
// any module vetoed. A no-op (false) if global[hook] is zero.
func (r *Registry) collect(hook Hook, fn func(Module) bool) bool {
	r.mu.Lock()
	n := r.global[hook]
	r.mu.Unlock()
	if n == 0 {
		return false
	}

	r.beginIteration()
	defer r.endIteration()

	for _, m := range r.snapshotFor(hook) {
		if fn(m) {
			return true
		}
	}
	return false
}

// AllModulesReportReady runs OnCheckReady across every module implementing
// it and reports whether all of them are ready. Server.Start does not call
// it; accepting connections is not gated on it.
func (r *Registry) AllModulesReportReady() bool {
	allReady := true
	r.fanOut(HookCheckReady, func(m Module) {
		if h, ok := m.(CheckReadyHook); ok && !h.OnCheckReady(r.server) {
			allReady = false
		}
	})
	return allReady
}
