// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package ircd

import (
	"github.com/valyala/gorpc"
)

// AdminRPC exposes a small out-of-band control surface (status, rehash,
// module load/unload) for local tooling that would rather not speak raw
// IRC to administer the daemon.
type AdminRPC struct {
	server   *gorpc.Server
	dispatch *gorpc.Dispatcher
	ircd     *Server
}

// NewAdminRPC binds a gorpc server at addr, dispatching to methods on the
// running Server.
func NewAdminRPC(s *Server, addr string) *AdminRPC {
	d := gorpc.NewDispatcher()
	a := &AdminRPC{dispatch: d, ircd: s}

	d.AddFunc("Status", a.status)
	d.AddFunc("Rehash", a.rehash)
	d.AddFunc("LoadModule", a.loadModule)
	d.AddFunc("UnloadModule", a.unloadModule)

	rpcServer := gorpc.NewTCPServer(addr, d.NewHandlerFunc())
	a.server = rpcServer
	return a
}

// Start begins serving RPC requests in the background.
func (a *AdminRPC) Start() error {
	return a.server.Start()
}

// Stop shuts down the RPC listener.
func (a *AdminRPC) Stop() {
	a.server.Stop()
}

// AdminStatus is the structured reply to the Status RPC call.
type AdminStatus struct {
	Users    int
	Channels int
	Modules  int
	Uptime   int64
}

func (a *AdminRPC) status(clientAddr string, _ struct{}) *AdminStatus {
	return &AdminStatus{
		Users:    a.ircd.Users.Count(),
		Channels: a.ircd.Channels.Count(),
		Modules:  a.ircd.Modules.Count(),
		Uptime:   int64(a.ircd.Uptime().Seconds()),
	}
}

func (a *AdminRPC) rehash(clientAddr string, path string) string {
	if path == "" {
		path = defaultConfigPath
	}
	if err := a.ircd.Rehash(path); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}

func (a *AdminRPC) loadModule(clientAddr string, name string) string {
	factory, ok := staticModuleFactories[name]
	if !ok {
		return "error: no such module"
	}
	if err := a.ircd.Modules.Load(factory()); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}

func (a *AdminRPC) unloadModule(clientAddr string, name string) string {
	if err := a.ircd.Modules.Unload(name); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}
