// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package ircd

import (
	"golang.org/x/sys/unix"
)

// ReadyEvent reports one descriptor that became ready since the last Wait.
type ReadyEvent struct {
	FD       int
	Readable bool
	Writable bool
	Error    bool
}

// DescriptorKind tags a registered descriptor with what the loop should do
// with it once it comes back ready, so the dispatch loop never has to guess.
type DescriptorKind int

const (
	KindListener DescriptorKind = iota
	KindEstabClient
	KindEstabModule
	KindEstabDNS
)

// Multiplexer is the reactor's readiness-notification source, generalized
// behind an interface so the event loop driver (loop.go) doesn't depend on
// epoll directly. epollMultiplexer is the only implementation.
type Multiplexer interface {
	Add(fd int, write bool, kind DescriptorKind) error
	Modify(fd int, write bool) error
	Remove(fd int) error
	TypeOf(fd int) (DescriptorKind, bool)
	Wait(timeoutMs int) ([]ReadyEvent, error)
	Close() error
}

// epollMultiplexer wraps a Linux epoll instance. epoll itself carries no
// per-fd metadata, so the descriptor kind a caller registered with is kept
// in a side table keyed by fd.
type epollMultiplexer struct {
	epfd   int
	events []unix.EpollEvent
	kinds  map[int]DescriptorKind
}

// NewMultiplexer returns the platform reactor, sized to accept up to
// maxEvents ready descriptors per Wait call.
func NewMultiplexer(maxEvents int) (Multiplexer, error) {
	epfd, err := unix.EpollCreate1(0)
	if err != nil {
		return nil, err
	}
	if maxEvents <= 0 {
		maxEvents = 256
	}
	return &epollMultiplexer{epfd: epfd, events: make([]unix.EpollEvent, maxEvents), kinds: make(map[int]DescriptorKind)}, nil
}

func interestMask(write bool) uint32 {
	mask := uint32(unix.EPOLLIN | unix.EPOLLRDHUP)
	if write {
		mask |= unix.EPOLLOUT
	}
	return mask
}

func (m *epollMultiplexer) Add(fd int, write bool, kind DescriptorKind) error {
	ev := unix.EpollEvent{Events: interestMask(write), Fd: int32(fd)}
	if err := unix.EpollCtl(m.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return err
	}
	m.kinds[fd] = kind
	return nil
}

func (m *epollMultiplexer) Modify(fd int, write bool) error {
	ev := unix.EpollEvent{Events: interestMask(write), Fd: int32(fd)}
	return unix.EpollCtl(m.epfd, unix.EPOLL_CTL_MOD, fd, &ev)
}

func (m *epollMultiplexer) Remove(fd int) error {
	delete(m.kinds, fd)
	return unix.EpollCtl(m.epfd, unix.EPOLL_CTL_DEL, fd, nil)
}

func (m *epollMultiplexer) TypeOf(fd int) (DescriptorKind, bool) {
	kind, ok := m.kinds[fd]
	return kind, ok
}

func (m *epollMultiplexer) Wait(timeoutMs int) ([]ReadyEvent, error) {
	n, err := unix.EpollWait(m.epfd, m.events, timeoutMs)
	if err != nil {
		if err == unix.EINTR {
			return nil, nil
		}
		return nil, err
	}

	out := make([]ReadyEvent, 0, n)
	for i := 0; i < n; i++ {
		ev := m.events[i]
		out = append(out, ReadyEvent{
			FD:       int(ev.Fd),
			Readable: ev.Events&unix.EPOLLIN != 0,
			Writable: ev.Events&unix.EPOLLOUT != 0,
			Error:    ev.Events&(unix.EPOLLERR|unix.EPOLLHUP|unix.EPOLLRDHUP) != 0,
		})
	}
	return out, nil
}

func (m *epollMultiplexer) Close() error {
	return unix.Close(m.epfd)
}
