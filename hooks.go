// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package ircd

// Hook identifies one of the fixed set of points a module can attach to.
// The identifier space is closed (unlike commands, which modules can add to
// freely) so it is represented as a small enum rather than a string, and
// every module's participation is tracked with a fixed-size bitmap indexed
// by Hook.
type Hook uint8

const (
	HookUserPreNotice Hook = iota
	HookUserNotice
	HookUserPrePrivmsg
	HookUserPrivmsg
	HookUserJoin
	HookUserPart
	HookUserQuit
	HookUserKick
	HookUserNickChange
	HookUserConnect
	HookRehash
	HookLoadModule
	HookUnloadModule
	HookCheckReady
	HookBackgroundTimer
	HookCleanup
	Hook005Numeric
	HookRawSocketAccept
	HookRawSocketRead
	HookRawSocketWrite
	HookRawSocketClose
	HookModuleSocketPoll

	hookCount // sentinel: number of hook identifiers, must stay below 256
)

// NoticeKind distinguishes the three targets a NOTICE/PRIVMSG can reach, so
// a single OnUserPreNotice/OnUserNotice hook pair can serve all three
// branches of the dispatcher's normative handler.
type NoticeKind int

const (
	NoticeKindUser NoticeKind = iota
	NoticeKindChannel
	NoticeKindServer
)

// Per-hook interfaces. A module is considered to "implement" Hook X if its
// value satisfies the corresponding interface below; the registry computes
// a module's bitmap once at load time via a single type assertion per hook,
// rather than requiring every module to implement every hook as a no-op.

// UserPreNoticeHook is the collector hook run before a NOTICE is delivered.
// Returning veto=true stops delivery; *text may be rewritten in place and
// the rewritten value is what recipients (and OnUserNotice) see.
type UserPreNoticeHook interface {
	OnUserPreNotice(s *Server, sender *User, targetName string, kind NoticeKind, text *string, status int) (veto bool)
}

// UserNoticeHook is the fan-out hook run after a NOTICE has been delivered.
type UserNoticeHook interface {
	OnUserNotice(s *Server, sender *User, targetName string, kind NoticeKind, text string, status int)
}

// UserPrePrivmsgHook mirrors UserPreNoticeHook for PRIVMSG.
type UserPrePrivmsgHook interface {
	OnUserPrePrivmsg(s *Server, sender *User, targetName string, kind NoticeKind, text *string, status int) (veto bool)
}

// UserPrivmsgHook mirrors UserNoticeHook for PRIVMSG.
type UserPrivmsgHook interface {
	OnUserPrivmsg(s *Server, sender *User, targetName string, kind NoticeKind, text string, status int)
}

// UserJoinHook fires (fan-out) after a user joins a channel.
type UserJoinHook interface {
	OnUserJoin(s *Server, user *User, ch *Channel)
}

// UserPartHook fires (fan-out) after a user parts a channel.
type UserPartHook interface {
	OnUserPart(s *Server, user *User, ch *Channel, reason string)
}

// UserQuitHook fires (fan-out) when a user disconnects.
type UserQuitHook interface {
	OnUserQuit(s *Server, user *User, reason string)
}

// UserKickHook fires (fan-out) when a user is kicked from a channel.
type UserKickHook interface {
	OnUserKick(s *Server, kicker *User, ch *Channel, kicked *User, reason string)
}

// UserNickChangeHook fires (fan-out) after a nickname change is accepted.
type UserNickChangeHook interface {
	OnUserNickChange(s *Server, user *User, oldNick string)
}

// UserConnectHook fires (fan-out) once a user completes registration
// (NICK+USER both seen).
type UserConnectHook interface {
	OnUserConnect(s *Server, user *User)
}

// RehashHook fires (fan-out) after configuration has been reloaded.
type RehashHook interface {
	OnRehash(s *Server)
}

// LoadModuleHook fires (fan-out) after a module finishes loading.
type LoadModuleHook interface {
	OnLoadModule(s *Server, name string)
}

// UnloadModuleHook fires (fan-out) after a module finishes unloading.
type UnloadModuleHook interface {
	OnUnloadModule(s *Server, name string)
}

// CheckReadyHook is a collector: every participating module must report
// ready for AllModulesReportReady to return true.
type CheckReadyHook interface {
	OnCheckReady(s *Server) (ready bool)
}

// BackgroundTimerHook fires (fan-out) on the 5-second housekeeping tick.
type BackgroundTimerHook interface {
	OnBackgroundTimer(s *Server, now int64)
}

// CleanupHook fires once per channel, then once per user, when a module is
// being unloaded, so it can drop any per-entity metadata it attached.
type CleanupHook interface {
	OnCleanupChannel(s *Server, ch *Channel)
	OnCleanupUser(s *Server, u *User)
}

// Numeric005Hook lets a module contribute additional ISUPPORT tokens.
type Numeric005Hook interface {
	On005Numeric(s *Server, tokens []string) []string
}

// RawSocketHooks mirror the I/O hook interface (component K); a module
// implementing these intercepts raw bytes on descriptors it has bound.
type RawSocketAcceptHook interface {
	OnRawSocketAccept(s *Server, fd int, remote string) error
}
type RawSocketReadHook interface {
	OnRawSocketRead(s *Server, fd int, p []byte) (n int, err error)
}
type RawSocketWriteHook interface {
	OnRawSocketWrite(s *Server, fd int, p []byte) (n int, err error)
}
type RawSocketCloseHook interface {
	OnRawSocketClose(s *Server, fd int)
}

// ModuleSocketPollHook lets a module own a descriptor outside the normal
// client/listener lifecycle (an ESTAB_MODULE descriptor per the reactor's
// descriptor-kind tagging). The loop calls Poll once per readiness event on
// that fd; a false return tells the loop to deregister and close it.
type ModuleSocketPollHook interface {
	OnModuleSocketPoll(s *Server, fd int, ev ReadyEvent) (keep bool)
}

// implementedHooks computes the bitmap of hooks m participates in via a
// single type assertion per hook point.
func implementedHooks(m Module) (bitmap [hookCount]bool) {
	if _, ok := m.(UserPreNoticeHook); ok {
		bitmap[HookUserPreNotice] = true
	}
	if _, ok := m.(UserNoticeHook); ok {
		bitmap[HookUserNotice] = true
	}
	if _, ok := m.(UserPrePrivmsgHook); ok {
		bitmap[HookUserPrePrivmsg] = true
	}
	if _, ok := m.(UserPrivmsgHook); ok {
		bitmap[HookUserPrivmsg] = true
	}
	if _, ok := m.(UserJoinHook); ok {
		bitmap[HookUserJoin] = true
	}
	if _, ok := m.(UserPartHook); ok {
		bitmap[HookUserPart] = true
	}
	if _, ok := m.(UserQuitHook); ok {
		bitmap[HookUserQuit] = true
	}
	if _, ok := m.(UserKickHook); ok {
		bitmap[HookUserKick] = true
	}
	if _, ok := m.(UserNickChangeHook); ok {
		bitmap[HookUserNickChange] = true
	}
	if _, ok := m.(UserConnectHook); ok {
		bitmap[HookUserConnect] = true
	}
	if _, ok := m.(RehashHook); ok {
		bitmap[HookRehash] = true
	}
	if _, ok := m.(LoadModuleHook); ok {
		bitmap[HookLoadModule] = true
	}
	if _, ok := m.(UnloadModuleHook); ok {
		bitmap[HookUnloadModule] = true
	}
	if _, ok := m.(CheckReadyHook); ok {
		bitmap[HookCheckReady] = true
	}
	if _, ok := m.(BackgroundTimerHook); ok {
		bitmap[HookBackgroundTimer] = true
	}
	if _, ok := m.(CleanupHook); ok {
		bitmap[HookCleanup] = true
	}
	if _, ok := m.(Numeric005Hook); ok {
		bitmap[Hook005Numeric] = true
	}
	if _, ok := m.(RawSocketAcceptHook); ok {
		bitmap[HookRawSocketAccept] = true
	}
	if _, ok := m.(RawSocketReadHook); ok {
		bitmap[HookRawSocketRead] = true
	}
	if _, ok := m.(RawSocketWriteHook); ok {
		bitmap[HookRawSocketWrite] = true
	}
	if _, ok := m.(RawSocketCloseHook); ok {
		bitmap[HookRawSocketClose] = true
	}
	if _, ok := m.(ModuleSocketPollHook); ok {
		bitmap[HookModuleSocketPoll] = true
	}
	return bitmap
}
