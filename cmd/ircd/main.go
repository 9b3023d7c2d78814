// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"syscall"
	"time"

	flags "github.com/jessevdk/go-flags"

	"github.com/lrstanley/ircd"
)

type options struct {
	Config      string `short:"c" long:"config" description:"path to the server's TOML configuration file" default:"/etc/ircd/ircd.conf"`
	NoFork      bool   `long:"nofork" description:"run in the foreground instead of daemonizing"`
	Debug       bool   `long:"debug" description:"set the configuration's Debug field (not read by the server core)"`
	NoLog       bool   `long:"nolog" description:"discard all log output"`
	Wait        bool   `long:"wait" description:"sleep 6 seconds before starting"`
	NoLimit     bool   `long:"nolimit" description:"deprecated: do not raise the process file-descriptor limit"`
	NoTraceback bool   `long:"notraceback" description:"accepted for compatibility; has no effect"`
	LogFile     string `long:"logfile" description:"path to write log output to" default:"/var/log/ircd.log"`
}

func main() {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		os.Exit(1)
	}

	if !opts.NoFork {
		daemonize(opts)
		return
	}

	run(opts)
}

func run(opts options) {
	if opts.Wait {
		time.Sleep(6 * time.Second)
	}

	cfg, err := ircd.LoadConfig(opts.Config)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}

	if !opts.NoLog {
		f, err := os.OpenFile(opts.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintln(os.Stderr, "log error:", err)
			os.Exit(1)
		}
		defer f.Close()
		cfg.Out = f
	} else {
		cfg.Out = io.Discard
	}
	cfg.Debug = opts.Debug

	if !opts.NoLimit {
		raiseFileLimit()
	} else {
		fmt.Fprintln(os.Stderr, "warning: --nolimit is deprecated")
	}

	s := ircd.NewServer(*cfg)
	if err := s.Start(nil); err != nil {
		fmt.Fprintln(os.Stderr, "startup error:", err)
		os.Exit(1)
	}

	writePIDFile(cfg.PIDFile)
	defer os.Remove(cfg.PIDFile)

	ircd.WatchSignalsAndRun(s, opts.Config)
}

// daemonize re-execs the current binary with --nofork, detached from the
// controlling terminal, the same way a classic Unix daemon forks and exits
// its parent.
func daemonize(opts options) {
	args := append([]string{"--nofork"}, os.Args[1:]...)
	attr := &os.ProcAttr{
		Dir:   ".",
		Env:   os.Environ(),
		Files: []*os.File{nil, nil, nil},
		Sys:   &syscall.SysProcAttr{Setsid: true},
	}

	proc, err := os.StartProcess(os.Args[0], append([]string{os.Args[0]}, args...), attr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "daemonize error:", err)
		os.Exit(1)
	}
	fmt.Println("started daemon, pid", proc.Pid)
}

func writePIDFile(path string) {
	f, err := os.Create(path)
	if err != nil {
		return
	}
	defer f.Close()
	fmt.Fprintln(f, strconv.Itoa(os.Getpid()))
}

func raiseFileLimit() {
	var rlim syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rlim); err != nil {
		return
	}
	rlim.Cur = rlim.Max
	_ = syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rlim)
}
