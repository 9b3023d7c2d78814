// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package ircd

import (
	"io"
	"os"

	"github.com/BurntSushi/toml"
)

// ListenConfig describes a single listening port.
type ListenConfig struct {
	Addr string // host:port, e.g. "0.0.0.0:6667"
	TLS  bool   // if true, bind through the TLS I/O hook using Cert/Key
	Cert string
	Key  string
}

// OperConfig is one entry in the configured oper (server administrator)
// credential list, checked by the OPER command.
type OperConfig struct {
	Name     string
	PassHash string // bcrypt hash, checked via golang.org/x/crypto/bcrypt
	Host     string // glob pattern the connection's host must match
}

// Config is the top-level, TOML-backed server configuration. Reloadable at
// runtime via SIGHUP/REHASH; a reload failure leaves the previous Config
// live (see ErrConfig).
type Config struct {
	ServerName  string `toml:"server_name"`
	NetworkName string `toml:"network_name"`
	Description string `toml:"description"`

	Listen []ListenConfig `toml:"listen"`

	MOTDPath string `toml:"motd_path"`

	ModuleDir      string   `toml:"module_dir"`
	AutoloadModule []string `toml:"autoload_modules"`

	Opers []OperConfig `toml:"opers"`

	PIDFile string `toml:"pid_file"`

	// ISUPPORT-affecting limits.
	NickLen     int `toml:"nick_len"`
	MaxChannels int `toml:"max_channels"`
	MaxBans     int `toml:"max_bans"`
	TopicLen    int `toml:"topic_len"`
	KickLen     int `toml:"kick_len"`
	MaxTargets  int `toml:"max_targets"`
	AwayLen     int `toml:"away_len"`

	XLineDefaultDuration int `toml:"xline_default_duration_seconds"`
	WhowasCap            int `toml:"whowas_cap"`

	AdminRPCAddr string `toml:"admin_rpc_addr"`

	Debug bool `toml:"debug"`

	// Out receives the server's log output; nil discards it. cmd/ircd sets
	// it from -logfile, or to a discarding writer under -nolog.
	Out io.Writer `toml:"-"`
}

// defaultConfig returns the configuration used when a value is not supplied
// by the TOML file, matching the ISUPPORT defaults named in SPEC_FULL.md §6.
func defaultConfig() Config {
	return Config{
		ServerName:           "irc.example.net",
		NetworkName:          "ExampleNet",
		MOTDPath:             "/etc/ircd/motd.txt",
		ModuleDir:            "/etc/ircd/modules",
		PIDFile:              "/var/run/ircd.pid",
		NickLen:              31,
		MaxChannels:          20,
		MaxBans:              60,
		TopicLen:             307,
		KickLen:              307,
		MaxTargets:           20,
		AwayLen:              200,
		XLineDefaultDuration: 0,
		WhowasCap:            10,
		AdminRPCAddr:         "127.0.0.1:7712",
	}
}

// LoadConfig reads and parses the TOML file at path, merged over
// defaultConfig. A malformed file is always an error; callers decide
// whether that is fatal (startup) or recoverable (rehash).
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	if _, err := os.Stat(path); err != nil {
		return nil, &ErrConfig{Path: path, Err: err}
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, &ErrConfig{Path: path, Err: err}
	}

	if len(cfg.Listen) == 0 {
		cfg.Listen = []ListenConfig{{Addr: "0.0.0.0:6667"}}
	}

	return &cfg, nil
}
