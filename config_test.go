// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package ircd

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatalf("expected error loading a nonexistent config file")
	}
}

func TestLoadConfigDefaultsAndOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ircd.toml")
	body := `
server_name = "irc.test.net"
nick_len = 16

[[listen]]
addr = "0.0.0.0:6697"
tls = true
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.ServerName != "irc.test.net" {
		t.Fatalf("expected overridden server_name, got %q", cfg.ServerName)
	}
	if cfg.NickLen != 16 {
		t.Fatalf("expected overridden nick_len, got %d", cfg.NickLen)
	}
	if cfg.MaxChannels != defaultConfig().MaxChannels {
		t.Fatalf("expected default max_channels to survive, got %d", cfg.MaxChannels)
	}
	if len(cfg.Listen) != 1 || cfg.Listen[0].Addr != "0.0.0.0:6697" || !cfg.Listen[0].TLS {
		t.Fatalf("expected configured listener to be parsed, got %+v", cfg.Listen)
	}
}

func TestLoadConfigDefaultListener(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ircd.toml")
	if err := os.WriteFile(path, []byte(`server_name = "irc.test.net"`), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if len(cfg.Listen) != 1 || cfg.Listen[0].Addr != "0.0.0.0:6667" {
		t.Fatalf("expected a default plaintext listener, got %+v", cfg.Listen)
	}
}
