// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package ircd

import (
	"bytes"
	"strconv"

	"github.com/intel/tfortools"
)

// statsRow is one line of the STATS summary table.
type statsRow struct {
	Metric string
	Value  string
}

const statsTemplate = `{{table .}}`

// FormatStats renders the server's current STATS summary as an
// aligned table, the way an admin reading it over NOTICE expects.
func FormatStats(s *Server) string {
	rows := []statsRow{
		{"users", strconv.Itoa(s.Users.Count())},
		{"channels", strconv.Itoa(s.Channels.Count())},
		{"modules", strconv.Itoa(s.Modules.Count())},
		{"xlines", strconv.Itoa(len(s.XLines.All()))},
		{"uptime_seconds", strconv.Itoa(int(s.Uptime().Seconds()))},
	}

	var buf bytes.Buffer
	if err := tfortools.OutputToTemplate(&buf, "stats", statsTemplate, rows, nil); err != nil {
		return err.Error()
	}
	return buf.String()
}
