// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package ircd

import (
	"io"
	"io/ioutil"
	"log"
	"os"
)

// newLogger builds the server's debug logger the way the teacher's Client
// built one: an optional io.Writer from configuration, discarding output
// entirely when unset.
func newLogger(out io.Writer, prefix string) *log.Logger {
	if out == nil {
		out = ioutil.Discard
	}
	return log.New(out, prefix, log.LstdFlags)
}

// openLogFile opens (creating if necessary) the file at path for append.
// Nothing in the package calls it; cmd/ircd opens its -logfile directly and
// SIGHUP does not reopen the log.
func openLogFile(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
}
