// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package ircd

import "golang.org/x/crypto/bcrypt"

// checkOperPassword reports whether pass matches the configured bcrypt
// hash for an OPER credential.
func checkOperPassword(hash, pass string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pass)) == nil
}
