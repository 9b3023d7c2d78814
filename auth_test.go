// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package ircd

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestCheckOperPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("GenerateFromPassword: %v", err)
	}

	if !checkOperPassword(string(hash), "hunter2") {
		t.Fatalf("expected correct password to verify")
	}
	if checkOperPassword(string(hash), "wrong") {
		t.Fatalf("expected incorrect password to fail verification")
	}
}
