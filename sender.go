// Copyright 2016 Liam Stanley <me@liamstanley.io>. All rights reserved.
// Use of this source code is governed by the MIT license that can be
// found in the LICENSE file.

package ircd

// Sender is anything an Event can be queued to: a live User, or in tests, a
// recording stub.
type Sender interface {
	// Send queues the given event for delivery and returns an error if it
	// could not be queued. It never blocks on the network.
	Send(*Event) error
}
