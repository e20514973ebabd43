// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package fixclient sends a monitor's requests to the coordination
// server one at a time.
//
// A Dispatcher owns an ordered queue and one worker goroutine. The
// worker takes the oldest entry, opens a fresh TCP connection, sends
// the request, and for fix_state reads the response. The entry stays
// at the head of the queue until that exchange finishes, so Enqueue
// can refuse a second fix_state query while one is queued or in
// flight. Mutations are never de-duplicated.
//
// A failed exchange (dial error, timeout, bad response) drops the
// entry and moves on to the next; nothing is retried. The monitor
// re-queries fix state every poll cycle, so a lost query heals itself.
package fixclient
