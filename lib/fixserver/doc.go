// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package fixserver is the TCP coordination server that answers fix
// state queries and applies fix claims to a fix.Registry.
//
// Each accepted connection is handled on its own goroutine: read one
// request frame within the read timeout, apply it, write a response
// for fix_state queries only, close. A request that cannot be decoded,
// carries an unsupported version, or names an unknown request type is
// dropped without a reply. Handlers only contend on the registry lock,
// which is never held across network I/O.
//
// Serve returns after its context is cancelled and every in-flight
// handler has finished, or after the shutdown timeout, whichever comes
// first. Connections still open at the deadline are closed.
package fixserver
