// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package fix holds the coordination server's registry of who is
// fixing which broken project.
//
// The registry keeps at most one Record per project key. Every
// mutation happens under a single lock and pushes a full snapshot to
// subscribers before the lock is released, so subscribers observe
// mutations in order. Persistence to a Store happens after the lock is
// released; a slow disk never delays a request handler holding the
// lock.
//
// Keys are whatever identity the client's protocol version uses: a bare
// job name under version 1 and a job URL under version 2. Query bridges
// the two so that a version 1 client still sees claims made by a
// version 2 client for a job of the same name.
package fix
