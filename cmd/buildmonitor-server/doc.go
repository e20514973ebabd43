// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Buildmonitor-server is the fix coordination server shared by every
// monitor on a team.
//
// It records which user volunteered to fix which project and answers
// fix_state queries over TCP (see package fixwire for the framing).
// Claims are kept in memory and, when state_file is set, written to a
// CBOR file after every change so a restart keeps them.
//
// When feed.listen is set the current claims are also served over
// HTTP and websocket (see package feed).
//
//	buildmonitor-server --config /etc/buildmonitor/server.yaml
package main
