// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package feed exposes the monitor and the coordination server over
// HTTP so an external UI can render them.
//
// Both feeds answer GET /health and stream changes on GET /ws as JSON
// text messages of the form {"type": ..., "data": ...}. A websocket
// client receives the current state immediately after the upgrade and
// every change after that.
//
// Monitor feed:
//
//	GET  /api/projects                  visible tree, folders first
//	GET  /api/projects/{id}             one project
//	POST /api/projects/{id}/volunteer   claim the fix of a failing project
//	GET  /api/summary                   aggregate status and last CI error
//	GET  /ws                            "tree", "notification" and "error" events
//
// Coordination server feed:
//
//	GET  /api/fixes                     every claim, sorted by key
//	GET  /ws                            "fixes" events
package feed
