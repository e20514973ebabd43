// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Buildmonitor watches one or more Jenkins servers and reports their
// state.
//
// Every refresh interval it walks each server's job tree, folders
// included, and fetches the last build of every visible job. Projects
// on the notify list raise a desktop notification when they break or
// get fixed. The fix coordination server is asked who is fixing each
// failing project, and projects that pass again are reported fixed.
//
// The annotated tree is served to local UIs over HTTP and websocket
// (see package feed). POST /api/projects/{id}/volunteer claims a fix.
//
// The settings file is watched; edits apply from the next refresh
// without a restart. Server credentials and the coordination server
// address are read once at startup.
//
//	buildmonitor --config ~/.config/buildmonitor.yaml
package main
