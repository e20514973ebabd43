// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package monitor ties one desktop monitor's components together: the
// poll engine's snapshots, the notification policy, and the fix
// coordination client.
//
// For every published cycle the monitor diffs the new tree against the
// previous one and delivers notifications, asks the coordination
// server who is fixing which project, and republishes the tree
// annotated with the last known volunteers.
//
// Fix state responses are reconciled against the current tree. A claim
// on a project whose current build is at or past the claimed build
// either marks the project's volunteer (the project is still failing)
// or is reported back to the server as fixed (the project passes
// again). Claims ahead of the tree are left alone until the tree
// catches up.
package monitor
