// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package poll runs the refresh cycle that turns a set of CI server
// roots into one project.Tree.
//
// A cycle has four phases:
//
//   - Discover lists every server root and, recursively, every folder
//     found in a listing. Leaf jobs are filtered and placed in the
//     tree under their folder.
//   - Detail fetches the last build of every leaf with bounded
//     concurrency and fills in build number, timing, and culprits.
//   - Last success fetches the timestamp of each leaf's last
//     successful build.
//   - Emit replaces the published snapshot and notifies subscribers.
//
// Discovery completes through a barrier keyed by the cycle's
// generation. A folder request is issued on the barrier before its
// parent's reply is counted, so the barrier can only be satisfied once
// every recursive request has answered. Failed requests still answer.
//
// At most one cycle runs at a time. Refresh returns false without
// doing anything when a cycle is already in flight; triggers that
// arrive during a cycle are dropped, not queued. Per-request failures
// are sent to the Errors channel and the affected item is left out of
// the cycle's tree.
package poll
