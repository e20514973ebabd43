// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil bounds HTTP response reads and classifies connection
// teardown errors.
//
// CI servers return job listings whose size grows with the number of
// jobs. The response helpers cap every read at MaxResponseSize so a
// misconfigured server (or one returning an HTML error page of
// unbounded length) cannot exhaust memory in the poller.
package netutil
