// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides entrypoint helpers shared by the monitor
// and coordination server binaries: the structured logger both
// binaries install, and the fatal error path used before or after the
// logger exists.
package process
