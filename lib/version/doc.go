// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports which build of the monitor binaries is
// running.
//
// [Version], [GitCommit] and [BuildTime] can be injected with
// -ldflags -X. When they are not, the values recorded by the Go
// toolchain in the binary's build info are used where available.
//
//   - [Info] -- "0.1.0-dev (abc1234, 2026-02-10T...)" for --version
//   - [UserAgent] -- the User-Agent sent to Jenkins
package version
