// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package project defines the data model produced by a poll cycle: the
// Status of a CI job, the Record describing its last build, and the
// Tree that arranges records under the CI server's folder hierarchy.
//
// Tree is an arena. Folders and records live in two slices and refer
// to each other by index; folder 0 is the implicit root. A published
// Tree is never mutated. Consumers that need to annotate a snapshot
// (for example with fix volunteers) Clone it first.
//
// Record identity is the blake3 hash of the job's canonical URL, which
// is stable across cycles and unique across servers. Name alone is
// not: two servers, or two folders on one server, may both contain a
// job called "App".
package project
