// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec holds the CBOR configuration shared by the fix
// coordination wire protocol and the fix registry state file.
//
// Encoding uses Core Deterministic Encoding so a registry snapshot
// always serializes to the same bytes. Decoding ignores unknown
// fields, which lets a newer client add request fields without
// breaking an older server. Packages import lib/codec rather than
// fxamacker/cbor so the configuration lives in one place.
package codec
