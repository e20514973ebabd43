// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the YAML settings of the monitor and the
// coordination server.
//
// Settings is treated as an immutable value: the monitor hands the
// same *Settings to a whole poll cycle and replaces the pointer when
// Watch observes an edit, so a cycle never sees half of an old file
// and half of a new one. Defaults mirror what a fresh install of the
// desktop monitor used: one server at http://jenkins:8080/, a minute
// between refreshes, and the fix server at jenkins:1080.
package config
