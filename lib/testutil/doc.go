// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil holds helpers shared by the package tests.
//
// The channel helpers wrap the select-with-timeout pattern so that a
// broken test fails with a message instead of hanging. They are the
// only place tests wait on wall-clock time; everything else runs on
// lib/clock's fake clock.
package testutil
