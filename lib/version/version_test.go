// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"runtime/debug"
	"testing"
)

func TestFromSettings(t *testing.T) {
	settings := []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef0123"},
		{Key: "vcs.time", Value: "2026-03-01T12:00:00Z"},
		{Key: "vcs.modified", Value: "true"},
	}

	got := fromSettings(build{commit: "unknown", time: "unknown"}, settings)
	want := build{commit: "0123456789ab", dirty: true, time: "2026-03-01T12:00:00Z"}
	if got != want {
		t.Fatalf("fromSettings = %+v, want %+v", got, want)
	}

	injected := fromSettings(build{commit: "abc1234", time: "yesterday"}, settings)
	if injected.commit != "abc1234" || injected.time != "yesterday" {
		t.Fatalf("injected values overwritten: %+v", injected)
	}
}

func TestBuildString(t *testing.T) {
	got := build{commit: "abc1234", dirty: true, time: "now"}.String()
	if got != Version+" (abc1234-dirty, now)" {
		t.Fatalf("String = %q", got)
	}
}
