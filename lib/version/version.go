// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"runtime/debug"
	"sync"
)

// These variables are set via -ldflags at build time.
var (
	GitCommit = "unknown"
	GitDirty  = "false"
	BuildTime = "unknown"
	Version   = "0.1.0-dev"
)

var resolve = sync.OnceValue(func() build {
	resolved := build{commit: GitCommit, dirty: GitDirty == "true", time: BuildTime}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return resolved
	}
	return fromSettings(resolved, info.Settings)
})

type build struct {
	commit string
	dirty  bool
	time   string
}

// fromSettings fills values left at their defaults from the
// toolchain's vcs.* build settings.
func fromSettings(resolved build, settings []debug.BuildSetting) build {
	for _, setting := range settings {
		switch setting.Key {
		case "vcs.revision":
			if resolved.commit == "unknown" && setting.Value != "" {
				resolved.commit = setting.Value
				if len(resolved.commit) > 12 {
					resolved.commit = resolved.commit[:12]
				}
			}
		case "vcs.time":
			if resolved.time == "unknown" && setting.Value != "" {
				resolved.time = setting.Value
			}
		case "vcs.modified":
			resolved.dirty = resolved.dirty || setting.Value == "true"
		}
	}
	return resolved
}

func (b build) String() string {
	dirty := ""
	if b.dirty {
		dirty = "-dirty"
	}
	return fmt.Sprintf("%s (%s%s, %s)", Version, b.commit, dirty, b.time)
}

// Info returns a formatted version string suitable for --version output.
func Info() string {
	return resolve().String()
}

// UserAgent returns "buildmonitor/<version>".
func UserAgent() string {
	return "buildmonitor/" + Version
}
