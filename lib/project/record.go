// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package project

import (
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/zeebo/blake3"
)

// NoTimestamp marks LastSuccessfulBuildEpochMs when the job has never
// succeeded or the server did not report a numeric timestamp.
const NoTimestamp int64 = -1

// Record is one leaf job as observed in a single poll cycle.
type Record struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Folder string `json:"folder,omitempty"`
	URL    string `json:"url"`
	Server string `json:"server"`

	Status   Status `json:"status"`
	Building bool   `json:"building"`

	// BuildNumber is 0 when the job has no builds.
	BuildNumber int64 `json:"build_number"`

	// DurationMs is the finished build's duration, or the elapsed time
	// of a build still running.
	DurationMs           int64 `json:"duration_ms"`
	EstimatedRemainingMs int64 `json:"estimated_remaining_ms"`
	StartedAtEpochMs     int64 `json:"started_at_epoch_ms"`

	LastSuccessfulBuildEpochMs int64 `json:"last_successful_build_epoch_ms"`

	Culprits []string `json:"culprits"`

	// Volunteer is the user who claimed the fix, if any.
	Volunteer string `json:"volunteer,omitempty"`
}

// CanonicalURL normalizes a job URL to carry exactly one trailing slash.
func CanonicalURL(url string) string {
	return strings.TrimRight(url, "/") + "/"
}

// IDForURL derives the stable record identity from a job URL.
func IDForURL(url string) string {
	sum := blake3.Sum256([]byte(CanonicalURL(url)))
	return hex.EncodeToString(sum[:16])
}

// Identity returns the key used for fix coordination under the given
// protocol version: the bare job name for version 1, the canonical
// URL for version 2 and later.
func (r *Record) Identity(version int) string {
	if version <= 1 {
		return r.Name
	}
	return r.URL
}

// BuildLogURL returns the console log location of the last build.
// There is none when the job has never built.
func (r *Record) BuildLogURL() (string, bool) {
	if r.BuildNumber == 0 {
		return "", false
	}
	return CanonicalURL(r.URL) + strconv.FormatInt(r.BuildNumber, 10) + "/consoleText", true
}

// Progress returns the completed fraction of a running build, clamped
// to [0, 1].
func (r *Record) Progress() (float64, bool) {
	if !r.Building {
		return 0, false
	}
	total := r.DurationMs + r.EstimatedRemainingMs
	if total <= 0 {
		return 0, false
	}
	fraction := float64(r.DurationMs) / float64(total)
	return min(max(fraction, 0), 1), true
}

func (r Record) clone() Record {
	if r.Culprits != nil {
		r.Culprits = append([]string(nil), r.Culprits...)
	}
	return r
}
