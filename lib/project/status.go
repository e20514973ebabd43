// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package project

import (
	"fmt"
	"strings"
)

// Status is the result of a job's most recent build.
type Status int

const (
	Unknown Status = iota
	Succeeded
	Unstable
	Failed
	Aborted
	NotBuilt
	Disabled
)

var statusNames = [...]string{
	Unknown:   "unknown",
	Succeeded: "succeeded",
	Unstable:  "unstable",
	Failed:    "failed",
	Aborted:   "aborted",
	NotBuilt:  "not_built",
	Disabled:  "disabled",
}

// severity ranks statuses for aggregation. Lower is worse.
var severity = [...]int{
	Failed:    0,
	Unstable:  1,
	Aborted:   2,
	NotBuilt:  3,
	Succeeded: 4,
	Disabled:  5,
	Unknown:   6,
}

// String returns the lower-case name used in logs and JSON.
func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("status(%d)", int(s))
	}
	return statusNames[s]
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(statusNames) {
		return nil, fmt.Errorf("invalid status %d", int(s))
	}
	return []byte(statusNames[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	for candidate, name := range statusNames {
		if name == string(text) {
			*s = Status(candidate)
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", text)
}

// IsFailing reports whether the status counts as broken for
// notifications and fix coordination.
func (s Status) IsFailing() bool {
	return s == Failed || s == Unstable || s == Aborted
}

// IsPassing reports whether a failing job moving to this status counts
// as fixed.
func (s Status) IsPassing() bool {
	return s == Succeeded || s == NotBuilt
}

// Worst returns whichever of a and b ranks worse.
func Worst(a, b Status) Status {
	if a.severity() <= b.severity() {
		return a
	}
	return b
}

func (s Status) severity() int {
	if s < 0 || int(s) >= len(severity) {
		return severity[Unknown]
	}
	return severity[s]
}

const buildingSuffix = "_anime"

var colorPrefixes = []struct {
	prefix string
	status Status
}{
	{"blue", Succeeded},
	{"red", Failed},
	{"yellow", Unstable},
	{"disabled", Disabled},
	{"aborted", Aborted},
	{"notbuilt", NotBuilt},
}

// DecodeColor maps a Jenkins "color" value to a Status. The "_anime"
// suffix marks a build in progress and is independent of the base
// status.
func DecodeColor(color string) (status Status, building bool) {
	building = strings.HasSuffix(color, buildingSuffix)
	for _, entry := range colorPrefixes {
		if strings.HasPrefix(color, entry.prefix) {
			return entry.status, building
		}
	}
	return Unknown, building
}
