// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package notify

import (
	"fmt"

	"github.com/gobwas/glob"

	"github.com/bureau-foundation/buildmonitor/lib/project"
)

// GlobMatcher selects projects whose name, folder-qualified name, or
// URL matches any of its patterns. "*" stops at "/"; "**" crosses it.
type GlobMatcher struct {
	patterns []glob.Glob
}

// CompileGlobs builds a matcher from the settings' notify list. An
// empty list matches nothing.
func CompileGlobs(patterns []string) (*GlobMatcher, error) {
	matcher := &GlobMatcher{}
	for _, pattern := range patterns {
		compiled, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("notify pattern %q: %w", pattern, err)
		}
		matcher.patterns = append(matcher.patterns, compiled)
	}
	return matcher, nil
}

// Match implements Matcher.
func (m *GlobMatcher) Match(record *project.Record) bool {
	if m == nil {
		return false
	}
	title := Title(record)
	for _, pattern := range m.patterns {
		if pattern.Match(record.Name) || pattern.Match(title) || pattern.Match(record.URL) {
			return true
		}
	}
	return false
}
