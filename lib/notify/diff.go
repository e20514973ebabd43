// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package notify

import (
	"strings"

	"github.com/bureau-foundation/buildmonitor/lib/project"
)

// Kind is the direction of a transition.
type Kind string

const (
	Broken Kind = "broken"
	Fixed  Kind = "fixed"
)

// Event is one alert.
type Event struct {
	Kind    Kind           `json:"kind"`
	Project project.Record `json:"project"`

	// Title names the project, with its folder path when it has one.
	Title string `json:"title"`

	// Message is "Broken by: ..." or "Fixed by: ...".
	Message string `json:"message"`
}

// Matcher selects the projects the user wants alerts for.
type Matcher interface {
	Match(record *project.Record) bool
}

// Diff returns the events for every watched project whose status
// crossed between passing and failing from previous to current, in
// tree order.
func Diff(previous, current *project.Tree, watch Matcher) []Event {
	if previous == nil || current == nil || watch == nil {
		return nil
	}
	var events []Event
	current.Walk(func(entry project.Entry) {
		now := entry.Project
		if now == nil || !watch.Match(now) {
			return
		}
		before, ok := previous.Lookup(now.ID)
		if !ok {
			return
		}
		var kind Kind
		switch {
		case before.Status.IsPassing() && now.Status.IsFailing():
			kind = Broken
		case before.Status.IsFailing() && now.Status.IsPassing():
			kind = Fixed
		default:
			return
		}
		record := *now
		record.Culprits = append([]string(nil), now.Culprits...)
		events = append(events, Event{
			Kind:    kind,
			Project: record,
			Title:   Title(now),
			Message: Message(kind, now.Culprits),
		})
	})
	return events
}

// Title returns "folder/name" or just the name at the root.
func Title(record *project.Record) string {
	if record.Folder == "" {
		return record.Name
	}
	return record.Folder + "/" + record.Name
}

// Message formats the alert body: names joined by ", " with " and/or "
// before the last, or "Unknown" when there are none.
func Message(kind Kind, culprits []string) string {
	var builder strings.Builder
	if kind == Broken {
		builder.WriteString("Broken by: ")
	} else {
		builder.WriteString("Fixed by: ")
	}
	if len(culprits) == 0 {
		builder.WriteString("Unknown")
		return builder.String()
	}
	for index, name := range culprits {
		switch {
		case index == 0:
		case index == len(culprits)-1:
			builder.WriteString(" and/or ")
		default:
			builder.WriteString(", ")
		}
		builder.WriteString(name)
	}
	return builder.String()
}
