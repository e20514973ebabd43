// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package notify

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gen2brain/beeep"
)

// Notifier delivers an event.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// LogNotifier writes events to a logger. Broken projects log at warn.
type LogNotifier struct {
	Logger *slog.Logger
}

// Notify implements Notifier.
func (n LogNotifier) Notify(ctx context.Context, event Event) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	level := slog.LevelInfo
	if event.Kind == Broken {
		level = slog.LevelWarn
	}
	logger.Log(ctx, level, "project "+string(event.Kind),
		"project", event.Title,
		"url", event.Project.URL,
		"build", event.Project.BuildNumber,
		"message", event.Message)
	return nil
}

// DesktopNotifier raises a desktop notification per event.
type DesktopNotifier struct {
	// Icon is an optional image path shown with the notification.
	Icon string

	// send replaces beeep in tests.
	send func(title, message string) error
}

// Notify implements Notifier.
func (n DesktopNotifier) Notify(ctx context.Context, event Event) error {
	if n.send != nil {
		return n.send(event.Title, event.Message)
	}
	return beeep.Notify(event.Title, event.Message, n.Icon)
}

// Multi delivers to every notifier and joins their errors.
type Multi []Notifier

// Notify implements Notifier.
func (m Multi) Notify(ctx context.Context, event Event) error {
	var errs []error
	for _, notifier := range m {
		if err := notifier.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
