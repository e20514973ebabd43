// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce coalesces the burst of events an editor produces
// when saving (truncate, write, chmod, or a rename over the target).
const reloadDebounce = 250 * time.Millisecond

// Watch reloads the settings file whenever it changes and passes each
// valid result to onChange. Invalid edits are logged and skipped; the
// caller keeps its previous settings. Watch blocks until ctx is done.
//
// The parent directory is watched rather than the file itself so that
// editors which replace the file by rename are still observed.
func Watch(ctx context.Context, path string, logger *slog.Logger, onChange func(*Settings)) error {
	if logger == nil {
		logger = slog.Default()
	}
	absolute, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving settings path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating settings watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(absolute)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(absolute), err)
	}

	debounce := time.NewTimer(reloadDebounce)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != absolute {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				debounce.Reset(reloadDebounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("settings watcher error", "path", absolute, "error", err)

		case <-debounce.C:
			settings, err := Load(absolute)
			if err != nil {
				logger.Warn("ignoring invalid settings edit", "path", absolute, "error", err)
				continue
			}
			logger.Info("settings reloaded", "path", absolute)
			onChange(settings)
		}
	}
}
