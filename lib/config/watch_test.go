// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bureau-foundation/buildmonitor/lib/testutil"
)

func TestWatchReloadsValidEdits(t *testing.T) {
	directory := t.TempDir()
	path := filepath.Join(directory, "monitor.yaml")
	if err := os.WriteFile(path, []byte("refresh_interval: 60s\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *Settings, 4)
	watchDone := make(chan error, 1)
	go func() {
		watchDone <- Watch(ctx, path, testutil.Logger(), func(settings *Settings) {
			reloaded <- settings
		})
	}()

	// The watcher registers asynchronously; keep rewriting until the
	// first reload lands.
	deadline := time.Now().Add(5 * time.Second)
	var settings *Settings
	for settings == nil && time.Now().Before(deadline) {
		if err := os.WriteFile(path, []byte("refresh_interval: 15s\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		select {
		case settings = <-reloaded:
		case <-time.After(500 * time.Millisecond):
		}
	}
	if settings == nil {
		t.Fatal("no reload observed")
	}
	if settings.RefreshInterval != 15*time.Second {
		t.Errorf("RefreshInterval = %v, want 15s", settings.RefreshInterval)
	}

	// An invalid edit is skipped.
	if err := os.WriteFile(path, []byte("refresh_interval: -1s\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	for {
		select {
		case unexpected := <-reloaded:
			if unexpected.RefreshInterval == -time.Second {
				t.Fatal("invalid settings were delivered")
			}
			continue
		case <-time.After(time.Second):
		}
		break
	}

	cancel()
	if err := testutil.RequireReceive(t, watchDone, 5*time.Second, "waiting for Watch to return"); err != nil {
		t.Errorf("Watch returned %v", err)
	}
}
