// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadSettingsAppliesOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.yaml")
	content := "listen: \":2080\"\nstate_file: /var/lib/fixes.cbor\nread_timeout: 1s\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	opts, err := parseFlags([]string{"--config", path, "--state-file", "/tmp/override.cbor"})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	settings, err := loadSettings(opts)
	if err != nil {
		t.Fatalf("loadSettings: %v", err)
	}
	if settings.Listen != ":2080" {
		t.Errorf("listen = %q", settings.Listen)
	}
	if settings.StateFile != "/tmp/override.cbor" {
		t.Errorf("state file = %q", settings.StateFile)
	}
	if settings.ReadTimeout != time.Second {
		t.Errorf("read timeout = %v", settings.ReadTimeout)
	}
}

func TestLoadSettingsDefaults(t *testing.T) {
	settings, err := loadSettings(options{listen: "127.0.0.1:0"})
	if err != nil {
		t.Fatalf("loadSettings: %v", err)
	}
	if settings.Listen != "127.0.0.1:0" || settings.StateFile != "" {
		t.Fatalf("settings = %+v", settings)
	}
}
