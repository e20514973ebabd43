// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/buildmonitor/lib/config"
)

func TestParseFlags(t *testing.T) {
	opts, err := parseFlags([]string{"-c", "monitor.yaml", "--log-level", "debug", "--no-desktop"})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if opts.configPath != "monitor.yaml" || opts.logLevel != "debug" || !opts.noDesktop {
		t.Fatalf("opts = %+v", opts)
	}

	if _, err := parseFlags([]string{"extra"}); err == nil {
		t.Fatal("positional arguments accepted")
	}
	if _, err := parseFlags([]string{"--help"}); !errors.Is(err, pflag.ErrHelp) {
		t.Fatalf("--help error = %v", err)
	}
}

func TestWarnRestartOnly(t *testing.T) {
	var output bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&output, nil))

	previous := config.Default()
	next := config.Default()
	next.RefreshInterval *= 2
	warnRestartOnly(logger, previous, next)
	if output.Len() != 0 {
		t.Fatalf("reloadable change warned: %s", output.String())
	}

	next.APIToken = "rotated"
	next.FixServer.Address = "fixes.example:1080"
	warnRestartOnly(logger, previous, next)
	if !strings.Contains(output.String(), "credentials") || !strings.Contains(output.String(), "fix_server") {
		t.Fatalf("warning = %q", output.String())
	}
}
