// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	t.Setenv("USER", "alice")
	settings := Default()

	if len(settings.Servers) != 1 || settings.Servers[0] != "http://jenkins:8080/" {
		t.Errorf("Servers = %v", settings.Servers)
	}
	if settings.RefreshInterval != time.Minute {
		t.Errorf("RefreshInterval = %v, want 1m", settings.RefreshInterval)
	}
	if settings.FixServer.Address != "jenkins:1080" || settings.FixServer.UserName != "alice" {
		t.Errorf("FixServer = %+v", settings.FixServer)
	}
	if err := settings.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestParse(t *testing.T) {
	settings, err := Parse([]byte(`
servers:
  - http://ci-a:8080/
  - https://ci-b/
refresh_interval: 30s
ignore_users: [jenkins]
filter:
  use_regex: true
  include: "App.*"
  exclude: "App-legacy"
notify: ["team/*"]
fix_server:
  address: fixhost
  protocol_version: 1
  user_name: bob
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(settings.Servers) != 2 || settings.RefreshInterval != 30*time.Second {
		t.Errorf("settings = %+v", settings)
	}
	if settings.RequestTimeout != 10*time.Second {
		t.Errorf("omitted request_timeout = %v, want the default", settings.RequestTimeout)
	}
	if got := settings.FixServerAddress(); got != "fixhost:1080" {
		t.Errorf("FixServerAddress() = %q, want fixhost:1080", got)
	}
	if settings.FixServer.UserName != "bob" {
		t.Errorf("UserName = %q", settings.FixServer.UserName)
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	_, err := Parse([]byte(`
servers: ["ftp://ci/"]
refresh_interval: 0s
filter: {use_regex: true, include: "("}
notify: ["[unclosed"]
fix_server: {protocol_version: 3}
`))
	if err == nil {
		t.Fatal("Parse accepted invalid settings")
	}
	for _, fragment := range []string{"ftp://ci/", "refresh_interval", "filter.include", "notify", "protocol_version"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Errorf("error %q does not mention %q", err, fragment)
		}
	}
}

func TestProjectFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter FilterSettings
		job    string
		url    string
		want   bool
	}{
		{"allow-list empty accepts all", FilterSettings{}, "App", "http://ci/job/App/", true},
		{"allow-list by name", FilterSettings{EnabledProjects: []string{"App"}}, "App", "http://ci/job/App/", true},
		{"allow-list by url", FilterSettings{EnabledProjects: []string{"http://ci/job/Lib/"}}, "Lib", "http://ci/job/Lib/", true},
		{"allow-list miss", FilterSettings{EnabledProjects: []string{"App"}}, "Lib", "http://ci/job/Lib/", false},
		{"regex full match", FilterSettings{UseRegex: true, Include: "App"}, "App", "", true},
		{"regex partial is rejected", FilterSettings{UseRegex: true, Include: "App"}, "AppServer", "", false},
		{"regex exclude", FilterSettings{UseRegex: true, Include: "App.*", Exclude: "App-old"}, "App-old", "", false},
		{"regex exclude passes others", FilterSettings{UseRegex: true, Include: "App.*", Exclude: "App-old"}, "App-new", "", true},
		{"regex ignores allow-list", FilterSettings{UseRegex: true, Include: ".*", EnabledProjects: []string{"Other"}}, "App", "", true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			filter, err := test.filter.Compile()
			if err != nil {
				t.Fatalf("Compile: %v", err)
			}
			if got := filter.Accepts(test.job, test.url); got != test.want {
				t.Errorf("Accepts(%q, %q) = %v, want %v", test.job, test.url, got, test.want)
			}
		})
	}
}

func TestFixServerAddressKeepsExplicitPort(t *testing.T) {
	settings := Default()
	settings.FixServer.Address = "10.0.0.5:9000"
	if got := settings.FixServerAddress(); got != "10.0.0.5:9000" {
		t.Errorf("FixServerAddress() = %q", got)
	}
}

func TestLoadServer(t *testing.T) {
	defaults, err := LoadServer("")
	if err != nil {
		t.Fatalf("LoadServer(\"\"): %v", err)
	}
	if defaults.Listen != ":1080" || defaults.ReadTimeout != 3*time.Second {
		t.Errorf("defaults = %+v", defaults)
	}

	path := filepath.Join(t.TempDir(), "server.yaml")
	if err := os.WriteFile(path, []byte("listen: 127.0.0.1:2000\nstate_file: /var/lib/fixes.cbor\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	settings, err := LoadServer(path)
	if err != nil {
		t.Fatalf("LoadServer: %v", err)
	}
	if settings.Listen != "127.0.0.1:2000" || settings.StateFile != "/var/lib/fixes.cbor" {
		t.Errorf("settings = %+v", settings)
	}
	if settings.ShutdownTimeout != 5*time.Second {
		t.Errorf("omitted shutdown_timeout = %v", settings.ShutdownTimeout)
	}
}
