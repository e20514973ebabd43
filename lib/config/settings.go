// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"
)

// DefaultFixServerPort is used when fix_server.address has no port.
const DefaultFixServerPort = 1080

// Settings configures the monitor process.
type Settings struct {
	// Servers are the CI server roots to poll.
	Servers []string `yaml:"servers"`

	RefreshInterval       time.Duration `yaml:"refresh_interval"`
	RequestTimeout        time.Duration `yaml:"request_timeout"`
	MaxConcurrentRequests int           `yaml:"max_concurrent_requests"`

	// Username and APIToken authenticate against every server.
	Username string `yaml:"username"`
	APIToken string `yaml:"api_token"`

	// IgnoreUsers are removed from culprit lists.
	IgnoreUsers []string `yaml:"ignore_users"`

	ShowDisabledProjects bool           `yaml:"show_disabled_projects"`
	Filter               FilterSettings `yaml:"filter"`

	// Notify holds glob patterns selecting the projects that raise
	// broken and fixed notifications.
	Notify []string `yaml:"notify"`

	FixServer FixServerSettings `yaml:"fix_server"`
	Feed      FeedSettings      `yaml:"feed"`
}

// FilterSettings selects which leaf jobs appear in the tree.
type FilterSettings struct {
	// UseRegex selects Include/Exclude matching instead of the
	// EnabledProjects allow-list.
	UseRegex bool   `yaml:"use_regex"`
	Include  string `yaml:"include"`
	Exclude  string `yaml:"exclude"`

	// EnabledProjects lists job names or URLs. Empty accepts all.
	EnabledProjects []string `yaml:"enabled_projects"`
}

// FixServerSettings locates the coordination server.
type FixServerSettings struct {
	Address         string `yaml:"address"`
	ProtocolVersion int    `yaml:"protocol_version"`

	// UserName is reported when volunteering. Defaults to $USER or
	// $USERNAME.
	UserName string `yaml:"user_name"`
}

// FeedSettings configures the HTTP/websocket feed. An empty Listen
// disables the feed.
type FeedSettings struct {
	Listen string `yaml:"listen"`
}

// Default returns the settings used for any field the file omits.
func Default() *Settings {
	return &Settings{
		Servers:               []string{"http://jenkins:8080/"},
		RefreshInterval:       60 * time.Second,
		RequestTimeout:        10 * time.Second,
		MaxConcurrentRequests: 16,
		Filter: FilterSettings{
			Include: ".*",
		},
		FixServer: FixServerSettings{
			Address:         "jenkins:1080",
			ProtocolVersion: 2,
			UserName:        userFromEnvironment(),
		},
		Feed: FeedSettings{
			Listen: "127.0.0.1:8095",
		},
	}
}

// Load reads and validates a settings file.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates settings from YAML.
func Parse(data []byte) (*Settings, error) {
	settings := Default()
	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("parsing settings: %w", err)
	}
	if settings.FixServer.UserName == "" {
		settings.FixServer.UserName = userFromEnvironment()
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// Validate checks every field and returns all problems joined.
func (s *Settings) Validate() error {
	var errs []error

	if len(s.Servers) == 0 {
		errs = append(errs, errors.New("servers: at least one server is required"))
	}
	for _, server := range s.Servers {
		if !strings.HasPrefix(server, "http://") && !strings.HasPrefix(server, "https://") {
			errs = append(errs, fmt.Errorf("servers: %q is not an http(s) URL", server))
		}
	}
	if s.RefreshInterval <= 0 {
		errs = append(errs, errors.New("refresh_interval must be positive"))
	}
	if s.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request_timeout must be positive"))
	}
	if s.MaxConcurrentRequests <= 0 {
		errs = append(errs, errors.New("max_concurrent_requests must be positive"))
	}
	if _, err := s.Filter.Compile(); err != nil {
		errs = append(errs, err)
	}
	for _, pattern := range s.Notify {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			errs = append(errs, fmt.Errorf("notify: invalid pattern %q: %w", pattern, err))
		}
	}
	if s.FixServer.ProtocolVersion != 1 && s.FixServer.ProtocolVersion != 2 {
		errs = append(errs, fmt.Errorf("fix_server.protocol_version must be 1 or 2, got %d", s.FixServer.ProtocolVersion))
	}
	if s.FixServer.Address == "" {
		errs = append(errs, errors.New("fix_server.address is required"))
	}

	return errors.Join(errs...)
}

// FixServerAddress returns the fix server address with the default
// port applied.
func (s *Settings) FixServerAddress() string {
	address := s.FixServer.Address
	if _, _, err := net.SplitHostPort(address); err == nil {
		return address
	}
	return net.JoinHostPort(strings.Trim(address, "[]"), strconv.Itoa(DefaultFixServerPort))
}

// ProjectFilter is a compiled FilterSettings.
type ProjectFilter struct {
	include *regexp.Regexp
	exclude *regexp.Regexp
	enabled map[string]bool
}

// Compile validates the filter and prepares it for matching. Patterns
// must match a whole job name.
func (f FilterSettings) Compile() (*ProjectFilter, error) {
	filter := &ProjectFilter{}
	if f.UseRegex {
		include := f.Include
		if include == "" {
			include = ".*"
		}
		var err error
		if filter.include, err = regexp.Compile(`^(?:` + include + `)$`); err != nil {
			return nil, fmt.Errorf("filter.include: %w", err)
		}
		if f.Exclude != "" {
			if filter.exclude, err = regexp.Compile(`^(?:` + f.Exclude + `)$`); err != nil {
				return nil, fmt.Errorf("filter.exclude: %w", err)
			}
		}
		return filter, nil
	}
	if len(f.EnabledProjects) > 0 {
		filter.enabled = make(map[string]bool, len(f.EnabledProjects))
		for _, project := range f.EnabledProjects {
			filter.enabled[project] = true
		}
	}
	return filter, nil
}

// Accepts reports whether a leaf job passes the filter.
func (f *ProjectFilter) Accepts(name, url string) bool {
	if f.include != nil {
		return f.include.MatchString(name) && (f.exclude == nil || !f.exclude.MatchString(name))
	}
	if f.enabled == nil {
		return true
	}
	return f.enabled[name] || f.enabled[url]
}

func userFromEnvironment() string {
	if user := os.Getenv("USER"); user != "" {
		return user
	}
	return os.Getenv("USERNAME")
}
