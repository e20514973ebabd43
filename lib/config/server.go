// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ServerSettings configures the coordination server.
type ServerSettings struct {
	Listen string `yaml:"listen"`

	// StateFile persists fix claims across restarts. Empty keeps them
	// in memory only.
	StateFile string `yaml:"state_file"`

	// ReadTimeout bounds how long a connection may take to deliver
	// its request.
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	Feed FeedSettings `yaml:"feed"`
}

// DefaultServer returns the server defaults.
func DefaultServer() *ServerSettings {
	return &ServerSettings{
		Listen:          ":1080",
		ReadTimeout:     3 * time.Second,
		ShutdownTimeout: 5 * time.Second,
	}
}

// LoadServer reads and validates a server settings file. An empty
// path returns the defaults.
func LoadServer(path string) (*ServerSettings, error) {
	settings := DefaultServer()
	if path == "" {
		return settings, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading server settings: %w", err)
	}
	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("parsing server settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// Validate checks the server settings.
func (s *ServerSettings) Validate() error {
	var errs []error
	if s.Listen == "" {
		errs = append(errs, errors.New("listen is required"))
	}
	if s.ReadTimeout <= 0 {
		errs = append(errs, errors.New("read_timeout must be positive"))
	}
	if s.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("shutdown_timeout must be positive"))
	}
	return errors.Join(errs...)
}
