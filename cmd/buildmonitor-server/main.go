// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/bureau-foundation/buildmonitor/lib/config"
	"github.com/bureau-foundation/buildmonitor/lib/feed"
	"github.com/bureau-foundation/buildmonitor/lib/fix"
	"github.com/bureau-foundation/buildmonitor/lib/fixserver"
	"github.com/bureau-foundation/buildmonitor/lib/process"
	"github.com/bureau-foundation/buildmonitor/lib/version"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		process.Fatal(err)
	}
}

type options struct {
	configPath  string
	listen      string
	stateFile   string
	logLevel    string
	showVersion bool
}

func parseFlags(args []string) (options, error) {
	var opts options
	flagSet := pflag.NewFlagSet("buildmonitor-server", pflag.ContinueOnError)
	flagSet.StringVarP(&opts.configPath, "config", "c", "", "server settings file (YAML)")
	flagSet.StringVar(&opts.listen, "listen", "", "override the settings' listen address")
	flagSet.StringVar(&opts.stateFile, "state-file", "", "override the settings' state file")
	flagSet.StringVar(&opts.logLevel, "log-level", "info", "debug, info, warn, or error")
	flagSet.BoolVar(&opts.showVersion, "version", false, "print version information and exit")
	if err := flagSet.Parse(args); err != nil {
		return options{}, err
	}
	if flagSet.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %v", flagSet.Args())
	}
	return opts, nil
}

// loadSettings reads the settings file and applies flag overrides.
func loadSettings(opts options) (*config.ServerSettings, error) {
	settings, err := config.LoadServer(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.listen != "" {
		settings.Listen = opts.listen
	}
	if opts.stateFile != "" {
		settings.StateFile = opts.stateFile
	}
	return settings, settings.Validate()
}

func run(args []string) error {
	opts, err := parseFlags(args)
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}
	if opts.showVersion {
		fmt.Printf("buildmonitor-server %s\n", version.Info())
		return nil
	}

	level, err := process.ParseLevel(opts.logLevel)
	if err != nil {
		return err
	}
	logger := process.NewLogger(level)
	slog.SetDefault(logger)

	settings, err := loadSettings(opts)
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	var store fix.Store
	if settings.StateFile != "" {
		store = &fix.FileStore{Path: settings.StateFile}
	}
	registry, err := fix.NewRegistry(fix.Config{Store: store, Logger: logger})
	if err != nil {
		return fmt.Errorf("loading fix state: %w", err)
	}

	server := fixserver.New(fixserver.Config{
		Registry:        registry,
		ReadTimeout:     settings.ReadTimeout,
		ShutdownTimeout: settings.ShutdownTimeout,
		Logger:          logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("buildmonitor-server starting",
		"version", version.Info(),
		"listen", settings.Listen,
		"state_file", settings.StateFile,
		"claims", len(registry.Snapshot()),
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return server.ListenAndServe(groupCtx, settings.Listen)
	})
	if settings.Feed.Listen != "" {
		group.Go(func() error {
			return feed.ListenAndServe(groupCtx, settings.Feed.Listen, feed.NewFixHandler(registry, logger), logger)
		})
	}

	err = group.Wait()
	logger.Info("buildmonitor-server stopped")
	return err
}
