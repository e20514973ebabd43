// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"sync/atomic"
	"syscall"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/bureau-foundation/buildmonitor/lib/config"
	"github.com/bureau-foundation/buildmonitor/lib/feed"
	"github.com/bureau-foundation/buildmonitor/lib/fixclient"
	"github.com/bureau-foundation/buildmonitor/lib/fixwire"
	"github.com/bureau-foundation/buildmonitor/lib/jenkins"
	"github.com/bureau-foundation/buildmonitor/lib/monitor"
	"github.com/bureau-foundation/buildmonitor/lib/notify"
	"github.com/bureau-foundation/buildmonitor/lib/poll"
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
	logLevel    string
	noDesktop   bool
	showVersion bool
}

func parseFlags(args []string) (options, error) {
	var opts options
	flagSet := pflag.NewFlagSet("buildmonitor", pflag.ContinueOnError)
	flagSet.StringVarP(&opts.configPath, "config", "c", "", "settings file (YAML); watched for edits")
	flagSet.StringVar(&opts.logLevel, "log-level", "info", "debug, info, warn, or error")
	flagSet.BoolVar(&opts.noDesktop, "no-desktop", false, "log notifications instead of raising desktop alerts")
	flagSet.BoolVar(&opts.showVersion, "version", false, "print version information and exit")
	if err := flagSet.Parse(args); err != nil {
		return options{}, err
	}
	if flagSet.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %v", flagSet.Args())
	}
	return opts, nil
}

func loadSettings(path string) (*config.Settings, error) {
	if path == "" {
		settings := config.Default()
		return settings, settings.Validate()
	}
	return config.Load(path)
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
		fmt.Printf("buildmonitor %s\n", version.Info())
		return nil
	}

	level, err := process.ParseLevel(opts.logLevel)
	if err != nil {
		return err
	}
	logger := process.NewLogger(level)
	slog.SetDefault(logger)

	settings, err := loadSettings(opts.configPath)
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	var current atomic.Pointer[config.Settings]
	current.Store(settings)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := jenkins.NewClient(jenkins.Config{
		HTTPClient: &http.Client{},
		Username:   settings.Username,
		APIToken:   settings.APIToken,
		UserAgent:  version.UserAgent(),
		Logger:     logger,
	})
	engine := poll.New(poll.Config{Source: client, Logger: logger})

	var orchestrator *monitor.Monitor
	dispatcher := fixclient.New(fixclient.Config{
		Address:  settings.FixServerAddress(),
		Version:  settings.FixServer.ProtocolVersion,
		UserName: settings.FixServer.UserName,
		OnFixState: func(response fixwire.Response) {
			orchestrator.HandleFixState(response)
		},
		OnFailure: func(request fixwire.Request, err error) {
			logger.Warn("fix server request dropped", "type", request.Type, "error", err)
		},
		Logger: logger,
	})
	defer dispatcher.Close()

	notifiers := notify.Multi{notify.LogNotifier{Logger: logger}}
	if !opts.noDesktop {
		notifiers = append(notifiers, notify.DesktopNotifier{})
	}
	orchestrator = monitor.New(monitor.Config{
		Engine:    engine,
		FixClient: dispatcher,
		Notifier:  notifiers,
		Settings:  current.Load,
		Logger:    logger,
	})

	logger.Info("buildmonitor starting",
		"version", version.Info(),
		"servers", settings.Servers,
		"refresh_interval", settings.RefreshInterval,
		"fix_server", settings.FixServerAddress(),
		"protocol_version", dispatcher.Version(),
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		orchestrator.Run(groupCtx)
		return nil
	})
	group.Go(func() error {
		engine.Run(groupCtx, current.Load)
		return nil
	})
	if opts.configPath != "" {
		group.Go(func() error {
			return config.Watch(groupCtx, opts.configPath, logger, func(next *config.Settings) {
				warnRestartOnly(logger, current.Load(), next)
				current.Store(next)
				engine.Trigger()
			})
		})
	}
	if settings.Feed.Listen != "" {
		group.Go(func() error {
			return feed.ListenAndServe(groupCtx, settings.Feed.Listen, feed.NewMonitorHandler(orchestrator, logger), logger)
		})
	}

	err = group.Wait()
	logger.Info("buildmonitor stopped")
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// warnRestartOnly logs edits to settings that are only read at startup.
func warnRestartOnly(logger *slog.Logger, previous, next *config.Settings) {
	var changed []string
	if previous.Username != next.Username || previous.APIToken != next.APIToken {
		changed = append(changed, "credentials")
	}
	if previous.FixServerAddress() != next.FixServerAddress() || previous.FixServer.ProtocolVersion != next.FixServer.ProtocolVersion {
		changed = append(changed, "fix_server")
	}
	if previous.FixServer.UserName != next.FixServer.UserName {
		changed = append(changed, "fix_server.user_name")
	}
	if previous.Feed != next.Feed {
		changed = append(changed, "feed")
	}
	if len(changed) > 0 {
		slices.Sort(changed)
		logger.Warn("settings changed that apply only after a restart", "fields", changed)
	}
}
