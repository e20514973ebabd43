// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package poll

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bureau-foundation/buildmonitor/lib/clock"
	"github.com/bureau-foundation/buildmonitor/lib/config"
	"github.com/bureau-foundation/buildmonitor/lib/jenkins"
	"github.com/bureau-foundation/buildmonitor/lib/project"
)

// errorBuffer is the capacity of the Errors channel. Errors beyond it
// are logged but not delivered.
const errorBuffer = 64

// Source is the CI API the engine polls. *jenkins.Client implements it.
type Source interface {
	ListJobs(ctx context.Context, folderURL string) (*jenkins.JobList, error)
	LastBuild(ctx context.Context, jobURL string) (*jenkins.Build, error)
	LastSuccessfulBuild(ctx context.Context, jobURL string) (*jenkins.BuildTimestamp, error)
}

// Config holds the engine's collaborators.
type Config struct {
	// Source is required.
	Source Source

	// Clock defaults to clock.Real().
	Clock clock.Clock

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Cycle is the published result of one completed refresh.
type Cycle struct {
	Generation  uint64
	Tree        *project.Tree
	CompletedAt time.Time

	// DiscoveryRequests counts the listing requests the cycle issued,
	// recursive folder listings included.
	DiscoveryRequests int

	// DiscoveryFailures counts listing requests that failed. A non-zero
	// value means part of the tree is missing.
	DiscoveryFailures int
}

// Engine runs refresh cycles and publishes their results.
type Engine struct {
	source Source
	clock  clock.Clock
	logger *slog.Logger

	inFlight   atomic.Bool
	generation atomic.Uint64

	mu               sync.Mutex
	current          Cycle
	subscribers      map[int]chan Cycle
	nextSubscriberID int

	errors  chan error
	trigger chan struct{}
}

// New creates an engine. It publishes an empty tree until the first
// cycle completes.
func New(config Config) *Engine {
	if config.Source == nil {
		panic("poll: Config.Source is required")
	}
	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		source:      config.Source,
		clock:       clk,
		logger:      logger,
		current:     Cycle{Tree: project.NewTree()},
		subscribers: make(map[int]chan Cycle),
		errors:      make(chan error, errorBuffer),
		trigger:     make(chan struct{}, 1),
	}
}

// Snapshot returns the most recently published cycle. The tree must
// not be modified.
func (e *Engine) Snapshot() Cycle {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// Subscribe returns a channel receiving every published cycle. A slow
// subscriber only sees the latest one. The returned function cancels
// the subscription.
func (e *Engine) Subscribe() (<-chan Cycle, func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextSubscriberID
	e.nextSubscriberID++
	channel := make(chan Cycle, 1)
	e.subscribers[id] = channel
	return channel, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.subscribers, id)
	}
}

// Errors returns the channel carrying *RequestError values.
func (e *Engine) Errors() <-chan error {
	return e.errors
}

// Trigger asks Run to start a cycle now. It never blocks; a trigger
// arriving while a cycle is in flight is dropped by Refresh.
func (e *Engine) Trigger() {
	select {
	case e.trigger <- struct{}{}:
	default:
	}
}

// Run refreshes immediately, then on every refresh interval and every
// Trigger, until ctx is done. settings is consulted at the start of
// each cycle so edits take effect without a restart.
func (e *Engine) Run(ctx context.Context, settings func() *config.Settings) {
	var cycles sync.WaitGroup
	defer cycles.Wait()

	start := func() {
		current := settings()
		cycles.Add(1)
		go func() {
			defer cycles.Done()
			e.Refresh(ctx, current)
		}()
	}

	interval := settings().RefreshInterval
	ticker := e.clock.NewTicker(interval)
	defer ticker.Stop()

	start()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-e.trigger:
		}
		if next := settings().RefreshInterval; next != interval {
			interval = next
			ticker.Reset(interval)
		}
		start()
	}
}

// Refresh runs one complete cycle and publishes the result. It returns
// false when another cycle is already in flight or ctx ended before the
// cycle completed.
func (e *Engine) Refresh(ctx context.Context, settings *config.Settings) bool {
	if !e.inFlight.CompareAndSwap(false, true) {
		e.logger.Debug("refresh skipped, cycle in flight")
		return false
	}
	release := sync.OnceFunc(func() { e.inFlight.Store(false) })
	defer release()

	generation := e.generation.Add(1)
	filter, err := settings.Filter.Compile()
	if err != nil {
		e.logger.Error("refresh skipped, invalid filter", "error", err)
		return false
	}

	run := &cycle{
		engine:     e,
		settings:   settings,
		filter:     filter,
		generation: generation,
		tree:       project.NewTree(),
		barrier:    newBarrier(generation),
		ignored:    make(map[string]bool, len(settings.IgnoreUsers)),
	}
	for _, user := range settings.IgnoreUsers {
		run.ignored[user] = true
	}

	started := e.clock.Now()
	if err := run.discover(ctx); err != nil {
		e.logger.Warn("refresh abandoned during discovery", "generation", generation, "error", err)
		return false
	}
	tree, err := run.details(ctx)
	if err != nil {
		e.logger.Warn("refresh abandoned during detail fetch", "generation", generation, "error", err)
		return false
	}
	if err := run.lastSuccess(ctx, tree); err != nil {
		e.logger.Warn("refresh abandoned during last-success fetch", "generation", generation, "error", err)
		return false
	}

	issued, _ := run.barrier.counts()
	result := Cycle{
		Generation:        generation,
		Tree:              tree,
		CompletedAt:       e.clock.Now(),
		DiscoveryRequests: issued,
		DiscoveryFailures: int(run.discoveryFailures.Load()),
	}
	release()
	e.publish(result)
	e.logger.Info("refresh complete",
		"generation", generation,
		"projects", len(tree.Projects),
		"discovery_requests", issued,
		"discovery_failures", result.DiscoveryFailures,
		"elapsed", result.CompletedAt.Sub(started),
	)
	return true
}

func (e *Engine) publish(result Cycle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.current = result
	for _, channel := range e.subscribers {
		select {
		case <-channel:
		default:
		}
		channel <- result
	}
}

func (e *Engine) reportError(phase Phase, url string, err error) {
	requestError := &RequestError{Phase: phase, URL: url, Err: err}
	if errors.Is(err, context.Canceled) {
		e.logger.Debug("request cancelled", "phase", phase, "url", url)
	} else {
		e.logger.Warn("request failed", "phase", phase, "url", url, "error", err)
	}
	select {
	case e.errors <- requestError:
	default:
	}
}
