// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/bureau-foundation/buildmonitor/lib/clock"
	"github.com/bureau-foundation/buildmonitor/lib/config"
	"github.com/bureau-foundation/buildmonitor/lib/fix"
	"github.com/bureau-foundation/buildmonitor/lib/fixwire"
	"github.com/bureau-foundation/buildmonitor/lib/notify"
	"github.com/bureau-foundation/buildmonitor/lib/poll"
	"github.com/bureau-foundation/buildmonitor/lib/project"
)

// updateBuffer is the per-subscriber queue depth. Updates beyond it
// are dropped for that subscriber.
const updateBuffer = 32

var (
	// ErrUnknownProject is returned by Volunteer for an ID not in the
	// current tree.
	ErrUnknownProject = errors.New("monitor: unknown project")

	// ErrNotFailing is returned by Volunteer for a project that is not
	// failing.
	ErrNotFailing = errors.New("monitor: project is not failing")

	// ErrQueueRefused is returned when the fix client refuses a claim.
	ErrQueueRefused = errors.New("monitor: fix client refused the request")
)

// Engine is the part of *poll.Engine the monitor uses.
type Engine interface {
	Subscribe() (<-chan poll.Cycle, func())
	Errors() <-chan error
	Trigger()
}

// FixClient is the part of *fixclient.Dispatcher the monitor uses.
type FixClient interface {
	Version() int
	RequestFixState(identities []string) bool
	ReportFixing(identity string, build int64) bool
	MarkFixed(identity string, build int64) bool
}

// Config holds the monitor's collaborators.
type Config struct {
	Engine    Engine
	FixClient FixClient

	// Notifier receives broken and fixed events. Nil drops them.
	Notifier notify.Notifier

	// Settings returns the current settings.
	Settings func() *config.Settings

	// Clock defaults to clock.Real().
	Clock clock.Clock

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// State is the annotated view published after every change.
type State struct {
	Tree    *project.Tree   `json:"tree"`
	Summary project.Summary `json:"summary"`

	// DiscoveryFailures is the number of listing requests that failed
	// in the last cycle. Non-zero forces the summary status to Unknown.
	DiscoveryFailures int       `json:"discovery_failures"`
	Generation        uint64    `json:"generation"`
	UpdatedAt         time.Time `json:"updated_at"`

	// LastError is the most recent failed CI request. It stays until a
	// later failure replaces it.
	LastError *ErrorInfo `json:"last_error,omitempty"`
}

// ErrorInfo describes a failed CI request for display.
type ErrorInfo struct {
	Phase   poll.Phase `json:"phase,omitempty"`
	URL     string     `json:"url,omitempty"`
	Message string     `json:"message"`
	At      time.Time  `json:"at"`
}

// UpdateKind distinguishes subscriber updates.
type UpdateKind string

const (
	UpdateTree         UpdateKind = "tree"
	UpdateNotification UpdateKind = "notification"
	UpdateError        UpdateKind = "error"
)

// Update is delivered to subscribers. State is set for UpdateTree,
// Event for UpdateNotification, Error for UpdateError.
type Update struct {
	Kind  UpdateKind    `json:"kind"`
	State *State        `json:"state,omitempty"`
	Event *notify.Event `json:"event,omitempty"`
	Error *ErrorInfo    `json:"error,omitempty"`
}

// Monitor orchestrates polling, notification, and fix coordination.
type Monitor struct {
	engine    Engine
	fixClient FixClient
	notifier  notify.Notifier
	settings  func() *config.Settings
	clock     clock.Clock
	logger    *slog.Logger

	// publishMu is held from a state change until its broadcast, so
	// subscribers receive tree updates in the order m.state took them.
	// It is taken before mu.
	publishMu sync.Mutex

	mu               sync.Mutex
	raw              *project.Tree
	state            State
	fixes            []fix.Record
	subscribers      map[int]chan Update
	nextSubscriberID int
}

// New creates a monitor. Call Run to start processing cycles.
func New(config Config) *Monitor {
	if config.Engine == nil || config.FixClient == nil || config.Settings == nil {
		panic("monitor: Engine, FixClient and Settings are required")
	}
	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	empty := project.NewTree()
	return &Monitor{
		engine:      config.Engine,
		fixClient:   config.FixClient,
		notifier:    config.Notifier,
		settings:    config.Settings,
		clock:       clk,
		logger:      logger,
		state:       State{Tree: empty, Summary: empty.Aggregate()},
		subscribers: make(map[int]chan Update),
	}
}

// Run consumes engine cycles until ctx is done.
func (m *Monitor) Run(ctx context.Context) {
	cycles, cancel := m.engine.Subscribe()
	defer cancel()
	requestErrors := m.engine.Errors()
	for {
		select {
		case <-ctx.Done():
			return
		case cycle := <-cycles:
			m.HandleCycle(ctx, cycle)
		case err := <-requestErrors:
			m.HandleError(err)
		}
	}
}

// HandleError records a failed CI request as the state's LastError
// and broadcasts it.
func (m *Monitor) HandleError(err error) {
	info := ErrorInfo{Message: err.Error(), At: m.clock.Now()}
	var requestError *poll.RequestError
	if errors.As(err, &requestError) {
		info.Phase = requestError.Phase
		info.URL = requestError.URL
	}

	m.publishMu.Lock()
	defer m.publishMu.Unlock()
	m.mu.Lock()
	m.state.LastError = &info
	m.mu.Unlock()
	m.broadcast(Update{Kind: UpdateError, Error: &info})
}

// HandleCycle processes one engine cycle.
func (m *Monitor) HandleCycle(ctx context.Context, cycle poll.Cycle) {
	settings := m.settings()
	matcher, err := notify.CompileGlobs(settings.Notify)
	if err != nil {
		m.logger.Error("notify list invalid, notifications disabled", "error", err)
		matcher = nil
	}

	m.publishMu.Lock()
	m.mu.Lock()
	previous := m.raw
	m.raw = cycle.Tree
	var events []notify.Event
	if matcher != nil {
		events = notify.Diff(previous, cycle.Tree, matcher)
	}
	state := m.annotateLocked(cycle.Generation, cycle.DiscoveryFailures)
	m.mu.Unlock()

	for index := range events {
		event := events[index]
		if m.notifier != nil {
			if err := m.notifier.Notify(ctx, event); err != nil {
				m.logger.Warn("delivering notification", "project", event.Title, "error", err)
			}
		}
		m.broadcast(Update{Kind: UpdateNotification, Event: &event})
	}
	m.broadcast(Update{Kind: UpdateTree, State: &state})
	m.publishMu.Unlock()

	version := m.fixClient.Version()
	identities := make([]string, 0, len(cycle.Tree.Projects))
	for index := range cycle.Tree.Projects {
		identities = append(identities, cycle.Tree.Projects[index].Identity(version))
	}
	if len(identities) > 0 && !m.fixClient.RequestFixState(identities) {
		m.logger.Debug("fix state query already pending")
	}
}

// HandleFixState reconciles a fix state response with the current
// tree. It is the fix client's OnFixState callback.
func (m *Monitor) HandleFixState(response fixwire.Response) {
	type completion struct {
		identity string
		build    int64
	}
	var completions []completion

	m.publishMu.Lock()
	m.mu.Lock()
	m.fixes = response.Records
	if m.raw != nil {
		for _, claim := range response.Records {
			for index := range m.raw.Projects {
				record := &m.raw.Projects[index]
				if record.Identity(response.Version) != claim.ProjectKey || record.BuildNumber < claim.BuildNumber {
					continue
				}
				if !record.Status.IsFailing() {
					completions = append(completions, completion{claim.ProjectKey, record.BuildNumber})
				}
			}
		}
	}
	state := m.annotateLocked(m.state.Generation, m.state.DiscoveryFailures)
	m.mu.Unlock()
	m.broadcast(Update{Kind: UpdateTree, State: &state})
	m.publishMu.Unlock()

	for _, done := range completions {
		m.logger.Info("reporting fixed project", "project", done.identity, "build", done.build)
		m.fixClient.MarkFixed(done.identity, done.build)
	}
}

// annotateLocked rebuilds the published state from the raw tree and
// the last fix state response.
func (m *Monitor) annotateLocked(generation uint64, discoveryFailures int) State {
	if m.raw == nil {
		return m.state
	}
	version := m.fixClient.Version()
	claims := make(map[string]fix.Record, len(m.fixes))
	for _, claim := range m.fixes {
		claims[claim.ProjectKey] = claim
	}

	tree := m.raw.Clone()
	for index := range tree.Projects {
		record := &tree.Projects[index]
		claim, ok := claims[record.Identity(version)]
		if ok && record.Status.IsFailing() && record.BuildNumber >= claim.BuildNumber {
			record.Volunteer = claim.UserName
		}
	}

	summary := tree.Aggregate()
	if discoveryFailures > 0 {
		summary.Status = project.Unknown
	}
	m.state = State{
		Tree:              tree,
		Summary:           summary,
		DiscoveryFailures: discoveryFailures,
		Generation:        generation,
		UpdatedAt:         m.clock.Now(),
		LastError:         m.state.LastError,
	}
	return m.state
}

// Volunteer claims the fix of a failing project for the configured
// user and triggers a refresh so the claim shows up.
func (m *Monitor) Volunteer(id string) error {
	m.mu.Lock()
	record, ok := m.state.Tree.Lookup(id)
	if !ok {
		m.mu.Unlock()
		return ErrUnknownProject
	}
	failing := record.Status.IsFailing()
	identity := record.Identity(m.fixClient.Version())
	build := record.BuildNumber
	m.mu.Unlock()

	if !failing {
		return ErrNotFailing
	}
	if !m.fixClient.ReportFixing(identity, build) {
		return ErrQueueRefused
	}
	m.logger.Info("volunteered", "project", identity, "build", build)
	m.engine.Trigger()
	return nil
}

// State returns the current annotated state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Tree returns the current annotated tree. It must not be modified.
func (m *Monitor) Tree() *project.Tree {
	return m.State().Tree
}

// Summary returns the current aggregate status.
func (m *Monitor) Summary() project.Summary {
	return m.State().Summary
}

// Subscribe returns a channel receiving tree and notification updates.
// The returned function cancels the subscription.
func (m *Monitor) Subscribe() (<-chan Update, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextSubscriberID
	m.nextSubscriberID++
	channel := make(chan Update, updateBuffer)
	m.subscribers[id] = channel
	return channel, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subscribers, id)
	}
}

func (m *Monitor) broadcast(update Update) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, channel := range m.subscribers {
		select {
		case channel <- update:
		default:
			m.logger.Warn("subscriber lagging, update dropped", "subscriber", id, "kind", update.Kind)
		}
	}
}
