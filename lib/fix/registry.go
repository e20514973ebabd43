// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package fix

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// Record is one claim: UserName is fixing the project identified by
// ProjectKey as of BuildNumber.
type Record struct {
	ProjectKey  string `cbor:"project_key" json:"project_key"`
	UserName    string `cbor:"user_name" json:"user_name"`
	BuildNumber int64  `cbor:"build_number" json:"build_number"`
}

// Config holds the registry's collaborators.
type Config struct {
	// Store persists claims. Nil keeps them in memory only.
	Store Store

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Registry is the set of active fix claims.
type Registry struct {
	store  Store
	logger *slog.Logger

	mu               sync.Mutex
	records          map[string]Record
	version          uint64
	subscribers      map[int]chan []Record
	nextSubscriberID int

	saveMu       sync.Mutex
	savedVersion uint64
}

// NewRegistry creates a registry, restoring claims from the store.
func NewRegistry(config Config) (*Registry, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	registry := &Registry{
		store:       config.Store,
		logger:      logger,
		records:     make(map[string]Record),
		subscribers: make(map[int]chan []Record),
	}
	if registry.store != nil {
		restored, err := registry.store.Load()
		if err != nil {
			return nil, fmt.Errorf("restoring fix claims: %w", err)
		}
		for _, record := range restored {
			registry.records[record.ProjectKey] = record
		}
		logger.Info("restored fix claims", "count", len(restored))
	}
	return registry, nil
}

// ReportFixing records that user is fixing key as of build, replacing
// any existing claim for key.
func (r *Registry) ReportFixing(key, user string, build int64) {
	r.mu.Lock()
	r.records[key] = Record{ProjectKey: key, UserName: user, BuildNumber: build}
	version, snapshot := r.changedLocked()
	r.mu.Unlock()

	r.logger.Info("fix claimed", "project", key, "user", user, "build", build)
	r.persist(version, snapshot)
}

// MarkFixed removes the claim for key when it was made against a build
// older than build. It reports whether a claim was removed. Subscribers
// receive the snapshot either way; only a removal is persisted.
func (r *Registry) MarkFixed(key string, build int64) bool {
	r.mu.Lock()
	existing, ok := r.records[key]
	if !ok || existing.BuildNumber >= build {
		r.pushLocked(r.snapshotLocked())
		r.mu.Unlock()
		return false
	}
	delete(r.records, key)
	version, snapshot := r.changedLocked()
	r.mu.Unlock()

	r.logger.Info("fix completed", "project", key, "user", existing.UserName, "build", build)
	r.persist(version, snapshot)
	return true
}

// Query returns the claims matching any of identities, sorted by key.
// Version 1 identities are matched leniently against the last path
// segment of URL keys; version 2 requires an exact key.
func (r *Registry) Query(version int, identities []string) []Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matches []Record
	for key, record := range r.records {
		for _, identity := range identities {
			if keyMatches(version, key, identity) {
				matches = append(matches, record)
				break
			}
		}
	}
	sortRecords(matches)
	return matches
}

// Snapshot returns every claim, sorted by key.
func (r *Registry) Snapshot() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// Subscribe returns a channel receiving the full snapshot after each
// mutation. A subscriber that falls behind only sees the latest
// snapshot. The returned function cancels the subscription.
func (r *Registry) Subscribe() (<-chan []Record, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextSubscriberID
	r.nextSubscriberID++
	channel := make(chan []Record, 1)
	r.subscribers[id] = channel
	return channel, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.subscribers, id)
	}
}

// changedLocked bumps the version and pushes the new snapshot to every
// subscriber.
func (r *Registry) changedLocked() (uint64, []Record) {
	r.version++
	snapshot := r.snapshotLocked()
	r.pushLocked(snapshot)
	return r.version, snapshot
}

// pushLocked replaces each subscriber's pending snapshot with its own
// copy of snapshot.
func (r *Registry) pushLocked(snapshot []Record) {
	for _, channel := range r.subscribers {
		select {
		case <-channel:
		default:
		}
		channel <- append([]Record(nil), snapshot...)
	}
}

func (r *Registry) snapshotLocked() []Record {
	snapshot := make([]Record, 0, len(r.records))
	for _, record := range r.records {
		snapshot = append(snapshot, record)
	}
	sortRecords(snapshot)
	return snapshot
}

// persist writes snapshot unless a newer version has already been
// written.
func (r *Registry) persist(version uint64, snapshot []Record) {
	if r.store == nil {
		return
	}
	r.saveMu.Lock()
	defer r.saveMu.Unlock()
	if version <= r.savedVersion {
		return
	}
	if err := r.store.Save(snapshot); err != nil {
		r.logger.Error("persisting fix claims", "error", err)
		return
	}
	r.savedVersion = version
}

func keyMatches(version int, key, identity string) bool {
	if key == identity {
		return true
	}
	if version >= 2 {
		return false
	}
	if isBare(identity) && identity == lastSegment(key) {
		return true
	}
	return isBare(key) && key == lastSegment(identity)
}

func isBare(identity string) bool {
	return !strings.Contains(identity, "/")
}

// lastSegment returns the final path element of a URL, ignoring a
// trailing slash: "http://ci/job/team/job/App/" yields "App".
func lastSegment(identity string) string {
	trimmed := strings.TrimRight(identity, "/")
	return trimmed[strings.LastIndex(trimmed, "/")+1:]
}

// LastSegment is exported for the wire layer, which answers version 1
// clients with bare names.
func LastSegment(identity string) string {
	return lastSegment(identity)
}

func sortRecords(records []Record) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].ProjectKey < records[j].ProjectKey
	})
}
