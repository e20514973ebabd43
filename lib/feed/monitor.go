// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package feed

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/bureau-foundation/buildmonitor/lib/monitor"
	"github.com/bureau-foundation/buildmonitor/lib/project"
)

// MonitorSource is the part of *monitor.Monitor the feed reads.
type MonitorSource interface {
	State() monitor.State
	Volunteer(id string) error
	Subscribe() (<-chan monitor.Update, func())
}

// Node is one row of the rendered tree.
type Node struct {
	Depth   int             `json:"depth"`
	Folder  *project.Folder `json:"folder,omitempty"`
	Project *ProjectView    `json:"project,omitempty"`
}

// ProjectView is a record plus the values a UI derives from it.
type ProjectView struct {
	project.Record
	BuildLogURL string   `json:"build_log_url,omitempty"`
	Progress    *float64 `json:"progress,omitempty"`
}

// ProjectList is the response of GET /api/projects.
type ProjectList struct {
	Generation uint64             `json:"generation"`
	UpdatedAt  time.Time          `json:"updated_at"`
	Summary    project.Summary    `json:"summary"`
	LastError  *monitor.ErrorInfo `json:"last_error,omitempty"`
	Nodes      []Node             `json:"nodes"`
}

// SummaryView is the response of GET /api/summary.
type SummaryView struct {
	project.Summary
	DiscoveryFailures int                `json:"discovery_failures"`
	LastError         *monitor.ErrorInfo `json:"last_error,omitempty"`
}

type monitorFeed struct {
	source MonitorSource
	logger *slog.Logger
}

// NewMonitorHandler returns the monitor feed's router.
func NewMonitorHandler(source MonitorSource, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	feed := &monitorFeed{source: source, logger: logger}
	router := mux.NewRouter()
	router.HandleFunc("/health", health).Methods(http.MethodGet)
	router.HandleFunc("/api/projects", feed.projects).Methods(http.MethodGet)
	router.HandleFunc("/api/projects/{id}", feed.project).Methods(http.MethodGet)
	router.HandleFunc("/api/projects/{id}/volunteer", feed.volunteer).Methods(http.MethodPost)
	router.HandleFunc("/api/summary", feed.summary).Methods(http.MethodGet)
	router.HandleFunc("/ws", feed.websocket).Methods(http.MethodGet)
	return router
}

func viewOf(record *project.Record) *ProjectView {
	view := &ProjectView{Record: *record}
	if url, ok := record.BuildLogURL(); ok {
		view.BuildLogURL = url
	}
	if progress, ok := record.Progress(); ok {
		view.Progress = &progress
	}
	return view
}

// listOf renders the state, keeping only failing projects when
// failingOnly is set.
func listOf(state monitor.State, failingOnly bool) ProjectList {
	tree := state.Tree
	if failingOnly {
		tree = tree.Filter(func(record *project.Record) bool { return record.Status.IsFailing() })
	}
	list := ProjectList{
		Generation: state.Generation,
		UpdatedAt:  state.UpdatedAt,
		Summary:    state.Summary,
		LastError:  state.LastError,
		Nodes:      []Node{},
	}
	tree.Walk(func(entry project.Entry) {
		node := Node{Depth: entry.Depth, Folder: entry.Folder}
		if entry.Project != nil {
			node.Project = viewOf(entry.Project)
		}
		list.Nodes = append(list.Nodes, node)
	})
	return list
}

func (f *monitorFeed) projects(w http.ResponseWriter, r *http.Request) {
	failingOnly := r.URL.Query().Get("failing") == "true"
	writeJSON(w, http.StatusOK, listOf(f.source.State(), failingOnly))
}

func (f *monitorFeed) project(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	record, ok := f.source.State().Tree.Lookup(id)
	if !ok {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	writeJSON(w, http.StatusOK, viewOf(record))
}

func (f *monitorFeed) volunteer(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	err := f.source.Volunteer(id)
	switch {
	case err == nil:
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
	case errors.Is(err, monitor.ErrUnknownProject):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, monitor.ErrNotFailing):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, monitor.ErrQueueRefused):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		f.logger.Error("volunteering", "project", id, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (f *monitorFeed) summary(w http.ResponseWriter, r *http.Request) {
	state := f.source.State()
	writeJSON(w, http.StatusOK, SummaryView{
		Summary:           state.Summary,
		DiscoveryFailures: state.DiscoveryFailures,
		LastError:         state.LastError,
	})
}

func (f *monitorFeed) websocket(w http.ResponseWriter, r *http.Request) {
	updates, cancel := f.source.Subscribe()
	defer cancel()
	initial := Message{Type: string(monitor.UpdateTree), Data: listOf(f.source.State(), false)}
	stream(w, r, f.logger, initial, updates, func(update monitor.Update) Message {
		switch update.Kind {
		case monitor.UpdateNotification:
			return Message{Type: string(update.Kind), Data: update.Event}
		case monitor.UpdateError:
			return Message{Type: string(update.Kind), Data: update.Error}
		}
		return Message{Type: string(update.Kind), Data: listOf(*update.State, false)}
	})
}
