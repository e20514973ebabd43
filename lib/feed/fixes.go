// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package feed

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/bureau-foundation/buildmonitor/lib/fix"
)

// FixSource is the part of *fix.Registry the feed reads.
type FixSource interface {
	Snapshot() []fix.Record
	Subscribe() (<-chan []fix.Record, func())
}

type fixFeed struct {
	source FixSource
	logger *slog.Logger
}

// NewFixHandler returns the coordination server feed's router.
func NewFixHandler(source FixSource, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	feed := &fixFeed{source: source, logger: logger}
	router := mux.NewRouter()
	router.HandleFunc("/health", health).Methods(http.MethodGet)
	router.HandleFunc("/api/fixes", feed.fixes).Methods(http.MethodGet)
	router.HandleFunc("/ws", feed.websocket).Methods(http.MethodGet)
	return router
}

func nonNil(records []fix.Record) []fix.Record {
	if records == nil {
		return []fix.Record{}
	}
	return records
}

func (f *fixFeed) fixes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, nonNil(f.source.Snapshot()))
}

func (f *fixFeed) websocket(w http.ResponseWriter, r *http.Request) {
	updates, cancel := f.source.Subscribe()
	defer cancel()
	initial := Message{Type: "fixes", Data: nonNil(f.source.Snapshot())}
	stream(w, r, f.logger, initial, updates, func(records []fix.Record) Message {
		return Message{Type: "fixes", Data: nonNil(records)}
	})
}
