// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package fixclient

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bureau-foundation/buildmonitor/lib/fixwire"
)

const (
	defaultDialTimeout = 3 * time.Second
	defaultIOTimeout   = 3 * time.Second
)

// Config holds the dispatcher's settings and callbacks.
type Config struct {
	// Address is the server's host:port.
	Address string

	// Version is the protocol version stamped on every request.
	// Defaults to 2.
	Version int

	// UserName is stamped on ReportFixing requests that carry none.
	UserName string

	// DialTimeout and IOTimeout default to 3s each.
	DialTimeout time.Duration
	IOTimeout   time.Duration

	// OnFixState receives every fix_state response. Called on the
	// worker goroutine.
	OnFixState func(fixwire.Response)

	// OnFailure receives every dropped request. Called on the worker
	// goroutine.
	OnFailure func(fixwire.Request, error)

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

type entry struct {
	id      string
	request fixwire.Request
}

// Dispatcher serializes requests to the coordination server.
type Dispatcher struct {
	address     string
	version     int
	userName    string
	dialTimeout time.Duration
	ioTimeout   time.Duration
	onFixState  func(fixwire.Response)
	onFailure   func(fixwire.Request, error)
	logger      *slog.Logger

	mu    sync.Mutex
	queue []entry

	wake   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// New starts a dispatcher. Close stops it.
func New(config Config) *Dispatcher {
	version := config.Version
	if version == 0 {
		version = fixwire.Version2
	}
	dialTimeout := config.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = defaultDialTimeout
	}
	ioTimeout := config.IOTimeout
	if ioTimeout <= 0 {
		ioTimeout = defaultIOTimeout
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	dispatcher := &Dispatcher{
		address:     config.Address,
		version:     version,
		userName:    config.UserName,
		dialTimeout: dialTimeout,
		ioTimeout:   ioTimeout,
		onFixState:  config.OnFixState,
		onFailure:   config.OnFailure,
		logger:      logger,
		wake:        make(chan struct{}, 1),
		ctx:         ctx,
		cancel:      cancel,
		done:        make(chan struct{}),
	}
	go dispatcher.run()
	return dispatcher
}

// Version returns the protocol version the dispatcher speaks.
func (d *Dispatcher) Version() int { return d.version }

// Enqueue appends request to the queue. It returns false, leaving the
// queue unchanged, when request is a fix_state query and another is
// already queued or in flight, or when the dispatcher is closed.
func (d *Dispatcher) Enqueue(request fixwire.Request) bool {
	request.Version = d.version
	if request.Type == fixwire.ReportFixing && request.UserName == "" {
		request.UserName = d.userName
	}

	d.mu.Lock()
	if d.ctx.Err() != nil {
		d.mu.Unlock()
		return false
	}
	if request.Type == fixwire.FixState {
		for _, queued := range d.queue {
			if queued.request.Type == fixwire.FixState {
				d.mu.Unlock()
				return false
			}
		}
	}
	d.queue = append(d.queue, entry{id: uuid.New().String(), request: request})
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
	return true
}

// RequestFixState queues a query for the given identities.
func (d *Dispatcher) RequestFixState(identities []string) bool {
	return d.Enqueue(fixwire.Request{Type: fixwire.FixState, Projects: identities})
}

// ReportFixing queues a claim by the configured user.
func (d *Dispatcher) ReportFixing(identity string, build int64) bool {
	return d.Enqueue(fixwire.Request{Type: fixwire.ReportFixing, Project: identity, BuildNumber: build})
}

// MarkFixed queues a fix completion.
func (d *Dispatcher) MarkFixed(identity string, build int64) bool {
	return d.Enqueue(fixwire.Request{Type: fixwire.MarkFixed, Project: identity, BuildNumber: build})
}

// Pending returns the number of queued requests, including one in
// flight.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queue)
}

// Close stops the worker, abandoning queued requests. An exchange in
// flight is interrupted.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.cancel()
	d.mu.Unlock()
	<-d.done
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for {
		current, ok := d.head()
		if !ok {
			return
		}

		response, err := d.exchange(current)

		d.mu.Lock()
		d.queue = d.queue[1:]
		d.mu.Unlock()

		if err != nil {
			if d.ctx.Err() != nil {
				return
			}
			d.logger.Warn("fix server request dropped",
				"request_id", current.id,
				"type", current.request.Type,
				"address", d.address,
				"error", err)
			if d.onFailure != nil {
				d.onFailure(current.request, err)
			}
			continue
		}
		d.logger.Debug("fix server request complete", "request_id", current.id, "type", current.request.Type)
		if response != nil && d.onFixState != nil {
			d.onFixState(*response)
		}
	}
}

// head blocks until the queue is non-empty and returns its first entry
// without removing it.
func (d *Dispatcher) head() (entry, bool) {
	for {
		d.mu.Lock()
		if len(d.queue) > 0 {
			current := d.queue[0]
			d.mu.Unlock()
			return current, true
		}
		d.mu.Unlock()

		select {
		case <-d.wake:
		case <-d.ctx.Done():
			return entry{}, false
		}
	}
}

// exchange sends one request on a fresh connection. The response is
// nil for mutations.
func (d *Dispatcher) exchange(current entry) (*fixwire.Response, error) {
	dialer := net.Dialer{Timeout: d.dialTimeout}
	conn, err := dialer.DialContext(d.ctx, "tcp", d.address)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", d.address, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(d.ctx, func() { conn.Close() })
	defer stop()

	if err := conn.SetDeadline(time.Now().Add(d.ioTimeout)); err != nil {
		return nil, fmt.Errorf("setting deadline: %w", err)
	}
	if err := fixwire.WriteRequest(conn, current.request); err != nil {
		return nil, fmt.Errorf("writing request: %w", err)
	}
	if current.request.Type != fixwire.FixState {
		return nil, nil
	}

	if tcpConn, ok := conn.(*net.TCPConn); ok {
		tcpConn.CloseWrite()
	}
	response, err := fixwire.ReadResponse(conn)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return &response, nil
}
