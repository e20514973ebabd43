// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package fixserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/bureau-foundation/buildmonitor/lib/fix"
	"github.com/bureau-foundation/buildmonitor/lib/fixwire"
	"github.com/bureau-foundation/buildmonitor/lib/netutil"
)

const (
	defaultReadTimeout     = 3 * time.Second
	defaultWriteTimeout    = 3 * time.Second
	defaultShutdownTimeout = 5 * time.Second
)

// Config holds the server's collaborators and limits.
type Config struct {
	// Registry is required.
	Registry *fix.Registry

	// ReadTimeout bounds the wait for a connection's request frame.
	// Defaults to 3s.
	ReadTimeout time.Duration

	// WriteTimeout bounds writing a response. Defaults to 3s.
	WriteTimeout time.Duration

	// ShutdownTimeout bounds the wait for in-flight handlers once the
	// context is cancelled. Defaults to 5s.
	ShutdownTimeout time.Duration

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Server serves the fix coordination protocol.
type Server struct {
	registry        *fix.Registry
	readTimeout     time.Duration
	writeTimeout    time.Duration
	shutdownTimeout time.Duration
	logger          *slog.Logger

	activeConnections sync.WaitGroup

	connectionsMu sync.Mutex
	connections   map[net.Conn]struct{}
}

// New creates a server with defaults applied.
func New(config Config) *Server {
	if config.Registry == nil {
		panic("fixserver: Config.Registry is required")
	}
	server := &Server{
		registry:        config.Registry,
		readTimeout:     config.ReadTimeout,
		writeTimeout:    config.WriteTimeout,
		shutdownTimeout: config.ShutdownTimeout,
		logger:          config.Logger,
		connections:     make(map[net.Conn]struct{}),
	}
	if server.readTimeout <= 0 {
		server.readTimeout = defaultReadTimeout
	}
	if server.writeTimeout <= 0 {
		server.writeTimeout = defaultWriteTimeout
	}
	if server.shutdownTimeout <= 0 {
		server.shutdownTimeout = defaultShutdownTimeout
	}
	if server.logger == nil {
		server.logger = slog.Default()
	}
	return server
}

// ListenAndServe listens on a TCP address and serves until ctx is
// cancelled.
func (s *Server) ListenAndServe(ctx context.Context, address string) error {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", address, err)
	}
	return s.Serve(ctx, listener)
}

// Serve accepts connections on listener until ctx is cancelled. The
// listener is closed on return.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	defer listener.Close()

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	s.logger.Info("fix server listening", "address", listener.Addr().String())

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			s.logger.Error("accept failed", "error", err)
			continue
		}

		s.track(conn, true)
		s.activeConnections.Add(1)
		go func() {
			defer s.activeConnections.Done()
			defer s.track(conn, false)
			defer conn.Close()
			s.handleConnection(conn)
		}()
	}

	return s.drain()
}

// drain waits for in-flight handlers, closing any connections still
// open when the shutdown timeout expires.
func (s *Server) drain() error {
	finished := make(chan struct{})
	go func() {
		s.activeConnections.Wait()
		close(finished)
	}()

	timer := time.NewTimer(s.shutdownTimeout)
	defer timer.Stop()
	select {
	case <-finished:
		return nil
	case <-timer.C:
	}

	s.connectionsMu.Lock()
	remaining := len(s.connections)
	for conn := range s.connections {
		conn.Close()
	}
	s.connectionsMu.Unlock()
	s.logger.Warn("shutdown timeout, closed in-flight connections", "count", remaining)

	<-finished
	return fmt.Errorf("fix server shutdown timed out with %d connections in flight", remaining)
}

func (s *Server) track(conn net.Conn, active bool) {
	s.connectionsMu.Lock()
	defer s.connectionsMu.Unlock()
	if active {
		s.connections[conn] = struct{}{}
	} else {
		delete(s.connections, conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	remote := conn.RemoteAddr().String()

	if err := conn.SetReadDeadline(time.Now().Add(s.readTimeout)); err != nil {
		s.logger.Debug("setting read deadline", "remote", remote, "error", err)
		return
	}
	request, err := fixwire.ReadRequest(conn)
	if err != nil {
		if !netutil.IsExpectedCloseError(err) {
			s.logger.Debug("dropping request", "remote", remote, "error", err)
		}
		return
	}

	switch request.Type {
	case fixwire.FixState:
		records := s.registry.Query(request.Version, request.Projects)
		if err := conn.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil {
			return
		}
		if err := fixwire.WriteResponse(conn, request.Version, records); err != nil {
			if !netutil.IsExpectedCloseError(err) {
				s.logger.Warn("writing fix state response", "remote", remote, "error", err)
			}
			return
		}
		s.logger.Debug("answered fix state",
			"remote", remote, "version", request.Version,
			"requested", len(request.Projects), "matched", len(records))

	case fixwire.ReportFixing:
		s.registry.ReportFixing(request.Project, request.UserName, request.BuildNumber)

	case fixwire.MarkFixed:
		s.registry.MarkFixed(request.Project, request.BuildNumber)
	}
}
