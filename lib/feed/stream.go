// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package feed

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Message is one websocket frame.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The feed serves local UIs on a loopback address by default.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// stream upgrades the request, writes initial, and then writes every
// value received from updates until updates closes or the client goes
// away. The request context ending also stops it.
func stream[V any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, initial Message, updates <-chan V, convert func(V) Message) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Debug("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer conn.Close()

	// Inbound frames are only read to service control messages and to
	// notice the peer closing.
	gone := make(chan struct{})
	conn.SetReadLimit(4096)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					logger.Debug("websocket read failed", "remote", r.RemoteAddr, "error", err)
				}
				return
			}
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	if err := send(conn, initial); err != nil {
		logger.Debug("websocket write failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return
			}
			if err := send(conn, convert(update)); err != nil {
				logger.Debug("websocket write failed", "remote", r.RemoteAddr, "error", err)
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-gone:
			return
		case <-r.Context().Done():
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
				time.Now().Add(writeWait))
			return
		}
	}
}

func send(conn *websocket.Conn, message Message) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, data)
}
