// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package netutil

import (
	"errors"
	"io"
	"net"
	"syscall"
)

// closeErrors are what a fix server connection sees when a client hangs
// up early: a monitor that half-closes before reading, one killed mid
// write, or the server closing the socket during shutdown.
var closeErrors = []error{
	io.EOF,
	io.ErrUnexpectedEOF,
	net.ErrClosed,
	syscall.EPIPE,
	syscall.ECONNRESET,
}

// IsExpectedCloseError reports whether err only says that the peer or
// the server ended the connection. Such errors are not worth logging.
func IsExpectedCloseError(err error) bool {
	if err == nil {
		return false
	}
	for _, target := range closeErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
