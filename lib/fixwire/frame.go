// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package fixwire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// MaxFrameSize bounds a frame's payload.
const MaxFrameSize = 1 << 20

// ErrFrameTooLarge is returned for a frame whose declared length
// exceeds MaxFrameSize.
var ErrFrameTooLarge = errors.New("fixwire: frame exceeds maximum size")

// WriteFrame writes payload with its length prefix.
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) > MaxFrameSize {
		return ErrFrameTooLarge
	}
	frame := make([]byte, 4+len(payload))
	binary.BigEndian.PutUint32(frame, uint32(len(payload)))
	copy(frame[4:], payload)
	if _, err := w.Write(frame); err != nil {
		return fmt.Errorf("fixwire: writing frame: %w", err)
	}
	return nil
}

// ReadFrame reads one length-prefixed payload.
func ReadFrame(r io.Reader) ([]byte, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("fixwire: reading frame header: %w", err)
	}
	length := binary.BigEndian.Uint32(header[:])
	if length > MaxFrameSize {
		return nil, ErrFrameTooLarge
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("fixwire: reading frame payload: %w", err)
	}
	return payload, nil
}
