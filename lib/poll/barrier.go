// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package poll

import (
	"context"
	"sync"
)

// barrier completes once every issued request has replied. Calls
// carrying another cycle's generation are ignored, so a straggler from
// an abandoned cycle cannot satisfy or corrupt the current one.
type barrier struct {
	generation uint64

	mu      sync.Mutex
	issued  int
	replied int
	closed  bool
	done    chan struct{}
}

func newBarrier(generation uint64) *barrier {
	return &barrier{generation: generation, done: make(chan struct{})}
}

// issue records an outstanding request. It must be called before the
// reply that caused the request is counted.
func (b *barrier) issue(generation uint64) bool {
	return b.issueN(generation, 1)
}

// issueN records n outstanding requests at once. Issuing a batch
// before starting any of them keeps an early reply from closing the
// barrier while the rest of the batch is still unissued.
func (b *barrier) issueN(generation uint64, n int) bool {
	if generation != b.generation {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.issued += n
	return true
}

// reply records a finished request, successful or not.
func (b *barrier) reply(generation uint64) {
	if generation != b.generation {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.replied++
	if b.replied == b.issued && !b.closed {
		b.closed = true
		close(b.done)
	}
}

// wait blocks until every issued request has replied or ctx ends. A
// barrier with nothing issued never completes; callers issue at least
// one request first.
func (b *barrier) wait(ctx context.Context) error {
	select {
	case <-b.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *barrier) counts() (issued, replied int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.issued, b.replied
}
