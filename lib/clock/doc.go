// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source so that polling
// intervals and elapsed-build arithmetic can be driven
// deterministically in tests.
//
// Components take a Clock field and default it to Real(). Tests inject
// Fake(epoch) and move time forward with Advance:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	engine := poll.New(poll.Config{Clock: fake, ...})
//	fake.WaitForTimers(1)
//	fake.Advance(time.Minute)
//
// WaitForTimers blocks until the goroutine under test has registered
// its ticker or timer, removing the race between registration and
// Advance.
package clock
