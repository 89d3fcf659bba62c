// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package console

import "time"

// =============================================================================
// CLOCK ABSTRACTION
// =============================================================================

// Timer is a cancellable pending callback.
type Timer interface {
	// Stop prevents the callback from firing. Returns false if it already
	// fired or was stopped.
	Stop() bool
}

// Clock is the time capability injected into the controller. Retry delays
// and the resync settle delay run on it, so tests substitute a fake clock
// and advance it manually instead of sleeping.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
}

// systemClock is the production Clock backed by the time package.
type systemClock struct{}

// SystemClock returns the real-time Clock.
func SystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}
