// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"sync"
	"time"
)

// =============================================================================
// IDLE SCHEDULER
// =============================================================================

// IdleScheduler owns exactly one deferred callback, the idle timer.
//
// Every Arm bumps a generation counter. A timer callback only runs onFire if
// its generation is still current when it acquires the lock, so a timer that
// the runtime already started firing cannot slip through after a Cancel or
// newer Arm that took the lock first. Once the callback has passed that
// check onFire runs even if Cancel is called concurrently; callers that must
// ignore it keep their own generation, as Controller does.
type IdleScheduler struct {
	mu      sync.Mutex
	clock   Clock
	timer   Timer
	gen     uint64
	pending bool
}

// NewIdleScheduler creates a scheduler driven by clock. A nil clock means the
// real clock.
func NewIdleScheduler(clock Clock) *IdleScheduler {
	if clock == nil {
		clock = RealClock{}
	}
	return &IdleScheduler{clock: clock}
}

// Arm cancels any pending timer, then schedules onFire to run once after d.
func (s *IdleScheduler) Arm(d time.Duration, onFire func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	s.gen++
	gen := s.gen
	s.pending = true

	s.timer = s.clock.AfterFunc(d, func() {
		s.mu.Lock()
		if gen != s.gen || !s.pending {
			s.mu.Unlock()
			return
		}
		s.pending = false
		s.timer = nil
		s.mu.Unlock()

		if onFire != nil {
			onFire()
		}
	})
}

// Cancel discards the pending timer, if any. Calling it when nothing is
// pending is a no-op. It does not wait for an onFire that is already running.
func (s *IdleScheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// Pending reports whether a timer is armed and has not fired.
func (s *IdleScheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// stopLocked invalidates the current generation. Caller must hold s.mu.
func (s *IdleScheduler) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.pending {
		s.gen++
		s.pending = false
	}
}
