// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"sync"
	"time"
)

// DefaultTickInterval is the countdown granularity.
const DefaultTickInterval = time.Second

// =============================================================================
// WARNING COUNTDOWN
// =============================================================================

// WarningCountdown owns exactly one recurring tick.
//
// Ticks are scheduled against the start instant (start + k*interval) rather
// than chained off the previous fire, so a slow callback does not stretch the
// countdown. Each Start and Cancel bumps the generation; a tick whose
// generation is stale when it takes the lock does nothing.
type WarningCountdown struct {
	mu       sync.Mutex
	clock    Clock
	interval time.Duration

	timer     Timer
	gen       uint64
	running   bool
	startedAt time.Time
	initial   int
	step      int
}

// NewWarningCountdown creates a countdown. A nil clock means the real clock
// and a non-positive interval means DefaultTickInterval.
func NewWarningCountdown(clock Clock, interval time.Duration) *WarningCountdown {
	if clock == nil {
		clock = RealClock{}
	}
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &WarningCountdown{clock: clock, interval: interval}
}

// Start cancels any running countdown and begins a new one. onTick receives
// initialSeconds-1 down to 0, one value per tick. After the tick that reports
// 0, onExpire runs exactly once and the countdown stops.
func (c *WarningCountdown) Start(initialSeconds int, onTick func(remaining int), onExpire func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()
	c.gen++
	c.running = true
	c.startedAt = c.clock.Now()
	c.initial = initialSeconds
	c.step = 0

	if initialSeconds <= 0 {
		gen := c.gen
		c.timer = c.clock.AfterFunc(0, func() {
			if c.finish(gen) && onExpire != nil {
				onExpire()
			}
		})
		return
	}
	c.scheduleLocked(c.gen, onTick, onExpire)
}

// Cancel stops the countdown. A callback of the cancelled run that has not
// started yet is dropped, including onExpire when Cancel is called from the
// final onTick. A callback already executing on a timer goroutine is not
// interrupted; callers that must ignore it check their own generation, as
// Controller does. Cancelling an idle countdown is a no-op.
func (c *WarningCountdown) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

// Running reports whether a countdown is in progress.
func (c *WarningCountdown) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// scheduleLocked arms the timer for the next step. Caller must hold c.mu.
func (c *WarningCountdown) scheduleLocked(gen uint64, onTick func(int), onExpire func()) {
	next := c.step + 1
	due := c.startedAt.Add(time.Duration(next) * c.interval)
	delay := due.Sub(c.clock.Now())
	if delay < 0 {
		delay = 0
	}

	c.timer = c.clock.AfterFunc(delay, func() {
		c.mu.Lock()
		if gen != c.gen || !c.running {
			c.mu.Unlock()
			return
		}
		c.step = next
		remaining := c.initial - next
		if remaining < 0 {
			remaining = 0
		}
		done := remaining == 0
		if done {
			c.running = false
			c.timer = nil
		} else {
			c.scheduleLocked(gen, onTick, onExpire)
		}
		c.mu.Unlock()

		if onTick != nil {
			onTick(remaining)
		}
		if done && onExpire != nil && c.current(gen) {
			onExpire()
		}
	})
}

// finish marks a zero-length run complete if gen is still current.
func (c *WarningCountdown) finish(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen || !c.running {
		return false
	}
	c.running = false
	c.timer = nil
	return true
}

// current reports whether gen is still the latest run.
func (c *WarningCountdown) current(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return gen == c.gen
}

// stopLocked invalidates the current generation, finished or not. Caller
// must hold c.mu.
func (c *WarningCountdown) stopLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.gen++
	c.running = false
}
