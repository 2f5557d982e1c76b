// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countdownRecorder struct {
	ticks   []int
	expired int
}

func (r *countdownRecorder) tick(n int) { r.ticks = append(r.ticks, n) }
func (r *countdownRecorder) expire()    { r.expired++ }

func TestWarningCountdown_TicksDownThenExpiresOnce(t *testing.T) {
	clock := newManualClock()
	c := NewWarningCountdown(clock, time.Second)
	rec := &countdownRecorder{}

	c.Start(3, rec.tick, rec.expire)
	require.True(t, c.Running())

	clock.Advance(time.Second)
	require.Equal(t, []int{2}, rec.ticks)
	require.Equal(t, 0, rec.expired)

	clock.Advance(time.Second)
	require.Equal(t, []int{2, 1}, rec.ticks)

	clock.Advance(time.Second)
	require.Equal(t, []int{2, 1, 0}, rec.ticks)
	require.Equal(t, 1, rec.expired)
	require.False(t, c.Running())

	clock.Advance(10 * time.Second)
	require.Equal(t, []int{2, 1, 0}, rec.ticks)
	require.Equal(t, 1, rec.expired)
	require.Equal(t, 0, clock.Pending())
}

func TestWarningCountdown_ThirtySeconds(t *testing.T) {
	clock := newManualClock()
	c := NewWarningCountdown(clock, 0)
	rec := &countdownRecorder{}

	c.Start(DefaultWarningSeconds, rec.tick, rec.expire)
	clock.Advance(time.Duration(DefaultWarningSeconds) * time.Second)

	require.Len(t, rec.ticks, DefaultWarningSeconds)
	for i, n := range rec.ticks {
		require.Equal(t, DefaultWarningSeconds-1-i, n)
	}
	require.Equal(t, 1, rec.expired)
}

func TestWarningCountdown_Cancel(t *testing.T) {
	clock := newManualClock()
	c := NewWarningCountdown(clock, time.Second)
	rec := &countdownRecorder{}

	c.Start(5, rec.tick, rec.expire)
	clock.Advance(2 * time.Second)
	c.Cancel()
	require.False(t, c.Running())

	clock.Advance(time.Minute)
	require.Equal(t, []int{4, 3}, rec.ticks)
	require.Equal(t, 0, rec.expired)
}

func TestWarningCountdown_CancelWinsTie(t *testing.T) {
	clock := &leakyClock{}
	c := NewWarningCountdown(clock, time.Second)
	rec := &countdownRecorder{}

	c.Start(3, rec.tick, rec.expire)
	c.Cancel()

	// The first tick is already due when Cancel runs.
	clock.fireAll()
	require.Empty(t, rec.ticks)
	require.Equal(t, 0, rec.expired)
}

func TestWarningCountdown_RestartDropsOldRun(t *testing.T) {
	clock := newManualClock()
	c := NewWarningCountdown(clock, time.Second)
	old := &countdownRecorder{}
	fresh := &countdownRecorder{}

	c.Start(3, old.tick, old.expire)
	clock.Advance(time.Second)
	c.Start(2, fresh.tick, fresh.expire)

	clock.Advance(5 * time.Second)
	require.Equal(t, []int{2}, old.ticks)
	require.Equal(t, 0, old.expired)
	require.Equal(t, []int{1, 0}, fresh.ticks)
	require.Equal(t, 1, fresh.expired)
}

func TestWarningCountdown_ZeroExpiresWithoutTicks(t *testing.T) {
	clock := newManualClock()
	c := NewWarningCountdown(clock, time.Second)
	rec := &countdownRecorder{}

	c.Start(0, rec.tick, rec.expire)
	clock.Advance(0)

	require.Empty(t, rec.ticks)
	require.Equal(t, 1, rec.expired)
	require.False(t, c.Running())
}

func TestWarningCountdown_CancelIdleIsNoop(t *testing.T) {
	c := NewWarningCountdown(newManualClock(), time.Second)
	require.NotPanics(t, func() {
		c.Cancel()
		c.Cancel()
	})
	require.False(t, c.Running())
}

func TestWarningCountdown_CancelFromFinalTickSkipsExpire(t *testing.T) {
	clock := newManualClock()
	c := NewWarningCountdown(clock, time.Second)
	rec := &countdownRecorder{}

	c.Start(2, func(n int) {
		rec.tick(n)
		if n == 0 {
			c.Cancel()
		}
	}, rec.expire)
	clock.Advance(2 * time.Second)

	require.Equal(t, []int{1, 0}, rec.ticks)
	require.Equal(t, 0, rec.expired)
}
