// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIdleScheduler_FiresOnceAtDeadline(t *testing.T) {
	clock := newManualClock()
	s := NewIdleScheduler(clock)

	fired := 0
	s.Arm(5*time.Second, func() { fired++ })
	require.True(t, s.Pending())

	clock.Advance(5*time.Second - time.Nanosecond)
	require.Equal(t, 0, fired)

	clock.Advance(time.Nanosecond)
	require.Equal(t, 1, fired)
	require.False(t, s.Pending())

	clock.Advance(time.Minute)
	require.Equal(t, 1, fired)
}

func TestIdleScheduler_RearmDiscardsPrevious(t *testing.T) {
	clock := newManualClock()
	s := NewIdleScheduler(clock)

	first, second := 0, 0
	s.Arm(5*time.Second, func() { first++ })
	clock.Advance(3 * time.Second)
	s.Arm(5*time.Second, func() { second++ })

	clock.Advance(3 * time.Second)
	require.Equal(t, 0, first)
	require.Equal(t, 0, second)

	clock.Advance(2 * time.Second)
	require.Equal(t, 0, first)
	require.Equal(t, 1, second)
	require.Equal(t, 0, clock.Pending())
}

func TestIdleScheduler_Cancel(t *testing.T) {
	clock := newManualClock()
	s := NewIdleScheduler(clock)

	fired := 0
	s.Arm(time.Second, func() { fired++ })
	s.Cancel()
	require.False(t, s.Pending())

	clock.Advance(time.Hour)
	require.Equal(t, 0, fired)
	require.Equal(t, 0, clock.Pending())
}

func TestIdleScheduler_CancelIdleIsNoop(t *testing.T) {
	s := NewIdleScheduler(newManualClock())
	require.NotPanics(t, func() {
		s.Cancel()
		s.Cancel()
	})
	require.False(t, s.Pending())
}

func TestIdleScheduler_StaleCallbackDropped(t *testing.T) {
	clock := &leakyClock{}
	s := NewIdleScheduler(clock)

	fired := 0
	s.Arm(time.Second, func() { fired++ })
	s.Cancel()

	// The runtime already started the callback; Cancel must still win.
	clock.fireAll()
	require.Equal(t, 0, fired)
}

func TestIdleScheduler_SupersededGenerationDropped(t *testing.T) {
	clock := &leakyClock{}
	s := NewIdleScheduler(clock)

	var got []string
	s.Arm(time.Second, func() { got = append(got, "old") })
	s.Arm(time.Second, func() { got = append(got, "new") })

	clock.fireAll()
	require.Equal(t, []string{"new"}, got)

	// Firing again is a no-op; each Arm fires at most once.
	clock.fireAll()
	require.Equal(t, []string{"new"}, got)
}
