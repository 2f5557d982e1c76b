// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"strconv"
	"time"
)

// State is the timeout controller's state.
type State int

const (
	// StateActive means the idle timer is armed and no warning is shown.
	StateActive State = iota
	// StateWarning means the countdown is running and the warning is visible.
	StateWarning
	// StateExpired is terminal for a controller instance.
	StateExpired
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateActive:
		return "ACTIVE"
	case StateWarning:
		return "WARNING"
	case StateExpired:
		return "EXPIRED"
	default:
		return "UNKNOWN"
	}
}

// View is the presentation-facing projection of the controller.
type View struct {
	State     State
	Visible   bool // warning modal shown
	Remaining int  // seconds left, meaningful only in StateWarning
}

// Cause names what drove a transition.
type Cause string

const (
	CauseStart         Cause = "start"
	CauseActivity      Cause = "activity"
	CauseStayConnected Cause = "stay-connected"
	CauseIdle          Cause = "idle"
	CauseCountdown     Cause = "countdown"
)

// Transition records one state change.
type Transition struct {
	From  State
	To    State
	Cause Cause
	At    time.Time
}

// FormatDuration returns a human-readable duration string.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return strconv.Itoa(int(d.Seconds())) + "s"
	}
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	if secs == 0 {
		return strconv.Itoa(mins) + "m"
	}
	return strconv.Itoa(mins) + "m " + strconv.Itoa(secs) + "s"
}
