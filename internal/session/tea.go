// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// BUBBLE TEA INTEGRATION
// =============================================================================

// ViewMsg carries a controller View into the Bubble Tea update loop.
type ViewMsg struct {
	View View
}

// TimeoutMsg indicates the session expired and teardown has run.
type TimeoutMsg struct {
	Err error
}

// ProgramObserver returns an observer that forwards every View to send.
// send must not block: the controller emits from inside the update loop when
// Feed resumes a warning, so a bare (*tea.Program).Send would deadlock there.
func ProgramObserver(send func(tea.Msg)) func(View) {
	return func(v View) {
		send(ViewMsg{View: v})
	}
}

// InputSurface adapts terminal input messages to activity signals. The
// update loop calls Feed with every message it receives.
type InputSurface struct {
	*Hub
}

// NewInputSurface creates a surface with no listeners.
func NewInputSurface() *InputSurface {
	return &InputSurface{Hub: NewHub()}
}

// Feed emits the signal matching msg. It reports whether msg was input.
func (s *InputSurface) Feed(msg tea.Msg) bool {
	kind, ok := SignalFor(msg)
	if !ok {
		return false
	}
	s.Emit(kind)
	return true
}

// SignalFor maps a terminal message to an activity signal.
func SignalFor(msg tea.Msg) (Signal, bool) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return SignalKeyDown, true
	case tea.MouseMsg:
		switch msg.Type {
		case tea.MouseMotion:
			return SignalPointerMove, true
		case tea.MouseWheelUp, tea.MouseWheelDown, tea.MouseWheelLeft, tea.MouseWheelRight:
			return SignalScroll, true
		case tea.MouseRelease, tea.MouseUnknown:
			return "", false
		default:
			return SignalPointerDown, true
		}
	}
	return "", false
}
