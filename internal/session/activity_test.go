// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

func TestAttachActivity_ForwardsEveryDefaultSignal(t *testing.T) {
	hub := NewHub()
	count := 0
	b := AttachActivity(hub, nil, func() { count++ })

	require.Equal(t, len(DefaultSignals), hub.ListenerCount())
	for _, kind := range DefaultSignals {
		hub.Emit(kind)
	}
	require.Equal(t, len(DefaultSignals), count)
	require.True(t, b.Attached())
}

func TestAttachActivity_OnlyRequestedKinds(t *testing.T) {
	hub := NewHub()
	count := 0
	AttachActivity(hub, []Signal{SignalKeyDown}, func() { count++ })

	hub.Emit(SignalPointerMove)
	hub.Emit(SignalScroll)
	require.Equal(t, 0, count)

	hub.Emit(SignalKeyDown)
	require.Equal(t, 1, count)
}

func TestActivityBridge_DetachLeavesNoListeners(t *testing.T) {
	hub := NewHub()
	count := 0
	b := AttachActivity(hub, nil, func() { count++ })

	b.Detach()
	require.Equal(t, 0, hub.ListenerCount())
	require.False(t, b.Attached())

	for _, kind := range DefaultSignals {
		hub.Emit(kind)
	}
	require.Equal(t, 0, count)

	require.NotPanics(t, b.Detach)
	require.Equal(t, 0, hub.ListenerCount())
}

func TestActivityBridge_DetachKeepsOtherListeners(t *testing.T) {
	hub := NewHub()
	a, b := 0, 0
	first := AttachActivity(hub, nil, func() { a++ })
	AttachActivity(hub, nil, func() { b++ })

	first.Detach()
	hub.Emit(SignalKeyDown)
	require.Equal(t, 0, a)
	require.Equal(t, 1, b)
	require.Equal(t, len(DefaultSignals), hub.ListenerCount())
}

func TestSignalFor(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.Msg
		want Signal
		ok   bool
	}{
		{"key", tea.KeyMsg{Type: tea.KeyEnter}, SignalKeyDown, true},
		{"motion", tea.MouseMsg{Type: tea.MouseMotion}, SignalPointerMove, true},
		{"press", tea.MouseMsg{Type: tea.MouseLeft}, SignalPointerDown, true},
		{"wheel", tea.MouseMsg{Type: tea.MouseWheelDown}, SignalScroll, true},
		{"release", tea.MouseMsg{Type: tea.MouseRelease}, "", false},
		{"resize", tea.WindowSizeMsg{Width: 80, Height: 24}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SignalFor(tt.msg)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestInputSurface_Feed(t *testing.T) {
	surface := NewInputSurface()
	count := 0
	AttachActivity(surface, nil, func() { count++ })

	require.True(t, surface.Feed(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")}))
	require.False(t, surface.Feed(tea.WindowSizeMsg{}))
	require.Equal(t, 1, count)
}
