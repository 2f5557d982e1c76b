// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/shiftlog-tui/internal/model"
	"github.com/jeranaias/shiftlog-tui/internal/session"
	"github.com/jeranaias/shiftlog-tui/internal/ui/styles"
)

// =============================================================================
// STATUS BAR
// =============================================================================

// KeyHint is one "key action" pair shown in the status bar.
type KeyHint struct {
	Key    string
	Action string
}

// StatusBar is the bottom line: key hints on the left, signed-in user and
// session state on the right.
type StatusBar struct {
	theme *styles.Theme
	Width int

	Hints    []KeyHint
	Username string
	Role     model.Role
	Session  session.View
	Busy     string // in-flight request label, empty when idle
}

// NewStatusBar creates a status bar.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{theme: theme}
}

// SetWidth sets the bar width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// SetHints replaces the key hints.
func (s *StatusBar) SetHints(hints ...KeyHint) {
	s.Hints = hints
}

// SetUser sets the signed-in user. An empty username hides the user segment.
func (s *StatusBar) SetUser(username string, role model.Role) {
	s.Username = username
	s.Role = role
}

// View renders the status bar.
func (s *StatusBar) View() string {
	inner := s.Width - 2 // StatusBar padding
	right := s.renderRight()

	avail := inner - lipgloss.Width(right) - 1
	left := s.renderHints(avail)

	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	line := left + s.theme.StatusHint.Render(strings.Repeat(" ", gap)) + right

	return s.theme.StatusBar.Width(s.Width).Render(line)
}

// renderHints drops hints from the end until they fit in width.
func (s *StatusBar) renderHints(width int) string {
	rendered := make([]string, 0, len(s.Hints))
	used := 0
	for _, h := range s.Hints {
		part := s.theme.StatusKey.Render(h.Key) + s.theme.StatusHint.Render(" "+h.Action+"  ")
		w := lipgloss.Width(part)
		if used+w > width {
			break
		}
		rendered = append(rendered, part)
		used += w
	}
	return strings.Join(rendered, "")
}

func (s *StatusBar) renderRight() string {
	var parts []string

	if s.Busy != "" {
		parts = append(parts, s.theme.StatusHint.Render(s.Busy+"..."))
	}
	if s.Username != "" {
		user := s.Username
		if s.Role == model.RoleAdmin {
			user += " (" + s.Role.DisplayName() + ")"
		}
		parts = append(parts, s.theme.StatusHint.Render(user))
		parts = append(parts, s.renderSession())
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, s.theme.StatusHint.Render(" | ")) + s.theme.StatusHint.Render(" ")
}

func (s *StatusBar) renderSession() string {
	badge := lipgloss.NewStyle().Background(styles.SurfaceDim).Bold(true)
	switch s.Session.State {
	case session.StateWarning:
		return badge.Foreground(styles.Amber).Render(styles.StatusIndicators.Warning + " " + FormatCountdown(s.Session.Remaining))
	case session.StateExpired:
		return badge.Foreground(styles.Rose).Render(session.StateExpired.String())
	default:
		return badge.Foreground(styles.Emerald).Render(session.StateActive.String())
	}
}
