// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/shiftlog-tui/internal/session"
	"github.com/jeranaias/shiftlog-tui/internal/ui/styles"
)

// =============================================================================
// TIMEOUT OVERLAY
// =============================================================================

// TimeoutOverlay renders the idle warning and the expiry notice. It holds no
// timers of its own: the session controller pushes every change through
// SetView.
type TimeoutOverlay struct {
	view session.View

	width  int
	height int
}

// NewTimeoutOverlay creates a hidden overlay.
func NewTimeoutOverlay() TimeoutOverlay {
	return TimeoutOverlay{}
}

// SetSize sets the overlay dimensions.
func (o *TimeoutOverlay) SetSize(width, height int) {
	o.width = width
	o.height = height
}

// SetView replaces the displayed controller state.
func (o *TimeoutOverlay) SetView(v session.View) {
	o.view = v
}

// Reset hides the overlay, used when a new session starts.
func (o *TimeoutOverlay) Reset() {
	o.view = session.View{}
}

// IsVisible reports whether the overlay covers the screen.
func (o TimeoutOverlay) IsVisible() bool {
	return o.view.Visible || o.view.State == session.StateExpired
}

// IsWarning reports whether the countdown is on screen.
func (o TimeoutOverlay) IsWarning() bool {
	return o.view.State == session.StateWarning && o.view.Visible
}

// Remaining returns the seconds left in the countdown.
func (o TimeoutOverlay) Remaining() int {
	return o.view.Remaining
}

// View renders the overlay, or "" when hidden.
func (o TimeoutOverlay) View() string {
	switch {
	case o.view.State == session.StateExpired:
		return o.viewExpired()
	case o.IsWarning():
		return o.viewWarning()
	default:
		return ""
	}
}

// =============================================================================
// RENDER METHODS
// =============================================================================

func (o TimeoutOverlay) viewWarning() string {
	width, height, maxWidth := o.dimensions()

	titleStyle := lipgloss.NewStyle().
		Foreground(styles.Amber).
		Bold(true)
	timeStyle := lipgloss.NewStyle().
		Foreground(styles.Amber).
		Bold(true)
	msgStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary).
		Width(maxWidth - 4).
		Align(lipgloss.Center)
	hintStyle := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Italic(true).
		Align(lipgloss.Center)

	parts := []string{
		titleStyle.Render(styles.StatusIndicators.Warning + " Session about to expire"),
		"",
		msgStyle.Render("You will be signed out for inactivity in " +
			timeStyle.Render(FormatCountdown(o.view.Remaining))),
		"",
		hintStyle.Render("Press Enter to stay connected"),
	}

	return o.place(lipgloss.JoinVertical(lipgloss.Center, parts...), styles.Amber, maxWidth, width, height)
}

func (o TimeoutOverlay) viewExpired() string {
	width, height, maxWidth := o.dimensions()

	titleStyle := lipgloss.NewStyle().
		Foreground(styles.Rose).
		Bold(true)
	msgStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary).
		Width(maxWidth - 4).
		Align(lipgloss.Center)

	parts := []string{
		titleStyle.Render(styles.StatusIndicators.Error + " Session expired"),
		"",
		msgStyle.Render("Your session was closed after a period of inactivity."),
	}

	return o.place(lipgloss.JoinVertical(lipgloss.Center, parts...), styles.Rose, maxWidth, width, height)
}

func (o TimeoutOverlay) dimensions() (width, height, maxWidth int) {
	width, height = o.width, o.height
	if width == 0 {
		width = 60
	}
	if height == 0 {
		height = 24
	}
	maxWidth = width - 8
	if maxWidth < 40 {
		maxWidth = 40
	}
	if maxWidth > 60 {
		maxWidth = 60
	}
	return width, height, maxWidth
}

func (o TimeoutOverlay) place(content string, border lipgloss.AdaptiveColor, maxWidth, width, height int) string {
	box := lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(border).
		Padding(1, 3).
		Width(maxWidth).
		Align(lipgloss.Center).
		Render(content)

	return lipgloss.Place(
		width, height,
		lipgloss.Center, lipgloss.Center,
		box,
		lipgloss.WithWhitespaceBackground(styles.SurfaceDim),
	)
}

// FormatCountdown formats whole seconds as M:SS. Negative input shows 0:00.
func FormatCountdown(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
