// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/shiftlog-tui/internal/ui/styles"
)

// Header is the top line: brand, current screen and an optional right-hand
// detail such as the API host.
type Header struct {
	theme  *styles.Theme
	Width  int
	Title  string
	Screen string
	Detail string
}

// NewHeader creates a header with the default brand.
func NewHeader(theme *styles.Theme) *Header {
	return &Header{theme: theme, Title: "shiftlog"}
}

// SetWidth sets the header width.
func (h *Header) SetWidth(width int) {
	h.Width = width
}

// View renders the header.
func (h *Header) View() string {
	width := h.Width
	if width < 20 {
		width = 20
	}

	brand := lipgloss.NewStyle().Bold(true).Foreground(styles.Cyan).Render(h.Title)
	left := brand
	if h.Screen != "" {
		left += lipgloss.NewStyle().Foreground(styles.Purple).Render(" > ") +
			h.theme.Title.Render(h.Screen)
	}

	right := ""
	if h.Detail != "" && h.theme.GetLayoutMode() != styles.LayoutNarrow {
		right = h.theme.Muted.Render(h.Detail)
	}

	gap := width - 2 - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
		right = ""
	}

	return h.theme.Header.Width(width).Render(left + lipgloss.NewStyle().Width(gap).Render("") + right)
}
