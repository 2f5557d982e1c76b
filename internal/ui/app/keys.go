// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/jeranaias/shiftlog-tui/internal/ui/components"
)

// =============================================================================
// KEY MAP
// =============================================================================

// KeyMap holds the bindings shared by the screens.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Next     key.Binding
	Prev     key.Binding
	Select   key.Binding
	Back     key.Binding
	Quit     key.Binding
	ForceQ   key.Binding

	New       key.Binding
	Delete    key.Binding
	Export    key.Binding
	Refresh   key.Binding
	Admin     key.Binding
	Dashboard key.Binding
	Logout    key.Binding

	FieldNext key.Binding
	FieldPrev key.Binding
	Submit    key.Binding
	AddRow    key.Binding
	RemoveRow key.Binding
	NextRow   key.Binding
	PrevRow   key.Binding
	Left      key.Binding
	Right     key.Binding

	Confirm key.Binding
	Cancel  key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("up/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("down/j", "down")),
		PageUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("PgUp", "page up")),
		PageDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("PgDn", "page down")),
		Next:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next")),
		Prev:     key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("S-tab", "previous")),
		Select:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Quit:     key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		ForceQ:   key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("C-c", "quit")),

		New:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
		Delete:    key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
		Export:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "export")),
		Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Admin:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "admin")),
		Dashboard: key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "dashboard")),
		Logout:    key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "logout")),

		FieldNext: key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		FieldPrev: key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("S-tab", "previous field")),
		Submit:    key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("C-s", "submit")),
		AddRow:    key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("C-n", "add worker")),
		RemoveRow: key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("C-d", "remove worker")),
		NextRow:   key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("PgDn", "next worker")),
		PrevRow:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("PgUp", "prev worker")),
		Left:      key.NewBinding(key.WithKeys("left"), key.WithHelp("left/right", "choose")),
		Right:     key.NewBinding(key.WithKeys("right"), key.WithHelp("right", "next option")),

		Confirm: key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "confirm")),
		Cancel:  key.NewBinding(key.WithKeys("n", "N", "esc"), key.WithHelp("n", "cancel")),
	}
}

// hints converts bindings into status bar hints.
func hints(bindings ...key.Binding) []components.KeyHint {
	out := make([]components.KeyHint, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		out = append(out, components.KeyHint{Key: h.Key, Action: h.Desc})
	}
	return out
}
