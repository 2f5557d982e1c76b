// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// LOGIN SCREEN
// =============================================================================

type loginScreen struct {
	username textinput.Model
	password textinput.Model
	focus    int
	err      string
	busy     bool
}

func newLoginScreen() loginScreen {
	user := textinput.New()
	user.Placeholder = "username"
	user.CharLimit = 64
	user.Prompt = ""

	pass := textinput.New()
	pass.Placeholder = "password"
	pass.CharLimit = 128
	pass.Prompt = ""
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '*'

	l := loginScreen{username: user, password: pass}
	l.setFocus(0)
	return l
}

func (l *loginScreen) setFocus(i int) {
	l.focus = i
	if i == 0 {
		l.username.Focus()
		l.password.Blur()
	} else {
		l.username.Blur()
		l.password.Focus()
	}
}

func (l *loginScreen) reset() {
	l.password.SetValue("")
	l.err = ""
	l.busy = false
	if strings.TrimSpace(l.username.Value()) == "" {
		l.setFocus(0)
	} else {
		l.setFocus(1)
	}
}

func (l loginScreen) focusCmd() tea.Cmd {
	return textinput.Blink
}

func (m Model) updateLogin(msg tea.Msg) (tea.Model, tea.Cmd) {
	l := &m.login
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		if l.focus == 0 {
			l.username, cmd = l.username.Update(msg)
		} else {
			l.password, cmd = l.password.Update(msg)
		}
		return m, cmd
	}
	if l.busy {
		return m, nil
	}

	switch {
	case key.Matches(km, m.keys.Next), key.Matches(km, m.keys.Prev),
		km.Type == tea.KeyUp, km.Type == tea.KeyDown:
		l.setFocus(1 - l.focus)
		return m, nil

	case key.Matches(km, m.keys.Select):
		if l.focus == 0 {
			l.setFocus(1)
			return m, nil
		}
		user := strings.TrimSpace(l.username.Value())
		pass := l.password.Value()
		if user == "" || pass == "" {
			l.err = "Enter your username and password"
			return m, nil
		}
		l.err = ""
		l.busy = true
		return m, tea.Batch(m.startSpinner("Signing in"), loginCmd(m.deps.Client, user, pass))
	}

	var cmd tea.Cmd
	if l.focus == 0 {
		l.username, cmd = l.username.Update(km)
	} else {
		l.password, cmd = l.password.Update(km)
	}
	l.err = ""
	return m, cmd
}

func (m Model) viewLogin() string {
	l := m.login
	t := m.theme

	field := func(label string, in textinput.Model, focused bool) string {
		style := t.BlurredField
		if focused {
			style = t.FocusedField
		}
		return style.Render(t.Label.Render(label) + "\n" + in.View())
	}

	parts := []string{
		t.Title.Render("shiftlog"),
		t.Subtitle.Render("Shift reports"),
		"",
		field("Username", l.username, l.focus == 0),
		field("Password", l.password, l.focus == 1),
	}
	switch {
	case l.busy:
		parts = append(parts, "", m.spinner.View())
	case l.err != "":
		parts = append(parts, "", t.Error.Render(l.err))
	}

	box := t.Box.Width(44).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
	return lipgloss.Place(m.width-2, m.height-4, lipgloss.Center, lipgloss.Center, box)
}
