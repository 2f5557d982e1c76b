// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/shiftlog-tui/internal/config"
)

// Run starts the TUI and blocks until the user quits.
func Run(deps Deps) error {
	m := New(deps)

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if m.cfg.UI.Mouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	p := tea.NewProgram(m, opts...)

	// Timers and the config watcher reach the program through rt.post.
	m.rt.setSend(p.Send)

	if deps.ConfigPath != "" {
		w, err := config.Watch(deps.ConfigPath, 0, func(cfg *config.Config, err error) {
			m.rt.post(configReloadedMsg{Config: cfg, Err: err})
		})
		if err == nil {
			defer w.Close()
		}
	}

	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		fm.shutdown()
	} else {
		m.shutdown()
	}
	if err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
