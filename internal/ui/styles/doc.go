// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the shiftlog TUI.

All colors are Lip Gloss AdaptiveColors, resolved against the terminal
background. The theme mode from config ("light", "dark" or "auto") can force
the background choice and is reapplied live when the config file changes.

# Color System (colors.go)

  - Cyan - brand, focused fields, headers
  - Emerald - success, submitted reports
  - Amber - warnings and the idle countdown
  - Rose - errors and the expired notice

# Theme (theme.go)

	theme := styles.NewTheme("auto")
	theme.SetSize(width, height)
	title := theme.Title.Render("Mis Informes")

Status glyphs come from StatusIndicators and are ASCII only.
*/
package styles
