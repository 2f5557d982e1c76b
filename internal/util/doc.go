// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across shiftlog.
//
// # Key Functions
//
// Display:
//   - TruncateWidth: Cut a string to a terminal column width with ellipsis
//   - PadRight: Pad a string to a terminal column width
//
// File Operations:
//   - AtomicWriteFile: Crash-safe file writing with fsync
//
// # Usage
//
//	cell := util.PadRight(util.TruncateWidth(name, 20), 20)
//
//	err := util.AtomicWriteFile(path, data, 0600)
package util
