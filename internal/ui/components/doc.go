// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the reusable widgets of the shiftlog TUI.
//
// Components:
//
//   - TimeoutOverlay: idle warning countdown and expiry notice, driven by
//     session.View updates
//   - Table: scrollable single-selection table with display-width aware
//     truncation
//   - StatusBar: key hints, signed-in user and session state
//   - Header: brand and current screen
//   - Notices: auto-dismissing corner messages
//   - Spinner: in-flight request indicator
//
// Components render with the styles package and hold no timers except the
// bubbles spinner tick; the app model owns all state changes.
package components
