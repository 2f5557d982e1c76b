// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for shift reports.
//
// This package defines the core domain types shared by the API client, the
// dev server, draft storage, export and the UI.
//
// # Key Types
//
//   - Report: A submitted shift report with crew roster and notes
//   - TeamRow: One crew member's line in the roster
//   - Draft: An in-progress report as edited in the form
//   - Attendance: Attendance code enumeration (EO, D, A, ...)
//   - Role: Account role (user, admin)
//
// # Usage
//
// Turn a draft into a report ready to submit:
//
//	report, err := draft.Build(catalog)
//	if err != nil {
//	    // missing header fields or empty roster
//	}
//
// Compute worked hours for a row:
//
//	model.WorkedHours("22:00", "06:30") // "8:30"
package model
