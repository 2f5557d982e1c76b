// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session provides the idle session timeout.
//
// A Controller watches user activity, arms an idle timer, escalates to a
// visible countdown warning and finally tears the session down if nobody
// acknowledges it.
//
// # Key Types
//
//   - Controller: per-session state machine (Active, Warning, Expired)
//   - IdleScheduler: the single idle timer
//   - WarningCountdown: the single once-per-second countdown
//   - ActivityBridge: forwards raw input signals from a Surface
//   - Session: the credential and role held while logged in
//
// # Usage
//
// Build one controller per login and dispose it on logout:
//
//	ctrl := session.NewController(session.DefaultConfig(), teardown,
//	    session.WithObserver(session.ProgramObserver(program.Send)))
//	ctrl.AttachSources(surface)
//	ctrl.Start()
//	defer ctrl.Dispose()
//
// Acknowledge the warning:
//
//	ctrl.StayConnected()
//
// Defaults are a 10 minute idle window and a 30 second warning.
package session
