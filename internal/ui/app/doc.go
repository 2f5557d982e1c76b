// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app is the shiftlog terminal client.
//
// The root Model routes between the sign-in, report list, report form,
// administration and dashboard screens. Every key press and mouse event is
// fed to the idle-session controller before a screen sees it; while the
// inactivity warning or the expiry notice is showing, input goes to the
// overlay only.
//
// Usage:
//
//	err := app.Run(app.Deps{
//	    Config: cfg,
//	    Client: api.New(cfg.API.BaseURL),
//	    Store:  store,
//	    Drafts: drafts,
//	})
package app
