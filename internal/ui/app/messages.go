// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"time"

	"github.com/jeranaias/shiftlog-tui/internal/api"
	"github.com/jeranaias/shiftlog-tui/internal/auth"
	"github.com/jeranaias/shiftlog-tui/internal/catalog"
	"github.com/jeranaias/shiftlog-tui/internal/config"
	"github.com/jeranaias/shiftlog-tui/internal/model"
)

// =============================================================================
// AUTH MESSAGES
// =============================================================================

// loginResultMsg carries the outcome of a login request.
type loginResultMsg struct {
	Username string
	Result   api.LoginResult
	Err      error
}

// restoredMsg carries saved credentials found at startup.
type restoredMsg struct {
	Creds auth.Credentials
	Err   error
}

// =============================================================================
// DATA MESSAGES
// =============================================================================

type reportsLoadedMsg struct {
	Reports []model.Report
	Err     error
}

type catalogLoadedMsg struct {
	Catalog *catalog.Catalog
	Err     error
}

type reportSubmittedMsg struct {
	Report model.Report
	Err    error
}

type reportDeletedMsg struct {
	ID  string
	Err error
}

type exportDoneMsg struct {
	Path  string
	Count int
	Err   error
}

type catalogChangedMsg struct {
	Kind    catalog.Kind
	Entry   catalog.Entry
	Deleted bool
	Err     error
}

type userRegisteredMsg struct {
	Username string
	Err      error
}

// =============================================================================
// DRAFT MESSAGES
// =============================================================================

type draftLoadedMsg struct {
	Draft   model.Draft
	Found   bool
	SavedAt time.Time
	Err     error
}

type draftSavedMsg struct {
	Err error
}

// autosaveTickMsg polls the autosave tracker.
type autosaveTickMsg struct{}

// =============================================================================
// CONFIG MESSAGES
// =============================================================================

// configReloadedMsg is posted by the config watcher.
type configReloadedMsg struct {
	Config *config.Config
	Err    error
}
