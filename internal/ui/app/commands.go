// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/shiftlog-tui/internal/api"
	"github.com/jeranaias/shiftlog-tui/internal/auth"
	"github.com/jeranaias/shiftlog-tui/internal/catalog"
	"github.com/jeranaias/shiftlog-tui/internal/export"
	"github.com/jeranaias/shiftlog-tui/internal/model"
	"github.com/jeranaias/shiftlog-tui/internal/storage"
)

// opTimeout bounds one user operation, retries included.
const opTimeout = 45 * time.Second

// autosavePoll is how often the update loop asks the autosave tracker
// whether a save is due.
const autosavePoll = 5 * time.Second

// =============================================================================
// COMMAND CREATORS
// =============================================================================

func loginCmd(client *api.Client, username, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		res, err := client.Login(ctx, username, password)
		return loginResultMsg{Username: username, Result: res, Err: err}
	}
}

func restoreCmd(store *auth.Store) tea.Cmd {
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		creds, err := store.Load()
		return restoredMsg{Creds: creds, Err: err}
	}
}

func loadReportsCmd(client *api.Client, all bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		var (
			reports []model.Report
			err     error
		)
		if all {
			reports, err = client.AllReports(ctx)
		} else {
			reports, err = client.MyReports(ctx)
		}
		return reportsLoadedMsg{Reports: reports, Err: err}
	}
}

func loadCatalogCmd(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		cat, err := client.LoadCatalog(ctx)
		return catalogLoadedMsg{Catalog: cat, Err: err}
	}
}

func submitReportCmd(client *api.Client, report model.Report) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		created, err := client.CreateReport(ctx, report)
		return reportSubmittedMsg{Report: created, Err: err}
	}
}

func deleteReportCmd(client *api.Client, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		return reportDeletedMsg{ID: id, Err: client.DeleteReport(ctx, id)}
	}
}

func exportCmd(reports []model.Report, cat *catalog.Catalog, format, dir string) tea.Cmd {
	reports = append([]model.Report(nil), reports...)
	return func() tea.Msg {
		exporter, err := export.New(format, cat)
		if err != nil {
			return exportDoneMsg{Err: err}
		}
		path, err := export.ToFile(reports, exporter, &export.Options{OutputDir: dir})
		return exportDoneMsg{Path: path, Count: len(reports), Err: err}
	}
}

func createEntryCmd(client *api.Client, kind catalog.Kind, entry catalog.Entry) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		created, err := client.CreateCatalogEntry(ctx, kind, entry)
		return catalogChangedMsg{Kind: kind, Entry: created, Err: err}
	}
}

func deleteEntryCmd(client *api.Client, kind catalog.Kind, entry catalog.Entry) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		err := client.DeleteCatalogEntry(ctx, kind, entry.ID)
		return catalogChangedMsg{Kind: kind, Entry: entry, Deleted: true, Err: err}
	}
}

func registerCmd(client *api.Client, username, password string, role model.Role) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		return userRegisteredMsg{Username: username, Err: client.Register(ctx, username, password, role)}
	}
}

func loadDraftCmd(store *storage.DraftStore, user string) tea.Cmd {
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), draftSaveTimeout)
		defer cancel()
		saved, err := store.LoadDraft(ctx, user)
		if errors.Is(err, storage.ErrDraftNotFound) {
			return draftLoadedMsg{}
		}
		if err != nil {
			return draftLoadedMsg{Err: err}
		}
		return draftLoadedMsg{Draft: saved.Draft, Found: true, SavedAt: saved.UpdatedAt}
	}
}

func deleteDraftCmd(store *storage.DraftStore, user string) tea.Cmd {
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), draftSaveTimeout)
		defer cancel()
		if err := store.DeleteDraft(ctx, user); err != nil {
			return draftSavedMsg{Err: err}
		}
		return nil
	}
}

// autosaveTickCmd schedules the next autosave poll.
func autosaveTickCmd() tea.Cmd {
	return tea.Tick(autosavePoll, func(time.Time) tea.Msg {
		return autosaveTickMsg{}
	})
}

// checkAutosaveCmd runs a due autosave off the update loop.
func checkAutosaveCmd(check func() (bool, error)) tea.Cmd {
	return func() tea.Msg {
		saved, err := check()
		if !saved && err == nil {
			return nil
		}
		return draftSavedMsg{Err: err}
	}
}
