// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/shiftlog-tui/internal/model"
	"github.com/jeranaias/shiftlog-tui/internal/storage"
)

// draftSaveTimeout bounds a single draft write.
const draftSaveTimeout = 5 * time.Second

// runtime is the state reached from timer goroutines as well as the update
// loop. The Model is copied on every Update; runtime is shared by pointer.
type runtime struct {
	mu   sync.Mutex
	send func(tea.Msg)

	drafts    *storage.DraftStore
	draftUser string
	draft     model.Draft
}

// setSend installs the program's Send. Until then posted messages are dropped.
func (r *runtime) setSend(send func(tea.Msg)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.send = send
}

// post delivers msg to the program without blocking the caller.
func (r *runtime) post(msg tea.Msg) {
	r.mu.Lock()
	send := r.send
	r.mu.Unlock()
	if send == nil {
		return
	}
	go send(msg)
}

// setDraft records the form's current draft for the autosave.
func (r *runtime) setDraft(user string, d model.Draft) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.draftUser = user
	r.draft = cloneDraft(d)
}

// clearDraft forgets the buffered draft.
func (r *runtime) clearDraft() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.draftUser = ""
	r.draft = model.Draft{}
}

// saveDraft persists the buffered draft. It is the autosave callback and
// runs on whichever goroutine flushes: the update loop's commands or the
// expiry teardown.
func (r *runtime) saveDraft() error {
	r.mu.Lock()
	user, d, store := r.draftUser, cloneDraft(r.draft), r.drafts
	r.mu.Unlock()

	if store == nil || user == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), draftSaveTimeout)
	defer cancel()
	if d.IsBlank() {
		return store.DeleteDraft(ctx, user)
	}
	return store.SaveDraft(ctx, user, d)
}

func cloneDraft(d model.Draft) model.Draft {
	d.Team = append([]model.TeamRow(nil), d.Team...)
	return d
}
