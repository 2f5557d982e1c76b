// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"errors"
	"fmt"
	"sync"

	"github.com/jeranaias/shiftlog-tui/internal/audit"
	"github.com/jeranaias/shiftlog-tui/internal/session"
)

// TokenHolder is the part of the API client that carries the credential.
type TokenHolder interface {
	SetToken(token string)
}

// Teardown ends a session: it drops the token from the client, clears the
// session and the saved credentials, then records the event. Every step runs
// even when an earlier one fails; the failures are joined.
//
// A bound session is torn down once. Runs are serialized, so a logout that
// races an idle expiry waits for it and then finds nothing left to do.
type Teardown struct {
	store  *Store
	client TokenHolder
	log    *audit.Logger

	runMu   sync.Mutex
	mu      sync.Mutex
	current *session.Session
	before  []func() error
}

// NewTeardown creates a teardown. Any argument may be nil.
func NewTeardown(store *Store, client TokenHolder, log *audit.Logger) *Teardown {
	return &Teardown{store: store, client: client, log: log}
}

// Bind sets the session the next teardown applies to.
func (t *Teardown) Bind(s *session.Session) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current = s
}

// Before registers a step that runs first, such as flushing a draft. Its
// error is joined with the rest.
func (t *Teardown) Before(fn func() error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.before = append(t.before, fn)
}

// Expire tears down after idle expiry. Like Logout it is a no-op when no
// session is bound or the bound one was already torn down. It matches the controller's expiry
// callback signature.
func (t *Teardown) Expire() error {
	return t.run(audit.EventSessionExpired)
}

// Logout tears down on user request.
func (t *Teardown) Logout() error {
	return t.run(audit.EventLogout)
}

func (t *Teardown) run(event string) error {
	t.runMu.Lock()
	defer t.runMu.Unlock()

	t.mu.Lock()
	sess := t.current
	if sess == nil {
		t.mu.Unlock()
		return nil
	}
	t.current = nil
	before := append([]func() error(nil), t.before...)
	t.mu.Unlock()

	var errs []error
	for _, fn := range before {
		if err := fn(); err != nil {
			errs = append(errs, err)
		}
	}

	if t.client != nil {
		t.client.SetToken("")
	}

	id, user := sess.ID(), sess.Username()
	sess.Clear()

	if t.store != nil {
		if err := t.store.Clear(); err != nil {
			errs = append(errs, err)
		}
	}

	err := errors.Join(errs...)
	if err != nil {
		if logErr := t.log.LogFailure(id, user, audit.EventTeardownFailed, err, map[string]string{"trigger": event}); logErr != nil {
			err = errors.Join(err, fmt.Errorf("audit: %w", logErr))
		}
		return err
	}
	if logErr := t.log.LogEvent(id, user, event, nil); logErr != nil {
		return fmt.Errorf("audit: %w", logErr)
	}
	return nil
}
