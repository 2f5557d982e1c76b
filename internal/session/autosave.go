// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"sync"
	"time"
)

// DefaultAutoSaveInterval is how often a dirty draft is saved.
const DefaultAutoSaveInterval = 30 * time.Second

// =============================================================================
// AUTO-SAVE TRACKER
// =============================================================================

// AutoSave tracks unsaved work and decides when it should be persisted.
type AutoSave struct {
	mu sync.Mutex

	clock    Clock
	enabled  bool
	interval time.Duration
	lastSave time.Time
	dirty    bool

	save func() error
}

// NewAutoSave creates a tracker that calls save at most once per interval
// while dirty. A non-positive interval means DefaultAutoSaveInterval.
func NewAutoSave(clock Clock, interval time.Duration, save func() error) *AutoSave {
	if clock == nil {
		clock = RealClock{}
	}
	if interval <= 0 {
		interval = DefaultAutoSaveInterval
	}
	return &AutoSave{
		clock:    clock,
		enabled:  true,
		interval: interval,
		lastSave: clock.Now(),
		save:     save,
	}
}

// MarkDirty indicates there are unsaved changes.
func (a *AutoSave) MarkDirty() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.dirty = true
}

// MarkClean indicates the changes have been saved.
func (a *AutoSave) MarkClean() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.dirty = false
	a.lastSave = a.clock.Now()
}

// IsDirty returns whether there are unsaved changes.
func (a *AutoSave) IsDirty() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dirty
}

// SetEnabled enables or disables periodic saving. Flush still saves.
func (a *AutoSave) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// Due returns true if a periodic save should happen now.
func (a *AutoSave) Due() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.enabled && a.dirty && a.clock.Now().Sub(a.lastSave) >= a.interval
}

// Check saves if a periodic save is due. It reports whether a save ran.
func (a *AutoSave) Check() (bool, error) {
	if !a.Due() {
		return false, nil
	}
	return true, a.Flush()
}

// Flush saves immediately if dirty, regardless of the interval.
func (a *AutoSave) Flush() error {
	a.mu.Lock()
	dirty := a.dirty
	save := a.save
	a.mu.Unlock()

	if !dirty || save == nil {
		return nil
	}
	if err := save(); err != nil {
		return err
	}
	a.MarkClean()
	return nil
}
