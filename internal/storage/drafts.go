// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/shiftlog-tui/internal/model"
)

// DraftsFile is the database file name inside the data directory.
const DraftsFile = "drafts.db"

var (
	// ErrDraftNotFound is returned when a user has no saved draft.
	ErrDraftNotFound = errors.New("draft not found")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("draft store closed")
)

// SavedDraft is a draft with its save time.
type SavedDraft struct {
	Username  string
	Draft     model.Draft
	UpdatedAt time.Time
}

// DraftStore persists one draft per user.
type DraftStore struct {
	mu  sync.RWMutex
	db  *sql.DB
	now func() time.Time
}

// OpenDraftStore opens (or creates) the database at path.
func OpenDraftStore(path string) (*DraftStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite only supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if _, err := db.Exec(InitMetadata); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if err := os.Chmod(path, 0600); err != nil && !errors.Is(err, os.ErrNotExist) {
		db.Close()
		return nil, fmt.Errorf("failed to secure database: %w", err)
	}

	return &DraftStore{db: db, now: time.Now}, nil
}

// SaveDraft stores d for user, replacing any previous draft.
func (s *DraftStore) SaveDraft(ctx context.Context, user string, d model.Draft) error {
	if user == "" {
		return fmt.Errorf("save draft: empty username")
	}
	body, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to encode draft: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return ErrClosed
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO drafts (username, body, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(username) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		user, string(body), s.now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

// LoadDraft returns the saved draft of user.
func (s *DraftStore) LoadDraft(ctx context.Context, user string) (SavedDraft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return SavedDraft{}, ErrClosed
	}

	var body string
	var updated int64
	err := s.db.QueryRowContext(ctx,
		`SELECT body, updated_at FROM drafts WHERE username = ?`, user,
	).Scan(&body, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return SavedDraft{}, ErrDraftNotFound
	}
	if err != nil {
		return SavedDraft{}, fmt.Errorf("failed to load draft: %w", err)
	}

	out := SavedDraft{Username: user, UpdatedAt: time.Unix(updated, 0)}
	if err := json.Unmarshal([]byte(body), &out.Draft); err != nil {
		return SavedDraft{}, fmt.Errorf("failed to decode draft: %w", err)
	}
	if len(out.Draft.Team) == 0 {
		out.Draft.AddRow()
	}
	return out, nil
}

// DeleteDraft removes the draft of user. A missing draft is not an error.
func (s *DraftStore) DeleteDraft(ctx context.Context, user string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return ErrClosed
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM drafts WHERE username = ?`, user); err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *DraftStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
