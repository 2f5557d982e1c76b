// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/shiftlog-tui/internal/model"
)

// ErrNoCredential is returned when a session is created without a token.
var ErrNoCredential = errors.New("session: empty credential")

// Session is an authenticated login. It is owned by the application shell,
// created on login and cleared on logout or expiry.
type Session struct {
	mu sync.RWMutex

	id        string
	token     string
	role      model.Role
	username  string
	createdAt time.Time
	cleared   bool
}

// New creates a session for a freshly issued credential.
func New(token string, role model.Role, username string) (*Session, error) {
	if token == "" {
		return nil, ErrNoCredential
	}
	if !role.Valid() {
		role = model.RoleUser
	}
	return &Session{
		id:        uuid.New().String(),
		token:     token,
		role:      role,
		username:  username,
		createdAt: time.Now(),
	}, nil
}

// ID returns the local session ID.
func (s *Session) ID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id
}

// Token returns the credential, empty once cleared.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Role returns the role granted at login.
func (s *Session) Role() model.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.role
}

// Username returns the login name.
func (s *Session) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.username
}

// IsAdmin reports whether the session carries the admin role.
func (s *Session) IsAdmin() bool {
	return s.Role() == model.RoleAdmin
}

// CreatedAt returns when the session was created.
func (s *Session) CreatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.createdAt
}

// Valid reports whether the session still holds a credential.
func (s *Session) Valid() bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.cleared && s.token != ""
}

// Clear drops the credential. The session cannot be revived.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.cleared = true
}
