// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"bytes"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/jeranaias/shiftlog-tui/internal/model"
	"github.com/jeranaias/shiftlog-tui/internal/util"
)

const (
	credentialsFile = "credentials.enc"
	keyFile         = "credentials.key"
)

// fileMagic prefixes the sealed file and doubles as associated data.
var fileMagic = []byte("SLC1")

var (
	// ErrNoCredentials is returned when nothing has been saved.
	ErrNoCredentials = errors.New("no saved credentials")

	// ErrCorrupt is returned when the file cannot be opened with the key.
	ErrCorrupt = errors.New("saved credentials are unreadable")
)

// Credentials is what survives a restart.
type Credentials struct {
	Token    string     `json:"token"`
	Role     model.Role `json:"role"`
	Username string     `json:"username"`
	SavedAt  time.Time  `json:"saved_at"`
}

// Store persists Credentials under dir.
type Store struct {
	mu  sync.Mutex
	dir string
}

// NewStore returns a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the sealed credentials file.
func (s *Store) Path() string {
	return filepath.Join(s.dir, credentialsFile)
}

// KeyPath returns the key file.
func (s *Store) KeyPath() string {
	return filepath.Join(s.dir, keyFile)
}

// Save seals and writes c, creating the key on first use.
func (s *Store) Save(c Credentials) error {
	if c.Token == "" {
		return fmt.Errorf("save credentials: empty token")
	}
	if c.SavedAt.IsZero() {
		c.SavedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key, err := s.loadKeyLocked(true)
	if err != nil {
		return err
	}
	defer zero(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return fmt.Errorf("failed to create cipher: %w", err)
	}

	plaintext, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}
	defer zero(plaintext)

	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}

	out := make([]byte, 0, len(fileMagic)+len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, fileMagic...)
	out = append(out, nonce...)
	out = aead.Seal(out, nonce, plaintext, fileMagic)

	if err := util.AtomicWriteFile(s.Path(), out, 0600); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	return nil
}

// Load reads and opens the saved credentials.
func (s *Store) Load() (Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.Path())
	if errors.Is(err, os.ErrNotExist) {
		return Credentials{}, ErrNoCredentials
	}
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to read credentials: %w", err)
	}

	key, err := s.loadKeyLocked(false)
	if errors.Is(err, os.ErrNotExist) {
		return Credentials{}, ErrCorrupt
	}
	if err != nil {
		return Credentials{}, err
	}
	defer zero(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to create cipher: %w", err)
	}

	header := len(fileMagic) + chacha20poly1305.NonceSizeX
	if len(data) < header+aead.Overhead() || !bytes.Equal(data[:len(fileMagic)], fileMagic) {
		return Credentials{}, ErrCorrupt
	}
	nonce := data[len(fileMagic):header]
	plaintext, err := aead.Open(nil, nonce, data[header:], fileMagic)
	if err != nil {
		return Credentials{}, ErrCorrupt
	}
	defer zero(plaintext)

	var c Credentials
	if err := json.Unmarshal(plaintext, &c); err != nil || c.Token == "" {
		return Credentials{}, ErrCorrupt
	}
	if !c.Role.Valid() {
		c.Role = model.RoleUser
	}
	return c, nil
}

// Clear removes the saved credentials. The key is kept for the next login.
// Clearing an empty store is not an error.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.Path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove credentials: %w", err)
	}
	return nil
}

// loadKeyLocked reads the key, generating it when create is set and none
// exists.
func (s *Store) loadKeyLocked(create bool) ([]byte, error) {
	key, err := os.ReadFile(s.KeyPath())
	if err == nil {
		if len(key) != chacha20poly1305.KeySize {
			zero(key)
			return nil, fmt.Errorf("%w: key file has wrong size", ErrCorrupt)
		}
		return key, nil
	}
	if !errors.Is(err, os.ErrNotExist) || !create {
		return nil, err
	}

	key = make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	if err := util.AtomicWriteFile(s.KeyPath(), key, 0600); err != nil {
		zero(key)
		return nil, fmt.Errorf("failed to write key: %w", err)
	}
	return key, nil
}

// zero overwrites key material.
func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
