package client

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// TokenStore persists the session token between runs.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// FileStore keeps the token in a file readable only by its owner.
type FileStore struct {
	Path string
}

// Load returns the stored token, or "" when none has been saved.
func (f FileStore) Load() (string, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading token file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Save writes the token with mode 0600, creating parent directories.
func (f FileStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return fmt.Errorf("creating token dir: %w", err)
	}
	if err := os.WriteFile(f.Path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	return nil
}

// Clear removes the token file. A missing file is not an error.
func (f FileStore) Clear() error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing token file: %w", err)
	}
	return nil
}

// MemoryStore keeps the token in process memory.
type MemoryStore struct {
	mu    sync.Mutex
	token string
}

func (m *MemoryStore) Load() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *MemoryStore) Save(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

// Session is the client's authentication state. It is passed explicitly to
// the Client; there is no package-level token.
type Session struct {
	mu           sync.Mutex
	store        TokenStore
	token        string
	loaded       bool
	onInvalidate func()
}

// NewSession creates a session backed by store. onInvalidate, if non-nil,
// runs once each time a held session is lost.
func NewSession(store TokenStore, onInvalidate func()) *Session {
	return &Session{store: store, onInvalidate: onInvalidate}
}

// Token returns the current token, loading it from the store on first use.
// An empty string means the user is not signed in.
func (s *Session) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		tok, err := s.store.Load()
		if err != nil {
			return "", err
		}
		s.token = tok
		s.loaded = true
	}
	return s.token, nil
}

// Set stores a freshly issued token.
func (s *Session) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Save(token); err != nil {
		return err
	}
	s.token = token
	s.loaded = true
	return nil
}

// Invalidate drops the token and clears the store. The callback fires only
// when a token was actually held, so repeated 401s report one loss.
func (s *Session) Invalidate() error {
	s.mu.Lock()
	if !s.loaded {
		s.token, _ = s.store.Load()
		s.loaded = true
	}
	had := s.token != ""
	s.token = ""
	err := s.store.Clear()
	cb := s.onInvalidate
	s.mu.Unlock()

	if had && cb != nil {
		cb()
	}
	return err
}

// Clear signs out without reporting a session loss.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.loaded = true
	return s.store.Clear()
}
