package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"taskflow/internal/models"
)

// Session holds the authenticated identity for API calls. It is passed
// explicitly to the client instead of being read from ambient global state.
// The session persists to a JSON file so a restart can pick it up again.
type Session struct {
	mu    sync.Mutex
	path  string
	token string
	user  models.User
}

type sessionFile struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// NewSession creates a session persisting to path. Use Hydrate to load a
// previously saved identity.
func NewSession(path string) *Session {
	return &Session{path: path}
}

// DefaultSessionPath places the session file under the user config dir.
func DefaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "taskflow-session.json")
	}
	return filepath.Join(dir, "taskflow", "session.json")
}

// Hydrate loads the persisted identity. A missing file leaves the session
// empty without error.
func (s *Session) Hydrate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read session: %w", err)
	}

	var f sessionFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("decode session: %w", err)
	}

	s.token = f.Token
	s.user = f.User
	return nil
}

// Set stores a fresh identity and persists it.
func (s *Session) Set(user models.User, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = user
	s.token = token
	return s.save()
}

// Clear wipes the identity and removes the persisted file. Called on logout
// and on a failed identity refresh.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	s.user = models.User{}

	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// Token returns the current bearer token, empty when unauthenticated.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// User returns the cached identity.
func (s *Session) User() models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Authenticated reports whether a token is present.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

func (s *Session) save() error {
	raw, err := json.Marshal(sessionFile{Token: s.token, User: s.user})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create session dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}
