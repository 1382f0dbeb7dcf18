package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// User is the profile the API returns.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Session is what the client remembers between runs.
type Session struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// Store persists a session. Load returns nil when nothing is stored.
type Store interface {
	Load() (*Session, error)
	Save(*Session) error
	Clear() error
}

// MemoryStore keeps the session in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	session *Session
}

func (m *MemoryStore) Load() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copySession(m.session), nil
}

func (m *MemoryStore) Save(s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = copySession(s)
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	return nil
}

// FileStore writes the session as a JSON document with token and user keys.
type FileStore struct {
	Path string
}

// DefaultSessionPath returns the session file under the user config dir.
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "storeadmin", "session.json"), nil
}

func (f FileStore) Load() (*Session, error) {
	raw, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if s.Token == "" {
		return nil, nil
	}
	return &s, nil
}

func (f FileStore) Save(s *Session) error {
	if s == nil {
		return f.Clear()
	}
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	return os.WriteFile(f.Path, raw, 0o600)
}

func (f FileStore) Clear() error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// SessionManager is the only place the stored session changes. It also owns
// the listener that runs when the API stops accepting the token.
type SessionManager struct {
	mu                sync.Mutex
	store             Store
	current           *Session
	onUnauthenticated func()
}

// NewSessionManager loads any stored session from store.
func NewSessionManager(store Store) (*SessionManager, error) {
	current, err := store.Load()
	if err != nil {
		return nil, err
	}
	return &SessionManager{store: store, current: current}, nil
}

// Current returns a copy of the active session, or nil when signed out.
func (m *SessionManager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copySession(m.current)
}

// Token returns the bearer token, or "" when signed out.
func (m *SessionManager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return ""
	}
	return m.current.Token
}

// Set replaces the session and persists it.
func (m *SessionManager) Set(s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.Save(s); err != nil {
		return err
	}
	m.current = copySession(s)
	return nil
}

// Clear forgets the session.
func (m *SessionManager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = nil
	return m.store.Clear()
}

// OnUnauthenticated registers fn to run after a rejected token clears the
// session. A later call replaces the earlier listener.
func (m *SessionManager) OnUnauthenticated(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onUnauthenticated = fn
}

// expire clears a session the API rejected. The listener only fires when
// there was a session to clear.
func (m *SessionManager) expire() error {
	m.mu.Lock()
	hadSession := m.current != nil
	m.current = nil
	err := m.store.Clear()
	listener := m.onUnauthenticated
	m.mu.Unlock()

	if hadSession && listener != nil {
		listener()
	}
	return err
}

func copySession(s *Session) *Session {
	if s == nil {
		return nil
	}
	cp := *s
	if s.User != nil {
		u := *s.User
		cp.User = &u
	}
	return &cp
}
