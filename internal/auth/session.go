package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"medibot-ai/internal/consultation"
)

// Session is the per-login context: the user identity and their own
// consultation store. It lives from login to logout; nothing about it is
// shared across sessions.
type Session struct {
	Token     string
	Email     string
	Name      string
	Store     *consultation.Store
	CreatedAt time.Time
}

// SessionManager issues tokens and tracks live sessions.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	newStore func(owner string) *consultation.Store
}

// NewSessionManager builds a manager. newStore constructs the consultation
// store for a fresh login, bound to the owner's persistence hook.
func NewSessionManager(newStore func(owner string) *consultation.Store) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Session),
		newStore: newStore,
	}
}

// Start opens a session for an authenticated user and returns it.
func (m *SessionManager) Start(email, name string) *Session {
	s := &Session{
		Token:     uuid.NewString(),
		Email:     email,
		Name:      name,
		Store:     m.newStore(email),
		CreatedAt: time.Now(),
	}

	m.mu.Lock()
	m.sessions[s.Token] = s
	m.mu.Unlock()
	return s
}

// Get resolves a token to its live session.
func (m *SessionManager) Get(token string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[token]
	return s, ok
}

// End tears the session down. Its consultation store goes with it.
func (m *SessionManager) End(token string) {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
}
