package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionManager issues opaque session tokens and maps them back to account
// ids. Tokens live in memory only; restarting the server logs everyone out.
type SessionManager struct {
	mu       sync.RWMutex
	ttl      time.Duration
	sessions map[string]session
}

type session struct {
	accountId int64
	expires   time.Time
}

func NewSessionManager(ttl time.Duration) *SessionManager {
	return &SessionManager{
		ttl:      ttl,
		sessions: make(map[string]session),
	}
}

// Create issues a fresh token for the account.
func (m *SessionManager) Create(accountId int64) (token string, expires time.Time) {
	token = uuid.NewString()
	expires = time.Now().Add(m.ttl)

	m.mu.Lock()
	m.sessions[token] = session{accountId: accountId, expires: expires}
	m.mu.Unlock()
	return token, expires
}

// AccountId resolves a token. Expired tokens are dropped on sight.
func (m *SessionManager) AccountId(token string) (int64, bool) {
	m.mu.RLock()
	s, ok := m.sessions[token]
	m.mu.RUnlock()
	if !ok {
		return 0, false
	}
	if time.Now().After(s.expires) {
		m.Destroy(token)
		return 0, false
	}
	return s.accountId, true
}

// Destroy forgets one token.
func (m *SessionManager) Destroy(token string) {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
}

// DestroyAccount forgets every token for the account. Used when the account
// itself is deleted.
func (m *SessionManager) DestroyAccount(accountId int64) {
	m.mu.Lock()
	for token, s := range m.sessions {
		if s.accountId == accountId {
			delete(m.sessions, token)
		}
	}
	m.mu.Unlock()
}
