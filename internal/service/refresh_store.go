package service

import "sync"

// RefreshTokenStore tracks the single currently-valid refresh token per
// username. It is deliberately volatile, in-memory, single-process state:
// sessions do not survive a restart and the store does not scale across
// instances without an external shared store. The instance is constructed at
// startup and injected, never reached through a package-level singleton.
type RefreshTokenStore struct {
	mu     sync.RWMutex
	tokens map[string]string
}

func NewRefreshTokenStore() *RefreshTokenStore {
	return &RefreshTokenStore{tokens: map[string]string{}}
}

// Store records token as the current refresh token for username,
// replacing any previous one (last write wins).
func (s *RefreshTokenStore) Store(username string, token string) {
	if username == "" || token == "" {
		return
	}

	s.mu.Lock()
	s.tokens[username] = token
	s.mu.Unlock()
}

// IsValid reports whether token is exactly the store's current token for
// username.
func (s *RefreshTokenStore) IsValid(username string, token string) bool {
	if username == "" || token == "" {
		return false
	}

	s.mu.RLock()
	current, exists := s.tokens[username]
	s.mu.RUnlock()

	return exists && current == token
}

// Revoke drops the session for username; subsequent IsValid calls return
// false until a new token is stored.
func (s *RefreshTokenStore) Revoke(username string) {
	s.mu.Lock()
	delete(s.tokens, username)
	s.mu.Unlock()
}
