package services

import (
	"sync"

	"golang.org/x/oauth2"
)

// TokenStore keeps provider tokens in memory, keyed by user ID.
type TokenStore struct {
	mu     sync.RWMutex
	tokens map[string]*oauth2.Token
}

// NewTokenStore creates an empty [TokenStore].
func NewTokenStore() *TokenStore {
	return &TokenStore{tokens: make(map[string]*oauth2.Token)}
}

// Get returns the token stored for userID.
func (s *TokenStore) Get(userID string) (*oauth2.Token, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tokens[userID]
	return t, ok
}

// Put stores token for userID, replacing any previous one.
func (s *TokenStore) Put(userID string, token *oauth2.Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[userID] = token
}

// Delete forgets the token of userID.
func (s *TokenStore) Delete(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, userID)
}
