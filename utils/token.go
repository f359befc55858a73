package utils

import (
	"sync"
	"time"
)

// TokenBlacklist holds logged-out tokens until their natural expiry.
type TokenBlacklist struct {
	mu     sync.RWMutex
	tokens map[string]time.Time
}

func NewTokenBlacklist() *TokenBlacklist {
	return &TokenBlacklist{tokens: make(map[string]time.Time)}
}

func (b *TokenBlacklist) Revoke(token string, until time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens[token] = until
}

func (b *TokenBlacklist) IsRevoked(token string) bool {
	b.mu.RLock()
	expiry, ok := b.tokens[token]
	b.mu.RUnlock()
	return ok && time.Now().Before(expiry)
}

// Sweep drops entries whose tokens have expired anyway.
func (b *TokenBlacklist) Sweep(now time.Time) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	removed := 0
	for token, expiry := range b.tokens {
		if now.After(expiry) {
			delete(b.tokens, token)
			removed++
		}
	}
	return removed
}
