package auth

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

// cacheLifespan is how long a validated token skips the bcrypt comparison.
var cacheLifespan = 24 * time.Hour

// TokenCache remembers tokens that passed validation
type TokenCache struct {
	mu      sync.RWMutex
	now     func() time.Time
	entries map[string]CacheEntry
}

// CacheEntry records when a token was validated
type CacheEntry struct {
	Name      string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Global validation cache
var Validated = NewTokenCache(time.Now)

// NewTokenCache creates an empty cache reading the clock from now.
func NewTokenCache(now func() time.Time) *TokenCache {
	return &TokenCache{now: now, entries: make(map[string]CacheEntry)}
}

// GenerateToken creates a random token
func GenerateToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// Remember caches token as valid for name.
func (c *TokenCache) Remember(token, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.entries[token] = CacheEntry{
		Name:      name,
		CreatedAt: now,
		ExpiresAt: now.Add(cacheLifespan),
	}
}

// Lookup returns the token's name if it is cached and not expired
func (c *TokenCache) Lookup(token string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.entries[token]
	if !exists {
		return "", false
	}
	if c.now().After(entry.ExpiresAt) {
		delete(c.entries, token)
		return "", false
	}
	return entry.Name, true
}

// Forget drops every cached token, used when the token set changes.
func (c *TokenCache) Forget() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]CacheEntry)
}

// Len counts cached tokens, expired ones included.
func (c *TokenCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
