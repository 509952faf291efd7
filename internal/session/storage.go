package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Fixed keys for the two durable entries. The expiry is stored next to
// the token so it can be checked without decoding the token itself.
const (
	tokenKey  = "access_token"
	expiryKey = "expires_at"
)

// TokenStorage owns the durable token entries. Nothing else reads or
// writes them. Entries live in a single credentials file under the carnet
// home directory.
type TokenStorage struct {
	path string
}

// NewTokenStorage creates storage rooted at dir
func NewTokenStorage(dir string) *TokenStorage {
	return &TokenStorage{path: filepath.Join(dir, "credentials.json")}
}

// DefaultTokenStorage creates storage under ~/.carnet
func DefaultTokenStorage() (*TokenStorage, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return NewTokenStorage(filepath.Join(home, ".carnet")), nil
}

// Save persists the token and its expiry. The write happens before any
// in-memory session transition so a reload never sees "authenticated but
// no token".
func (s *TokenStorage) Save(token string, expiresAt time.Time) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}

	entries := map[string]string{
		tokenKey:  token,
		expiryKey: expiresAt.Format(time.RFC3339),
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0600)
}

// Token returns the stored token, or "" when no valid one exists. Expiry
// is compared against the current time at each call; an expired or
// unreadable token clears both entries so the next load starts clean.
// Calling on an empty store is not an error.
func (s *TokenStorage) Token() string {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return ""
	}

	entries := map[string]string{}
	if err := json.Unmarshal(data, &entries); err != nil {
		s.Clear()
		return ""
	}

	token := entries[tokenKey]
	expiresAt, err := time.Parse(time.RFC3339, entries[expiryKey])
	if token == "" || err != nil || time.Now().After(expiresAt) {
		s.Clear()
		return ""
	}
	return token
}

// Clear removes both entries. Idempotent and infallible by contract:
// logout must never fail.
func (s *TokenStorage) Clear() {
	_ = os.Remove(s.path)
}
