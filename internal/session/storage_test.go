package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestTokenStorage_RoundTrip(t *testing.T) {
	s := NewTokenStorage(t.TempDir())

	if err := s.Save("tok123", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if got := s.Token(); got != "tok123" {
		t.Errorf("Expected tok123, got %q", got)
	}
}

func TestTokenStorage_EmptyStore(t *testing.T) {
	s := NewTokenStorage(t.TempDir())

	if got := s.Token(); got != "" {
		t.Errorf("Expected no token, got %q", got)
	}
}

func TestTokenStorage_ExpiredTokenClearsEntries(t *testing.T) {
	dir := t.TempDir()
	s := NewTokenStorage(dir)

	if err := s.Save("tok123", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if got := s.Token(); got != "" {
		t.Errorf("Expected expired token to read as empty, got %q", got)
	}

	// The durable entries must be gone so the next load starts clean
	if _, err := os.Stat(filepath.Join(dir, "credentials.json")); !os.IsNotExist(err) {
		t.Error("Expected credentials file to be removed")
	}

	// Idempotent: a second read is still empty and still no error
	if got := s.Token(); got != "" {
		t.Errorf("Expected second read to be empty, got %q", got)
	}
}

func TestTokenStorage_CorruptFileClears(t *testing.T) {
	dir := t.TempDir()
	s := NewTokenStorage(dir)

	os.WriteFile(filepath.Join(dir, "credentials.json"), []byte("not json"), 0600)

	if got := s.Token(); got != "" {
		t.Errorf("Expected corrupt store to read as empty, got %q", got)
	}
	if _, err := os.Stat(filepath.Join(dir, "credentials.json")); !os.IsNotExist(err) {
		t.Error("Expected corrupt file to be removed")
	}
}

func TestTokenStorage_ClearIsIdempotent(t *testing.T) {
	s := NewTokenStorage(t.TempDir())
	s.Clear()
	s.Clear()
}
