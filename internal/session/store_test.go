package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/existflow/carnet/internal/api"
)

const meBody = `{"id":"u1","username":"alice","is_admin":false,"created_at":"2024-01-01T00:00:00Z"}`

func futureToken(token string) string {
	return `{"access_token":"` + token + `","token_type":"bearer","expires_at":"` +
		time.Now().Add(time.Hour).Format(time.RFC3339) + `"}`
}

func TestStore_StartsLoading(t *testing.T) {
	store := NewStore(api.New("http://unused.invalid"), NewTokenStorage(t.TempDir()))

	current := store.Current()
	if !current.IsLoading {
		t.Error("Expected initial session to be loading")
	}
	if current.IsAuthenticated {
		t.Error("Expected initial session to not be authenticated")
	}
}

func TestStore_InitNoToken(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	store := NewStore(api.New(server.URL), NewTokenStorage(t.TempDir()))
	store.Init(context.Background())

	current := store.Current()
	if current.IsLoading || current.IsAuthenticated || current.User != nil {
		t.Errorf("Expected anonymous resolved session, got %+v", current)
	}
	if calls.Load() != 0 {
		t.Errorf("Expected no network calls without a token, got %d", calls.Load())
	}
}

func TestStore_InitValidToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/me" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer tok123" {
			t.Errorf("Unexpected auth header %q", r.Header.Get("Authorization"))
		}
		w.Write([]byte(meBody))
	}))
	defer server.Close()

	tokens := NewTokenStorage(t.TempDir())
	tokens.Save("tok123", time.Now().Add(time.Hour))

	store := NewStore(api.New(server.URL), tokens)
	store.Init(context.Background())

	current := store.Current()
	if !current.IsAuthenticated {
		t.Fatal("Expected authenticated session")
	}
	if current.User.Username != "alice" {
		t.Errorf("Expected alice, got %q", current.User.Username)
	}
	if current.Token != "tok123" {
		t.Errorf("Expected token in session, got %q", current.Token)
	}
}

func TestStore_InitRejectedTokenClears(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Jeton invalide"}`))
	}))
	defer server.Close()

	tokens := NewTokenStorage(t.TempDir())
	tokens.Save("stale", time.Now().Add(time.Hour))

	store := NewStore(api.New(server.URL), tokens)
	store.Init(context.Background())

	current := store.Current()
	if current.IsAuthenticated || current.IsLoading {
		t.Errorf("Expected anonymous session, got %+v", current)
	}
	if tokens.Token() != "" {
		t.Error("Expected durable entries to be cleared")
	}
}

func TestStore_LoginSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			w.Write([]byte(futureToken("fresh")))
		case "/api/auth/me":
			w.Write([]byte(meBody))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	tokens := NewTokenStorage(t.TempDir())
	store := NewStore(api.New(server.URL), tokens)

	if err := store.Login(context.Background(), "alice", "secret"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	current := store.Current()
	if !current.IsAuthenticated || current.User.Username != "alice" {
		t.Errorf("Expected authenticated alice, got %+v", current)
	}
	if tokens.Token() != "fresh" {
		t.Error("Expected token to be persisted durably")
	}
}

func TestStore_LoginBadCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Invalid credentials"}`))
	}))
	defer server.Close()

	tokens := NewTokenStorage(t.TempDir())
	store := NewStore(api.New(server.URL), tokens)

	err := store.Login(context.Background(), "alice", "bad")
	var apiErr *api.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *APIError, got %v", err)
	}
	if apiErr.Status != http.StatusUnauthorized || apiErr.Detail != "Invalid credentials" {
		t.Errorf("Unexpected error %+v", apiErr)
	}

	current := store.Current()
	if current.IsAuthenticated {
		t.Error("Expected session to remain anonymous")
	}
	if tokens.Token() != "" {
		t.Error("Expected no token persisted")
	}
}

func TestStore_LoginIdentityFetchFailureRollsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			w.Write([]byte(futureToken("fresh")))
		default:
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"detail":"Erreur interne"}`))
		}
	}))
	defer server.Close()

	tokens := NewTokenStorage(t.TempDir())
	store := NewStore(api.New(server.URL), tokens)

	if err := store.Login(context.Background(), "alice", "secret"); err == nil {
		t.Fatal("Expected error")
	}

	if store.Current().IsAuthenticated {
		t.Error("Expected session to stay anonymous")
	}
	if tokens.Token() != "" {
		t.Error("Expected persisted token to be rolled back")
	}
}

func TestStore_LogoutIsSynchronous(t *testing.T) {
	// The server never responds in time; logout must not care
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/auth/me" {
			w.Write([]byte(meBody))
			return
		}
		time.Sleep(5 * time.Second)
	}))
	defer server.Close()

	tokens := NewTokenStorage(t.TempDir())
	tokens.Save("tok123", time.Now().Add(time.Hour))

	store := NewStore(api.New(server.URL), tokens)
	store.Init(context.Background())

	done := make(chan struct{})
	go func() {
		store.Logout()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Logout did not complete synchronously")
	}

	current := store.Current()
	if current.IsAuthenticated || current.User != nil || current.Token != "" {
		t.Errorf("Expected anonymous session, got %+v", current)
	}
	if tokens.Token() != "" {
		t.Error("Expected durable entries cleared")
	}
}

func TestStore_RefreshUserUpdatesIdentity(t *testing.T) {
	var name atomic.Value
	name.Store("alice")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"u1","username":"` + name.Load().(string) + `","is_admin":false,"created_at":"2024-01-01T00:00:00Z"}`))
	}))
	defer server.Close()

	tokens := NewTokenStorage(t.TempDir())
	tokens.Save("tok123", time.Now().Add(time.Hour))

	store := NewStore(api.New(server.URL), tokens)
	store.Init(context.Background())

	name.Store("alice-renamed")
	if err := store.RefreshUser(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	current := store.Current()
	if current.User.Username != "alice-renamed" {
		t.Errorf("Expected refreshed identity, got %q", current.User.Username)
	}
	if current.Token != "tok123" {
		t.Error("Expected token untouched by RefreshUser")
	}
}

func TestStore_SubscribeNotifiesOnTransition(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(meBody))
	}))
	defer server.Close()

	tokens := NewTokenStorage(t.TempDir())
	tokens.Save("tok123", time.Now().Add(time.Hour))

	store := NewStore(api.New(server.URL), tokens)

	var seen []bool
	unsubscribe := store.Subscribe(func(s Session) {
		seen = append(seen, s.IsAuthenticated)
	})

	store.Init(context.Background())
	store.Logout()

	if len(seen) != 2 || !seen[0] || seen[1] {
		t.Errorf("Expected [authenticated, anonymous] notifications, got %v", seen)
	}

	unsubscribe()
	store.Logout()
	if len(seen) != 2 {
		t.Error("Expected no notifications after unsubscribe")
	}
}
