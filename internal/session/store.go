package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/existflow/carnet/internal/api"
	"github.com/existflow/carnet/internal/logger"
	"github.com/existflow/carnet/internal/model"
)

// Session is the client's belief about the current login state.
// IsAuthenticated is true iff both User and Token are set and the token
// has not expired. IsLoading is true only while the initial startup
// resolution is pending.
type Session struct {
	User            *model.User
	Token           string
	IsLoading       bool
	IsAuthenticated bool
}

// Store is the single source of truth for "is the user logged in". It is
// the only component allowed to touch durable token storage. Both
// collaborators are injected so the store can be tested against a mock
// server and a temp directory.
type Store struct {
	api    *api.Client
	tokens *TokenStorage

	mu      sync.Mutex
	session Session
	subs    map[int]func(Session)
	nextSub int
}

// NewStore creates a store in the Unknown state. Call Init to resolve it.
func NewStore(client *api.Client, tokens *TokenStorage) *Store {
	return &Store{
		api:     client,
		tokens:  tokens,
		session: Session{IsLoading: true},
		subs:    make(map[int]func(Session)),
	}
}

// Current returns a snapshot of the session
func (s *Store) Current() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// Subscribe registers fn to run on every session transition. The returned
// func unsubscribes.
func (s *Store) Subscribe(fn func(Session)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) set(session Session) {
	s.mu.Lock()
	s.session = session
	subs := make([]func(Session), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(session)
	}
}

// Init resolves the initial Unknown state: no durable token (or an
// expired one) means Anonymous without any network call; otherwise the
// token is validated against the server. A failed identity check is not
// retried: the session collapses to Anonymous and storage is cleared.
// Init never returns an error.
func (s *Store) Init(ctx context.Context) {
	token := s.tokens.Token()
	if token == "" {
		s.set(Session{})
		return
	}

	user, err := s.api.Me(ctx, token)
	if err != nil {
		logger.Warn("Stored session rejected, clearing", logger.F("error", err))
		s.tokens.Clear()
		s.set(Session{})
		return
	}

	logger.Info("Session restored", logger.F("username", user.Username))
	s.set(Session{User: user, Token: token, IsAuthenticated: true})
}

// Login authenticates and transitions to Authenticated. The token is
// persisted durably before the in-memory transition. If the follow-up
// identity fetch fails the durable entries are cleared again and the
// session stays anonymous.
func (s *Store) Login(ctx context.Context, username, password string) error {
	token, err := s.api.Login(ctx, username, password)
	if err != nil {
		return err
	}
	return s.adopt(ctx, token)
}

// Register creates an account and logs it in, with the same persistence
// ordering as Login
func (s *Store) Register(ctx context.Context, req api.RegisterRequest) error {
	token, err := s.api.Register(ctx, req)
	if err != nil {
		return err
	}
	return s.adopt(ctx, token)
}

func (s *Store) adopt(ctx context.Context, token *model.Token) error {
	if err := s.tokens.Save(token.AccessToken, token.ExpiresAt); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	user, err := s.api.Me(ctx, token.AccessToken)
	if err != nil {
		s.tokens.Clear()
		return err
	}

	logger.Info("Logged in", logger.F("username", user.Username))
	s.set(Session{User: user, Token: token.AccessToken, IsAuthenticated: true})
	return nil
}

// Logout clears durable storage and resets the session. Synchronous, no
// network, never fails, even with requests in flight.
func (s *Store) Logout() {
	s.tokens.Clear()
	s.set(Session{})
	logger.Info("Logged out")
}

// RefreshUser re-fetches the identity without touching the token, so
// profile mutations (name, avatar) show up without a re-login
func (s *Store) RefreshUser(ctx context.Context) error {
	current := s.Current()
	if !current.IsAuthenticated {
		return fmt.Errorf("not logged in")
	}

	user, err := s.api.Me(ctx, current.Token)
	if err != nil {
		return err
	}
	s.set(Session{User: user, Token: current.Token, IsAuthenticated: true})
	return nil
}

// RefreshToken trades the current token for a fresh one and persists it
// before swapping it into memory
func (s *Store) RefreshToken(ctx context.Context) error {
	current := s.Current()
	if !current.IsAuthenticated {
		return fmt.Errorf("not logged in")
	}

	token, err := s.api.Refresh(ctx, current.Token)
	if err != nil {
		return err
	}
	if err := s.tokens.Save(token.AccessToken, token.ExpiresAt); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	s.set(Session{User: current.User, Token: token.AccessToken, IsAuthenticated: true})
	return nil
}
