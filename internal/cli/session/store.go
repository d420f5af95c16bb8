// Package session is the single source of truth for "is someone logged in,
// and as whom". The Store is constructed explicitly and injected where
// needed; there is no package-level singleton. Consumers read atomic
// snapshots or subscribe for change notifications, so they never observe a
// half-updated session.
package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// UserSummary is the read-only projection of the backend user record
type UserSummary struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Credentials are transient login inputs, never persisted
type Credentials struct {
	Email    string
	Password string
}

// SignupFields are transient account-creation inputs
type SignupFields struct {
	Name     string
	Email    string
	Password string
}

// Authenticated is a successful login/signup result
type Authenticated struct {
	Token string
	User  UserSummary
}

// APIClient is the backend surface the store needs. Implemented by
// internal/cli/api for production and by fakes in tests.
type APIClient interface {
	Login(ctx context.Context, creds Credentials) (*Authenticated, error)
	Signup(ctx context.Context, fields SignupFields) (*Authenticated, error)
	CurrentUser(ctx context.Context, token string) (*UserSummary, error)
}

// TokenStore persists the session token across process restarts.
// LoadToken returns ("", nil) when no token is stored.
type TokenStore interface {
	SaveToken(token string) error
	LoadToken() (string, error)
	DeleteToken() error
}

// Snapshot is an immutable view of the session at one point in time
type Snapshot struct {
	User    *UserSummary
	Token   string
	Loading bool
}

// Authenticated reports whether the snapshot represents a logged-in session
func (s Snapshot) Authenticated() bool {
	return s.User != nil && s.Token != ""
}

// Store holds the current session. All mutation happens under one lock;
// observers are notified after the lock is released with a copied snapshot.
type Store struct {
	mu        sync.Mutex
	client    APIClient
	tokens    TokenStore
	logger    zerolog.Logger
	user      *UserSummary
	token     string
	loading   bool
	closed    bool
	nextSubID int
	observers map[int]func(Snapshot)
}

// NewStore creates a session store. The store starts unauthenticated; call
// Restore once at startup to attempt a silent login from the persisted token.
func NewStore(client APIClient, tokens TokenStore, logger zerolog.Logger) *Store {
	return &Store{
		client:    client,
		tokens:    tokens,
		logger:    logger,
		observers: make(map[int]func(Snapshot)),
	}
}

// Snapshot returns the current session state
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	var user *UserSummary
	if s.user != nil {
		u := *s.user
		user = &u
	}
	return Snapshot{User: user, Token: s.token, Loading: s.loading}
}

// Authenticated reports whether a user is logged in
func (s *Store) Authenticated() bool {
	return s.Snapshot().Authenticated()
}

// Loading reports whether an auth operation is in flight
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Subscribe registers an observer called with a fresh snapshot after every
// state change. The returned function unsubscribes.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.observers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// Close detaches the store from its consumers. In-flight operations that
// complete after Close do not mutate the session or the token store.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.observers = make(map[int]func(Snapshot))
	s.mu.Unlock()
}

// notify fans a snapshot out to observers. Called outside the lock.
func (s *Store) notify() {
	s.mu.Lock()
	snap := s.snapshotLocked()
	fns := make([]func(Snapshot), 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// beginOperation flips loading on. At most one auth operation may be
// outstanding per store.
func (s *Store) beginOperation() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.loading {
		s.mu.Unlock()
		return ErrOperationInFlight
	}
	s.loading = true
	s.mu.Unlock()

	s.notify()
	return nil
}

// Login authenticates with the backend. On success the token and user are
// stored (memory and token store). On failure the session is left untouched
// and a typed *AuthError is returned. Loading is reset on every path.
func (s *Store) Login(ctx context.Context, creds Credentials) error {
	if err := s.beginOperation(); err != nil {
		return err
	}

	result, err := s.client.Login(ctx, creds)
	return s.completeAuth(result, err)
}

// Signup creates an account. Same contract as Login.
func (s *Store) Signup(ctx context.Context, fields SignupFields) error {
	if err := s.beginOperation(); err != nil {
		return err
	}

	result, err := s.client.Signup(ctx, fields)
	return s.completeAuth(result, err)
}

func (s *Store) completeAuth(result *Authenticated, err error) error {
	s.mu.Lock()
	s.loading = false
	if s.closed {
		// Nobody is listening anymore; drop the result on the floor
		s.mu.Unlock()
		if err != nil {
			return err
		}
		return ErrClosed
	}
	if err != nil {
		s.mu.Unlock()
		s.notify()
		return err
	}

	user := result.User
	s.user = &user
	s.token = result.Token
	s.mu.Unlock()

	if err := s.tokens.SaveToken(result.Token); err != nil {
		// The in-memory session is still valid for this process; the next
		// startup just won't restore silently
		s.logger.Warn().Err(err).Msg("Failed to persist session token")
	}

	s.notify()
	return nil
}

// Logout clears the session synchronously. It never fails: a token-store
// error only means the next startup won't find a token to reject.
func (s *Store) Logout() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.user = nil
	s.token = ""
	s.mu.Unlock()

	if err := s.tokens.DeleteToken(); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to delete persisted token")
	}

	s.notify()
}

// Restore attempts a silent login from the persisted token. Invoked once at
// startup, before any consumer relies on Authenticated.
//
// An invalid or expired token clears the persisted token and resolves
// unauthenticated without error. Network and server failures leave the
// persisted token in place and are returned to the caller.
func (s *Store) Restore(ctx context.Context) error {
	token, err := s.tokens.LoadToken()
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to read persisted token")
		return nil
	}
	if token == "" {
		return nil
	}

	if err := s.beginOperation(); err != nil {
		return err
	}

	user, err := s.client.CurrentUser(ctx, token)

	s.mu.Lock()
	s.loading = false
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	if err != nil {
		s.mu.Unlock()
		s.notify()

		if authErr, ok := AsAuthError(err); ok && authErr.Kind == KindInvalidCredentials {
			if delErr := s.tokens.DeleteToken(); delErr != nil {
				s.logger.Warn().Err(delErr).Msg("Failed to clear invalid token")
			}
			s.logger.Debug().Msg("Persisted token rejected, session cleared")
			return nil
		}
		return err
	}

	u := *user
	s.user = &u
	s.token = token
	s.mu.Unlock()

	s.notify()
	return nil
}
