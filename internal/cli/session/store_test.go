package session

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient scripts backend responses per method
type fakeClient struct {
	mu          sync.Mutex
	loginResult *Authenticated
	loginErr    error
	loginCalls  int
	userResult  *UserSummary
	userErr     error
	userCalls   int
	block       chan struct{}
}

func (f *fakeClient) Login(ctx context.Context, creds Credentials) (*Authenticated, error) {
	f.mu.Lock()
	f.loginCalls++
	block := f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	return f.loginResult, f.loginErr
}

func (f *fakeClient) Signup(ctx context.Context, fields SignupFields) (*Authenticated, error) {
	return f.loginResult, f.loginErr
}

func (f *fakeClient) CurrentUser(ctx context.Context, token string) (*UserSummary, error) {
	f.mu.Lock()
	f.userCalls++
	f.mu.Unlock()
	return f.userResult, f.userErr
}

// memoryTokens is an in-memory token store
type memoryTokens struct {
	mu      sync.Mutex
	token   string
	saves   int
	deletes int
}

func (m *memoryTokens) SaveToken(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	m.saves++
	return nil
}

func (m *memoryTokens) LoadToken() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *memoryTokens) DeleteToken() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.deletes++
	return nil
}

func newTestStore(client *fakeClient, tokens *memoryTokens) *Store {
	return NewStore(client, tokens, zerolog.Nop())
}

func TestLoginSuccess(t *testing.T) {
	client := &fakeClient{
		loginResult: &Authenticated{
			Token: "tok-123",
			User:  UserSummary{ID: "u1", Email: "ana@example.com", Name: "Ana"},
		},
	}
	tokens := &memoryTokens{}
	store := newTestStore(client, tokens)

	err := store.Login(context.Background(), Credentials{Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)

	snap := store.Snapshot()
	assert.True(t, snap.Authenticated())
	assert.False(t, snap.Loading)
	assert.Equal(t, "tok-123", snap.Token)
	assert.Equal(t, "ana@example.com", snap.User.Email)
	assert.Equal(t, "tok-123", tokens.token)
}

func TestLoginFailureLeavesSessionUntouched(t *testing.T) {
	client := &fakeClient{loginErr: NewInvalidCredentials("Email or password is incorrect")}
	tokens := &memoryTokens{}
	store := newTestStore(client, tokens)

	err := store.Login(context.Background(), Credentials{Email: "ana@example.com", Password: "wrong1"})
	require.Error(t, err)

	authErr, ok := AsAuthError(err)
	require.True(t, ok)
	assert.Equal(t, KindInvalidCredentials, authErr.Kind)
	assert.Equal(t, "Email or password is incorrect", authErr.Message)

	snap := store.Snapshot()
	assert.False(t, snap.Authenticated())
	assert.False(t, snap.Loading, "loading must reset on failure")
	assert.Empty(t, tokens.token)
}

func TestLoginRejectsConcurrentOperation(t *testing.T) {
	block := make(chan struct{})
	client := &fakeClient{
		block:       block,
		loginResult: &Authenticated{Token: "tok", User: UserSummary{ID: "u1"}},
	}
	store := newTestStore(client, &memoryTokens{})

	done := make(chan error, 1)
	go func() {
		done <- store.Login(context.Background(), Credentials{Email: "a@b.co", Password: "secret1"})
	}()

	// Wait until the first login is in flight
	for !store.Loading() {
		runtime.Gosched()
	}

	err := store.Login(context.Background(), Credentials{Email: "a@b.co", Password: "secret1"})
	assert.ErrorIs(t, err, ErrOperationInFlight)

	close(block)
	require.NoError(t, <-done)
	assert.Equal(t, 1, client.loginCalls)
}

func TestLogoutClearsEverything(t *testing.T) {
	client := &fakeClient{
		loginResult: &Authenticated{Token: "tok", User: UserSummary{ID: "u1"}},
	}
	tokens := &memoryTokens{}
	store := newTestStore(client, tokens)

	require.NoError(t, store.Login(context.Background(), Credentials{Email: "a@b.co", Password: "secret1"}))
	require.True(t, store.Authenticated())

	store.Logout()

	snap := store.Snapshot()
	assert.False(t, snap.Authenticated())
	assert.Nil(t, snap.User)
	assert.Empty(t, tokens.token)
	assert.Equal(t, 1, tokens.deletes)
}

func TestRestoreWithValidToken(t *testing.T) {
	client := &fakeClient{
		userResult: &UserSummary{ID: "u1", Email: "ana@example.com"},
	}
	tokens := &memoryTokens{token: "persisted-tok"}
	store := newTestStore(client, tokens)

	require.NoError(t, store.Restore(context.Background()))

	snap := store.Snapshot()
	assert.True(t, snap.Authenticated())
	assert.Equal(t, "persisted-tok", snap.Token)
	assert.Equal(t, 1, client.userCalls)
}

func TestRestoreWithNoTokenSkipsNetwork(t *testing.T) {
	client := &fakeClient{}
	store := newTestStore(client, &memoryTokens{})

	require.NoError(t, store.Restore(context.Background()))

	assert.False(t, store.Authenticated())
	assert.Equal(t, 0, client.userCalls)
}

func TestRestoreWithRejectedTokenClearsIt(t *testing.T) {
	client := &fakeClient{userErr: NewInvalidCredentials("Token expired")}
	tokens := &memoryTokens{token: "stale-tok"}
	store := newTestStore(client, tokens)

	// A rejected token is not an error: the user simply has to log in again
	require.NoError(t, store.Restore(context.Background()))

	assert.False(t, store.Authenticated())
	assert.Empty(t, tokens.token)
	assert.Equal(t, 1, tokens.deletes)
}

func TestRestoreKeepsTokenOnNetworkFailure(t *testing.T) {
	client := &fakeClient{userErr: NewNetworkError(errors.New("connection refused"))}
	tokens := &memoryTokens{token: "good-tok"}
	store := newTestStore(client, tokens)

	err := store.Restore(context.Background())
	require.Error(t, err)

	authErr, ok := AsAuthError(err)
	require.True(t, ok)
	assert.Equal(t, KindNetwork, authErr.Kind)

	// The token might still be valid; it must survive for the next attempt
	assert.Equal(t, "good-tok", tokens.token)
	assert.Equal(t, 0, tokens.deletes)
}

func TestCloseDropsInFlightResult(t *testing.T) {
	block := make(chan struct{})
	client := &fakeClient{
		block:       block,
		loginResult: &Authenticated{Token: "tok", User: UserSummary{ID: "u1"}},
	}
	tokens := &memoryTokens{}
	store := newTestStore(client, tokens)

	done := make(chan error, 1)
	go func() {
		done <- store.Login(context.Background(), Credentials{Email: "a@b.co", Password: "secret1"})
	}()

	for !store.Loading() {
		runtime.Gosched()
	}

	store.Close()
	close(block)

	assert.ErrorIs(t, <-done, ErrClosed)
	assert.False(t, store.Snapshot().Authenticated())
	assert.Equal(t, 0, tokens.saves, "closed store must not persist tokens")
}

func TestClosedStoreRejectsOperations(t *testing.T) {
	store := newTestStore(&fakeClient{}, &memoryTokens{})
	store.Close()

	err := store.Login(context.Background(), Credentials{Email: "a@b.co", Password: "secret1"})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSubscribeSeesLoadingThenResult(t *testing.T) {
	client := &fakeClient{
		loginResult: &Authenticated{Token: "tok", User: UserSummary{ID: "u1"}},
	}
	store := newTestStore(client, &memoryTokens{})

	var mu sync.Mutex
	var seen []Snapshot
	unsubscribe := store.Subscribe(func(snap Snapshot) {
		mu.Lock()
		seen = append(seen, snap)
		mu.Unlock()
	})
	defer unsubscribe()

	require.NoError(t, store.Login(context.Background(), Credentials{Email: "a@b.co", Password: "secret1"}))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 2)
	assert.True(t, seen[0].Loading)
	assert.False(t, seen[0].Authenticated(), "no snapshot may pair loading with a stale identity")
	assert.False(t, seen[1].Loading)
	assert.True(t, seen[1].Authenticated())
}

func TestUnsubscribeStopsNotifications(t *testing.T) {
	client := &fakeClient{
		loginResult: &Authenticated{Token: "tok", User: UserSummary{ID: "u1"}},
	}
	store := newTestStore(client, &memoryTokens{})

	calls := 0
	unsubscribe := store.Subscribe(func(Snapshot) { calls++ })
	unsubscribe()

	require.NoError(t, store.Login(context.Background(), Credentials{Email: "a@b.co", Password: "secret1"}))
	assert.Equal(t, 0, calls)
}

func TestSnapshotIsACopy(t *testing.T) {
	client := &fakeClient{
		loginResult: &Authenticated{Token: "tok", User: UserSummary{ID: "u1", Name: "Ana"}},
	}
	store := newTestStore(client, &memoryTokens{})
	require.NoError(t, store.Login(context.Background(), Credentials{Email: "a@b.co", Password: "secret1"}))

	snap := store.Snapshot()
	snap.User.Name = "Mallory"

	assert.Equal(t, "Ana", store.Snapshot().User.Name)
}
