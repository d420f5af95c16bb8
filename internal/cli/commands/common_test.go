package commands

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/socivio/socivio/internal/cli/api"
	"github.com/socivio/socivio/internal/cli/guard"
	"github.com/socivio/socivio/internal/cli/session"
)

type memTokens struct {
	token string
}

func (m *memTokens) SaveToken(token string) error { m.token = token; return nil }
func (m *memTokens) LoadToken() (string, error)   { return m.token, nil }
func (m *memTokens) DeleteToken() error           { m.token = ""; return nil }

func newTestContext(serverURL, token string) *cliContext {
	client := api.New(serverURL)
	store := session.NewStore(client, &memTokens{token: token}, zerolog.Nop())
	return &cliContext{
		serverURL: serverURL,
		client:    client,
		store:     store,
		guard:     guard.New(nil),
	}
}

func TestRequireAuthWithValidToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/auth/me" && r.Header.Get("Authorization") == "Bearer tok-123" {
			w.Write([]byte(`{"id": "u1", "email": "ana@example.com", "name": "Ana"}`))
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": "Invalid or expired token"}`))
	}))
	defer server.Close()

	cli := newTestContext(server.URL, "tok-123")

	if err := cli.requireAuth(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cli.guard.State() != guard.Authorized {
		t.Errorf("expected authorized guard, got %s", cli.guard.State())
	}

	// Later checks in the same process stay authorized
	if err := cli.requireAuth(context.Background()); err != nil {
		t.Errorf("latched guard rejected a second check: %v", err)
	}
}

func TestRequireAuthWithoutSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no request expected without a stored token, got %s", r.URL.Path)
	}))
	defer server.Close()

	cli := newTestContext(server.URL, "")

	err := cli.requireAuth(context.Background())
	if err == nil {
		t.Fatal("expected error without a session")
	}
	if cli.guard.State() != guard.Redirecting {
		t.Errorf("expected redirecting guard, got %s", cli.guard.State())
	}

	// The latch holds on repeat checks
	if err := cli.requireAuth(context.Background()); err == nil {
		t.Error("latched guard let a second check through")
	}
}

func TestRequireAuthWithRejectedToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": "Invalid or expired token"}`))
	}))
	defer server.Close()

	tokens := &memTokens{token: "stale"}
	client := api.New(server.URL)
	cli := &cliContext{
		serverURL: server.URL,
		client:    client,
		store:     session.NewStore(client, tokens, zerolog.Nop()),
		guard:     guard.New(nil),
	}

	if err := cli.requireAuth(context.Background()); err == nil {
		t.Fatal("expected error for a rejected token")
	}
	if tokens.token != "" {
		t.Errorf("rejected token was not cleared: %q", tokens.token)
	}
}
