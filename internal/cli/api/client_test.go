package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/socivio/socivio/internal/cli/session"
)

func TestLoginSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login" {
			t.Errorf("unexpected path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Method != "POST" {
			t.Errorf("unexpected method: %s", r.Method)
		}

		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if req.Email != "ana@example.com" || req.Password != "secret1" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail": "Email or password is incorrect"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"token": "tok-123",
			"refresh_token": "ref-456",
			"user": {"id": "u1", "email": "ana@example.com", "name": "Ana"}
		}`))
	}))
	defer server.Close()

	client := New(server.URL)
	result, err := client.Login(context.Background(), session.Credentials{
		Email:    "ana@example.com",
		Password: "secret1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Token != "tok-123" {
		t.Errorf("expected token tok-123, got %q", result.Token)
	}
	if result.User.Email != "ana@example.com" || result.User.Name != "Ana" {
		t.Errorf("unexpected user: %+v", result.User)
	}
}

func TestLoginInvalidCredentialsCarriesDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": "Email or password is incorrect"}`))
	}))
	defer server.Close()

	client := New(server.URL)
	_, err := client.Login(context.Background(), session.Credentials{Email: "a@b.co", Password: "nope"})
	if err == nil {
		t.Fatal("expected error")
	}

	authErr, ok := session.AsAuthError(err)
	if !ok {
		t.Fatalf("expected AuthError, got %T: %v", err, err)
	}
	if authErr.Kind != session.KindInvalidCredentials {
		t.Errorf("expected invalid credentials kind, got %s", authErr.Kind)
	}
	if authErr.Message != "Email or password is incorrect" {
		t.Errorf("backend detail lost, got %q", authErr.Message)
	}
}

func TestLoginServerErrorFallsBackToGenericMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`<html>gateway exploded</html>`))
	}))
	defer server.Close()

	client := New(server.URL)
	_, err := client.Login(context.Background(), session.Credentials{Email: "a@b.co", Password: "secret1"})
	if err == nil {
		t.Fatal("expected error")
	}

	authErr, ok := session.AsAuthError(err)
	if !ok {
		t.Fatalf("expected AuthError, got %T", err)
	}
	if authErr.Kind != session.KindServer {
		t.Errorf("expected server kind, got %s", authErr.Kind)
	}
	if authErr.Message != session.FallbackMessage {
		t.Errorf("expected fallback message, got %q", authErr.Message)
	}
}

func TestLoginMalformedSuccessBodyIsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"unexpected": true}`))
	}))
	defer server.Close()

	client := New(server.URL)
	_, err := client.Login(context.Background(), session.Credentials{Email: "a@b.co", Password: "secret1"})
	if err == nil {
		t.Fatal("expected error for token-less response")
	}

	authErr, ok := session.AsAuthError(err)
	if !ok || authErr.Kind != session.KindServer {
		t.Errorf("expected server error, got %v", err)
	}
}

func TestLoginNetworkError(t *testing.T) {
	// Closed server: the request cannot reach anything
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := New(server.URL)
	_, err := client.Login(context.Background(), session.Credentials{Email: "a@b.co", Password: "secret1"})
	if err == nil {
		t.Fatal("expected error")
	}

	authErr, ok := session.AsAuthError(err)
	if !ok || authErr.Kind != session.KindNetwork {
		t.Errorf("expected network error, got %v", err)
	}
}

func TestCurrentUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/me" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail": "Invalid or expired token"}`))
			return
		}
		w.Write([]byte(`{"id": "u1", "email": "ana@example.com", "name": "Ana"}`))
	}))
	defer server.Close()

	client := New(server.URL)

	user, err := client.CurrentUser(context.Background(), "tok-123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != "u1" {
		t.Errorf("unexpected user: %+v", user)
	}

	_, err = client.CurrentUser(context.Background(), "stale")
	authErr, ok := session.AsAuthError(err)
	if !ok || authErr.Kind != session.KindInvalidCredentials {
		t.Errorf("expected invalid credentials for stale token, got %v", err)
	}
}

func TestListAccountsUnwrapsEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/accounts/connected" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"instagram_accounts": [
			{"id": "a1", "external_id": "17841400000000000", "username": "acme", "page_id": "p1", "page_name": "Acme Co"}
		]}`))
	}))
	defer server.Close()

	client := New(server.URL)
	client.SetToken("tok-123")

	accounts, err := client.ListAccounts(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(accounts) != 1 || accounts[0].Username != "acme" || accounts[0].PageName != "Acme Co" {
		t.Errorf("unexpected accounts: %+v", accounts)
	}
}

func TestListPostsCarriesCommentCount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("account"); got != "a1" {
			t.Errorf("expected account=a1, got %q", got)
		}
		w.Write([]byte(`[
			{"id": "p1", "external_id": "m1", "caption": "launch day", "comment_count": 7, "posted_at": "2026-08-20T18:00:00Z"},
			{"id": "p2", "external_id": "m2", "caption": "quiet one", "comment_count": 0, "posted_at": "2026-08-21T18:00:00Z"}
		]`))
	}))
	defer server.Close()

	client := New(server.URL)
	client.SetToken("tok-123")

	posts, err := client.ListPosts(context.Background(), "a1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(posts) != 2 || posts[0].CommentCount != 7 || posts[1].CommentCount != 0 {
		t.Errorf("unexpected posts: %+v", posts)
	}
}

func TestListRepliesSendsTokenAndStatusFilter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Errorf("missing bearer token, got %q", got)
		}
		if got := r.URL.Query().Get("status"); got != "draft" {
			t.Errorf("expected status=draft, got %q", got)
		}
		w.Write([]byte(`[{"id": "d1", "status": "draft", "text": "Thanks!", "username": "fan"}]`))
	}))
	defer server.Close()

	client := New(server.URL)
	client.SetToken("tok-123")

	drafts, err := client.ListReplies(context.Background(), "draft")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(drafts) != 1 || drafts[0].ID != "d1" {
		t.Errorf("unexpected drafts: %+v", drafts)
	}
}
