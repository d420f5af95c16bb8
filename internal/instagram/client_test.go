package instagram

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestExchangeCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/oauth/access_token" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("client_id") != "app-1" || q.Get("client_secret") != "shh" {
			t.Errorf("app credentials missing from query: %v", q)
		}
		if q.Get("code") != "auth-code" {
			t.Errorf("expected code=auth-code, got %q", q.Get("code"))
		}
		w.Write([]byte(`{"access_token": "short-tok", "token_type": "bearer", "expires_in": 3600}`))
	}))
	defer server.Close()

	client := New(server.URL, "app-1", "shh", "https://app.example.com/callback")

	token, err := client.ExchangeCode(context.Background(), "auth-code")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token.AccessToken != "short-tok" {
		t.Errorf("unexpected token: %+v", token)
	}
	if token.ExpiresAt() == nil {
		t.Errorf("expected an expiry for expires_in=3600")
	}
}

func TestTokenWithoutExpiry(t *testing.T) {
	token := &Token{AccessToken: "tok"}
	if token.ExpiresAt() != nil {
		t.Errorf("expected nil expiry for expires_in=0")
	}
}

func TestListMedia(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/17841400000000000/media" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("access_token"); got != "page-tok" {
			t.Errorf("expected access_token=page-tok, got %q", got)
		}
		w.Write([]byte(`{"data": [
			{"id": "m1", "caption": "Sunset", "media_type": "IMAGE", "permalink": "https://instagr.am/p/m1", "timestamp": "2026-08-20T18:00:00Z"}
		]}`))
	}))
	defer server.Close()

	client := New(server.URL, "app-1", "shh", "")

	media, err := client.ListMedia(context.Background(), "17841400000000000", "page-tok")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(media) != 1 || media[0].ID != "m1" || media[0].Caption != "Sunset" {
		t.Errorf("unexpected media: %+v", media)
	}
}

func TestGraphErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"message": "Invalid OAuth access token", "type": "OAuthException", "code": 190}}`))
	}))
	defer server.Close()

	client := New(server.URL, "app-1", "shh", "")

	_, err := client.ListMedia(context.Background(), "123", "bad-tok")
	if err == nil {
		t.Fatal("expected error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.Code != 190 {
		t.Errorf("expected code 190, got %d", apiErr.Code)
	}
}

func TestReplyToComment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/c1/replies" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != "POST" {
			t.Errorf("unexpected method: %s", r.Method)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("failed to parse form: %v", err)
		}
		if got := r.PostForm.Get("message"); got != "Thanks for stopping by!" {
			t.Errorf("unexpected message: %q", got)
		}
		w.Write([]byte(`{"id": "c2"}`))
	}))
	defer server.Close()

	client := New(server.URL, "app-1", "shh", "")

	id, err := client.ReplyToComment(context.Background(), "c1", "page-tok", "Thanks for stopping by!")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "c2" {
		t.Errorf("expected reply id c2, got %q", id)
	}
}
