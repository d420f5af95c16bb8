package loginform

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/socivio/socivio/internal/cli/session"
)

// countingClient records how many requests reach the network layer
type countingClient struct {
	mu         sync.Mutex
	loginCalls int
	result     *session.Authenticated
	err        error
}

func (c *countingClient) Login(ctx context.Context, creds session.Credentials) (*session.Authenticated, error) {
	c.mu.Lock()
	c.loginCalls++
	c.mu.Unlock()
	return c.result, c.err
}

func (c *countingClient) Signup(ctx context.Context, fields session.SignupFields) (*session.Authenticated, error) {
	return c.result, c.err
}

func (c *countingClient) CurrentUser(ctx context.Context, token string) (*session.UserSummary, error) {
	return nil, errors.New("not implemented")
}

type nopTokens struct{}

func (nopTokens) SaveToken(string) error     { return nil }
func (nopTokens) LoadToken() (string, error) { return "", nil }
func (nopTokens) DeleteToken() error         { return nil }

func newTestForm(client *countingClient) (*Controller, *[]string) {
	store := session.NewStore(client, nopTokens{}, zerolog.Nop())
	var navigations []string
	form := New(store, func(path string) { navigations = append(navigations, path) })
	return form, &navigations
}

func TestSubmitSuccessNavigatesToDashboard(t *testing.T) {
	client := &countingClient{
		result: &session.Authenticated{Token: "tok", User: session.UserSummary{ID: "u1"}},
	}
	form, navigations := newTestForm(client)

	form.SetEmail("ana@example.com")
	form.SetPassword("secret1")

	if err := form.Submit(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(*navigations) != 1 || (*navigations)[0] != DashboardPath {
		t.Errorf("expected navigation to %s, got %v", DashboardPath, *navigations)
	}
	if form.Banner() != "" {
		t.Errorf("unexpected banner: %q", form.Banner())
	}
	if form.Busy() {
		t.Errorf("form still busy after submit")
	}
}

func TestSubmitValidationBlocksNetwork(t *testing.T) {
	tests := []struct {
		name          string
		email         string
		password      string
		expectedField string
		expectedMsg   string
	}{
		{"empty email", "", "secret1", FieldEmail, MsgEmailRequired},
		{"malformed email", "not-an-email", "secret1", FieldEmail, MsgEmailInvalid},
		{"missing at sign", "ana.example.com", "secret1", FieldEmail, MsgEmailInvalid},
		{"empty password", "ana@example.com", "", FieldPassword, MsgPasswordRequired},
		{"short password", "ana@example.com", "12345", FieldPassword, MsgPasswordTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &countingClient{}
			form, navigations := newTestForm(client)

			form.SetEmail(tt.email)
			form.SetPassword(tt.password)

			err := form.Submit(context.Background())
			if err == nil {
				t.Fatal("expected validation error")
			}

			authErr, ok := session.AsAuthError(err)
			if !ok || authErr.Kind != session.KindValidation {
				t.Fatalf("expected validation error, got %v", err)
			}

			if client.loginCalls != 0 {
				t.Errorf("validation failure must not reach the network, got %d calls", client.loginCalls)
			}
			if len(*navigations) != 0 {
				t.Errorf("unexpected navigation: %v", *navigations)
			}
			if msg := form.FieldErrors()[tt.expectedField]; msg != tt.expectedMsg {
				t.Errorf("expected %q on %s, got %q", tt.expectedMsg, tt.expectedField, msg)
			}
		})
	}
}

func TestSubmitBothFieldsInvalid(t *testing.T) {
	client := &countingClient{}
	form, _ := newTestForm(client)

	form.SetEmail("nope")
	form.SetPassword("123")

	if err := form.Submit(context.Background()); err == nil {
		t.Fatal("expected validation error")
	}

	fieldErrors := form.FieldErrors()
	if len(fieldErrors) != 2 {
		t.Fatalf("expected errors on both fields, got %v", fieldErrors)
	}
	if client.loginCalls != 0 {
		t.Errorf("network was reached despite invalid fields")
	}
}

func TestSubmitFailureRaisesBannerAndKeepsInputs(t *testing.T) {
	client := &countingClient{err: session.NewInvalidCredentials("Email or password is incorrect")}
	form, navigations := newTestForm(client)

	form.SetEmail("ana@example.com")
	form.SetPassword("wrong-password")

	if err := form.Submit(context.Background()); err == nil {
		t.Fatal("expected error")
	}

	if form.Banner() != "Email or password is incorrect" {
		t.Errorf("expected backend detail in banner, got %q", form.Banner())
	}
	if form.Email() != "ana@example.com" || form.Password() != "wrong-password" {
		t.Errorf("inputs must survive a failed submit")
	}
	if len(*navigations) != 0 {
		t.Errorf("unexpected navigation on failure: %v", *navigations)
	}
}

func TestSubmitNetworkFailureUsesSafeMessage(t *testing.T) {
	client := &countingClient{err: session.NewNetworkError(errors.New("dial tcp: connection refused"))}
	form, _ := newTestForm(client)

	form.SetEmail("ana@example.com")
	form.SetPassword("secret1")

	if err := form.Submit(context.Background()); err == nil {
		t.Fatal("expected error")
	}

	banner := form.Banner()
	if banner == "" {
		t.Fatal("expected a banner")
	}
	// Raw transport errors must never leak into the banner
	if banner == "dial tcp: connection refused" {
		t.Errorf("banner leaked a raw error: %q", banner)
	}
}

func TestDismissBanner(t *testing.T) {
	client := &countingClient{err: session.NewInvalidCredentials("")}
	form, _ := newTestForm(client)

	form.SetEmail("ana@example.com")
	form.SetPassword("secret1")
	_ = form.Submit(context.Background())

	if form.Banner() == "" {
		t.Fatal("expected a banner")
	}

	form.DismissBanner()
	if form.Banner() != "" {
		t.Errorf("banner survived dismissal")
	}
}

func TestResubmitClearsStaleErrors(t *testing.T) {
	client := &countingClient{
		result: &session.Authenticated{Token: "tok", User: session.UserSummary{ID: "u1"}},
	}
	form, _ := newTestForm(client)

	form.SetEmail("")
	form.SetPassword("secret1")
	_ = form.Submit(context.Background())
	if len(form.FieldErrors()) == 0 {
		t.Fatal("expected field error")
	}

	form.SetEmail("ana@example.com")
	if err := form.Submit(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(form.FieldErrors()) != 0 {
		t.Errorf("stale field errors survived a successful submit: %v", form.FieldErrors())
	}
}

func TestEditingClearsFieldError(t *testing.T) {
	client := &countingClient{}
	form, _ := newTestForm(client)

	form.SetEmail("bad")
	form.SetPassword("secret1")
	_ = form.Submit(context.Background())

	if _, ok := form.FieldErrors()[FieldEmail]; !ok {
		t.Fatal("expected email field error")
	}

	form.SetEmail("ana@example.com")
	if _, ok := form.FieldErrors()[FieldEmail]; ok {
		t.Errorf("field error survived an edit")
	}
}
