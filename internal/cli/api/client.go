// Package api is the HTTP client for the Socivio backend. Auth operations
// return typed session errors so callers can tell "wrong password" apart
// from "server down".
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/socivio/socivio/internal/cli/session"
)

// Client represents an HTTP client for the Socivio API
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// New creates a new API client for the given base URL, e.g.
// "https://api.socivio.io" or "http://localhost:8080".
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetHTTPClient sets a custom HTTP client
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// SetToken sets the bearer token used on authenticated endpoints
func (c *Client) SetToken(token string) {
	c.token = token
}

// detailBody is the error envelope every backend failure carries
type detailBody struct {
	Detail string `json:"detail"`
}

// detailFrom extracts the backend's detail message, empty when the body is
// not the expected envelope
func detailFrom(body []byte) string {
	var envelope detailBody
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	return envelope.Detail
}

// authFailure maps a non-2xx auth response to a typed session error
func authFailure(statusCode int, body []byte) error {
	detail := detailFrom(body)
	switch {
	case statusCode == http.StatusUnauthorized:
		return session.NewInvalidCredentials(detail)
	case statusCode >= 500:
		return session.NewServerError(detail, fmt.Errorf("server returned status %d", statusCode))
	case statusCode == http.StatusUnprocessableEntity || statusCode == http.StatusBadRequest:
		if detail == "" {
			detail = session.FallbackMessage
		}
		return session.NewValidationError(detail)
	case statusCode == http.StatusConflict:
		if detail == "" {
			detail = "An account with this email already exists"
		}
		return session.NewValidationError(detail)
	default:
		return session.NewServerError(detail, fmt.Errorf("unexpected status %d", statusCode))
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token        string              `json:"token"`
	RefreshToken string              `json:"refresh_token"`
	User         session.UserSummary `json:"user"`
}

// Login authenticates and returns the issued token with the user profile
func (c *Client) Login(ctx context.Context, creds session.Credentials) (*session.Authenticated, error) {
	return c.authRequest(ctx, "/api/auth/login", loginRequest{
		Email:    creds.Email,
		Password: creds.Password,
	})
}

// Signup creates an account and returns the issued token with the user profile
func (c *Client) Signup(ctx context.Context, fields session.SignupFields) (*session.Authenticated, error) {
	return c.authRequest(ctx, "/api/auth/register", registerRequest{
		Name:     fields.Name,
		Email:    fields.Email,
		Password: fields.Password,
	})
}

func (c *Client) authRequest(ctx context.Context, path string, reqBody interface{}) (*session.Authenticated, error) {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, session.NewNetworkError(err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, authFailure(resp.StatusCode, body)
	}

	var tokenResp tokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, session.NewServerError("", fmt.Errorf("failed to decode response: %w", err))
	}
	if tokenResp.Token == "" {
		return nil, session.NewServerError("", fmt.Errorf("response is missing a token"))
	}

	return &session.Authenticated{Token: tokenResp.Token, User: tokenResp.User}, nil
}

// CurrentUser validates a token against the backend and returns its owner
func (c *Client) CurrentUser(ctx context.Context, token string) (*session.UserSummary, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/auth/me", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, session.NewNetworkError(err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, authFailure(resp.StatusCode, body)
	}

	var user session.UserSummary
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, session.NewServerError("", fmt.Errorf("failed to decode response: %w", err))
	}
	return &user, nil
}

// ConnectedAccount represents a linked Instagram business account
type ConnectedAccount struct {
	ID         string `json:"id"`
	ExternalID string `json:"external_id"`
	Username   string `json:"username"`
	PageID     string `json:"page_id"`
	PageName   string `json:"page_name"`
}

// ListAccounts returns the caller's connected Instagram accounts
func (c *Client) ListAccounts(ctx context.Context) ([]ConnectedAccount, error) {
	var resp struct {
		InstagramAccounts []ConnectedAccount `json:"instagram_accounts"`
	}
	if err := c.getJSON(ctx, "/api/accounts/connected", &resp); err != nil {
		return nil, err
	}
	return resp.InstagramAccounts, nil
}

// Post represents a synced Instagram post
type Post struct {
	ID           string    `json:"id"`
	ExternalID   string    `json:"external_id"`
	Caption      string    `json:"caption"`
	MediaType    string    `json:"media_type"`
	Permalink    string    `json:"permalink"`
	CommentCount int       `json:"comment_count"`
	PostedAt     time.Time `json:"posted_at"`
}

// ListPosts returns synced posts for one account
func (c *Client) ListPosts(ctx context.Context, accountID string) ([]Post, error) {
	var posts []Post
	if err := c.getJSON(ctx, "/api/posts?account="+accountID, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// Comment represents a synced Instagram comment
type Comment struct {
	ID          string    `json:"id"`
	ExternalID  string    `json:"external_id"`
	Username    string    `json:"username"`
	Text        string    `json:"text"`
	CommentedAt time.Time `json:"commented_at"`
}

// ListComments returns synced comments on one post
func (c *Client) ListComments(ctx context.Context, postID string) ([]Comment, error) {
	var comments []Comment
	if err := c.getJSON(ctx, fmt.Sprintf("/api/posts/%s/comments", postID), &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// ReplyDraft represents an AI-drafted reply awaiting review
type ReplyDraft struct {
	ID          string     `json:"id"`
	Status      string     `json:"status"`
	Text        string     `json:"text"`
	CommentID   string     `json:"comment_id"`
	CommentText string     `json:"comment_text"`
	Username    string     `json:"username"`
	CreatedAt   time.Time  `json:"created_at"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// ListReplies returns the caller's reply drafts, optionally filtered by status
func (c *Client) ListReplies(ctx context.Context, status string) ([]ReplyDraft, error) {
	path := "/api/replies"
	if status != "" {
		path += "?status=" + status
	}
	var drafts []ReplyDraft
	if err := c.getJSON(ctx, path, &drafts); err != nil {
		return nil, err
	}
	return drafts, nil
}

// ApproveReply approves a draft, publishing it to Instagram
func (c *Client) ApproveReply(ctx context.Context, draftID string) (*ReplyDraft, error) {
	var draft ReplyDraft
	if err := c.postJSON(ctx, fmt.Sprintf("/api/replies/%s/approve", draftID), nil, &draft); err != nil {
		return nil, err
	}
	return &draft, nil
}

// RejectReply rejects a draft
func (c *Client) RejectReply(ctx context.Context, draftID string) (*ReplyDraft, error) {
	var draft ReplyDraft
	if err := c.postJSON(ctx, fmt.Sprintf("/api/replies/%s/reject", draftID), nil, &draft); err != nil {
		return nil, err
	}
	return &draft, nil
}

// TriggerSync enqueues an on-demand sync for one account
func (c *Client) TriggerSync(ctx context.Context, accountID string) error {
	return c.postJSON(ctx, fmt.Sprintf("/api/sync/%s", accountID), nil, nil)
}

// Logout tells the backend the session is over. Best effort: the token is
// discarded locally regardless.
func (c *Client) Logout(ctx context.Context) error {
	return c.postJSON(ctx, "/api/auth/logout", nil, nil)
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	return c.doJSON(ctx, "GET", path, nil, out)
}

func (c *Client) postJSON(ctx context.Context, path string, reqBody, out interface{}) error {
	return c.doJSON(ctx, "POST", path, reqBody, out)
}

func (c *Client) doJSON(ctx context.Context, method, path string, reqBody, out interface{}) error {
	var bodyReader io.Reader
	if reqBody != nil {
		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return session.NewNetworkError(err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := detailFrom(body)
		if detail == "" {
			detail = fmt.Sprintf("request failed (status %d)", resp.StatusCode)
		}
		if resp.StatusCode == http.StatusUnauthorized {
			return session.NewInvalidCredentials(detail)
		}
		return fmt.Errorf("%s", detail)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
