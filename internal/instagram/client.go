// Package instagram is a minimal Graph API client covering the calls Socivio
// needs: OAuth code exchange, account discovery, media/comment listing and
// comment replies. Anything else the Graph API offers is out of scope.
package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client represents an HTTP client for the Instagram Graph API
type Client struct {
	baseURL     string
	appID       string
	appSecret   string
	redirectURI string
	httpClient  *http.Client
}

// New creates a new Graph API client
func New(baseURL, appID, appSecret, redirectURI string) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		appID:       appID,
		appSecret:   appSecret,
		redirectURI: redirectURI,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetHTTPClient sets a custom HTTP client
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// APIError is a structured Graph API error response
type APIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("graph api error (code %d): %s", e.Code, e.Message)
}

type errorEnvelope struct {
	Error *APIError `json:"error"`
}

// Token is an OAuth access token returned by the Graph API
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"` // Seconds; 0 means no known expiry
}

// ExpiresAt converts ExpiresIn to an absolute time, nil when unknown
func (t *Token) ExpiresAt() *time.Time {
	if t.ExpiresIn == 0 {
		return nil
	}
	exp := time.Now().Add(time.Duration(t.ExpiresIn) * time.Second)
	return &exp
}

// ExchangeCode exchanges an OAuth authorization code for a user access token
func (c *Client) ExchangeCode(ctx context.Context, code string) (*Token, error) {
	params := url.Values{}
	params.Set("client_id", c.appID)
	params.Set("client_secret", c.appSecret)
	params.Set("redirect_uri", c.redirectURI)
	params.Set("code", code)

	var token Token
	if err := c.get(ctx, "/oauth/access_token", params, &token); err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}
	return &token, nil
}

// ExchangeLongLived trades a short-lived token for a ~60 day one
func (c *Client) ExchangeLongLived(ctx context.Context, shortLived string) (*Token, error) {
	params := url.Values{}
	params.Set("grant_type", "fb_exchange_token")
	params.Set("client_id", c.appID)
	params.Set("client_secret", c.appSecret)
	params.Set("fb_exchange_token", shortLived)

	var token Token
	if err := c.get(ctx, "/oauth/access_token", params, &token); err != nil {
		return nil, fmt.Errorf("failed to exchange long-lived token: %w", err)
	}
	return &token, nil
}

// Page is a Facebook page the user manages
type Page struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AccessToken string `json:"access_token"`
}

// ListPages returns the pages the token's user manages
func (c *Client) ListPages(ctx context.Context, accessToken string) ([]Page, error) {
	params := url.Values{}
	params.Set("access_token", accessToken)
	params.Set("fields", "id,name,access_token")

	var resp struct {
		Data []Page `json:"data"`
	}
	if err := c.get(ctx, "/me/accounts", params, &resp); err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}
	return resp.Data, nil
}

// BusinessAccount is the Instagram Business account linked to a page
type BusinessAccount struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// GetBusinessAccount returns the Instagram Business account linked to a page,
// or nil if the page has none
func (c *Client) GetBusinessAccount(ctx context.Context, pageID, accessToken string) (*BusinessAccount, error) {
	params := url.Values{}
	params.Set("access_token", accessToken)
	params.Set("fields", "instagram_business_account{id,username}")

	var resp struct {
		BusinessAccount *BusinessAccount `json:"instagram_business_account"`
	}
	if err := c.get(ctx, "/"+pageID, params, &resp); err != nil {
		return nil, fmt.Errorf("failed to get business account for page %s: %w", pageID, err)
	}
	return resp.BusinessAccount, nil
}

// Media is a single Instagram post
type Media struct {
	ID        string    `json:"id"`
	Caption   string    `json:"caption"`
	MediaType string    `json:"media_type"`
	Permalink string    `json:"permalink"`
	Timestamp time.Time `json:"timestamp"`
}

// ListMedia returns recent media for an Instagram Business account
func (c *Client) ListMedia(ctx context.Context, accountID, accessToken string) ([]Media, error) {
	params := url.Values{}
	params.Set("access_token", accessToken)
	params.Set("fields", "id,caption,media_type,permalink,timestamp")

	var resp struct {
		Data []Media `json:"data"`
	}
	if err := c.get(ctx, "/"+accountID+"/media", params, &resp); err != nil {
		return nil, fmt.Errorf("failed to list media for %s: %w", accountID, err)
	}
	return resp.Data, nil
}

// Comment is a single comment on a media item
type Comment struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Username  string    `json:"username"`
	Timestamp time.Time `json:"timestamp"`
}

// ListComments returns the comments on a media item
func (c *Client) ListComments(ctx context.Context, mediaID, accessToken string) ([]Comment, error) {
	params := url.Values{}
	params.Set("access_token", accessToken)
	params.Set("fields", "id,text,username,timestamp")

	var resp struct {
		Data []Comment `json:"data"`
	}
	if err := c.get(ctx, "/"+mediaID+"/comments", params, &resp); err != nil {
		return nil, fmt.Errorf("failed to list comments for %s: %w", mediaID, err)
	}
	return resp.Data, nil
}

// ReplyToComment publishes a reply under a comment and returns the new
// comment's id
func (c *Client) ReplyToComment(ctx context.Context, commentID, accessToken, message string) (string, error) {
	form := url.Values{}
	form.Set("access_token", accessToken)
	form.Set("message", message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/"+commentID+"/replies", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var resp struct {
		ID string `json:"id"`
	}
	if err := c.do(req, &resp); err != nil {
		return "", fmt.Errorf("failed to publish reply to %s: %w", commentID, err)
	}
	return resp.ID, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var envelope errorEnvelope
		if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil {
			return envelope.Error
		}
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
