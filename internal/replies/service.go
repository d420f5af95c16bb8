// Package replies drafts comment replies through an external chat-completions
// API. The model call is opaque: Socivio only shapes the prompt and stores
// the draft for human approval.
package replies

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/socivio/socivio/internal/config"
)

// Service drafts replies via the configured language-model endpoint
type Service struct {
	endpoint   string
	apiKey     string
	model      string
	prompts    PromptConfig
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewService creates a drafting service from application config
func NewService(cfg config.AIConfig, logger zerolog.Logger) (*Service, error) {
	prompts, err := LoadPrompts(cfg.PromptsPath)
	if err != nil {
		return nil, err
	}

	return &Service{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		prompts:  prompts,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}, nil
}

// SetHTTPClient sets a custom HTTP client
func (s *Service) SetHTTPClient(httpClient *http.Client) {
	s.httpClient = httpClient
}

// DraftInput carries the context the model sees for one comment
type DraftInput struct {
	PostCaption     string
	CommentUsername string
	CommentText     string
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// DraftReply asks the model for a reply to one comment. The returned text is
// trimmed and truncated to the configured maximum length
func (s *Service) DraftReply(ctx context.Context, in DraftInput) (string, error) {
	userPrompt, err := s.prompts.renderUserPrompt(promptInput{
		Caption:  in.PostCaption,
		Username: in.CommentUsername,
		Comment:  in.CommentText,
	})
	if err != nil {
		return "", err
	}

	reqBody := chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "system", Content: s.prompts.System},
			{Role: "user", Content: userPrompt},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK {
		if chatResp.Error != nil {
			return "", fmt.Errorf("model api error (status %d): %s", resp.StatusCode, chatResp.Error.Message)
		}
		return "", fmt.Errorf("model api returned status %d: %s", resp.StatusCode, string(body))
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("model returned no choices")
	}

	text := strings.TrimSpace(chatResp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("model returned an empty reply")
	}

	if s.prompts.MaxLength > 0 {
		runes := []rune(text)
		if len(runes) > s.prompts.MaxLength {
			text = string(runes[:s.prompts.MaxLength])
		}
	}

	s.logger.Debug().
		Str("username", in.CommentUsername).
		Int("reply_len", len(text)).
		Msg("Drafted reply")

	return text, nil
}
