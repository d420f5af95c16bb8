package replies

import (
	"bytes"
	"fmt"
	"os"
	"text/template"

	"gopkg.in/yaml.v3"
)

// PromptConfig holds the templates sent to the language model. Operators can
// override the defaults with a YAML file to adjust brand voice or language.
type PromptConfig struct {
	System    string `yaml:"system"`
	User      string `yaml:"user"`
	MaxLength int    `yaml:"max_length"`
}

const (
	defaultSystemPrompt = `You are a social media manager replying to Instagram comments on behalf of a business.
Write a short, friendly reply in the same language as the comment.
Do not promise anything the business has not stated. Never mention that you are an AI.`

	defaultUserPrompt = `Post caption: {{.Caption}}

Comment from @{{.Username}}: {{.Comment}}

Write a reply.`
)

// DefaultPrompts returns the built-in prompt configuration
func DefaultPrompts() PromptConfig {
	return PromptConfig{
		System:    defaultSystemPrompt,
		User:      defaultUserPrompt,
		MaxLength: 280,
	}
}

// LoadPrompts reads a YAML prompt file, falling back to defaults for any
// field left empty
func LoadPrompts(path string) (PromptConfig, error) {
	cfg := DefaultPrompts()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read prompts file: %w", err)
	}

	var loaded PromptConfig
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return cfg, fmt.Errorf("failed to parse prompts file: %w", err)
	}

	if loaded.System != "" {
		cfg.System = loaded.System
	}
	if loaded.User != "" {
		cfg.User = loaded.User
	}
	if loaded.MaxLength > 0 {
		cfg.MaxLength = loaded.MaxLength
	}
	return cfg, nil
}

// promptInput is the data available to the user prompt template
type promptInput struct {
	Caption  string
	Username string
	Comment  string
}

// renderUserPrompt executes the user template against one comment
func (p PromptConfig) renderUserPrompt(in promptInput) (string, error) {
	tmpl, err := template.New("user").Parse(p.User)
	if err != nil {
		return "", fmt.Errorf("failed to parse user prompt template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, in); err != nil {
		return "", fmt.Errorf("failed to render user prompt: %w", err)
	}
	return buf.String(), nil
}
