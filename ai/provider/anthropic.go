package provider

import (
	"encoding/json"
	"strings"

	"github.com/tagwise/tagwise/ai/prompt"
)

// anthropicVersion pins the messages API revision sent with every request.
const anthropicVersion = "2023-06-01"

var anthropicDescriptor = Descriptor{
	Name:           "anthropic",
	DefaultBaseURL: "https://api.anthropic.com/v1",
	DefaultModel:   "claude-3-5-haiku-20241022",
	ChatPath:       "/messages",
	RequiresKey:    true,
	ErrorPaths:     []string{"error.message", "error", "message"},
}

// anthropicAdapter speaks the Anthropic messages API. The system prompt is
// a top-level field rather than a message, and auth is x-api-key.
type anthropicAdapter struct {
	cfg Config
}

func newAnthropic(cfg Config) Adapter {
	return &anthropicAdapter{cfg: cfg}
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (a *anthropicAdapter) Name() string { return anthropicDescriptor.Name }

func (a *anthropicAdapter) Endpoint() string {
	base := a.cfg.Endpoint
	if base == "" {
		base = anthropicDescriptor.DefaultBaseURL
	}
	return strings.TrimSuffix(base, "/") + anthropicDescriptor.ChatPath
}

func (a *anthropicAdapter) model() string {
	if a.cfg.Model != "" {
		return a.cfg.Model
	}
	return anthropicDescriptor.DefaultModel
}

func (a *anthropicAdapter) FormatRequest(p string) ([]byte, error) {
	maxTokens := a.cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	req := anthropicRequest{
		Model:     a.model(),
		MaxTokens: maxTokens,
		System:    prompt.TagSystemPrompt,
		Messages: []anthropicMessage{
			{Role: "user", Content: p},
		},
	}
	return json.Marshal(req)
}

func (a *anthropicAdapter) Headers() (map[string]string, error) {
	if a.cfg.APIKey == "" {
		return nil, &ConfigError{Provider: anthropicDescriptor.Name, Field: "API key"}
	}
	return map[string]string{
		"Content-Type":      "application/json",
		"x-api-key":         a.cfg.APIKey,
		"anthropic-version": anthropicVersion,
	}, nil
}

func (a *anthropicAdapter) ValidateConfig() error {
	if a.cfg.APIKey == "" {
		return &ConfigError{Provider: anthropicDescriptor.Name, Field: "API key"}
	}
	if a.model() == "" {
		return &ConfigError{Provider: anthropicDescriptor.Name, Field: "model name"}
	}
	return nil
}

func (a *anthropicAdapter) ParseResponse(raw []byte) (*Response, error) {
	var resp anthropicResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &FormatError{Provider: anthropicDescriptor.Name, Field: "content"}
	}
	if len(resp.Content) == 0 {
		return nil, &FormatError{Provider: anthropicDescriptor.Name, Field: "content[0]"}
	}
	text := resp.Content[0].Text
	if text == "" {
		return nil, &FormatError{Provider: anthropicDescriptor.Name, Field: "content[0].text"}
	}
	return newResponse(text), nil
}

func (a *anthropicAdapter) ExtractError(raw []byte, err error) string {
	return extractErrorMessage(raw, anthropicDescriptor.ErrorPaths, err)
}
