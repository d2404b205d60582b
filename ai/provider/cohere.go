package provider

import (
	"encoding/json"
	"strings"

	"github.com/tagwise/tagwise/ai/prompt"
)

var cohereDescriptor = Descriptor{
	Name:           "cohere",
	DefaultBaseURL: "https://api.cohere.ai/v1",
	DefaultModel:   "command",
	ChatPath:       "/generate",
	RequiresKey:    true,
	ErrorPaths:     []string{"message", "error.message", "error"},
}

// cohereAdapter speaks the Cohere generate API. The system prompt is folded
// into the prompt text since the generate endpoint has no message roles.
type cohereAdapter struct {
	cfg Config
}

func newCohere(cfg Config) Adapter {
	return &cohereAdapter{cfg: cfg}
}

type cohereRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float32 `json:"temperature,omitempty"`
}

type cohereResponse struct {
	Generations []struct {
		Text string `json:"text"`
	} `json:"generations"`
}

func (a *cohereAdapter) Name() string { return cohereDescriptor.Name }

func (a *cohereAdapter) Endpoint() string {
	base := a.cfg.Endpoint
	if base == "" {
		base = cohereDescriptor.DefaultBaseURL
	}
	return strings.TrimSuffix(base, "/") + cohereDescriptor.ChatPath
}

func (a *cohereAdapter) model() string {
	if a.cfg.Model != "" {
		return a.cfg.Model
	}
	return cohereDescriptor.DefaultModel
}

func (a *cohereAdapter) FormatRequest(p string) ([]byte, error) {
	req := cohereRequest{
		Model:       a.model(),
		Prompt:      prompt.TagSystemPrompt + "\n\n" + p,
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: a.cfg.Temperature,
	}
	return json.Marshal(req)
}

func (a *cohereAdapter) Headers() (map[string]string, error) {
	if a.cfg.APIKey == "" {
		return nil, &ConfigError{Provider: cohereDescriptor.Name, Field: "API key"}
	}
	return map[string]string{
		"Content-Type":  "application/json",
		"Authorization": "Bearer " + a.cfg.APIKey,
	}, nil
}

func (a *cohereAdapter) ValidateConfig() error {
	if a.cfg.APIKey == "" {
		return &ConfigError{Provider: cohereDescriptor.Name, Field: "API key"}
	}
	if a.model() == "" {
		return &ConfigError{Provider: cohereDescriptor.Name, Field: "model name"}
	}
	return nil
}

func (a *cohereAdapter) ParseResponse(raw []byte) (*Response, error) {
	var resp cohereResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &FormatError{Provider: cohereDescriptor.Name, Field: "generations"}
	}
	if len(resp.Generations) == 0 {
		return nil, &FormatError{Provider: cohereDescriptor.Name, Field: "generations[0]"}
	}
	text := resp.Generations[0].Text
	if text == "" {
		return nil, &FormatError{Provider: cohereDescriptor.Name, Field: "generations[0].text"}
	}
	return newResponse(text), nil
}

func (a *cohereAdapter) ExtractError(raw []byte, err error) string {
	return extractErrorMessage(raw, cohereDescriptor.ErrorPaths, err)
}
