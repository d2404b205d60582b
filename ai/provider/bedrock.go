package provider

import (
	"encoding/json"
	"strings"

	"github.com/tagwise/tagwise/ai/prompt"
)

var bedrockDescriptor = Descriptor{
	Name:        "bedrock",
	RequiresKey: true,
	ErrorPaths:  []string{"message", "errorMessage", "error.message"},
}

// bedrockAdapter speaks the Bedrock invoke-model API. The request and
// response bodies depend on the model family: Claude models take a raw
// prompt string with Human/Assistant delimiters, Titan models take
// inputText plus a textGenerationConfig block.
type bedrockAdapter struct {
	cfg Config
}

func newBedrock(cfg Config) Adapter {
	return &bedrockAdapter{cfg: cfg}
}

type bedrockClaudeRequest struct {
	Prompt            string  `json:"prompt"`
	MaxTokensToSample int     `json:"max_tokens_to_sample"`
	Temperature       float32 `json:"temperature,omitempty"`
}

type bedrockClaudeResponse struct {
	Completion string `json:"completion"`
}

type bedrockTitanRequest struct {
	InputText            string                    `json:"inputText"`
	TextGenerationConfig bedrockTitanGenerationCfg `json:"textGenerationConfig"`
}

type bedrockTitanGenerationCfg struct {
	MaxTokenCount int     `json:"maxTokenCount"`
	Temperature   float32 `json:"temperature"`
}

type bedrockTitanResponse struct {
	Results []struct {
		OutputText string `json:"outputText"`
	} `json:"results"`
}

func (a *bedrockAdapter) Name() string { return bedrockDescriptor.Name }

func (a *bedrockAdapter) Endpoint() string { return a.cfg.Endpoint }

func (a *bedrockAdapter) isClaudeFamily() bool {
	model := strings.ToLower(a.cfg.Model)
	return strings.Contains(model, "claude") || strings.HasPrefix(model, "anthropic.")
}

func (a *bedrockAdapter) FormatRequest(p string) ([]byte, error) {
	maxTokens := a.cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	if a.isClaudeFamily() {
		req := bedrockClaudeRequest{
			Prompt:            "\n\nHuman: " + prompt.TagSystemPrompt + "\n\n" + p + "\n\nAssistant:",
			MaxTokensToSample: maxTokens,
			Temperature:       a.cfg.Temperature,
		}
		return json.Marshal(req)
	}
	req := bedrockTitanRequest{
		InputText: prompt.TagSystemPrompt + "\n\n" + p,
		TextGenerationConfig: bedrockTitanGenerationCfg{
			MaxTokenCount: maxTokens,
			Temperature:   a.cfg.Temperature,
		},
	}
	return json.Marshal(req)
}

func (a *bedrockAdapter) Headers() (map[string]string, error) {
	if a.cfg.APIKey == "" {
		return nil, &ConfigError{Provider: bedrockDescriptor.Name, Field: "API key"}
	}
	return map[string]string{
		"Content-Type":  "application/json",
		"Accept":        "application/json",
		"Authorization": "Bearer " + a.cfg.APIKey,
	}, nil
}

func (a *bedrockAdapter) ValidateConfig() error {
	if a.cfg.APIKey == "" {
		return &ConfigError{Provider: bedrockDescriptor.Name, Field: "API key"}
	}
	if a.cfg.Endpoint == "" {
		return &ConfigError{Provider: bedrockDescriptor.Name, Field: "endpoint"}
	}
	if a.cfg.Model == "" {
		return &ConfigError{Provider: bedrockDescriptor.Name, Field: "model name"}
	}
	return nil
}

func (a *bedrockAdapter) ParseResponse(raw []byte) (*Response, error) {
	if a.isClaudeFamily() {
		var resp bedrockClaudeResponse
		if err := json.Unmarshal(raw, &resp); err != nil {
			return nil, &FormatError{Provider: bedrockDescriptor.Name, Field: "completion"}
		}
		if resp.Completion == "" {
			return nil, &FormatError{Provider: bedrockDescriptor.Name, Field: "completion"}
		}
		return newResponse(resp.Completion), nil
	}
	var resp bedrockTitanResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &FormatError{Provider: bedrockDescriptor.Name, Field: "results"}
	}
	if len(resp.Results) == 0 {
		return nil, &FormatError{Provider: bedrockDescriptor.Name, Field: "results[0]"}
	}
	if resp.Results[0].OutputText == "" {
		return nil, &FormatError{Provider: bedrockDescriptor.Name, Field: "results[0].outputText"}
	}
	return newResponse(resp.Results[0].OutputText), nil
}

func (a *bedrockAdapter) ExtractError(raw []byte, err error) string {
	return extractErrorMessage(raw, bedrockDescriptor.ErrorPaths, err)
}
