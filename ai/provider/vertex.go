package provider

import (
	"encoding/json"

	"github.com/tagwise/tagwise/ai/prompt"
)

var vertexDescriptor = Descriptor{
	Name:        "vertex",
	RequiresKey: true,
	ErrorPaths:  []string{"error.message", "error.status", "error"},
}

// vertexAdapter speaks the Vertex AI predict API for chat models. The
// endpoint already encodes project, region, and model, so the adapter POSTs
// to it verbatim; there is no default base URL to fall back to.
type vertexAdapter struct {
	cfg Config
}

func newVertex(cfg Config) Adapter {
	return &vertexAdapter{cfg: cfg}
}

type vertexRequest struct {
	Instances  []vertexInstance `json:"instances"`
	Parameters vertexParameters `json:"parameters"`
}

type vertexInstance struct {
	Context  string          `json:"context,omitempty"`
	Messages []vertexMessage `json:"messages"`
}

type vertexMessage struct {
	Author  string `json:"author"`
	Content string `json:"content"`
}

type vertexParameters struct {
	Temperature     float32 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type vertexResponse struct {
	Predictions []struct {
		Candidates []struct {
			Content string `json:"content"`
		} `json:"candidates"`
	} `json:"predictions"`
}

func (a *vertexAdapter) Name() string { return vertexDescriptor.Name }

func (a *vertexAdapter) Endpoint() string { return a.cfg.Endpoint }

func (a *vertexAdapter) FormatRequest(p string) ([]byte, error) {
	req := vertexRequest{
		Instances: []vertexInstance{
			{
				Context:  prompt.TagSystemPrompt,
				Messages: []vertexMessage{{Author: "user", Content: p}},
			},
		},
		Parameters: vertexParameters{
			Temperature:     a.cfg.Temperature,
			MaxOutputTokens: a.cfg.MaxTokens,
		},
	}
	return json.Marshal(req)
}

func (a *vertexAdapter) Headers() (map[string]string, error) {
	if a.cfg.APIKey == "" {
		return nil, &ConfigError{Provider: vertexDescriptor.Name, Field: "API key"}
	}
	return map[string]string{
		"Content-Type":  "application/json",
		"Authorization": "Bearer " + a.cfg.APIKey,
	}, nil
}

func (a *vertexAdapter) ValidateConfig() error {
	if a.cfg.APIKey == "" {
		return &ConfigError{Provider: vertexDescriptor.Name, Field: "API key"}
	}
	if a.cfg.Endpoint == "" {
		return &ConfigError{Provider: vertexDescriptor.Name, Field: "endpoint"}
	}
	return nil
}

func (a *vertexAdapter) ParseResponse(raw []byte) (*Response, error) {
	var resp vertexResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &FormatError{Provider: vertexDescriptor.Name, Field: "predictions"}
	}
	if len(resp.Predictions) == 0 {
		return nil, &FormatError{Provider: vertexDescriptor.Name, Field: "predictions[0]"}
	}
	if len(resp.Predictions[0].Candidates) == 0 {
		return nil, &FormatError{Provider: vertexDescriptor.Name, Field: "predictions[0].candidates[0]"}
	}
	text := resp.Predictions[0].Candidates[0].Content
	if text == "" {
		return nil, &FormatError{Provider: vertexDescriptor.Name, Field: "predictions[0].candidates[0].content"}
	}
	return newResponse(text), nil
}

func (a *vertexAdapter) ExtractError(raw []byte, err error) string {
	return extractErrorMessage(raw, vertexDescriptor.ErrorPaths, err)
}
