package provider

import (
	"encoding/json"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/tagwise/tagwise/ai/prompt"
)

// openAICompatible covers every provider that speaks the OpenAI chat
// completions protocol. The providers differ only in base URL, default
// model, and whether a key is required, all of which live in the Descriptor.
type openAICompatible struct {
	desc Descriptor
	cfg  Config
}

// openAIErrorPaths are shared by the whole compatible family.
var openAIErrorPaths = []string{"error.message", "error", "message"}

// openAIFamily enumerates the OpenAI-compatible providers. Local runtimes
// (ollama) do not require a key; everything else does.
var openAIFamily = []Descriptor{
	{Name: "openai", DefaultBaseURL: "https://api.openai.com/v1", DefaultModel: "gpt-4o-mini", ChatPath: "/chat/completions", RequiresKey: true, ErrorPaths: openAIErrorPaths},
	{Name: "deepseek", DefaultBaseURL: "https://api.deepseek.com/v1", DefaultModel: "deepseek-chat", ChatPath: "/chat/completions", RequiresKey: true, ErrorPaths: openAIErrorPaths},
	{Name: "groq", DefaultBaseURL: "https://api.groq.com/openai/v1", DefaultModel: "llama-3.1-70b-versatile", ChatPath: "/chat/completions", RequiresKey: true, ErrorPaths: openAIErrorPaths},
	{Name: "grok", DefaultBaseURL: "https://api.x.ai/v1", DefaultModel: "grok-beta", ChatPath: "/chat/completions", RequiresKey: true, ErrorPaths: openAIErrorPaths},
	{Name: "aliyun", DefaultBaseURL: "https://dashscope.aliyuncs.com/compatible-mode/v1", DefaultModel: "qwen-max-latest", ChatPath: "/chat/completions", RequiresKey: true, ErrorPaths: openAIErrorPaths},
	{Name: "requesty", DefaultBaseURL: "https://router.requesty.ai/v1", DefaultModel: "openai/gpt-4o-mini", ChatPath: "/chat/completions", RequiresKey: true, ErrorPaths: openAIErrorPaths},
	{Name: "openrouter", DefaultBaseURL: "https://openrouter.ai/api/v1", DefaultModel: "deepseek/deepseek-chat", ChatPath: "/chat/completions", RequiresKey: true, ErrorPaths: openAIErrorPaths},
	{Name: "siliconflow", DefaultBaseURL: "https://api.siliconflow.cn/v1", DefaultModel: "Qwen/Qwen2.5-72B-Instruct", ChatPath: "/chat/completions", RequiresKey: true, ErrorPaths: openAIErrorPaths},
	{Name: "zai", DefaultBaseURL: "https://open.bigmodel.cn/api/paas/v4", DefaultModel: "glm-4-flash", ChatPath: "/chat/completions", RequiresKey: true, ErrorPaths: openAIErrorPaths},
	{Name: "ollama", DefaultBaseURL: "http://localhost:11434/v1", DefaultModel: "llama3.1", ChatPath: "/chat/completions", RequiresKey: false, ErrorPaths: openAIErrorPaths},
}

func newOpenAICompatible(desc Descriptor, cfg Config) Adapter {
	return &openAICompatible{desc: desc, cfg: cfg}
}

func (a *openAICompatible) Name() string { return a.desc.Name }

func (a *openAICompatible) Endpoint() string {
	base := a.cfg.Endpoint
	if base == "" {
		base = a.desc.DefaultBaseURL
	}
	return strings.TrimSuffix(base, "/") + a.desc.ChatPath
}

func (a *openAICompatible) model() string {
	if a.cfg.Model != "" {
		return a.cfg.Model
	}
	return a.desc.DefaultModel
}

func (a *openAICompatible) FormatRequest(p string) ([]byte, error) {
	req := openai.ChatCompletionRequest{
		Model:       a.model(),
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: a.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.TagSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: p},
		},
	}
	return json.Marshal(req)
}

func (a *openAICompatible) Headers() (map[string]string, error) {
	headers := map[string]string{
		"Content-Type": "application/json",
	}
	if a.desc.RequiresKey && a.cfg.APIKey == "" {
		return nil, &ConfigError{Provider: a.desc.Name, Field: "API key"}
	}
	if a.cfg.APIKey != "" {
		headers["Authorization"] = "Bearer " + a.cfg.APIKey
	}
	return headers, nil
}

func (a *openAICompatible) ValidateConfig() error {
	if a.desc.RequiresKey && a.cfg.APIKey == "" {
		return &ConfigError{Provider: a.desc.Name, Field: "API key"}
	}
	if a.cfg.Endpoint == "" && a.desc.DefaultBaseURL == "" {
		return &ConfigError{Provider: a.desc.Name, Field: "endpoint"}
	}
	if a.model() == "" {
		return &ConfigError{Provider: a.desc.Name, Field: "model name"}
	}
	return nil
}

func (a *openAICompatible) ParseResponse(raw []byte) (*Response, error) {
	var resp openai.ChatCompletionResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &FormatError{Provider: a.desc.Name, Field: "choices"}
	}
	if len(resp.Choices) == 0 {
		return nil, &FormatError{Provider: a.desc.Name, Field: "choices[0]"}
	}
	text := resp.Choices[0].Message.Content
	if text == "" {
		return nil, &FormatError{Provider: a.desc.Name, Field: "choices[0].message.content"}
	}
	return newResponse(text), nil
}

func (a *openAICompatible) ExtractError(raw []byte, err error) string {
	return extractErrorMessage(raw, a.desc.ErrorPaths, err)
}
