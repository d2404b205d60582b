// Package provider translates the internal tagging request/response contract
// into the HTTP wire formats of concrete LLM backends. One adapter per
// provider family keeps format drift out of the orchestrator: everything
// above this package speaks prompt-in, tags-out.
package provider

import (
	"context"
	"net/http"

	"github.com/tagwise/tagwise/ai/extract"
)

// Doer executes a single HTTP request. Adapters never reach for an ambient
// client; the transport is injected so tests can run against a fake.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ServiceType distinguishes local runtimes from cloud APIs.
type ServiceType string

const (
	ServiceLocal ServiceType = "local"
	ServiceCloud ServiceType = "cloud"
)

// Config is the immutable per-adapter configuration, fixed at construction.
type Config struct {
	ServiceType ServiceType
	Endpoint    string
	APIKey      string
	Model       string
	Language    string
	MaxTokens   int
	Temperature float32
}

// Descriptor describes one provider's fixed wire characteristics. It is
// passed into the adapter constructor and never mutated afterwards.
type Descriptor struct {
	Name           string
	DefaultBaseURL string
	DefaultModel   string
	// ChatPath is appended to the base URL for chat-style APIs.
	ChatPath string
	// RequiresKey providers fail at header-construction time without a key.
	RequiresKey bool
	// ErrorPaths are the candidate JSON paths walked by ExtractError,
	// in order. The first string found wins.
	ErrorPaths []string
}

// Response is the normalized result of one adapter call.
type Response struct {
	// Text is the raw model output before extraction.
	Text                string
	MatchedExistingTags []string
	SuggestedTags       []string
	// Tags is always matched tags followed by suggested tags.
	Tags []string
	// Strategy names the extraction strategy that recovered the tags.
	Strategy string
}

// Adapter is implemented once per provider family.
type Adapter interface {
	// Name returns the provider identifier, e.g. "openai" or "bedrock".
	Name() string

	// Endpoint returns the full URL requests are POSTed to.
	Endpoint() string

	// FormatRequest builds the provider-specific JSON request body.
	FormatRequest(prompt string) ([]byte, error)

	// Headers returns the HTTP headers for a request. A provider that
	// requires an API key returns a *ConfigError here when the key is
	// absent; the check is deliberately lazy so constructing an adapter
	// for inspection never fails.
	Headers() (map[string]string, error)

	// ValidateConfig reports the first missing required field, or nil.
	ValidateConfig() error

	// ParseResponse navigates the provider-specific response JSON to the
	// generated text and runs tag extraction on it. A structural mismatch
	// is a *FormatError naming the provider and the expected field.
	ParseResponse(raw []byte) (*Response, error)

	// ExtractError walks the provider's candidate error paths in raw and
	// returns the first message found, falling back to err's text and
	// finally to a generic message.
	ExtractError(raw []byte, err error) string
}

// ConnectionResult is the outcome of a single connection probe.
type ConnectionResult struct {
	Success bool
	Error   string
}

// newResponse runs extraction over text and assembles the normalized result.
// Extraction never fails; an unparseable response degrades to zero tags.
func newResponse(text string) *Response {
	res := extract.ExtractTags(text)
	return &Response{
		Text:                text,
		MatchedExistingTags: res.MatchedExistingTags,
		SuggestedTags:       res.SuggestedTags,
		Tags:                res.Tags(),
		Strategy:            res.Strategy,
	}
}

// TestConnection sends a minimal probe through the adapter and maps the
// outcome to a ConnectionResult. Single attempt, no retry.
func TestConnection(ctx context.Context, a Adapter, doer Doer) ConnectionResult {
	client := NewClient(doer)
	if _, err := client.Send(ctx, a, "ping"); err != nil {
		return ConnectionResult{Success: false, Error: err.Error()}
	}
	return ConnectionResult{Success: true}
}
