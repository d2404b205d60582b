package provider

import (
	"encoding/json"
	"fmt"
	"strings"
)

// genericErrorMessage is returned when no candidate error path matches.
const genericErrorMessage = "Unknown error occurred"

// ConfigError reports a required configuration field that is missing.
// It is surfaced before any network call and is never retried.
type ConfigError struct {
	Provider string
	Field    string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: missing required configuration: %s", e.Provider, e.Field)
}

// NetworkError reports an HTTP-level failure (non-2xx or transport error).
type NetworkError struct {
	Provider string
	Status   string
	Message  string
}

func (e *NetworkError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: request failed (%s): %s", e.Provider, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: request failed (%s)", e.Provider, e.Status)
}

// FormatError reports a response shape the adapter could not navigate.
// Field names the JSON path that was expected but absent.
type FormatError struct {
	Provider string
	Field    string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: unexpected response format: missing %s", e.Provider, e.Field)
}

// extractErrorMessage walks candidate dotted paths (e.g. "error.message")
// through the raw JSON body and returns the first string found. A bare
// string at a path or an object with a "message" key both count.
func extractErrorMessage(raw []byte, paths []string, fallback error) string {
	if len(raw) > 0 {
		var body map[string]any
		if err := json.Unmarshal(raw, &body); err == nil {
			for _, path := range paths {
				if msg, ok := lookupPath(body, path); ok {
					return msg
				}
			}
		}
	}
	if fallback != nil {
		return fallback.Error()
	}
	return genericErrorMessage
}

func lookupPath(body map[string]any, path string) (string, bool) {
	cur := any(body)
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return "", false
		}
		cur, ok = m[part]
		if !ok {
			return "", false
		}
	}
	switch v := cur.(type) {
	case string:
		if v != "" {
			return v, true
		}
	case map[string]any:
		if msg, ok := v["message"].(string); ok && msg != "" {
			return msg, true
		}
	}
	return "", false
}
