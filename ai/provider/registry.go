package provider

import (
	"fmt"
	"sort"
)

// New selects an adapter implementation by provider name. The descriptor is
// fixed per name; the config is captured immutably by the adapter.
func New(name string, cfg Config) (Adapter, error) {
	switch name {
	case "anthropic", "claude":
		return newAnthropic(cfg), nil
	case "cohere":
		return newCohere(cfg), nil
	case "vertex":
		return newVertex(cfg), nil
	case "bedrock":
		return newBedrock(cfg), nil
	}
	for _, desc := range openAIFamily {
		if desc.Name == name {
			return newOpenAICompatible(desc, cfg), nil
		}
	}
	return nil, fmt.Errorf("unknown provider %q (supported: %v)", name, Names())
}

// Names lists every supported provider name, sorted.
func Names() []string {
	names := []string{"anthropic", "cohere", "vertex", "bedrock"}
	for _, desc := range openAIFamily {
		names = append(names, desc.Name)
	}
	sort.Strings(names)
	return names
}
