// Package prompt builds the instructions sent to LLM providers for tag
// generation. The builder is a pure function of its inputs so the same
// request always produces the same prompt regardless of provider.
package prompt

import (
	"fmt"
	"strings"
)

// Mode selects the tagging policy.
type Mode string

const (
	// ModeGenerateNew asks the model to generate fresh tags from content.
	ModeGenerateNew Mode = "generate-new"
	// ModePredefined would restrict the model to a candidate list.
	// Not active; kept so configuration surfaces can name it.
	ModePredefined Mode = "predefined"
	// ModeHybrid would combine matching and generation.
	// Not active; kept so configuration surfaces can name it.
	ModeHybrid Mode = "hybrid"
)

// ErrUnsupportedMode is returned for modes that are declared but not active.
type ErrUnsupportedMode struct {
	Mode Mode
}

func (e *ErrUnsupportedMode) Error() string {
	return fmt.Sprintf("tagging mode %q is not supported", string(e.Mode))
}

// DefaultLanguage means "answer in whatever language the content uses".
const DefaultLanguage = "default"

// TagSystemPrompt is the system message shared by every provider adapter.
const TagSystemPrompt = `You are a professional document tagging assistant. You analyze note content and produce concise, relevant tags that capture its key topics. You always respond with a single JSON object of the form {"matchedTags": [], "newTags": []} and nothing else.`

// Build constructs the user prompt for one tagging request.
//
// Only ModeGenerateNew is live. candidateTags is included as context so the
// model can reuse vocabulary the vault already has, but the model is free to
// generate new tags. maxTags is advisory; nothing downstream enforces it.
func Build(content string, candidateTags []string, mode Mode, maxTags int, language string) (string, error) {
	switch mode {
	case ModeGenerateNew:
	case ModePredefined, ModeHybrid:
		return "", &ErrUnsupportedMode{Mode: mode}
	default:
		return "", &ErrUnsupportedMode{Mode: mode}
	}

	if maxTags <= 0 {
		maxTags = 10
	}

	var b strings.Builder

	if language != "" && language != DefaultLanguage {
		fmt.Fprintf(&b, "Regardless of the language the note is written in, translate the concepts and output every tag in %s only.\n\n", language)
	}

	fmt.Fprintf(&b, "Analyze the following note and generate up to %d tags that describe its key topics.\n", maxTags)
	b.WriteString("Rules:\n")
	b.WriteString("- Return tags as a plain comma-separated list inside the JSON arrays.\n")
	b.WriteString("- Do not prefix tags with '#'.\n")
	fmt.Fprintf(&b, "- Return at most %d tags.\n", maxTags)

	if len(candidateTags) > 0 {
		fmt.Fprintf(&b, "\nTags already used in this vault (reuse them when they fit, as matchedTags): %s\n", strings.Join(candidateTags, ", "))
	}

	b.WriteString("\nNote content:\n")
	b.WriteString(content)

	return b.String(), nil
}
