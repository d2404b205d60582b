package vault

import (
	"bytes"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const frontmatterDelimiter = "---"

// Note is one markdown note split into frontmatter and body.
type Note struct {
	// Path is relative to the vault root.
	Path string
	// Frontmatter holds the parsed YAML block; nil when the note has none.
	Frontmatter map[string]any
	// Body is the markdown content after the frontmatter block.
	Body string
}

// Parse splits raw note content into frontmatter and body. Content without
// a leading "---" line is all body.
func Parse(data []byte) (*Note, error) {
	text := string(data)
	if !strings.HasPrefix(text, frontmatterDelimiter+"\n") && text != frontmatterDelimiter {
		return &Note{Body: text}, nil
	}

	rest := text[len(frontmatterDelimiter)+1:]
	end := strings.Index(rest, "\n"+frontmatterDelimiter)
	if end < 0 {
		// Unterminated frontmatter block; treat the whole file as body.
		return &Note{Body: text}, nil
	}
	block := rest[:end]
	body := rest[end+len("\n"+frontmatterDelimiter):]
	body = strings.TrimPrefix(body, "\n")

	var fm map[string]any
	if err := yaml.Unmarshal([]byte(block), &fm); err != nil {
		return nil, errors.Wrap(err, "invalid frontmatter YAML")
	}
	return &Note{Frontmatter: fm, Body: body}, nil
}

// Tags returns the note's frontmatter tag list. A scalar "a, b" value and a
// YAML sequence are both accepted; anything else reads as empty.
func (n *Note) Tags() []string {
	if n.Frontmatter == nil {
		return nil
	}
	switch v := n.Frontmatter["tags"].(type) {
	case []any:
		tags := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				s = strings.TrimSpace(s)
				if s != "" {
					tags = append(tags, s)
				}
			}
		}
		return tags
	case string:
		var tags []string
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				tags = append(tags, part)
			}
		}
		return tags
	default:
		return nil
	}
}

// SetTags replaces the frontmatter tag list, creating the block if needed.
func (n *Note) SetTags(tags []string) {
	if n.Frontmatter == nil {
		n.Frontmatter = map[string]any{}
	}
	list := make([]any, len(tags))
	for i, t := range tags {
		list[i] = t
	}
	n.Frontmatter["tags"] = list
}

// Render serializes the note back to file content. Frontmatter keys are
// emitted in YAML's canonical (sorted) order.
func (n *Note) Render() ([]byte, error) {
	var buf bytes.Buffer
	if len(n.Frontmatter) > 0 {
		block, err := yaml.Marshal(n.Frontmatter)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal frontmatter")
		}
		buf.WriteString(frontmatterDelimiter)
		buf.WriteByte('\n')
		buf.Write(block)
		buf.WriteString(frontmatterDelimiter)
		buf.WriteByte('\n')
	}
	buf.WriteString(n.Body)
	return buf.Bytes(), nil
}
