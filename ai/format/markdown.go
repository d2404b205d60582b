// Package format prepares note content for prompting. Markdown syntax is
// noise to a tagging model and inflates token counts, so notes are reduced
// to plain text before being embedded in a prompt.
package format

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// PlainText renders markdown source down to its visible text. Fenced and
// indented code blocks are dropped entirely; block boundaries become
// newlines.
func PlainText(source string) string {
	src := []byte(source)
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	var b strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock:
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			if entering {
				b.Write(node.Segment.Value(src))
				if node.SoftLineBreak() || node.HardLineBreak() {
					b.WriteByte('\n')
				}
			}
		case *ast.Paragraph, *ast.Heading, *ast.ListItem:
			if !entering {
				b.WriteByte('\n')
			}
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(b.String())
}

// Truncate caps content at max runes, appending an ellipsis when cut. Long
// notes blow provider token limits; the head of a note carries most of its
// topical signal.
func Truncate(content string, max int) string {
	if max <= 0 {
		return content
	}
	runes := []rune(content)
	if len(runes) <= max {
		return content
	}
	return string(runes[:max]) + "…"
}
