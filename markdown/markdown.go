// Package markdown renders extracted story HTML as Markdown.
package markdown

import (
	"fmt"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
)

// Renderer converts HTML fragments to Markdown. One renderer serves a whole
// transform run.
type Renderer struct {
	converter *md.Converter
}

// NewRenderer returns a renderer with CommonMark rules. Options are pinned
// so output stays stable across converter upgrades.
func NewRenderer() *Renderer {
	return &Renderer{converter: md.NewConverter("", true, &md.Options{
		HeadingStyle:    "atx",
		HorizontalRule:  "---",
		EmDelimiter:     "*",
		StrongDelimiter: "**",
	})}
}

// Render converts an HTML fragment to Markdown.
func (r *Renderer) Render(html string) (string, error) {
	out, err := r.converter.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("converting HTML to markdown: %w", err)
	}
	return out, nil
}

var tildeFence = regexp.MustCompile(`^\s*~{3,}\s*$`)

// ReplaceTildeFences rewrites lines made of three or more tildes with the
// given separator. Authors use tilde runs as scene breaks, but a bare tilde
// run is a fenced code block in Markdown and swallows everything after it.
func ReplaceTildeFences(text, separator string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if tildeFence.MatchString(line) {
			lines[i] = separator
		}
	}
	return strings.Join(lines, "\n")
}
