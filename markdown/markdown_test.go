package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRenderBasics verifies common HTML constructs come out as Markdown.
func TestRenderBasics(t *testing.T) {
	r := NewRenderer()

	out, err := r.Render(`<p>First paragraph.</p><p>Second with <em>emphasis</em>.</p>`)
	require.NoError(t, err)
	assert.Contains(t, out, "First paragraph.")
	assert.Contains(t, out, "*emphasis*")

	out, err = r.Render(`<h2>A Heading</h2>`)
	require.NoError(t, err)
	assert.Contains(t, out, "## A Heading")
}

// TestReplaceTildeFences verifies tilde scene breaks are rewritten while
// tildes inside prose are left alone.
func TestReplaceTildeFences(t *testing.T) {
	in := "before\n~~~~\nafter\n  ~~~  \nabout ~3 things\n~~"
	out := ReplaceTildeFences(in, "***")
	assert.Equal(t, "before\n***\nafter\n***\nabout ~3 things\n~~", out)
}
