package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAO3Extract(t *testing.T) {
	doc, err := NewAO3().Extract([]byte(`<html><body>
		<h2 class="heading">Chapter 1: The Door</h2>
		<p>It was a dark and stormy night.</p>
	</body></html>`))
	require.NoError(t, err)
	assert.Equal(t, "Chapter 1: The Door", doc.Heading)
	assert.Contains(t, doc.Body, "dark and stormy night")
}

func TestFanFictionExtract(t *testing.T) {
	doc, err := NewFanFiction().Extract([]byte(`<html><body>
		<div class="menu">navigation links</div>
		<div id="storytext"><strong>The Beginning</strong><p>Once upon a time.</p></div>
	</body></html>`))
	require.NoError(t, err)
	assert.Equal(t, "The Beginning", doc.Heading)
	assert.Contains(t, doc.Body, "Once upon a time")
	assert.NotContains(t, doc.Body, "The Beginning")
	assert.NotContains(t, doc.Body, "navigation links")
}

// TestFanFictionFallsBackToCascade verifies pages without a story block run
// the generic extraction.
func TestFanFictionFallsBackToCascade(t *testing.T) {
	doc, err := NewFanFiction().Extract([]byte(`<html><body>
		<main><p>plain page content</p></main>
	</body></html>`))
	require.NoError(t, err)
	assert.Empty(t, doc.Heading)
	assert.Contains(t, doc.Body, "plain page content")
}

func TestWattpadExtract(t *testing.T) {
	doc, err := NewWattpad().Extract([]byte(`<html><body>
		<div class="part-header"><h1>  Part One  </h1></div>
		<div id="parts-container-new">
			<div class="panel-reading"><p>First panel text.</p>
				<div class="trinityAudioPlaceholder">audio player</div></div>
			<div class="panel-reading"><p>Second panel text.</p></div>
		</div>
		<footer>site footer</footer>
	</body></html>`))
	require.NoError(t, err)
	assert.Equal(t, "Part One", doc.Heading)
	assert.Contains(t, doc.Body, "First panel text")
	assert.Contains(t, doc.Body, "Second panel text")
	assert.NotContains(t, doc.Body, "audio player")
	assert.NotContains(t, doc.Body, "site footer")
}

// TestWattpadFallsBackToCascade verifies pages without reading panels keep
// the header heading but extract generically.
func TestWattpadFallsBackToCascade(t *testing.T) {
	doc, err := NewWattpad().Extract([]byte(`<html><body>
		<div class="part-header"><h1>Part Two</h1></div>
		<main><p>unpaneled content</p></main>
	</body></html>`))
	require.NoError(t, err)
	assert.Equal(t, "Part Two", doc.Heading)
	assert.Contains(t, doc.Body, "unpaneled content")
}

// TestMCStoriesExtract verifies the archive markup rewrites: title to h1,
// trailer dropped, milestones to rules, forewords emphasized.
func TestMCStoriesExtract(t *testing.T) {
	doc, err := NewMCStories().Extract([]byte(`<html><body><article>
		<h3 class="title">Control</h3>
		<h3 class="trailer">mc mf md</h3>
		<section class="foreword">All characters are fictional.</section>
		<p>The story begins.</p>
		<span class="milestone">* * *</span>
		<p>The story continues.</p>
	</article></body></html>`))
	require.NoError(t, err)
	assert.Contains(t, doc.Body, "# Control")
	assert.NotContains(t, doc.Body, "mc mf md")
	assert.Contains(t, doc.Body, "*All characters are fictional.*")
	assert.Contains(t, doc.Body, "---")
	assert.NotContains(t, doc.Body, "* * *")
	assert.Contains(t, doc.Body, "The story continues.")
}

// TestBDSMLibraryExtract verifies preformatted text reflows into paragraphs
// under the nearest heading, with Windows-1252 bytes decoded.
func TestBDSMLibraryExtract(t *testing.T) {
	page := []byte("<html><body><h3>Chapter One</h3><pre>" +
		"It was the captain\x92s idea\nto sail at dawn.\n" +
		"\n" +
		"A blank line splits paragraphs.\n" +
		"  An indented line starts one.\n" +
		"</pre></body></html>")

	doc, err := NewBDSMLibrary().Extract(page)
	require.NoError(t, err)
	assert.Equal(t, "Chapter One", doc.Heading)
	assert.Contains(t, doc.Body, "It was the captain’s idea to sail at dawn.")
	assert.Contains(t, doc.Body, "A blank line splits paragraphs.\n\nAn indented line starts one.")
}

// TestBDSMLibraryFallsBackToCascade verifies pages without a pre block run
// the generic extraction.
func TestBDSMLibraryFallsBackToCascade(t *testing.T) {
	doc, err := NewBDSMLibrary().Extract([]byte(`<html><body>
		<main><p>regular markup</p></main>
	</body></html>`))
	require.NoError(t, err)
	assert.Empty(t, doc.Heading)
	assert.Contains(t, doc.Body, "regular markup")
}
