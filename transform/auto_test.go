package transform

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

// TestContentRootPrefersMain verifies main beats article even when the
// article holds more text.
func TestContentRootPrefersMain(t *testing.T) {
	doc := parseDoc(t, `<html><body>
		<article>a much longer article element with plenty of text inside it</article>
		<main>short</main>
	</body></html>`)

	root := ExtractContentRoot(doc)
	assert.Equal(t, "short", strings.TrimSpace(root.Text()))
}

// TestContentRootLargestTextWins verifies ties within a step go to the
// candidate with the most visible text.
func TestContentRootLargestTextWins(t *testing.T) {
	doc := parseDoc(t, `<html><body>
		<article>tiny</article>
		<article>this article carries the actual story text</article>
	</body></html>`)

	root := ExtractContentRoot(doc)
	assert.Contains(t, root.Text(), "actual story text")
}

// TestContentRootSkipsEmptyCandidates verifies a text-free main falls
// through to the next step.
func TestContentRootSkipsEmptyCandidates(t *testing.T) {
	doc := parseDoc(t, `<html><body>
		<main><img src="banner.png"></main>
		<article>the story lives here</article>
	</body></html>`)

	root := ExtractContentRoot(doc)
	assert.Contains(t, root.Text(), "story lives here")
}

func TestContentRootRoleMain(t *testing.T) {
	doc := parseDoc(t, `<html><body>
		<div role="MAIN">role marked content</div>
		<article>article content</article>
	</body></html>`)

	root := ExtractContentRoot(doc)
	assert.Contains(t, root.Text(), "role marked content")
}

func TestContentRootArticleLikeItemtype(t *testing.T) {
	doc := parseDoc(t, `<html><body>
		<div itemtype="https://schema.org/BlogPosting">posted story text</div>
		<div>sidebar stuff</div>
	</body></html>`)

	root := ExtractContentRoot(doc)
	assert.Contains(t, root.Text(), "posted story text")
}

// TestContentRootStructuralHeuristic verifies the chrome-stripped fallback
// picks the deepest element holding a heading and text.
func TestContentRootStructuralHeuristic(t *testing.T) {
	doc := parseDoc(t, `<html><body>
		<nav><h1>Site Name</h1></nav>
		<div class="wrap">
			<div class="story"><h2>Chapter</h2><p>the chapter text</p></div>
		</div>
		<footer><h2>Links</h2>footer text</footer>
	</body></html>`)

	root := ExtractContentRoot(doc)
	text := root.Text()
	assert.Contains(t, text, "the chapter text")
	assert.NotContains(t, text, "footer text")
	assert.NotContains(t, text, "Site Name")
}

// TestContentRootBodyFallback verifies an unstructured page converts whole.
func TestContentRootBodyFallback(t *testing.T) {
	doc := parseDoc(t, `<html><body><p>just paragraphs</p></body></html>`)

	root := ExtractContentRoot(doc)
	assert.Contains(t, root.Text(), "just paragraphs")
}

func TestAutoExtract(t *testing.T) {
	doc, err := NewAuto().Extract([]byte(`<html><body>
		<main><h2>Title</h2><p>body text</p></main>
	</body></html>`))
	require.NoError(t, err)
	assert.Empty(t, doc.Heading)
	assert.Contains(t, doc.Body, "body text")
	assert.Contains(t, doc.Body, "## Title")
}
