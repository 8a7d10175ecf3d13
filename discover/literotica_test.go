package discover

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLiteroticaSeries verifies the chapter list and metadata come from the
// embedded state blob.
func TestLiteroticaSeries(t *testing.T) {
	server := serveHTML(t, `
	<html><body>
	  <div state='{\"series\":{\"works\":[{\"url\":\"example-ch-01\"},{\"url\":\"example-ch-02\"}],\"data\":{\"title\":\"Example Series\",\"user\":{\"username\":\"serialist\"}}}}'></div>
	</body></html>`)

	result, err := (&Literotica{}).Discover(context.Background(), testClient(), server.URL+"/series/se/12345")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://www.literotica.com/s/example-ch-01",
		"https://www.literotica.com/s/example-ch-02",
	}, result.URLs)
	assert.Equal(t, "Example Series", result.Patch.Title)
	assert.Equal(t, "serialist", result.Patch.Author)
}

// TestLiteroticaSeriesWithoutWorks verifies the generic fallback when the
// state blob is absent.
func TestLiteroticaSeriesWithoutWorks(t *testing.T) {
	server := serveHTML(t, `
	<html><body>
	  <a href="chapter-1">One</a>
	</body></html>`)

	result, err := (&Literotica{}).Discover(context.Background(), testClient(), server.URL+"/series/se/12345")
	require.NoError(t, err)
	assert.Equal(t, []string{server.URL + "/series/se/chapter-1"}, result.URLs)
}

// TestLiteroticaSingleStory verifies the canonical URL (page parameter
// stripped) plus ld+json metadata and the series steering notice.
func TestLiteroticaSingleStory(t *testing.T) {
	server := serveHTML(t, `
	<html><head>
	  <script type="application/ld+json">
	    {"@type": "Article", "headline": "Example Chapter",
	     "author": {"name": "chapterist"},
	     "isPartOf": {"url": "https://www.literotica.com/series/se/99", "name": "Example Series"}}
	  </script>
	</head><body></body></html>`)

	result, err := (&Literotica{}).Discover(context.Background(), testClient(), server.URL+"/s/example-chapter?page=3")
	require.NoError(t, err)
	assert.Equal(t, []string{server.URL + "/s/example-chapter"}, result.URLs)
	assert.Equal(t, "Example Chapter", result.Patch.Title)
	assert.Equal(t, "chapterist", result.Patch.Author)
	require.Len(t, result.Notices, 1)
	assert.Contains(t, result.Notices[0], "belongs to a series")
	assert.Contains(t, result.Notices[0], "https://www.literotica.com/series/se/99")
}

// TestLiteroticaCanonicalURL verifies only the page parameter is removed.
func TestLiteroticaCanonicalURL(t *testing.T) {
	assert.Equal(t,
		"https://www.literotica.com/s/example",
		LiteroticaCanonicalURL("https://www.literotica.com/s/example?page=2"))
	assert.Equal(t,
		"https://www.literotica.com/s/example?foo=1",
		LiteroticaCanonicalURL("https://www.literotica.com/s/example?foo=1&page=2"))
}
