package discover

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDeviantArtSingleDeviation verifies the canonical URL and the title
// split on the og:title convention.
func TestDeviantArtSingleDeviation(t *testing.T) {
	server := serveHTML(t, `
	<html><head>
	  <meta property="og:title" content="Step by Step by testbytest on DeviantArt">
	  <meta property="og:url" content="https://www.deviantart.com/testbytest/art/Step-by-Step-123">
	</head><body>
	  <section><div><h2>Literature Text</h2><div><p>Story text.</p></div></div></section>
	</body></html>`)

	result, err := (&DeviantArt{}).Discover(context.Background(), testClient(),
		server.URL+"/testbytest/art/Step-by-Step-123")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://www.deviantart.com/testbytest/art/Step-by-Step-123"}, result.URLs)
	assert.Equal(t, "Step by Step", result.Patch.Title)
	assert.Equal(t, "testbytest", result.Patch.Author)
	assert.Empty(t, result.Notices)
}

// TestDeviantArtNonLiterature verifies image deviations produce no URLs and
// a notice.
func TestDeviantArtNonLiterature(t *testing.T) {
	server := serveHTML(t, `
	<html><head>
	  <meta property="og:title" content="Not Literature by testbytest on DeviantArt">
	</head><body>
	  <main><div data-hook="deviation_body"><p>Image only</p></div></main>
	</body></html>`)

	result, err := (&DeviantArt{}).Discover(context.Background(), testClient(),
		server.URL+"/testbytest/art/Not-Literature-999")
	require.NoError(t, err)
	assert.Empty(t, result.URLs)
	require.Len(t, result.Notices, 1)
	assert.Contains(t, result.Notices[0], "Literature Deviation")
}

// TestDeviantArtGallery verifies the page walk: same-owner art links with
// query and fragment stripped, de-duplicated, following rel=next, with the
// gallery folder name as title.
func TestDeviantArtGallery(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/example_user/gallery/123/example-story", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			w.Write([]byte(`
			<html><body>
			  <a href="/example_user/art/Chapter-Three-789">Three</a>
			</body></html>`))
			return
		}
		w.Write([]byte(`
		<html><head>
		  <link rel="next" href="` + server.URL + `/example_user/gallery/123/example-story?page=2">
		  <script>
		    window.__INITIAL_STATE__ = JSON.parse("{\"gallectionSection\":{\"selectedFolderId\":123},\"@@entities\":{\"galleryFolder\":{\"123\":{\"name\":\"Example Story Title\"}}}}");
		  </script>
		</head><body>
		  <a href="/example_user/art/Chapter-One-123">One</a>
		  <a href="/example_user/art/Chapter-One-123#comments">One comments</a>
		  <a href="/example_user/art/Chapter-Two-456?view=1">Two</a>
		  <a href="/other/art/Other-999">Other owner</a>
		</body></html>`))
	})

	result, err := (&DeviantArt{}).Discover(context.Background(), testClient(),
		server.URL+"/example_user/gallery/123/example-story")
	require.NoError(t, err)
	assert.Equal(t, []string{
		server.URL + "/example_user/art/Chapter-One-123",
		server.URL + "/example_user/art/Chapter-Two-456",
		server.URL + "/example_user/art/Chapter-Three-789",
	}, result.URLs)
	assert.Equal(t, "Example Story Title", result.Patch.Title)
}

// TestDeviantArtGalleryStopsAtTotalPages verifies pageInfo overrides a
// dangling rel=next link.
func TestDeviantArtGalleryStopsAtTotalPages(t *testing.T) {
	var calls []string
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/example_user/gallery/1", func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.URL.String())
		switch r.URL.Query().Get("page") {
		case "2":
			w.Write([]byte(`
			<html><head>
			  <link rel="next" href="` + server.URL + `/example_user/gallery/1?page=3">
			  <script>window.__INITIAL_STATE__ = JSON.parse("{\"pageInfo\":{\"currentPage\":2,\"totalPages\":2}}");</script>
			</head><body>
			  <a href="/example_user/art/Chapter-Two-456">Two</a>
			</body></html>`))
		case "3":
			w.Write([]byte(`<html><body><a href="/example_user/art/Chapter-Three-789">Three</a></body></html>`))
		default:
			w.Write([]byte(`
			<html><head>
			  <link rel="next" href="` + server.URL + `/example_user/gallery/1?page=2">
			  <script>window.__INITIAL_STATE__ = JSON.parse("{\"pageInfo\":{\"currentPage\":1,\"totalPages\":2}}");</script>
			</head><body>
			  <a href="/example_user/art/Chapter-One-123">One</a>
			</body></html>`))
		}
	})

	result, err := (&DeviantArt{}).Discover(context.Background(), testClient(),
		server.URL+"/example_user/gallery/1")
	require.NoError(t, err)
	assert.Equal(t, []string{
		server.URL + "/example_user/art/Chapter-One-123",
		server.URL + "/example_user/art/Chapter-Two-456",
	}, result.URLs)
	for _, call := range calls {
		assert.NotContains(t, call, "page=3")
	}
}
