package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zoec98/story-scraper/storydir"
	"github.com/zoec98/story-scraper/webclient"
)

func testClient() *webclient.Client {
	return webclient.New(webclient.Config{NoDelay: true})
}

// TestGenericRun verifies each listed URL lands in its numbered file.
func TestGenericRun(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "<html><body>page %s</body></html>", r.URL.Path)
	})

	dir := storydir.New(t.TempDir(), "my-story")
	require.NoError(t, dir.WriteURLList([]string{server.URL + "/one", server.URL + "/two"}))

	files, notices, err := (&Generic{}).Run(context.Background(), testClient(), dir, Options{})
	require.NoError(t, err)
	assert.Empty(t, notices)
	require.Len(t, files, 2)

	data, err := os.ReadFile(dir.HTMLPath(1))
	require.NoError(t, err)
	assert.Contains(t, string(data), "page /one")
}

// TestGenericSkipsExisting verifies existing chapters are not refetched
// unless forced.
func TestGenericSkipsExisting(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte("<html></html>"))
	}))
	defer server.Close()

	dir := storydir.New(t.TempDir(), "my-story")
	require.NoError(t, dir.WriteURLList([]string{server.URL + "/one"}))
	require.NoError(t, dir.WriteHTML(1, []byte("cached")))

	var skipped []bool
	opts := Options{Progress: func(_, _ int, _ string, s bool) { skipped = append(skipped, s) }}
	files, _, err := (&Generic{}).Run(context.Background(), testClient(), dir, opts)
	require.NoError(t, err)
	assert.Empty(t, files)
	assert.Equal(t, 0, hits)
	assert.Equal(t, []bool{true}, skipped)

	// Forcing replaces the cached file.
	_, _, err = (&Generic{}).Run(context.Background(), testClient(), dir, Options{Force: true})
	require.NoError(t, err)
	assert.Equal(t, 1, hits)
}

// TestGenericLogsFailures verifies a failing chapter is logged and the run
// continues.
func TestGenericLogsFailures(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()
	mux.HandleFunc("/bad", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusServiceUnavailable)
	})
	mux.HandleFunc("/good", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html></html>"))
	})

	dir := storydir.New(t.TempDir(), "my-story")
	require.NoError(t, dir.WriteURLList([]string{server.URL + "/bad", server.URL + "/good"}))

	files, _, err := (&Generic{}).Run(context.Background(), testClient(), dir, Options{})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, dir.HTMLPath(2), files[0])

	log, err := os.ReadFile(filepath.Join(dir.Path(), "fetch.log"))
	require.NoError(t, err)
	assert.Contains(t, string(log), "ERROR "+server.URL+"/bad")
	assert.Contains(t, string(log), "503")
}

// TestLiteroticaPageAssembly verifies physical pages are concatenated with
// markers and the walk stops at the first 404 past page one.
func TestLiteroticaPageAssembly(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()
	mux.HandleFunc("/s/example-chapter", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "", "1":
			w.Write([]byte("<p>first page</p>"))
		case "2":
			w.Write([]byte("<p>second page</p>"))
		default:
			http.NotFound(w, r)
		}
	})

	data, err := literoticaChapter(context.Background(), testClient(), server.URL+"/s/example-chapter")
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "<!-- Literotica page 1 ")
	assert.Contains(t, text, "first page")
	assert.Contains(t, text, "<!-- Literotica page 2 ")
	assert.Contains(t, text, "second page")
	assert.NotContains(t, text, "page 3")
}

// TestLiterotica404OnFirstPageFails verifies a missing chapter is an error,
// not an empty assembly.
func TestLiterotica404OnFirstPageFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(http.NotFound))
	defer server.Close()

	_, err := literoticaChapter(context.Background(), testClient(), server.URL+"/s/gone")
	assert.Error(t, err)
}

// TestEroticStoriesStitching verifies the rest=1 continuation is folded into
// one synthetic document with reader chrome removed.
func TestEroticStoriesStitching(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()
	mux.HandleFunc("/story.php", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("rest") == "1" {
			w.Write([]byte(`
			<html><body><div>
			  <a name="textstart"></a>
			  <p>And the story continues.</p>
			</div></body></html>`))
			return
		}
		w.Write([]byte(`
		<html><head><title>EroticStories: A Long Tale</title></head><body>
		  <a href="/author.php?id=5">taleauthor</a>
		  <div>
		    <a name="textstart"></a>
		    <p>Options: you can change the width of the story.</p>
		    <p>The story begins here.</p>
		    <a href="/story.php?id=42&rest=1">Read the rest</a>
		  </div>
		</body></html>`))
	})

	data, err := stitchEroticStoriesChapter(context.Background(), testClient(), server.URL+"/story.php?id=42")
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "<title>A Long Tale</title>")
	assert.Contains(t, text, `<meta name="author" content="taleauthor">`)
	assert.Contains(t, text, "The story begins here.")
	assert.Contains(t, text, "And the story continues.")
	assert.NotContains(t, text, "change the width")
}
