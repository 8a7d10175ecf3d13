package fetch

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zoec98/story-scraper/storydir"
)

// buildEPUB assembles a minimal EPUB with the given spine documents.
func buildEPUB(t *testing.T, chapters map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	write := func(name, content string) {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}

	write("META-INF/container.xml", `<?xml version="1.0"?>
	<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
	  <rootfiles>
	    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
	  </rootfiles>
	</container>`)

	manifest := ""
	spine := ""
	for _, name := range []string{"chapter1.xhtml", "chapter2.xhtml"} {
		content, ok := chapters[name]
		if !ok {
			continue
		}
		write("OEBPS/"+name, content)
		manifest += `<item id="c` + name + `" href="` + name + `" media-type="application/xhtml+xml"/>`
		spine += `<itemref idref="c` + name + `"/>`
	}

	write("OEBPS/content.opf", `<?xml version="1.0"?>
	<package xmlns="http://www.idpf.org/2007/opf" version="3.0">
	  <manifest>`+manifest+`</manifest>
	  <spine>`+spine+`</spine>
	</package>`)

	require.NoError(t, w.Close())
	return buf.Bytes()
}

// TestAO3ExtractsSpine verifies the EPUB is cached and its spine documents
// become numbered chapter files.
func TestAO3ExtractsSpine(t *testing.T) {
	epub := buildEPUB(t, map[string]string{
		"chapter1.xhtml": "<html><body><p>Chapter one.</p></body></html>",
		"chapter2.xhtml": "<html><body><p>Chapter two.</p></body></html>",
	})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(epub)
	}))
	defer server.Close()

	dir := storydir.New(t.TempDir(), "a-work")
	require.NoError(t, dir.WriteURLList([]string{server.URL + "/downloads/a_work.epub"}))

	files, notices, err := (&AO3{}).Run(context.Background(), testClient(), dir, Options{})
	require.NoError(t, err)
	require.Len(t, files, 2)
	require.Len(t, notices, 1)
	assert.Contains(t, notices[0], "extracted 2 chapter(s)")

	data, err := os.ReadFile(dir.HTMLPath(1))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Chapter one.")

	// The EPUB itself is cached next to the story.
	assert.FileExists(t, dir.EPUBPath())
}

// TestAO3UsesCachedEPUB verifies reruns read the cached file instead of
// downloading again.
func TestAO3UsesCachedEPUB(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer server.Close()

	epub := buildEPUB(t, map[string]string{
		"chapter1.xhtml": "<html><body><p>Cached chapter.</p></body></html>",
	})
	dir := storydir.New(t.TempDir(), "a-work")
	require.NoError(t, dir.WriteURLList([]string{server.URL + "/downloads/a_work.epub"}))
	require.NoError(t, os.MkdirAll(dir.Path(), 0755))
	require.NoError(t, os.WriteFile(dir.EPUBPath(), epub, 0644))

	files, _, err := (&AO3{}).Run(context.Background(), testClient(), dir, Options{})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, 0, hits)
}

// TestAO3MalformedEPUBIsFatal verifies a broken archive aborts the phase.
func TestAO3MalformedEPUBIsFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not a zip file"))
	}))
	defer server.Close()

	dir := storydir.New(t.TempDir(), "a-work")
	require.NoError(t, dir.WriteURLList([]string{server.URL + "/downloads/a_work.epub"}))

	_, _, err := (&AO3{}).Run(context.Background(), testClient(), dir, Options{})
	assert.Error(t, err)
}

// TestAO3MultipleURLsFallBack verifies the generic strategy takes over when
// the list does not hold exactly one URL.
func TestAO3MultipleURLsFallBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html></html>"))
	}))
	defer server.Close()

	dir := storydir.New(t.TempDir(), "a-work")
	require.NoError(t, dir.WriteURLList([]string{server.URL + "/one", server.URL + "/two"}))

	files, notices, err := (&AO3{}).Run(context.Background(), testClient(), dir, Options{})
	require.NoError(t, err)
	assert.Len(t, files, 2)
	require.NotEmpty(t, notices)
	assert.Contains(t, notices[0], "falling back")
}
