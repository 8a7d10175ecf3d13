// Package storydir owns the on-disk layout of a downloaded story:
//
//	<root>/<slug>/download_urls.txt
//	<root>/<slug>/html/<slug>-001.html
//	<root>/<slug>/markdown/<name>.md
//	<root>/<slug>/fetch.log
//	<root>/<slug>/transform.log
//
// plus optional sidecars (tags.json, metadata.json) and a cached EPUB.
package storydir

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Dir is one story's directory under the stories root.
type Dir struct {
	Root string
	Slug string
}

// New returns the directory handle for a story. Nothing is created until a
// write happens.
func New(root, slug string) *Dir {
	return &Dir{Root: root, Slug: slug}
}

// Path returns the story directory itself.
func (d *Dir) Path() string {
	return filepath.Join(d.Root, d.Slug)
}

// URLListPath returns the chapter URL list file.
func (d *Dir) URLListPath() string {
	return filepath.Join(d.Path(), "download_urls.txt")
}

// HTMLDir returns the raw chapter directory.
func (d *Dir) HTMLDir() string {
	return filepath.Join(d.Path(), "html")
}

// MarkdownDir returns the converted chapter directory.
func (d *Dir) MarkdownDir() string {
	return filepath.Join(d.Path(), "markdown")
}

// HTMLPath returns the raw file for the n-th chapter (1-based). Zero-padding
// keeps lexical and chapter order identical.
func (d *Dir) HTMLPath(n int) string {
	return filepath.Join(d.HTMLDir(), fmt.Sprintf("%s-%03d.html", d.Slug, n))
}

// MarkdownPath returns the Markdown file for a given basename.
func (d *Dir) MarkdownPath(basename string) string {
	return filepath.Join(d.MarkdownDir(), basename+".md")
}

// EPUBPath returns the cached EPUB download location.
func (d *Dir) EPUBPath() string {
	return filepath.Join(d.Path(), d.Slug+".epub")
}

// TagsPath returns the tags sidecar location.
func (d *Dir) TagsPath() string {
	return filepath.Join(d.Path(), "tags.json")
}

// MetadataPath returns the metadata sidecar location.
func (d *Dir) MetadataPath() string {
	return filepath.Join(d.Path(), "metadata.json")
}

// WriteURLList writes the discovered chapter URLs, one per line, atomically.
// A crash mid-write must never leave a truncated list behind, since the
// fetch phase trusts the file completely.
func (d *Dir) WriteURLList(urls []string) error {
	if err := os.MkdirAll(d.Path(), 0755); err != nil {
		return fmt.Errorf("creating story directory: %w", err)
	}

	tmp, err := os.CreateTemp(d.Path(), "download_urls-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temporary URL list: %w", err)
	}
	defer os.Remove(tmp.Name())

	var b strings.Builder
	for _, u := range urls {
		b.WriteString(u)
		b.WriteString("\n")
	}
	if _, err := tmp.WriteString(b.String()); err != nil {
		tmp.Close()
		return fmt.Errorf("writing URL list: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing URL list: %w", err)
	}
	if err := os.Rename(tmp.Name(), d.URLListPath()); err != nil {
		return fmt.Errorf("replacing URL list: %w", err)
	}
	return nil
}

// ReadURLList returns the chapter URLs, skipping blank lines.
func (d *Dir) ReadURLList() ([]string, error) {
	data, err := os.ReadFile(d.URLListPath())
	if err != nil {
		return nil, fmt.Errorf("reading URL list: %w", err)
	}
	var urls []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			urls = append(urls, line)
		}
	}
	return urls, nil
}

// WriteHTML writes one raw chapter file, creating html/ as needed.
func (d *Dir) WriteHTML(n int, body []byte) error {
	if err := os.MkdirAll(d.HTMLDir(), 0755); err != nil {
		return fmt.Errorf("creating html directory: %w", err)
	}
	return os.WriteFile(d.HTMLPath(n), body, 0644)
}

// WriteMarkdown writes one converted chapter, creating markdown/ as needed.
func (d *Dir) WriteMarkdown(basename, content string) error {
	if err := os.MkdirAll(d.MarkdownDir(), 0755); err != nil {
		return fmt.Errorf("creating markdown directory: %w", err)
	}
	return os.WriteFile(d.MarkdownPath(basename), []byte(content), 0644)
}

// ListHTMLFiles returns the raw chapter files in lexical order.
func (d *Dir) ListHTMLFiles() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(d.HTMLDir(), "*.html"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

// AppendFetchLog records one failed download.
func (d *Dir) AppendFetchLog(url string, cause error) error {
	return d.appendLog("fetch.log", url, cause)
}

// AppendTransformLog records one failed conversion. The url position holds
// the source filename.
func (d *Dir) AppendTransformLog(file string, cause error) error {
	return d.appendLog("transform.log", file, cause)
}

func (d *Dir) appendLog(name, subject string, cause error) error {
	if err := os.MkdirAll(d.Path(), 0755); err != nil {
		return fmt.Errorf("creating story directory: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(d.Path(), name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", name, err)
	}
	defer f.Close()

	line := fmt.Sprintf("%s ERROR %s -> %v\n", time.Now().Format(time.RFC3339), subject, cause)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("appending to %s: %w", name, err)
	}
	return nil
}

// WriteTags replaces the tags sidecar wholesale.
func (d *Dir) WriteTags(tags interface{}) error {
	return d.writeJSON(d.TagsPath(), tags)
}

// ReadMetadata loads the metadata sidecar into out. A missing file is not an
// error; out is left untouched.
func (d *Dir) ReadMetadata(out interface{}) error {
	data, err := os.ReadFile(d.MetadataPath())
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading metadata sidecar: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding metadata sidecar: %w", err)
	}
	return nil
}

// WriteMetadata writes the metadata sidecar.
func (d *Dir) WriteMetadata(meta interface{}) error {
	return d.writeJSON(d.MetadataPath(), meta)
}

func (d *Dir) writeJSON(path string, v interface{}) error {
	if err := os.MkdirAll(d.Path(), 0755); err != nil {
		return fmt.Errorf("creating story directory: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
