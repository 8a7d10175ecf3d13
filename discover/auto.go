package discover

import (
	"bytes"
	"context"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/zoec98/story-scraper/webclient"
)

// Auto discovers chapters on sites without a dedicated profile: every link
// on the starting page that stays within the same directory is taken as a
// chapter, in document order.
type Auto struct{}

func (a *Auto) Discover(ctx context.Context, client *webclient.Client, startURL string) (*Result, error) {
	doc, err := client.FetchDocument(ctx, startURL)
	if err != nil {
		return nil, err
	}
	return &Result{URLs: SelectSiblingURLs(startURL, doc)}, nil
}

// SelectSiblingURLs applies the generic link filter: absolutize every anchor,
// keep same scheme and host under the starting URL's directory, de-dupe
// preserving first occurrence, and drop the starting page itself (including
// its index.html twin). Site discoverers fall back to this when a page lacks
// the structure they expect.
func SelectSiblingURLs(startURL string, doc *goquery.Document) []string {
	base, err := url.Parse(startURL)
	if err != nil {
		return nil
	}
	baseDir := baseDirectory(base.Path)

	seen := make(map[string]bool)
	var ordered []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if href == "" {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref)
		if abs.Scheme != base.Scheme || abs.Host != base.Host {
			return
		}
		if !strings.HasPrefix(abs.Path, baseDir) {
			return
		}
		u := abs.String()
		if !seen[u] {
			seen[u] = true
			ordered = append(ordered, u)
		}
	})

	self := []string{startURL}
	if canonical := canonicalIndexURL(base); canonical != "" {
		self = append(self, canonical)
	}

	var out []string
	for _, u := range ordered {
		drop := false
		for _, s := range self {
			if urlsEqual(u, s) {
				drop = true
				break
			}
		}
		if !drop {
			out = append(out, u)
		}
	}
	return out
}

// baseDirectory returns the directory portion of a URL path with a trailing
// slash, so prefix matching cannot cross sibling directories.
func baseDirectory(p string) string {
	if p == "" {
		return "/"
	}
	dir := p
	if !strings.HasSuffix(p, "/") {
		dir = path.Dir(p)
	}
	if dir == "" || dir == "." {
		dir = "/"
	}
	if !strings.HasPrefix(dir, "/") {
		dir = "/" + dir
	}
	if !strings.HasSuffix(dir, "/") {
		dir += "/"
	}
	return dir
}

// canonicalIndexURL returns the index.html form of a directory URL, so a
// link back to it is recognized as the starting page.
func canonicalIndexURL(base *url.URL) string {
	u := *base
	if u.Path == "" || strings.HasSuffix(u.Path, "/") {
		u.Path += "index.html"
	}
	return u.String()
}

func urlsEqual(left, right string) bool {
	l, err := url.Parse(left)
	if err != nil {
		return false
	}
	r, err := url.Parse(right)
	if err != nil {
		return false
	}
	return l.Scheme == r.Scheme && l.Host == r.Host &&
		strings.TrimRight(l.Path, "/") == strings.TrimRight(r.Path, "/")
}

func parseDocument(html string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(bytes.NewReader([]byte(html)))
}
