package discover

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/zoec98/story-scraper/story"
	"github.com/zoec98/story-scraper/webclient"
)

// EroticStories handles single and multi-part stories. Multi-part stories
// expose a parts.php index; the part list and metadata come from there. The
// site serves cp1252.
type EroticStories struct{}

func (e *EroticStories) Discover(ctx context.Context, client *webclient.Client, startURL string) (*Result, error) {
	body, err := client.FetchPage(ctx, startURL)
	if err != nil {
		return nil, err
	}
	doc, err := parseDocument(webclient.DecodeWindows1252(body))
	if err != nil {
		return nil, err
	}

	metadataDoc := doc
	var urls []string

	if partsURL := e.findPartsURL(doc, startURL); partsURL != "" {
		partsBody, err := client.FetchPage(ctx, partsURL)
		if err != nil {
			return nil, err
		}
		partsDoc, err := parseDocument(webclient.DecodeWindows1252(partsBody))
		if err != nil {
			return nil, err
		}
		metadataDoc = partsDoc
		urls = e.extractParts(partsDoc, partsURL)
	}
	if len(urls) == 0 {
		urls = []string{startURL}
	}

	return &Result{
		URLs: urls,
		Patch: story.Patch{
			Title:  ExtractEroticStoriesTitle(metadataDoc),
			Author: ExtractEroticStoriesAuthor(metadataDoc),
		},
	}, nil
}

// findPartsURL locates the multi-part index link. When the starting URL has
// a story id, index links for other stories are ignored.
func (e *EroticStories) findPartsURL(doc *goquery.Document, startURL string) string {
	storyID := queryParam(startURL, "id")
	base, err := url.Parse(startURL)
	if err != nil {
		return ""
	}

	var found string
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		if !strings.Contains(href, "parts.php") {
			return true
		}
		if storyID != "" {
			if qid := queryParam(href, "id"); qid != "" && qid != storyID {
				return true
			}
		}
		ref, err := url.Parse(href)
		if err != nil {
			return true
		}
		found = base.ResolveReference(ref).String()
		return false
	})
	return found
}

// extractParts lists story.php links from the parts index in page order.
func (e *EroticStories) extractParts(doc *goquery.Document, baseURL string) []string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var urls []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if !strings.Contains(href, "story.php") {
			return
		}
		if queryParam(href, "id") == "" {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref).String()
		if !seen[abs] {
			seen[abs] = true
			urls = append(urls, abs)
		}
	})
	return urls
}

var bracketSuffix = regexp.MustCompile(`(?s)^(.+?)(?:\s*[\[(].*)?$`)

// ExtractEroticStoriesTitle tries the page h1, then a bold story link, then
// the title tag tail. Bracketed part annotations are stripped.
func ExtractEroticStoriesTitle(doc *goquery.Document) string {
	if h1 := doc.Find("h1").First(); h1.Length() > 0 {
		if t := normalizeEroticStoriesTitle(h1.Text()); t != "" {
			return t
		}
	}

	if anchor := findStoryAnchor(doc); anchor != nil {
		if t := normalizeEroticStoriesTitle(anchor.Text()); t != "" {
			return t
		}
	}

	raw := strings.TrimSpace(doc.Find("title").First().Text())
	if idx := strings.LastIndex(raw, ":"); idx >= 0 {
		raw = strings.TrimSpace(raw[idx+1:])
	}
	return normalizeEroticStoriesTitle(raw)
}

func normalizeEroticStoriesTitle(text string) string {
	collapsed := collapseWhitespace(text)
	if collapsed == "" {
		return ""
	}
	if m := bracketSuffix.FindStringSubmatch(collapsed); m != nil {
		collapsed = m[1]
	}
	return strings.Trim(collapsed, ":- ")
}

// ExtractEroticStoriesAuthor returns the first non-empty author.php link text.
func ExtractEroticStoriesAuthor(doc *goquery.Document) string {
	var author string
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		if !strings.Contains(href, "author.php") {
			return true
		}
		if text := strings.TrimSpace(s.Text()); text != "" {
			author = text
			return false
		}
		return true
	})
	return author
}

// findStoryAnchor picks a bold story.php link that is not part navigation.
func findStoryAnchor(doc *goquery.Document) *goquery.Selection {
	var found *goquery.Selection
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		if !strings.Contains(href, "story.php") {
			return true
		}
		text := collapseWhitespace(s.Text())
		if text == "" {
			return true
		}
		switch strings.ToLower(text) {
		case "next part", "prev part", "previous part":
			return true
		}
		if s.Find("b").Length() == 0 && s.Find("strong").Length() == 0 {
			return true
		}
		found = s
		return false
	})
	return found
}
