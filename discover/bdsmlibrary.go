package discover

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/zoec98/story-scraper/story"
	"github.com/zoec98/story-scraper/webclient"
)

// BDSMLibrary collects chapter.php links belonging to the same story id. The
// site serves cp1252 without declaring it.
type BDSMLibrary struct{}

func (b *BDSMLibrary) Discover(ctx context.Context, client *webclient.Client, startURL string) (*Result, error) {
	body, err := client.FetchPage(ctx, startURL)
	if err != nil {
		return nil, err
	}
	doc, err := parseDocument(webclient.DecodeWindows1252(body))
	if err != nil {
		return nil, err
	}

	storyID := queryParam(startURL, "storyid")
	base, err := url.Parse(startURL)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var urls []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if !strings.Contains(href, "chapter.php") {
			return
		}
		if storyID != "" && queryParam(href, "storyid") != storyID {
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

	return &Result{URLs: urls, Patch: b.metadata(doc)}, nil
}

func (b *BDSMLibrary) metadata(doc *goquery.Document) story.Patch {
	const titlePrefix = "BDSM Library - Story:"

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if strings.HasPrefix(title, titlePrefix) {
		title = strings.TrimSpace(strings.TrimPrefix(title, titlePrefix))
	}

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

	return story.Patch{Title: title, Author: author}
}

func queryParam(rawURL, key string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return parsed.Query().Get(key)
}
