package discover

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/zoec98/story-scraper/story"
	"github.com/zoec98/story-scraper/webclient"
)

// Wattpad reads the rendered table of contents. Locked chapters are skipped
// and reported; a page without a TOC falls back to generic link selection.
type Wattpad struct{}

func (w *Wattpad) Discover(ctx context.Context, client *webclient.Client, startURL string) (*Result, error) {
	doc, err := client.FetchDocument(ctx, startURL)
	if err != nil {
		return nil, err
	}

	result := &Result{Patch: w.metadata(doc)}

	toc := doc.Find("ul.table-of-contents").First()
	if toc.Length() == 0 {
		result.URLs = SelectSiblingURLs(startURL, doc)
		return result, nil
	}

	base, err := url.Parse(startURL)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	locked := 0
	toc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		if isLockedChapter(s) {
			locked++
			return
		}
		href, _ := s.Attr("href")
		if strings.TrimSpace(href) == "" {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref).String()
		if !seen[abs] {
			seen[abs] = true
			result.URLs = append(result.URLs, abs)
		}
	})

	if locked > 0 {
		result.Notices = append(result.Notices, fmt.Sprintf(
			"Wattpad: skipped %d locked chapter(s); unlock them to download the full story.", locked))
	}
	if len(result.URLs) == 0 {
		result.URLs = SelectSiblingURLs(startURL, doc)
	}
	return result, nil
}

func isLockedChapter(anchor *goquery.Selection) bool {
	if anchor.HasClass("blocked") {
		return true
	}
	return anchor.Find(".fa-lock").Length() > 0
}

func (w *Wattpad) metadata(doc *goquery.Document) story.Patch {
	info := doc.Find("#funbar-story span.info").First()
	if info.Length() == 0 {
		return story.Patch{}
	}

	patch := story.Patch{
		Title: strings.TrimSpace(info.Find("h2.title").First().Text()),
	}
	author := strings.TrimSpace(info.Find("span.author").First().Text())
	if len(author) >= 3 && strings.EqualFold(author[:3], "by ") {
		author = strings.TrimSpace(author[3:])
	}
	patch.Author = author
	return patch
}
