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

// Inkitt reads the chapter dropdown. Patron-only chapters are skipped with a
// notice; a page without the dropdown falls back to generic selection.
type Inkitt struct{}

func (i *Inkitt) Discover(ctx context.Context, client *webclient.Client, startURL string) (*Result, error) {
	doc, err := client.FetchDocument(ctx, startURL)
	if err != nil {
		return nil, err
	}

	result := &Result{Patch: i.metadata(doc)}

	container := doc.Find("ul.nav.nav-list.chapter-list-dropdown").First()
	if container.Length() == 0 {
		result.URLs = SelectSiblingURLs(startURL, doc)
		return result, nil
	}

	base, err := url.Parse(startURL)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	locked := 0
	container.Find("li").Each(func(_ int, li *goquery.Selection) {
		anchor := li.Find("a.chapter-link[href]").First()
		if anchor.Length() == 0 {
			return
		}
		href, _ := anchor.Attr("href")
		if strings.TrimSpace(href) == "" {
			return
		}
		if li.Find(".chapter-patron-icon").Length() > 0 {
			locked++
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
			"Inkitt: skipped %d locked chapter(s); unlock them to download the full story.", locked))
	}
	return result, nil
}

func (i *Inkitt) metadata(doc *goquery.Document) story.Patch {
	meta := findArticleMetadata(doc)
	if meta == nil {
		return story.Patch{}
	}
	return story.Patch{
		Title:  strings.TrimSpace(meta.Headline),
		Author: strings.TrimSpace(meta.Author.Name),
	}
}
