package discover

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/zoec98/story-scraper/story"
	"github.com/zoec98/story-scraper/webclient"
)

// FanFiction builds chapter URLs from the chapter dropdown on a
// fanfiction.net story page. Single-chapter stories have no dropdown and
// resolve to the starting URL alone.
type FanFiction struct{}

func (f *FanFiction) Discover(ctx context.Context, client *webclient.Client, startURL string) (*Result, error) {
	doc, err := client.FetchDocument(ctx, startURL)
	if err != nil {
		return nil, err
	}

	base, slug, err := storyBaseURL(startURL)
	if err != nil {
		return nil, err
	}

	urls := f.chapterURLs(doc, base, slug)
	if len(urls) == 0 {
		urls = []string{startURL}
	}

	return &Result{URLs: urls, Patch: f.metadata(doc)}, nil
}

func (f *FanFiction) chapterURLs(doc *goquery.Document, base, slug string) []string {
	var urls []string
	doc.Find("#chap_select option").Each(func(_ int, s *goquery.Selection) {
		value, _ := s.Attr("value")
		if value == "" {
			return
		}
		u := base + value
		if slug != "" {
			u += "/" + slug
		}
		urls = append(urls, u)
	})
	return urls
}

func (f *FanFiction) metadata(doc *goquery.Document) story.Patch {
	return story.Patch{
		Title:  strings.TrimSpace(doc.Find("b.xcontrast_txt").First().Text()),
		Author: strings.TrimSpace(doc.Find(`a.xcontrast_txt[href^='/u/']`).First().Text()),
	}
}

// storyBaseURL validates the /s/<story_id>/... shape and returns the chapter
// URL prefix plus the trailing title slug when present.
func storyBaseURL(startURL string) (base, slug string, err error) {
	parsed, err := url.Parse(startURL)
	if err != nil {
		return "", "", err
	}
	var segments []string
	for _, s := range strings.Split(parsed.Path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) < 2 || !strings.EqualFold(segments[0], "s") {
		return "", "", errors.New("FanFiction.Net URLs must follow /s/<story_id>/...")
	}
	if len(segments) > 3 {
		slug = segments[3]
	}
	base = fmt.Sprintf("%s://%s/s/%s/", parsed.Scheme, parsed.Host, segments[1])
	return base, slug, nil
}
