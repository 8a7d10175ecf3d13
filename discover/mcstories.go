package discover

import (
	"context"
	"strings"

	"github.com/zoec98/story-scraper/story"
	"github.com/zoec98/story-scraper/webclient"
)

// MCStories uses the generic sibling-link selection; its index pages are
// plain directories of chapter files. Only the metadata lookup is specific.
type MCStories struct{}

func (m *MCStories) Discover(ctx context.Context, client *webclient.Client, startURL string) (*Result, error) {
	doc, err := client.FetchDocument(ctx, startURL)
	if err != nil {
		return nil, err
	}

	patch := story.Patch{
		Title: collapseWhitespace(doc.Find("h3.title").First().Text()),
	}
	byline := collapseWhitespace(doc.Find("h3.byline").First().Text())
	patch.Author = strings.TrimSpace(strings.Replace(byline, "by ", "", 1))

	return &Result{URLs: SelectSiblingURLs(startURL, doc), Patch: patch}, nil
}
