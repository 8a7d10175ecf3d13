package discover

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/zoec98/story-scraper/story"
	"github.com/zoec98/story-scraper/webclient"
)

// AO3 lists a single URL: the work's EPUB download. The fetch phase unpacks
// the EPUB into per-chapter files.
type AO3 struct{}

func (a *AO3) Discover(ctx context.Context, client *webclient.Client, startURL string) (*Result, error) {
	doc, err := client.FetchDocument(ctx, startURL)
	if err != nil {
		return nil, err
	}

	link := doc.Find(`li.download a[href*='epub']`).First()
	href, _ := link.Attr("href")
	if strings.TrimSpace(href) == "" {
		return nil, errors.New("unable to locate EPUB download link on AO3 page")
	}

	base, err := url.Parse(startURL)
	if err != nil {
		return nil, err
	}
	ref, err := url.Parse(href)
	if err != nil {
		return nil, err
	}

	patch := story.Patch{
		Title:  strings.TrimSpace(doc.Find("h2.title").First().Text()),
		Author: strings.TrimSpace(doc.Find(`a[rel='author']`).First().Text()),
	}
	return &Result{
		URLs:  []string{base.ResolveReference(ref).String()},
		Patch: patch,
	}, nil
}
