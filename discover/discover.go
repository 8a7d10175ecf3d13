// Package discover turns a story's starting URL into the ordered list of
// chapter URLs, plus whatever title and author metadata the page gives away.
package discover

import (
	"context"

	"github.com/zoec98/story-scraper/story"
	"github.com/zoec98/story-scraper/webclient"
)

// Result is what a discovery run produces. URLs are in reading order. The
// Patch carries inferred metadata for the caller to merge; Notices carry
// human-facing warnings (locked chapters, better URLs to use instead).
type Result struct {
	URLs    []string
	Patch   story.Patch
	Notices []string
}

// Discoverer lists a story's chapter URLs starting from one page.
type Discoverer interface {
	Discover(ctx context.Context, client *webclient.Client, startURL string) (*Result, error)
}

var registry = map[string]Discoverer{
	"auto":          &Auto{},
	"ao3":           &AO3{},
	"bdsmlibrary":   &BDSMLibrary{},
	"deviantart":    &DeviantArt{},
	"eroticstories": &EroticStories{},
	"fanfiction":    &FanFiction{},
	"inkitt":        &Inkitt{},
	"literotica":    &Literotica{},
	"mcstories":     &MCStories{},
	"patreon":       &Patreon{},
	"wattpad":       &Wattpad{},
}

// ForAgent resolves a discoverer by agent name. Unknown or empty names get
// the auto discoverer.
func ForAgent(name string) Discoverer {
	if d, ok := registry[name]; ok {
		return d
	}
	return &Auto{}
}
