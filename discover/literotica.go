package discover

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/zoec98/story-scraper/story"
	"github.com/zoec98/story-scraper/webclient"
)

// Literotica understands the site's React payloads. Series pages carry the
// chapter list in an escaped JSON blob; single stories resolve to their
// canonical URL with pagination left to the fetch phase.
type Literotica struct{}

var literoticaStateRe = regexp.MustCompile(`state='((?:[^'\\]|\\.)*)'`)

// literoticaState is the slice of the page state blob the lister needs.
type literoticaState struct {
	Series struct {
		Works []struct {
			URL string `json:"url"`
		} `json:"works"`
		Data struct {
			Title string `json:"title"`
			User  struct {
				Username string `json:"username"`
			} `json:"user"`
		} `json:"data"`
	} `json:"series"`
}

func (l *Literotica) Discover(ctx context.Context, client *webclient.Client, startURL string) (*Result, error) {
	parsed, err := url.Parse(startURL)
	if err != nil {
		return nil, err
	}
	p := strings.ToLower(parsed.Path)

	switch {
	case strings.Contains(p, "/series/"):
		return l.discoverSeries(ctx, client, startURL)
	case strings.HasPrefix(p, "/s/"):
		return l.discoverStory(ctx, client, startURL)
	default:
		return (&Auto{}).Discover(ctx, client, startURL)
	}
}

func (l *Literotica) discoverSeries(ctx context.Context, client *webclient.Client, startURL string) (*Result, error) {
	body, err := client.FetchPage(ctx, startURL)
	if err != nil {
		return nil, err
	}

	state := loadLiteroticaState(string(body))
	var urls []string
	if state != nil {
		for _, work := range state.Series.Works {
			slug := strings.TrimLeft(work.URL, "/")
			if slug != "" {
				urls = append(urls, "https://www.literotica.com/s/"+slug)
			}
		}
	}
	if len(urls) == 0 {
		doc, err := parseDocument(string(body))
		if err != nil {
			return nil, err
		}
		return &Result{URLs: SelectSiblingURLs(startURL, doc)}, nil
	}

	return &Result{
		URLs: urls,
		Patch: story.Patch{
			Title:  strings.TrimSpace(state.Series.Data.Title),
			Author: strings.TrimSpace(state.Series.Data.User.Username),
		},
	}, nil
}

func (l *Literotica) discoverStory(ctx context.Context, client *webclient.Client, startURL string) (*Result, error) {
	body, err := client.FetchPage(ctx, startURL)
	if err != nil {
		return nil, err
	}
	doc, err := parseDocument(string(body))
	if err != nil {
		return nil, err
	}

	result := &Result{URLs: []string{LiteroticaCanonicalURL(startURL)}}

	meta := findArticleMetadata(doc)
	if meta == nil {
		return result, nil
	}
	result.Patch = story.Patch{
		Title:  strings.TrimSpace(meta.Headline),
		Author: strings.TrimSpace(meta.Author.Name),
	}
	if meta.IsPartOf.URL != "" {
		notice := "Literotica: this chapter belongs to a series."
		if meta.IsPartOf.Name != "" {
			notice += fmt.Sprintf(" Series: %s.", meta.IsPartOf.Name)
		}
		notice += fmt.Sprintf(" Download the full series via: storyscraper %s", meta.IsPartOf.URL)
		result.Notices = append(result.Notices, notice)
	}
	return result, nil
}

// LiteroticaCanonicalURL strips the page query parameter so a mid-story link
// resolves to the chapter's first page.
func LiteroticaCanonicalURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := parsed.Query()
	q.Del("page")
	q.Del("Page")
	parsed.RawQuery = q.Encode()
	return parsed.String()
}

// loadLiteroticaState extracts and unescapes the embedded state blob. The
// page stores it as a single-quoted, backslash-escaped JSON string.
func loadLiteroticaState(html string) *literoticaState {
	m := literoticaStateRe.FindStringSubmatch(html)
	if m == nil {
		return nil
	}
	decoded, err := UnescapeEmbeddedJSON(m[1])
	if err != nil {
		return nil
	}
	var state literoticaState
	if err := json.Unmarshal([]byte(decoded), &state); err != nil {
		return nil
	}
	return &state
}

// UnescapeEmbeddedJSON undoes one level of string escaping on a JSON blob
// embedded in a script attribute. Quotes inside the blob arrive escaped;
// escaped single quotes are legal there but not in a Go string literal.
func UnescapeEmbeddedJSON(raw string) (string, error) {
	raw = strings.ReplaceAll(raw, `\'`, `'`)
	return strconv.Unquote(`"` + raw + `"`)
}
