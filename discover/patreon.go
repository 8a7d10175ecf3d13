package discover

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/zoec98/story-scraper/story"
	"github.com/zoec98/story-scraper/webclient"
)

// Patreon lists a collection's posts by replaying the collection API
// pagination. The page HTML is a Next.js shell that carries no posts, only
// bootstrap metadata.
type Patreon struct {
	// APIBase overrides the collection API root. Empty means production.
	APIBase string
}

var (
	patreonAPIIDRe    = regexp.MustCompile(`/api/collection/(\d+)`)
	patreonNextDataRe = regexp.MustCompile(`(?s)__NEXT_DATA__"?\s*type="application/json">(.*?)</script>`)
)

// patreonCollectionPage is one page of the collection API response.
type patreonCollectionPage struct {
	Data struct {
		Attributes struct {
			PostIDs []json.Number `json:"post_ids"`
		} `json:"attributes"`
	} `json:"data"`
	Links struct {
		Next string `json:"next"`
	} `json:"links"`
}

func (p *Patreon) Discover(ctx context.Context, client *webclient.Client, startURL string) (*Result, error) {
	body, err := client.FetchPage(ctx, startURL)
	if err != nil {
		return nil, err
	}
	html := string(body)

	collectionID, err := extractCollectionID(startURL, html)
	if err != nil {
		return nil, err
	}

	apiBase := p.APIBase
	if apiBase == "" {
		apiBase = "https://www.patreon.com/api/collection/"
	}
	postIDs, err := p.collectPostIDs(ctx, client, apiBase+collectionID)
	if err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(postIDs))
	for _, id := range postIDs {
		urls = append(urls, "https://www.patreon.com/posts/"+id)
	}

	return &Result{URLs: urls, Patch: p.metadata(html)}, nil
}

// collectPostIDs follows links.next until the API stops returning one. API
// calls skip the inter-page delay.
func (p *Patreon) collectPostIDs(ctx context.Context, client *webclient.Client, apiURL string) ([]string, error) {
	var ids []string
	next := apiURL
	for next != "" {
		var page patreonCollectionPage
		if err := client.FetchJSON(ctx, next, &page); err != nil {
			return nil, err
		}
		for _, id := range page.Data.Attributes.PostIDs {
			ids = append(ids, id.String())
		}
		next = page.Links.Next
	}
	return ids, nil
}

func extractCollectionID(rawURL, html string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err == nil && strings.HasPrefix(parsed.Path, "/collection/") {
		parts := strings.Split(strings.TrimRight(parsed.Path, "/"), "/")
		if len(parts) >= 3 && isDigits(parts[2]) {
			return parts[2], nil
		}
	}
	if m := patreonAPIIDRe.FindStringSubmatch(html); m != nil {
		return m[1], nil
	}
	return "", errors.New("could not determine collection id for Patreon URL")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// metadata resolves the collection title and creator through three tiers:
// ld+json Collection, the __NEXT_DATA__ bootstrap, then the title tag.
func (p *Patreon) metadata(html string) story.Patch {
	patch := p.metadataFromLDJSON(html)
	if patch.IsZero() {
		patch = p.metadataFromNextData(html)
	}
	fallback := p.metadataFromTitle(html)
	if patch.Title == "" {
		patch.Title = fallback.Title
	}
	if patch.Author == "" {
		patch.Author = fallback.Author
	}
	return patch
}

func (p *Patreon) metadataFromLDJSON(html string) story.Patch {
	doc, err := parseDocument(html)
	if err != nil {
		return story.Patch{}
	}

	var patch story.Patch
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var data struct {
			Type     string          `json:"@type"`
			Name     string          `json:"name"`
			Headline string          `json:"headline"`
			Author   json.RawMessage `json:"author"`
		}
		if err := json.Unmarshal([]byte(s.Text()), &data); err != nil {
			return true
		}
		if !strings.EqualFold(data.Type, "collection") {
			return true
		}
		patch.Title = strings.TrimSpace(firstNonEmpty(data.Name, data.Headline))
		patch.Author = decodeAuthorField(data.Author)
		return false
	})
	return patch
}

// decodeAuthorField accepts either a schema.org Person object or a bare name.
func decodeAuthorField(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Name != "" {
		return strings.TrimSpace(obj.Name)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return ""
}

// patreonBootstrap is the slice of __NEXT_DATA__ the lister reads.
type patreonBootstrap struct {
	Props struct {
		PageProps struct {
			BootstrapEnvelope struct {
				PageBootstrap struct {
					Collection struct {
						Attributes patreonAttrs `json:"attributes"`
						Data       struct {
							Attributes patreonAttrs `json:"attributes"`
						} `json:"data"`
					} `json:"collection"`
					Campaign struct {
						Data struct {
							Attributes patreonAttrs `json:"attributes"`
						} `json:"data"`
					} `json:"campaign"`
					Creator struct {
						Data struct {
							Attributes patreonAttrs `json:"attributes"`
						} `json:"data"`
					} `json:"creator"`
					Post struct {
						Included []struct {
							Type       string       `json:"type"`
							Attributes patreonAttrs `json:"attributes"`
						} `json:"included"`
					} `json:"post"`
				} `json:"pageBootstrap"`
			} `json:"bootstrapEnvelope"`
		} `json:"pageProps"`
	} `json:"props"`
}

type patreonAttrs struct {
	Title    string `json:"title"`
	Name     string `json:"name"`
	FullName string `json:"full_name"`
}

func (p *Patreon) metadataFromNextData(html string) story.Patch {
	m := patreonNextDataRe.FindStringSubmatch(html)
	if m == nil {
		return story.Patch{}
	}
	var data patreonBootstrap
	if err := json.Unmarshal([]byte(m[1]), &data); err != nil {
		return story.Patch{}
	}
	boot := data.Props.PageProps.BootstrapEnvelope.PageBootstrap

	var patch story.Patch
	patch.Title = strings.TrimSpace(firstNonEmpty(
		boot.Collection.Attributes.Title,
		boot.Collection.Data.Attributes.Title,
	))

	for _, item := range boot.Post.Included {
		if patch.Title != "" {
			break
		}
		if item.Type == "collection" {
			patch.Title = strings.TrimSpace(firstNonEmpty(item.Attributes.Title, item.Attributes.Name))
		}
	}

	patch.Author = strings.TrimSpace(firstNonEmpty(
		boot.Campaign.Data.Attributes.Name,
		boot.Campaign.Data.Attributes.FullName,
		boot.Creator.Data.Attributes.FullName,
		boot.Creator.Data.Attributes.Name,
	))
	for _, wanted := range []string{"campaign", "user"} {
		if patch.Author != "" {
			break
		}
		for _, item := range boot.Post.Included {
			if item.Type != wanted {
				continue
			}
			if v := strings.TrimSpace(firstNonEmpty(item.Attributes.Name, item.Attributes.FullName)); v != "" {
				patch.Author = v
				break
			}
		}
	}
	return patch
}

// metadataFromTitle splits the title tag on pipes: the first segment is the
// collection name, a "Collection from X" segment names the creator.
func (p *Patreon) metadataFromTitle(html string) story.Patch {
	doc, err := parseDocument(html)
	if err != nil {
		return story.Patch{}
	}
	text := strings.TrimSpace(doc.Find("title").First().Text())
	if text == "" {
		return story.Patch{}
	}

	var parts []string
	for _, part := range strings.Split(text, "|") {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}

	var patch story.Patch
	if len(parts) > 0 {
		patch.Title = parts[0]
	}
	for _, part := range parts {
		if strings.HasPrefix(strings.ToLower(part), "collection from") {
			patch.Author = strings.TrimSpace(part[len("collection from"):])
		}
	}
	return patch
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
