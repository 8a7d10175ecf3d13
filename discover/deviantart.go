package discover

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/zoec98/story-scraper/story"
	"github.com/zoec98/story-scraper/webclient"
)

// DeviantArt handles two shapes: a gallery URL is walked page by page
// collecting the owner's literature deviations, and a single deviation URL
// resolves to its canonical form once the page proves to be literature.
type DeviantArt struct{}

var initialStateRe = regexp.MustCompile(`window\.__INITIAL_STATE__\s*=\s*JSON\.parse\("((?:[^"\\]|\\.)*)"\)`)

// deviantArtState is the slice of the embedded page state discovery reads.
type deviantArtState struct {
	PageInfo *struct {
		CurrentPage int `json:"currentPage"`
		TotalPages  int `json:"totalPages"`
	} `json:"pageInfo"`
	GallectionSection struct {
		SelectedFolderID json.Number `json:"selectedFolderId"`
	} `json:"gallectionSection"`
	Entities struct {
		GalleryFolder map[string]struct {
			Name string `json:"name"`
		} `json:"galleryFolder"`
	} `json:"@@entities"`
}

func (d *DeviantArt) Discover(ctx context.Context, client *webclient.Client, startURL string) (*Result, error) {
	if isGalleryURL(startURL) {
		return d.discoverGallery(ctx, client, startURL)
	}
	return d.discoverDeviation(ctx, client, startURL)
}

func isGalleryURL(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(parsed.Path), "/gallery")
}

func (d *DeviantArt) discoverGallery(ctx context.Context, client *webclient.Client, startURL string) (*Result, error) {
	owner := galleryOwner(startURL)
	result := &Result{}
	seen := make(map[string]bool)

	pageURL := startURL
	for pageURL != "" {
		body, err := client.FetchPage(ctx, pageURL)
		if err != nil {
			return nil, err
		}
		html := string(body)
		doc, err := parseDocument(html)
		if err != nil {
			return nil, err
		}

		state := loadDeviantArtState(html)
		if result.Patch.Title == "" && state != nil {
			result.Patch.Title = state.galleryTitle()
		}

		base, err := url.Parse(pageURL)
		if err != nil {
			return nil, err
		}
		doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
			href, _ := s.Attr("href")
			ref, err := url.Parse(href)
			if err != nil {
				return
			}
			abs := base.ResolveReference(ref)
			if abs.Host != base.Host || !strings.HasPrefix(abs.Path, "/"+owner+"/art/") {
				return
			}
			abs.RawQuery = ""
			abs.Fragment = ""
			u := abs.String()
			if !seen[u] {
				seen[u] = true
				result.URLs = append(result.URLs, u)
			}
		})

		next, _ := doc.Find("link[rel='next']").First().Attr("href")
		if next == "" {
			break
		}
		if state != nil && state.PageInfo != nil && state.PageInfo.CurrentPage >= state.PageInfo.TotalPages {
			break
		}
		pageURL = next
	}

	return result, nil
}

func galleryOwner(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	for _, segment := range strings.Split(parsed.Path, "/") {
		if segment != "" {
			return segment
		}
	}
	return ""
}

func (d *DeviantArt) discoverDeviation(ctx context.Context, client *webclient.Client, startURL string) (*Result, error) {
	doc, err := client.FetchDocument(ctx, startURL)
	if err != nil {
		return nil, err
	}

	if !hasLiteratureContent(doc) {
		return &Result{Notices: []string{fmt.Sprintf(
			"DeviantArt: URL does not contain content that can be recognized as a Literature Deviation: %s", startURL)}}, nil
	}

	canonical := metaContent(doc, `meta[property='og:url']`)
	if canonical == "" {
		canonical = startURL
	}

	return &Result{
		URLs:  []string{canonical},
		Patch: deviantArtMetadata(doc),
	}, nil
}

// hasLiteratureContent requires a "Literature Text" heading inside a section
// that carries an immediate content div. Image deviations lack this.
func hasLiteratureContent(doc *goquery.Document) bool {
	found := false
	doc.Find("h2").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		if strings.TrimSpace(h.Text()) != "Literature Text" {
			return true
		}
		section := h.Closest("section")
		if section.Length() == 0 {
			return true
		}
		if section.ChildrenFiltered("div").Length() > 0 {
			found = true
			return false
		}
		return true
	})
	return found
}

func deviantArtMetadata(doc *goquery.Document) story.Patch {
	title, author := SplitDeviantArtTitle(metaContent(doc, `meta[property='og:title']`))
	if title == "" || author == "" {
		t2, a2 := SplitDeviantArtTitle(strings.TrimSpace(doc.Find("title").First().Text()))
		if title == "" {
			title = t2
		}
		if author == "" {
			author = a2
		}
	}
	return story.Patch{Title: title, Author: strings.TrimLeft(author, "@")}
}

// SplitDeviantArtTitle takes "Title by author on DeviantArt" apart.
func SplitDeviantArtTitle(text string) (title, author string) {
	if text == "" {
		return "", ""
	}
	const suffix = " on DeviantArt"
	if !strings.Contains(text, suffix) {
		return text, ""
	}
	prefix := strings.TrimSpace(strings.SplitN(text, suffix, 2)[0])
	idx := strings.LastIndex(prefix, " by ")
	if idx < 0 {
		return prefix, ""
	}
	return strings.TrimSpace(prefix[:idx]), strings.TrimSpace(prefix[idx+len(" by "):])
}

func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}

// loadDeviantArtState extracts the JSON.parse payload embedded in the page.
func loadDeviantArtState(html string) *deviantArtState {
	m := initialStateRe.FindStringSubmatch(html)
	if m == nil {
		return nil
	}
	decoded, err := UnescapeEmbeddedJSON(m[1])
	if err != nil {
		return nil
	}
	var state deviantArtState
	if err := json.Unmarshal([]byte(decoded), &state); err != nil {
		return nil
	}
	return &state
}

func (s *deviantArtState) galleryTitle() string {
	id := s.GallectionSection.SelectedFolderID.String()
	if id == "" {
		return ""
	}
	if folder, ok := s.Entities.GalleryFolder[id]; ok {
		return strings.TrimSpace(folder.Name)
	}
	return ""
}
