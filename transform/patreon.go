package transform

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/zoec98/story-scraper/markdown"
	"github.com/zoec98/story-scraper/story"
	"github.com/zoec98/story-scraper/storydir"
)

var (
	nextDataRe       = regexp.MustCompile(`(?s)__NEXT_DATA__"?\s*type="application/json">(.*?)</script>`)
	chapterNumberRe  = regexp.MustCompile(`(?i)chapter\s*(\d+)`)
	partNumberRe     = regexp.MustCompile(`(?i)part\s*(\d+)`)
	numberedTitleRe  = regexp.MustCompile(`(?i)(chapter|part)\s*\d+`)
	collectionMarker = "in collection"
)

// Patreon reads post content and title out of the page's __NEXT_DATA__
// bootstrap. Output files are named from chapter and part numbers in the
// post title, and post tags accumulate into a tags.json sidecar.
type Patreon struct {
	*Auto
	tags []string
	seen map[string]bool
}

func NewPatreon() *Patreon {
	return &Patreon{Auto: NewAuto(), seen: make(map[string]bool)}
}

// patreonPost is the slice of __NEXT_DATA__ the transformer reads.
type patreonPost struct {
	Props struct {
		PageProps struct {
			BootstrapEnvelope struct {
				PageBootstrap struct {
					Post struct {
						Data struct {
							Attributes struct {
								Content string `json:"content"`
								Title   string `json:"title"`
							} `json:"attributes"`
						} `json:"data"`
						Included []struct {
							Type       string `json:"type"`
							Attributes struct {
								Value string `json:"value"`
							} `json:"attributes"`
						} `json:"included"`
					} `json:"post"`
				} `json:"pageBootstrap"`
			} `json:"bootstrapEnvelope"`
		} `json:"pageProps"`
	} `json:"props"`
}

func (p *Patreon) Extract(raw []byte) (Document, error) {
	post := loadPatreonPost(string(raw))
	if post == nil || post.Props.PageProps.BootstrapEnvelope.PageBootstrap.Post.Data.Attributes.Content == "" {
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
		if err != nil {
			return Document{}, err
		}
		return p.extractFrom(doc)
	}

	attrs := post.Props.PageProps.BootstrapEnvelope.PageBootstrap.Post.Data.Attributes
	cleaned, err := removeCollectionLinks(attrs.Content)
	if err != nil {
		return Document{}, err
	}
	body, err := p.render(cleaned)
	if err != nil {
		return Document{}, err
	}
	body = markdown.ReplaceTildeFences(body, "---")

	p.collectTags(post)

	return Document{Heading: strings.TrimSpace(attrs.Title), Body: body}, nil
}

// Basename names the output file from the post title. "Chapter 12" and
// "Part 3" markers drive the numbering; titles without them fall back to
// the scan order.
func (p *Patreon) Basename(raw []byte, index int, slug string) string {
	title := ""
	if post := loadPatreonPost(string(raw)); post != nil {
		title = strings.TrimSpace(post.Props.PageProps.BootstrapEnvelope.PageBootstrap.Post.Data.Attributes.Title)
	}
	if title == "" {
		title = fallbackTitle(raw)
	}
	if title == "" {
		return fmt.Sprintf("%s-%03d", slug, index)
	}

	chapter, hasChapter := parseNumber(title, chapterNumberRe)
	part, hasPart := parseNumber(title, partNumberRe)
	base := prefixSlug(title)
	if base == "" {
		base = slug
	}

	switch {
	case hasChapter && hasPart:
		return fmt.Sprintf("%s-%03d-%d", base, chapter, part)
	case hasChapter:
		return fmt.Sprintf("%s-%03d", base, chapter)
	case hasPart:
		return fmt.Sprintf("%s-%03d", base, part)
	default:
		return fmt.Sprintf("%s-%03d", slug, index)
	}
}

// Finalize writes the tags gathered during the pass.
func (p *Patreon) Finalize(dir *storydir.Dir) error {
	if len(p.tags) == 0 {
		return nil
	}
	return dir.WriteTags(p.tags)
}

func (p *Patreon) collectTags(post *patreonPost) {
	for _, item := range post.Props.PageProps.BootstrapEnvelope.PageBootstrap.Post.Included {
		if item.Type != "post_tag" {
			continue
		}
		tag := strings.TrimSpace(item.Attributes.Value)
		if tag == "" || p.seen[tag] {
			continue
		}
		p.seen[tag] = true
		p.tags = append(p.tags, tag)
	}
}

func loadPatreonPost(htmlText string) *patreonPost {
	m := nextDataRe.FindStringSubmatch(htmlText)
	if m == nil {
		return nil
	}
	var post patreonPost
	if err := json.Unmarshal([]byte(m[1]), &post); err != nil {
		return nil
	}
	return &post
}

// removeCollectionLinks strips the "in collection" navigation Patreon
// injects into post content.
func removeCollectionLinks(content string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return "", err
	}
	root := doc.Find("body").First()
	if root.Length() == 0 {
		return content, nil
	}

	var doomed []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode && strings.Contains(strings.ToLower(n.Data), collectionMarker) {
			if n.Parent != nil {
				doomed = append(doomed, n.Parent)
			}
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	for _, n := range root.Nodes {
		walk(n)
	}
	for _, n := range doomed {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
	}

	return root.Html()
}

func parseNumber(title string, re *regexp.Regexp) (int, bool) {
	m := re.FindStringSubmatch(title)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// prefixSlug slugifies whatever precedes the first chapter or part marker.
func prefixSlug(title string) string {
	m := numberedTitleRe.FindStringIndex(title)
	if m == nil {
		return ""
	}
	prefix := strings.Trim(title[:m[0]], " -_:")
	if prefix == "" {
		return ""
	}
	return story.Slugify(prefix)
}

func fallbackTitle(raw []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
