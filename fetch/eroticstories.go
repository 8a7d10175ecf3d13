package fetch

import (
	"bytes"
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/zoec98/story-scraper/discover"
	"github.com/zoec98/story-scraper/webclient"
)

// chromeMarkers identify reader controls that precede the story text on an
// EroticStories page.
var chromeMarkers = []string{
	"you can change the width",
	"use how much percent of the screen width",
	"options:",
	"don't forget to vote",
	"click here to read the first",
	"show all parts",
}

// stitchEroticStoriesChapter downloads a part and, when the page links a
// rest=1 continuation, the continuation too. Both content blocks are folded
// into one synthetic document so the transform phase sees a single chapter.
func stitchEroticStoriesChapter(ctx context.Context, client *webclient.Client, chapterURL string) ([]byte, error) {
	primary, err := fetchEroticStoriesDoc(ctx, client, chapterURL)
	if err != nil {
		return nil, err
	}

	var continuation *goquery.Document
	if restURL := findRestURL(primary, chapterURL); restURL != "" {
		continuation, err = fetchEroticStoriesDoc(ctx, client, restURL)
		if err != nil {
			return nil, err
		}
	}

	var blocks []string
	if block := extractContentBlock(primary); block != "" {
		blocks = append(blocks, block)
	}
	if continuation != nil {
		if block := extractContentBlock(continuation); block != "" {
			blocks = append(blocks, block)
		}
	}

	title := discover.ExtractEroticStoriesTitle(primary)
	author := discover.ExtractEroticStoriesAuthor(primary)
	if title == "" && continuation != nil {
		title = discover.ExtractEroticStoriesTitle(continuation)
	}
	if author == "" && continuation != nil {
		author = discover.ExtractEroticStoriesAuthor(continuation)
	}

	return buildSyntheticChapter(title, author, blocks), nil
}

func fetchEroticStoriesDoc(ctx context.Context, client *webclient.Client, pageURL string) (*goquery.Document, error) {
	body, err := client.FetchPage(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(strings.NewReader(webclient.DecodeWindows1252(body)))
}

func findRestURL(doc *goquery.Document, baseURL string) string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}
	var found string
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		if !strings.Contains(href, "rest=1") {
			return true
		}
		ref, err := url.Parse(href)
		if err != nil {
			return true
		}
		found = base.ResolveReference(ref).String()
		return false
	})
	return found
}

// extractContentBlock renders the children of the textstart anchor's parent,
// minus the leading reader-control boilerplate. Collection starts at the
// first child whose text is not recognized as chrome.
func extractContentBlock(doc *goquery.Document) string {
	anchor := doc.Find(`a[name="textstart"]`).First()
	if anchor.Length() == 0 {
		return ""
	}
	parent := anchor.Parent()
	if parent.Length() == 0 {
		return ""
	}

	var kept []*html.Node
	collecting := false
	for child := parent.Nodes[0].FirstChild; child != nil; child = child.NextSibling {
		if !collecting {
			switch child.Type {
			case html.ElementNode:
				text := strings.ToLower(collapseSpace(nodeText(child)))
				if text != "" && !isChromeText(text) {
					collecting = true
				}
			case html.TextNode:
				if strings.TrimSpace(child.Data) != "" {
					collecting = true
				}
			}
		}
		if collecting {
			kept = append(kept, child)
		}
	}
	if len(kept) == 0 {
		kept = nil
		for child := parent.Nodes[0].FirstChild; child != nil; child = child.NextSibling {
			kept = append(kept, child)
		}
	}

	var b bytes.Buffer
	b.WriteString("<div>")
	for _, node := range kept {
		html.Render(&b, node)
	}
	b.WriteString("</div>")
	return b.String()
}

func isChromeText(text string) bool {
	for _, marker := range chromeMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
			b.WriteString(" ")
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// buildSyntheticChapter wraps the stitched content blocks in a minimal
// document carrying the story title and author for the transform phase.
func buildSyntheticChapter(title, author string, blocks []string) []byte {
	if title == "" {
		title = "Story"
	}

	var b bytes.Buffer
	b.WriteString("<html><head><title>")
	b.WriteString(html.EscapeString(title))
	b.WriteString("</title>")
	if author != "" {
		b.WriteString(`<meta name="author" content="` + html.EscapeString(author) + `">`)
	}
	b.WriteString(`</head><body><div id="content">`)
	for _, block := range blocks {
		b.WriteString("\n")
		b.WriteString(block)
	}
	b.WriteString("\n</div></body></html>\n")
	return b.Bytes()
}
