package transform

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/zoec98/story-scraper/markdown"
)

// chromeSelectors name page furniture the structural heuristic strips before
// hunting for the content subtree.
var chromeSelectors = []string{
	"nav",
	"header",
	"footer",
	`[role="navigation"]`,
	`[role="banner"]`,
	`[role="contentinfo"]`,
}

var articleKeywords = []string{"article", "blogposting", "newsarticle", "creativework"}

// Auto extracts story content with a fallback cascade: semantic containers
// first (main, role=main, article, article-like itemtypes), then a
// structural heuristic, then the whole body.
type Auto struct {
	renderer *markdown.Renderer
}

func NewAuto() *Auto {
	return &Auto{renderer: markdown.NewRenderer()}
}

func (a *Auto) Extract(raw []byte) (Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return Document{}, err
	}
	return a.extractFrom(doc)
}

func (a *Auto) extractFrom(doc *goquery.Document) (Document, error) {
	root := ExtractContentRoot(doc)
	htmlStr, err := goquery.OuterHtml(root)
	if err != nil {
		return Document{}, err
	}
	body, err := a.renderer.Render(htmlStr)
	if err != nil {
		return Document{}, err
	}
	return Document{Body: body}, nil
}

// render converts an HTML fragment through the renderer. Site extractors
// embedding Auto use this for pre-selected content.
func (a *Auto) render(htmlStr string) (string, error) {
	return a.renderer.Render(htmlStr)
}

// ExtractContentRoot selects the most story-like subtree of the document.
// Ties at each step go to the candidate with the most visible text.
func ExtractContentRoot(doc *goquery.Document) *goquery.Selection {
	if c := pickLargestText(doc.Find("main")); c != nil {
		return c
	}

	roleMain := doc.Find("[role]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		role, _ := s.Attr("role")
		return strings.EqualFold(strings.TrimSpace(role), "main")
	})
	if c := pickLargestText(roleMain); c != nil {
		return c
	}

	if c := pickLargestText(doc.Find("article")); c != nil {
		return c
	}

	articleLike := doc.Find("[itemtype]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		itemtype, _ := s.Attr("itemtype")
		return isArticleLike(itemtype)
	})
	if c := pickLargestText(articleLike); c != nil {
		return c
	}

	if c := structuredLayoutCandidate(doc); c != nil {
		return c
	}

	if body := doc.Find("body"); body.Length() > 0 {
		return body.First()
	}
	return doc.Selection
}

func isArticleLike(itemtype string) bool {
	itemtype = strings.ToLower(itemtype)
	if itemtype == "" {
		return false
	}
	for _, keyword := range articleKeywords {
		if strings.Contains(itemtype, keyword) {
			return true
		}
	}
	return false
}

func pickLargestText(candidates *goquery.Selection) *goquery.Selection {
	var best *goquery.Selection
	bestLength := 0
	candidates.Each(func(_ int, s *goquery.Selection) {
		if length := visibleTextLength(s); length > bestLength {
			best = s
			bestLength = length
		}
	})
	return best
}

func visibleTextLength(s *goquery.Selection) int {
	return len(strings.Join(strings.Fields(s.Text()), " "))
}

// structuredLayoutCandidate works on a chrome-stripped clone of the body:
// among elements holding an h1 or h2 and visible text, the deepest wins,
// with text length as the tie-break.
func structuredLayoutCandidate(doc *goquery.Document) *goquery.Selection {
	body := doc.Find("body").First()
	if body.Length() == 0 {
		return nil
	}

	clone := body.Clone()
	for _, selector := range chromeSelectors {
		clone.Find(selector).Remove()
	}

	var best *goquery.Selection
	bestDepth := -1
	bestLength := 0
	clone.Find("*").Each(func(_ int, s *goquery.Selection) {
		if s.Find("h1,h2").Length() == 0 {
			return
		}
		length := visibleTextLength(s)
		if length == 0 {
			return
		}
		depth := nodeDepth(s)
		if depth > bestDepth || (depth == bestDepth && length > bestLength) {
			best = s
			bestDepth = depth
			bestLength = length
		}
	})
	return best
}

func nodeDepth(s *goquery.Selection) int {
	if len(s.Nodes) == 0 {
		return 0
	}
	depth := 0
	for n := s.Nodes[0].Parent; n != nil; n = n.Parent {
		depth++
	}
	return depth
}

// outerHTMLNode renders a single parsed node back to HTML.
func outerHTMLNode(n *html.Node) string {
	var b bytes.Buffer
	html.Render(&b, n)
	return b.String()
}
