package transform

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/zoec98/story-scraper/webclient"
)

// BDSMLibrary chapters are Windows-1252 pages carrying the story inside a
// single <pre> block. The preformatted text is reflowed into paragraphs:
// blank lines end a paragraph and an indented line starts a new one.
type BDSMLibrary struct {
	*Auto
}

func NewBDSMLibrary() *BDSMLibrary {
	return &BDSMLibrary{Auto: NewAuto()}
}

func (b *BDSMLibrary) Extract(raw []byte) (Document, error) {
	decoded := webclient.DecodeWindows1252(raw)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(decoded))
	if err != nil {
		return Document{}, err
	}

	pre := doc.Find("pre").First()
	if pre.Length() == 0 {
		return b.extractFrom(doc)
	}

	heading := ""
	if len(pre.Nodes) > 0 {
		heading = precedingHeading(pre.Nodes[0])
	}

	return Document{Heading: heading, Body: reflowPreformatted(pre.Text())}, nil
}

// precedingHeading finds the closest h3 before the node in document order.
func precedingHeading(n *html.Node) string {
	for cur := n; cur != nil; {
		if cur.PrevSibling != nil {
			cur = cur.PrevSibling
			for cur.LastChild != nil {
				cur = cur.LastChild
			}
		} else {
			cur = cur.Parent
		}
		if cur != nil && cur.Type == html.ElementNode && cur.Data == "h3" {
			return strings.TrimSpace(goquery.NewDocumentFromNode(cur).Text())
		}
	}
	return ""
}

// reflowPreformatted joins hard-wrapped lines into paragraphs. A blank line
// closes the current paragraph; a line indented by two or more spaces starts
// a new one.
func reflowPreformatted(text string) string {
	var paragraphs []string
	var current []string

	flush := func() {
		if len(current) > 0 {
			paragraphs = append(paragraphs, strings.Join(current, " "))
			current = nil
		}
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			flush()
			continue
		}
		if strings.HasPrefix(line, "  ") && len(current) > 0 {
			flush()
		}
		current = append(current, trimmed)
	}
	flush()

	return strings.Join(paragraphs, "\n\n")
}
