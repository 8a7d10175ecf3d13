package transform

import (
	"bytes"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// MCStories rewrites the archive's chapter markup into plain structure
// before the generic cascade runs: the chapter title becomes an h1,
// trailers go away, milestones become horizontal rules and forewords
// render as emphasis.
type MCStories struct {
	*Auto
}

func NewMCStories() *MCStories {
	return &MCStories{Auto: NewAuto()}
}

func (m *MCStories) Extract(raw []byte) (Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return Document{}, err
	}

	doc.Find("h3.title").Each(func(_ int, s *goquery.Selection) {
		renameNode(s, "h1", atom.H1)
	})
	doc.Find("h3.trailer").Remove()
	doc.Find("span.milestone").Each(func(_ int, s *goquery.Selection) {
		renameNode(s, "hr", atom.Hr)
		for _, n := range s.Nodes {
			n.Attr = nil
			for n.FirstChild != nil {
				n.RemoveChild(n.FirstChild)
			}
		}
	})
	doc.Find("section.foreword").Each(func(_ int, s *goquery.Selection) {
		renameNode(s, "em", atom.Em)
	})

	return m.extractFrom(doc)
}

func renameNode(s *goquery.Selection, tag string, a atom.Atom) {
	for _, n := range s.Nodes {
		if n.Type == html.ElementNode {
			n.Data = tag
			n.DataAtom = a
		}
	}
}
