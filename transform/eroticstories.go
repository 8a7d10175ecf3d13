package transform

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var eroticStoriesHeaderMarkers = []string{
	"click here to read the first",
	"don't forget to vote",
	"has been interviewed",
	"you can change the width",
}

// EroticStories trims the per-segment header chrome and the footer
// navigation from stitched chapters before conversion.
type EroticStories struct {
	*Auto
}

func NewEroticStories() *EroticStories {
	return &EroticStories{Auto: NewAuto()}
}

func (e *EroticStories) Extract(raw []byte) (Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return Document{}, err
	}

	content := doc.Find("div#content").First()
	if content.Length() == 0 {
		return e.extractFrom(doc)
	}

	segments := content.ChildrenFiltered("div").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.Find(`a[name="textstart"]`).Length() > 0
	})
	var segmentNodes []*html.Node
	if segments.Length() > 0 {
		segmentNodes = segments.Nodes
	} else {
		segmentNodes = content.Nodes
	}

	var fragments []string
	for i, segment := range segmentNodes {
		if cleaned := cleanSegment(segment, i == 0); cleaned != "" {
			fragments = append(fragments, cleaned)
		}
	}
	if len(fragments) == 0 {
		return e.extractFrom(doc)
	}

	body, err := e.render("<div>" + strings.Join(fragments, "") + "</div>")
	if err != nil {
		return Document{}, err
	}
	return Document{Body: body}, nil
}

// cleanSegment drops the header chrome (last marker in the first dozen
// blocks) and everything from the footer navigation on, returning the
// surviving blocks as an HTML fragment.
func cleanSegment(segment *html.Node, isFirst bool) string {
	blocks := segmentBlocks(segment)
	if len(blocks) == 0 {
		return ""
	}

	start := headerEndIndex(blocks) + 1
	end := segmentEndIndex(blocks, isFirst)
	if end < 0 {
		end = len(blocks)
	}
	if start >= end {
		return ""
	}

	var b strings.Builder
	for _, block := range blocks[start:end] {
		b.WriteString(outerHTMLNode(block))
	}
	return b.String()
}

// segmentBlocks flattens a segment into block elements. Bare text becomes a
// paragraph; wrapper tags contribute their block descendants instead.
func segmentBlocks(segment *html.Node) []*html.Node {
	var blocks []*html.Node
	for child := segment.FirstChild; child != nil; child = child.NextSibling {
		switch child.Type {
		case html.TextNode:
			text := strings.TrimSpace(child.Data)
			if text == "" {
				continue
			}
			p := &html.Node{Type: html.ElementNode, Data: "p"}
			p.AppendChild(&html.Node{Type: html.TextNode, Data: text})
			blocks = append(blocks, p)
		case html.ElementNode:
			if isBlockTag(child.Data) {
				if blockText(child) != "" {
					blocks = append(blocks, child)
				}
				continue
			}
			blocks = append(blocks, descendantBlocks(child)...)
		}
	}
	return blocks
}

func descendantBlocks(n *html.Node) []*html.Node {
	var blocks []*html.Node
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != html.ElementNode {
			continue
		}
		if isBlockTag(child.Data) && blockText(child) != "" {
			blocks = append(blocks, child)
		}
		blocks = append(blocks, descendantBlocks(child)...)
	}
	return blocks
}

func isBlockTag(tag string) bool {
	return tag == "p" || tag == "table" || tag == "div"
}

func headerEndIndex(blocks []*html.Node) int {
	last := -1
	for i, block := range blocks {
		if i >= 12 {
			break
		}
		text := strings.ToLower(blockText(block))
		for _, marker := range eroticStoriesHeaderMarkers {
			if strings.Contains(text, marker) {
				last = i
				break
			}
		}
	}
	return last
}

// segmentEndIndex finds where the footer starts. The "read the rest" link
// only ends the first segment; in a continuation it sits mid-page above
// text that must be kept.
func segmentEndIndex(blocks []*html.Node, isFirst bool) int {
	for i, block := range blocks {
		text := strings.ToLower(blockText(block))
		if strings.Contains(text, "click here to read the rest of this story") {
			if isFirst {
				return i
			}
			return -1
		}
		if strings.Contains(text, "do you like this story") {
			return i
		}
		if strings.Contains(text, "request from webmaster") {
			return i
		}
	}
	return -1
}

func blockText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
			b.WriteString(" ")
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
