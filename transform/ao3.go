package transform

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// AO3 converts EPUB spine documents. The heading comes from the chapter's
// .heading element; the body is the whole document, which the EPUB already
// keeps free of site chrome.
type AO3 struct {
	*Auto
}

func NewAO3() *AO3 {
	return &AO3{Auto: NewAuto()}
}

func (a *AO3) Extract(raw []byte) (Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return Document{}, err
	}

	root := doc.Find("body").First()
	if root.Length() == 0 {
		root = doc.Selection
	}
	htmlStr, err := goquery.OuterHtml(root)
	if err != nil {
		return Document{}, err
	}
	body, err := a.render(htmlStr)
	if err != nil {
		return Document{}, err
	}

	return Document{
		Heading: strings.TrimSpace(doc.Find(".heading").First().Text()),
		Body:    body,
	}, nil
}
