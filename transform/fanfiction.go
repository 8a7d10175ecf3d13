package transform

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FanFiction converts the story text block, promoting its leading <strong>
// to the chapter heading. Pages without the block run the generic cascade.
type FanFiction struct {
	*Auto
}

func NewFanFiction() *FanFiction {
	return &FanFiction{Auto: NewAuto()}
}

func (f *FanFiction) Extract(raw []byte) (Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return Document{}, err
	}

	content := doc.Find("#storytext, .storytext").First()
	if content.Length() == 0 {
		return f.extractFrom(doc)
	}

	heading := ""
	if strong := content.Find("strong").First(); strong.Length() > 0 {
		heading = strings.TrimSpace(strong.Text())
		strong.Remove()
	}

	htmlStr, err := goquery.OuterHtml(content)
	if err != nil {
		return Document{}, err
	}
	body, err := f.render(htmlStr)
	if err != nil {
		return Document{}, err
	}
	return Document{Heading: heading, Body: body}, nil
}
