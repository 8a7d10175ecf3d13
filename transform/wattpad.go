package transform

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Wattpad strips the reading UI: only the reading panels count as content,
// with audio player placeholders removed.
type Wattpad struct {
	*Auto
}

func NewWattpad() *Wattpad {
	return &Wattpad{Auto: NewAuto()}
}

func (w *Wattpad) Extract(raw []byte) (Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return Document{}, err
	}

	heading := strings.TrimSpace(doc.Find(".part-header h1").First().Text())

	container := doc.Find("#parts-container-new").First()
	if container.Length() == 0 {
		container = doc.Selection
	}
	panels := container.Find("div.panel-reading")
	if panels.Length() == 0 {
		result, err := w.extractFrom(doc)
		if err != nil {
			return Document{}, err
		}
		result.Heading = heading
		return result, nil
	}

	var fragments []string
	panels.Each(func(_ int, panel *goquery.Selection) {
		panel.Find(".trinityAudioPlaceholder").Remove()
		if htmlStr, err := goquery.OuterHtml(panel); err == nil {
			fragments = append(fragments, htmlStr)
		}
	})

	body, err := w.render(strings.Join(fragments, "\n"))
	if err != nil {
		return Document{}, err
	}
	return Document{Heading: heading, Body: body}, nil
}
