package transform

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/zoec98/story-scraper/discover"
	"github.com/zoec98/story-scraper/markdown"
)

var pageTextRe = regexp.MustCompile(`pageText:"((?:\\.|[^"\\])*)"`)

// Literotica decodes the pageText string literals embedded in the chapter
// script. Pages without them run the generic cascade.
type Literotica struct {
	*Auto
}

func NewLiterotica() *Literotica {
	return &Literotica{Auto: NewAuto()}
}

func (l *Literotica) Extract(raw []byte) (Document, error) {
	segments := extractPageTexts(string(raw))
	if len(segments) == 0 {
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
		if err != nil {
			return Document{}, err
		}
		return l.extractFrom(doc)
	}

	return Document{
		Heading: literoticaHeadline(raw),
		Body:    strings.Join(segments, "\n\n"),
	}, nil
}

// extractPageTexts decodes every pageText literal in document order. The
// text is already Markdown-ish prose; only line endings and tilde scene
// breaks need normalizing.
func extractPageTexts(html string) []string {
	var texts []string
	for _, m := range pageTextRe.FindAllStringSubmatch(html, -1) {
		decoded, err := discover.UnescapeEmbeddedJSON(m[1])
		if err != nil {
			continue
		}
		decoded = strings.ReplaceAll(decoded, "\r\n", "\n")
		decoded = strings.ReplaceAll(decoded, "\r", "\n")
		decoded = strings.TrimSpace(decoded)
		decoded = markdown.ReplaceTildeFences(decoded, "***")
		if decoded != "" {
			texts = append(texts, decoded)
		}
	}
	return texts
}

// literoticaHeadline pulls the chapter title from the page's ld+json
// Article block.
func literoticaHeadline(raw []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return ""
	}
	heading := ""
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var entries []struct {
			Type     string `json:"@type"`
			Headline string `json:"headline"`
		}
		text := strings.TrimSpace(s.Text())
		if strings.HasPrefix(text, "[") {
			if err := json.Unmarshal([]byte(text), &entries); err != nil {
				return true
			}
		} else {
			var single struct {
				Type     string `json:"@type"`
				Headline string `json:"headline"`
			}
			if err := json.Unmarshal([]byte(text), &single); err != nil {
				return true
			}
			entries = append(entries, single)
		}
		for _, entry := range entries {
			if strings.EqualFold(entry.Type, "article") {
				heading = strings.TrimSpace(entry.Headline)
				return false
			}
		}
		return true
	})
	return heading
}
