package discover

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// article is the subset of schema.org Article metadata story pages embed.
type article struct {
	Type     string `json:"@type"`
	Headline string `json:"headline"`
	Author   struct {
		Name string `json:"name"`
	} `json:"author"`
	IsPartOf struct {
		URL  string `json:"url"`
		Name string `json:"name"`
	} `json:"isPartOf"`
}

// findArticleMetadata scans ld+json script blocks for the first Article
// object, handling both bare objects and arrays.
func findArticleMetadata(doc *goquery.Document) *article {
	var found *article
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		if text == "" {
			return true
		}

		var single article
		if err := json.Unmarshal([]byte(text), &single); err == nil {
			if strings.EqualFold(single.Type, "article") {
				found = &single
				return false
			}
		}

		var many []article
		if err := json.Unmarshal([]byte(text), &many); err == nil {
			for i := range many {
				if strings.EqualFold(many[i].Type, "article") {
					found = &many[i]
					return false
				}
			}
		}
		return true
	})
	return found
}

var whitespaceRuns = regexp.MustCompile(`\s+`)

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRuns.ReplaceAllString(s, " "))
}
