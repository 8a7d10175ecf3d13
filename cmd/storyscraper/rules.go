package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/zoec98/story-scraper/sites"
)

// siteRule is the serialized form of a site profile. Fields stay
// alphabetical so JSON output is stable.
type siteRule struct {
	Documentation  string `json:"documentation"`
	FetchAgent     string `json:"fetch_agent"`
	FullName       string `json:"full_name"`
	Name           string `json:"name"`
	Pattern        string `json:"pattern"`
	TransformAgent string `json:"transform_agent"`
}

// renderSiteRules prints the registry as text, JSON, or CSV.
func renderSiteRules(profiles []sites.Profile, format string) (string, error) {
	rules := make([]siteRule, 0, len(profiles))
	for _, p := range profiles {
		rules = append(rules, siteRule{
			Documentation:  p.Documentation,
			FetchAgent:     p.Discoverer,
			FullName:       p.FullName,
			Name:           p.Name,
			Pattern:        p.Pattern.String(),
			TransformAgent: p.Extractor,
		})
	}

	switch format {
	case "json":
		data, err := json.MarshalIndent(rules, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data), nil

	case "csv":
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		if err := w.Write([]string{"pattern", "name", "full_name", "documentation", "fetch_agent", "transform_agent"}); err != nil {
			return "", err
		}
		for _, r := range rules {
			if err := w.Write([]string{r.Pattern, r.Name, r.FullName, r.Documentation, r.FetchAgent, r.TransformAgent}); err != nil {
				return "", err
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return "", err
		}
		return strings.TrimRight(buf.String(), "\n"), nil

	case "text", "":
		lines := make([]string, 0, len(rules))
		for _, r := range rules {
			lines = append(lines, strings.Join([]string{
				r.Name, r.FullName, r.Pattern, r.FetchAgent, r.TransformAgent, r.Documentation,
			}, " | "))
		}
		return strings.Join(lines, "\n"), nil

	default:
		return "", fmt.Errorf("unknown site rules format %q (want text, json, or csv)", format)
	}
}
