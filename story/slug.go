package story

import (
	"net/url"
	"path"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var slugInvalidChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify converts arbitrary input to a filesystem-friendly slug.
func Slugify(value string) string {
	slug := slugInvalidChars.ReplaceAllString(strings.ToLower(value), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return "story"
	}
	return slug
}

var titleCaser = cases.Title(language.English)

// DeriveNameFromURL creates a title-like name from the URL basename.
func DeriveNameFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "Story"
	}

	basename := path.Base(parsed.Path)
	if basename == "/" || basename == "." {
		basename = ""
	}
	if basename == "" {
		basename = parsed.Host
	}
	if basename == "" {
		basename = rawURL
	}

	if unescaped, err := url.PathUnescape(basename); err == nil {
		basename = unescaped
	}
	if idx := strings.LastIndex(basename, "."); idx > 0 {
		basename = basename[:idx]
	}

	candidate := strings.NewReplacer("-", " ", "_", " ").Replace(basename)
	candidate = strings.Join(strings.Fields(candidate), " ")

	if candidate == "" {
		candidate = parsed.Host
	}
	if candidate == "" {
		candidate = "Story"
	}

	return titleCaser.String(candidate)
}
