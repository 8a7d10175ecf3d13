// Package sites maps story URLs to site profiles. Profiles are data: adding
// support for a new site means adding one entry here plus its discoverer and
// extractor implementations.
package sites

import "regexp"

// Profile describes one supported site: a URL pattern and the agent names
// that handle discovery, extraction, and packaging for it. Empty agent names
// mean the generic "auto" strategy.
type Profile struct {
	Pattern       *regexp.Regexp
	Name          string
	FullName      string
	Discoverer    string
	Extractor     string
	Packager      string
	Documentation string
}

// profiles are tried in order; the first matching pattern wins. Order is the
// tie-break, so more specific sites must come before broader ones.
var profiles = []Profile{
	{
		Pattern:       regexp.MustCompile(`(?i)https?://(?:www\.)?literotica\.com/.*`),
		Name:          "literotica",
		FullName:      "Literotica",
		Discoverer:    "literotica",
		Extractor:     "literotica",
		Documentation: "Stories hosted on literotica.com.",
	},
	{
		Pattern:       regexp.MustCompile(`(?i)https?://(?:www\.)?bdsmlibrary\.com/stories/.*`),
		Name:          "bdsmlibrary",
		FullName:      "BDSM Library",
		Discoverer:    "bdsmlibrary",
		Extractor:     "bdsmlibrary",
		Documentation: "Stories hosted on bdsmlibrary.com.",
	},
	{
		Pattern:       regexp.MustCompile(`(?i)https?://(?:www\.)?eroticstories\.com/.*`),
		Name:          "eroticstories",
		FullName:      "EroticStories",
		Discoverer:    "eroticstories",
		Extractor:     "eroticstories",
		Documentation: "Stories hosted on eroticstories.com, including multi-part stories.",
	},
	{
		Pattern:       regexp.MustCompile(`(?i)https?://(?:www\.)?inkitt\.com/stories/.*`),
		Name:          "inkitt",
		FullName:      "Inkitt",
		Discoverer:    "inkitt",
		Extractor:     "inkitt",
		Documentation: "Stories hosted on inkitt.com.",
	},
	{
		Pattern:       regexp.MustCompile(`(?i)https?://(?:www\.)?patreon\.com/collection/\d+`),
		Name:          "patreon",
		FullName:      "Patreon",
		Discoverer:    "patreon",
		Extractor:     "patreon",
		Documentation: "Public Patreon collections (requires cookies for gated posts).",
	},
	{
		Pattern:       regexp.MustCompile(`(?i)https?://(?:www\.)?mcstories\.com/.*`),
		Name:          "mcstories",
		FullName:      "The Erotic Mind-Control Story Archive",
		Discoverer:    "mcstories",
		Extractor:     "mcstories",
		Documentation: "Stories hosted on mcstories.com.",
	},
	{
		Pattern:       regexp.MustCompile(`(?i)https?://(?:www\.)?wattpad\.com/.*`),
		Name:          "wattpad",
		FullName:      "Wattpad",
		Discoverer:    "wattpad",
		Extractor:     "wattpad",
		Documentation: "Stories hosted on wattpad.com.",
	},
	{
		Pattern:       regexp.MustCompile(`(?i)https?://(?:www\.)?deviantart\.com/.*`),
		Name:          "deviantart",
		FullName:      "DeviantArt",
		Discoverer:    "deviantart",
		Extractor:     "deviantart",
		Documentation: "Literature deviations and galleries on deviantart.com.",
	},
	{
		Pattern:       regexp.MustCompile(`(?i)https?://(?:www\.)?archiveofourown\.org/.*`),
		Name:          "ao3",
		FullName:      "Archive of Our Own",
		Discoverer:    "ao3",
		Extractor:     "ao3",
		Documentation: "Stories hosted on archiveofourown.org.",
	},
	{
		Pattern:       regexp.MustCompile(`(?i)https?://(?:www\.)?fanfiction\.net/.*`),
		Name:          "fanfiction",
		FullName:      "FanFiction.Net",
		Discoverer:    "fanfiction",
		Extractor:     "fanfiction",
		Documentation: "Stories hosted on fanfiction.net.",
	},
}

// Classify returns the first profile whose pattern matches the URL. The
// second return value is false when no profile matches, in which case the
// generic strategies apply.
func Classify(url string) (Profile, bool) {
	for _, p := range profiles {
		if p.Pattern.MatchString(url) {
			return p, true
		}
	}
	return Profile{}, false
}

// All returns the registered profiles in priority order.
func All() []Profile {
	out := make([]Profile, len(profiles))
	copy(out, profiles)
	return out
}
