package transform

import (
	"bytes"
	"encoding/json"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/zoec98/story-scraper/discover"
	"github.com/zoec98/story-scraper/storydir"
)

const deviantArtTimeLayout = "2006-01-02T15:04:05-0700"

var (
	deviantArtStateRe       = regexp.MustCompile(`window\.__INITIAL_STATE__\s*=\s*JSON\.parse\("((?:[^"\\]|\\.)*)"\)`)
	deviantArtHookSelectors = []string{
		`[data-hook="deviation_body"]`,
		`[data-hook="deviation_description"]`,
		`[data-hook="deviation_content"]`,
	}
)

// DeviantArt prefers the Literature Text block of a deviation page, falling
// back to the deviation body hooks and then the generic cascade. Files
// convert in publication order and each pass refreshes a metadata sidecar
// keyed by deviation id.
type DeviantArt struct {
	*Auto
	deviations map[string]deviationMetadata
}

func NewDeviantArt() *DeviantArt {
	return &DeviantArt{Auto: NewAuto(), deviations: make(map[string]deviationMetadata)}
}

type deviationMetadata struct {
	Title         string          `json:"title,omitempty"`
	PublishedTime string          `json:"publishedTime,omitempty"`
	Stats         json.RawMessage `json:"stats,omitempty"`
}

// deviationState is the slice of __INITIAL_STATE__ the transformer reads.
type deviationState struct {
	Entities struct {
		Deviation map[string]struct {
			Title         string          `json:"title"`
			PublishedTime string          `json:"publishedTime"`
			Stats         json.RawMessage `json:"stats"`
		} `json:"deviation"`
	} `json:"@@entities"`
}

func (d *DeviantArt) Extract(raw []byte) (Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return Document{}, err
	}

	d.recordDeviations(string(raw))

	if literature := literatureTextDiv(doc); literature != nil {
		htmlStr, err := goquery.OuterHtml(literature)
		if err != nil {
			return Document{}, err
		}
		body, err := d.render(htmlStr)
		if err != nil {
			return Document{}, err
		}
		return Document{Heading: deviantArtTitle(doc), Body: body}, nil
	}

	if hooked := pickLargestText(doc.Find(strings.Join(deviantArtHookSelectors, ", "))); hooked != nil {
		htmlStr, err := goquery.OuterHtml(hooked)
		if err != nil {
			return Document{}, err
		}
		body, err := d.render(htmlStr)
		if err != nil {
			return Document{}, err
		}
		return Document{Body: body}, nil
	}

	return d.extractFrom(doc)
}

// OrderFiles sorts chapters by their publication timestamp. Files without a
// parseable timestamp sort last; ties fall back to the filename.
func (d *DeviantArt) OrderFiles(files []string) []string {
	type entry struct {
		file   string
		when   time.Time
		parsed bool
	}
	entries := make([]entry, 0, len(files))
	for _, file := range files {
		e := entry{file: file}
		if raw, err := os.ReadFile(file); err == nil {
			if published := earliestPublishedTime(string(raw)); published != "" {
				if when, err := time.Parse(deviantArtTimeLayout, published); err == nil {
					e.when = when
					e.parsed = true
				}
			}
		}
		entries = append(entries, e)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.parsed != b.parsed {
			return a.parsed
		}
		if a.parsed && !a.when.Equal(b.when) {
			return a.when.Before(b.when)
		}
		return a.file < b.file
	})

	ordered := make([]string, len(entries))
	for i, e := range entries {
		ordered[i] = e.file
	}
	return ordered
}

// Finalize merges the deviations seen during this pass into the metadata
// sidecar. Entries from earlier runs survive unless the same id reappears.
func (d *DeviantArt) Finalize(dir *storydir.Dir) error {
	if len(d.deviations) == 0 {
		return nil
	}
	merged := make(map[string]deviationMetadata)
	if err := dir.ReadMetadata(&merged); err != nil {
		return err
	}
	for id, meta := range d.deviations {
		merged[id] = meta
	}
	return dir.WriteMetadata(merged)
}

func (d *DeviantArt) recordDeviations(htmlText string) {
	state := loadDeviationState(htmlText)
	if state == nil {
		return
	}
	for id, deviation := range state.Entities.Deviation {
		d.deviations[id] = deviationMetadata{
			Title:         deviation.Title,
			PublishedTime: deviation.PublishedTime,
			Stats:         deviation.Stats,
		}
	}
}

func loadDeviationState(htmlText string) *deviationState {
	m := deviantArtStateRe.FindStringSubmatch(htmlText)
	if m == nil {
		return nil
	}
	decoded, err := discover.UnescapeEmbeddedJSON(m[1])
	if err != nil {
		return nil
	}
	var state deviationState
	if err := json.Unmarshal([]byte(decoded), &state); err != nil {
		return nil
	}
	return &state
}

// earliestPublishedTime returns the publication timestamp of the page's
// deviation. Pages embed exactly one; the smallest wins if several appear.
func earliestPublishedTime(htmlText string) string {
	state := loadDeviationState(htmlText)
	if state == nil {
		return ""
	}
	earliest := ""
	for _, deviation := range state.Entities.Deviation {
		if deviation.PublishedTime == "" {
			continue
		}
		if earliest == "" || deviation.PublishedTime < earliest {
			earliest = deviation.PublishedTime
		}
	}
	return earliest
}

// literatureTextDiv finds the content div under the "Literature Text"
// section heading.
func literatureTextDiv(doc *goquery.Document) *goquery.Selection {
	var result *goquery.Selection
	doc.Find("h2").EachWithBreak(func(_ int, heading *goquery.Selection) bool {
		if strings.TrimSpace(heading.Text()) != "Literature Text" {
			return true
		}
		section := heading.Closest("section")
		if section.Length() == 0 {
			return true
		}
		div := section.ChildrenFiltered("div").First()
		if div.Length() == 0 {
			return true
		}
		result = div
		return false
	})
	return result
}

// deviantArtTitle pulls the story title out of the og:title metadata,
// dropping the "by author on DeviantArt" suffix.
func deviantArtTitle(doc *goquery.Document) string {
	content, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content")
	if !ok {
		return ""
	}
	title, _ := discover.SplitDeviantArtTitle(strings.TrimSpace(content))
	return title
}
