package sites

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestClassify verifies that representative URLs map to the expected site.
func TestClassify(t *testing.T) {
	tests := []struct {
		url  string
		site string
	}{
		{"https://www.literotica.com/s/some-story", "literotica"},
		{"https://literotica.com/series/se/12345", "literotica"},
		{"https://www.bdsmlibrary.com/stories/story.php?storyid=999", "bdsmlibrary"},
		{"https://www.eroticstories.com/story.php?story=1234", "eroticstories"},
		{"https://www.inkitt.com/stories/romance/123456", "inkitt"},
		{"https://www.patreon.com/collection/123456", "patreon"},
		{"https://mcstories.com/SomeStory/index.html", "mcstories"},
		{"https://www.wattpad.com/12345-example", "wattpad"},
		{"https://www.deviantart.com/someone/art/thing-123456", "deviantart"},
		{"https://archiveofourown.org/works/123456", "ao3"},
		{"https://www.fanfiction.net/s/123456/1/Some-Story", "fanfiction"},
	}
	for _, tt := range tests {
		p, ok := Classify(tt.url)
		require.True(t, ok, tt.url)
		assert.Equal(t, tt.site, p.Name, tt.url)
	}
}

// TestClassifyUnknown verifies that unsupported URLs report no match.
func TestClassifyUnknown(t *testing.T) {
	_, ok := Classify("https://example.com/some-story")
	assert.False(t, ok)

	// Patreon creator pages are not collections and stay unclassified.
	_, ok = Classify("https://www.patreon.com/somecreator")
	assert.False(t, ok)
}

// TestAllReturnsCopy verifies All hands out a copy that callers may reorder.
func TestAllReturnsCopy(t *testing.T) {
	a := All()
	require.NotEmpty(t, a)
	first := a[0].Name
	a[0] = Profile{}
	assert.Equal(t, first, All()[0].Name)
}
