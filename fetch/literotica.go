package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/zoec98/story-scraper/discover"
	"github.com/zoec98/story-scraper/webclient"
)

// literoticaChapter assembles one logical chapter from its physical pages.
// Pages are requested as ?page=N until the site answers 404; each page is
// prefixed with a comment marker so the transform phase can see the seams.
func literoticaChapter(ctx context.Context, client *webclient.Client, chapterURL string) ([]byte, error) {
	parsed, err := url.Parse(chapterURL)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(strings.ToLower(parsed.Path), "/s/") {
		return client.FetchPage(ctx, chapterURL)
	}

	canonical := discover.LiteroticaCanonicalURL(chapterURL)
	var assembled []byte
	for page := 1; ; page++ {
		pageURL := canonical
		if page > 1 {
			pageURL = withPageParameter(canonical, page)
		}

		content, err := client.FetchPage(ctx, pageURL)
		if err != nil {
			var httpErr *webclient.HTTPError
			// The page past the last one 404s; a 404 on the first page
			// means the chapter itself is gone.
			if page > 1 && errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound {
				break
			}
			return nil, err
		}
		assembled = append(assembled, []byte(fmt.Sprintf("<!-- Literotica page %d %s -->\n", page, pageURL))...)
		assembled = append(assembled, content...)
	}
	return assembled, nil
}

func withPageParameter(rawURL string, page int) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := parsed.Query()
	q.Set("page", strconv.Itoa(page))
	parsed.RawQuery = q.Encode()
	return parsed.String()
}
