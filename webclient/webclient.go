// Package webclient wraps net/http with the request shaping story sites
// expect: browser-like headers, a timeout, and a randomized delay between
// page fetches so a download session does not hammer a site.
package webclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/encoding/charmap"
)

// DecodeWindows1252 reinterprets a response body served as cp1252. Older
// sites declare no charset and break on smart quotes when read as UTF-8.
func DecodeWindows1252(body []byte) string {
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(body)
	if err != nil {
		return string(body)
	}
	return string(decoded)
}

// HTTPError represents an HTTP error with status code
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d for %s", e.StatusCode, e.URL)
}

// defaultHeaders imitate a desktop Firefox so sites serve the same HTML a
// reader would see.
var defaultHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:124.0) Gecko/20100101 Firefox/124.0",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.5",
}

// Config controls a Client. The zero value is usable; Timeout and the delay
// bounds fall back to defaults.
type Config struct {
	Timeout  time.Duration
	MinDelay time.Duration
	MaxDelay time.Duration

	// Cookies are sent with every request. Needed for gated sites.
	Cookies map[string]string

	// Jar, when set, gives the session a full cookie jar. Callers that
	// export browser sessions build one and pass it in.
	Jar http.CookieJar

	// Headers override or extend the default browser headers.
	Headers map[string]string

	// NoDelay disables inter-request sleeping. Tests use this.
	NoDelay bool
}

// Client fetches pages for a single download session. It is not safe for
// concurrent use; each story download owns one client.
type Client struct {
	httpClient *http.Client
	cfg        Config
	rng        *rand.Rand
	fetched    bool
}

// New builds a client from cfg, filling in defaults for unset fields.
func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MinDelay == 0 {
		cfg.MinDelay = 200 * time.Millisecond
	}
	if cfg.MaxDelay == 0 {
		cfg.MaxDelay = 1200 * time.Millisecond
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout, Jar: cfg.Jar},
		cfg:        cfg,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// pause sleeps a random interval before every request after the first, so a
// burst of chapter fetches looks like a reader paging through the story.
func (c *Client) pause(ctx context.Context) error {
	if c.cfg.NoDelay || !c.fetched {
		c.fetched = true
		return nil
	}
	span := c.cfg.MaxDelay - c.cfg.MinDelay
	d := c.cfg.MinDelay
	if span > 0 {
		d += time.Duration(c.rng.Int63n(int64(span)))
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (c *Client) do(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", url, err)
	}
	for k, v := range defaultHeaders {
		req.Header.Set(k, v)
	}
	for k, v := range c.cfg.Headers {
		req.Header.Set(k, v)
	}
	for name, value := range c.cfg.Cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: url}
	}
	return resp, nil
}

// FetchPage downloads an HTML page, pausing first to pace the session.
func (c *Client) FetchPage(ctx context.Context, url string) ([]byte, error) {
	if err := c.pause(ctx); err != nil {
		return nil, err
	}
	return c.FetchBytes(ctx, url)
}

// FetchBytes downloads a URL without the inter-page delay. API endpoints and
// asset downloads use this directly.
func (c *Client) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.do(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body from %s: %w", url, err)
	}
	return body, nil
}

// FetchJSON downloads a URL and decodes the body into out. No inter-page
// delay applies; JSON endpoints are paginated APIs, not reader-visible pages.
func (c *Client) FetchJSON(ctx context.Context, url string, out interface{}) error {
	body, err := c.FetchBytes(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding JSON from %s: %w", url, err)
	}
	return nil
}

// FetchDocument downloads a page and parses it with goquery.
func (c *Client) FetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	body, err := c.FetchPage(ctx, url)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML from %s: %w", url, err)
	}
	return doc, nil
}
