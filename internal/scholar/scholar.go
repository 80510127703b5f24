// Package scholar fetches a citation-index profile: the paged publication
// listing and, per entry, the external landing link from the detail page.
package scholar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	// BaseURL is the citation-index host.
	BaseURL = "https://scholar.google.com"

	// PageSize is the profile listing page size.
	PageSize = 100

	// maxEntries bounds the paged crawl.
	maxEntries = 5000

	// requestsPerSecond keeps the crawl polite. The profile host throttles
	// aggressively, so this is deliberately slow.
	requestsPerSecond = 1.0
)

// ErrNetworkError indicates a connectivity problem with the profile host.
var ErrNetworkError = errors.New("network error communicating with profile host")

// Entry is one publication row of the profile listing.
type Entry struct {
	Title     string `json:"title"`
	Authors   string `json:"authors"`
	Venue     string `json:"venue"`
	Year      string `json:"year"`
	DetailURL string `json:"detail_url"`
}

// Client is a rate-limited HTTP client for the profile host.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	user       string
	lang       string
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithLanguage sets the profile interface language parameter.
func WithLanguage(hl string) Option {
	return func(c *Client) { c.lang = hl }
}

// WithUserAgent sets the User-Agent header sent on every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient creates a profile client for the given profile user ID.
func NewClient(user string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		baseURL:    BaseURL,
		user:       user,
		lang:       "en",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchPublications crawls the profile listing page by page until an empty
// page, then deduplicates by (normalized title, year), first occurrence wins.
func (c *Client) FetchPublications(ctx context.Context) ([]Entry, error) {
	var all []Entry
	for start := 0; start < maxEntries; start += PageSize {
		url := fmt.Sprintf("%s/citations?user=%s&hl=%s&cstart=%d&pagesize=%d",
			c.baseURL, c.user, c.lang, start, PageSize)

		body, err := c.get(ctx, url)
		if err != nil {
			return nil, err
		}

		entries, err := parseProfileRows(body, c.baseURL)
		if err != nil {
			return nil, err
		}
		if len(entries) == 0 {
			break
		}
		all = append(all, entries...)
	}

	return dedupEntries(all), nil
}

// FetchLandingLink fetches the detail page of one entry and extracts the
// publisher landing link. Best-effort: any failure yields "".
func (c *Client) FetchLandingLink(ctx context.Context, detailURL string) string {
	body, err := c.get(ctx, detailURL)
	if err != nil {
		return ""
	}
	link, err := parseLandingLink(body)
	if err != nil {
		return ""
	}
	return link
}

func (c *Client) get(ctx context.Context, url string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("%w: HTTP %d fetching %s", ErrNetworkError, resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	return string(body), nil
}
