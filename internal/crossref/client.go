// Package crossref queries the metadata registry by free-text title and
// fetches per-DOI BibTeX. It is the record enrichment source consumed by the
// reconciler; every lookup failure degrades to "no data".
package crossref

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/rmartin/pubkeep/internal/match"
)

const (
	// BaseURL is the registry API root.
	BaseURL = "https://api.crossref.org"

	// queryRows is the number of ranked candidates requested per query.
	queryRows = 5

	// requestsPerSecond respects the registry's polite-pool guidance.
	requestsPerSecond = 2.0
)

// ResponseCache stores raw query responses between runs. Implemented by the
// cache package; nil disables caching.
type ResponseCache interface {
	Get(key string) ([]byte, bool)
	Put(key string, body []byte) error
}

// Client is a rate-limited HTTP client for the metadata registry.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	userAgent  string
	cache      ResponseCache
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

// WithUserAgent sets the User-Agent header. The registry asks that it carry
// a contact address.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithCache stores raw query responses so unchanged reruns skip the network.
func WithCache(cache ResponseCache) Option {
	return func(c *Client) { c.cache = cache }
}

// NewClient creates a registry client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		baseURL:    BaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BestMatch queries the registry by title and selects the candidate whose
// title best matches, with a year-agreement bonus. Returns (nil, nil) when
// nothing clears the acceptance threshold.
func (c *Client) BestMatch(ctx context.Context, title, year string) (*Work, error) {
	queryURL := fmt.Sprintf("%s/works?rows=%d&query.bibliographic=%s",
		c.baseURL, queryRows, url.QueryEscape(title))

	body, err := c.getCached(ctx, queryURL)
	if err != nil {
		return nil, err
	}

	var resp worksResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	items := resp.Message.Items
	candidates := make([]match.Candidate, len(items))
	for i, w := range items {
		candidates[i] = match.Candidate{Title: w.Title(), Year: w.IssuedYear()}
	}

	best, ok := match.Best(title, year, candidates)
	if !ok {
		return nil, nil
	}
	return &items[best.Index], nil
}

// GetWork fetches the registry record for a known DOI. Returns (nil, nil)
// when the registry does not know the identifier.
func (c *Client) GetWork(ctx context.Context, doi string) (*Work, error) {
	u := fmt.Sprintf("%s/works/%s", c.baseURL, url.PathEscape(doi))

	body, status, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status != http.StatusOK {
		return nil, &APIError{StatusCode: status, URL: u}
	}

	var resp workResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return &resp.Message, nil
}

// Authors resolves the author list of the best-matching work for a title.
// Returns (nil, nil) when no work clears the acceptance threshold; this is
// the reconciler's registry author source.
func (c *Client) Authors(ctx context.Context, title, year string) ([]string, error) {
	work, err := c.BestMatch(ctx, title, year)
	if err != nil {
		return nil, err
	}
	if work == nil {
		return nil, nil
	}
	return work.AuthorNames(), nil
}

// BibTeX fetches the registry's BibTeX rendering of a DOI. Returns "" (no
// error) when the registry has none.
func (c *Client) BibTeX(ctx context.Context, doi string) (string, error) {
	u := fmt.Sprintf("%s/works/%s/transform/application/x-bibtex",
		c.baseURL, url.PathEscape(doi))

	body, status, err := c.get(ctx, u)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", nil
	}
	s := strings.TrimSpace(string(body))
	if s == "" {
		return "", nil
	}
	return s + "\n", nil
}

func (c *Client) getCached(ctx context.Context, u string) ([]byte, error) {
	if c.cache != nil {
		if body, ok := c.cache.Get(u); ok {
			return body, nil
		}
	}

	body, status, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &APIError{StatusCode: status, URL: u}
	}

	if c.cache != nil {
		// Cache failures must not fail the lookup.
		_ = c.cache.Put(u, body)
	}
	return body, nil
}

func (c *Client) get(ctx context.Context, u string) ([]byte, int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("reading response: %w", err)
	}
	return body, resp.StatusCode, nil
}
