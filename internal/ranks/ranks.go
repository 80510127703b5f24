// Package ranks builds the quality-badge table from the curated external
// rank page. The page is free-form HTML whose entries follow the textual
// pattern `[<label>]…<b>"<title>"</b>`, so extraction is a pattern scan over
// the raw document rather than a structural parse.
package ranks

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/rmartin/pubkeep/internal/normalize"
)

// ErrNetworkError indicates the rank page could not be fetched.
var ErrNetworkError = errors.New("network error fetching rank page")

// Table maps normalized titles to quality-badge labels. Read-only after
// construction.
type Table map[string]string

var (
	entryRe = regexp.MustCompile(`(?s)\[(Journal\s+Q[1-4]|Journal|Class\s+[1-3])\]` +
		`.*?<b>\s*(?:&quot;|")\s*(.*?)\s*(?:&quot;|")\s*</b>`)
	tagRe      = regexp.MustCompile(`<.*?>`)
	mdLinkRe   = regexp.MustCompile(`\[(.*?)\]\([^)]*\)`)
	quartileRe = regexp.MustCompile(`^Q[1-4]$`)
)

// Parse scans one rank page for labeled entries. Entries whose label does
// not resolve to a badge (a bare "[Journal]" tag) are skipped.
func Parse(doc string) Table {
	table := make(Table)

	for _, m := range entryRe.FindAllStringSubmatch(doc, -1) {
		label := strings.TrimSpace(m[1])
		title := strings.TrimSpace(tagRe.ReplaceAllString(m[2], ""))
		// Markdown-style links keep only the visible text.
		title = mdLinkRe.ReplaceAllString(title, "$1")
		title = strings.TrimSpace(html.UnescapeString(title))

		badge := badgeForLabel(label)
		key := normalize.Key(title)
		if key == "" || badge == "" {
			continue
		}
		table[key] = badge
	}

	return table
}

// badgeForLabel maps a recognized entry label to its badge, or "".
func badgeForLabel(label string) string {
	switch {
	case strings.HasPrefix(label, "Journal Q"):
		q := strings.TrimPrefix(label, "Journal ")
		if quartileRe.MatchString(q) {
			return q
		}
	case strings.HasPrefix(label, "Class"):
		return strings.Join(strings.Fields(label), " ")
	}
	return ""
}

// Fetch downloads the rank page and parses it into a Table.
func Fetch(ctx context.Context, client *http.Client, url, userAgent string) (Table, error) {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d", ErrNetworkError, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading rank page: %w", err)
	}

	return Parse(string(body)), nil
}
