package crossref

import (
	"strconv"
	"strings"
)

// Work is one candidate record returned by the metadata registry.
type Work struct {
	DOI    string   `json:"DOI"`
	Titles []string `json:"title"`
	Author []Author `json:"author"`
	Issued Issued   `json:"issued"`
	Links  []Link   `json:"link"`
}

// Author is one structured author entry.
type Author struct {
	Given  string `json:"given"`
	Family string `json:"family"`
}

// Issued carries the registry's date-parts encoding of the issue date.
type Issued struct {
	DateParts [][]int `json:"date-parts"`
}

// Link is an auxiliary full-text link.
type Link struct {
	URL         string `json:"URL"`
	ContentType string `json:"content-type"`
}

// worksResponse is the registry's query envelope.
type worksResponse struct {
	Message struct {
		Items []Work `json:"items"`
	} `json:"message"`
}

// workResponse is the registry's single-work envelope.
type workResponse struct {
	Message Work `json:"message"`
}

// Title returns the work's primary title, or "".
func (w Work) Title() string {
	if len(w.Titles) == 0 {
		return ""
	}
	return w.Titles[0]
}

// IssuedYear returns the issue year as a 4-digit string, or "".
func (w Work) IssuedYear() string {
	if len(w.Issued.DateParts) == 0 || len(w.Issued.DateParts[0]) == 0 {
		return ""
	}
	y := w.Issued.DateParts[0][0]
	if y <= 0 {
		return ""
	}
	return strconv.Itoa(y)
}

// AuthorNames returns "Given Family" strings for every structured author,
// skipping entries that are empty on both sides.
func (w Work) AuthorNames() []string {
	var names []string
	for _, a := range w.Author {
		name := strings.TrimSpace(strings.TrimSpace(a.Given) + " " + strings.TrimSpace(a.Family))
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

// FullTextURL picks the most useful auxiliary link: the first that looks
// like a PDF, else the first link at all.
func (w Work) FullTextURL() string {
	for _, l := range w.Links {
		if l.URL == "" {
			continue
		}
		if strings.Contains(strings.ToLower(l.URL), "pdf") {
			return l.URL
		}
	}
	for _, l := range w.Links {
		if l.URL != "" {
			return l.URL
		}
	}
	return ""
}
