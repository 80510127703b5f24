package crossref

import (
	"context"
	"fmt"
	"net/url"
	"testing"
)

// fakeCache serves canned responses so client tests never touch the network.
type fakeCache struct {
	entries map[string][]byte
	puts    int
}

func (f *fakeCache) Get(key string) ([]byte, bool) {
	body, ok := f.entries[key]
	return body, ok
}

func (f *fakeCache) Put(key string, body []byte) error {
	f.puts++
	return nil
}

const fixtureWorks = `{
  "message": {
    "items": [
      {
        "DOI": "10.1000/other",
        "title": ["A Completely Different Topic"],
        "issued": {"date-parts": [[2022]]}
      },
      {
        "DOI": "10.1000/xyz",
        "title": ["A Study of Things"],
        "author": [
          {"given": "Jane", "family": "Smith"},
          {"given": "", "family": "Jones"},
          {"given": "", "family": ""}
        ],
        "issued": {"date-parts": [[2022, 3]]},
        "link": [
          {"URL": "https://publisher.example/article", "content-type": "text/html"},
          {"URL": "https://publisher.example/article.pdf", "content-type": "unspecified"}
        ]
      }
    ]
  }
}`

func queryKey(baseURL, title string) string {
	return fmt.Sprintf("%s/works?rows=%d&query.bibliographic=%s", baseURL, queryRows, url.QueryEscape(title))
}

func newCachedClient(t *testing.T, title, body string) *Client {
	t.Helper()
	cache := &fakeCache{entries: map[string][]byte{
		queryKey("https://registry.test", title): []byte(body),
	}}
	return NewClient(WithBaseURL("https://registry.test"), WithCache(cache))
}

func TestBestMatchSelectsByTitle(t *testing.T) {
	c := newCachedClient(t, "A Study of Things", fixtureWorks)

	work, err := c.BestMatch(context.Background(), "A Study of Things", "2022")
	if err != nil {
		t.Fatalf("BestMatch: %v", err)
	}
	if work == nil {
		t.Fatal("expected a match")
	}
	if work.DOI != "10.1000/xyz" {
		t.Errorf("DOI = %q, want the title match, not the first item", work.DOI)
	}
}

func TestBestMatchNoneBelowThreshold(t *testing.T) {
	c := newCachedClient(t, "unrelated query words entirely", fixtureWorks)

	work, err := c.BestMatch(context.Background(), "unrelated query words entirely", "")
	if err != nil {
		t.Fatalf("BestMatch: %v", err)
	}
	if work != nil {
		t.Errorf("work = %+v, want nil below threshold", work)
	}
}

func TestBestMatchEmptyItems(t *testing.T) {
	c := newCachedClient(t, "anything", `{"message":{"items":[]}}`)

	work, err := c.BestMatch(context.Background(), "anything", "")
	if err != nil {
		t.Fatalf("BestMatch: %v", err)
	}
	if work != nil {
		t.Error("empty candidate list must yield no match")
	}
}

func TestBestMatchInvalidJSON(t *testing.T) {
	c := newCachedClient(t, "anything", `<html>rate limited</html>`)

	if _, err := c.BestMatch(context.Background(), "anything", ""); err == nil {
		t.Error("expected an invalid-response error")
	}
}

func TestAuthorsFromBestMatch(t *testing.T) {
	c := newCachedClient(t, "A Study of Things", fixtureWorks)

	names, err := c.Authors(context.Background(), "A Study of Things", "2022")
	if err != nil {
		t.Fatalf("Authors: %v", err)
	}
	want := []string{"Jane Smith", "Jones"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestAuthorsNoMatch(t *testing.T) {
	c := newCachedClient(t, "unrelated query words entirely", fixtureWorks)

	names, err := c.Authors(context.Background(), "unrelated query words entirely", "")
	if err != nil {
		t.Fatalf("Authors: %v", err)
	}
	if names != nil {
		t.Errorf("names = %v, want nil when nothing matches", names)
	}
}

func TestWorkAuthorNames(t *testing.T) {
	w := Work{Author: []Author{
		{Given: "Jane", Family: "Smith"},
		{Given: "", Family: "Jones"},
		{Given: "", Family: ""},
	}}
	names := w.AuthorNames()
	want := []string{"Jane Smith", "Jones"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestWorkIssuedYear(t *testing.T) {
	tests := []struct {
		name string
		work Work
		want string
	}{
		{"year and month", Work{Issued: Issued{DateParts: [][]int{{2022, 3}}}}, "2022"},
		{"no date parts", Work{}, ""},
		{"empty inner list", Work{Issued: Issued{DateParts: [][]int{{}}}}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.work.IssuedYear(); got != tt.want {
				t.Errorf("IssuedYear() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWorkFullTextURL(t *testing.T) {
	w := Work{Links: []Link{
		{URL: "https://publisher.example/article"},
		{URL: "https://publisher.example/article.pdf"},
	}}
	if got := w.FullTextURL(); got != "https://publisher.example/article.pdf" {
		t.Errorf("FullTextURL() = %q, want the PDF-looking link", got)
	}

	w = Work{Links: []Link{{URL: "https://publisher.example/article"}}}
	if got := w.FullTextURL(); got != "https://publisher.example/article" {
		t.Errorf("FullTextURL() = %q, want first link fallback", got)
	}

	if got := (Work{}).FullTextURL(); got != "" {
		t.Errorf("FullTextURL() = %q, want empty", got)
	}
}
