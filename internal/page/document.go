package page

import (
	"html/template"
	"strings"
	"time"
)

// Site carries the page chrome values for a full document render.
type Site struct {
	Owner   string // person the listing belongs to
	BaseURL string // canonical site root, e.g. https://example.github.io
}

// documentTmpl is the full-page skeleton written by the update path. The
// repair path never touches the chrome; it only replaces the List section.
var documentTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>Publications – {{.Owner}}</title>
  <meta name="description" content="Publications by {{.Owner}} with DOI and BibTeX links." />
  <meta name="robots" content="index, follow" />
  <meta name="author" content="{{.Owner}}" />
  <link rel="canonical" href="{{.Canonical}}" />
  <link rel="stylesheet" href="styles.css" />
</head>
<body>

<header>
  <div class="topbar">
    <div class="brand">
      <p class="brand-title">{{.Owner}}</p>
      <p class="brand-subtitle">Academic homepage</p>
    </div>
    <nav class="nav" aria-label="Primary">
      <a href="index.html">Home</a>
      <a href="publications.html" aria-current="page">Publications</a>
      <a href="projects.html">Projects</a>
    </nav>
  </div>
</header>

<main>
  <div class="hero">
    <div>
      <h1>Publications</h1>
    </div>
  </div>

  <section>
    <h2>List</h2>
{{.List}}  </section>
</main>

<footer>
  <div class="footer-inner">
    <p>© {{.Year}} {{.Owner}}</p>
    <p class="muted">Static HTML + CSS.</p>
  </div>
</footer>

</body>
</html>
`))

// RenderDocument produces a complete publications page around the given
// rendered list fragment.
func RenderDocument(site Site, list string) (string, error) {
	data := struct {
		Owner     string
		Canonical string
		Year      int
		List      template.HTML
	}{
		Owner:     site.Owner,
		Canonical: strings.TrimRight(site.BaseURL, "/") + "/publications.html",
		Year:      time.Now().UTC().Year(),
		List:      template.HTML(list),
	}

	var b strings.Builder
	if err := documentTmpl.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
