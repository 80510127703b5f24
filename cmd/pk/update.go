package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rmartin/pubkeep/internal/bib"
	"github.com/rmartin/pubkeep/internal/config"
	"github.com/rmartin/pubkeep/internal/crossref"
	"github.com/rmartin/pubkeep/internal/normalize"
	"github.com/rmartin/pubkeep/internal/page"
	"github.com/rmartin/pubkeep/internal/pub"
	"github.com/rmartin/pubkeep/internal/scholar"
)

var updateSkipLanding bool

func init() {
	updateCmd.Flags().BoolVar(&updateSkipLanding, "skip-landing", false, "Skip per-entry detail-page fetches for landing links")
	rootCmd.AddCommand(updateCmd)
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Rebuild the publications page from the citation-index profile",
	Long: `Rebuild the publications page from the citation-index profile.

Crawls the profile listing, enriches each publication through the
metadata registry (DOI, full-text link, BibTeX), writes one bibliography
file per publication, applies the exclusion filters, and renders the
whole page grouped by year.`,
	RunE: runUpdate,
}

// UpdateResult is the summary printed after an update run.
type UpdateResult struct {
	Status         string `json:"status"`
	Fetched        int    `json:"fetched"`
	Matched        int    `json:"matched"`
	BibFiles       int    `json:"bib_files"`
	Removed        int    `json:"removed"`
	Kept           int    `json:"kept"`
	RegistryErrors int    `json:"registry_errors,omitempty"`
}

func runUpdate(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	if cfg.ProfileUser == "" {
		exitWithError(ExitConfigError, "profile_user is not configured; run 'pk config profile-user <id>'")
	}
	ctx := cmd.Context()

	profile := scholar.NewClient(cfg.ProfileUser,
		scholar.WithLanguage(cfg.ProfileLang),
		scholar.WithUserAgent(cfg.UserAgent()))
	registry := newRegistryClient(cfg)

	entries, err := profile.FetchPublications(ctx)
	if err != nil {
		exitWithError(ExitError, "fetching profile: %v", err)
	}

	result := UpdateResult{Status: "updated", Fetched: len(entries)}
	records := make([]pub.Record, 0, len(entries))
	for _, entry := range entries {
		rec, matched, wroteBib := buildRecord(ctx, cfg, profile, registry, entry, &result)
		if matched {
			result.Matched++
		}
		if wroteBib {
			result.BibFiles++
		}
		records = append(records, rec)
	}

	kept, removed := newFilter(cfg).Apply(records)
	result.Removed = removed
	result.Kept = len(kept)

	doc, err := page.RenderDocument(page.Site{Owner: cfg.Owner, BaseURL: cfg.BaseURL}, page.RenderList(kept))
	if err != nil {
		exitWithError(ExitError, "rendering page: %v", err)
	}
	mustWritePage(cfg, doc)

	if humanOutput {
		outputHuman("Fetched %d publications, %d matched in the registry\n", result.Fetched, result.Matched)
		outputHuman("Wrote %d bibliography files\n", result.BibFiles)
		outputHuman("Removed %d, kept %d\n", result.Removed, result.Kept)
		if result.RegistryErrors > 0 {
			outputHuman("Registry lookups failed for %d records\n", result.RegistryErrors)
		}
		return nil
	}
	return outputJSON(result)
}

// buildRecord turns one profile entry into a page record, enriched through
// the registry. Every lookup failure degrades to an empty field; a record
// is produced for the entry regardless.
func buildRecord(ctx context.Context, cfg *config.Config, profile *scholar.Client, registry *crossref.Client, entry scholar.Entry, result *UpdateResult) (pub.Record, bool, bool) {
	rec := pub.Record{
		Year:       entry.Year,
		Venue:      venueLine(entry),
		ProfileURL: entry.DetailURL,
		Badge:      pub.BadgeUnknown,
	}
	rec.Cite = citeLine(entry, rec.Venue)

	work, err := registry.BestMatch(ctx, entry.Title, entry.Year)
	if err != nil {
		result.RegistryErrors++
	}

	matched := work != nil
	if matched {
		rec.DOI = normalize.NormalizeDOI(work.DOI)
		if rec.DOI != "" {
			rec.DOIURL = "https://doi.org/" + rec.DOI
		}
		rec.PaperURL = normalize.CleanURL(work.FullTextURL())
	}

	if !updateSkipLanding && entry.DetailURL != "" {
		rec.LinkURL = normalize.CleanURL(profile.FetchLandingLink(ctx, entry.DetailURL))
	}

	wroteBib := writeBibFile(ctx, cfg, registry, entry, rec)
	if wroteBib {
		rec.BibURL = bib.DirName + "/" + bibFilename(entry, rec)
	}
	return rec, matched, wroteBib
}

// venueLine is the card header: venue and year when both are known.
func venueLine(entry scholar.Entry) string {
	switch {
	case entry.Venue != "" && entry.Year != "":
		return entry.Venue + ", " + entry.Year
	case entry.Venue != "":
		return entry.Venue
	default:
		return entry.Year
	}
}

// citeLine builds the citation in the page's fixed shape. The profile's
// truncation markers are dropped.
func citeLine(entry scholar.Entry, venue string) string {
	authors := strings.Trim(strings.ReplaceAll(entry.Authors, "...", ""), " ,")
	if authors == "" || entry.Title == "" {
		return strings.TrimSpace(entry.Title)
	}
	return authors + ", “" + entry.Title + ",” " + venue + "."
}

// writeBibFile stores the registry's BibTeX for the record, or a generated
// fallback entry when the registry has none.
func writeBibFile(ctx context.Context, cfg *config.Config, registry *crossref.Client, entry scholar.Entry, rec pub.Record) bool {
	content := ""
	if rec.DOI != "" {
		content, _ = registry.BibTeX(ctx, rec.DOI)
	}
	if content == "" {
		key := bib.FallbackKey(entry.Title, entry.Year, entry.Venue)
		content = bib.FallbackEntry(key, entry.Title, entry.Authors, entry.Year, entry.Venue)
	}
	if _, err := bib.WriteFile(cfg.SiteRoot, bibFilename(entry, rec), content); err != nil {
		return false
	}
	return true
}

// bibFilename names the bibliography file: the sanitized DOI when one is
// known, a stable content-derived key otherwise.
func bibFilename(entry scholar.Entry, rec pub.Record) string {
	if rec.DOI != "" {
		return bib.SanitizeDOI(rec.DOI) + ".bib"
	}
	return bib.FallbackKey(entry.Title, entry.Year, entry.Venue) + ".bib"
}
