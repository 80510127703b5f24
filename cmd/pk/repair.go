package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/rmartin/pubkeep/internal/bib"
	"github.com/rmartin/pubkeep/internal/cache"
	"github.com/rmartin/pubkeep/internal/config"
	"github.com/rmartin/pubkeep/internal/crossref"
	"github.com/rmartin/pubkeep/internal/page"
	"github.com/rmartin/pubkeep/internal/pub"
	"github.com/rmartin/pubkeep/internal/ranks"
	"github.com/rmartin/pubkeep/internal/reconcile"
)

var repairOffline bool

func init() {
	repairCmd.Flags().BoolVar(&repairOffline, "offline", false, "Skip the rank page and registry; repair from local data only")
	rootCmd.AddCommand(repairCmd)
}

var repairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Repair the publications page in place",
	Long: `Repair the publications page in place.

Parses the existing publication cards, repairs text encoding damage,
resolves quality badges against the rank table and curated overrides,
expands truncated author lists from bibliography files or the registry,
drops redundant links and known-bad records, and re-renders the List
section. Markup outside the List section is left byte-for-byte intact.`,
	RunE: runRepair,
}

// RepairResult is the summary printed after a repair run.
type RepairResult struct {
	Status         string `json:"status"`
	Parsed         int    `json:"parsed"`
	SkippedBlocks  int    `json:"skipped_blocks"`
	RankEntries    int    `json:"rank_entries"`
	Removed        int    `json:"removed"`
	Duplicates     int    `json:"duplicates"`
	Kept           int    `json:"kept"`
	RegistryErrors int    `json:"registry_errors,omitempty"`
}

func runRepair(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	doc := mustReadPage(cfg)
	ctx := cmd.Context()

	records, stats, err := page.ParseCards(doc)
	if err != nil {
		exitWithError(ExitDataError, "parsing page: %v", err)
	}

	rankTable := mustFetchRanks(ctx, cfg)
	r := newReconciler(cfg, rankTable)

	resolved := make([]pub.Record, len(records))
	for i, rec := range records {
		resolved[i] = r.Resolve(ctx, rec)
	}

	kept, removed := newFilter(cfg).Apply(resolved)
	kept, duplicates := reconcile.Dedup(kept)

	updated, err := page.ReplaceList(doc, page.RenderList(kept))
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	if updated != doc {
		mustWritePage(cfg, updated)
	}

	result := RepairResult{
		Status:         "repaired",
		Parsed:         stats.Cards,
		SkippedBlocks:  stats.Skipped,
		RankEntries:    len(rankTable),
		Removed:        removed,
		Duplicates:     duplicates,
		Kept:           len(kept),
		RegistryErrors: r.Stats().RegistryErrors,
	}
	if humanOutput {
		outputHuman("Parsed %d cards (%d blocks skipped)\n", result.Parsed, result.SkippedBlocks)
		outputHuman("Rank table: %d entries\n", result.RankEntries)
		outputHuman("Removed %d, deduplicated %d, kept %d\n", result.Removed, result.Duplicates, result.Kept)
		if result.RegistryErrors > 0 {
			outputHuman("Registry lookups failed for %d records\n", result.RegistryErrors)
		}
		return nil
	}
	return outputJSON(result)
}

// mustFetchRanks loads the rank table. Fetch failures degrade to an empty
// table: badges then keep their current values.
func mustFetchRanks(ctx context.Context, cfg *config.Config) ranks.Table {
	if repairOffline || cfg.RankURL == "" {
		return ranks.Table{}
	}
	table, err := ranks.Fetch(ctx, http.DefaultClient, cfg.RankURL, cfg.UserAgent())
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: rank page unavailable: %v\n", err)
		return ranks.Table{}
	}
	return table
}

// newReconciler wires a Reconciler from the config: curated overrides, the
// fetched rank table, local bibliography files, and the registry (unless
// offline).
func newReconciler(cfg *config.Config, rankTable ranks.Table) *reconcile.Reconciler {
	opts := reconcile.Options{
		Ranks:      rankTable,
		TitleRanks: cfg.TitleRanks,
		DOIRanks:   cfg.DOIRanks,
		CutoffYear: cfg.CutoffYear,
		BibAuthors: func(href string) []string {
			return bib.AuthorsFromHref(cfg.SiteRoot, href)
		},
	}
	if !repairOffline {
		opts.Registry = newRegistryClient(cfg)
	}
	return reconcile.New(opts)
}

// newRegistryClient builds the registry client, with the SQLite response
// cache when one is configured.
func newRegistryClient(cfg *config.Config) *crossref.Client {
	opts := []crossref.Option{crossref.WithUserAgent(cfg.UserAgent())}
	if cfg.CacheFile != "" {
		if c, err := cache.Open(cfg.CacheFile); err == nil {
			opts = append(opts, crossref.WithCache(c))
		} else {
			fmt.Fprintf(os.Stderr, "warning: response cache unavailable: %v\n", err)
		}
	}
	return crossref.NewClient(opts...)
}

func newFilter(cfg *config.Config) *reconcile.Filter {
	return reconcile.NewFilter(cfg.ExcludeYears, cfg.ExcludeDOIs, cfg.ExcludeText)
}
