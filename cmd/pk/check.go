package main

import (
	"github.com/spf13/cobra"

	"github.com/rmartin/pubkeep/internal/normalize"
	"github.com/rmartin/pubkeep/internal/page"
	"github.com/rmartin/pubkeep/internal/pub"
	"github.com/rmartin/pubkeep/internal/reconcile"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report what a repair would remove, without writing",
	Long: `Report what a repair would remove, without writing.

Parses the page and applies the exclusion filters and the duplicate
check, listing every card that would be dropped and why.`,
	RunE: runCheck,
}

// CheckResult is the response for the check command.
type CheckResult struct {
	Status        string       `json:"status"`
	Parsed        int          `json:"parsed"`
	SkippedBlocks int          `json:"skipped_blocks"`
	Issues        []CheckIssue `json:"issues"`
}

// CheckIssue is one card a repair run would drop.
type CheckIssue struct {
	Type  string `json:"type"` // "excluded" or "duplicate"
	Year  string `json:"year"`
	Title string `json:"title"`
	DOI   string `json:"doi,omitempty"`
	// Reason is the exclusion reason ("year", "doi", "text") for excluded
	// cards, empty for duplicates.
	Reason string `json:"reason,omitempty"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	doc := mustReadPage(cfg)

	records, stats, err := page.ParseCards(doc)
	if err != nil {
		exitWithError(ExitDataError, "parsing page: %v", err)
	}

	filter := newFilter(cfg)
	issues := []CheckIssue{}
	survivors := make([]pub.Record, 0, len(records))
	for _, rec := range records {
		// Text repair happens before filtering on a real repair run, so
		// the dry run must compare repaired text too.
		rec.Venue = normalize.RepairMojibake(rec.Venue)
		rec.Cite = normalize.RepairMojibake(rec.Cite)

		if reason, drop := filter.Exclude(rec); drop {
			issues = append(issues, CheckIssue{
				Type:   "excluded",
				Year:   rec.Year,
				Title:  pub.TitleFromCite(rec.Cite),
				DOI:    rec.DOI,
				Reason: reason,
			})
			continue
		}
		survivors = append(survivors, rec)
	}

	for _, rec := range duplicateRecords(survivors) {
		issues = append(issues, CheckIssue{
			Type:  "duplicate",
			Year:  rec.Year,
			Title: pub.TitleFromCite(rec.Cite),
			DOI:   rec.DOI,
		})
	}

	result := CheckResult{
		Status:        "ok",
		Parsed:        stats.Cards,
		SkippedBlocks: stats.Skipped,
		Issues:        issues,
	}
	if len(issues) > 0 {
		result.Status = "issues"
	}

	if humanOutput {
		outputHuman("Parsed %d cards (%d blocks skipped)\n", result.Parsed, result.SkippedBlocks)
		printIssuesHuman(issues)
		return nil
	}
	return outputJSON(result)
}

// duplicateRecords returns the records Dedup would drop, in page order.
func duplicateRecords(records []pub.Record) []pub.Record {
	kept, dropped := reconcile.Dedup(records)
	if dropped == 0 {
		return nil
	}
	keptIdx := 0
	var duplicates []pub.Record
	for _, rec := range records {
		if keptIdx < len(kept) && rec == kept[keptIdx] {
			keptIdx++
			continue
		}
		duplicates = append(duplicates, rec)
	}
	return duplicates
}

func printIssuesHuman(issues []CheckIssue) {
	if len(issues) == 0 {
		outputHuman("Nothing to remove\n")
		return
	}
	for _, issue := range issues {
		if issue.Reason != "" {
			outputHuman("would remove (%s, %s): %s [%s]\n", issue.Type, issue.Reason, issue.Title, issue.Year)
		} else {
			outputHuman("would remove (%s): %s [%s]\n", issue.Type, issue.Title, issue.Year)
		}
	}
}
