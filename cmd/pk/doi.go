package main

import (
	"github.com/spf13/cobra"

	"github.com/rmartin/pubkeep/internal/pdfdoi"
)

func init() {
	rootCmd.AddCommand(doiCmd)
}

var doiCmd = &cobra.Command{
	Use:   "doi <pdf>",
	Short: "Recover a DOI from a local full-text PDF",
	Long: `Recover a DOI from a local full-text PDF.

Scans the first pages for a DOI pattern, then asks the registry for the
matching work so the identifier can be checked against the publication
it is meant to belong to.`,
	Args: cobra.ExactArgs(1),
	RunE: runDOI,
}

// DOIResult is the response for the doi command.
type DOIResult struct {
	Status  string   `json:"status"`
	DOI     string   `json:"doi,omitempty"`
	Title   string   `json:"title,omitempty"`
	Authors []string `json:"authors,omitempty"`
	Year    string   `json:"year,omitempty"`
}

func runDOI(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()

	doi, err := pdfdoi.Extract(args[0])
	if err != nil {
		exitWithError(ExitError, "reading PDF: %v", err)
	}
	if doi == "" {
		if humanOutput {
			outputHuman("No DOI found\n")
			return nil
		}
		return outputJSON(DOIResult{Status: "not_found"})
	}

	result := DOIResult{Status: "found", DOI: doi}

	// Best-effort: the identifier alone is still useful when the registry
	// is unreachable or has no record of it.
	registry := newRegistryClient(cfg)
	if work, err := registry.GetWork(cmd.Context(), doi); err == nil && work != nil {
		result.Status = "resolved"
		result.Title = work.Title()
		result.Authors = work.AuthorNames()
		result.Year = work.IssuedYear()
	}

	if humanOutput {
		outputHuman("DOI: %s (%s)\n", result.DOI, result.Status)
		if result.Title != "" {
			outputHuman("  %s (%s)\n", result.Title, result.Year)
		}
		return nil
	}
	return outputJSON(result)
}
