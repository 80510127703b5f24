package main

import (
	"net/http"
	"sort"

	"github.com/spf13/cobra"

	"github.com/rmartin/pubkeep/internal/ranks"
)

func init() {
	rootCmd.AddCommand(ranksCmd)
}

var ranksCmd = &cobra.Command{
	Use:   "ranks",
	Short: "Fetch and print the rank table",
	Long: `Fetch the configured rank page and print the title-to-badge table
that repair runs resolve badges against.`,
	RunE: runRanks,
}

// RanksResult is the response for the ranks command.
type RanksResult struct {
	Status  string            `json:"status"`
	Entries int               `json:"entries"`
	Ranks   map[string]string `json:"ranks"`
}

func runRanks(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	if cfg.RankURL == "" {
		exitWithError(ExitConfigError, "rank_url is not configured")
	}

	table, err := ranks.Fetch(cmd.Context(), http.DefaultClient, cfg.RankURL, cfg.UserAgent())
	if err != nil {
		exitWithError(ExitError, "fetching rank page: %v", err)
	}

	if humanOutput {
		titles := make([]string, 0, len(table))
		for title := range table {
			titles = append(titles, title)
		}
		sort.Strings(titles)
		for _, title := range titles {
			outputHuman("%-3s %s\n", table[title], title)
		}
		outputHuman("%d entries\n", len(table))
		return nil
	}
	return outputJSON(RanksResult{Status: "ok", Entries: len(table), Ranks: table})
}
