// Package main provides the pk CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/rmartin/pubkeep/internal/config"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

// configPath overrides the default config file location
var configPath string

func main() {
	// Development overrides (contact address, source URLs). A missing
	// .env is the normal case.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pk",
	Short: "Publications-page maintenance CLI",
	Long: `pk keeps a personal academic publications page in sync with its sources.

Core features:
  - Rebuild the page from a citation-index profile listing
  - Repair the existing page in place: mojibake, quality badges,
    author lists, redundant links
  - Filter known-bad records by year, DOI, or text fingerprint
  - Per-publication BibTeX files, registry-provided or generated
  - DOI recovery from local full-text PDFs

The page's markup outside the publication list is never touched.
All commands output JSON by default for scripting.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/pubkeep/config.yml)")
	rootCmd.Version = Version
}

// mustLoadConfig loads configuration, exits on error.
func mustLoadConfig() *config.Config {
	path := configPath
	if path == "" {
		path = config.Path()
	}
	cfg, err := config.Load(path)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	applyEnvOverrides(cfg)
	return cfg
}

// applyEnvOverrides lets the environment (or a .env file) override the
// fields that differ between development and the live site.
func applyEnvOverrides(cfg *config.Config) {
	if v := os.Getenv("PK_CONTACT"); v != "" {
		cfg.Contact = v
	}
	if v := os.Getenv("PK_SITE_ROOT"); v != "" {
		cfg.SiteRoot = v
	}
	if v := os.Getenv("PK_PROFILE_USER"); v != "" {
		cfg.ProfileUser = v
	}
	if v := os.Getenv("PK_RANK_URL"); v != "" {
		cfg.RankURL = v
	}
}

// mustReadPage reads the publications page, exits on error.
func mustReadPage(cfg *config.Config) string {
	data, err := os.ReadFile(cfg.PagePath())
	if err != nil {
		exitWithError(ExitDataError, "reading page: %v", err)
	}
	return string(data)
}

// mustWritePage writes the publications page, exits on error.
func mustWritePage(cfg *config.Config, doc string) {
	if err := os.WriteFile(cfg.PagePath(), []byte(doc), 0644); err != nil {
		exitWithError(ExitError, "writing page: %v", err)
	}
}
