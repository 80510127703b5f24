package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rmartin/pubkeep/internal/config"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set configuration values",
	Long: `Get or set configuration values.

Usage:
  pk config                       # Show all config
  pk config profile-user          # Get specific value
  pk config profile-user AbC123   # Set value

Keys:
  profile-user  Citation-index profile ID to mirror
  profile-lang  Profile interface language (default en)
  site-root     Directory holding the page and bibliography files
  page-file     Page filename under site-root
  owner         Person named in the page chrome
  base-url      Canonical site root URL
  cache-file    Registry response cache path; empty disables
  rank-url      Rank page URL
  contact       E-mail advertised in the User-Agent
  cutoff-year   Last year the rank table applies to

The curated tables (rank overrides, exclusion lists) are edited in the
YAML file directly.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

// ConfigResponse is the response for config get commands.
type ConfigResponse struct {
	ProfileUser string `json:"profile_user,omitempty"`
	ProfileLang string `json:"profile_lang,omitempty"`
	SiteRoot    string `json:"site_root,omitempty"`
	PageFile    string `json:"page_file,omitempty"`
	Owner       string `json:"owner,omitempty"`
	BaseURL     string `json:"base_url,omitempty"`
	CacheFile   string `json:"cache_file,omitempty"`
	RankURL     string `json:"rank_url,omitempty"`
	Contact     string `json:"contact,omitempty"`
	CutoffYear  int    `json:"cutoff_year,omitempty"`
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()

	// No args: show all config
	if len(args) == 0 {
		if humanOutput {
			outputHuman("profile-user: %s\n", cfg.ProfileUser)
			outputHuman("profile-lang: %s\n", cfg.ProfileLang)
			outputHuman("site-root:    %s\n", cfg.SiteRoot)
			outputHuman("page-file:    %s\n", cfg.PageFile)
			outputHuman("owner:        %s\n", cfg.Owner)
			outputHuman("base-url:     %s\n", cfg.BaseURL)
			outputHuman("cache-file:   %s\n", cfg.CacheFile)
			outputHuman("rank-url:     %s\n", cfg.RankURL)
			outputHuman("contact:      %s\n", cfg.Contact)
			outputHuman("cutoff-year:  %d\n", cfg.CutoffYear)
			return nil
		}
		return outputJSON(ConfigResponse{
			ProfileUser: cfg.ProfileUser,
			ProfileLang: cfg.ProfileLang,
			SiteRoot:    cfg.SiteRoot,
			PageFile:    cfg.PageFile,
			Owner:       cfg.Owner,
			BaseURL:     cfg.BaseURL,
			CacheFile:   cfg.CacheFile,
			RankURL:     cfg.RankURL,
			Contact:     cfg.Contact,
			CutoffYear:  cfg.CutoffYear,
		})
	}

	key := normalizeKey(args[0])

	// One arg: get specific value
	if len(args) == 1 {
		value, ok := getConfigValue(cfg, key)
		if !ok {
			exitWithError(ExitError, "unknown configuration key: %s", args[0])
		}
		if humanOutput {
			fmt.Println(value)
			return nil
		}
		return outputJSON(map[string]string{strings.ReplaceAll(key, "-", "_"): value})
	}

	// Two args: set value
	value := args[1]
	if err := setConfigValue(cfg, key, value); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	path := configPath
	if path == "" {
		path = config.Path()
	}
	if err := cfg.Save(path); err != nil {
		exitWithError(ExitConfigError, "saving config: %v", err)
	}

	if humanOutput {
		outputHuman("Updated %s to %s\n", key, value)
		return nil
	}
	return outputJSON(UpdateResponse{Status: "updated", Key: key, Value: value})
}

func getConfigValue(cfg *config.Config, key string) (string, bool) {
	switch key {
	case "profile-user":
		return cfg.ProfileUser, true
	case "profile-lang":
		return cfg.ProfileLang, true
	case "site-root":
		return cfg.SiteRoot, true
	case "page-file":
		return cfg.PageFile, true
	case "owner":
		return cfg.Owner, true
	case "base-url":
		return cfg.BaseURL, true
	case "cache-file":
		return cfg.CacheFile, true
	case "rank-url":
		return cfg.RankURL, true
	case "contact":
		return cfg.Contact, true
	case "cutoff-year":
		return strconv.Itoa(cfg.CutoffYear), true
	}
	return "", false
}

func setConfigValue(cfg *config.Config, key, value string) error {
	switch key {
	case "profile-user":
		cfg.ProfileUser = value
	case "profile-lang":
		cfg.ProfileLang = value
	case "site-root":
		cfg.SiteRoot = value
	case "page-file":
		cfg.PageFile = value
	case "owner":
		cfg.Owner = value
	case "base-url":
		cfg.BaseURL = value
	case "cache-file":
		cfg.CacheFile = value
	case "rank-url":
		cfg.RankURL = value
	case "contact":
		cfg.Contact = value
	case "cutoff-year":
		year, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("cutoff-year must be a number: %q", value)
		}
		cfg.CutoffYear = year
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}

// normalizeKey converts key formats (profile_user, profile-user) to a
// consistent format.
func normalizeKey(key string) string {
	key = strings.ToLower(key)
	key = strings.ReplaceAll(key, "_", "-")
	return key
}
