// Package config handles the tool's configuration: compiled-in curated
// defaults overlaid with an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config drives both pipeline paths. The curated tables (rank overrides and
// exclusion sets) are plain data so tests can substitute fixtures.
type Config struct {
	// Profile identifies the citation-index listing to mirror.
	ProfileUser string `yaml:"profile_user,omitempty"`
	ProfileLang string `yaml:"profile_lang,omitempty"`

	// Site layout.
	SiteRoot  string `yaml:"site_root,omitempty"`  // directory holding the page and bibliography dir
	PageFile  string `yaml:"page_file,omitempty"`  // page filename under SiteRoot
	Owner     string `yaml:"owner,omitempty"`      // person named in the page chrome
	BaseURL   string `yaml:"base_url,omitempty"`   // canonical site root URL
	CacheFile string `yaml:"cache_file,omitempty"` // registry lookup cache; "" disables

	// External sources.
	RankURL string `yaml:"rank_url,omitempty"`
	Contact string `yaml:"contact,omitempty"` // e-mail advertised in the User-Agent

	// Rank resolution. Keys of TitleRanks are normalized titles, keys of
	// DOIRanks normalized DOIs. The rank table only applies to years up to
	// CutoffYear; later years stay under manual curation.
	CutoffYear int               `yaml:"cutoff_year,omitempty"`
	TitleRanks map[string]string `yaml:"title_ranks,omitempty"`
	DOIRanks   map[string]string `yaml:"doi_ranks,omitempty"`

	// Filtering.
	ExcludeYears []string `yaml:"exclude_years,omitempty"`
	ExcludeDOIs  []string `yaml:"exclude_dois,omitempty"`
	ExcludeText  []string `yaml:"exclude_text,omitempty"` // normalized fingerprints
}

const (
	// ConfigDir is the directory name under XDG_CONFIG_HOME.
	ConfigDir = "pubkeep"
	// ConfigFile is the config file name.
	ConfigFile = "config.yml"
)

// Default returns the curated defaults for the site this tool maintains.
func Default() *Config {
	return &Config{
		ProfileLang: "en",
		SiteRoot:    ".",
		PageFile:    "publications.html",
		Owner:       "Publications",
		CutoffYear:  2022,
		TitleRanks: map[string]string{
			"dynamic delegation of behavior trees to enhance cooperation in robot teams":                             "Q2",
			"towards a robotic intrusion prevention system combining security and safety in cognitive social robots": "Q1",
			"open source robot localization for nonplanar environments":                                              "Q2",
			"a visual questioning answering approach to enhance robot localization in indoor environments":           "Q3",
			"regulated pure pursuit for robot path tracking":                                                          "Q2",
			"an autonomous ground robot to support firefighters interventions in indoor emergencies":                 "Q2",
		},
		DOIRanks: map[string]string{
			"10.1017/s0263574708004414": "Q2",
		},
		ExcludeYears: []string{"", "Unknown", "1978", "1991"},
		ExcludeDOIs: []string{
			"10.1201/9781420031393-49",
			"10.4995/thesis/10251/38902",
			"10.5565/rev/tradumatica.7",
			"10.1109/crv.2009.18",
			"10.1109/icip.2009.5413736",
			"10.1007/3-540-45603-1_54",
			"10.1093/med/9780198779117.001.0001",
			"10.1109/conielecomp.2011.5749380",
			"10.5772/7351",
			"10.2307/j.ctv2s0jcdb.240",
			"10.1109/sice.2008.4655047",
			"10.25100/peu.680.cap8",
			"10.1201/9781003289623",
			"10.5821/dissertation-2117-363911",
			"10.15332/dt.inv.2020.01681",
			"10.1109/case56687.2023.10260363",
			"10.1109/isoirs65690.2025.11168047",
		},
		ExcludeText: []string{
			"una perspectiva de la inteligencia artificial en su 50 aniversario: campus",
			"robotica. unileon. es, 2007",
			"constraints 2, 3, 2013",
			"planning. wiki-the ai planning & pddl wiki",
			"leading with depth: the impact of emotions and relationships on leadership, 2023",
		},
	}
}

// Path returns the config file location. Respects XDG_CONFIG_HOME, defaults
// to ~/.config/pubkeep/config.yml.
func Path() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, ConfigDir, ConfigFile)
}

// Load reads the config file at path and overlays it on the defaults. A
// missing file is not an error; the defaults are returned as-is.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes the config file, creating its directory if needed.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// UserAgent builds the identifying User-Agent sent to every external source.
func (c *Config) UserAgent() string {
	ua := "pubkeep/1.0"
	if c.Contact != "" {
		ua += " (mailto:" + c.Contact + ")"
	}
	return ua
}

// PagePath returns the full path of the publications page.
func (c *Config) PagePath() string {
	return filepath.Join(c.SiteRoot, c.PageFile)
}
