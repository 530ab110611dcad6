// Package config loads application settings from a TOML file, with
// credentials coming from the environment so they never land in a
// config file that might get committed.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

type Config struct {
	// Collections are the topic forums to fetch and analyze.
	Collections []string `toml:"collections"`
	// ListingKinds to walk per collection: new, hot, top.
	ListingKinds []string `toml:"listing_kinds"`
	DatabasePath string   `toml:"database_path"`
	OutputDir    string   `toml:"output_dir"`

	Fetch   FetchConfig   `toml:"fetch"`
	Analyze AnalyzeConfig `toml:"analyze"`
}

type FetchConfig struct {
	// RequestIntervalSeconds is the minimum spacing between outbound
	// requests. Kept at half the remote ceiling by default.
	RequestIntervalSeconds float64 `toml:"request_interval_seconds"`
	MaxPages               int     `toml:"max_pages"`
	MaxRetries             int     `toml:"max_retries"`
	MaxBodyBytes           int     `toml:"max_body_bytes"`
}

type AnalyzeConfig struct {
	Granularity string `toml:"granularity"`
	TopKeywords int    `toml:"top_keywords"`
}

func Default() Config {
	return Config{
		Collections:  []string{"Peptides"},
		ListingKinds: []string{"new", "hot", "top"},
		DatabasePath: "data/trends.db",
		OutputDir:    "output",
		Fetch: FetchConfig{
			RequestIntervalSeconds: 2.0,
			MaxPages:               10,
			MaxRetries:             5,
			MaxBodyBytes:           500,
		},
		Analyze: AnalyzeConfig{
			Granularity: "day",
			TopKeywords: 10,
		},
	}
}

// Load reads path over the defaults. A missing file just means
// defaults; a present but broken file is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
