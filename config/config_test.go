package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
	require.Equal(t, []string{"Peptides"}, cfg.Collections)
	require.Equal(t, 2.0, cfg.Fetch.RequestIntervalSeconds)
	require.Equal(t, "day", cfg.Analyze.Granularity)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
collections = ["Nootropics", "Supplements"]
listing_kinds = ["new"]
database_path = "custom/trends.db"

[fetch]
request_interval_seconds = 3.5
max_pages = 4

[analyze]
granularity = "week"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, []string{"Nootropics", "Supplements"}, cfg.Collections)
	require.Equal(t, []string{"new"}, cfg.ListingKinds)
	require.Equal(t, "custom/trends.db", cfg.DatabasePath)
	require.Equal(t, 3.5, cfg.Fetch.RequestIntervalSeconds)
	require.Equal(t, 4, cfg.Fetch.MaxPages)
	require.Equal(t, "week", cfg.Analyze.Granularity)
	// Untouched sections keep their defaults.
	require.Equal(t, 5, cfg.Fetch.MaxRetries)
	require.Equal(t, "output", cfg.OutputDir)
}

func TestLoadBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("collections = [un终"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestRedditCredentials(t *testing.T) {
	t.Setenv("REDDIT_CLIENT_ID", "")
	t.Setenv("REDDIT_CLIENT_SECRET", "")
	_, err := RedditCredentials()
	require.Error(t, err)

	t.Setenv("REDDIT_CLIENT_ID", "id123")
	t.Setenv("REDDIT_CLIENT_SECRET", "secret456")
	t.Setenv("REDDIT_USER_AGENT", "")
	creds, err := RedditCredentials()
	require.NoError(t, err)
	require.Equal(t, "id123", creds.ClientID)
	require.Equal(t, "secret456", creds.ClientSecret)
	require.NotEmpty(t, creds.UserAgent, "user agent falls back to a descriptive default")

	t.Setenv("REDDIT_USER_AGENT", "custom/1.0")
	creds, err = RedditCredentials()
	require.NoError(t, err)
	require.Equal(t, "custom/1.0", creds.UserAgent)
}
