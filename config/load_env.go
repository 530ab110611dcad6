package config

import (
	"errors"
	"log/slog"
	"os"

	"github.com/subosito/gotenv"
)

// LoadEnv pulls credentials from a local .env file into the process
// environment. Missing file is fine: the OS environment is used as-is.
func LoadEnv() {
	if err := gotenv.Load(".env"); err != nil {
		slog.Debug("No .env file found, using OS environment")
	}
}

// Credentials holds what the live listing source needs. Never persisted.
type Credentials struct {
	ClientID     string
	ClientSecret string
	UserAgent    string
}

// RedditCredentials reads API credentials from the environment. The
// user agent has a descriptive default; id and secret are required.
func RedditCredentials() (Credentials, error) {
	creds := Credentials{
		ClientID:     os.Getenv("REDDIT_CLIENT_ID"),
		ClientSecret: os.Getenv("REDDIT_CLIENT_SECRET"),
		UserAgent:    os.Getenv("REDDIT_USER_AGENT"),
	}
	if creds.UserAgent == "" {
		creds.UserAgent = "trendscope/0.1 (read-only research tool)"
	}
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return Credentials{}, errors.New("REDDIT_CLIENT_ID and REDDIT_CLIENT_SECRET must be set (or use -synthetic)")
	}
	return creds, nil
}
