package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/dreday2050/trendscope/config"
	"github.com/dreday2050/trendscope/internal/analyzer"
	"github.com/dreday2050/trendscope/internal/extract"
	"github.com/dreday2050/trendscope/internal/fetcher"
	"github.com/dreday2050/trendscope/internal/logging"
	"github.com/dreday2050/trendscope/internal/ratelimit"
	"github.com/dreday2050/trendscope/internal/source"
	"github.com/dreday2050/trendscope/internal/store"
)

const usage = `usage: trendscope [flags] <fetch|analyze|report>

  fetch    pull listings from the configured collections into the store
  analyze  recompute trend buckets from stored records
  report   export trend buckets as CSV
`

func main() {
	var (
		configPath  string
		collections string
		kinds       string
		granularity string
		since       string
		synthetic   bool
	)
	flag.StringVar(&configPath, "config", "config.toml", "Path to the TOML config file")
	flag.StringVar(&collections, "collections", "", "Comma-separated collections, overrides the config")
	flag.StringVar(&kinds, "kinds", "", "Comma-separated listing kinds (new,hot,top), overrides the config")
	flag.StringVar(&granularity, "granularity", "", "Analysis bucket width: day or week")
	flag.StringVar(&since, "since", "", "Analyzer watermark, RFC3339")
	flag.BoolVar(&synthetic, "synthetic", false, "Use the synthetic offline listing source")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	logging.InitLogger()
	config.LoadEnv()

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if collections != "" {
		cfg.Collections = splitList(collections)
	}
	if kinds != "" {
		cfg.ListingKinds = splitList(kinds)
	}
	if granularity != "" {
		cfg.Analyze.Granularity = granularity
	}

	var exitCode int
	switch flag.Arg(0) {
	case "fetch":
		exitCode = runFetch(cfg, synthetic)
	case "analyze":
		exitCode = runAnalyze(cfg, since)
	case "report":
		exitCode = runReport(cfg)
	default:
		flag.Usage()
		exitCode = 2
	}
	os.Exit(exitCode)
}

func runFetch(cfg config.Config, synthetic bool) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kinds, err := parseKinds(cfg.ListingKinds)
	if err != nil {
		slog.Error("Bad listing kinds", slog.String("error", err.Error()))
		return 1
	}

	var src source.ListingSource
	if synthetic {
		slog.Info("Using synthetic listing source (no live requests)")
		src = source.NewSyntheticListingSource(3, 10)
	} else {
		creds, err := config.RedditCredentials()
		if err != nil {
			slog.Error("Missing credentials", slog.String("error", err.Error()))
			return 1
		}
		src = source.NewRemoteListingSource(creds.ClientID, creds.ClientSecret, creds.UserAgent)
	}

	st, err := openStore(cfg.DatabasePath)
	if err != nil {
		slog.Error("Failed to open store", slog.String("error", err.Error()))
		return 1
	}
	defer st.Close()

	interval := time.Duration(cfg.Fetch.RequestIntervalSeconds * float64(time.Second))
	f := fetcher.New(
		src,
		st,
		ratelimit.New(interval),
		extract.New(cfg.Fetch.MaxBodyBytes),
		fetcher.Config{
			MaxPages:   cfg.Fetch.MaxPages,
			MaxRetries: cfg.Fetch.MaxRetries,
		},
	)

	sum, runErr := f.Run(ctx, cfg.Collections, kinds)
	slog.Info("Fetch run finished",
		slog.String("state", string(sum.State)),
		slog.Int("pages", sum.PagesFetched),
		slog.Int("inserted", sum.Inserted),
		slog.Int("updated", sum.Updated),
		slog.Int("unchanged", sum.Unchanged),
		slog.Int("skipped", sum.Skipped))
	if runErr != nil {
		slog.Error("Fetch aborted", slog.String("reason", sum.Reason))
		return 1
	}
	return 0
}

func runAnalyze(cfg config.Config, since string) int {
	granularity, err := analyzer.ParseGranularity(cfg.Analyze.Granularity)
	if err != nil {
		slog.Error("Bad granularity", slog.String("error", err.Error()))
		return 1
	}

	var watermark *time.Time
	if since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			slog.Error("Bad -since timestamp", slog.String("error", err.Error()))
			return 1
		}
		watermark = &t
	}

	st, err := openStore(cfg.DatabasePath)
	if err != nil {
		slog.Error("Failed to open store", slog.String("error", err.Error()))
		return 1
	}
	defer st.Close()

	a := analyzer.New(st, granularity)
	for _, collection := range cfg.Collections {
		if _, err := a.Run(collection, watermark); err != nil {
			slog.Error("Analysis failed",
				slog.String("collection", collection),
				slog.String("error", err.Error()))
			return 1
		}
	}
	return 0
}

func runReport(cfg config.Config) int {
	st, err := openStore(cfg.DatabasePath)
	if err != nil {
		slog.Error("Failed to open store", slog.String("error", err.Error()))
		return 1
	}
	defer st.Close()

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		slog.Error("Failed to create output dir", slog.String("error", err.Error()))
		return 1
	}

	for _, collection := range cfg.Collections {
		buckets, err := st.TrendBuckets(collection)
		if err != nil {
			slog.Error("Failed to read buckets",
				slog.String("collection", collection),
				slog.String("error", err.Error()))
			return 1
		}

		path := filepath.Join(cfg.OutputDir, fmt.Sprintf("trends_%s.csv", strings.ToLower(collection)))
		file, err := os.Create(path)
		if err != nil {
			slog.Error("Failed to create report file", slog.String("error", err.Error()))
			return 1
		}
		writeErr := analyzer.WriteCSV(file, buckets, cfg.Analyze.TopKeywords)
		if closeErr := file.Close(); writeErr == nil {
			writeErr = closeErr
		}
		if writeErr != nil {
			slog.Error("Failed to write report", slog.String("error", writeErr.Error()))
			return 1
		}

		slog.Info("Report written",
			slog.String("collection", collection),
			slog.String("path", path),
			slog.Int("buckets", len(buckets)))
	}
	return 0
}

func openStore(path string) (*store.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return store.Open(path)
}

func parseKinds(raw []string) ([]source.ListingKind, error) {
	kinds := make([]source.ListingKind, 0, len(raw))
	for _, s := range raw {
		kind, err := source.ParseListingKind(s)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
