// Package fetcher walks remote listings page by page and lands the
// extracted records in the store. One request is ever in flight: the
// rate limiter gates every call, so there are no fetch workers.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dreday2050/trendscope/internal/extract"
	"github.com/dreday2050/trendscope/internal/models"
	"github.com/dreday2050/trendscope/internal/ratelimit"
	"github.com/dreday2050/trendscope/internal/source"
	"github.com/dreday2050/trendscope/internal/store"
)

const (
	DefaultMaxPages   = 10
	DefaultMaxRetries = 5

	defaultBaseBackoff     = 1 * time.Second
	defaultThrottleBackoff = 8 * time.Second
	defaultMaxBackoff      = 32 * time.Second
)

// State is the terminal state of a fetch run.
type State string

const (
	StateDone    State = "done"
	StateAborted State = "aborted"
)

type Config struct {
	// MaxPages is the hard per-listing page ceiling, bounding request
	// volume even against a source that never runs out of cursors.
	MaxPages int
	// MaxRetries is the consecutive-failure ceiling for one page.
	MaxRetries int
	// BaseBackoff grows exponentially up to MaxBackoff between
	// attempts; ThrottleBackoff replaces it when the remote signalled
	// throttling.
	BaseBackoff     time.Duration
	ThrottleBackoff time.Duration
	MaxBackoff      time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxPages <= 0 {
		c.MaxPages = DefaultMaxPages
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.BaseBackoff <= 0 {
		c.BaseBackoff = defaultBaseBackoff
	}
	if c.ThrottleBackoff <= 0 {
		c.ThrottleBackoff = defaultThrottleBackoff
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = defaultMaxBackoff
	}
	return c
}

// Summary is the user-visible result of one fetch run.
type Summary struct {
	PagesFetched int
	Inserted     int
	Updated      int
	Unchanged    int
	Skipped      int
	State        State
	Reason       string
}

type Fetcher struct {
	source    source.ListingSource
	store     *store.Store
	limiter   *ratelimit.Limiter
	extractor *extract.Extractor
	cfg       Config

	sleep func(ctx context.Context, d time.Duration) error
}

func New(src source.ListingSource, st *store.Store, limiter *ratelimit.Limiter, extractor *extract.Extractor, cfg Config) *Fetcher {
	return &Fetcher{
		source:    src,
		store:     st,
		limiter:   limiter,
		extractor: extractor,
		cfg:       cfg.withDefaults(),
		sleep:     sleepCtx,
	}
}

// Run walks every (collection, kind) pair sequentially. The first
// abort condition stops the run; everything committed before it stays
// committed.
func (f *Fetcher) Run(ctx context.Context, collections []string, kinds []source.ListingKind) (*Summary, error) {
	sum := &Summary{State: StateDone}

	for _, collection := range collections {
		for _, kind := range kinds {
			slog.Info("fetching listing",
				slog.String("collection", collection),
				slog.String("kind", string(kind)))

			if err := f.runListing(ctx, collection, kind, sum); err != nil {
				sum.State = StateAborted
				sum.Reason = err.Error()
				return sum, err
			}
		}
	}

	return sum, nil
}

func (f *Fetcher) runListing(ctx context.Context, collection string, kind source.ListingKind, sum *Summary) error {
	cursor := ""
	for page := 1; page <= f.cfg.MaxPages; page++ {
		// Cancellation is checked between pages only; a page in
		// flight always finishes or fails whole.
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("fetch cancelled: %w", err)
		}

		items, next, err := f.fetchPageWithRetry(ctx, collection, kind, cursor)
		if err != nil {
			return err
		}
		sum.PagesFetched++

		for _, raw := range items {
			rec, err := f.extractor.Extract(raw)
			if err != nil {
				var malformed *extract.MalformedItemError
				if errors.As(err, &malformed) {
					sum.Skipped++
					slog.Warn("skipping malformed listing item",
						slog.String("collection", collection),
						slog.String("error", err.Error()))
					continue
				}
				return err
			}

			res, err := f.store.Upsert(rec)
			if err != nil {
				return err
			}
			switch res {
			case models.UpsertInserted:
				sum.Inserted++
			case models.UpsertUpdated:
				sum.Updated++
			case models.UpsertUnchanged:
				sum.Unchanged++
			}
		}

		if next == "" {
			slog.Debug("listing exhausted",
				slog.String("collection", collection),
				slog.String("kind", string(kind)),
				slog.Int("pages", page))
			return nil
		}
		cursor = next
	}

	slog.Info("page ceiling reached",
		slog.String("collection", collection),
		slog.String("kind", string(kind)),
		slog.Int("max_pages", f.cfg.MaxPages))
	return nil
}

// fetchPageWithRetry waits on the limiter before every attempt and
// retries transport and throttle failures with exponential backoff.
// Auth failures surface immediately.
func (f *Fetcher) fetchPageWithRetry(ctx context.Context, collection string, kind source.ListingKind, cursor string) ([]models.RawListingItem, string, error) {
	backoff := f.cfg.BaseBackoff

	for attempt := 1; ; attempt++ {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, "", fmt.Errorf("fetch cancelled: %w", err)
		}

		items, next, err := f.source.FetchPage(ctx, collection, kind, cursor)
		if err == nil {
			return items, next, nil
		}

		var authErr *source.AuthError
		if errors.As(err, &authErr) {
			return nil, "", err
		}

		if attempt >= f.cfg.MaxRetries {
			return nil, "", fmt.Errorf("page fetch failed after %d attempts: %w", attempt, err)
		}

		wait := backoff
		var throttled *source.RateLimitedError
		if errors.As(err, &throttled) {
			wait = f.cfg.ThrottleBackoff
			if throttled.RetryAfter > wait {
				wait = throttled.RetryAfter
			}
		}

		slog.Warn("retrying page fetch",
			slog.String("collection", collection),
			slog.String("kind", string(kind)),
			slog.Int("attempt", attempt),
			slog.Duration("backoff", wait),
			slog.String("error", err.Error()))

		if err := f.sleep(ctx, wait); err != nil {
			return nil, "", fmt.Errorf("fetch cancelled: %w", err)
		}

		backoff *= 2
		if backoff > f.cfg.MaxBackoff {
			backoff = f.cfg.MaxBackoff
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
