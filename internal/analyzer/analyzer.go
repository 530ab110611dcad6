// Package analyzer computes offline trend aggregates from stored
// records. No network access: everything it reads is local, and the
// same store state always produces the same buckets.
package analyzer

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/dreday2050/trendscope/internal/models"
	"github.com/dreday2050/trendscope/internal/sentiment"
	"github.com/dreday2050/trendscope/internal/store"
)

// Granularity is the bucket width records are grouped into.
type Granularity string

const (
	GranularityDay  Granularity = "day"
	GranularityWeek Granularity = "week"
)

func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(s) {
	case GranularityDay, GranularityWeek:
		return Granularity(s), nil
	}
	return "", fmt.Errorf("unknown granularity %q", s)
}

const minTokenLen = 3

var stopWords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(
		"the a an and or but in on at to for of with by from is are was were be been " +
			"being have has had do does did will would could should may might must shall " +
			"can this that these those i you he she it we they what which who when where " +
			"why how all each every both few more most other some such no not only same " +
			"so than too very just also") {
		stopWords[w] = struct{}{}
	}
}

type Analyzer struct {
	store       *store.Store
	granularity Granularity
}

func New(st *store.Store, granularity Granularity) *Analyzer {
	if granularity == "" {
		granularity = GranularityDay
	}
	return &Analyzer{store: st, granularity: granularity}
}

// Run recomputes a collection's trend buckets from its stored records
// and replaces the persisted buckets wholesale. A non-nil since bounds
// the pass to records created at or after the watermark. An empty
// collection yields an empty bucket set, not an error.
func (a *Analyzer) Run(collection string, since *time.Time) ([]models.TrendBucket, error) {
	recs, err := a.store.ListByCollection(collection, since)
	if err != nil {
		return nil, err
	}

	buckets := Aggregate(collection, recs, a.granularity)
	if err := a.store.ReplaceTrendBuckets(collection, buckets); err != nil {
		return nil, err
	}

	slog.Info("analysis complete",
		slog.String("collection", collection),
		slog.Int("records", len(recs)),
		slog.Int("buckets", len(buckets)))
	return buckets, nil
}

// Aggregate folds records into trend buckets. Pure: bucket membership
// depends only on created_at and the granularity, never on fetch order
// or the current time.
func Aggregate(collection string, recs []models.Record, granularity Granularity) []models.TrendBucket {
	type acc struct {
		count        int
		sentimentSum float64
		scoreSum     int
		commentSum   int
		keywords     map[string]int
	}

	byStart := make(map[time.Time]*acc)
	for _, rec := range recs {
		start := BucketStart(rec.CreatedAt, granularity)
		bucket := byStart[start]
		if bucket == nil {
			bucket = &acc{keywords: make(map[string]int)}
			byStart[start] = bucket
		}

		text := rec.Title + "\n" + rec.Body
		bucket.count++
		bucket.sentimentSum += sentiment.Score(text)
		bucket.scoreSum += rec.Score
		bucket.commentSum += rec.CommentCount
		for _, word := range Keywords(text) {
			bucket.keywords[word]++
		}
	}

	starts := make([]time.Time, 0, len(byStart))
	for start := range byStart {
		starts = append(starts, start)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })

	buckets := make([]models.TrendBucket, 0, len(starts))
	for _, start := range starts {
		bucket := byStart[start]
		n := float64(bucket.count)
		buckets = append(buckets, models.TrendBucket{
			Collection:    collection,
			PeriodStart:   start,
			RecordCount:   bucket.count,
			MeanSentiment: bucket.sentimentSum / n,
			MeanScore:     float64(bucket.scoreSum) / n,
			MeanComments:  float64(bucket.commentSum) / n,
			KeywordCounts: bucket.keywords,
		})
	}
	return buckets
}

// BucketStart aligns t to the start of its bucket: UTC midnight for
// daily buckets, the preceding (or same) Monday midnight for weekly.
func BucketStart(t time.Time, granularity Granularity) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	if granularity == GranularityWeek {
		offset := (int(day.Weekday()) + 6) % 7
		day = day.AddDate(0, 0, -offset)
	}
	return day
}

// Keywords tokenizes text into normalized keyword tokens: lowercased,
// punctuation-trimmed, stop words removed, short tokens dropped.
func Keywords(text string) []string {
	words := strings.Fields(strings.ToLower(text))

	tokens := make([]string, 0, len(words))
	for _, word := range words {
		word = strings.Trim(word, ".,!?\"'()[]{}:;*")
		if len(word) < minTokenLen {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens
}
