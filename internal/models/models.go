package models

import "time"

// RawListingItem is a single listing entry as the remote API shapes it,
// before any privacy scrubbing. Identity-bearing fields are still
// present here; they must never survive extraction.
type RawListingItem struct {
	ID             string
	Collection     string
	Title          string
	Body           string
	Score          int
	CommentCount   int
	CreatedAt      time.Time
	Author         string
	AuthorFullname string
}

// Record is the anonymized, persisted form of a listing item. It
// carries only the allow-listed fields from RawListingItem plus the
// timestamp of first persistence.
type Record struct {
	ID           string    `json:"id"`
	Collection   string    `json:"collection"`
	Title        string    `json:"title"`
	Body         string    `json:"body"`
	Score        int       `json:"score"`
	CommentCount int       `json:"comment_count"`
	CreatedAt    time.Time `json:"created_at"`
	FetchedAt    time.Time `json:"fetched_at"`
}

// UpsertResult reports what a Store upsert did with a Record.
type UpsertResult int

const (
	UpsertInserted UpsertResult = iota
	UpsertUpdated
	UpsertUnchanged
)

func (r UpsertResult) String() string {
	switch r {
	case UpsertInserted:
		return "inserted"
	case UpsertUpdated:
		return "updated"
	case UpsertUnchanged:
		return "unchanged"
	}
	return "unknown"
}

// TrendBucket is one time-window aggregate for a collection. Buckets
// are derived data: the analyzer recomputes them wholesale from the
// stored records on every run.
type TrendBucket struct {
	Collection    string         `json:"collection"`
	PeriodStart   time.Time      `json:"period_start"`
	RecordCount   int            `json:"record_count"`
	MeanSentiment float64        `json:"mean_sentiment"`
	MeanScore     float64        `json:"mean_score"`
	MeanComments  float64        `json:"mean_comments"`
	KeywordCounts map[string]int `json:"keyword_frequencies"`
}
