package analyzer

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/dreday2050/trendscope/internal/models"
)

// DefaultTopKeywords bounds the keyword column of the report.
const DefaultTopKeywords = 10

// WriteCSV exports buckets as a flat report, one row per bucket. The
// keyword column lists the topK "keyword:count" pairs ordered by count
// descending, ties broken alphabetically, so the output is stable.
func WriteCSV(w io.Writer, buckets []models.TrendBucket, topK int) error {
	if topK <= 0 {
		topK = DefaultTopKeywords
	}

	cw := csv.NewWriter(w)
	header := []string{"collection", "period_start", "record_count", "mean_sentiment", "mean_score", "mean_comments", "top_keywords"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, b := range buckets {
		row := []string{
			b.Collection,
			b.PeriodStart.UTC().Format(time.RFC3339),
			strconv.Itoa(b.RecordCount),
			strconv.FormatFloat(b.MeanSentiment, 'f', 4, 64),
			strconv.FormatFloat(b.MeanScore, 'f', 2, 64),
			strconv.FormatFloat(b.MeanComments, 'f', 2, 64),
			topKeywords(b.KeywordCounts, topK),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func topKeywords(counts map[string]int, topK int) string {
	type pair struct {
		word  string
		count int
	}
	pairs := make([]pair, 0, len(counts))
	for word, count := range counts {
		pairs = append(pairs, pair{word, count})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].count != pairs[j].count {
			return pairs[i].count > pairs[j].count
		}
		return pairs[i].word < pairs[j].word
	})
	if len(pairs) > topK {
		pairs = pairs[:topK]
	}

	out := ""
	for i, p := range pairs {
		if i > 0 {
			out += " "
		}
		out += fmt.Sprintf("%s:%d", p.word, p.count)
	}
	return out
}
