package analyzer

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dreday2050/trendscope/internal/models"
	"github.com/dreday2050/trendscope/internal/store"
)

func testStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "trends.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func record(id, title, body string, created time.Time) models.Record {
	return models.Record{
		ID:         id,
		Collection: "Peptides",
		Title:      title,
		Body:       body,
		Score:      10,
		CreatedAt:  created,
	}
}

func TestBucketStart(t *testing.T) {
	// 2026-01-15 is a Thursday.
	thursday := time.Date(2026, 1, 15, 17, 45, 12, 0, time.UTC)

	require.Equal(t,
		time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		BucketStart(thursday, GranularityDay))
	require.Equal(t,
		time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC),
		BucketStart(thursday, GranularityWeek))

	// A Monday maps to itself for weekly buckets.
	monday := time.Date(2026, 1, 12, 3, 0, 0, 0, time.UTC)
	require.Equal(t,
		time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC),
		BucketStart(monday, GranularityWeek))

	// Non-UTC input is normalized before alignment.
	offset := time.FixedZone("plus5", 5*3600)
	late := time.Date(2026, 1, 16, 2, 0, 0, 0, offset) // 2026-01-15 21:00 UTC
	require.Equal(t,
		time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		BucketStart(late, GranularityDay))
}

func TestKeywordsNormalization(t *testing.T) {
	tokens := Keywords("The AMAZING results! (Results were amazing.) A to-do")
	require.Equal(t, []string{"amazing", "results", "results", "amazing", "to-do"}, tokens)
}

func TestAggregateGroupsByDay(t *testing.T) {
	recs := []models.Record{
		record("a", "Great progress", "Everything is wonderful.", time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)),
		record("b", "More progress", "Still wonderful results.", time.Date(2026, 1, 10, 22, 0, 0, 0, time.UTC)),
		record("c", "Awful batch", "Terrible quality, very disappointed.", time.Date(2026, 1, 11, 8, 0, 0, 0, time.UTC)),
	}

	buckets := Aggregate("Peptides", recs, GranularityDay)
	require.Len(t, buckets, 2)

	first, second := buckets[0], buckets[1]
	require.Equal(t, time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), first.PeriodStart)
	require.Equal(t, 2, first.RecordCount)
	require.Equal(t, time.Date(2026, 1, 11, 0, 0, 0, 0, time.UTC), second.PeriodStart)
	require.Equal(t, 1, second.RecordCount)

	require.Greater(t, first.MeanSentiment, second.MeanSentiment)
	for _, b := range buckets {
		require.GreaterOrEqual(t, b.MeanSentiment, -1.0)
		require.LessOrEqual(t, b.MeanSentiment, 1.0)
		require.Equal(t, "Peptides", b.Collection)
	}

	require.Positive(t, first.KeywordCounts["progress"])
	_, hasStopWord := first.KeywordCounts["is"]
	require.False(t, hasStopWord)
}

func TestAggregateWeekly(t *testing.T) {
	recs := []models.Record{
		record("a", "one", "", time.Date(2026, 1, 13, 0, 0, 0, 0, time.UTC)), // Tue
		record("b", "two", "", time.Date(2026, 1, 18, 0, 0, 0, 0, time.UTC)), // Sun, same ISO week
		record("c", "three", "", time.Date(2026, 1, 19, 0, 0, 0, 0, time.UTC)), // next Mon
	}

	buckets := Aggregate("Peptides", recs, GranularityWeek)
	require.Len(t, buckets, 2)
	require.Equal(t, 2, buckets[0].RecordCount)
	require.Equal(t, 1, buckets[1].RecordCount)
}

func TestAggregateIsDeterministic(t *testing.T) {
	recs := []models.Record{
		record("a", "Great progress", "Everything is wonderful.", time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)),
		record("b", "Awful batch", "Terrible quality.", time.Date(2026, 1, 11, 8, 0, 0, 0, time.UTC)),
	}
	require.Equal(t,
		Aggregate("Peptides", recs, GranularityDay),
		Aggregate("Peptides", recs, GranularityDay))
}

func TestRunPersistsBucketsAndIsRepeatable(t *testing.T) {
	st := testStore(t)
	created := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	for _, rec := range []models.Record{
		record("a", "Great results", "Very happy with this.", created),
		record("b", "Quality concerns", "Quite disappointed overall.", created.Add(26*time.Hour)),
	} {
		_, err := st.Upsert(rec)
		require.NoError(t, err)
	}

	a := New(st, GranularityDay)
	first, err := a.Run("Peptides", nil)
	require.NoError(t, err)
	require.Len(t, first, 2)

	stored, err := st.TrendBuckets("Peptides")
	require.NoError(t, err)
	require.Equal(t, first, stored)

	second, err := a.Run("Peptides", nil)
	require.NoError(t, err)
	require.Equal(t, first, second, "same store state must yield identical buckets")
}

func TestRunWithWatermark(t *testing.T) {
	st := testStore(t)
	created := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	for _, rec := range []models.Record{
		record("old", "old post", "", created),
		record("new", "new post", "", created.Add(48*time.Hour)),
	} {
		_, err := st.Upsert(rec)
		require.NoError(t, err)
	}

	watermark := created.Add(24 * time.Hour)
	buckets, err := New(st, GranularityDay).Run("Peptides", &watermark)
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	require.Equal(t, 1, buckets[0].RecordCount)
}

func TestRunOnEmptyStore(t *testing.T) {
	st := testStore(t)

	buckets, err := New(st, GranularityDay).Run("Peptides", nil)
	require.NoError(t, err)
	require.Empty(t, buckets)

	stored, err := st.TrendBuckets("Peptides")
	require.NoError(t, err)
	require.Empty(t, stored)
}
