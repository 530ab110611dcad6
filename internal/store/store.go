// Package store persists anonymized records and derived trend buckets
// in a local SQLite database.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dreday2050/trendscope/internal/models"
	_ "modernc.org/sqlite"
)

// timeLayout is fixed-width so lexicographic order of stored
// timestamps matches chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store wraps the SQLite connection. Write access belongs to the
// fetcher, read access to the analyzer; the two run in separate
// process phases, never concurrently.
type Store struct {
	conn *sql.DB
	now  func() time.Time
}

// Open opens or creates the database at path and applies the schema.
func Open(path string) (*Store, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// WAL keeps committed upserts durable across a crash mid-run.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}
	s := &Store{conn: conn, now: time.Now}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS posts (
		id TEXT PRIMARY KEY,
		collection TEXT NOT NULL,
		title TEXT NOT NULL,
		body TEXT NOT NULL,
		score INTEGER NOT NULL,
		comment_count INTEGER NOT NULL,
		created_at TEXT NOT NULL,
		fetched_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_posts_collection_created
		ON posts(collection, created_at);
	CREATE TABLE IF NOT EXISTS trend_buckets (
		collection TEXT NOT NULL,
		period_start TEXT NOT NULL,
		record_count INTEGER NOT NULL,
		mean_sentiment REAL NOT NULL,
		mean_score REAL NOT NULL,
		mean_comments REAL NOT NULL,
		keyword_frequencies TEXT NOT NULL,
		PRIMARY KEY (collection, period_start)
	);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// Upsert inserts rec or reconciles it with the stored row of the same
// id. Mutable fields (score, comment_count, title, body) are updated;
// id, created_at and fetched_at never change after the first insert.
// Each call runs in its own transaction.
func (s *Store) Upsert(rec models.Record) (models.UpsertResult, error) {
	tx, err := s.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("upsert %s: begin: %w", rec.ID, err)
	}
	defer tx.Rollback()

	var title, body string
	var score, commentCount int
	err = tx.QueryRow(
		"SELECT title, body, score, comment_count FROM posts WHERE id = ?", rec.ID,
	).Scan(&title, &body, &score, &commentCount)

	switch {
	case err == sql.ErrNoRows:
		fetchedAt := rec.FetchedAt
		if fetchedAt.IsZero() {
			fetchedAt = s.now()
		}
		_, err = tx.Exec(
			`INSERT INTO posts (id, collection, title, body, score, comment_count, created_at, fetched_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, rec.Collection, rec.Title, rec.Body, rec.Score, rec.CommentCount,
			rec.CreatedAt.UTC().Format(timeLayout), fetchedAt.UTC().Format(timeLayout),
		)
		if err != nil {
			return 0, fmt.Errorf("upsert %s: insert: %w", rec.ID, err)
		}
		if err := tx.Commit(); err != nil {
			return 0, fmt.Errorf("upsert %s: commit: %w", rec.ID, err)
		}
		return models.UpsertInserted, nil

	case err != nil:
		return 0, fmt.Errorf("upsert %s: lookup: %w", rec.ID, err)
	}

	if title == rec.Title && body == rec.Body && score == rec.Score && commentCount == rec.CommentCount {
		return models.UpsertUnchanged, nil
	}

	_, err = tx.Exec(
		"UPDATE posts SET title = ?, body = ?, score = ?, comment_count = ? WHERE id = ?",
		rec.Title, rec.Body, rec.Score, rec.CommentCount, rec.ID,
	)
	if err != nil {
		return 0, fmt.Errorf("upsert %s: update: %w", rec.ID, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("upsert %s: commit: %w", rec.ID, err)
	}
	return models.UpsertUpdated, nil
}

// ListByCollection returns a collection's records ordered by
// created_at ascending. A non-nil since bounds the scan to records
// created at or after the watermark. Read-only and repeatable.
func (s *Store) ListByCollection(collection string, since *time.Time) ([]models.Record, error) {
	query := `SELECT id, collection, title, body, score, comment_count, created_at, fetched_at
		FROM posts WHERE collection = ?`
	args := []any{collection}
	if since != nil {
		query += " AND created_at >= ?"
		args = append(args, since.UTC().Format(timeLayout))
	}
	query += " ORDER BY created_at ASC, id ASC"

	rows, err := s.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer rows.Close()

	var recs []models.Record
	for rows.Next() {
		var rec models.Record
		var createdAt, fetchedAt string
		if err := rows.Scan(&rec.ID, &rec.Collection, &rec.Title, &rec.Body,
			&rec.Score, &rec.CommentCount, &createdAt, &fetchedAt); err != nil {
			return nil, fmt.Errorf("list %s: scan: %w", collection, err)
		}
		if rec.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("list %s: bad created_at %q: %w", collection, createdAt, err)
		}
		if rec.FetchedAt, err = time.Parse(timeLayout, fetchedAt); err != nil {
			return nil, fmt.Errorf("list %s: bad fetched_at %q: %w", collection, fetchedAt, err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// ReplaceTrendBuckets swaps out a collection's buckets wholesale in a
// single transaction. Only the analyzer calls this.
func (s *Store) ReplaceTrendBuckets(collection string, buckets []models.TrendBucket) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("replace buckets %s: begin: %w", collection, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM trend_buckets WHERE collection = ?", collection); err != nil {
		return fmt.Errorf("replace buckets %s: clear: %w", collection, err)
	}
	for _, b := range buckets {
		keywords, err := json.Marshal(b.KeywordCounts)
		if err != nil {
			return fmt.Errorf("replace buckets %s: marshal keywords: %w", collection, err)
		}
		_, err = tx.Exec(
			`INSERT INTO trend_buckets (collection, period_start, record_count, mean_sentiment, mean_score, mean_comments, keyword_frequencies)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			b.Collection, b.PeriodStart.UTC().Format(timeLayout),
			b.RecordCount, b.MeanSentiment, b.MeanScore, b.MeanComments, string(keywords),
		)
		if err != nil {
			return fmt.Errorf("replace buckets %s: insert: %w", collection, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace buckets %s: commit: %w", collection, err)
	}
	return nil
}

// TrendBuckets returns a collection's buckets ordered by period start.
func (s *Store) TrendBuckets(collection string) ([]models.TrendBucket, error) {
	rows, err := s.conn.Query(
		`SELECT collection, period_start, record_count, mean_sentiment, mean_score, mean_comments, keyword_frequencies
		 FROM trend_buckets WHERE collection = ? ORDER BY period_start ASC`, collection)
	if err != nil {
		return nil, fmt.Errorf("buckets %s: %w", collection, err)
	}
	defer rows.Close()

	var buckets []models.TrendBucket
	for rows.Next() {
		var b models.TrendBucket
		var periodStart, keywords string
		if err := rows.Scan(&b.Collection, &periodStart, &b.RecordCount,
			&b.MeanSentiment, &b.MeanScore, &b.MeanComments, &keywords); err != nil {
			return nil, fmt.Errorf("buckets %s: scan: %w", collection, err)
		}
		if b.PeriodStart, err = time.Parse(timeLayout, periodStart); err != nil {
			return nil, fmt.Errorf("buckets %s: bad period_start %q: %w", collection, periodStart, err)
		}
		if err := json.Unmarshal([]byte(keywords), &b.KeywordCounts); err != nil {
			return nil, fmt.Errorf("buckets %s: unmarshal keywords: %w", collection, err)
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

// Collections lists every collection with at least one stored record.
func (s *Store) Collections() ([]string, error) {
	rows, err := s.conn.Query("SELECT DISTINCT collection FROM posts ORDER BY collection")
	if err != nil {
		return nil, fmt.Errorf("collections: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("collections: scan: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
