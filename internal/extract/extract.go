// Package extract maps raw listing items to anonymized records. The
// mapping is a strict allow-list: anything not copied here, including
// every author and identity field, is dropped.
package extract

import (
	"fmt"
	"unicode/utf8"

	"github.com/dreday2050/trendscope/internal/models"
)

// DefaultMaxBodyBytes bounds stored body text.
const DefaultMaxBodyBytes = 500

const truncationMarker = "…"

// MalformedItemError marks a listing item missing a required field.
// The fetcher skips such items and keeps going.
type MalformedItemError struct {
	Field string
}

func (e *MalformedItemError) Error() string {
	return fmt.Sprintf("listing item missing required field %q", e.Field)
}

type Extractor struct {
	maxBodyBytes int
}

func New(maxBodyBytes int) *Extractor {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return &Extractor{maxBodyBytes: maxBodyBytes}
}

// Extract builds the persisted record shape from a raw item. Pure and
// deterministic; FetchedAt is left zero for the store to stamp on
// first persistence.
func (x *Extractor) Extract(raw models.RawListingItem) (models.Record, error) {
	if raw.ID == "" {
		return models.Record{}, &MalformedItemError{Field: "id"}
	}
	if raw.CreatedAt.IsZero() {
		return models.Record{}, &MalformedItemError{Field: "created_at"}
	}

	return models.Record{
		ID:           raw.ID,
		Collection:   raw.Collection,
		Title:        raw.Title,
		Body:         truncate(raw.Body, x.maxBodyBytes),
		Score:        raw.Score,
		CommentCount: raw.CommentCount,
		CreatedAt:    raw.CreatedAt.UTC(),
	}, nil
}

// truncate cuts s to at most max bytes plus a marker, backing up so the
// cut never lands inside a multi-byte rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + truncationMarker
}
