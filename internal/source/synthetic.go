package source

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dreday2050/trendscope/internal/models"
)

// SyntheticListingSource serves deterministic, locally generated pages
// so the pipeline can be inspected without live credentials. The same
// walk always yields the same items.
type SyntheticListingSource struct {
	Pages        int
	ItemsPerPage int
	// Base is the created_at of the newest item; older items step back
	// one hour per position.
	Base time.Time

	// Failure injection for exercising the fetcher's retry paths:
	// requests for FailPage (1-based) fail with Err until FailCount
	// many failures have been served.
	FailPage  int
	FailCount int
	Err       error
}

var syntheticTitles = []string{
	"Great results after week three",
	"Disappointed with the latest batch quality",
	"Dosage question for beginners",
	"Sharing my storage and reconstitution notes",
	"Amazing progress, feeling fantastic",
	"Terrible experience with shipping delays",
	"Weekly discussion thread",
	"New research paper worth reading",
}

var syntheticBodies = []string{
	"Been following the protocol for a while now and the results are genuinely good. Happy to answer questions.",
	"The quality seems worse than my last order and support was useless. Would not recommend.",
	"What would be a sensible starting point? The information out there is confusing.",
	"Keep everything refrigerated and use bacteriostatic water. Works well for me.",
	"",
}

func NewSyntheticListingSource(pages, itemsPerPage int) *SyntheticListingSource {
	return &SyntheticListingSource{
		Pages:        pages,
		ItemsPerPage: itemsPerPage,
		Base:         time.Date(2026, time.January, 15, 12, 0, 0, 0, time.UTC),
	}
}

func (s *SyntheticListingSource) FetchPage(ctx context.Context, collection string, kind ListingKind, cursor string) ([]models.RawListingItem, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", &TransportError{Err: err}
	}

	page, err := s.pageFromCursor(cursor)
	if err != nil {
		return nil, "", err
	}

	if page == s.FailPage && s.FailCount > 0 && s.Err != nil {
		s.FailCount--
		return nil, "", s.Err
	}

	if page > s.Pages {
		return nil, "", nil
	}

	items := make([]models.RawListingItem, 0, s.ItemsPerPage)
	for i := 0; i < s.ItemsPerPage; i++ {
		seq := (page-1)*s.ItemsPerPage + i
		items = append(items, models.RawListingItem{
			ID:             fmt.Sprintf("%s-%s-%04d", collection, kind, seq),
			Collection:     collection,
			Title:          syntheticTitles[seq%len(syntheticTitles)],
			Body:           syntheticBodies[seq%len(syntheticBodies)],
			Score:          10 + seq%40,
			CommentCount:   seq % 12,
			CreatedAt:      s.Base.Add(-time.Duration(seq) * time.Hour),
			Author:         fmt.Sprintf("synthetic_user_%d", seq%5),
			AuthorFullname: fmt.Sprintf("t2_synth%d", seq%5),
		})
	}

	if page == s.Pages {
		return items, "", nil
	}
	return items, fmt.Sprintf("synthetic-page-%d", page+1), nil
}

func (s *SyntheticListingSource) pageFromCursor(cursor string) (int, error) {
	if cursor == "" {
		return 1, nil
	}
	raw, ok := strings.CutPrefix(cursor, "synthetic-page-")
	if !ok {
		return 0, &TransportError{Err: fmt.Errorf("bad synthetic cursor %q", cursor)}
	}
	page, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &TransportError{Err: fmt.Errorf("bad synthetic cursor %q", cursor)}
	}
	return page, nil
}
