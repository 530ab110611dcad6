// Package source abstracts the remote read API behind a listing
// capability. The fetcher only ever sees the ListingSource interface;
// whether it is talking to the live API or synthetic offline data is
// the caller's choice.
package source

import (
	"context"
	"fmt"

	"github.com/dreday2050/trendscope/internal/models"
)

// ListingKind is a remote-defined ordering over a collection's items.
type ListingKind string

const (
	KindNew ListingKind = "new"
	KindHot ListingKind = "hot"
	KindTop ListingKind = "top"
)

func ParseListingKind(s string) (ListingKind, error) {
	switch ListingKind(s) {
	case KindNew, KindHot, KindTop:
		return ListingKind(s), nil
	}
	return "", fmt.Errorf("unknown listing kind %q", s)
}

// ListingSource fetches one page of a named listing. An empty item
// slice together with an empty next cursor signals the end of the
// listing. Implementations classify failures with the typed errors in
// this package so the fetcher can pick the right retry policy.
type ListingSource interface {
	FetchPage(ctx context.Context, collection string, kind ListingKind, cursor string) (items []models.RawListingItem, nextCursor string, err error)
}
