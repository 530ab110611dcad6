package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/dreday2050/trendscope/internal/models"
)

const (
	REDDIT_AUTH_URL = "https://www.reddit.com/api/v1/access_token"
	REDDIT_API_URL  = "https://oauth.reddit.com"

	// Reddit caps listing pages at 100 items.
	PAGE_LIMIT = 100
)

// RemoteListingSource reads public listings from the live API using an
// application-only OAuth2 session. Read-only: it never touches a write
// endpoint.
type RemoteListingSource struct {
	client    *http.Client
	apiURL    string
	userAgent string
}

func NewRemoteListingSource(clientID, clientSecret, userAgent string) *RemoteListingSource {
	oauthConf := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     REDDIT_AUTH_URL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	return &RemoteListingSource{
		client:    oauthConf.Client(context.Background()),
		apiURL:    REDDIT_API_URL,
		userAgent: userAgent,
	}
}

// FetchPage walks one page of /r/<collection>/<kind>. The cursor is
// the remote "after" fullname token; empty means the first page.
func (s *RemoteListingSource) FetchPage(ctx context.Context, collection string, kind ListingKind, cursor string) ([]models.RawListingItem, string, error) {
	parsedURL, err := url.Parse(fmt.Sprintf("%s/r/%s/%s.json", s.apiURL, collection, kind))
	if err != nil {
		return nil, "", fmt.Errorf("[RemoteListingSource] failed to parse URL: %w", err)
	}
	queryParams := parsedURL.Query()
	queryParams.Add("limit", strconv.Itoa(PAGE_LIMIT))
	queryParams.Add("raw_json", "1")
	if cursor != "" {
		queryParams.Add("after", cursor)
	}
	if kind == KindTop {
		queryParams.Add("t", "week")
	}
	parsedURL.RawQuery = queryParams.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsedURL.String(), nil)
	if err != nil {
		return nil, "", &TransportError{Err: err}
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			status := 0
			if retrieveErr.Response != nil {
				status = retrieveErr.Response.StatusCode
			}
			return nil, "", &AuthError{Status: status, Msg: "token retrieval failed"}
		}
		return nil, "", &TransportError{Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, "", &AuthError{Status: resp.StatusCode, Msg: "credentials rejected by listing endpoint"}
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, "", &RateLimitedError{RetryAfter: retryAfter(resp)}
	case resp.StatusCode != http.StatusOK:
		return nil, "", &TransportError{Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	var listing models.ListingAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, "", &TransportError{Err: fmt.Errorf("decode listing: %w", err)}
	}

	items := make([]models.RawListingItem, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		items = append(items, models.RawListingItem{
			ID:             child.Data.ID,
			Collection:     collection,
			Title:          child.Data.Title,
			Body:           child.Data.Selftext,
			Score:          child.Data.Score,
			CommentCount:   child.Data.NumComments,
			CreatedAt:      time.Unix(int64(child.Data.CreatedUTC), 0).UTC(),
			Author:         child.Data.Author,
			AuthorFullname: child.Data.AuthorFullname,
		})
	}

	return items, listing.Data.After, nil
}

func retryAfter(resp *http.Response) time.Duration {
	secs, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
