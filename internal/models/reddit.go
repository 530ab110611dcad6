package models

// Wire shapes for the remote listing endpoints.

type ListingAPIResponse struct {
	Data ListingAPIData `json:"data"`
}

type ListingAPIData struct {
	After    string            `json:"after"`
	Children []ListingAPIChild `json:"children"`
}

type ListingAPIChild struct {
	Data ListingAPIChildData `json:"data"`
}

type ListingAPIChildData struct {
	ID             string  `json:"id"`
	Subreddit      string  `json:"subreddit"`
	Author         string  `json:"author"`
	AuthorFullname string  `json:"author_fullname"`
	Title          string  `json:"title"`
	Selftext       string  `json:"selftext"`
	Score          int     `json:"score"`
	NumComments    int     `json:"num_comments"`
	CreatedUTC     float64 `json:"created_utc"`
}
