package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const defaultUserAgent = "redditpulse/1.0 (by /u/ComcastFeedbackBot)"

// Reddit fetches posts from a single subreddit's public JSON listings.
// Each fetch hits the configured sort endpoint plus a small slice of
// new.json so recent posts are always represented.
type Reddit struct {
	client    *http.Client
	subreddit string
	timeframe string
	sort      string
	limit     int
	userAgent string
}

// NewReddit creates a Reddit fetcher for one subreddit.
func NewReddit(subreddit, timeframe, sortBy string, limit int, userAgent string) *Reddit {
	if timeframe == "" {
		timeframe = "week"
	}
	if sortBy == "" {
		sortBy = "hot"
	}
	if limit <= 0 {
		limit = 50
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Reddit{
		client:    &http.Client{Timeout: 30 * time.Second},
		subreddit: subreddit,
		timeframe: timeframe,
		sort:      sortBy,
		limit:     limit,
		userAgent: userAgent,
	}
}

func (r *Reddit) Name() string { return "reddit" }

// Fetch returns the concatenated listings from both endpoints. Later
// endpoints may repeat posts from earlier ones; callers dedupe.
func (r *Reddit) Fetch(ctx context.Context) ([]RawPost, error) {
	endpoints := []string{
		fmt.Sprintf("https://www.reddit.com/r/%s/%s.json?limit=%d&t=%s",
			url.PathEscape(r.subreddit), r.sort, r.limit, r.timeframe),
		fmt.Sprintf("https://www.reddit.com/r/%s/new.json?limit=25",
			url.PathEscape(r.subreddit)),
	}

	var all []RawPost
	for _, endpoint := range endpoints {
		posts, err := r.fetchListing(ctx, endpoint)
		if err != nil {
			if len(all) == 0 {
				return nil, err
			}
			continue
		}
		all = append(all, posts...)
	}
	return all, nil
}

func (r *Reddit) fetchListing(ctx context.Context, endpoint string) ([]RawPost, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch r/%s: %w", r.subreddit, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reddit r/%s status %d", r.subreddit, resp.StatusCode)
	}

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("decode r/%s: %w", r.subreddit, err)
	}

	posts := make([]RawPost, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		posts = append(posts, child.Data)
	}
	return posts, nil
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data RawPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}
