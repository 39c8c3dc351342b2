package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// RedditRSS fetches the subreddit's RSS feed. It is a degraded fallback for
// when the JSON listings are unavailable: entries carry no score, upvote
// ratio, or comment count, which classify as zeros downstream.
type RedditRSS struct {
	client    *http.Client
	parser    *gofeed.Parser
	subreddit string
	userAgent string
}

// NewRedditRSS creates an RSS fallback fetcher for one subreddit.
func NewRedditRSS(subreddit, userAgent string) *RedditRSS {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &RedditRSS{
		client:    &http.Client{Timeout: 30 * time.Second},
		parser:    gofeed.NewParser(),
		subreddit: subreddit,
		userAgent: userAgent,
	}
}

func (r *RedditRSS) Name() string { return "reddit-rss" }

func (r *RedditRSS) Fetch(ctx context.Context) ([]RawPost, error) {
	feedURL := fmt.Sprintf("https://www.reddit.com/r/%s/.rss", url.PathEscape(r.subreddit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch rss r/%s: %w", r.subreddit, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rss r/%s status %d", r.subreddit, resp.StatusCode)
	}

	parsed, err := r.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse rss r/%s: %w", r.subreddit, err)
	}

	var posts []RawPost
	for _, entry := range parsed.Items {
		created := time.Now().UTC()
		if entry.PublishedParsed != nil {
			created = entry.PublishedParsed.UTC()
		} else if entry.UpdatedParsed != nil {
			created = entry.UpdatedParsed.UTC()
		}

		author := ""
		if entry.Author != nil {
			author = strings.TrimPrefix(entry.Author.Name, "/u/")
		}

		posts = append(posts, RawPost{
			ID:         entryID(entry),
			Title:      entry.Title,
			Selftext:   entry.Description,
			Author:     author,
			CreatedUTC: float64(created.Unix()),
			Permalink:  permalinkFromLink(entry.Link),
		})
	}
	return posts, nil
}

// entryID extracts the bare post ID from an Atom entry GUID like
// "t3_1abc2de" so RSS entries dedupe against their JSON counterparts.
func entryID(entry *gofeed.Item) string {
	id := entry.GUID
	if id == "" {
		id = entry.Link
	}
	if idx := strings.LastIndex(id, "t3_"); idx >= 0 {
		return id[idx+len("t3_"):]
	}
	return id
}

func permalinkFromLink(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return link
	}
	return u.Path
}
