// Package source fetches raw post records from the monitored community.
package source

import "context"

// RawPost is one post as returned by a fetch call, before classification.
// Fields mirror the Reddit listing payload; absent fields decode to zero
// values and must not fail downstream processing.
type RawPost struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Selftext      string  `json:"selftext"`
	Score         int     `json:"score"`
	UpvoteRatio   float64 `json:"upvote_ratio"`
	NumComments   int     `json:"num_comments"`
	Author        string  `json:"author"`
	CreatedUTC    float64 `json:"created_utc"`
	Permalink     string  `json:"permalink"`
	LinkFlairText string  `json:"link_flair_text"`
	Stickied      bool    `json:"stickied"`
	Locked        bool    `json:"locked"`
	Gilded        int     `json:"gilded"`
	Domain        string  `json:"domain"`
}

// Source is the interface every fetch adapter must implement.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]RawPost, error)
}

// Dedupe merges an ordered sequence of raw posts (the concatenation of one
// or more fetch results) into a sequence unique by post ID. The first
// occurrence of each ID wins and first-appearance order is preserved.
func Dedupe(posts []RawPost) []RawPost {
	seen := make(map[string]bool, len(posts))
	unique := make([]RawPost, 0, len(posts))
	for _, p := range posts {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		unique = append(unique, p)
	}
	return unique
}
