// Package insight computes rollup analytics over classified posts and
// builds the prompts sent to the hosted language model.
package insight

import (
	"math"
	"sort"

	"github.com/kellyoconor/reddit-chat-beta2/internal/store"
	"github.com/kellyoconor/reddit-chat-beta2/pkg/classify"
)

// KeywordCount pairs a service keyword with its occurrence count.
type KeywordCount struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// Summary is the rollup over a batch of posts.
type Summary struct {
	TotalPosts   int            `json:"total_posts"`
	ProblemPosts int            `json:"problem_posts"`
	ProblemRate  int            `json:"problem_rate"`
	Sentiment    map[string]int `json:"sentiment"`
	TopKeywords  []KeywordCount `json:"top_keywords"`
}

// Summarize computes summary statistics for a post batch. ProblemRate is a
// rounded percentage, defined as 0 for an empty batch. TopKeywords holds at
// most 10 entries, count descending, ties broken by which keyword was seen
// first across the batch.
func Summarize(posts []store.Post) Summary {
	summary := Summary{
		TotalPosts: len(posts),
		Sentiment: map[string]int{
			classify.SentimentPositive: 0,
			classify.SentimentNeutral:  0,
			classify.SentimentNegative: 0,
		},
	}

	counts := make(map[string]int)
	var firstSeen []string

	for _, p := range posts {
		if p.IsProblemReport {
			summary.ProblemPosts++
		}
		summary.Sentiment[p.Sentiment]++

		for _, kw := range classify.Keywords(p.Title, p.Content) {
			if counts[kw] == 0 {
				firstSeen = append(firstSeen, kw)
			}
			counts[kw]++
		}
	}

	if summary.TotalPosts > 0 {
		rate := float64(summary.ProblemPosts) / float64(summary.TotalPosts) * 100
		summary.ProblemRate = int(math.Round(rate))
	}

	top := make([]KeywordCount, 0, len(firstSeen))
	for _, kw := range firstSeen {
		top = append(top, KeywordCount{Keyword: kw, Count: counts[kw]})
	}
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Count > top[j].Count
	})
	if len(top) > 10 {
		top = top[:10]
	}
	summary.TopKeywords = top

	return summary
}
