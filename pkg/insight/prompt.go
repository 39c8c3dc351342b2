package insight

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kellyoconor/reddit-chat-beta2/internal/store"
)

// themeTriggers select the theme-analysis template when any of them appears
// in the user's query. The trailing space in "top " is deliberate: it
// matches "top issues" without matching "laptop".
var themeTriggers = []string{
	"theme", "topic", "top ", "main", "common", "trending", "patterns", "categories",
}

const (
	themePostLimit   = 25
	generalPostLimit = 20
)

const themePrompt = `You are a senior business analyst providing executives with actionable insights from r/%s customer feedback.

CONTEXT:
- Total posts analyzed: %d
- Problem reports: %d (%d%%)
- High-urgency issues: %d
- Sentiment: %d negative, %d neutral, %d positive

USER QUERY: "%s"

POSTS DATA: %s

Provide a clear, easy-to-read analysis with:

## QUICK SUMMARY
- Total posts analyzed and overall customer mood
- The top 3 customer concerns

## TOP ISSUES FOUND
For each of the top 3 issues: a short name, how many customers are affected, and a sample customer quote.

## KEY INSIGHTS
- What this means for customers
- Any patterns or trends noticed
- Recommendations in simple terms

Use clear headings and bullet points. Keep the response concise and scannable, helpful rather than overly technical.`

const generalPrompt = `You are a helpful customer feedback analyst. Provide clear, easy-to-read insights about r/%s customer feedback.

CONTEXT: Analyzing %d recent posts from r/%s
QUERY: "%s"

POST DATA: %s

Provide detailed analysis including:
- Specific customer pain points with urgency levels
- Root cause analysis where possible
- Impact on customer retention and satisfaction
- Recommended immediate actions

Include direct post links and quote specific customer language to support findings.`

// IsThemeQuery reports whether the user's query asks for thematic analysis.
func IsThemeQuery(message string) bool {
	lower := strings.ToLower(message)
	for _, trigger := range themeTriggers {
		if strings.Contains(lower, trigger) {
			return true
		}
	}
	return false
}

// BuildPrompt constructs the text sent to the language model for a user
// query over a classified, priority-sorted batch. Theme queries get the
// executive template with the top 25 posts; everything else gets the
// general template with the top 20. Section order is fixed: statistics
// header, user query, serialized post data, then instructions.
func BuildPrompt(query, subreddit string, posts []store.Post) string {
	if IsThemeQuery(query) {
		summary := Summarize(posts)
		highUrgency := 0
		for _, p := range posts {
			if p.UrgencyLevel >= 4 {
				highUrgency++
			}
		}
		return fmt.Sprintf(themePrompt,
			subreddit,
			summary.TotalPosts,
			summary.ProblemPosts, summary.ProblemRate,
			highUrgency,
			summary.Sentiment["negative"], summary.Sentiment["neutral"], summary.Sentiment["positive"],
			query,
			serializePosts(posts, themePostLimit))
	}

	return fmt.Sprintf(generalPrompt,
		subreddit,
		len(posts),
		subreddit,
		query,
		serializePosts(posts, generalPostLimit))
}

func serializePosts(posts []store.Post, limit int) string {
	if len(posts) > limit {
		posts = posts[:limit]
	}
	data, err := json.Marshal(posts)
	if err != nil {
		return "[]"
	}
	return string(data)
}
