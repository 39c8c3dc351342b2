package store

import (
	"fmt"
	"time"
)

// Post is one ingested discussion item with its derived classification
// fields. Keywords round-trip through the keywords column as a JSON array;
// CreatedRelative is presentation-only and recomputed on every read.
type Post struct {
	ID              string   `json:"id" db:"id"`
	Title           string   `json:"title" db:"title"`
	Content         string   `json:"content" db:"content"`
	Score           int      `json:"score" db:"score"`
	UpvoteRatio     float64  `json:"upvote_ratio" db:"upvote_ratio"`
	Comments        int      `json:"comments" db:"comments"`
	Author          string   `json:"author" db:"author"`
	CreatedUTC      int64    `json:"created_utc" db:"created_utc"`
	CreatedISO      string   `json:"created_iso" db:"created_iso"`
	URL             string   `json:"url" db:"url"`
	Flair           string   `json:"flair" db:"flair"`
	IsProblemReport bool     `json:"is_problem_report" db:"is_problem_report"`
	Sentiment       string   `json:"sentiment" db:"sentiment"`
	UrgencyLevel    int      `json:"urgency_level" db:"urgency_level"`
	Keywords        []string `json:"keywords" db:"-"`
	CollectedAt     int64    `json:"collected_at" db:"collected_at"`
	CreatedRelative string   `json:"created_relative" db:"-"`
	KeywordsJSON    string   `json:"-" db:"keywords"`
}

// TrendPoint is one hourly bucket of a keyword's ingestion activity.
type TrendPoint struct {
	Date       string `json:"date" db:"date"`
	Hour       int    `json:"hour" db:"hour"`
	TotalCount int    `json:"total_count" db:"total_count"`
}

// RelativeAge renders a human-readable age label for a creation timestamp.
func RelativeAge(createdUTC int64, now time.Time) string {
	hours := int(now.Sub(time.Unix(createdUTC, 0)).Hours())
	days := hours / 24

	switch {
	case hours < 1:
		return "Less than an hour ago"
	case hours < 24:
		return fmt.Sprintf("%d hours ago", hours)
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	default:
		return fmt.Sprintf("%d weeks ago", days/7)
	}
}
