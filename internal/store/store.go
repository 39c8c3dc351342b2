package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/kellyoconor/reddit-chat-beta2/pkg/classify"
)

// Store is the persistence interface.
type Store interface {
	UpsertPost(ctx context.Context, post *Post) error
	SavePost(ctx context.Context, post *Post) error
	GetPost(ctx context.Context, id string) (*Post, error)
	HistoricalPosts(ctx context.Context, startISO, endISO, keyword string) ([]Post, error)

	IncrementKeywordTrend(ctx context.Context, keyword, date string, hour int) error
	KeywordTrends(ctx context.Context, keyword string, days int) ([]TrendPoint, error)

	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// New opens a SQLite database and runs migrations. Migrations are
// idempotent; re-running them is safe. Pragmas use the driver's _pragma
// query form; WAL plus a busy timeout lets concurrent writers on separate
// pool connections queue instead of failing with SQLITE_BUSY.
func New(path string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// UpsertPost inserts or replaces a post keyed by ID. Mutable fields (title
// may be edited, score and comments drift) take the incoming values;
// collected_at is set by the schema default at first insert and never
// updated afterward.
func (s *SQLiteStore) UpsertPost(ctx context.Context, post *Post) error {
	keywordsJSON, _ := json.Marshal(post.Keywords)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO posts (id, title, content, score, upvote_ratio, comments, author,
			created_utc, created_iso, url, flair, is_problem_report, sentiment,
			urgency_level, keywords)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			score = excluded.score,
			upvote_ratio = excluded.upvote_ratio,
			comments = excluded.comments,
			author = excluded.author,
			created_utc = excluded.created_utc,
			created_iso = excluded.created_iso,
			url = excluded.url,
			flair = excluded.flair,
			is_problem_report = excluded.is_problem_report,
			sentiment = excluded.sentiment,
			urgency_level = excluded.urgency_level,
			keywords = excluded.keywords
	`, post.ID, post.Title, post.Content, post.Score, post.UpvoteRatio,
		post.Comments, post.Author, post.CreatedUTC, post.CreatedISO,
		post.URL, post.Flair, post.IsProblemReport, post.Sentiment,
		post.UrgencyLevel, string(keywordsJSON))
	if err != nil {
		return fmt.Errorf("upsert post %s: %w", post.ID, err)
	}
	return nil
}

// SavePost derives the post's keyword set, upserts the row, then bumps one
// trend bucket per distinct keyword. Buckets are keyed by ingestion time,
// not the post's creation time.
func (s *SQLiteStore) SavePost(ctx context.Context, post *Post) error {
	post.Keywords = classify.Keywords(post.Title, post.Content)

	if err := s.UpsertPost(ctx, post); err != nil {
		return err
	}

	now := time.Now().UTC()
	date := now.Format("2006-01-02")
	hour := now.Hour()

	for _, kw := range post.Keywords {
		if err := s.IncrementKeywordTrend(ctx, kw, date, hour); err != nil {
			return fmt.Errorf("trend %q for post %s: %w", kw, post.ID, err)
		}
	}
	return nil
}

func (s *SQLiteStore) GetPost(ctx context.Context, id string) (*Post, error) {
	var post Post
	if err := s.db.GetContext(ctx, &post, "SELECT * FROM posts WHERE id = ?", id); err != nil {
		return nil, fmt.Errorf("get post %s: %w", id, err)
	}
	if err := hydrate(&post); err != nil {
		return nil, err
	}
	return &post, nil
}

// HistoricalPosts returns posts whose created_iso lies in the inclusive
// [startISO, endISO] range, newest first. A non-empty keyword narrows the
// result to posts whose title or content contains it, case-insensitively;
// the filter applies after range selection.
func (s *SQLiteStore) HistoricalPosts(ctx context.Context, startISO, endISO, keyword string) ([]Post, error) {
	var posts []Post
	err := s.db.SelectContext(ctx, &posts, `
		SELECT * FROM posts
		WHERE created_iso BETWEEN ? AND ?
		ORDER BY created_utc DESC
	`, startISO, endISO)
	if err != nil {
		return nil, fmt.Errorf("historical posts: %w", err)
	}

	if keyword != "" {
		needle := strings.ToLower(keyword)
		filtered := posts[:0]
		for _, p := range posts {
			if strings.Contains(strings.ToLower(p.Title), needle) ||
				strings.Contains(strings.ToLower(p.Content), needle) {
				filtered = append(filtered, p)
			}
		}
		posts = filtered
	}

	for i := range posts {
		if err := hydrate(&posts[i]); err != nil {
			return nil, err
		}
	}
	return posts, nil
}

// IncrementKeywordTrend creates the (keyword, date, hour) bucket on first
// sight and adds one. The statement is atomic, so concurrent callers on the
// same bucket commute; counts only ever grow.
func (s *SQLiteStore) IncrementKeywordTrend(ctx context.Context, keyword, date string, hour int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO keyword_trends (keyword, count, date, hour)
		VALUES (?, 1, ?, ?)
		ON CONFLICT(keyword, date, hour) DO UPDATE SET count = count + 1
	`, keyword, date, hour)
	if err != nil {
		return fmt.Errorf("increment trend %q %s/%d: %w", keyword, date, hour, err)
	}
	return nil
}

// KeywordTrends sums a keyword's buckets over the trailing window, grouped
// hourly and ordered by date then hour ascending.
func (s *SQLiteStore) KeywordTrends(ctx context.Context, keyword string, days int) ([]TrendPoint, error) {
	if days <= 0 {
		days = 7
	}
	startDate := time.Now().UTC().AddDate(0, 0, -days).Format("2006-01-02")

	var points []TrendPoint
	err := s.db.SelectContext(ctx, &points, `
		SELECT date, hour, SUM(count) AS total_count
		FROM keyword_trends
		WHERE keyword = ? AND date >= ?
		GROUP BY date, hour
		ORDER BY date, hour
	`, keyword, startDate)
	if err != nil {
		return nil, fmt.Errorf("keyword trends %q: %w", keyword, err)
	}
	return points, nil
}

func hydrate(post *Post) error {
	if post.KeywordsJSON != "" {
		if err := json.Unmarshal([]byte(post.KeywordsJSON), &post.Keywords); err != nil {
			return fmt.Errorf("decode keywords for post %s: %w", post.ID, err)
		}
	}
	post.CreatedRelative = RelativeAge(post.CreatedUTC, time.Now())
	return nil
}
