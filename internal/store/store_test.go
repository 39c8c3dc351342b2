package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testPost(id string) *Post {
	created := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return &Post{
		ID:              id,
		Title:           "Internet outage in my area",
		Content:         "wifi has been down for hours",
		Score:           10,
		UpvoteRatio:     0.9,
		Comments:        5,
		Author:          "user1",
		CreatedUTC:      created.Unix(),
		CreatedISO:      created.Format(time.RFC3339),
		URL:             "https://reddit.com/r/test/comments/" + id,
		Flair:           "Outage",
		Sentiment:       "neutral",
		UrgencyLevel:    4,
		IsProblemReport: true,
	}
}

func TestNew_AppliesPragmas(t *testing.T) {
	s := newTestStore(t)

	var journalMode string
	require.NoError(t, s.db.Get(&journalMode, "PRAGMA journal_mode"))
	assert.Equal(t, "wal", journalMode)

	var busyTimeout int
	require.NoError(t, s.db.Get(&busyTimeout, "PRAGMA busy_timeout"))
	assert.Equal(t, 5000, busyTimeout)
}

func TestUpsertPost_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	post := testPost("abc")
	require.NoError(t, s.UpsertPost(ctx, post))

	first, err := s.GetPost(ctx, "abc")
	require.NoError(t, err)
	assert.Greater(t, first.CollectedAt, int64(0))

	// Re-ingest the same ID with drifted mutable fields.
	updated := testPost("abc")
	updated.Title = "Internet outage in my area (edited)"
	updated.Score = 42
	updated.Comments = 17
	require.NoError(t, s.UpsertPost(ctx, updated))

	got, err := s.GetPost(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "Internet outage in my area (edited)", got.Title)
	assert.Equal(t, 42, got.Score)
	assert.Equal(t, 17, got.Comments)

	// collected_at is set once, at first observation.
	assert.Equal(t, first.CollectedAt, got.CollectedAt)

	// Still exactly one row.
	posts, err := s.HistoricalPosts(ctx, "2000-01-01T00:00:00Z", "2100-01-01T00:00:00Z", "")
	require.NoError(t, err)
	assert.Len(t, posts, 1)
}

func TestSavePost_DerivesKeywordsAndBumpsTrends(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	post := testPost("kw1")
	require.NoError(t, s.SavePost(ctx, post))

	// "Internet outage ... wifi ... down" hits these vocabulary terms.
	assert.Equal(t, []string{"internet", "wifi", "outage", "down"}, post.Keywords)

	got, err := s.GetPost(ctx, "kw1")
	require.NoError(t, err)
	assert.Equal(t, post.Keywords, got.Keywords)

	// Each extracted keyword got one ingestion-time bucket.
	for _, kw := range post.Keywords {
		points, err := s.KeywordTrends(ctx, kw, 7)
		require.NoError(t, err)
		require.Len(t, points, 1)
		assert.Equal(t, 1, points[0].TotalCount)
	}
}

func TestIncrementKeywordTrend_Monotonic(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	date := time.Now().UTC().Format("2006-01-02")

	for i := 0; i < 5; i++ {
		require.NoError(t, s.IncrementKeywordTrend(ctx, "billing", date, 9))
	}

	points, err := s.KeywordTrends(ctx, "billing", 7)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, 5, points[0].TotalCount)
	assert.Equal(t, 9, points[0].Hour)
}

func TestIncrementKeywordTrend_Concurrent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	date := time.Now().UTC().Format("2006-01-02")

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				assert.NoError(t, s.IncrementKeywordTrend(ctx, "modem", date, 3))
			}
		}()
	}
	wg.Wait()

	points, err := s.KeywordTrends(ctx, "modem", 7)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, 40, points[0].TotalCount)
}

func TestKeywordTrends_GroupingAndOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	today := time.Now().UTC().Format("2006-01-02")
	yesterday := time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")

	require.NoError(t, s.IncrementKeywordTrend(ctx, "internet", today, 5))
	require.NoError(t, s.IncrementKeywordTrend(ctx, "internet", today, 5))
	require.NoError(t, s.IncrementKeywordTrend(ctx, "internet", today, 3))
	require.NoError(t, s.IncrementKeywordTrend(ctx, "internet", yesterday, 23))
	require.NoError(t, s.IncrementKeywordTrend(ctx, "router", today, 5))

	points, err := s.KeywordTrends(ctx, "internet", 7)
	require.NoError(t, err)
	require.Len(t, points, 3)

	assert.Equal(t, TrendPoint{Date: yesterday, Hour: 23, TotalCount: 1}, points[0])
	assert.Equal(t, TrendPoint{Date: today, Hour: 3, TotalCount: 1}, points[1])
	assert.Equal(t, TrendPoint{Date: today, Hour: 5, TotalCount: 2}, points[2])
}

func TestKeywordTrends_WindowExcludesOldBuckets(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	old := time.Now().UTC().AddDate(0, 0, -30).Format("2006-01-02")
	require.NoError(t, s.IncrementKeywordTrend(ctx, "cable", old, 1))

	points, err := s.KeywordTrends(ctx, "cable", 7)
	require.NoError(t, err)
	assert.Empty(t, points)

	points, err = s.KeywordTrends(ctx, "cable", 60)
	require.NoError(t, err)
	assert.Len(t, points, 1)
}

func TestHistoricalPosts_Range(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	inside := testPost("inside")
	inside.CreatedUTC = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC).Unix()
	inside.CreatedISO = "2024-01-01T12:00:00Z"

	outside := testPost("outside")
	outside.CreatedUTC = time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC).Unix()
	outside.CreatedISO = "2024-01-03T00:00:00Z"

	require.NoError(t, s.UpsertPost(ctx, inside))
	require.NoError(t, s.UpsertPost(ctx, outside))

	posts, err := s.HistoricalPosts(ctx, "2024-01-01T00:00:00Z", "2024-01-02T00:00:00Z", "")
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "inside", posts[0].ID)
}

func TestHistoricalPosts_OrderNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i, id := range []string{"old", "mid", "new"} {
		p := testPost(id)
		created := time.Date(2024, 1, 1, i, 0, 0, 0, time.UTC)
		p.CreatedUTC = created.Unix()
		p.CreatedISO = created.Format(time.RFC3339)
		require.NoError(t, s.UpsertPost(ctx, p))
	}

	posts, err := s.HistoricalPosts(ctx, "2024-01-01T00:00:00Z", "2024-01-02T00:00:00Z", "")
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, "new", posts[0].ID)
	assert.Equal(t, "old", posts[2].ID)
}

func TestHistoricalPosts_KeywordFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	billing := testPost("billing")
	billing.Title = "Question about my BILL"
	billing.Content = ""

	other := testPost("other")
	other.Title = "Slow speeds at night"
	other.Content = "nothing else"

	require.NoError(t, s.UpsertPost(ctx, billing))
	require.NoError(t, s.UpsertPost(ctx, other))

	posts, err := s.HistoricalPosts(ctx, "2024-01-01T00:00:00Z", "2024-01-02T00:00:00Z", "bill")
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "billing", posts[0].ID)
}

func TestGetPost_CorruptKeywordsIsAnError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertPost(ctx, testPost("bad")))
	_, err := s.db.ExecContext(ctx, "UPDATE posts SET keywords = 'not json' WHERE id = ?", "bad")
	require.NoError(t, err)

	_, err = s.GetPost(ctx, "bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode keywords")
}

func TestRelativeAge(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	age := func(d time.Duration) string {
		return RelativeAge(now.Add(-d).Unix(), now)
	}

	assert.Equal(t, "Less than an hour ago", age(30*time.Minute))
	assert.Equal(t, "5 hours ago", age(5*time.Hour))
	assert.Equal(t, "3 days ago", age(3*24*time.Hour))
	assert.Equal(t, "2 weeks ago", age(15*24*time.Hour))
}
