package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kellyoconor/reddit-chat-beta2/internal/store"
	"github.com/kellyoconor/reddit-chat-beta2/pkg/source"
)

type stubSource struct {
	name  string
	posts []source.RawPost
	err   error
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(ctx context.Context) ([]source.RawPost, error) {
	return s.posts, s.err
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func rawPost(id, title string) source.RawPost {
	return source.RawPost{
		ID:         id,
		Title:      title,
		Author:     "user1",
		Permalink:  "/r/test/comments/" + id,
		CreatedUTC: float64(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC).Unix()),
	}
}

func TestNormalize(t *testing.T) {
	raw := source.RawPost{
		ID:            "abc",
		Title:         "URGENT: Internet outage",
		Selftext:      "been down for hours, this is awful",
		Score:         60,
		UpvoteRatio:   0.95,
		NumComments:   25,
		Author:        "user1",
		CreatedUTC:    1704110400, // 2024-01-01T12:00:00Z
		Permalink:     "/r/test/comments/abc",
		LinkFlairText: "Outage",
	}

	post := Normalize(raw)

	assert.Equal(t, "abc", post.ID)
	assert.Equal(t, int64(1704110400), post.CreatedUTC)
	assert.Equal(t, "2024-01-01T12:00:00Z", post.CreatedISO)
	assert.Equal(t, "https://reddit.com/r/test/comments/abc", post.URL)
	assert.Equal(t, "Outage", post.Flair)
	assert.True(t, post.IsProblemReport)
	assert.Equal(t, "negative", post.Sentiment)
	assert.Equal(t, 5, post.UrgencyLevel)
	assert.Equal(t, []string{"internet", "outage", "down"}, post.Keywords)
	assert.NotEmpty(t, post.CreatedRelative)
}

func TestNormalize_MissingFieldsAreZero(t *testing.T) {
	post := Normalize(source.RawPost{ID: "bare", Title: "hello"})

	assert.Equal(t, "bare", post.ID)
	assert.Equal(t, "", post.Content)
	assert.Equal(t, 0, post.Score)
	assert.Equal(t, 0, post.Comments)
	assert.Equal(t, 1, post.UrgencyLevel)
	assert.Equal(t, "neutral", post.Sentiment)
	assert.False(t, post.IsProblemReport)
}

func TestSortByPriority(t *testing.T) {
	batch := []store.Post{
		{ID: "a", UrgencyLevel: 2, Score: 10},
		{ID: "b", UrgencyLevel: 5, Score: 3},
		{ID: "c", UrgencyLevel: 5, Score: 9},
		{ID: "d", UrgencyLevel: 1, Score: 100},
	}

	SortByPriority(batch)

	ids := make([]string, len(batch))
	for i, p := range batch {
		ids[i] = p.ID
	}
	assert.Equal(t, []string{"c", "b", "a", "d"}, ids)
}

func TestCollectorRun_DedupesAcrossSources(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	primary := &stubSource{name: "reddit", posts: []source.RawPost{
		rawPost("a", "first post"),
		rawPost("b", "second post"),
		rawPost("c", "third post"),
	}}
	fallback := &stubSource{name: "reddit-rss", posts: []source.RawPost{
		rawPost("b", "second post again"),
		rawPost("d", "fourth post"),
	}}

	collector := NewCollector([]source.Source{primary, fallback}, st, nil)
	batch, err := collector.Run(ctx)
	require.NoError(t, err)
	require.Len(t, batch, 4)

	// First occurrence of "b" wins.
	for _, p := range batch {
		if p.ID == "b" {
			assert.Equal(t, "second post", p.Title)
		}
	}

	// All four reached the store.
	for _, id := range []string{"a", "b", "c", "d"} {
		got, err := st.GetPost(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, got.ID)
	}
}

func TestCollectorRun_SourceFailureYieldsEmptyBatch(t *testing.T) {
	st := newTestStore(t)

	broken := &stubSource{name: "reddit", err: errors.New("status 503")}
	collector := NewCollector([]source.Source{broken}, st, nil)

	batch, err := collector.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, batch)
}

func TestCollectorRun_PartialSourceFailure(t *testing.T) {
	st := newTestStore(t)

	broken := &stubSource{name: "reddit", err: errors.New("status 503")}
	working := &stubSource{name: "reddit-rss", posts: []source.RawPost{rawPost("a", "only post")}}

	collector := NewCollector([]source.Source{broken, working}, st, nil)
	batch, err := collector.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, "a", batch[0].ID)
}
