package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kellyoconor/reddit-chat-beta2/internal/store"
	"github.com/kellyoconor/reddit-chat-beta2/pkg/alert"
)

type recordingNotifier struct {
	sent []*alert.Notification
}

func (r *recordingNotifier) Name() string { return "recording" }

func (r *recordingNotifier) Send(ctx context.Context, n *alert.Notification) error {
	r.sent = append(r.sent, n)
	return nil
}

func urgentPost(id string) store.Post {
	return store.Post{ID: id, Title: "outage", IsProblemReport: true, UrgencyLevel: 5}
}

func TestMaybeAlert_BelowThresholdStaysQuiet(t *testing.T) {
	rec := &recordingNotifier{}
	s := New(nil, alert.NewManager([]alert.Notifier{rec}), "Comcast_Xfinity", 0, 3, nil)

	s.maybeAlert(context.Background(), []store.Post{
		urgentPost("a"),
		urgentPost("b"),
		{ID: "c", IsProblemReport: true, UrgencyLevel: 2},
		{ID: "d", IsProblemReport: false, UrgencyLevel: 5},
	})

	assert.Empty(t, rec.sent)
}

func TestMaybeAlert_BroadcastsUrgentProblemReports(t *testing.T) {
	rec := &recordingNotifier{}
	s := New(nil, alert.NewManager([]alert.Notifier{rec}), "Comcast_Xfinity", 0, 2, nil)

	s.maybeAlert(context.Background(), []store.Post{
		urgentPost("a"),
		urgentPost("b"),
		{ID: "c", IsProblemReport: false, UrgencyLevel: 1},
	})

	require.Len(t, rec.sent, 1)
	n := rec.sent[0]
	assert.Equal(t, 2, n.UrgentCount)
	assert.Equal(t, "Comcast_Xfinity", n.Subreddit)
	assert.Len(t, n.Posts, 2)
}

func TestMaybeAlert_NoNotifiers(t *testing.T) {
	s := New(nil, alert.NewManager(nil), "Comcast_Xfinity", 0, 1, nil)

	// Must not panic or block with nothing registered.
	s.maybeAlert(context.Background(), []store.Post{urgentPost("a")})
}
