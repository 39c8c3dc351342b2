package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsProblemReport(t *testing.T) {
	assert.True(t, IsProblemReport("Internet outage for 3 days", ""))
	assert.True(t, IsProblemReport("My modem keeps disconnecting", "it is broken"))
	assert.False(t, IsProblemReport("Loving the new speed tier", ""))

	// Substring matching is deliberate: embedded matches count.
	assert.True(t, IsProblemReport("Showdown at the service center", ""))
}

func TestIsProblemReport_EmptyText(t *testing.T) {
	assert.False(t, IsProblemReport("", ""))
}

func TestSentiment(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		content string
		want    string
	}{
		{"negative", "This service is terrible and awful", "", SentimentNegative},
		{"positive", "Great service, love it", "", SentimentPositive},
		{"neutral no matches", "My bill is due", "", SentimentNeutral},
		{"neutral tie", "great service but terrible support", "", SentimentNeutral},
		{"content counts too", "Quick question", "honestly I hate this awful modem", SentimentNegative},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sentiment(tt.title, tt.content))
		})
	}
}

func TestUrgency(t *testing.T) {
	// 1 base + 3 urgent term + 2 score>50 + 1 comments>20, capped at 5.
	assert.Equal(t, 5, Urgency("URGENT: outage", "", 100, 30))

	// Base only.
	assert.Equal(t, 1, Urgency("question about my plan", "", 0, 0))

	// +3 urgent term, nothing else.
	assert.Equal(t, 4, Urgency("this is critical", "", 0, 0))

	// +2 engagement score, +1 comments.
	assert.Equal(t, 4, Urgency("anyone else?", "", 51, 21))

	// Duration mention adds one.
	assert.Equal(t, 2, Urgency("no tv for two days now", "", 0, 0))

	// Boundary values do not trigger the engagement bumps.
	assert.Equal(t, 1, Urgency("hello", "", 50, 20))
}

func TestKeywords(t *testing.T) {
	kws := Keywords("WiFi slow after technician visit", "the internet drops hourly")
	assert.Equal(t, []string{"internet", "wifi", "slow", "technician"}, kws)
}

func TestKeywords_VocabularyOrder(t *testing.T) {
	// Extraction order follows the vocabulary, not text order.
	kws := Keywords("router before modem before internet", "")
	assert.Equal(t, []string{"internet", "modem", "router"}, kws)
}

func TestKeywords_NoMatches(t *testing.T) {
	assert.Empty(t, Keywords("completely unrelated text", ""))
}
