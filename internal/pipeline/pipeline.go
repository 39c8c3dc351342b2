// Package pipeline runs the ingestion sequence: fetch raw posts from every
// configured source, dedupe them, classify and normalize each record, sort
// the batch by priority, and persist it.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/kellyoconor/reddit-chat-beta2/internal/store"
	"github.com/kellyoconor/reddit-chat-beta2/pkg/classify"
	"github.com/kellyoconor/reddit-chat-beta2/pkg/source"
)

// Collector orchestrates one ingestion run end to end.
type Collector struct {
	sources []source.Source
	store   store.Store
	logger  *slog.Logger
}

// NewCollector creates a collector over the given fetch sources.
func NewCollector(sources []source.Source, st store.Store, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{sources: sources, store: st, logger: logger}
}

// Run executes one full pipeline pass and returns the classified, sorted
// batch. Source failures and per-record persistence failures are logged and
// skipped; a run where every source fails yields an empty batch, not an
// error. Runs are safe to overlap: upserts are idempotent and trend
// increments commute.
func (c *Collector) Run(ctx context.Context) ([]store.Post, error) {
	runID := uuid.NewString()[:8]
	logger := c.logger.With("run", runID)

	var raw []source.RawPost
	for _, src := range c.sources {
		posts, err := src.Fetch(ctx)
		if err != nil {
			logger.Warn("fetch failed", "source", src.Name(), "error", err)
			continue
		}
		logger.Info("fetched", "source", src.Name(), "posts", len(posts))
		raw = append(raw, posts...)
	}

	unique := source.Dedupe(raw)
	batch := make([]store.Post, len(unique))
	for i, r := range unique {
		batch[i] = Normalize(r)
	}
	SortByPriority(batch)

	saved := 0
	for i := range batch {
		if err := c.store.SavePost(ctx, &batch[i]); err != nil {
			logger.Warn("save failed", "post", batch[i].ID, "error", err)
			continue
		}
		saved++
	}

	logger.Info("collection complete",
		"fetched", len(raw), "unique", len(unique), "saved", saved)
	return batch, nil
}

// Normalize maps a raw record plus classifier output into the canonical
// post. created_utc is taken straight from the source epoch; created_iso is
// derived from it.
func Normalize(raw source.RawPost) store.Post {
	createdUTC := int64(raw.CreatedUTC)
	return store.Post{
		ID:              raw.ID,
		Title:           raw.Title,
		Content:         raw.Selftext,
		Score:           raw.Score,
		UpvoteRatio:     raw.UpvoteRatio,
		Comments:        raw.NumComments,
		Author:          raw.Author,
		CreatedUTC:      createdUTC,
		CreatedISO:      time.Unix(createdUTC, 0).UTC().Format(time.RFC3339),
		URL:             fmt.Sprintf("https://reddit.com%s", raw.Permalink),
		Flair:           raw.LinkFlairText,
		IsProblemReport: classify.IsProblemReport(raw.Title, raw.Selftext),
		Sentiment:       classify.Sentiment(raw.Title, raw.Selftext),
		UrgencyLevel:    classify.Urgency(raw.Title, raw.Selftext, raw.Score, raw.NumComments),
		Keywords:        classify.Keywords(raw.Title, raw.Selftext),
		CreatedRelative: store.RelativeAge(createdUTC, time.Now()),
	}
}

// SortByPriority orders a classified batch by urgency level descending,
// then score descending; equal posts keep their relative order.
func SortByPriority(batch []store.Post) {
	sort.SliceStable(batch, func(i, j int) bool {
		if batch[i].UrgencyLevel != batch[j].UrgencyLevel {
			return batch[i].UrgencyLevel > batch[j].UrgencyLevel
		}
		return batch[i].Score > batch[j].Score
	})
}
