// Package scheduler drives periodic background collection.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kellyoconor/reddit-chat-beta2/internal/pipeline"
	"github.com/kellyoconor/reddit-chat-beta2/internal/store"
	"github.com/kellyoconor/reddit-chat-beta2/pkg/alert"
)

// Scheduler fires one collection job per tick, with the first run starting
// immediately. There is no overlap guard: a slow run racing the next tick
// (or a user-triggered collection) is tolerated because the store's upserts
// are idempotent and trend increments commute.
type Scheduler struct {
	collector *pipeline.Collector
	alertMgr  *alert.Manager
	subreddit string
	interval  time.Duration
	minUrgent int
	logger    *slog.Logger
}

// New creates a scheduler.
func New(collector *pipeline.Collector, alertMgr *alert.Manager, subreddit string, interval time.Duration, minUrgent int, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	if minUrgent <= 0 {
		minUrgent = 3
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		collector: collector,
		alertMgr:  alertMgr,
		subreddit: subreddit,
		interval:  interval,
		minUrgent: minUrgent,
		logger:    logger,
	}
}

// Run starts the scheduler loop. Blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("scheduler: initial collection")
	s.collectOnce(ctx)

	s.logger.Info("scheduler running", "interval", s.interval.String())

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.collectOnce(ctx)
		}
	}
}

func (s *Scheduler) collectOnce(ctx context.Context) {
	batch, err := s.collector.Run(ctx)
	if err != nil {
		s.logger.Warn("collection failed", "error", err)
		return
	}
	s.maybeAlert(ctx, batch)
}

// maybeAlert broadcasts when a run surfaces enough high-urgency problem
// reports to be worth a ping.
func (s *Scheduler) maybeAlert(ctx context.Context, batch []store.Post) {
	if s.alertMgr == nil || !s.alertMgr.HasNotifiers() {
		return
	}

	var urgent []store.Post
	for _, p := range batch {
		if p.IsProblemReport && p.UrgencyLevel >= 4 {
			urgent = append(urgent, p)
		}
	}
	if len(urgent) < s.minUrgent {
		return
	}

	n := &alert.Notification{
		Title:       fmt.Sprintf("Urgent reports spiking in r/%s", s.subreddit),
		Body:        fmt.Sprintf("%d high-urgency problem reports in the latest collection.", len(urgent)),
		Subreddit:   s.subreddit,
		UrgentCount: len(urgent),
		Posts:       urgent,
	}

	if err := s.alertMgr.Broadcast(ctx, n); err != nil {
		s.logger.Warn("alert broadcast failed", "error", err)
		return
	}
	s.logger.Info("alerted", "urgent", len(urgent))
}
