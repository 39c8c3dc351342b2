package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/kellyoconor/reddit-chat-beta2/internal/config"
	"github.com/kellyoconor/reddit-chat-beta2/internal/pipeline"
	"github.com/kellyoconor/reddit-chat-beta2/internal/scheduler"
	"github.com/kellyoconor/reddit-chat-beta2/internal/store"
	"github.com/kellyoconor/reddit-chat-beta2/pkg/alert"
	"github.com/kellyoconor/reddit-chat-beta2/pkg/insight"
	"github.com/kellyoconor/reddit-chat-beta2/pkg/server"
	"github.com/kellyoconor/reddit-chat-beta2/pkg/source"
)

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func cliLogger() *slog.Logger {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)
	return logger
}

func daemonLogger() *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)
	return logger
}

func buildSources(cfg *config.Config) []source.Source {
	sources := []source.Source{
		source.NewReddit(
			cfg.Reddit.Subreddit,
			cfg.Reddit.Timeframe,
			cfg.Reddit.Sort,
			cfg.Reddit.Limit,
			cfg.Reddit.UserAgent,
		),
	}
	if cfg.Reddit.RSSFallback {
		sources = append(sources, source.NewRedditRSS(cfg.Reddit.Subreddit, cfg.Reddit.UserAgent))
	}
	return sources
}

func buildLLM(cfg *config.Config) *insight.Client {
	return insight.NewClient(
		cfg.LLM.Provider,
		cfg.LLM.Model,
		cfg.LLM.APIKey,
		cfg.LLM.BaseURL,
		cfg.LLM.MaxTokens,
		cfg.LLM.Temperature,
	)
}

func buildAlertManager(cfg *config.Config) *alert.Manager {
	var notifiers []alert.Notifier

	if cfg.Alerts.Slack.Enabled && cfg.Alerts.Slack.WebhookURL != "" {
		notifiers = append(notifiers, alert.NewSlack(cfg.Alerts.Slack.WebhookURL))
	}
	if cfg.Alerts.Discord.Enabled && cfg.Alerts.Discord.WebhookURL != "" {
		notifiers = append(notifiers, alert.NewDiscord(cfg.Alerts.Discord.WebhookURL))
	}
	if cfg.Alerts.Webhook.Enabled && cfg.Alerts.Webhook.URL != "" {
		notifiers = append(notifiers, alert.NewWebhook(cfg.Alerts.Webhook.URL, cfg.Alerts.Webhook.Secret))
	}

	return alert.NewManager(notifiers)
}

func runCollect() error {
	logger := cliLogger()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	collector := pipeline.NewCollector(buildSources(cfg), db, logger)
	batch, err := collector.Run(context.Background())
	if err != nil {
		return fmt.Errorf("collect: %w", err)
	}

	fmt.Printf("collected %d posts from r/%s\n", len(batch), cfg.Reddit.Subreddit)
	return nil
}

func runSummary(days int, jsonOutput bool) error {
	cliLogger()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	posts, err := db.HistoricalPosts(context.Background(),
		now.AddDate(0, 0, -days).Format(time.RFC3339),
		now.Format(time.RFC3339), "")
	if err != nil {
		return fmt.Errorf("historical posts: %w", err)
	}

	summary := insight.Summarize(posts)

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}

	fmt.Printf("last %d days of r/%s\n\n", days, cfg.Reddit.Subreddit)
	fmt.Printf("posts:          %d\n", summary.TotalPosts)
	fmt.Printf("problem posts:  %d (%d%%)\n", summary.ProblemPosts, summary.ProblemRate)
	fmt.Printf("sentiment:      %d negative, %d neutral, %d positive\n\n",
		summary.Sentiment["negative"], summary.Sentiment["neutral"], summary.Sentiment["positive"])

	if len(summary.TopKeywords) == 0 {
		fmt.Println("no keywords recorded (try collecting first: redditpulse collect)")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEYWORD\tCOUNT")
	for _, kc := range summary.TopKeywords {
		fmt.Fprintf(w, "%s\t%d\n", kc.Keyword, kc.Count)
	}
	return w.Flush()
}

func runServe(port int) error {
	logger := daemonLogger()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if port == 0 {
		port = cfg.Server.Port
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	collector := pipeline.NewCollector(buildSources(cfg), db, logger)
	srv := server.New(db, collector, buildLLM(cfg), cfg.Reddit.Subreddit, port, logger)
	return srv.ListenAndServe()
}

func runDaemon(port int) error {
	logger := daemonLogger()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if port == 0 {
		port = cfg.Server.Port
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	collector := pipeline.NewCollector(buildSources(cfg), db, logger)

	sched := scheduler.New(collector, buildAlertManager(cfg), cfg.Reddit.Subreddit,
		cfg.Schedule.ParseCollectInterval(), cfg.Alerts.MinUrgent, logger)

	// Background collection alongside the API.
	go func() {
		if err := sched.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("scheduler error", "error", err)
		}
	}()

	srv := server.New(db, collector, buildLLM(cfg), cfg.Reddit.Subreddit, port, logger)
	return srv.Run(ctx)
}
