// Package server exposes the HTTP API: chat analysis, historical queries,
// keyword trends, and the rollup summary.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kellyoconor/reddit-chat-beta2/internal/pipeline"
	"github.com/kellyoconor/reddit-chat-beta2/internal/store"
	"github.com/kellyoconor/reddit-chat-beta2/pkg/insight"
)

// Server provides the HTTP API.
type Server struct {
	store     store.Store
	collector *pipeline.Collector
	llm       *insight.Client
	subreddit string
	port      int
	logger    *slog.Logger
}

// New creates a new HTTP server.
func New(st store.Store, collector *pipeline.Collector, llm *insight.Client, subreddit string, port int, logger *slog.Logger) *Server {
	if port == 0 {
		port = 3000
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		store:     st,
		collector: collector,
		llm:       llm,
		subreddit: subreddit,
		port:      port,
		logger:    logger,
	}
}

// Handler returns the route mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/chat", s.handleChat)
	mux.HandleFunc("/api/historical", s.handleHistorical)
	mux.HandleFunc("/api/keyword-trends/", s.handleKeywordTrends)
	mux.HandleFunc("/api/analytics-summary", s.handleAnalyticsSummary)

	// Static dashboard, when a public/ directory is present.
	if _, err := os.Stat("public"); err == nil {
		mux.Handle("/", http.FileServer(http.Dir("public")))
	}

	return mux
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("server listening", "addr", addr, "subreddit", s.subreddit)
	return http.ListenAndServe(addr, s.Handler())
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	srv := &http.Server{Addr: addr, Handler: s.Handler()}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr, "subreddit", s.subreddit)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "community feedback analytics server is running",
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	posts, err := s.collector.Run(r.Context())
	if err != nil || len(posts) == 0 {
		// No data is a graceful answer, not a failure.
		writeJSON(w, http.StatusOK, map[string]any{
			"response": fmt.Sprintf("I couldn't fetch recent posts from r/%s. Please try again.", s.subreddit),
			"source":   fmt.Sprintf("r/%s", s.subreddit),
		})
		return
	}

	prompt := insight.BuildPrompt(req.Message, s.subreddit, posts)
	answer, err := s.llm.Complete(r.Context(), prompt)
	if err != nil {
		s.logger.Error("llm analysis failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "Analysis failed: " + err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"response":       answer,
		"source":         fmt.Sprintf("r/%s (AI Analysis)", s.subreddit),
		"posts_analyzed": len(posts),
	})
}

func (s *Server) handleHistorical(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	q := r.URL.Query()
	startDate := q.Get("startDate")
	endDate := q.Get("endDate")
	keyword := q.Get("keyword")

	if startDate == "" || endDate == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "startDate and endDate are required"})
		return
	}

	posts, err := s.store.HistoricalPosts(r.Context(), startDate, endDate, keyword)
	if err != nil {
		s.logger.Error("historical query failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to fetch historical data"})
		return
	}

	var kw any
	if keyword != "" {
		kw = keyword
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"posts":      posts,
		"total":      len(posts),
		"date_range": map[string]string{"start_date": startDate, "end_date": endDate},
		"keyword":    kw,
	})
}

func (s *Server) handleKeywordTrends(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	keyword := strings.TrimPrefix(r.URL.Path, "/api/keyword-trends/")
	if keyword == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "keyword is required"})
		return
	}

	days := queryDays(r, 7)
	trends, err := s.store.KeywordTrends(r.Context(), keyword, days)
	if err != nil {
		s.logger.Error("keyword trends query failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to fetch keyword trends"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"keyword": keyword,
		"days":    days,
		"trends":  trends,
	})
}

func (s *Server) handleAnalyticsSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	days := queryDays(r, 7)
	now := time.Now().UTC()
	endDate := now.Format(time.RFC3339)
	startDate := now.AddDate(0, 0, -days).Format(time.RFC3339)

	posts, err := s.store.HistoricalPosts(r.Context(), startDate, endDate, "")
	if err != nil {
		s.logger.Error("summary query failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to fetch analytics"})
		return
	}

	summary := insight.Summarize(posts)
	writeJSON(w, http.StatusOK, map[string]any{
		"period": map[string]any{
			"days":       days,
			"start_date": startDate,
			"end_date":   endDate,
		},
		"summary": map[string]any{
			"total_posts":   summary.TotalPosts,
			"problem_posts": summary.ProblemPosts,
			"problem_rate":  summary.ProblemRate,
			"sentiment":     summary.Sentiment,
		},
		"top_keywords": summary.TopKeywords,
	})
}

func queryDays(r *http.Request, fallback int) int {
	if v := r.URL.Query().Get("days"); v != "" {
		if days, err := strconv.Atoi(v); err == nil && days > 0 {
			return days
		}
	}
	return fallback
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
