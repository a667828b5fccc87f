// Command jira-snowflake-gateway serves the JIRA data operations over HTTP,
// backed by the Snowflake query gateway.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/redhat-community-ai-tools/jira-mcp-snowflake/pkg/auth"
	"github.com/redhat-community-ai-tools/jira-mcp-snowflake/pkg/config"
	"github.com/redhat-community-ai-tools/jira-mcp-snowflake/pkg/jira"
	"github.com/redhat-community-ai-tools/jira-mcp-snowflake/pkg/logging"
	"github.com/redhat-community-ai-tools/jira-mcp-snowflake/pkg/snowflake"
)

// tokenHeader carries a caller-supplied credential that takes precedence
// over server-side configuration.
const tokenHeader = "X-Snowflake-Token"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logging.Setup(logging.Config{Level: logging.LogLevel(cfg.LogLevel)})
	logger := logging.NewLogger("main")

	gw := snowflake.New(cfg, logger)
	svc, err := jira.NewService(gw, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("service construction failed")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/api/issues", listIssuesHandler(svc))
	mux.HandleFunc("/api/issues/", issueDetailsHandler(svc))
	mux.HandleFunc("/api/projects/summary", summaryHandler(svc))
	mux.HandleFunc("/api/components", listComponentsHandler(svc))

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: mux,
	}

	var metricsServer *http.Server
	if cfg.EnableMetrics {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.MetricsPort),
			Handler: metricsMux,
		}
		go func() {
			logger.Info().Int("port", cfg.MetricsPort).Msg("metrics server listening")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("metrics server failed")
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info().
			Int("port", cfg.Port).
			Str("connection_method", cfg.ConnectionMethod).
			Msg("gateway listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("server shutdown failed")
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("metrics server shutdown failed")
		}
	}

	gw.Cleanup(shutdownCtx)
	logger.Info().Msg("shutdown complete")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

func listIssuesHandler(svc *jira.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		params := jira.ListIssuesParams{
			Project:       q.Get("project"),
			IssueType:     q.Get("issue_type"),
			Status:        q.Get("status"),
			Priority:      q.Get("priority"),
			SearchText:    q.Get("search_text"),
			Limit:         queryInt(q.Get("limit"), 50),
			TokenOverride: r.Header.Get(tokenHeader),
		}

		list, err := svc.ListIssues(r.Context(), params)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func issueDetailsHandler(svc *jira.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		issueKey := strings.TrimPrefix(r.URL.Path, "/api/issues/")
		if issueKey == "" {
			http.Error(w, "issue key required", http.StatusBadRequest)
			return
		}

		detail, err := svc.IssueDetails(r.Context(), issueKey, r.Header.Get(tokenHeader))
		if err != nil {
			if errors.Is(err, jira.ErrIssueNotFound) {
				writeJSON(w, http.StatusNotFound, map[string]string{
					"error": fmt.Sprintf("Issue with key '%s' not found", issueKey),
				})
				return
			}
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, detail)
	}
}

func summaryHandler(svc *jira.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := svc.Summary(r.Context(), r.Header.Get(tokenHeader))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}

func listComponentsHandler(svc *jira.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		params := jira.ListComponentsParams{
			Project:       q.Get("project"),
			Archived:      q.Get("archived"),
			Deleted:       q.Get("deleted"),
			SearchText:    q.Get("search_text"),
			Limit:         queryInt(q.Get("limit"), 50),
			TokenOverride: r.Header.Get(tokenHeader),
		}

		list, err := svc.ListComponents(r.Context(), params)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// writeError maps credential failures to 401 and everything else to 500.
func writeError(w http.ResponseWriter, err error) {
	var authErr *auth.AuthenticationError
	if errors.As(err, &authErr) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": authErr.Error()})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("writing response failed")
	}
}

func queryInt(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
