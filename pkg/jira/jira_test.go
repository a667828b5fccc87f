package jira

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/redhat-community-ai-tools/jira-mcp-snowflake/internal/testutil"
	"github.com/redhat-community-ai-tools/jira-mcp-snowflake/pkg/config"
	"github.com/redhat-community-ai-tools/jira-mcp-snowflake/pkg/snowflake"
)

func newTestService(t *testing.T, mock *testutil.MockSnowflake) *Service {
	t.Helper()

	cfg := &config.Config{
		BaseURL:            mock.URL(),
		Account:            "test-account",
		Database:           "TESTDB",
		Schema:             "PUBLIC",
		Warehouse:          "DEFAULT",
		Token:              "test-token",
		ConnectionMethod:   config.MethodAPI,
		Authenticator:      config.AuthSnowflake,
		EnableCaching:      true,
		CacheBackend:       config.CacheBackendMemory,
		CacheTTL:           time.Minute,
		CacheMaxSize:       100,
		MaxHTTPConnections: 5,
		HTTPTimeout:        5 * time.Second,
		RowDecodeWorkers:   4,
		RateLimitPerSecond: 1000,
		QueryBatchSize:     5,
	}

	gw := snowflake.New(cfg, zerolog.New(io.Discard))
	gw.SetRetryConfig(snowflake.RetryConfig{
		MaxAttempts:       1,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        time.Millisecond,
		BackoffMultiplier: 1,
	})

	svc, err := NewService(gw, zerolog.New(io.Discard))
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return svc
}

// statementRouter answers /statements by matching a substring of the
// submitted SQL, and records every statement it sees.
type statementRouter struct {
	mu         sync.Mutex
	routes     map[string][][]any
	failures   map[string]bool
	statements []string
}

func newStatementRouter() *statementRouter {
	return &statementRouter{
		routes:   make(map[string][][]any),
		failures: make(map[string]bool),
	}
}

func (r *statementRouter) respond(substring string, rows [][]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[substring] = rows
}

func (r *statementRouter) fail(substring string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[substring] = true
}

func (r *statementRouter) restore(substring string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.failures, substring)
}

func (r *statementRouter) seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.statements...)
}

func (r *statementRouter) handler(w http.ResponseWriter, req *http.Request) {
	var payload struct {
		Statement string `json:"statement"`
	}
	_ = json.NewDecoder(req.Body).Decode(&payload)

	r.mu.Lock()
	r.statements = append(r.statements, payload.Statement)

	for substring := range r.failures {
		if strings.Contains(payload.Statement, substring) {
			r.mu.Unlock()
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}

	var rows [][]any
	for substring, routed := range r.routes {
		if strings.Contains(payload.Statement, substring) {
			rows = routed
			break
		}
	}
	r.mu.Unlock()

	body, _ := json.Marshal(map[string]any{"data": rows})
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}
