// Package snowflake provides the query gateway: credential resolution, rate
// limiting, pooled transport, partition-merging statement execution, and row
// decoding against the warehouse.
package snowflake

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/redhat-community-ai-tools/jira-mcp-snowflake/pkg/auth"
	"github.com/redhat-community-ai-tools/jira-mcp-snowflake/pkg/cache"
	"github.com/redhat-community-ai-tools/jira-mcp-snowflake/pkg/config"
	"github.com/redhat-community-ai-tools/jira-mcp-snowflake/pkg/ratelimit"
)

// Gateway is the shared entry point for all warehouse access. It owns the
// connection pools, rate limiter, response cache, and credential provider,
// constructed once and passed by reference to all operations.
type Gateway struct {
	cfg       *config.Config
	httpPool  *HTTPPool
	connector *ConnectorPool
	limiter   *ratelimit.Limiter
	store     cache.Store
	creds     *auth.Provider
	retryCfg  RetryConfig
	logger    zerolog.Logger
}

// ExecOptions adjusts a single Execute call.
type ExecOptions struct {
	// TokenOverride is a caller-supplied bearer token that takes precedence
	// over configured credentials.
	TokenOverride string

	// UseCache enables cache lookup and store for SELECT statements.
	UseCache bool
}

// New creates a gateway from configuration.
func New(cfg *config.Config, logger zerolog.Logger) *Gateway {
	gwLogger := logger.With().Str("component", "gateway").Logger()

	store := cache.NewStore(cache.Options{
		Enabled:   cfg.EnableCaching,
		Backend:   cfg.CacheBackend,
		TTL:       cfg.CacheTTL,
		MaxSize:   cfg.CacheMaxSize,
		RedisAddr: cfg.RedisURL,
	}, gwLogger)

	creds := auth.NewProvider(auth.Options{
		Method:               cfg.Authenticator,
		Token:                cfg.Token,
		Account:              cfg.Account,
		User:                 cfg.User,
		PrivateKeyFile:       cfg.PrivateKeyFile,
		PrivateKeyPassphrase: cfg.PrivateKeyPwd,
	}, gwLogger)

	return &Gateway{
		cfg:       cfg,
		httpPool:  NewHTTPPool(cfg.MaxHTTPConnections, cfg.HTTPTimeout, gwLogger),
		connector: NewConnectorPool(cfg, gwLogger),
		limiter:   ratelimit.New(cfg.RateLimitPerSecond, gwLogger),
		store:     store,
		creds:     creds,
		retryCfg:  DefaultRetryConfig(),
		logger:    gwLogger,
	}
}

// Config returns the gateway configuration.
func (g *Gateway) Config() *config.Config {
	return g.cfg
}

// Store returns the response cache, shared with callers that maintain
// their own derived cache entries.
func (g *Gateway) Store() cache.Store {
	return g.store
}

// SetRetryConfig replaces the transport retry policy (for testing).
func (g *Gateway) SetRetryConfig(cfg RetryConfig) {
	g.retryCfg = cfg
}

// Execute runs one SQL statement and returns the full merged row set.
//
// SELECT statements are served from the cache when possible. Credential and
// connection-configuration failures are returned as errors; transport
// failures degrade to an empty row set so callers see "no data" rather than
// an exception (the logs carry the cause).
func (g *Gateway) Execute(ctx context.Context, sqlText string, opts ExecOptions) ([][]any, error) {
	rows, _, err := g.ExecuteChecked(ctx, sqlText, opts)
	return rows, err
}

// ExecuteChecked is Execute plus a completeness flag. complete is false when
// the transport degraded the result (failed submission, skipped partition,
// driver error); a degraded row set is returned to the caller but never
// written to the cache, so a transient failure cannot masquerade as an
// authoritative empty answer for a full TTL.
func (g *Gateway) ExecuteChecked(ctx context.Context, sqlText string, opts ExecOptions) ([][]any, bool, error) {
	start := time.Now()
	defer func() {
		queryDuration.Observe(time.Since(start).Seconds())
	}()

	cacheable := opts.UseCache && isSelect(sqlText)
	var key string
	if cacheable {
		key = cache.Key("execute_query", map[string]string{"sql": sqlText})
		var rows [][]any
		if g.store.Get(ctx, key, &rows) {
			queriesTotal.WithLabelValues("cached").Inc()
			return rows, true, nil
		}
	}

	var rows [][]any
	var complete bool
	var err error
	if g.cfg.ConnectionMethod == config.MethodConnector {
		rows, complete, err = g.executeConnector(ctx, sqlText)
	} else {
		rows, complete, err = g.executeAPI(ctx, sqlText, opts.TokenOverride)
	}
	if err != nil {
		queriesTotal.WithLabelValues("error").Inc()
		return nil, false, err
	}

	if !complete {
		queriesTotal.WithLabelValues("degraded").Inc()
		return rows, false, nil
	}

	queriesTotal.WithLabelValues("success").Inc()
	if cacheable {
		g.store.Set(ctx, key, rows)
	}
	return rows, true, nil
}

// executeAPI submits the statement to the JSON statements endpoint and
// merges all partitions in order. complete is false when the submission
// failed or any partition was skipped.
func (g *Gateway) executeAPI(ctx context.Context, sqlText, tokenOverride string) ([][]any, bool, error) {
	cred, err := g.creds.Resolve(ctx, tokenOverride)
	if err != nil {
		return nil, false, err
	}

	if err := g.limiter.Acquire(ctx); err != nil {
		return nil, false, err
	}

	payload := map[string]any{
		"statement": sqlText,
		"timeout":   60,
		"database":  g.cfg.Database,
		"schema":    g.cfg.Schema,
		"warehouse": g.cfg.Warehouse,
		"parameters": map[string]any{
			"rows_per_resultset": 0, // 0 means no maximum row limit
		},
	}

	g.logger.Info().Str("sql", truncate(sqlText, 100)).Msg("executing statement")

	resp, err := g.doRequest(ctx, http.MethodPost, g.cfg.BaseURL+"/statements", payload, cred)
	if err != nil {
		g.logger.Error().Err(err).Msg("statement submission failed")
		return [][]any{}, false, nil
	}

	rows := resp.Data
	if rows == nil && resp.ResultSet != nil {
		rows = resp.ResultSet.Data
	}
	if rows == nil {
		rows = [][]any{}
	}

	// Partition continuation: fetch remaining partitions sequentially so row
	// order is preserved. A failed partition is skipped, yielding a partial
	// result.
	complete := true
	partitions := len(resp.ResultSetMetaData.PartitionInfo)
	if resp.StatementHandle != "" && partitions > 1 {
		g.logger.Info().
			Int("partitions", partitions).
			Str("handle", resp.StatementHandle).
			Msg("fetching remaining partitions")

		for i := 1; i < partitions; i++ {
			if err := g.limiter.Acquire(ctx); err != nil {
				g.logger.Warn().Err(err).Int("partition", i).Msg("partition fetch cancelled")
				complete = false
				break
			}

			url := fmt.Sprintf("%s/statements/%s?partition=%d", g.cfg.BaseURL, resp.StatementHandle, i)
			presp, perr := g.doRequest(ctx, http.MethodGet, url, nil, cred)
			if perr != nil || presp.Data == nil {
				partitionsFailed.Inc()
				complete = false
				g.logger.Warn().Err(perr).Int("partition", i).Msg("failed to fetch partition, skipping")
				continue
			}

			rows = append(rows, presp.Data...)
			partitionsFetched.Inc()
		}
	}

	g.logger.Info().Int("rows", len(rows)).Msg("statement complete")
	return rows, complete, nil
}

// executeConnector runs the statement over the native driver. Connection
// build failures propagate; query failures degrade to an empty, incomplete
// row set.
func (g *Gateway) executeConnector(ctx context.Context, sqlText string) ([][]any, bool, error) {
	db, err := g.connector.DB(ctx)
	if err != nil {
		return nil, false, err
	}

	if err := g.limiter.Acquire(ctx); err != nil {
		return nil, false, err
	}

	g.logger.Info().Str("sql", truncate(sqlText, 100)).Msg("executing statement via driver")

	sqlRows, err := db.QueryContext(ctx, sqlText)
	if err != nil {
		g.logger.Error().Err(err).Msg("driver query failed")
		return [][]any{}, false, nil
	}
	defer sqlRows.Close()

	columns, err := sqlRows.Columns()
	if err != nil {
		g.logger.Error().Err(err).Msg("reading result columns failed")
		return [][]any{}, false, nil
	}

	complete := true
	rows := [][]any{}
	for sqlRows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := sqlRows.Scan(pointers...); err != nil {
			g.logger.Warn().Err(err).Msg("row scan failed, skipping")
			complete = false
			continue
		}
		rows = append(rows, values)
	}
	if err := sqlRows.Err(); err != nil {
		g.logger.Warn().Err(err).Int("rows", len(rows)).Msg("result iteration ended early")
		complete = false
	}

	return rows, complete, nil
}

// ExecuteBatches runs an ordered list of independent queries in fixed-size
// batches. Within a batch all queries run concurrently; results keep the
// original query order and a failed query yields an empty row set at its
// index without aborting its siblings.
func (g *Gateway) ExecuteBatches(ctx context.Context, queries []string, batchSize int) [][][]any {
	if batchSize <= 0 {
		batchSize = g.cfg.QueryBatchSize
	}

	results := make([][][]any, len(queries))
	for start := 0; start < len(queries); start += batchSize {
		end := start + batchSize
		if end > len(queries) {
			end = len(queries)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				rows, err := g.Execute(ctx, queries[i], ExecOptions{UseCache: true})
				if err != nil {
					g.logger.Warn().Err(err).Int("index", i).Msg("batched query failed")
					results[i] = [][]any{}
					return
				}
				results[i] = rows
			}(i)
		}
		wg.Wait()
	}

	return results
}

// Cleanup tears down pooled resources and cached state. Called once at
// process shutdown.
func (g *Gateway) Cleanup(ctx context.Context) {
	g.httpPool.Close()
	if err := g.connector.Close(); err != nil {
		g.logger.Warn().Err(err).Msg("closing native connection failed")
	}
	g.store.Clear(ctx)
	g.creds.Clear()
	g.logger.Info().Msg("gateway cleanup complete")
}

// statementResponse is the statements API response in both its current and
// historical shapes.
type statementResponse struct {
	Data              [][]any `json:"data"`
	StatementHandle   string  `json:"statementHandle"`
	ResultSetMetaData struct {
		PartitionInfo []struct {
			RowCount int `json:"rowCount"`
		} `json:"partitionInfo"`
	} `json:"resultSetMetaData"`
	ResultSet *struct {
		Data [][]any `json:"data"`
	} `json:"resultSet"`
}

// doRequest performs one API call with transport-level retry, attaching the
// bearer credential, and decodes the JSON response.
func (g *Gateway) doRequest(ctx context.Context, method, url string, payload any, cred auth.Credential) (*statementResponse, error) {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}
	}

	var result statementResponse
	var errClass ErrorClass

	retryErr := retryWithBackoff(ctx, g.logger, g.retryCfg, func() error {
		req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
		if err != nil {
			errClass = ErrorClassClient
			return &TransportError{ErrorClass: errClass, Message: "build request", Err: err}
		}
		req.Header.Set("Authorization", "Bearer "+cred.Token)
		req.Header.Set("X-Snowflake-Authorization-Token-Type", cred.Type)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Content-Type", "application/json")

		resp, err := g.httpPool.Client().Do(req)
		if err != nil {
			errClass = ErrorClassNetwork
			return &TransportError{ErrorClass: errClass, Message: "request failed", Err: err}
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			errClass = classifyStatus(resp.StatusCode)
			return &TransportError{StatusCode: resp.StatusCode, ErrorClass: errClass, Message: resp.Status}
		}

		result = statementResponse{}
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			// malformed JSON is deterministic, not worth retrying
			errClass = ErrorClassClient
			return &TransportError{StatusCode: resp.StatusCode, ErrorClass: errClass, Message: "decode response", Err: err}
		}
		return nil
	}, func(error) ErrorClass {
		return errClass
	})

	if retryErr != nil {
		return nil, retryErr
	}
	return &result, nil
}

// isSelect reports whether the statement is a read-only SELECT, the only
// statement shape eligible for caching.
func isSelect(sqlText string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(sqlText)), "SELECT")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
