// Package testutil provides testing utilities for the gateway.
package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockResponse defines the behavior for a mock statements endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Delay      time.Duration
}

// MockSnowflake is a configurable mock statements API server for testing.
type MockSnowflake struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	// Tracking
	RequestCount      int
	LastRequestHeader http.Header
	LastStatement     string
}

// NewMockSnowflake creates a new mock statements API server.
func NewMockSnowflake() *MockSnowflake {
	mock := &MockSnowflake{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		mock.mu.Lock()
		mock.RequestCount++
		mock.LastRequestHeader = r.Header.Clone()
		if r.Method == http.MethodPost {
			var payload struct {
				Statement string `json:"statement"`
			}
			if err := json.Unmarshal(body, &payload); err == nil {
				mock.LastStatement = payload.Statement
			}
		}
		mock.mu.Unlock()

		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockSnowflake) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockSnowflake) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockSnowflake) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.LastRequestHeader = nil
	m.LastStatement = ""
}

// SetHandler sets a custom handler for a specific path.
func (m *MockSnowflake) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a simple response for a path.
func (m *MockSnowflake) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// SetStatementRows configures the statements endpoint to return a
// single-partition result with the given rows.
func (m *MockSnowflake) SetStatementRows(rows [][]any) {
	body, _ := json.Marshal(map[string]any{"data": rows})
	m.SetResponse("/statements", MockResponse{StatusCode: http.StatusOK, Body: string(body)})
}

// SetPartitionedStatement configures a multi-partition result: the POST
// returns the first partition plus metadata, and each follow-up partition
// index is served under /statements/{handle}.
func (m *MockSnowflake) SetPartitionedStatement(handle string, partitions [][][]any) {
	info := make([]map[string]any, len(partitions))
	for i, p := range partitions {
		info[i] = map[string]any{"rowCount": len(p)}
	}

	first, _ := json.Marshal(map[string]any{
		"data":              partitions[0],
		"statementHandle":   handle,
		"resultSetMetaData": map[string]any{"partitionInfo": info},
	})
	m.SetResponse("/statements", MockResponse{StatusCode: http.StatusOK, Body: string(first)})

	m.SetHandler("/statements/"+handle, func(w http.ResponseWriter, r *http.Request) {
		var index int
		fmt.Sscanf(r.URL.Query().Get("partition"), "%d", &index)
		if index < 1 || index >= len(partitions) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		body, _ := json.Marshal(map[string]any{"data": partitions[index]})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(body)
	})
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockSnowflake) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetLastStatement returns the SQL text of the most recent submission.
func (m *MockSnowflake) GetLastStatement() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.LastStatement
}

// defaultHandler returns an empty successful result.
func (m *MockSnowflake) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"data": []}`))
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"message": "internal server error"}`,
	}
}

// NewBadRequestResponse creates a 400 response for a rejected statement.
func NewBadRequestResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusBadRequest,
		Body:       `{"message": "SQL compilation error"}`,
	}
}
