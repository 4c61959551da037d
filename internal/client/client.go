// Package client provides a JSON API client for the coursegraph server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/coursegraph/coursegraph/internal/models"
)

// Client talks to the coursegraph HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new API client.
// If baseURL is empty, uses COURSEGRAPH_SERVER_URL env var or defaults to localhost:8000.
// Timeout can be configured via COURSEGRAPH_CLIENT_TIMEOUT env var (default 5m for tool-calling queries).
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = os.Getenv("COURSEGRAPH_SERVER_URL")
	}
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}

	timeout := 5 * time.Minute
	if t := os.Getenv("COURSEGRAPH_CLIENT_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			timeout = d
		}
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// do sends one request and decodes the JSON response into result.
func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("server error: %s", apiErr.Error)
		}
		return fmt.Errorf("server error: %s - %s", resp.Status, string(respBody))
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}

// QueryResult is a server answer with its cited sources.
type QueryResult struct {
	Answer    string          `json:"answer"`
	Sources   []models.Source `json:"sources"`
	SessionID string          `json:"session_id"`
}

// Query asks a question. Pass the returned SessionID back in to continue
// the same conversation; pass "" to start a new one.
func (c *Client) Query(ctx context.Context, query, sessionID string) (*QueryResult, error) {
	req := map[string]string{"query": query}
	if sessionID != "" {
		req["session_id"] = sessionID
	}

	var result QueryResult
	if err := c.do(ctx, http.MethodPost, "/api/query", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CourseStats summarizes the indexed catalog.
type CourseStats struct {
	TotalCourses int      `json:"total_courses"`
	CourseTitles []string `json:"course_titles"`
}

// GetCourseStats returns the indexed course count and titles.
func (c *Client) GetCourseStats(ctx context.Context) (*CourseStats, error) {
	var result CourseStats
	if err := c.do(ctx, http.MethodGet, "/api/courses", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// OperationStats holds metrics for a single operation type.
type OperationStats struct {
	Count       int     `json:"Count"`
	TotalTimeMs int     `json:"TotalTimeMs"`
	AvgTimeMs   float64 `json:"AvgTimeMs"`
	MinTimeMs   int     `json:"MinTimeMs"`
	MaxTimeMs   int     `json:"MaxTimeMs"`
}

// ServerStats holds in-memory runtime statistics (resets on server restart).
type ServerStats struct {
	UptimeSeconds float64         `json:"UptimeSeconds"`
	Embedding     *OperationStats `json:"Embedding,omitempty"`
	LLMGenerate   *OperationStats `json:"LLMGenerate,omitempty"`
	DBSearch      *OperationStats `json:"DBSearch,omitempty"`
	ToolExecute   *OperationStats `json:"ToolExecute,omitempty"`
}

// GetServerStats returns runtime statistics.
func (c *Client) GetServerStats(ctx context.Context) (*ServerStats, error) {
	var result ServerStats
	if err := c.do(ctx, http.MethodGet, "/api/stats", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
