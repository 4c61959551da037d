package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuery(t *testing.T) {
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/query", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"answer": "Lesson 1 covers tool definitions.",
			"sources": [{"text": "MCP - Lesson 1", "link": "https://example.com/l1"}],
			"session_id": "abc-123"
		}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	result, err := c.Query(context.Background(), "What does lesson 1 cover?", "")
	require.NoError(t, err)

	assert.Equal(t, "Lesson 1 covers tool definitions.", result.Answer)
	assert.Equal(t, "abc-123", result.SessionID)
	require.Len(t, result.Sources, 1)
	assert.Equal(t, "MCP - Lesson 1", result.Sources[0].Text)

	assert.Equal(t, "What does lesson 1 cover?", gotBody["query"])
	_, hasSession := gotBody["session_id"]
	assert.False(t, hasSession, "empty session_id must be omitted")
}

func TestQuery_SendsSessionID(t *testing.T) {
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{"answer":"ok","sources":[],"session_id":"abc-123"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Query(context.Background(), "follow up", "abc-123")
	require.NoError(t, err)
	assert.Equal(t, "abc-123", gotBody["session_id"])
}

func TestQuery_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"query is required"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Query(context.Background(), "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query is required")
}

func TestQuery_NonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Query(context.Background(), "q", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "upstream down")
}

func TestGetCourseStats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/courses", r.URL.Path)
		w.Write([]byte(`{"total_courses":2,"course_titles":["MCP","RAG"]}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	stats, err := c.GetCourseStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalCourses)
	assert.Equal(t, []string{"MCP", "RAG"}, stats.CourseTitles)
}

func TestGetServerStats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/stats", r.URL.Path)
		w.Write([]byte(`{
			"UptimeSeconds": 42.5,
			"LLMGenerate": {"Count": 3, "TotalTimeMs": 900, "AvgTimeMs": 300, "MinTimeMs": 200, "MaxTimeMs": 400}
		}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	stats, err := c.GetServerStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42.5, stats.UptimeSeconds)
	require.NotNil(t, stats.LLMGenerate)
	assert.Equal(t, 3, stats.LLMGenerate.Count)
	assert.Nil(t, stats.Embedding)
}

func TestNew_Defaults(t *testing.T) {
	t.Setenv("COURSEGRAPH_SERVER_URL", "")

	c := New("")
	assert.Equal(t, "http://localhost:8000", c.baseURL)

	c = New("http://example.com:9000")
	assert.Equal(t, "http://example.com:9000", c.baseURL)
}
