package store

import (
	"context"
	"time"

	"github.com/coursegraph/coursegraph/internal/metrics"
)

// Embedder generates embedding vectors for query and chunk text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Store resolves human-typed course names to canonical titles and performs
// filtered semantic search over course content.
type Store struct {
	client     *Client
	embedder   Embedder
	maxResults int
	metrics    *metrics.Collector
}

// New creates a Store. maxResults bounds every content search.
func New(client *Client, embedder Embedder, maxResults int) *Store {
	if maxResults <= 0 {
		maxResults = 5
	}
	return &Store{
		client:     client,
		embedder:   embedder,
		maxResults: maxResults,
	}
}

// MaxResults returns the configured result bound.
func (s *Store) MaxResults() int {
	return s.maxResults
}

// SetMetrics attaches a collector for search and embedding timings.
func (s *Store) SetMetrics(c *metrics.Collector) {
	s.metrics = c
}

func (s *Store) record(op string, start time.Time) {
	if s.metrics != nil {
		s.metrics.RecordTiming(op, time.Since(start))
	}
}

func (s *Store) embed(ctx context.Context, text string) ([]float32, error) {
	defer s.record(metrics.OpEmbedding, time.Now())
	return s.embedder.Embed(ctx, text)
}

func (s *Store) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	defer s.record(metrics.OpEmbedding, time.Now())
	return s.embedder.EmbedBatch(ctx, texts)
}
