// Package rag wires the store, tool-calling generator, and session history
// into the question answering flow.
package rag

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/coursegraph/coursegraph/internal/generator"
	"github.com/coursegraph/coursegraph/internal/ingest"
	"github.com/coursegraph/coursegraph/internal/metrics"
	"github.com/coursegraph/coursegraph/internal/models"
	"github.com/coursegraph/coursegraph/internal/session"
	"github.com/coursegraph/coursegraph/internal/store"
	"github.com/coursegraph/coursegraph/internal/tools"
)

// Analytics summarizes the indexed catalog.
type Analytics struct {
	TotalCourses int      `json:"total_courses"`
	CourseTitles []string `json:"course_titles"`
}

// System answers questions about indexed course materials.
type System struct {
	store     *store.Store
	generator *generator.Generator
	sessions  *session.Manager
	ingestor  *ingest.Ingestor
	metrics   *metrics.Collector
	logger    *slog.Logger
}

// New assembles the system and attaches a shared metrics collector to the
// store.
func New(st *store.Store, gen *generator.Generator, sessions *session.Manager, ing *ingest.Ingestor, logger *slog.Logger) *System {
	if logger == nil {
		logger = slog.Default()
	}
	collector := metrics.NewCollector()
	st.SetMetrics(collector)
	return &System{
		store:     st,
		generator: gen,
		sessions:  sessions,
		ingestor:  ing,
		metrics:   collector,
		logger:    logger,
	}
}

// Metrics exposes the shared collector for the stats endpoint.
func (s *System) Metrics() *metrics.Collector {
	return s.metrics
}

// CreateSession starts a new conversation and returns its ID.
func (s *System) CreateSession() string {
	return s.sessions.Create()
}

// Query answers one user question. A fresh tool registry is built per query
// so collected sources never leak between concurrent questions.
func (s *System) Query(ctx context.Context, query, sessionID string) (string, []models.Source, error) {
	prompt := fmt.Sprintf("Answer this question about course materials: %s", query)
	history := s.sessions.History(sessionID)

	registry := tools.NewRegistry()
	registry.Register(s.metered(tools.NewSearchTool(s.store)))
	registry.Register(s.metered(tools.NewOutlineTool(s.store)))

	start := time.Now()
	answer, err := s.generator.GenerateResponse(ctx, prompt, history, registry)
	s.metrics.RecordTiming(metrics.OpLLMGenerate, time.Since(start))
	if err != nil {
		return "", nil, err
	}

	sources := registry.LastSources()
	registry.ResetSources()

	s.sessions.AddExchange(sessionID, query, answer)
	s.logger.Debug("query answered",
		"session", sessionID, "sources", len(sources), "duration", time.Since(start))
	return answer, sources, nil
}

// AddCourseDocument indexes a single course file.
func (s *System) AddCourseDocument(ctx context.Context, path string) (*models.Course, int, error) {
	return s.ingestor.AddCourseDocument(ctx, path)
}

// AddCourseFolder indexes every course document in dir, skipping courses
// already present.
func (s *System) AddCourseFolder(ctx context.Context, dir string, clearExisting bool, progress ingest.ProgressFunc) (int, int, error) {
	return s.ingestor.AddCourseFolder(ctx, dir, clearExisting, progress)
}

// GetAnalytics reports how many courses are indexed and their titles.
func (s *System) GetAnalytics(ctx context.Context) (*Analytics, error) {
	titles, err := s.store.ExistingCourseTitles(ctx)
	if err != nil {
		return nil, err
	}
	return &Analytics{TotalCourses: len(titles), CourseTitles: titles}, nil
}

// meteredTool records execution timing around an inner tool. It always
// advertises source tracking and delegates when the inner tool tracks.
type meteredTool struct {
	inner   tools.Tool
	metrics *metrics.Collector
}

func (s *System) metered(t tools.Tool) tools.Tool {
	return &meteredTool{inner: t, metrics: s.metrics}
}

func (m *meteredTool) Definition() tools.Definition {
	return m.inner.Definition()
}

func (m *meteredTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	defer func(start time.Time) {
		m.metrics.RecordTiming(metrics.OpToolExecute, time.Since(start))
	}(time.Now())
	return m.inner.Execute(ctx, args)
}

func (m *meteredTool) LastSources() []models.Source {
	if tracker, ok := m.inner.(tools.SourceTracker); ok {
		return tracker.LastSources()
	}
	return nil
}

func (m *meteredTool) ResetSources() {
	if tracker, ok := m.inner.(tools.SourceTracker); ok {
		tracker.ResetSources()
	}
}
