package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/surrealdb/surrealdb.go"

	"github.com/coursegraph/coursegraph/internal/metrics"
	"github.com/coursegraph/coursegraph/internal/models"
)

// CourseMetadata is a catalog row without its embedding.
type CourseMetadata struct {
	Title       string  `json:"title"`
	Instructor  *string `json:"instructor"`
	Link        *string `json:"link"`
	LessonsJSON string  `json:"lessons_json"`
	LessonCount int     `json:"lesson_count"`
}

type titleRow struct {
	Title string `json:"title"`
}

type contentRow struct {
	Content      string  `json:"content"`
	CourseTitle  string  `json:"course_title"`
	LessonNumber *int    `json:"lesson_number"`
	ChunkIndex   int     `json:"chunk_index"`
	Distance     float64 `json:"distance"`
}

// hnswEF is the HNSW search candidate count. Higher improves recall at the
// cost of latency.
const hnswEF = 40

// AddCourse upserts a catalog entry for the course. The course title is
// embedded so that ResolveCourseName can match approximate names against it.
func (s *Store) AddCourse(ctx context.Context, course *models.Course) error {
	embedding, err := s.embed(ctx, course.Title)
	if err != nil {
		return fmt.Errorf("embed course title: %w", err)
	}

	lessonsJSON, err := course.LessonsJSON()
	if err != nil {
		return err
	}

	vars := map[string]any{
		"title":   course.Title,
		"lessons": lessonsJSON,
		"count":   len(course.Lessons),
		"emb":     embedding,
	}
	vars["instructor"] = nil
	if course.Instructor != "" {
		vars["instructor"] = course.Instructor
	}
	vars["link"] = nil
	if course.Link != "" {
		vars["link"] = course.Link
	}

	sql := `
		UPSERT type::thing('course_catalog', $title) SET
			title = $title,
			instructor = $instructor,
			link = $link,
			lessons_json = $lessons,
			lesson_count = $count,
			embedding = $emb
	`
	if _, err := surrealdb.Query[any](ctx, s.client.db, sql, vars); err != nil {
		return fmt.Errorf("upsert course %q: %w", course.Title, err)
	}
	return nil
}

// AddChunks embeds and indexes content chunks. Chunks are inserted in one
// statement; embeddings are generated as a single batch.
func (s *Store) AddChunks(ctx context.Context, chunks []models.CourseChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	embeddings, err := s.embedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}

	rows := make([]map[string]any, len(chunks))
	for i, c := range chunks {
		row := map[string]any{
			"content":       c.Content,
			"course_title":  c.CourseTitle,
			"chunk_index":   c.ChunkIndex,
			"embedding":     embeddings[i],
			"lesson_number": nil,
		}
		if c.LessonNumber != nil {
			row["lesson_number"] = *c.LessonNumber
		}
		rows[i] = row
	}

	sql := `INSERT INTO course_content $rows`
	if _, err := surrealdb.Query[any](ctx, s.client.db, sql, map[string]any{"rows": rows}); err != nil {
		return fmt.Errorf("insert chunks: %w", err)
	}
	return nil
}

// ResolveCourseName resolves a human-typed course name to a canonical catalog
// title via nearest-neighbor lookup. Returns "" when the catalog is empty.
// No similarity threshold is applied: the closest match is always returned,
// so callers must treat the result as a best guess.
func (s *Store) ResolveCourseName(ctx context.Context, name string) (string, error) {
	embedding, err := s.embed(ctx, name)
	if err != nil {
		return "", fmt.Errorf("embed course name: %w", err)
	}

	sql := fmt.Sprintf(`SELECT title FROM course_catalog WHERE embedding <|1,%d|> $emb`, hnswEF)
	results, err := surrealdb.Query[[]titleRow](ctx, s.client.db, sql, map[string]any{"emb": embedding})
	if err != nil {
		return "", fmt.Errorf("resolve course name: %w", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return "", nil
	}
	return (*results)[0].Result[0].Title, nil
}

// Search performs a filtered nearest-neighbor query over course content.
// Failures are captured in the returned SearchResults, never raised: the
// result is always usable as tool output.
func (s *Store) Search(ctx context.Context, query, courseName string, lessonNumber *int) *SearchResults {
	defer s.record(metrics.OpDBSearch, time.Now())

	resolvedTitle := ""
	if courseName != "" {
		title, err := s.ResolveCourseName(ctx, courseName)
		if err != nil {
			return errorResults("Search error: %v", err)
		}
		if title == "" {
			// Short-circuit: no point querying content with an unmatched filter.
			return errorResults("No course found matching '%s'", courseName)
		}
		resolvedTitle = title
	}

	embedding, err := s.embed(ctx, query)
	if err != nil {
		return errorResults("Search error: %v", err)
	}

	where := fmt.Sprintf("embedding <|%d,%d|> $emb", s.maxResults, hnswEF)
	vars := map[string]any{"emb": embedding}
	if resolvedTitle != "" {
		where += " AND course_title = $course"
		vars["course"] = resolvedTitle
	}
	if lessonNumber != nil {
		where += " AND lesson_number = $lesson"
		vars["lesson"] = *lessonNumber
	}

	sql := fmt.Sprintf(`
		SELECT content, course_title, lesson_number, chunk_index,
			vector::distance::knn() AS distance
		FROM course_content
		WHERE %s
	`, where)

	results, err := surrealdb.Query[[]contentRow](ctx, s.client.db, sql, vars)
	if err != nil {
		slog.Error("content search failed", "error", err, "course", resolvedTitle)
		return errorResults("Search error: %v", err)
	}

	out := &SearchResults{}
	if results != nil && len(*results) > 0 {
		for _, row := range (*results)[0].Result {
			out.Documents = append(out.Documents, row.Content)
			out.Metadata = append(out.Metadata, ChunkMetadata{
				CourseTitle:  row.CourseTitle,
				LessonNumber: row.LessonNumber,
				ChunkIndex:   row.ChunkIndex,
			})
			out.Distances = append(out.Distances, row.Distance)
		}
	}
	return out
}

// GetCourseMetadata fetches a catalog row by canonical title.
// Returns nil when the course does not exist.
func (s *Store) GetCourseMetadata(ctx context.Context, title string) (*CourseMetadata, error) {
	sql := `SELECT title, instructor, link, lessons_json, lesson_count FROM type::thing('course_catalog', $title)`
	results, err := surrealdb.Query[[]CourseMetadata](ctx, s.client.db, sql, map[string]any{"title": title})
	if err != nil {
		return nil, fmt.Errorf("get course metadata: %w", err)
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, nil
	}
	meta := (*results)[0].Result[0]
	return &meta, nil
}

// GetCourseLink returns the course link, or "" when the course or link is absent.
func (s *Store) GetCourseLink(ctx context.Context, title string) (string, error) {
	meta, err := s.GetCourseMetadata(ctx, title)
	if err != nil || meta == nil || meta.Link == nil {
		return "", err
	}
	return *meta.Link, nil
}

// GetLessonLink returns the link of one lesson, or "" when absent.
func (s *Store) GetLessonLink(ctx context.Context, title string, lessonNumber int) (string, error) {
	meta, err := s.GetCourseMetadata(ctx, title)
	if err != nil || meta == nil {
		return "", err
	}
	lessons, err := models.ParseLessons(meta.LessonsJSON)
	if err != nil {
		return "", err
	}
	for _, lesson := range lessons {
		if lesson.Number == lessonNumber {
			return lesson.Link, nil
		}
	}
	return "", nil
}

// ExistingCourseTitles lists every canonical title in the catalog.
func (s *Store) ExistingCourseTitles(ctx context.Context) ([]string, error) {
	results, err := surrealdb.Query[[]titleRow](ctx, s.client.db, `SELECT title FROM course_catalog`, nil)
	if err != nil {
		return nil, fmt.Errorf("list course titles: %w", err)
	}
	titles := []string{}
	if results != nil && len(*results) > 0 {
		for _, row := range (*results)[0].Result {
			titles = append(titles, row.Title)
		}
	}
	return titles, nil
}

// CountCourses returns the number of catalog entries.
func (s *Store) CountCourses(ctx context.Context) (int, error) {
	titles, err := s.ExistingCourseTitles(ctx)
	if err != nil {
		return 0, err
	}
	return len(titles), nil
}

// ClearAll removes all indexed data, keeping the schema.
func (s *Store) ClearAll(ctx context.Context) error {
	return s.client.ClearAll(ctx)
}
