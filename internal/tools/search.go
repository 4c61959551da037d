package tools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/coursegraph/coursegraph/internal/models"
	"github.com/coursegraph/coursegraph/internal/store"
)

// SearchToolName is the name the model uses to invoke content search.
const SearchToolName = "search_course_content"

// SearchTool searches course content with fuzzy course name matching and
// optional lesson filtering. It records a citation per returned chunk as its
// last produced sources.
type SearchTool struct {
	store       CourseStore
	lastSources []models.Source
}

// NewSearchTool creates a content search tool backed by the store.
func NewSearchTool(store CourseStore) *SearchTool {
	return &SearchTool{store: store}
}

func (t *SearchTool) Definition() Definition {
	return Definition{
		Name:        SearchToolName,
		Description: "Search course materials with smart course name matching and lesson filtering",
		InputSchema: InputSchema{
			Type: "object",
			Properties: map[string]Property{
				"query": {
					Type:        "string",
					Description: "What to search for in the course content",
				},
				"course_name": {
					Type:        "string",
					Description: "Course title (partial matches work, e.g. 'MCP', 'Introduction')",
				},
				"lesson_number": {
					Type:        "integer",
					Description: "Specific lesson number to search within (e.g. 1, 2, 3)",
				},
			},
			Required: []string{"query"},
		},
	}
}

// Execute runs the search and formats the matched chunks for the model.
// Store-level errors come back as the tool result text, not as an error.
func (t *SearchTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	query := stringArg(args, "query")
	if query == "" {
		return "", fmt.Errorf("missing required argument 'query'")
	}
	courseName := stringArg(args, "course_name")
	lessonNumber := intArg(args, "lesson_number")

	results := t.store.Search(ctx, query, courseName, lessonNumber)

	if results.Err != "" {
		return results.Err, nil
	}

	if results.IsEmpty() {
		filterInfo := ""
		if courseName != "" {
			filterInfo += fmt.Sprintf(" in course '%s'", courseName)
		}
		if lessonNumber != nil {
			filterInfo += fmt.Sprintf(" in lesson %d", *lessonNumber)
		}
		return fmt.Sprintf("No relevant content found%s.", filterInfo), nil
	}

	return t.formatResults(ctx, results), nil
}

// formatResults renders one [course - lesson] header per chunk and records
// the parallel citation list, preferring lesson links over course links.
func (t *SearchTool) formatResults(ctx context.Context, results *store.SearchResults) string {
	var formatted []string
	var sources []models.Source

	for i, doc := range results.Documents {
		meta := results.Metadata[i]

		header := "[" + meta.CourseTitle
		sourceText := meta.CourseTitle
		if meta.LessonNumber != nil {
			header += fmt.Sprintf(" - Lesson %d", *meta.LessonNumber)
			sourceText += fmt.Sprintf(" - Lesson %d", *meta.LessonNumber)
		}
		header += "]"

		var link string
		var err error
		if meta.LessonNumber != nil {
			link, err = t.store.GetLessonLink(ctx, meta.CourseTitle, *meta.LessonNumber)
		} else {
			link, err = t.store.GetCourseLink(ctx, meta.CourseTitle)
		}
		if err != nil {
			slog.Warn("source link lookup failed", "course", meta.CourseTitle, "error", err)
		}

		sources = append(sources, models.Source{Text: sourceText, Link: link})
		formatted = append(formatted, header+"\n"+doc)
	}

	// Overwrites any previous value: only the most recent search is cited.
	t.lastSources = sources

	return strings.Join(formatted, "\n\n")
}

// LastSources returns the citations produced by the most recent search.
func (t *SearchTool) LastSources() []models.Source {
	return t.lastSources
}

// ResetSources clears the citation side channel.
func (t *SearchTool) ResetSources() {
	t.lastSources = nil
}
