package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/coursegraph/coursegraph/internal/models"
)

// OutlineToolName is the name the model uses to fetch a course outline.
const OutlineToolName = "get_course_outline"

// OutlineTool retrieves the full structure of a course: title, instructor,
// link, and the ordered lesson list.
type OutlineTool struct {
	store CourseStore
}

// NewOutlineTool creates an outline tool backed by the store.
func NewOutlineTool(store CourseStore) *OutlineTool {
	return &OutlineTool{store: store}
}

func (t *OutlineTool) Definition() Definition {
	return Definition{
		Name:        OutlineToolName,
		Description: "Retrieve the complete structure and lesson list for a specific course. Use this when users ask about course structure, available lessons, or what topics are covered.",
		InputSchema: InputSchema{
			Type: "object",
			Properties: map[string]Property{
				"course_name": {
					Type:        "string",
					Description: "Course title (partial matches work, e.g. 'MCP', 'Introduction')",
				},
			},
			Required: []string{"course_name"},
		},
	}
}

// Execute resolves the course name and renders its outline. Lookup and
// deserialization failures are rendered as text, never returned as errors.
func (t *OutlineTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	courseName := stringArg(args, "course_name")
	if courseName == "" {
		return "", fmt.Errorf("missing required argument 'course_name'")
	}

	title, err := t.store.ResolveCourseName(ctx, courseName)
	if err != nil {
		return fmt.Sprintf("Error retrieving course outline: %v", err), nil
	}
	if title == "" {
		return fmt.Sprintf("No course found matching '%s'. Please try a different course name or check available courses.", courseName), nil
	}

	meta, err := t.store.GetCourseMetadata(ctx, title)
	if err != nil {
		return fmt.Sprintf("Error retrieving course outline: %v", err), nil
	}
	if meta == nil {
		return fmt.Sprintf("No course found matching '%s'.", courseName), nil
	}

	lessons, err := models.ParseLessons(meta.LessonsJSON)
	if err != nil {
		return fmt.Sprintf("Error retrieving course outline: %v", err), nil
	}

	instructor := "Not specified"
	if meta.Instructor != nil && *meta.Instructor != "" {
		instructor = *meta.Instructor
	}
	link := "Not available"
	if meta.Link != nil && *meta.Link != "" {
		link = *meta.Link
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Course: %s\n", meta.Title)
	fmt.Fprintf(&b, "Instructor: %s\n", instructor)
	fmt.Fprintf(&b, "Course Link: %s\n\n", link)
	b.WriteString("Lessons:\n")
	for _, lesson := range lessons {
		lessonLink := "No link available"
		if lesson.Link != "" {
			lessonLink = lesson.Link
		}
		fmt.Fprintf(&b, "%d. %s\n   Link: %s\n", lesson.Number, lesson.Title, lessonLink)
	}
	return b.String(), nil
}
