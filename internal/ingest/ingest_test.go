package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/coursegraph/coursegraph/internal/models"
)

// memCatalog collects writes in memory.
type memCatalog struct {
	courses []models.Course
	chunks  []models.CourseChunk
	cleared bool
}

func (c *memCatalog) AddCourse(ctx context.Context, course *models.Course) error {
	c.courses = append(c.courses, *course)
	return nil
}

func (c *memCatalog) AddChunks(ctx context.Context, chunks []models.CourseChunk) error {
	c.chunks = append(c.chunks, chunks...)
	return nil
}

func (c *memCatalog) ExistingCourseTitles(ctx context.Context) ([]string, error) {
	titles := make([]string, 0, len(c.courses))
	for _, course := range c.courses {
		titles = append(titles, course.Title)
	}
	return titles, nil
}

func (c *memCatalog) ClearAll(ctx context.Context) error {
	c.cleared = true
	c.courses = nil
	c.chunks = nil
	return nil
}

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestAddCourseDocument(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "mcp.txt", sampleDocument)

	catalog := &memCatalog{}
	ing := New(catalog, 800, 100, nil)

	course, chunks, err := ing.AddCourseDocument(context.Background(), path)
	if err != nil {
		t.Fatalf("AddCourseDocument() error = %v", err)
	}

	if course.Title != "MCP: Build Rich-Context AI Apps" {
		t.Errorf("Title = %q", course.Title)
	}
	if chunks != len(catalog.chunks) {
		t.Errorf("reported %d chunks, stored %d", chunks, len(catalog.chunks))
	}
	if len(catalog.courses) != 1 {
		t.Fatalf("stored %d courses, want 1", len(catalog.courses))
	}

	for i, chunk := range catalog.chunks {
		if chunk.CourseTitle != course.Title {
			t.Errorf("chunk %d course = %q", i, chunk.CourseTitle)
		}
		if chunk.ChunkIndex != i {
			t.Errorf("chunk %d index = %d", i, chunk.ChunkIndex)
		}
		if !strings.HasPrefix(chunk.Content, "Course "+course.Title) {
			t.Errorf("chunk %d missing context prefix: %q", i, chunk.Content)
		}
	}

	first := catalog.chunks[0]
	if first.LessonNumber == nil || *first.LessonNumber != 0 {
		t.Errorf("first chunk lesson = %v, want 0", first.LessonNumber)
	}
	wantPrefix := "Course MCP: Build Rich-Context AI Apps Lesson 0 content: "
	if !strings.HasPrefix(first.Content, wantPrefix) {
		t.Errorf("first chunk = %q, want prefix %q", first.Content, wantPrefix)
	}
}

func TestAddCourseDocument_PreambleChunkHasNoLesson(t *testing.T) {
	dir := t.TempDir()
	doc := "Course Title: T\n\nOverview before lessons.\n\nLesson 1: A\nBody text here.\n"
	path := writeDoc(t, dir, "t.txt", doc)

	catalog := &memCatalog{}
	ing := New(catalog, 800, 100, nil)

	if _, _, err := ing.AddCourseDocument(context.Background(), path); err != nil {
		t.Fatal(err)
	}

	if len(catalog.chunks) < 2 {
		t.Fatalf("got %d chunks, want at least 2", len(catalog.chunks))
	}
	if catalog.chunks[0].LessonNumber != nil {
		t.Errorf("preamble chunk lesson = %v, want nil", *catalog.chunks[0].LessonNumber)
	}
	if !strings.HasPrefix(catalog.chunks[0].Content, "Course T content: ") {
		t.Errorf("preamble chunk = %q", catalog.chunks[0].Content)
	}
}

func TestAddCourseFolder_SkipsExistingTitles(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "a.txt", "Course Title: Course A\n\nLesson 1: One\nContent for A.\n")
	writeDoc(t, dir, "b.txt", "Course Title: Course B\n\nLesson 1: One\nContent for B.\n")
	writeDoc(t, dir, "notes.pdf", "ignored")

	catalog := &memCatalog{}
	ing := New(catalog, 800, 100, nil)

	var updates []Progress
	courses, _, err := ing.AddCourseFolder(context.Background(), dir, false, func(p Progress) {
		updates = append(updates, p)
	})
	if err != nil {
		t.Fatalf("AddCourseFolder() error = %v", err)
	}
	if courses != 2 {
		t.Errorf("added %d courses, want 2", courses)
	}
	if len(updates) != 2 || updates[1].Done != 2 || updates[1].Total != 2 {
		t.Errorf("progress updates = %+v", updates)
	}

	// Second run adds nothing.
	courses, chunks, err := ing.AddCourseFolder(context.Background(), dir, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	if courses != 0 || chunks != 0 {
		t.Errorf("re-ingest added %d courses %d chunks, want 0/0", courses, chunks)
	}
}

func TestAddCourseFolder_ClearExisting(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "a.txt", "Course Title: Course A\n\nLesson 1: One\nContent.\n")

	catalog := &memCatalog{}
	ing := New(catalog, 800, 100, nil)

	if _, _, err := ing.AddCourseFolder(context.Background(), dir, true, nil); err != nil {
		t.Fatal(err)
	}
	if !catalog.cleared {
		t.Error("ClearAll was not called")
	}
	if len(catalog.courses) != 1 {
		t.Errorf("stored %d courses after clear+ingest, want 1", len(catalog.courses))
	}
}

func TestAddCourseFolder_BrokenDocumentSkipped(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "bad.txt", "---\n: not yaml [\n---\nLesson 1: A\nBody.\n")
	writeDoc(t, dir, "good.txt", "Course Title: Good\n\nLesson 1: One\nContent.\n")

	catalog := &memCatalog{}
	ing := New(catalog, 800, 100, nil)

	courses, _, err := ing.AddCourseFolder(context.Background(), dir, false, nil)
	if err != nil {
		t.Fatalf("folder ingest should not fail on one bad file: %v", err)
	}
	if courses != 1 {
		t.Errorf("added %d courses, want 1", courses)
	}
}
