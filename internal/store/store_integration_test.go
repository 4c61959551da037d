//go:build integration

// Integration tests for SurrealDB-backed catalog and content search.
package store

import (
	"context"
	"fmt"
	"hash/fnv"
	"log"
	"math"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/coursegraph/coursegraph/internal/models"
)

const testDimension = 32

var testStore *Store
var testClient *Client
var testContainer testcontainers.Container

// TestMain sets up and tears down the SurrealDB container for all tests.
func TestMain(m *testing.M) {
	// Disable ryuk (cleanup container) as it can cause issues in some environments
	os.Setenv("TESTCONTAINERS_RYUK_DISABLED", "true")

	ctx := context.Background()

	var err error
	testContainer, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "surrealdb/surrealdb:v3.0.0-beta.1",
			ExposedPorts: []string{"8000/tcp"},
			Cmd:          []string{"start", "--log", "info", "--user", "root", "--pass", "root"},
			WaitingFor:   wait.ForLog("Started web server").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		log.Fatalf("Failed to start SurrealDB container: %v", err)
	}

	host, err := testContainer.Host(ctx)
	if err != nil {
		log.Fatalf("Failed to get container host: %v", err)
	}
	// Workaround: testcontainers may return "null" as host in some environments
	if host == "" || host == "null" {
		host = "localhost"
	}
	mappedPort, err := testContainer.MappedPort(ctx, "8000")
	if err != nil {
		log.Fatalf("Failed to get mapped port: %v", err)
	}

	testClient, err = NewClient(ctx, ClientConfig{
		URL:       fmt.Sprintf("ws://%s:%s/rpc", host, mappedPort.Port()),
		Namespace: "test",
		Database:  "test",
		Username:  "root",
		Password:  "root",
		AuthLevel: "root",
	}, nil)
	if err != nil {
		log.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := testClient.InitSchema(ctx, testDimension); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	testStore = New(testClient, wordEmbedder{}, 5)

	code := m.Run()

	_ = testClient.Close(ctx)
	_ = testContainer.Terminate(ctx)

	os.Exit(code)
}

// wordEmbedder is a deterministic bag-of-words embedder. Texts sharing words
// produce nearby vectors, which is enough for nearest-neighbor assertions.
type wordEmbedder struct{}

func (wordEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, testDimension)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(strings.Trim(word, ".,:;!?")))
		vec[h.Sum32()%testDimension]++
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v * v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return vec, nil
}

func (e wordEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func resetStore(t *testing.T) {
	t.Helper()
	if err := testStore.ClearAll(context.Background()); err != nil {
		t.Fatalf("ClearAll failed: %v", err)
	}
}

func seedCourse(t *testing.T, course *models.Course, chunks []models.CourseChunk) {
	t.Helper()
	ctx := context.Background()
	if err := testStore.AddCourse(ctx, course); err != nil {
		t.Fatalf("AddCourse failed: %v", err)
	}
	if err := testStore.AddChunks(ctx, chunks); err != nil {
		t.Fatalf("AddChunks failed: %v", err)
	}
}

func mcpCourse() *models.Course {
	return &models.Course{
		Title:      "Introduction to MCP",
		Instructor: "Ada Example",
		Link:       "https://example.com/mcp",
		Lessons: []models.Lesson{
			{Number: 0, Title: "Welcome", Link: "https://example.com/mcp/0"},
			{Number: 1, Title: "Tool Definitions"},
		},
	}
}

func mcpChunks() []models.CourseChunk {
	l0, l1 := 0, 1
	return []models.CourseChunk{
		{Content: "Course Introduction to MCP Lesson 0 content: welcome to the protocol course", CourseTitle: "Introduction to MCP", LessonNumber: &l0, ChunkIndex: 0},
		{Content: "Course Introduction to MCP Lesson 1 content: tools are declared with json schemas", CourseTitle: "Introduction to MCP", LessonNumber: &l1, ChunkIndex: 1},
	}
}

func TestResolveCourseName(t *testing.T) {
	resetStore(t)
	ctx := context.Background()

	// Empty catalog resolves to nothing.
	title, err := testStore.ResolveCourseName(ctx, "MCP")
	if err != nil {
		t.Fatalf("ResolveCourseName on empty catalog failed: %v", err)
	}
	if title != "" {
		t.Errorf("Expected empty title on empty catalog, got %q", title)
	}

	seedCourse(t, mcpCourse(), nil)
	if err := testStore.AddCourse(ctx, &models.Course{Title: "Advanced Retrieval Systems"}); err != nil {
		t.Fatalf("AddCourse failed: %v", err)
	}

	title, err = testStore.ResolveCourseName(ctx, "introduction MCP")
	if err != nil {
		t.Fatalf("ResolveCourseName failed: %v", err)
	}
	if title != "Introduction to MCP" {
		t.Errorf("Expected 'Introduction to MCP', got %q", title)
	}

	title, err = testStore.ResolveCourseName(ctx, "retrieval systems")
	if err != nil {
		t.Fatalf("ResolveCourseName failed: %v", err)
	}
	if title != "Advanced Retrieval Systems" {
		t.Errorf("Expected 'Advanced Retrieval Systems', got %q", title)
	}
}

func TestAddCourseUpsert(t *testing.T) {
	resetStore(t)
	ctx := context.Background()

	seedCourse(t, mcpCourse(), nil)
	// Re-adding the same title must not duplicate the catalog entry.
	updated := mcpCourse()
	updated.Instructor = "New Instructor"
	if err := testStore.AddCourse(ctx, updated); err != nil {
		t.Fatalf("AddCourse (upsert) failed: %v", err)
	}

	count, err := testStore.CountCourses(ctx)
	if err != nil {
		t.Fatalf("CountCourses failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 course after upsert, got %d", count)
	}

	meta, err := testStore.GetCourseMetadata(ctx, "Introduction to MCP")
	if err != nil {
		t.Fatalf("GetCourseMetadata failed: %v", err)
	}
	if meta == nil {
		t.Fatal("GetCourseMetadata returned nil")
	}
	if meta.Instructor == nil || *meta.Instructor != "New Instructor" {
		t.Errorf("Expected upserted instructor, got %v", meta.Instructor)
	}
}

func TestSearch(t *testing.T) {
	resetStore(t)
	ctx := context.Background()

	seedCourse(t, mcpCourse(), mcpChunks())

	// Unfiltered search finds content.
	results := testStore.Search(ctx, "json schemas for tools", "", nil)
	if results.Err != "" {
		t.Fatalf("Search returned error: %s", results.Err)
	}
	if len(results.Documents) == 0 {
		t.Fatal("Expected search results")
	}
	if len(results.Documents) != len(results.Metadata) || len(results.Documents) != len(results.Distances) {
		t.Error("Documents, Metadata and Distances must have equal length")
	}

	// Lesson filter restricts results.
	lesson := 1
	results = testStore.Search(ctx, "tools", "Introduction to MCP", &lesson)
	if results.Err != "" {
		t.Fatalf("Filtered search returned error: %s", results.Err)
	}
	for _, meta := range results.Metadata {
		if meta.LessonNumber == nil || *meta.LessonNumber != 1 {
			t.Errorf("Expected only lesson 1 chunks, got %v", meta.LessonNumber)
		}
	}

	// Non-matching lesson filter yields an empty, error-free result.
	lesson = 99
	results = testStore.Search(ctx, "tools", "Introduction to MCP", &lesson)
	if results.Err != "" {
		t.Fatalf("Search returned error: %s", results.Err)
	}
	if !results.IsEmpty() {
		t.Errorf("Expected empty results for lesson 99, got %d documents", len(results.Documents))
	}
}

func TestSearchUnknownCourse(t *testing.T) {
	resetStore(t)
	ctx := context.Background()

	// Empty catalog: the course filter cannot resolve.
	results := testStore.Search(ctx, "anything", "Nonexistent Course", nil)
	if results.Err != "No course found matching 'Nonexistent Course'" {
		t.Errorf("Expected unmatched-course error, got %q", results.Err)
	}
	if len(results.Documents) != 0 {
		t.Errorf("Expected no documents, got %d", len(results.Documents))
	}
}

func TestCourseMetadataAndLinks(t *testing.T) {
	resetStore(t)
	ctx := context.Background()

	seedCourse(t, mcpCourse(), nil)

	meta, err := testStore.GetCourseMetadata(ctx, "Introduction to MCP")
	if err != nil {
		t.Fatalf("GetCourseMetadata failed: %v", err)
	}
	if meta == nil {
		t.Fatal("GetCourseMetadata returned nil")
	}
	if meta.LessonCount != 2 {
		t.Errorf("Expected lesson_count 2, got %d", meta.LessonCount)
	}
	lessons, err := models.ParseLessons(meta.LessonsJSON)
	if err != nil {
		t.Fatalf("ParseLessons failed: %v", err)
	}
	if len(lessons) != 2 || lessons[1].Title != "Tool Definitions" {
		t.Errorf("Unexpected lessons: %+v", lessons)
	}

	// Absent course returns nil without error.
	missing, err := testStore.GetCourseMetadata(ctx, "No Such Course")
	if err != nil {
		t.Fatalf("GetCourseMetadata for absent course failed: %v", err)
	}
	if missing != nil {
		t.Error("Expected nil metadata for absent course")
	}

	link, err := testStore.GetCourseLink(ctx, "Introduction to MCP")
	if err != nil {
		t.Fatalf("GetCourseLink failed: %v", err)
	}
	if link != "https://example.com/mcp" {
		t.Errorf("Unexpected course link %q", link)
	}

	lessonLink, err := testStore.GetLessonLink(ctx, "Introduction to MCP", 0)
	if err != nil {
		t.Fatalf("GetLessonLink failed: %v", err)
	}
	if lessonLink != "https://example.com/mcp/0" {
		t.Errorf("Unexpected lesson link %q", lessonLink)
	}

	// Lesson without a link and unknown lesson both yield "".
	lessonLink, err = testStore.GetLessonLink(ctx, "Introduction to MCP", 1)
	if err != nil || lessonLink != "" {
		t.Errorf("Expected empty link for lesson 1, got %q (err %v)", lessonLink, err)
	}
	lessonLink, err = testStore.GetLessonLink(ctx, "Introduction to MCP", 42)
	if err != nil || lessonLink != "" {
		t.Errorf("Expected empty link for unknown lesson, got %q (err %v)", lessonLink, err)
	}
}

func TestExistingCourseTitlesAndClear(t *testing.T) {
	resetStore(t)
	ctx := context.Background()

	titles, err := testStore.ExistingCourseTitles(ctx)
	if err != nil {
		t.Fatalf("ExistingCourseTitles failed: %v", err)
	}
	if len(titles) != 0 {
		t.Errorf("Expected no titles after reset, got %v", titles)
	}

	seedCourse(t, mcpCourse(), mcpChunks())

	titles, err = testStore.ExistingCourseTitles(ctx)
	if err != nil {
		t.Fatalf("ExistingCourseTitles failed: %v", err)
	}
	if len(titles) != 1 || titles[0] != "Introduction to MCP" {
		t.Errorf("Unexpected titles: %v", titles)
	}

	if err := testStore.ClearAll(ctx); err != nil {
		t.Fatalf("ClearAll failed: %v", err)
	}
	count, err := testStore.CountCourses(ctx)
	if err != nil {
		t.Fatalf("CountCourses failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected 0 courses after ClearAll, got %d", count)
	}
	results := testStore.Search(ctx, "tools", "", nil)
	if !results.IsEmpty() {
		t.Error("Expected no content after ClearAll")
	}
}
