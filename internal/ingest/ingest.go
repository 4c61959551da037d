package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/coursegraph/coursegraph/internal/models"
)

// Catalog is the store surface ingestion writes to.
type Catalog interface {
	AddCourse(ctx context.Context, course *models.Course) error
	AddChunks(ctx context.Context, chunks []models.CourseChunk) error
	ExistingCourseTitles(ctx context.Context) ([]string, error)
	ClearAll(ctx context.Context) error
}

// Progress reports folder ingestion state after each processed file.
type Progress struct {
	Done  int
	Total int
	Path  string
}

// ProgressFunc receives ingestion progress updates. May be nil.
type ProgressFunc func(Progress)

// Ingestor parses course documents and writes catalog entries and content
// chunks to the store.
type Ingestor struct {
	store        Catalog
	chunkSize    int
	chunkOverlap int
	logger       *slog.Logger
}

// New creates an Ingestor.
func New(store Catalog, chunkSize, chunkOverlap int, logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{
		store:        store,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		logger:       logger,
	}
}

// AddCourseDocument ingests a single course file. Returns the parsed course
// and the number of indexed chunks.
func (s *Ingestor) AddCourseDocument(ctx context.Context, path string) (*models.Course, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("read course document: %w", err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	course, sections, err := parseCourseDocument(name, string(data))
	if err != nil {
		return nil, 0, err
	}

	chunks := s.buildChunks(course, sections)

	if err := s.store.AddCourse(ctx, course); err != nil {
		return nil, 0, err
	}
	if err := s.store.AddChunks(ctx, chunks); err != nil {
		return nil, 0, err
	}

	s.logger.Info("course ingested",
		"course", course.Title, "lessons", len(course.Lessons), "chunks", len(chunks))
	return course, len(chunks), nil
}

// buildChunks chunks every lesson body and prefixes each chunk with its
// course/lesson context so a chunk remains attributable on its own.
func (s *Ingestor) buildChunks(course *models.Course, sections []lessonSection) []models.CourseChunk {
	var chunks []models.CourseChunk
	index := 0

	for _, section := range sections {
		prefix := fmt.Sprintf("Course %s content: ", course.Title)
		var lessonNumber *int
		if section.lesson.Number >= 0 {
			n := section.lesson.Number
			lessonNumber = &n
			prefix = fmt.Sprintf("Course %s Lesson %d content: ", course.Title, n)
		}

		for _, piece := range chunkText(section.body, s.chunkSize, s.chunkOverlap) {
			chunks = append(chunks, models.CourseChunk{
				Content:      prefix + piece,
				CourseTitle:  course.Title,
				LessonNumber: lessonNumber,
				ChunkIndex:   index,
			})
			index++
		}
	}
	return chunks
}

// AddCourseFolder ingests every course document in dir, skipping courses
// whose titles already exist in the catalog. Returns the number of courses
// and chunks added.
func (s *Ingestor) AddCourseFolder(ctx context.Context, dir string, clearExisting bool, progress ProgressFunc) (int, int, error) {
	if clearExisting {
		s.logger.Warn("clearing existing course data", "dir", dir)
		if err := s.store.ClearAll(ctx); err != nil {
			return 0, 0, err
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, 0, fmt.Errorf("read course folder: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".txt", ".md":
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)

	existingTitles, err := s.store.ExistingCourseTitles(ctx)
	if err != nil {
		return 0, 0, err
	}
	existing := make(map[string]struct{}, len(existingTitles))
	for _, title := range existingTitles {
		existing[title] = struct{}{}
	}

	coursesAdded, chunksAdded := 0, 0
	for i, path := range paths {
		course, count, err := s.ingestIfNew(ctx, path, existing)
		if err != nil {
			// One broken document must not abort the whole folder.
			s.logger.Error("skipping course document", "path", path, "error", err)
		} else if course != nil {
			existing[course.Title] = struct{}{}
			coursesAdded++
			chunksAdded += count
		}
		if progress != nil {
			progress(Progress{Done: i + 1, Total: len(paths), Path: path})
		}
	}

	return coursesAdded, chunksAdded, nil
}

// ingestIfNew parses the document just far enough to check the title before
// committing to a full ingest.
func (s *Ingestor) ingestIfNew(ctx context.Context, path string, existing map[string]struct{}) (*models.Course, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("read course document: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	course, sections, err := parseCourseDocument(name, string(data))
	if err != nil {
		return nil, 0, err
	}
	if _, ok := existing[course.Title]; ok {
		s.logger.Debug("course already indexed", "course", course.Title)
		return nil, 0, nil
	}

	chunks := s.buildChunks(course, sections)
	if err := s.store.AddCourse(ctx, course); err != nil {
		return nil, 0, err
	}
	if err := s.store.AddChunks(ctx, chunks); err != nil {
		return nil, 0, err
	}
	s.logger.Info("course ingested",
		"course", course.Title, "lessons", len(course.Lessons), "chunks", len(chunks))
	return course, len(chunks), nil
}
