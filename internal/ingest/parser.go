// Package ingest parses course documents and indexes them into the store.
package ingest

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/coursegraph/coursegraph/internal/models"
)

// lessonHeading matches "Lesson 3: Some Title" at the start of a line.
var lessonHeading = regexp.MustCompile(`^Lesson\s+(\d+):\s*(.+)$`)

// lessonSection is a lesson heading plus its raw text body.
type lessonSection struct {
	lesson models.Lesson
	body   string
}

// frontmatter is the optional YAML document header. Documents may declare
// course metadata here instead of the "Course Title:" header lines.
type frontmatter struct {
	Title      string `yaml:"title"`
	Link       string `yaml:"link"`
	Instructor string `yaml:"instructor"`
}

// parseCourseDocument parses one course transcript. The document starts with
// course metadata (either "Course Title:" / "Course Link:" /
// "Course Instructor:" header lines or YAML frontmatter) followed by lesson
// sections introduced by "Lesson N: title" headings, each optionally carrying
// a "Lesson Link:" line. Text before the first lesson heading is indexed as
// course-level content.
func parseCourseDocument(name, content string) (*models.Course, []lessonSection, error) {
	course := &models.Course{}
	rest := content

	if strings.HasPrefix(content, "---\n") {
		var fm frontmatter
		end := strings.Index(content[4:], "\n---")
		if end > 0 {
			if err := yaml.Unmarshal([]byte(content[4:4+end]), &fm); err != nil {
				return nil, nil, fmt.Errorf("parse frontmatter in %s: %w", name, err)
			}
			course.Title = fm.Title
			course.Link = fm.Link
			course.Instructor = fm.Instructor
			rest = strings.TrimPrefix(content[4+end+4:], "\n")
		}
	}

	var sections []lessonSection
	var current *lessonSection
	var preamble strings.Builder

	scanner := bufio.NewScanner(strings.NewReader(rest))
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		if current == nil {
			// Course header section.
			if v, ok := headerValue(trimmed, "Course Title:"); ok {
				course.Title = v
				continue
			}
			if v, ok := headerValue(trimmed, "Course Link:"); ok {
				course.Link = v
				continue
			}
			if v, ok := headerValue(trimmed, "Course Instructor:"); ok {
				course.Instructor = v
				continue
			}
		}

		if m := lessonHeading.FindStringSubmatch(trimmed); m != nil {
			if current != nil {
				current.body = strings.TrimSpace(current.body)
				sections = append(sections, *current)
			}
			number, _ := strconv.Atoi(m[1])
			current = &lessonSection{
				lesson: models.Lesson{Number: number, Title: strings.TrimSpace(m[2])},
			}
			continue
		}

		if current != nil {
			if v, ok := headerValue(trimmed, "Lesson Link:"); ok && current.body == "" {
				current.lesson.Link = v
				continue
			}
			if current.body != "" {
				current.body += "\n"
			}
			current.body += line
			continue
		}

		preamble.WriteString(line)
		preamble.WriteString("\n")
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("scan %s: %w", name, err)
	}
	if current != nil {
		current.body = strings.TrimSpace(current.body)
		sections = append(sections, *current)
	}

	if course.Title == "" {
		// No metadata at all: fall back to the document name so the course
		// is still addressable.
		course.Title = name
	}

	for _, section := range sections {
		course.Lessons = append(course.Lessons, section.lesson)
	}

	// Course-level text before the first lesson becomes an unnumbered section.
	if pre := strings.TrimSpace(preamble.String()); pre != "" && len(sections) > 0 {
		sections = append([]lessonSection{{body: pre, lesson: models.Lesson{Number: -1}}}, sections...)
	} else if pre != "" {
		sections = []lessonSection{{body: pre, lesson: models.Lesson{Number: -1}}}
	}

	return course, sections, nil
}

func headerValue(line, prefix string) (string, bool) {
	if !strings.HasPrefix(line, prefix) {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(line, prefix)), true
}
