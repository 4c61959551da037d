package store

import "fmt"

// ChunkMetadata describes where a matched document came from.
type ChunkMetadata struct {
	CourseTitle  string `json:"course_title"`
	LessonNumber *int   `json:"lesson_number,omitempty"`
	ChunkIndex   int    `json:"chunk_index"`
}

// SearchResults carries the co-indexed rows of a content search. When Err is
// set the slices are not meaningful and must be ignored. Query failures are
// captured here rather than returned as Go errors, so that tool execution can
// hand the failure text to the model as an ordinary tool result.
type SearchResults struct {
	Documents []string
	Metadata  []ChunkMetadata
	Distances []float64
	Err       string
}

// IsEmpty reports whether the search succeeded but matched nothing.
func (r *SearchResults) IsEmpty() bool {
	return r.Err == "" && len(r.Documents) == 0
}

func errorResults(format string, args ...any) *SearchResults {
	return &SearchResults{Err: fmt.Sprintf(format, args...)}
}
