// Package models defines the core data types for course material indexing.
package models

import (
	"encoding/json"
	"fmt"
)

// Lesson is a single lesson within a course. Number is unique per course.
type Lesson struct {
	Number int    `json:"lesson_number"`
	Title  string `json:"lesson_title"`
	Link   string `json:"lesson_link,omitempty"`
}

// Course represents one ingested course. Title doubles as the unique
// identifier across the catalog; a course is immutable once ingested.
type Course struct {
	Title      string   `json:"title"`
	Link       string   `json:"link,omitempty"`
	Instructor string   `json:"instructor,omitempty"`
	Lessons    []Lesson `json:"lessons"`
}

// LessonsJSON serializes the lesson list for catalog storage.
func (c *Course) LessonsJSON() (string, error) {
	lessons := c.Lessons
	if lessons == nil {
		lessons = []Lesson{}
	}
	data, err := json.Marshal(lessons)
	if err != nil {
		return "", fmt.Errorf("marshal lessons: %w", err)
	}
	return string(data), nil
}

// ParseLessons deserializes a lesson list stored in the catalog.
func ParseLessons(data string) ([]Lesson, error) {
	if data == "" {
		return []Lesson{}, nil
	}
	var lessons []Lesson
	if err := json.Unmarshal([]byte(data), &lessons); err != nil {
		return nil, fmt.Errorf("parse lessons: %w", err)
	}
	return lessons, nil
}

// CourseChunk is the unit of semantic indexing: a piece of lesson text with
// enough metadata to order and cite it. CourseTitle references the owning
// course, it does not own it.
type CourseChunk struct {
	Content      string `json:"content"`
	CourseTitle  string `json:"course_title"`
	LessonNumber *int   `json:"lesson_number,omitempty"`
	ChunkIndex   int    `json:"chunk_index"`
}

// Source is a citation surfaced to the end user alongside an answer.
type Source struct {
	Text string `json:"text"`
	Link string `json:"link,omitempty"`
}
