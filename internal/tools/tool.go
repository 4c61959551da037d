// Package tools provides the capability contract the generator hands to the
// model: a schema describing each callable tool, concrete tools backed by the
// retrieval store, and an execute-by-name registry.
package tools

import (
	"context"

	"github.com/tmc/langchaingo/llms"

	"github.com/coursegraph/coursegraph/internal/models"
	"github.com/coursegraph/coursegraph/internal/store"
)

// Property describes one input parameter of a tool.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// InputSchema is the JSON-schema object describing a tool's arguments.
type InputSchema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required"`
}

// Definition is the callable schema advertised to the model.
type Definition struct {
	Name        string
	Description string
	InputSchema InputSchema
}

// LLMTool converts the definition into langchaingo's tool shape.
func (d Definition) LLMTool() llms.Tool {
	return llms.Tool{
		Type: "function",
		Function: &llms.FunctionDefinition{
			Name:        d.Name,
			Description: d.Description,
			Parameters:  d.InputSchema,
		},
	}
}

// Tool is the contract implemented by every capability the model may invoke.
// Domain-level problems (no matching course, empty results, bad filters) are
// reported in the returned text so the model can read and react to them; the
// error return is reserved for failures the tool cannot phrase as a result,
// which the orchestrator converts into a synthetic failure tool-result.
type Tool interface {
	Definition() Definition
	Execute(ctx context.Context, args map[string]any) (string, error)
}

// SourceTracker is implemented by tools that produce citations as a side
// output of execution. The registry collects and clears these between queries.
type SourceTracker interface {
	LastSources() []models.Source
	ResetSources()
}

// CourseStore is the retrieval surface the built-in tools depend on.
type CourseStore interface {
	Search(ctx context.Context, query, courseName string, lessonNumber *int) *store.SearchResults
	ResolveCourseName(ctx context.Context, name string) (string, error)
	GetCourseMetadata(ctx context.Context, title string) (*store.CourseMetadata, error)
	GetCourseLink(ctx context.Context, title string) (string, error)
	GetLessonLink(ctx context.Context, title string, lessonNumber int) (string, error)
}

// stringArg reads an optional string argument.
func stringArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

// intArg reads an optional integer argument. JSON numbers arrive as float64.
func intArg(args map[string]any, key string) *int {
	switch v := args[key].(type) {
	case float64:
		n := int(v)
		return &n
	case int:
		n := v
		return &n
	}
	return nil
}
