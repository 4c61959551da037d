// Package generator drives the bounded multi-round conversation with the LLM:
// it submits the user query with the available tool catalog, executes
// requested tools through the registry, folds results back into the message
// history, and forces a tools-disabled final answer when the round budget is
// exhausted.
package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/tmc/langchaingo/llms"

	"github.com/coursegraph/coursegraph/internal/llm"
	"github.com/coursegraph/coursegraph/internal/tools"
)

// systemPrompt is static so it is not rebuilt on each call.
const systemPrompt = `You are an AI assistant specialized in course materials and educational content with access to tools for course information.

Tool Usage Guidelines:

**Outline Tool** (get_course_outline):
- Use when users ask about course structure, lesson lists, or "what's in this course"
- Use for questions like "show me the lessons", "what topics are covered", "course overview"
- Returns complete lesson list with links

**Search Tool** (search_course_content):
- Use for questions about specific course content or detailed educational materials
- Use when users need information from within lessons
- Maximum one search per query

Response Protocol:
- **General knowledge questions**: Answer using existing knowledge without tools
- **Course structure questions**: Use outline tool first, then answer
- **Course content questions**: Use search tool first, then answer
- **No meta-commentary**: Provide direct answers only - no reasoning process or tool explanations

All responses must be:
1. **Brief, Concise and focused** - Get to the point quickly
2. **Educational** - Maintain instructional value
3. **Clear** - Use accessible language
4. **Example-supported** - Include relevant examples when they aid understanding
Provide only the direct answer to what was asked.`

// Config holds generation parameters.
type Config struct {
	// MaxToolRounds bounds the number of tool-bearing model rounds per query.
	MaxToolRounds int
	MaxTokens     int
	Temperature   float64
	Logger        *slog.Logger
}

// Generator orchestrates model calls and tool execution for one query at a
// time. It is safe for concurrent use; all per-query state lives on the stack.
type Generator struct {
	model       llms.Model
	maxRounds   int
	maxTokens   int
	temperature float64
	logger      *slog.Logger
}

// New creates a Generator around a langchaingo model.
func New(model llms.Model, cfg Config) *Generator {
	maxRounds := cfg.MaxToolRounds
	if maxRounds <= 0 {
		maxRounds = 2
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 800
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		model:       model,
		maxRounds:   maxRounds,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
		logger:      logger,
	}
}

// GenerateResponse answers a query, optionally using registered tools.
// history is an opaque rendering of prior conversation turns appended to the
// system context. The loop is bounded: at most maxRounds tool-bearing calls
// plus one forced tools-disabled synthesis call.
func (g *Generator) GenerateResponse(ctx context.Context, query, history string, reg *tools.Registry) (string, error) {
	system := systemPrompt
	if history != "" {
		system += "\n\nPrevious conversation:\n" + history
	}

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, query),
	}

	for round := 0; round < g.maxRounds; round++ {
		opts := g.callOptions()
		if reg != nil {
			opts = append(opts, llms.WithTools(reg.LLMTools()))
		}

		choice, err := g.call(ctx, messages, opts)
		if err != nil {
			return "", err
		}

		if len(choice.ToolCalls) == 0 {
			// Direct answer; remaining tool rounds are simply not used.
			return choice.Content, nil
		}

		if reg == nil {
			// Tool use requested with no registry supplied. Return the raw
			// content rather than looping; the caller asked for this setup.
			g.logger.Warn("model requested tools but no registry was supplied")
			return choice.Content, nil
		}

		g.logger.Debug("tool round", "round", round+1, "calls", len(choice.ToolCalls))
		messages = g.executeToolRound(ctx, messages, choice, reg)
	}

	// Round budget exhausted with the model still requesting tools: one final
	// call with tools withheld. Failure here is terminal for the request.
	choice, err := g.call(ctx, messages, g.callOptions())
	if err != nil {
		return "", fmt.Errorf("synthesize final response: %w", err)
	}
	return choice.Content, nil
}

func (g *Generator) callOptions() []llms.CallOption {
	return []llms.CallOption{
		llms.WithMaxTokens(g.maxTokens),
		llms.WithTemperature(g.temperature),
	}
}

func (g *Generator) call(ctx context.Context, messages []llms.MessageContent, opts []llms.CallOption) (*llms.ContentChoice, error) {
	resp, err := g.model.GenerateContent(ctx, messages, opts...)
	if err != nil {
		return nil, llm.WrapFatalError(fmt.Errorf("generate content: %w", err))
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("model returned no choices")
	}
	return resp.Choices[0], nil
}

// executeToolRound appends the model's tool-requesting message verbatim,
// executes every requested call in order, and appends all results as one
// tool-role message, one result block per invocation.
func (g *Generator) executeToolRound(ctx context.Context, messages []llms.MessageContent, choice *llms.ContentChoice, reg *tools.Registry) []llms.MessageContent {
	assistant := llms.MessageContent{Role: llms.ChatMessageTypeAI}
	if choice.Content != "" {
		assistant.Parts = append(assistant.Parts, llms.TextContent{Text: choice.Content})
	}
	for _, call := range choice.ToolCalls {
		assistant.Parts = append(assistant.Parts, call)
	}
	messages = append(messages, assistant)

	toolMsg := llms.MessageContent{Role: llms.ChatMessageTypeTool}
	for _, call := range choice.ToolCalls {
		name := ""
		if call.FunctionCall != nil {
			name = call.FunctionCall.Name
		}
		toolMsg.Parts = append(toolMsg.Parts, llms.ToolCallResponse{
			ToolCallID: call.ID,
			Name:       name,
			Content:    g.runTool(ctx, reg, call),
		})
	}
	return append(messages, toolMsg)
}

// runTool executes a single invocation. Failures never propagate upward: a
// synthetic failure result is substituted so the round always completes.
func (g *Generator) runTool(ctx context.Context, reg *tools.Registry, call llms.ToolCall) string {
	if call.FunctionCall == nil {
		return "Tool execution failed: empty tool call"
	}

	var args map[string]any
	if call.FunctionCall.Arguments != "" {
		if err := json.Unmarshal([]byte(call.FunctionCall.Arguments), &args); err != nil {
			g.logger.Warn("malformed tool arguments", "tool", call.FunctionCall.Name, "error", err)
			return fmt.Sprintf("Tool execution failed: %v", err)
		}
	}

	result, err := reg.Execute(ctx, call.FunctionCall.Name, args)
	if err != nil {
		g.logger.Warn("tool execution failed", "tool", call.FunctionCall.Name, "error", err)
		return fmt.Sprintf("Tool execution failed: %v", err)
	}
	return result
}
