package resolver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
)

// Loop manages the API call and tool execution cycle.
type Loop struct {
	client        *Client
	executor      *ToolExecutor
	signals       *SignalManager
	onStream      func(StreamEvent)
	maxIterations int
}

// StreamEvent represents an event during resolution for streaming to output.
type StreamEvent struct {
	Type    string // "text", "tool_use", "tool_result", "done", "error"
	Content string
	Tool    string
	Input   json.RawMessage
}

// LoopResult contains the results of a resolution loop execution.
type LoopResult struct {
	Output     string
	TokensIn   int64
	TokensOut  int64
	ToolCalls  int
	Iterations int
	Stopped    bool // True if stopped by signal
}

// LoopConfig contains configuration for the resolution loop.
type LoopConfig struct {
	Client        *Client
	Executor      *ToolExecutor
	Signals       *SignalManager
	MaxIterations int // Max API calls before stopping (0 = default)
}

// NewLoop creates a new resolution loop with the given configuration.
func NewLoop(cfg LoopConfig) *Loop {
	maxIter := cfg.MaxIterations
	if maxIter == 0 {
		maxIter = 30
	}

	return &Loop{
		client:        cfg.Client,
		executor:      cfg.Executor,
		signals:       cfg.Signals,
		maxIterations: maxIter,
	}
}

// SetStreamHandler sets a callback for streaming events during execution.
func (l *Loop) SetStreamHandler(fn func(StreamEvent)) {
	l.onStream = fn
}

// emit sends a stream event if a handler is configured.
func (l *Loop) emit(event StreamEvent) {
	if l.onStream != nil {
		l.onStream(event)
	}
}

// Run executes the resolution loop with the given prompts.
func (l *Loop) Run(ctx context.Context, systemPrompt, userPrompt string) (*LoopResult, error) {
	result := &LoopResult{}

	if l.signals != nil {
		if guidelines := l.signals.ReadGuidelines(); guidelines != "" {
			systemPrompt = buildSystemPromptWith(systemPrompt, guidelines)
		}

		if l.signals.ShouldStop() {
			result.Stopped = true
			return result, fmt.Errorf("stop signal received before start")
		}
	}

	messages := []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
	}

	for result.Iterations < l.maxIterations {
		result.Iterations++

		// Check for signals each iteration
		if l.signals != nil && l.signals.ShouldStop() {
			result.Stopped = true
			return result, fmt.Errorf("stop signal received")
		}

		resp, err := l.client.sdk().Messages.New(ctx, anthropic.MessageNewParams{
			Model:     l.client.Model(),
			MaxTokens: 8192,
			System: []anthropic.TextBlockParam{
				{Text: systemPrompt},
			},
			Messages: messages,
			Tools:    ToolDefinitions(),
		})
		if err != nil {
			l.emit(StreamEvent{Type: "error", Content: err.Error()})
			return result, fmt.Errorf("API call failed: %w", err)
		}

		result.TokensIn += resp.Usage.InputTokens
		result.TokensOut += resp.Usage.OutputTokens
		l.client.Tracker().Add(resp.Usage.InputTokens, resp.Usage.OutputTokens)

		var assistantBlocks []anthropic.ContentBlockParamUnion
		var toolResultBlocks []anthropic.ContentBlockParamUnion
		var textOutput string

		for _, block := range resp.Content {
			switch variant := block.AsAny().(type) {
			case anthropic.TextBlock:
				textOutput += variant.Text
				l.emit(StreamEvent{Type: "text", Content: variant.Text})
				assistantBlocks = append(assistantBlocks, anthropic.NewTextBlock(variant.Text))

			case anthropic.ToolUseBlock:
				result.ToolCalls++

				l.emit(StreamEvent{
					Type:  "tool_use",
					Tool:  variant.Name,
					Input: variant.Input,
				})
				assistantBlocks = append(assistantBlocks,
					anthropic.NewToolUseBlock(variant.ID, variant.Input, variant.Name))

				toolResult := l.executor.Execute(ctx, variant.Name, variant.Input)
				l.emit(StreamEvent{
					Type:    "tool_result",
					Tool:    variant.Name,
					Content: truncateForDisplay(toolResult.Content),
				})

				toolResultBlocks = append(toolResultBlocks,
					anthropic.NewToolResultBlock(variant.ID, toolResult.Content, toolResult.IsError))
			}
		}

		// Done when the model stops asking for tools
		if resp.StopReason == anthropic.StopReasonEndTurn {
			result.Output = textOutput
			l.emit(StreamEvent{Type: "done"})
			return result, nil
		}

		messages = append(messages, anthropic.NewAssistantMessage(assistantBlocks...))
		if len(toolResultBlocks) > 0 {
			messages = append(messages, anthropic.NewUserMessage(toolResultBlocks...))
		}
	}

	return result, fmt.Errorf("max iterations (%d) reached", l.maxIterations)
}

// buildSystemPromptWith appends project guidelines to a system prompt.
func buildSystemPromptWith(base, guidelines string) string {
	return fmt.Sprintf("%s\n\n## Project Guidelines\n%s", base, guidelines)
}

func truncateForDisplay(s string) string {
	if len(s) > 500 {
		return s[:500] + "..."
	}
	return s
}
