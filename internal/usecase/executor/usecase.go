package executor

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"formfill-agent/internal/application/port/input"
	"formfill-agent/internal/application/port/output"
	"formfill-agent/internal/domain/entity"
)

var _ input.TaskExecutor = (*UseCase)(nil)

const (
	DefaultMaxIterations = 50
	maxObservationLen    = 20000
)

var ErrMaxIterations = errors.New("max iterations exceeded")

type UseCase struct {
	llm           output.LLMPort
	tools         output.ToolRegistry
	logger        output.LoggerPort
	progress      output.ProgressPort
	systemPrompt  string
	maxIterations int
}

type Option func(*UseCase)

func WithProgress(p output.ProgressPort) Option {
	return func(uc *UseCase) { uc.progress = p }
}

func WithMaxIterations(n int) Option {
	return func(uc *UseCase) {
		if n > 0 {
			uc.maxIterations = n
		}
	}
}

func New(
	llm output.LLMPort,
	tools output.ToolRegistry,
	logger output.LoggerPort,
	systemPrompt string,
	opts ...Option,
) *UseCase {
	uc := &UseCase{
		llm:           llm,
		tools:         tools,
		logger:        logger,
		systemPrompt:  systemPrompt,
		maxIterations: DefaultMaxIterations,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Execute runs the tool loop until the model answers without tool calls.
// Every tool call becomes one transcript record; the answer is the last one.
func (uc *UseCase) Execute(ctx context.Context, task string) (*input.ExecuteResult, error) {
	messages := []entity.Message{
		entity.SystemMessage(uc.systemPrompt),
		entity.UserMessage(task),
	}
	uc.logger.Info("Agent run started", "model", uc.llm.Model(), "maxIterations", uc.maxIterations)

	toolDefs := uc.tools.Definitions()
	var transcript entity.Transcript

	for iteration := 1; iteration <= uc.maxIterations; iteration++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		uc.logger.Debug("Starting iteration", "iteration", iteration)
		if uc.progress != nil {
			uc.progress.ShowIteration(ctx, iteration, uc.maxIterations)
		}

		resp, err := uc.llm.Chat(ctx, output.ChatRequest{
			Messages:    messages,
			Tools:       toolDefs,
			Temperature: 0.0,
		})
		if err != nil {
			return nil, fmt.Errorf("llm request failed: %w", err)
		}

		messages = append(messages, resp.Message)

		if resp.Message.IsFinal() {
			transcript = append(transcript, entity.NewStepRecord(entity.ActionFinish, resp.Message.Content))
			return &input.ExecuteResult{
				FinalAnswer: resp.Message.Content,
				Iterations:  iteration,
				Transcript:  transcript,
			}, nil
		}

		if resp.Message.Content != "" && uc.progress != nil {
			uc.progress.ShowThinking(ctx, resp.Message.Content)
		}

		for _, tc := range resp.Message.ToolCalls {
			observation := uc.executeTool(ctx, tc)
			transcript = append(transcript, entity.NewStepRecord(tc.Name, observation))

			messages = append(messages, entity.ToolResultMessage(tc, observation))
		}
	}

	return nil, fmt.Errorf("%w (%d)", ErrMaxIterations, uc.maxIterations)
}

func (uc *UseCase) executeTool(ctx context.Context, tc entity.ToolCall) string {
	if uc.progress != nil {
		uc.progress.ShowToolStart(ctx, tc.Name, tc.Arguments)
	}

	tool, ok := uc.tools.Get(tc.Tool())
	if !ok {
		uc.logger.Warn("Unknown tool called", "name", tc.Name)
		observation := fmt.Sprintf("Error: unknown tool '%s'", tc.Name)
		uc.report(ctx, tc.Name, observation, true)
		return observation
	}

	uc.logger.Info("Executing tool", "name", tc.Name, "args", tc.Arguments)

	result, err := tool.Execute(ctx, tc.Arguments)
	if err != nil {
		uc.logger.Error("Tool execution failed", "name", tc.Name, "error", err)
		observation := "Error: " + err.Error()
		uc.report(ctx, tc.Name, observation, true)
		return observation
	}

	result = truncateObservation(result)

	uc.logger.Debug("Tool completed", "name", tc.Name, "resultLen", len(result))
	uc.report(ctx, tc.Name, result, false)
	return result
}

func (uc *UseCase) report(ctx context.Context, name, result string, isError bool) {
	if uc.progress != nil {
		uc.progress.ShowToolResult(ctx, name, result, isError)
	}
}

// truncateObservation caps an observation at maxObservationLen runes.
func truncateObservation(s string) string {
	if utf8.RuneCountInString(s) <= maxObservationLen {
		return s
	}
	return string([]rune(s)[:maxObservationLen]) + "\n... (truncated)"
}
