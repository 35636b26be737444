// Package ollama runs the agent against a local Ollama server.
package ollama

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"formfill-agent/internal/application/port/output"
	"formfill-agent/internal/domain/entity"

	"github.com/tmc/langchaingo/llms"
	lcollama "github.com/tmc/langchaingo/llms/ollama"
)

var _ output.LLMPort = (*Adapter)(nil)

const DefaultServerURL = "http://localhost:11434"

var ErrEmptyResponse = errors.New("empty response from ollama")

type Config struct {
	ServerURL  string
	Model      string
	Logger     output.LoggerPort
	HTTPClient *http.Client
}

type Adapter struct {
	llm    llms.Model
	model  string
	logger output.LoggerPort
}

func New(cfg Config) (*Adapter, error) {
	if cfg.ServerURL == "" {
		cfg.ServerURL = DefaultServerURL
	}

	opts := []lcollama.Option{
		lcollama.WithModel(cfg.Model),
		lcollama.WithServerURL(cfg.ServerURL),
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, lcollama.WithHTTPClient(cfg.HTTPClient))
	}

	client, err := lcollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create ollama client: %w", err)
	}
	return newWithModel(client, cfg.Model, cfg.Logger), nil
}

func newWithModel(m llms.Model, model string, logger output.LoggerPort) *Adapter {
	return &Adapter{llm: m, model: model, logger: logger}
}

func (a *Adapter) Model() string {
	return a.model
}

func (a *Adapter) Chat(ctx context.Context, req output.ChatRequest) (*output.ChatResponse, error) {
	opts := []llms.CallOption{llms.WithTemperature(float64(req.Temperature))}
	if len(req.Tools) > 0 {
		opts = append(opts, llms.WithTools(convertTools(req.Tools)))
	}

	if a.logger != nil {
		a.logger.Debug("Ollama request", "model", a.model, "messages", len(req.Messages), "tools", len(req.Tools))
	}

	resp, err := a.llm.GenerateContent(ctx, convertMessages(req.Messages), opts...)
	if err != nil {
		return nil, fmt.Errorf("ollama generate failed: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return nil, ErrEmptyResponse
	}

	return &output.ChatResponse{Message: convertChoice(resp.Choices[0])}, nil
}

func convertMessages(messages []entity.Message) []llms.MessageContent {
	result := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case entity.RoleSystem:
			result = append(result, llms.TextParts(llms.ChatMessageTypeSystem, msg.Content))
		case entity.RoleUser:
			result = append(result, llms.TextParts(llms.ChatMessageTypeHuman, msg.Content))
		case entity.RoleTool:
			result = append(result, llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{llms.ToolCallResponse{
					ToolCallID: msg.ToolCallID,
					Name:       msg.Name,
					Content:    msg.Content,
				}},
			})
		default:
			mc := llms.MessageContent{Role: llms.ChatMessageTypeAI}
			if msg.Content != "" {
				mc.Parts = append(mc.Parts, llms.TextContent{Text: msg.Content})
			}
			for _, tc := range msg.ToolCalls {
				mc.Parts = append(mc.Parts, llms.ToolCall{
					ID:   tc.ID,
					Type: "function",
					FunctionCall: &llms.FunctionCall{
						Name:      tc.Name,
						Arguments: tc.Arguments,
					},
				})
			}
			result = append(result, mc)
		}
	}
	return result
}

func convertTools(tools []entity.ToolDefinition) []llms.Tool {
	result := make([]llms.Tool, 0, len(tools))
	for _, t := range tools {
		result = append(result, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        t.Name.String(),
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}
	return result
}

// convertChoice assigns call ids when the server leaves them empty, since the
// executor pairs tool results with calls by id.
func convertChoice(choice *llms.ContentChoice) entity.Message {
	msg := entity.Message{
		Role:    entity.RoleAssistant,
		Content: choice.Content,
	}
	for i, tc := range choice.ToolCalls {
		if tc.FunctionCall == nil {
			continue
		}
		id := tc.ID
		if id == "" {
			id = fmt.Sprintf("call_%d", i)
		}
		msg.ToolCalls = append(msg.ToolCalls, entity.ToolCall{
			ID:        id,
			Name:      tc.FunctionCall.Name,
			Arguments: tc.FunctionCall.Arguments,
		})
	}
	return msg
}
