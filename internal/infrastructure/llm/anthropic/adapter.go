// Package anthropic adapts the Anthropic messages API, through langchaingo,
// to the chat port.
package anthropic

import (
	"context"
	"errors"
	"fmt"

	"ideation-orchestrator/internal/application/port/output"
	"ideation-orchestrator/internal/domain/entity"

	"github.com/tmc/langchaingo/llms"
	lcanthropic "github.com/tmc/langchaingo/llms/anthropic"
)

var _ output.LLMPort = (*Adapter)(nil)

const defaultMaxTokens = 8192

type Config struct {
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int
}

type Adapter struct {
	llm       llms.Model
	maxTokens int
}

func New(cfg Config) (*Adapter, error) {
	opts := []lcanthropic.Option{
		lcanthropic.WithToken(cfg.APIKey),
		lcanthropic.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, lcanthropic.WithBaseURL(cfg.BaseURL))
	}
	llm, err := lcanthropic.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create anthropic client: %w", err)
	}
	return NewWithModel(llm, cfg.MaxTokens), nil
}

// NewWithModel wraps any langchaingo model.
func NewWithModel(model llms.Model, maxTokens int) *Adapter {
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &Adapter{llm: model, maxTokens: maxTokens}
}

func (a *Adapter) Chat(ctx context.Context, req output.ChatRequest) (*output.ChatResponse, error) {
	opts := []llms.CallOption{
		llms.WithMaxTokens(a.maxTokens),
		llms.WithTemperature(float64(req.Temperature)),
	}
	if len(req.Tools) > 0 {
		opts = append(opts, llms.WithTools(convertTools(req.Tools)))
	}

	resp, err := a.llm.GenerateContent(ctx, convertMessages(req.Messages), opts...)
	if err != nil {
		return nil, fmt.Errorf("anthropic generate failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("no choices in response")
	}

	msg := entity.Message{Role: entity.RoleAssistant}
	var usage entity.Usage
	for _, choice := range resp.Choices {
		msg.Content += choice.Content
		for _, tc := range choice.ToolCalls {
			if tc.FunctionCall == nil {
				continue
			}
			msg.ToolCalls = append(msg.ToolCalls, entity.ToolCall{
				ID:        tc.ID,
				Name:      tc.FunctionCall.Name,
				Arguments: tc.FunctionCall.Arguments,
			})
		}
		usage = usage.Add(usageFrom(choice.GenerationInfo))
	}

	return &output.ChatResponse{Message: msg, Usage: usage}, nil
}

func usageFrom(info map[string]any) entity.Usage {
	in := intValue(info["InputTokens"])
	out := intValue(info["OutputTokens"])
	return entity.Usage{PromptTokens: in, CompletionTokens: out, TotalTokens: in + out}
}

func intValue(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

// convertMessages maps chat history to langchaingo content. Assistant turns
// with tool calls become one message per call since the anthropic backend
// reads a single part from assistant messages.
func convertMessages(messages []entity.Message) []llms.MessageContent {
	out := make([]llms.MessageContent, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case entity.RoleSystem:
			out = append(out, llms.TextParts(llms.ChatMessageTypeSystem, m.Content))
		case entity.RoleUser:
			out = append(out, llms.TextParts(llms.ChatMessageTypeHuman, m.Content))
		case entity.RoleAssistant:
			if len(m.ToolCalls) == 0 {
				out = append(out, llms.TextParts(llms.ChatMessageTypeAI, m.Content))
				continue
			}
			for _, tc := range m.ToolCalls {
				out = append(out, llms.MessageContent{
					Role: llms.ChatMessageTypeAI,
					Parts: []llms.ContentPart{llms.ToolCall{
						ID:   tc.ID,
						Type: "function",
						FunctionCall: &llms.FunctionCall{
							Name:      tc.Name,
							Arguments: tc.Arguments,
						},
					}},
				})
			}
		case entity.RoleTool:
			out = append(out, llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{llms.ToolCallResponse{
					ToolCallID: m.ToolCallID,
					Name:       m.Name,
					Content:    m.Content,
				}},
			})
		}
	}
	return out
}

func convertTools(tools []entity.ToolDefinition) []llms.Tool {
	out := make([]llms.Tool, 0, len(tools))
	for _, t := range tools {
		out = append(out, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}
	return out
}
