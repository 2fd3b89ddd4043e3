// Package agentrun drives a single agent through a tool-calling loop against
// the chat backend and keeps its conversation addressable by token.
package agentrun

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"ideation-orchestrator/internal/application/port/output"
	"ideation-orchestrator/internal/domain/entity"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var _ output.TextGenerator = (*Runner)(nil)

const (
	DefaultMaxTurns   = 15
	maxObservationLen = 20000

	concludePrompt = "You have used all available turns. Do not call any more tools. Write your final answer now based on what you have gathered."
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrEmptyPrompt     = errors.New("empty prompt")
)

type Runner struct {
	llm         output.LLMPort
	tools       output.ToolRegistry
	sessions    output.SessionStore
	logger      output.LoggerPort
	ui          output.UserInteractionPort
	temperature float32
}

type Option func(*Runner)

func WithUserInteraction(ui output.UserInteractionPort) Option {
	return func(r *Runner) { r.ui = ui }
}

func WithTemperature(t float32) Option {
	return func(r *Runner) { r.temperature = t }
}

func New(
	llm output.LLMPort,
	tools output.ToolRegistry,
	sessions output.SessionStore,
	logger output.LoggerPort,
	opts ...Option,
) *Runner {
	r := &Runner{
		llm:      llm,
		tools:    tools,
		sessions: sessions,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes one agent invocation. Every call stores its full history
// under a fresh token, so two calls resuming the same token never observe
// each other.
func (r *Runner) Run(ctx context.Context, req entity.AgentRequest) (*entity.AgentResponse, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, ErrEmptyPrompt
	}
	log := r.logger.WithField("agent", req.Agent.String())

	history, err := r.loadHistory(ctx, req.ResumeToken)
	if err != nil {
		return nil, err
	}

	messages := make([]entity.Message, 0, len(history)+2)
	if req.SystemPrompt != "" {
		messages = append(messages, entity.Message{Role: entity.RoleSystem, Content: req.SystemPrompt})
	}
	messages = append(messages, history...)
	messages = append(messages, entity.Message{Role: entity.RoleUser, Content: req.Prompt})

	maxTurns := req.MaxTurns
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	toolDefs := r.definitions(req.AllowedTools)

	resp := &entity.AgentResponse{}
	var parts []string

	finished := false
	for turn := 1; turn <= maxTurns; turn++ {
		log.Debug("Starting turn", "turn", turn, "maxTurns", maxTurns)

		chat, err := r.llm.Chat(ctx, output.ChatRequest{
			Messages:    messages,
			Tools:       toolDefs,
			Temperature: r.temperature,
		})
		if err != nil {
			return nil, fmt.Errorf("llm request failed: %w", err)
		}
		resp.Turns = turn
		resp.APICalls++
		resp.Usage = resp.Usage.Add(chat.Usage)

		msg := chat.Message
		msg.Role = entity.RoleAssistant
		messages = append(messages, msg)
		if text := strings.TrimSpace(msg.Content); text != "" {
			parts = append(parts, text)
		}

		if len(msg.ToolCalls) == 0 {
			finished = true
			break
		}

		messages = append(messages, r.executeTools(ctx, log, req.AllowedTools, msg.ToolCalls)...)
	}

	if !finished {
		log.Warn("Turn budget exhausted, requesting final answer", "maxTurns", maxTurns)
		messages = append(messages, entity.Message{Role: entity.RoleUser, Content: concludePrompt})
		chat, err := r.llm.Chat(ctx, output.ChatRequest{
			Messages:    messages,
			Temperature: r.temperature,
		})
		if err != nil {
			return nil, fmt.Errorf("llm final request failed: %w", err)
		}
		resp.APICalls++
		resp.Usage = resp.Usage.Add(chat.Usage)
		msg := chat.Message
		msg.Role = entity.RoleAssistant
		msg.ToolCalls = nil
		messages = append(messages, msg)
		if text := strings.TrimSpace(msg.Content); text != "" {
			parts = append(parts, text)
		}
	}

	resp.Text = strings.Join(parts, "\n")
	resp.SessionToken = uuid.NewString()
	if err := r.sessions.Save(ctx, resp.SessionToken, withoutSystem(messages)); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	log.Info("Agent completed",
		"turns", resp.Turns,
		"apiCalls", resp.APICalls,
		"tokens", resp.Usage.TotalTokens,
		"textLen", len(resp.Text),
	)
	return resp, nil
}

func (r *Runner) loadHistory(ctx context.Context, token string) ([]entity.Message, error) {
	if token == "" {
		return nil, nil
	}
	history, ok, err := r.sessions.Load(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, token)
	}
	return history, nil
}

func (r *Runner) definitions(allowed []entity.ToolName) []entity.ToolDefinition {
	defs := make([]entity.ToolDefinition, 0, len(allowed))
	for _, name := range allowed {
		tool, ok := r.tools.Get(name)
		if !ok {
			r.logger.Warn("Allowed tool is not registered", "name", name)
			continue
		}
		defs = append(defs, entity.ToolDefinition{
			Name:        tool.Name().String(),
			Description: tool.Description(),
			Parameters:  tool.Parameters(),
		})
	}
	return defs
}

// executeTools runs all calls of one assistant message concurrently and
// returns the tool messages in call order.
func (r *Runner) executeTools(ctx context.Context, log output.LoggerPort, allowed []entity.ToolName, calls []entity.ToolCall) []entity.Message {
	observations := make([]string, len(calls))

	var g errgroup.Group
	for i, tc := range calls {
		g.Go(func() error {
			observations[i] = r.executeTool(ctx, log, allowed, tc)
			return nil
		})
	}
	_ = g.Wait()

	out := make([]entity.Message, len(calls))
	for i, tc := range calls {
		out[i] = entity.Message{
			Role:       entity.RoleTool,
			ToolCallID: tc.ID,
			Name:       tc.Name,
			Content:    observations[i],
		}
	}
	return out
}

func (r *Runner) executeTool(ctx context.Context, log output.LoggerPort, allowed []entity.ToolName, tc entity.ToolCall) string {
	name := entity.ToolName(tc.Name)
	if !isAllowed(allowed, name) {
		log.Warn("Tool not permitted", "name", tc.Name)
		return fmt.Sprintf("Error: tool '%s' is not permitted for this agent", tc.Name)
	}
	tool, ok := r.tools.Get(name)
	if !ok {
		log.Warn("Unknown tool called", "name", tc.Name)
		return fmt.Sprintf("Error: unknown tool '%s'", tc.Name)
	}

	log.Info("Executing tool", "name", tc.Name, "args", tc.Arguments)
	if r.ui != nil {
		r.ui.ShowToolStart(ctx, tc.Name, tc.Arguments)
	}

	result, err := tool.Execute(ctx, tc.Arguments)
	if err != nil {
		log.Error("Tool execution failed", "name", tc.Name, "error", err)
		if r.ui != nil {
			r.ui.ShowToolResult(ctx, tc.Name, err.Error(), true)
		}
		return "Error: " + err.Error()
	}

	if len(result) > maxObservationLen {
		result = cutUTF8(result, maxObservationLen) + "\n... (truncated)"
	}
	if r.ui != nil {
		r.ui.ShowToolResult(ctx, tc.Name, result, false)
	}

	log.Debug("Tool completed", "name", tc.Name, "resultLen", len(result))
	return result
}

// cutUTF8 shortens s to at most n bytes without splitting a rune.
func cutUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isAllowed(allowed []entity.ToolName, name entity.ToolName) bool {
	for _, a := range allowed {
		if a == name {
			return true
		}
	}
	return false
}

func withoutSystem(messages []entity.Message) []entity.Message {
	out := make([]entity.Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == entity.RoleSystem {
			continue
		}
		out = append(out, m)
	}
	return out
}
