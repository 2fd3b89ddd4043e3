package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"ideation-orchestrator/internal/application/port/output"
	"ideation-orchestrator/internal/domain/entity"
)

var _ output.ToolPort = (*TaskTool)(nil)

// TaskTool lets a coordinator delegate a subtask to a registered agent.
// Each call starts an independent session.
type TaskTool struct {
	agents    output.AgentRegistry
	generator output.TextGenerator
	logger    output.LoggerPort
	maxTurns  int
	onResult  func(ctx context.Context, agent entity.AgentName, resp *entity.AgentResponse, elapsed time.Duration)
}

func NewTaskTool(
	agents output.AgentRegistry,
	generator output.TextGenerator,
	logger output.LoggerPort,
	maxTurns int,
) *TaskTool {
	return &TaskTool{
		agents:    agents,
		generator: generator,
		logger:    logger,
		maxTurns:  maxTurns,
	}
}

// OnResult registers a callback invoked after each successful delegation.
// It may be called concurrently.
func (t *TaskTool) OnResult(fn func(ctx context.Context, agent entity.AgentName, resp *entity.AgentResponse, elapsed time.Duration)) {
	t.onResult = fn
}

func (t *TaskTool) Name() entity.ToolName { return entity.ToolTask }

func (t *TaskTool) Description() string {
	var agentList strings.Builder
	for _, agent := range t.delegates() {
		fmt.Fprintf(&agentList, "- %s: %s\n", agent.Name, agent.Description)
	}

	return fmt.Sprintf(
		`Run a specialized sub-agent on a subtask and return its output. Issue several task calls in one message to run them in parallel.

Available agents:
%s
Each agent starts with no memory of this conversation, so include all the context it needs in the prompt.`, agentList.String())
}

func (t *TaskTool) Parameters() map[string]interface{} {
	agents := t.delegates()
	names := make([]string, 0, len(agents))
	for _, agent := range agents {
		names = append(names, string(agent.Name))
	}

	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"subagent_type": map[string]interface{}{
				"type":        "string",
				"enum":        names,
				"description": "Agent to run",
			},
			"description": map[string]interface{}{
				"type":        "string",
				"description": "Short label for the subtask",
			},
			"prompt": map[string]interface{}{
				"type":        "string",
				"description": "Full instructions and context for the agent",
			},
		},
		"required": []string{"subagent_type", "prompt"},
	}
}

func (t *TaskTool) Execute(ctx context.Context, arguments string) (string, error) {
	var args struct {
		SubagentType string `json:"subagent_type"`
		Description  string `json:"description"`
		Prompt       string `json:"prompt"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}

	name := entity.AgentName(args.SubagentType)
	profile, ok := t.agents.Get(name)
	if !ok || name == entity.AgentCoordinator {
		return "", fmt.Errorf("agent not found: %s", args.SubagentType)
	}

	t.logger.Info("Running sub-agent", "agent", name, "description", args.Description)

	if profile.MaxTurns <= 0 {
		profile.MaxTurns = t.maxTurns
	}
	started := time.Now()
	resp, err := t.generator.Run(ctx, profile.Request(args.Prompt, ""))
	if err != nil {
		t.logger.Error("Sub-agent failed", "agent", name, "error", err)
		return "", fmt.Errorf("agent execution failed: %w", err)
	}

	if t.onResult != nil {
		t.onResult(ctx, name, resp, time.Since(started))
	}
	t.logger.Info("Sub-agent completed", "agent", name, "turns", resp.Turns)
	return resp.Text, nil
}

func (t *TaskTool) delegates() []entity.AgentProfile {
	all := t.agents.List()
	out := make([]entity.AgentProfile, 0, len(all))
	for _, a := range all {
		if a.Name != entity.AgentCoordinator {
			out = append(out, a)
		}
	}
	return out
}
