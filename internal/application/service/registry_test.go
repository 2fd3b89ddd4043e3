package service

import (
	"context"
	"testing"

	"ideation-orchestrator/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTool struct {
	name entity.ToolName
}

func (s stubTool) Name() entity.ToolName { return s.name }

func (s stubTool) Description() string { return "stub " + string(s.name) }

func (s stubTool) Parameters() map[string]interface{} {
	return map[string]interface{}{"type": "object"}
}

func (s stubTool) Execute(ctx context.Context, arguments string) (string, error) {
	return arguments, nil
}

func TestToolRegistry_DefinitionsSorted(t *testing.T) {
	r := NewToolRegistry()
	r.Register(stubTool{name: entity.ToolWebSearch})
	r.Register(stubTool{name: entity.ToolTask})
	r.Register(stubTool{name: entity.ToolWebFetch})

	defs := r.Definitions()
	require.Len(t, defs, 3)
	assert.Equal(t, "task", defs[0].Name)
	assert.Equal(t, "web_fetch", defs[1].Name)
	assert.Equal(t, "web_search", defs[2].Name)
	assert.Equal(t, "stub task", defs[0].Description)

	_, ok := r.Get(entity.ToolWebSearch)
	assert.True(t, ok)
	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestAgentRegistry_ListSorted(t *testing.T) {
	r := NewAgentRegistry()
	r.Register(entity.AgentProfile{Name: entity.AgentScoringEvaluator})
	r.Register(entity.AgentProfile{Name: entity.AgentMarketAnalyst})
	r.Register(entity.AgentProfile{Name: entity.AgentMarketAnalyst, Description: "replaced"})

	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, entity.AgentMarketAnalyst, list[0].Name)
	assert.Equal(t, "replaced", list[0].Description)

	p, ok := r.Get(entity.AgentScoringEvaluator)
	assert.True(t, ok)
	assert.Equal(t, entity.AgentScoringEvaluator, p.Name)
}
