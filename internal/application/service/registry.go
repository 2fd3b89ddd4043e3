package service

import (
	"sort"
	"sync"

	"ideation-orchestrator/internal/application/port/output"
	"ideation-orchestrator/internal/domain/entity"
)

var _ output.ToolRegistry = (*ToolRegistryImpl)(nil)

type ToolRegistryImpl struct {
	mu    sync.RWMutex
	tools map[entity.ToolName]output.ToolPort
}

func NewToolRegistry() *ToolRegistryImpl {
	return &ToolRegistryImpl{
		tools: make(map[entity.ToolName]output.ToolPort),
	}
}

func (r *ToolRegistryImpl) Register(tool output.ToolPort) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[tool.Name()] = tool
}

func (r *ToolRegistryImpl) Get(name entity.ToolName) (output.ToolPort, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

// All returns the registered tools ordered by name.
func (r *ToolRegistryImpl) All() []output.ToolPort {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]output.ToolPort, 0, len(r.tools))
	for _, tool := range r.tools {
		result = append(result, tool)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name() < result[j].Name()
	})
	return result
}

func (r *ToolRegistryImpl) Definitions() []entity.ToolDefinition {
	tools := r.All()
	result := make([]entity.ToolDefinition, 0, len(tools))
	for _, tool := range tools {
		result = append(result, entity.ToolDefinition{
			Name:        tool.Name().String(),
			Description: tool.Description(),
			Parameters:  tool.Parameters(),
		})
	}
	return result
}

var _ output.AgentRegistry = (*AgentRegistryImpl)(nil)

type AgentRegistryImpl struct {
	mu     sync.RWMutex
	agents map[entity.AgentName]entity.AgentProfile
}

func NewAgentRegistry() *AgentRegistryImpl {
	return &AgentRegistryImpl{
		agents: make(map[entity.AgentName]entity.AgentProfile),
	}
}

func (r *AgentRegistryImpl) Register(profile entity.AgentProfile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.agents[profile.Name] = profile
}

func (r *AgentRegistryImpl) Get(name entity.AgentName) (entity.AgentProfile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	profile, ok := r.agents[name]
	return profile, ok
}

// List returns the profiles ordered by name.
func (r *AgentRegistryImpl) List() []entity.AgentProfile {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]entity.AgentProfile, 0, len(r.agents))
	for _, profile := range r.agents {
		result = append(result, profile)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}
