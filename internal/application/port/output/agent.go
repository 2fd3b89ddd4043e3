package output

import "ideation-orchestrator/internal/domain/entity"

type AgentRegistry interface {
	Register(profile entity.AgentProfile)
	Get(name entity.AgentName) (entity.AgentProfile, bool)
	List() []entity.AgentProfile
}
