package prompts

import (
	"bytes"
	"text/template"

	"ideation-orchestrator/internal/application/port/output"
	"ideation-orchestrator/internal/domain/entity"
)

type AgentInfo struct {
	Name        string
	Description string
}

type CoordinatorPromptData struct {
	Agents    []AgentInfo
	Threshold float64
	Criteria  []string
}

// GenerateCoordinatorPrompt renders the coordinator template with every
// registered agent except the coordinator itself. Agents are listed in
// registry order.
func GenerateCoordinatorPrompt(baseTemplate string, agentRegistry output.AgentRegistry, threshold float64, criteria []string) (string, error) {
	agents := agentRegistry.List()
	agentInfos := make([]AgentInfo, 0, len(agents))

	for _, agent := range agents {
		if agent.Name == entity.AgentCoordinator {
			continue
		}
		agentInfos = append(agentInfos, AgentInfo{
			Name:        string(agent.Name),
			Description: agent.Description,
		})
	}

	data := CoordinatorPromptData{
		Agents:    agentInfos,
		Threshold: threshold,
		Criteria:  criteria,
	}

	tmpl, err := template.New("coordinator").Option("missingkey=error").Parse(baseTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}
