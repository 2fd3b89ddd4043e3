package entity

type AgentName string

const (
	AgentResearcher          AgentName = "researcher"
	AgentCompetitorAnalyst   AgentName = "competitor_analyst"
	AgentMarketAnalyst       AgentName = "market_analyst"
	AgentResourceScout       AgentName = "resource_scout"
	AgentHypothesisArchitect AgentName = "hypothesis_architect"
	AgentCustomerDiscovery   AgentName = "customer_discovery"
	AgentScoringEvaluator    AgentName = "scoring_evaluator"
	AgentPivotAdvisor        AgentName = "pivot_advisor"
	AgentReportGenerator     AgentName = "report_generator"
	AgentCoordinator         AgentName = "coordinator"
)

func (a AgentName) String() string {
	return string(a)
}

// Slug is the dashed form used for remote agent repositories (market-analyst).
func (a AgentName) Slug() string {
	b := []byte(a)
	for i := range b {
		if b[i] == '_' {
			b[i] = '-'
		}
	}
	return string(b)
}

// AgentProfile is the static definition of an agent: its system prompt and
// what it is allowed to do.
type AgentProfile struct {
	Name         AgentName
	Description  string
	SystemPrompt string
	AllowedTools []ToolName
	MaxTurns     int
}

// AgentRequest is a single invocation of the text-generation backend.
type AgentRequest struct {
	Agent        AgentName
	SystemPrompt string
	Prompt       string
	AllowedTools []ToolName
	MaxTurns     int
	// ResumeToken continues a previous conversation when set.
	ResumeToken string
}

type AgentResponse struct {
	Text         string
	SessionToken string
	Turns        int
	APICalls     int
	Usage        Usage
}

// Request builds an invocation of the profile's agent.
func (p AgentProfile) Request(prompt, resumeToken string) AgentRequest {
	return AgentRequest{
		Agent:        p.Name,
		SystemPrompt: p.SystemPrompt,
		Prompt:       prompt,
		AllowedTools: p.AllowedTools,
		MaxTurns:     p.MaxTurns,
		ResumeToken:  resumeToken,
	}
}
