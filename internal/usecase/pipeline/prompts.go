package pipeline

import (
	"fmt"
	"strings"

	"ideation-orchestrator/internal/domain/entity"
)

func researchPrompt(topic string) string {
	return "Research market trends and customer pain points for: " + topic
}

func competitorPrompt(topic string) string {
	return fmt.Sprintf("Analyze competitors for: %s\n\nUse the research context from the previous phase.", topic)
}

func marketPrompt(topic string) string {
	return fmt.Sprintf("Analyze market size for: %s\n\nUse context from research and competitor analysis.", topic)
}

func resourcePrompt(topic string) string {
	return "Find resources and assess technical feasibility for: " + topic
}

func hypothesisPrompt(topic string) string {
	return fmt.Sprintf("Extract riskiest assumptions and define MVP for: %s\n\nUse all prior analysis as context.", topic)
}

func customerPrompt(topic string) string {
	return fmt.Sprintf("Plan customer discovery for: %s\n\nUse hypothesis and prior research as context.", topic)
}

func pivotPrompt(topic string, score float64) string {
	return fmt.Sprintf("Suggest pivots for the eliminated idea: %s\n\nScore: %.1f/10\nUse the scoring weaknesses to inform pivot suggestions.", topic, score)
}

func reportPrompt(r *entity.IdeaResult) string {
	return fmt.Sprintf(`Generate the final evaluation report for: %s

Decision: %s
Score: %.1f/10
Threshold: %.1f

Compile all analysis into a comprehensive report.`, r.Topic, r.Decision, r.TotalScore, r.Threshold)
}

// withContext appends outputs from branches whose conversations were not
// continued, so the next agent still sees them.
func withContext(prompt string, sections []branchOutput) string {
	if len(sections) == 0 {
		return prompt
	}
	var b strings.Builder
	b.WriteString(prompt)
	b.WriteString("\n\nAdditional context from parallel analysis:")
	for _, s := range sections {
		fmt.Fprintf(&b, "\n\n## %s\n\n%s", s.title, strings.TrimSpace(s.text))
	}
	return b.String()
}
