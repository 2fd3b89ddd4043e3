package userinteraction

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"ideation-orchestrator/internal/application/port/output"
	"ideation-orchestrator/internal/domain/entity"

	"github.com/fatih/color"
)

var (
	_ output.UserInteractionPort = (*Console)(nil)
	_ output.UserInteractionPort = Quiet{}
)

// Console prints evaluation progress. Parallel phases may report at the
// same time, so writes are serialized.
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

func NewConsole() *Console {
	return &Console{out: os.Stdout}
}

func NewConsoleTo(w io.Writer) *Console {
	return &Console{out: w}
}

func (c *Console) ShowPhaseStart(ctx context.Context, phase entity.Phase, index, total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	icon, name := phaseDisplay(phase)
	color.New(color.FgCyan, color.Bold).Fprintf(c.out, "\n━━━ [%d/%d] %s %s ━━━\n", index, total, icon, name)
}

func (c *Console) ShowPhaseResult(ctx context.Context, phase entity.Phase, elapsed time.Duration, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, name := phaseDisplay(phase)
	if err != nil {
		color.New(color.FgRed).Fprintf(c.out, "❌ %s failed: ", name)
		color.New(color.Faint).Fprintln(c.out, truncate(err.Error(), 300))
		return
	}
	color.New(color.FgGreen).Fprintf(c.out, "✓ %s complete (%.1fs)\n", name, elapsed.Seconds())
}

func (c *Console) ShowPhaseSkipped(ctx context.Context, phase entity.Phase, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, name := phaseDisplay(phase)
	color.New(color.Faint).Fprintf(c.out, "⏭ %s skipped: %s\n", name, reason)
}

func (c *Console) ShowToolStart(ctx context.Context, toolName, arguments string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	icon, name := toolDisplay(toolName)
	color.New(color.FgYellow, color.Bold).Fprintf(c.out, "%s %s\n", icon, name)
	if summary := formatToolArguments(toolName, arguments); summary != "" {
		color.New(color.Faint).Fprintf(c.out, "   %s\n", summary)
	}
}

func (c *Console) ShowToolResult(ctx context.Context, toolName, result string, isError bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if isError {
		color.New(color.FgRed).Fprint(c.out, "   ❌ Error: ")
		color.New(color.Faint).Fprintln(c.out, truncate(result, 300))
		return
	}
	color.New(color.FgGreen).Fprintf(c.out, "   ✓ %s\n", formatToolResult(toolName, result))
}

func (c *Console) ShowMessage(ctx context.Context, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	color.New(color.FgBlue, color.Bold).Fprintln(c.out, msg)
}

// Quiet discards all progress output.
type Quiet struct{}

func (Quiet) ShowPhaseStart(context.Context, entity.Phase, int, int)              {}
func (Quiet) ShowPhaseResult(context.Context, entity.Phase, time.Duration, error) {}
func (Quiet) ShowPhaseSkipped(context.Context, entity.Phase, string)              {}
func (Quiet) ShowToolStart(context.Context, string, string)                       {}
func (Quiet) ShowToolResult(context.Context, string, string, bool)                {}
func (Quiet) ShowMessage(context.Context, string)                                 {}

func phaseDisplay(phase entity.Phase) (string, string) {
	displays := map[entity.Phase][2]string{
		entity.PhaseResearch:           {"🔎", "Research"},
		entity.PhaseCompetitorAnalysis: {"⚔️", "Competitor Analysis"},
		entity.PhaseMarketSizing:       {"📊", "Market Sizing"},
		entity.PhaseResourceScout:      {"🧰", "Resource Scouting"},
		entity.PhaseHypothesis:         {"🧪", "Hypothesis"},
		entity.PhaseCustomerDiscovery:  {"🗣️", "Customer Discovery"},
		entity.PhaseScoring:            {"🎯", "Scoring"},
		entity.PhasePivot:              {"↪️", "Pivot Suggestions"},
		entity.PhaseReport:             {"📝", "Report"},
		entity.PhaseCoordination:       {"🤖", "Coordination"},
	}
	if d, ok := displays[phase]; ok {
		return d[0], d[1]
	}
	return "•", string(phase)
}

func toolDisplay(toolName string) (string, string) {
	displays := map[string][2]string{
		entity.ToolWebSearch.String(): {"🔎", "Web search"},
		entity.ToolWebFetch.String():  {"🌐", "Fetch page"},
		entity.ToolTask.String():      {"🤖", "Delegate"},
	}
	if d, ok := displays[toolName]; ok {
		return d[0], d[1]
	}
	return "🔧", toolName
}

func formatToolArguments(toolName, arguments string) string {
	var args map[string]interface{}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return ""
	}

	switch toolName {
	case entity.ToolWebSearch.String():
		query, _ := args["query"].(string)
		if kind, ok := args["kind"].(string); ok && kind != "" {
			return fmt.Sprintf("Query: %s (%s)", truncate(query, 60), kind)
		}
		return "Query: " + truncate(query, 60)

	case entity.ToolWebFetch.String():
		if url, ok := args["url"].(string); ok {
			return "URL: " + url
		}

	case entity.ToolTask.String():
		agent, _ := args["subagent_type"].(string)
		desc, _ := args["description"].(string)
		if desc == "" {
			desc, _ = args["prompt"].(string)
		}
		return fmt.Sprintf("Agent: %s | %s", agent, truncate(desc, 60))
	}

	return ""
}

func formatToolResult(toolName, result string) string {
	switch toolName {
	case entity.ToolWebSearch.String():
		n := 0
		for _, line := range strings.Split(result, "\n") {
			if len(line) > 2 && line[0] >= '0' && line[0] <= '9' && strings.Contains(line, ". ") {
				n++
			}
		}
		return fmt.Sprintf("%d results", n)

	case entity.ToolWebFetch.String():
		first, _, _ := strings.Cut(result, "\n")
		return truncate(first, 100)
	}
	return fmt.Sprintf("%d chars", len(result))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
