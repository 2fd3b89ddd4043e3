package prompts_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"ideation-orchestrator/internal/domain/entity"
	"ideation-orchestrator/internal/infrastructure/prompts"
)

func TestDefaultAgents(t *testing.T) {
	profiles, err := prompts.DefaultAgents()
	if err != nil {
		t.Fatalf("DefaultAgents failed: %v", err)
	}

	if len(profiles) != 9 {
		t.Fatalf("Expected 9 embedded agents, got %d", len(profiles))
	}

	byName := make(map[entity.AgentName]entity.AgentProfile)
	for _, p := range profiles {
		if p.SystemPrompt == "" {
			t.Errorf("Agent %s has an empty prompt", p.Name)
		}
		if p.Description == "" {
			t.Errorf("Agent %s has no description", p.Name)
		}
		byName[p.Name] = p
	}

	researcher, ok := byName[entity.AgentResearcher]
	if !ok {
		t.Fatal("researcher missing")
	}
	if len(researcher.AllowedTools) != 2 || researcher.AllowedTools[0] != entity.ToolWebSearch {
		t.Errorf("researcher tools = %v", researcher.AllowedTools)
	}
	if researcher.MaxTurns != 15 {
		t.Errorf("researcher max turns = %d", researcher.MaxTurns)
	}

	scorer := byName[entity.AgentScoringEvaluator]
	if len(scorer.AllowedTools) != 0 {
		t.Errorf("scoring agent should not have tools, got %v", scorer.AllowedTools)
	}
	if !strings.Contains(scorer.SystemPrompt, "**TOTAL**") {
		t.Error("scoring prompt should request the total row")
	}
}

func TestParseAgentErrors(t *testing.T) {
	if _, err := prompts.ParseAgent([]byte("no front matter")); err != prompts.ErrMissingFrontMatter {
		t.Errorf("expected ErrMissingFrontMatter, got %v", err)
	}
	if _, err := prompts.ParseAgent([]byte("---\nname: x\n")); err != prompts.ErrMalformedFrontMatter {
		t.Errorf("expected ErrMalformedFrontMatter, got %v", err)
	}
	if _, err := prompts.ParseAgent([]byte("---\ndescription: x\n---\nbody")); err == nil {
		t.Error("expected error for missing name")
	}
}

func TestLoadAgentsFromFS(t *testing.T) {
	fsys := fstest.MapFS{
		"b.md":      {Data: []byte("---\nname: b\ntools: [web_search]\n---\nprompt b\n")},
		"a.md":      {Data: []byte("---\r\nname: a\r\n---\r\nprompt a\r\n")},
		"notes.txt": {Data: []byte("ignored")},
	}

	profiles, err := prompts.LoadAgents(fsys)
	if err != nil {
		t.Fatalf("LoadAgents failed: %v", err)
	}
	if len(profiles) != 2 {
		t.Fatalf("Expected 2 agents, got %d", len(profiles))
	}
	if profiles[0].Name != "a" || profiles[0].SystemPrompt != "prompt a" {
		t.Errorf("unexpected first profile %+v", profiles[0])
	}
}

func TestAgentsDirectoryOverride(t *testing.T) {
	dir := t.TempDir()
	override := "---\nname: researcher\ndescription: custom\n---\ncustom prompt\n"
	if err := os.WriteFile(filepath.Join(dir, "researcher.md"), []byte(override), 0o644); err != nil {
		t.Fatal(err)
	}

	profiles, err := prompts.Agents(dir)
	if err != nil {
		t.Fatalf("Agents failed: %v", err)
	}
	if len(profiles) != 9 {
		t.Fatalf("Expected 9 agents, got %d", len(profiles))
	}
	for _, p := range profiles {
		if p.Name == entity.AgentResearcher && p.SystemPrompt != "custom prompt" {
			t.Errorf("override not applied: %q", p.SystemPrompt)
		}
	}
}
