package prompts

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"ideation-orchestrator/internal/domain/entity"

	"gopkg.in/yaml.v3"
)

//go:embed agents/*.md
var agentFiles embed.FS

//go:embed coordinator.tmpl
var CoordinatorTemplate string

var (
	ErrMissingFrontMatter   = errors.New("prompts: missing front matter")
	ErrMalformedFrontMatter = errors.New("prompts: malformed front matter")
)

type frontMatter struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Tools       []string `yaml:"tools"`
	MaxTurns    int      `yaml:"max_turns"`
}

// ParseAgent reads an agent definition: YAML front matter between `---`
// fences followed by the system prompt.
func ParseAgent(content []byte) (entity.AgentProfile, error) {
	normalized := bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(normalized, []byte("---\n")) {
		return entity.AgentProfile{}, ErrMissingFrontMatter
	}
	parts := bytes.SplitN(normalized[4:], []byte("\n---\n"), 2)
	if len(parts) < 2 {
		return entity.AgentProfile{}, ErrMalformedFrontMatter
	}

	var fm frontMatter
	if err := yaml.Unmarshal(parts[0], &fm); err != nil {
		return entity.AgentProfile{}, fmt.Errorf("prompts: parse front matter: %w", err)
	}
	if fm.Name == "" {
		return entity.AgentProfile{}, fmt.Errorf("%w: name is required", ErrMalformedFrontMatter)
	}

	tools := make([]entity.ToolName, 0, len(fm.Tools))
	for _, t := range fm.Tools {
		tools = append(tools, entity.ToolName(strings.TrimSpace(t)))
	}

	return entity.AgentProfile{
		Name:         entity.AgentName(fm.Name),
		Description:  fm.Description,
		SystemPrompt: strings.TrimSpace(string(parts[1])),
		AllowedTools: tools,
		MaxTurns:     fm.MaxTurns,
	}, nil
}

// LoadAgents parses every *.md file at the root of fsys, ordered by name.
func LoadAgents(fsys fs.FS) ([]entity.AgentProfile, error) {
	matches, err := fs.Glob(fsys, "*.md")
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)

	profiles := make([]entity.AgentProfile, 0, len(matches))
	for _, name := range matches {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		p, err := ParseAgent(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path.Base(name), err)
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// DefaultAgents returns the embedded agent definitions.
func DefaultAgents() ([]entity.AgentProfile, error) {
	sub, err := fs.Sub(agentFiles, "agents")
	if err != nil {
		return nil, err
	}
	return LoadAgents(sub)
}

// Agents returns the embedded definitions overlaid with those found in dir.
// Files in dir replace embedded agents of the same name.
func Agents(dir string) ([]entity.AgentProfile, error) {
	base, err := DefaultAgents()
	if err != nil {
		return nil, err
	}
	if dir == "" {
		return base, nil
	}

	overrides, err := LoadAgents(os.DirFS(dir))
	if err != nil {
		return nil, fmt.Errorf("load prompts from %s: %w", dir, err)
	}
	byName := make(map[entity.AgentName]entity.AgentProfile, len(base)+len(overrides))
	for _, p := range base {
		byName[p.Name] = p
	}
	for _, p := range overrides {
		byName[p.Name] = p
	}

	out := make([]entity.AgentProfile, 0, len(byName))
	for _, p := range byName {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
