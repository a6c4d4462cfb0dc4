// Package agents runs the multi-persona analysis pipeline over a parsed
// blood report.
package agents

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed agents.yaml
var agentsYAML []byte

// Definition is one persona in the pipeline, loaded from the embedded
// YAML file.
type Definition struct {
	Key       string `yaml:"key"`
	Title     string `yaml:"title"`
	Role      string `yaml:"role"`
	Goal      string `yaml:"goal"`
	Backstory string `yaml:"backstory"`
	Task      string `yaml:"task"`
}

type definitionFile struct {
	Agents []Definition `yaml:"agents"`
}

// LoadDefinitions parses the embedded persona file.
func LoadDefinitions() ([]Definition, error) {
	var f definitionFile
	if err := yaml.Unmarshal(agentsYAML, &f); err != nil {
		return nil, fmt.Errorf("parse agents yaml: %w", err)
	}
	if len(f.Agents) == 0 {
		return nil, fmt.Errorf("agents yaml defines no agents")
	}
	for i, d := range f.Agents {
		if d.Key == "" || d.Role == "" || d.Task == "" {
			return nil, fmt.Errorf("agent %d missing key, role, or task", i)
		}
	}
	return f.Agents, nil
}

// SystemPrompt renders the persona preamble sent as the system message.
func (d Definition) SystemPrompt() string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s.\n", d.Role)
	if d.Goal != "" {
		fmt.Fprintf(&b, "Your goal: %s.\n", strings.TrimSuffix(strings.TrimSpace(d.Goal), "."))
	}
	if d.Backstory != "" {
		b.WriteString(strings.TrimSpace(d.Backstory))
		b.WriteString("\n")
	}
	b.WriteString("Answer in plain language a patient can understand. Never present your output as a medical diagnosis.")
	return b.String()
}

// RenderTask substitutes the template placeholders in the task body.
func (d Definition) RenderTask(vars map[string]string) string {
	out := d.Task
	for key, val := range vars {
		if val == "" {
			val = "(none)"
		}
		out = strings.ReplaceAll(out, "{{"+key+"}}", val)
	}
	return strings.TrimSpace(out)
}
