package prompts

import (
	"bytes"
	"sort"
	"text/template"

	"formfill-agent/internal/application/port/output"
)

type ToolInfo struct {
	Name        string
	Description string
}

type SystemPromptData struct {
	Tools []ToolInfo
}

// GenerateSystemPrompt renders baseTemplate with the tools of the registry,
// sorted by name so the prompt is stable across runs.
func GenerateSystemPrompt(baseTemplate string, tools output.ToolRegistry) (string, error) {
	defs := tools.Definitions()
	infos := make([]ToolInfo, 0, len(defs))

	for _, def := range defs {
		infos = append(infos, ToolInfo{
			Name:        string(def.Name),
			Description: def.Description,
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})

	tmpl, err := template.New("system").Option("missingkey=error").Parse(baseTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, SystemPromptData{Tools: infos}); err != nil {
		return "", err
	}

	return buf.String(), nil
}
