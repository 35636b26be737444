package prompts

import (
	"context"
	"strings"
	"testing"

	"formfill-agent/internal/application/port/output"
	"formfill-agent/internal/domain/entity"
)

type mockTool struct {
	name        entity.ToolName
	description string
}

func (m *mockTool) Name() entity.ToolName              { return m.name }
func (m *mockTool) Description() string                { return m.description }
func (m *mockTool) Parameters() map[string]interface{} { return nil }
func (m *mockTool) Execute(ctx context.Context, arguments string) (string, error) {
	return "", nil
}

type mockToolRegistry struct {
	tools []output.ToolPort
}

func (r *mockToolRegistry) Register(tool output.ToolPort) {
	r.tools = append(r.tools, tool)
}

func (r *mockToolRegistry) Get(name entity.ToolName) (output.ToolPort, bool) {
	for _, tool := range r.tools {
		if tool.Name() == name {
			return tool, true
		}
	}
	return nil, false
}

func (r *mockToolRegistry) All() []output.ToolPort {
	return r.tools
}

func (r *mockToolRegistry) Definitions() []entity.ToolDefinition {
	defs := make([]entity.ToolDefinition, 0, len(r.tools))
	for _, tool := range r.tools {
		defs = append(defs, entity.ToolDefinition{Name: tool.Name(), Description: tool.Description()})
	}
	return defs
}

func TestGenerateSystemPrompt(t *testing.T) {
	registry := &mockToolRegistry{}
	registry.Register(&mockTool{name: entity.ToolBrowserNavigate, description: "Navigates browser to URL"})
	registry.Register(&mockTool{name: entity.ToolBrowserFill, description: "Fills input field with text"})

	template := `Test template

{{range .Tools -}}
- {{.Name}}: {{.Description}}
{{end}}`

	result, err := GenerateSystemPrompt(template, registry)
	if err != nil {
		t.Fatalf("GenerateSystemPrompt failed: %v", err)
	}

	if !strings.Contains(result, "Test template") {
		t.Error("Result should contain base template text")
	}

	fill := strings.Index(result, "- fill: Fills input field with text")
	navigate := strings.Index(result, "- navigate: Navigates browser to URL")
	if fill == -1 || navigate == -1 {
		t.Fatalf("Result should list both tools, got:\n%s", result)
	}
	if fill > navigate {
		t.Error("Tools should be sorted by name")
	}
}

func TestGenerateSystemPromptEmbeddedTemplate(t *testing.T) {
	registry := &mockToolRegistry{}
	registry.Register(&mockTool{name: entity.ToolBrowserPageInfo, description: "Returns URL and title"})

	result, err := GenerateSystemPrompt(SystemPromptTemplate, registry)
	if err != nil {
		t.Fatalf("GenerateSystemPrompt failed: %v", err)
	}

	if !strings.Contains(result, "- page_info: Returns URL and title") {
		t.Errorf("Embedded template should list tools, got:\n%s", result)
	}
}

func TestGenerateSystemPromptInvalidTemplate(t *testing.T) {
	registry := &mockToolRegistry{}
	registry.Register(&mockTool{name: entity.ToolBrowserClick, description: "Test tool"})

	_, err := GenerateSystemPrompt(`Test {{.InvalidField}}`, registry)
	if err == nil {
		t.Error("Expected error for invalid template, got nil")
	}
}

func TestLocatorPolicyLines(t *testing.T) {
	lines := LocatorPolicyLines()

	if len(lines) != 7 {
		t.Fatalf("Expected 7 policy lines, got %d: %q", len(lines), lines)
	}
	if !strings.HasPrefix(lines[0], "For each field below") {
		t.Errorf("Unexpected first line: %q", lines[0])
	}
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			t.Error("Policy must not contain blank lines")
		}
	}
}
