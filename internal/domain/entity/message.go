package entity

// MessageRole is the author of one chat message in the agent loop.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleTool      MessageRole = "tool"
)

// Message is provider-neutral; LLM adapters convert it to their wire types.
type Message struct {
	Role       MessageRole
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string
	Name       string
}

func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// ToolResultMessage answers call with the observation the tool produced.
func ToolResultMessage(call ToolCall, observation string) Message {
	return Message{
		Role:       RoleTool,
		ToolCallID: call.ID,
		Name:       call.Name,
		Content:    observation,
	}
}

// IsFinal reports whether the model answered without requesting tools, which
// ends a browser agent run.
func (m Message) IsFinal() bool {
	return len(m.ToolCalls) == 0
}

// ToolCall is one function call requested by the model. Arguments is the raw
// JSON object the model produced.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

func (c ToolCall) Tool() ToolName {
	return ToolName(c.Name)
}

// ToolDefinition is what the model sees of a tool: Parameters is a JSON
// schema object.
type ToolDefinition struct {
	Name        ToolName
	Description string
	Parameters  map[string]any
}
