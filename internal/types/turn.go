package types

// Role classifies one unit of conversation history.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Turn is one message unit in a conversation window. A tool turn always
// carries the tool name; user/assistant turns never do.
type Turn struct {
	Role     Role
	Content  string
	ToolName string
}

func UserTurn(content string) Turn {
	return Turn{Role: RoleUser, Content: content}
}

func AssistantTurn(content string) Turn {
	return Turn{Role: RoleAssistant, Content: content}
}

func ToolTurn(toolName, content string) Turn {
	return Turn{Role: RoleTool, Content: content, ToolName: toolName}
}

// ToolInvocation is one resolved tool call made by the intent resolver
// during a single turn. Order across a turn is call order and is preserved
// end-to-end.
type ToolInvocation struct {
	ToolName  string
	Thought   string
	RawInput  string
	RawOutput string
}

// ToolAction is the wire shape of one entry in the response "type" list.
type ToolAction struct {
	Action string `json:"action"`
}

// ToolDetail is the wire shape of one entry in the response "functions" list.
type ToolDetail struct {
	Thought   string `json:"thought"`
	ToolName  string `json:"tool_name"`
	RawInput  string `json:"raw_input"`
	RawOutput string `json:"raw_output"`
}
