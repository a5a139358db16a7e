package chat

import "time"

// Role identifies who produced a turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
	RoleTool  Role = "tool"
)

// ToolCall is a tool invocation requested by the agent.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Turn is one entry of a session history.
type Turn struct {
	ID         string     `json:"id"`
	SessionKey string     `json:"sessionKey"`
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolName   string     `json:"toolName,omitempty"`
	ToolCallID string     `json:"toolCallId,omitempty"`
	ToolCalls  []ToolCall `json:"toolCalls,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}
