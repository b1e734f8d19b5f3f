package domain

import "time"

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatSession holds one conversation thread. Context is the ordered message
// history handed back to the model on every turn.
type ChatSession struct {
	ID        string        `json:"id"`
	UserID    string        `json:"user_id"`
	Name      string        `json:"name"`
	Context   []ChatMessage `json:"context"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

type ChatMessage struct {
	Role       string            `json:"role"`
	Content    string            `json:"content"`
	ToolName   string            `json:"tool_name,omitempty"`
	ToolCallID string            `json:"tool_call_id,omitempty"`
	ToolCalls  []MessageToolCall `json:"tool_calls,omitempty"`
}

// MessageToolCall is a tool invocation recorded on an assistant message.
// Every tool-role message in the history answers one of these by id.
type MessageToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ChatTurnResult is what one processed user message produces.
type ChatTurnResult struct {
	Reply        string   `json:"reply"`
	ToolsInvoked []string `json:"tools_invoked,omitempty"`
}
