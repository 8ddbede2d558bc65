package core

import "strings"

// Conversation roles used in the loop transcript.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ToolCall is a model-emitted request to invoke a named external capability.
// Arguments is the serialized JSON argument object exactly as produced by the
// model (or re-serialized after free-text extraction).
type ToolCall struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	Arguments string `json:"arguments,omitempty"`
}

// ConversationMessage is one entry of the loop transcript. An ordered slice
// of messages forms the transcript; within one run it is append-only.
//
// ToolCall is set on assistant messages that request a tool invocation.
// ToolCallID correlates a tool-role observation with the originating call.
// ImageURL carries an optional image reference (https or data URL) for
// vision-capable agents.
type ConversationMessage struct {
	Role       string    `json:"role"`
	Content    string    `json:"content,omitempty"`
	ToolCall   *ToolCall `json:"tool_call,omitempty"`
	ToolCallID string    `json:"tool_call_id,omitempty"`
	ImageURL   string    `json:"image_url,omitempty"`
}

// NewSystemMessage builds a system-role transcript entry.
func NewSystemMessage(content string) ConversationMessage {
	return ConversationMessage{Role: RoleSystem, Content: content}
}

// NewUserMessage builds a user-role transcript entry.
func NewUserMessage(content string) ConversationMessage {
	return ConversationMessage{Role: RoleUser, Content: content}
}

// NewAssistantMessage builds a plain assistant-role transcript entry.
func NewAssistantMessage(content string) ConversationMessage {
	return ConversationMessage{Role: RoleAssistant, Content: content}
}

// NewToolCallMessage builds the assistant-role entry recording a tool request.
func NewToolCallMessage(call ToolCall) ConversationMessage {
	c := call
	return ConversationMessage{Role: RoleAssistant, ToolCall: &c}
}

// NewObservationMessage builds the tool-role entry feeding a tool result (or
// its error text) back to the model, correlated to the originating call.
func NewObservationMessage(callID, content string) ConversationMessage {
	return ConversationMessage{Role: RoleTool, Content: content, ToolCallID: callID}
}

// Transcript is the ordered conversation history of one loop run.
type Transcript []ConversationMessage

// Render flattens the transcript into a readable thought-process string for
// task logging.
func (t Transcript) Render() string {
	var b strings.Builder
	for i, m := range t {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(strings.ToUpper(m.Role))
		b.WriteString(": ")
		switch {
		case m.ToolCall != nil:
			b.WriteString(m.ToolCall.Name)
			if m.ToolCall.Arguments != "" {
				b.WriteString(" | ")
				b.WriteString(m.ToolCall.Arguments)
			}
		default:
			b.WriteString(m.Content)
		}
	}
	return b.String()
}
