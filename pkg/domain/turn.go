package domain

// Role identifies the author of a turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether the role is one of the three transcript roles.
// Provider-internal wire roles (e.g. "tool") never enter the transcript.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// Turn is one element of a conversation: who said it and what was said.
// The JSON shape matches the chat-completion wire format.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
