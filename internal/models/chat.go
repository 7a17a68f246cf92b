package models

import "fmt"

// Message roles accepted over the chat API.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents a single message in a conversation
type ChatMessage struct {
	Role    string `json:"role"`    // "user", "assistant", or "system"
	Content string `json:"content"` // The message content
}

// Validate checks that the message carries a known role.
func (m ChatMessage) Validate() error {
	switch m.Role {
	case RoleSystem, RoleUser, RoleAssistant:
		return nil
	default:
		return fmt.Errorf("unknown message role: %q", m.Role)
	}
}

// ValidateSession checks an incoming conversation payload. The session must
// end with a non-empty user message, which is the text the pipeline embeds.
func ValidateSession(messages []ChatMessage) error {
	if len(messages) == 0 {
		return fmt.Errorf("session is empty")
	}
	for i, m := range messages {
		if err := m.Validate(); err != nil {
			return fmt.Errorf("message %d: %w", i, err)
		}
	}
	last := messages[len(messages)-1]
	if last.Role != RoleUser {
		return fmt.Errorf("session must end with a user message, got %q", last.Role)
	}
	if last.Content == "" {
		return fmt.Errorf("latest user message is empty")
	}
	return nil
}

// ChatErrorResponse is the JSON body returned when a chat turn fails before
// any streamed output has been written.
type ChatErrorResponse struct {
	Message string `json:"message"` // Human-readable failure description
	Status  string `json:"status"`  // Always "error"
}

// BasicResponse is the generic status payload used by health endpoints.
type BasicResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}
