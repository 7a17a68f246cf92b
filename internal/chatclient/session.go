// Package chatclient implements the caller side of the streaming chat API:
// the ordered message ledger, the per-turn state machine, and the incremental
// reconstruction of the streamed assistant response.
package chatclient

import (
	"errors"

	"profadvisor/internal/models"
)

// TurnState tracks one send through its lifecycle.
type TurnState int

const (
	TurnIdle TurnState = iota
	TurnAwaitingFirstByte
	TurnStreaming
	TurnComplete
	TurnFailed
)

func (s TurnState) String() string {
	switch s {
	case TurnIdle:
		return "idle"
	case TurnAwaitingFirstByte:
		return "awaiting-first-byte"
	case TurnStreaming:
		return "streaming"
	case TurnComplete:
		return "complete"
	case TurnFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Sends are serialized: a new turn cannot start while a stream is in flight.
var (
	ErrTurnInFlight = errors.New("a turn is already streaming")
	ErrEmptyInput   = errors.New("input is empty")
)

// Session is the ordered conversation ledger. It is not safe for concurrent
// use; all mutation is expected to happen on a single event loop, with stream
// fragments delivered to that loop as they arrive.
type Session struct {
	messages []models.ChatMessage
	state    TurnState
}

// NewSession creates a session, optionally seeded with an assistant greeting.
func NewSession(greeting string) *Session {
	s := &Session{state: TurnIdle}
	if greeting != "" {
		s.messages = append(s.messages, models.ChatMessage{
			Role:    models.RoleAssistant,
			Content: greeting,
		})
	}
	return s
}

// Messages returns the current ledger. The returned slice is shared; callers
// must treat it as read-only.
func (s *Session) Messages() []models.ChatMessage {
	return s.messages
}

// State returns the current turn state.
func (s *Session) State() TurnState {
	return s.state
}

// InFlight reports whether a stream is currently open.
func (s *Session) InFlight() bool {
	return s.state == TurnAwaitingFirstByte || s.state == TurnStreaming
}

// Begin starts a turn: it appends the user message and then an empty
// assistant placeholder, and returns the outbound payload (the full session
// including the new user message, excluding the placeholder). Both appends
// happen before any network activity.
func (s *Session) Begin(input string) ([]models.ChatMessage, error) {
	if s.InFlight() {
		return nil, ErrTurnInFlight
	}
	if input == "" {
		return nil, ErrEmptyInput
	}

	s.messages = append(s.messages,
		models.ChatMessage{Role: models.RoleUser, Content: input},
		models.ChatMessage{Role: models.RoleAssistant, Content: ""},
	)
	s.state = TurnAwaitingFirstByte

	outbound := make([]models.ChatMessage, len(s.messages)-1)
	copy(outbound, s.messages[:len(s.messages)-1])
	return outbound, nil
}

// AppendFragment adds decoded stream text to the assistant placeholder, which
// is always the last message while a turn is in flight. Fragments never
// create or reorder messages.
func (s *Session) AppendFragment(fragment string) {
	if !s.InFlight() || fragment == "" {
		return
	}
	s.state = TurnStreaming
	s.messages[len(s.messages)-1].Content += fragment
}

// Complete marks the in-flight turn as finished after a clean stream close.
func (s *Session) Complete() {
	if s.InFlight() {
		s.state = TurnComplete
	}
}

// Fail marks the in-flight turn as failed. The placeholder keeps whatever
// partial text arrived, and an explicit error message is appended so the
// failure is visible in the conversation rather than a silent truncation.
func (s *Session) Fail(err error) {
	if !s.InFlight() {
		return
	}
	s.state = TurnFailed
	s.messages = append(s.messages, models.ChatMessage{
		Role:    models.RoleSystem,
		Content: "The assistant's response was interrupted: " + err.Error() + ". Please resend your message.",
	})
}
