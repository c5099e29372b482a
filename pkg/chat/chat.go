package chat

import (
	"time"

	"github.com/google/uuid"
)

const (
	ChatRoleUser   = "user"   // Player input
	ChatRoleModel  = "model"  // Narrator
	ChatRoleSystem = "system" // Local-only annotations (rolls, change logs, errors)
)

const (
	RollOutcomeSuccess = "Success"
	RollOutcomeFailure = "Failure"
)

// ChatMessage is a single entry in the story transcript. The transcript is
// the sole record of the conversation and doubles as the resumable history
// for the remote model session.
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"` // "user", "model", "system"
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`

	// Roll annotation fields, set only on dice-check system messages.
	IsRoll      bool   `json:"is_roll,omitempty"`
	RollResult  int    `json:"roll_result,omitempty"`
	RollDC      int    `json:"roll_dc,omitempty"`
	RollOutcome string `json:"roll_outcome,omitempty"`
}

// NewMessage creates a transcript message with a fresh ID and timestamp.
func NewMessage(role, text string) ChatMessage {
	return ChatMessage{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		Timestamp: time.Now(),
	}
}

// NewRollMessage creates a system message annotated with a dice check.
func NewRollMessage(text string, result, dc int) ChatMessage {
	outcome := RollOutcomeFailure
	if result >= dc {
		outcome = RollOutcomeSuccess
	}
	msg := NewMessage(ChatRoleSystem, text)
	msg.IsRoll = true
	msg.RollResult = result
	msg.RollDC = dc
	msg.RollOutcome = outcome
	return msg
}

// FilterForResume returns the messages that should be replayed to the remote
// model when resuming a saved session. System messages are local bookkeeping
// and are never part of the model conversation.
func FilterForResume(messages []ChatMessage) []ChatMessage {
	filtered := make([]ChatMessage, 0, len(messages))
	for _, msg := range messages {
		if msg.Role == ChatRoleUser || msg.Role == ChatRoleModel {
			filtered = append(filtered, msg)
		}
	}
	return filtered
}
