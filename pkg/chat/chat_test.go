package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage(t *testing.T) {
	msg := NewMessage(ChatRoleUser, "I draw my blade.")

	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, ChatRoleUser, msg.Role)
	assert.Equal(t, "I draw my blade.", msg.Text)
	assert.False(t, msg.Timestamp.IsZero())
	assert.False(t, msg.IsRoll)
}

func TestNewRollMessage(t *testing.T) {
	tests := []struct {
		name    string
		result  int
		dc      int
		outcome string
	}{
		{"above dc succeeds", 75, 40, RollOutcomeSuccess},
		{"exact dc succeeds", 40, 40, RollOutcomeSuccess},
		{"below dc fails", 39, 40, RollOutcomeFailure},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			msg := NewRollMessage("CHECK: Stealth [DC:40]", tc.result, tc.dc)

			assert.Equal(t, ChatRoleSystem, msg.Role)
			assert.True(t, msg.IsRoll)
			assert.Equal(t, tc.result, msg.RollResult)
			assert.Equal(t, tc.dc, msg.RollDC)
			assert.Equal(t, tc.outcome, msg.RollOutcome)
		})
	}
}

func TestFilterForResume(t *testing.T) {
	messages := []ChatMessage{
		NewMessage(ChatRoleUser, "I open the chest."),
		NewMessage(ChatRoleModel, "Inside, a rusted key."),
		NewMessage(ChatRoleSystem, ">> INVENTORY: 1 UPDATED"),
		NewRollMessage("CHECK: Lockpicking [DC:60]", 71, 60),
		NewMessage(ChatRoleModel, "The lock clicks open."),
	}

	filtered := FilterForResume(messages)

	require.Len(t, filtered, 3)
	assert.Equal(t, ChatRoleUser, filtered[0].Role)
	assert.Equal(t, ChatRoleModel, filtered[1].Role)
	assert.Equal(t, ChatRoleModel, filtered[2].Role)
}

func TestFilterForResume_Empty(t *testing.T) {
	assert.Empty(t, FilterForResume(nil))
	assert.Empty(t, FilterForResume([]ChatMessage{NewMessage(ChatRoleSystem, "local only")}))
}
