package state

import (
	"time"

	"github.com/google/uuid"

	"github.com/novelterm/aetheria/pkg/chat"
)

// Stage is the lifecycle phase of a session.
type Stage string

const (
	StageLoading  Stage = "loading"
	StagePrologue Stage = "prologue"
	StageCreation Stage = "creation"
	StagePlaying  Stage = "playing"
)

// Character is the player's sheet. Immutable once play begins.
type Character struct {
	Name       string    `json:"name"`
	Race       string    `json:"race"`
	Occupation string    `json:"occupation"`
	Background string    `json:"background"`
	Height     string    `json:"height"`
	Build      string    `json:"build"`
	Strengths  [3]string `json:"strengths"`
	Weakness   string    `json:"weakness"`
}

// WorldStatus holds the transient footer-derived fields. Fields are partial
// and overwritten incrementally; an empty field means "not reported yet".
type WorldStatus struct {
	WorldName string `json:"world_name,omitempty"`
	Condition string `json:"condition,omitempty"`
	Time      string `json:"time,omitempty"`
}

// Session is the persisted aggregate for one playthrough: the character
// sheet, the transcript, the five entity collections and the transient
// world status.
type Session struct {
	ID        uuid.UUID          `json:"id"`
	Stage     Stage              `json:"stage"`
	Character *Character         `json:"character,omitempty"`
	Messages  []chat.ChatMessage `json:"messages"`
	Lore      []LoreEntry        `json:"lore,omitempty"`
	Locations []LocationNode     `json:"locations,omitempty"`
	NPCs      []Npc              `json:"npcs,omitempty"`
	Inventory []Item             `json:"inventory,omitempty"`
	Quests    []Quest            `json:"quests,omitempty"`
	Status    WorldStatus        `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// NewSession creates an empty session in the loading stage.
func NewSession() *Session {
	return &Session{
		ID:        uuid.New(),
		Stage:     StageLoading,
		Messages:  make([]chat.ChatMessage, 0),
		CreatedAt: time.Now(),
	}
}

// Append adds a message to the transcript.
func (s *Session) Append(msg chat.ChatMessage) {
	s.Messages = append(s.Messages, msg)
}

// History returns the transcript entries that form the resumable model
// conversation (system messages excluded).
func (s *Session) History() []chat.ChatMessage {
	return chat.FilterForResume(s.Messages)
}

// ApplyStatus folds the non-empty fields of a parsed footer into the
// session's transient status.
func (s *Session) ApplyStatus(ws WorldStatus) {
	if ws.WorldName != "" {
		s.Status.WorldName = ws.WorldName
	}
	if ws.Condition != "" {
		s.Status.Condition = ws.Condition
	}
	if ws.Time != "" {
		s.Status.Time = ws.Time
	}
}
