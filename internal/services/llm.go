package services

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/api/googleapi"

	"github.com/novelterm/aetheria/pkg/chat"
)

// Tool names the remote model is constrained to. Anything else in a
// response is ignored by the dispatch layer.
const (
	ToolDiceRoll        = "dice-roll"
	ToolLoreUpdate      = "lore-update"
	ToolLocationsUpdate = "locations-update"
	ToolPeopleUpdate    = "people-update"
	ToolInventoryManage = "inventory-manage"
	ToolQuestManage     = "quest-manage"
	ToolWorldContextSet = "world-context-set"
)

// ToolCall is one structured invocation emitted by the model. Args carry no
// compile-time shape guarantee; callers must treat them as untrusted input.
type ToolCall struct {
	Name string
	Args map[string]any
}

// ToolResult is the lightweight acknowledgment returned to the model for one
// handled call.
type ToolResult struct {
	Name     string
	Response map[string]any
}

// ModelResponse is one upstream reply: free narrative text and/or zero or
// more tool invocations.
type ModelResponse struct {
	Text  string
	Calls []ToolCall
}

// ModelSession is one stateful conversation with the generative backend.
type ModelSession interface {
	// Send submits a user-visible message and returns the model's reply.
	Send(ctx context.Context, text string) (*ModelResponse, error)

	// SendToolResults returns a batch of tool acknowledgments to the model
	// and receives its continuation.
	SendToolResults(ctx context.Context, results []ToolResult) (*ModelResponse, error)
}

// ModelService creates narrator sessions against the generative backend.
type ModelService interface {
	// StartSession opens a fresh conversation with the system instruction
	// and the full tool registry installed.
	StartSession(ctx context.Context) (ModelSession, error)

	// ResumeSession opens a conversation primed with a saved transcript so
	// the model regains context without replaying the turns upstream.
	// System-role messages are local-only and filtered out.
	ResumeSession(ctx context.Context, history []chat.ChatMessage) (ModelSession, error)

	Close() error
}

// IsTransient reports whether an upstream error is a rate-limit or
// service-unavailable class fault worth retrying. Detection is by status
// code when available and by message content otherwise, mirroring how the
// backend surfaces quota errors.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == 429 || apiErr.Code == 503
	}
	msg := err.Error()
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "503") ||
		strings.Contains(msg, "quota") ||
		strings.Contains(msg, "rate limit")
}
