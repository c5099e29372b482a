package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novelterm/aetheria/internal/services"
	"github.com/novelterm/aetheria/pkg/chat"
	"github.com/novelterm/aetheria/pkg/state"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestGateway wires a gateway to a scripted session with sleeping
// disabled and a fixed d100 roll.
func newTestGateway(t *testing.T, session *services.MockModelSession) (*Gateway, *services.MockModelService) {
	t.Helper()
	svc := services.NewMockModelService(session)
	g := NewGateway(svc, testLogger())
	g.sleep = func(time.Duration) {}
	g.roll = func() int { return 57 }
	require.NoError(t, g.StartFresh(context.Background()))
	return g, svc
}

func TestSendTurn_TextOnly(t *testing.T) {
	session := services.Script(&services.ModelResponse{Text: "The gate creaks open."})
	g, _ := newTestGateway(t, session)

	result, err := g.SendTurn(context.Background(), "I push the gate.", PlayerTurnOptions())

	require.NoError(t, err)
	assert.Equal(t, "The gate creaks open.", result.Narrative)
	assert.False(t, result.HasUpdates())
	assert.Equal(t, []string{"I push the gate."}, session.SendCalls)
	assert.Empty(t, session.ToolResultsCalls)
}

func TestSendTurn_ToolLoop(t *testing.T) {
	session := services.Script(
		&services.ModelResponse{Calls: []services.ToolCall{
			{Name: services.ToolDiceRoll, Args: map[string]any{"reason": "Climb the wall", "difficulty": float64(40)}},
			{Name: services.ToolLoreUpdate, Args: map[string]any{"entries": []any{
				map[string]any{"title": "The Wall of Gullport", "type": "Location", "description": "Older than the city."},
			}}},
		}},
		&services.ModelResponse{Text: "You haul yourself over the top."},
	)
	g, _ := newTestGateway(t, session)

	result, err := g.SendTurn(context.Background(), "I climb the wall.", PlayerTurnOptions())

	require.NoError(t, err)
	assert.Equal(t, "You haul yourself over the top.", result.Narrative)

	// Both calls acknowledged in one batched follow-up.
	require.Len(t, session.ToolResultsCalls, 1)
	acks := session.ToolResultsCalls[0]
	require.Len(t, acks, 2)
	assert.Equal(t, services.ToolDiceRoll, acks[0].Name)
	assert.Equal(t, 57, acks[0].Response["result"])
	assert.Equal(t, services.ToolLoreUpdate, acks[1].Name)

	require.Len(t, result.Rolls, 1)
	assert.Equal(t, "Climb the wall", result.Rolls[0].Reason)
	assert.Equal(t, 57, result.Rolls[0].Result)
	assert.Equal(t, 40, result.Rolls[0].DC)

	require.Len(t, result.Lore, 1)
	assert.Equal(t, "The Wall of Gullport", result.Lore[0].Title)
	assert.True(t, result.Lore[0].Known)
	assert.NotEmpty(t, result.Lore[0].ID)
}

func TestSendTurn_MultipleRounds(t *testing.T) {
	session := services.Script(
		&services.ModelResponse{Calls: []services.ToolCall{
			{Name: services.ToolQuestManage, Args: map[string]any{"operations": []any{
				map[string]any{"action": "start", "questTitle": "The Salt Debt"},
			}}},
		}},
		&services.ModelResponse{Calls: []services.ToolCall{
			{Name: services.ToolInventoryManage, Args: map[string]any{"operations": []any{
				map[string]any{"action": "add", "itemName": "Ledger", "itemDetails": map[string]any{"type": "Key Item"}},
			}}},
		}},
		&services.ModelResponse{Text: "Maren hands you her ledger."},
	)
	g, _ := newTestGateway(t, session)

	result, err := g.SendTurn(context.Background(), "I accept the job.", PlayerTurnOptions())

	require.NoError(t, err)
	assert.Len(t, session.ToolResultsCalls, 2)
	require.Len(t, result.QuestOps, 1)
	assert.Equal(t, state.QuestActionStart, result.QuestOps[0].Action)
	require.Len(t, result.InventoryOps, 1)
	assert.Equal(t, "Ledger", result.InventoryOps[0].ItemName)
	require.NotNil(t, result.InventoryOps[0].Details)
	assert.Equal(t, state.ItemKeyItem, result.InventoryOps[0].Details.Type)
}

func TestSendTurn_LocationsDualWrite(t *testing.T) {
	session := services.Script(
		&services.ModelResponse{Calls: []services.ToolCall{
			{Name: services.ToolLocationsUpdate, Args: map[string]any{"locations": []any{
				map[string]any{"name": "The Hollow Fane", "type": "Temple", "x": float64(-12), "y": float64(40), "description": "A sunken shrine."},
			}}},
		}},
		&services.ModelResponse{Text: "The fane looms ahead."},
	)
	g, _ := newTestGateway(t, session)

	result, err := g.SendTurn(context.Background(), "I approach the fane.", PlayerTurnOptions())

	require.NoError(t, err)
	require.Len(t, result.Locations, 1)
	assert.Equal(t, "The Hollow Fane", result.Locations[0].Name)
	assert.Equal(t, -12, result.Locations[0].X)

	// Every map node is mirrored into the journal.
	require.Len(t, result.Lore, 1)
	assert.Equal(t, "The Hollow Fane", result.Lore[0].Title)
	assert.Equal(t, state.LoreLocation, result.Lore[0].Type)
	assert.Contains(t, result.Lore[0].Description, "Temple")
	assert.Contains(t, result.Lore[0].Description, "A sunken shrine.")
	assert.True(t, result.Lore[0].Known)
}

func TestSendTurn_SimulationGating(t *testing.T) {
	session := services.Script(
		&services.ModelResponse{Calls: []services.ToolCall{
			{Name: services.ToolDiceRoll, Args: map[string]any{"reason": "Ambush", "difficulty": float64(30)}},
			{Name: services.ToolWorldContextSet, Args: map[string]any{"worldName": "Aetheria"}},
			{Name: services.ToolLoreUpdate, Args: map[string]any{"entries": []any{
				map[string]any{"title": "Night Raids", "type": "Other", "description": "Someone is burning granaries."},
			}}},
		}},
		&services.ModelResponse{Text: "Far off, smoke rises."},
	)
	g, _ := newTestGateway(t, session)

	result, err := g.SendTurn(context.Background(), "simulate", TurnOptions{})

	require.NoError(t, err)
	// Gated channels are dropped from the result but still acknowledged.
	assert.Empty(t, result.Rolls)
	assert.Empty(t, result.WorldName)
	assert.Len(t, result.Lore, 1)

	require.Len(t, session.ToolResultsCalls, 1)
	assert.Len(t, session.ToolResultsCalls[0], 3)
}

func TestSendTurn_UnrecognizedToolIgnored(t *testing.T) {
	session := services.Script(
		&services.ModelResponse{Calls: []services.ToolCall{
			{Name: "weather-control", Args: map[string]any{}},
			{Name: services.ToolWorldContextSet, Args: map[string]any{"worldName": "Aetheria"}},
		}},
		&services.ModelResponse{Text: "Done."},
	)
	g, _ := newTestGateway(t, session)

	result, err := g.SendTurn(context.Background(), "hello", PlayerTurnOptions())

	require.NoError(t, err)
	assert.Equal(t, "Aetheria", result.WorldName)
	// Only the recognized call is acknowledged.
	require.Len(t, session.ToolResultsCalls, 1)
	require.Len(t, session.ToolResultsCalls[0], 1)
	assert.Equal(t, services.ToolWorldContextSet, session.ToolResultsCalls[0][0].Name)
}

func TestSendTurn_AllCallsUnrecognized(t *testing.T) {
	session := services.Script(
		&services.ModelResponse{
			Text: "The wind shifts.",
			Calls: []services.ToolCall{
				{Name: "weather-control", Args: map[string]any{}},
				{Name: "npc-teleport", Args: map[string]any{}},
			},
		},
	)
	g, _ := newTestGateway(t, session)

	result, err := g.SendTurn(context.Background(), "hello", PlayerTurnOptions())

	// No recognized call means no follow-up at all; the reply is final.
	require.NoError(t, err)
	assert.Equal(t, "The wind shifts.", result.Narrative)
	assert.Empty(t, session.ToolResultsCalls)
	assert.Len(t, session.SendCalls, 1)
}

func TestSendTurn_MalformedArgs(t *testing.T) {
	session := services.Script(
		&services.ModelResponse{Calls: []services.ToolCall{
			{Name: services.ToolLoreUpdate, Args: map[string]any{"entries": "not a list"}},
		}},
	)
	g, _ := newTestGateway(t, session)

	_, err := g.SendTurn(context.Background(), "hello", PlayerTurnOptions())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedToolArgs)
}

func TestSendTurn_ToolLoopBound(t *testing.T) {
	looping := &services.ModelResponse{Calls: []services.ToolCall{
		{Name: services.ToolWorldContextSet, Args: map[string]any{"worldName": "Aetheria"}},
	}}
	session := services.Script(looping, looping, looping, looping, looping)
	g, _ := newTestGateway(t, session)
	g.WithMaxToolRounds(3)

	_, err := g.SendTurn(context.Background(), "hello", PlayerTurnOptions())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrToolLoopExceeded)
}

func TestSendTurn_RetriesTransientFault(t *testing.T) {
	session := &services.MockModelSession{
		Responses: []*services.ModelResponse{
			nil,
			{Text: "Back online."},
		},
		Errors: []error{errors.New("googleapi: Error 429: quota exceeded"), nil},
	}
	g, _ := newTestGateway(t, session)

	var slept []time.Duration
	g.sleep = func(d time.Duration) { slept = append(slept, d) }
	g.WithRetry(3, 2*time.Second)

	result, err := g.SendTurn(context.Background(), "hello", PlayerTurnOptions())

	require.NoError(t, err)
	assert.Equal(t, "Back online.", result.Narrative)
	require.Len(t, slept, 1)
	assert.Equal(t, 2*time.Second, slept[0])
}

func TestSendTurn_BackoffDoubles(t *testing.T) {
	transient := errors.New("rate limit hit")
	session := &services.MockModelSession{
		Responses: []*services.ModelResponse{nil, nil, {Text: "Finally."}},
		Errors:    []error{transient, transient, nil},
	}
	g, _ := newTestGateway(t, session)

	var slept []time.Duration
	g.sleep = func(d time.Duration) { slept = append(slept, d) }
	g.WithRetry(3, time.Second)

	_, err := g.SendTurn(context.Background(), "hello", PlayerTurnOptions())

	require.NoError(t, err)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, slept)
}

func TestSendTurn_RetriesExhausted(t *testing.T) {
	transient := errors.New("503 service unavailable")
	session := &services.MockModelSession{
		Errors: []error{transient, transient, transient, transient},
	}
	g, _ := newTestGateway(t, session)
	g.WithRetry(2, time.Millisecond)

	_, err := g.SendTurn(context.Background(), "hello", PlayerTurnOptions())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstream)
	// Initial attempt plus two retries.
	assert.Len(t, session.SendCalls, 3)
}

func TestSendTurn_TerminalFaultNotRetried(t *testing.T) {
	session := &services.MockModelSession{
		Errors: []error{errors.New("invalid API key")},
	}
	g, _ := newTestGateway(t, session)

	var sleeps int
	g.sleep = func(time.Duration) { sleeps++ }

	_, err := g.SendTurn(context.Background(), "hello", PlayerTurnOptions())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Zero(t, sleeps)
	assert.Len(t, session.SendCalls, 1)
}

func TestSendTurn_AutoStartsSession(t *testing.T) {
	session := services.Script(&services.ModelResponse{Text: "Hello."})
	svc := services.NewMockModelService(session)
	g := NewGateway(svc, testLogger())
	g.sleep = func(time.Duration) {}

	_, err := g.SendTurn(context.Background(), "hi", PlayerTurnOptions())

	require.NoError(t, err)
	assert.Equal(t, 1, svc.StartSessionCalls)
}

func TestStartFresh_ServiceError(t *testing.T) {
	svc := services.NewMockModelService(nil)
	svc.StartSessionFunc = func(ctx context.Context) (services.ModelSession, error) {
		return nil, errors.New("no network")
	}
	g := NewGateway(svc, testLogger())

	err := g.StartFresh(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSession)
}

func TestResume_PassesHistory(t *testing.T) {
	session := services.Script()
	svc := services.NewMockModelService(session)
	g := NewGateway(svc, testLogger())

	msgs := []chat.ChatMessage{
		chat.NewMessage(chat.ChatRoleUser, "I look around."),
		chat.NewMessage(chat.ChatRoleModel, "A quiet harbor town."),
	}
	require.NoError(t, g.Resume(context.Background(), msgs))
	require.Len(t, svc.ResumeSessionCalls, 1)
	assert.Equal(t, msgs, svc.ResumeSessionCalls[0])
}
