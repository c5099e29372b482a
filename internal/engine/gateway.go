package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/novelterm/aetheria/internal/services"
	"github.com/novelterm/aetheria/pkg/chat"
	"github.com/novelterm/aetheria/pkg/state"
)

const (
	DefaultRetryMax      = 3
	DefaultRetryDelay    = 2 * time.Second
	DefaultMaxToolRounds = 8
)

// TurnOptions gates which side-effect channels a call may surface.
// Simulation turns do not re-roll dice or rename the world; a disallowed
// channel is still acknowledged to the model but dropped from the result.
type TurnOptions struct {
	AllowDice         bool
	AllowWorldContext bool
}

// PlayerTurnOptions is the full channel set used for direct player actions.
func PlayerTurnOptions() TurnOptions {
	return TurnOptions{AllowDice: true, AllowWorldContext: true}
}

// DiceRoll is one resolved d100 check.
type DiceRoll struct {
	Reason string
	Result int
	DC     int
}

// TurnResult is everything one gateway call produced: the final narrative
// plus the per-collection batches the tool invocations carried, ready for
// the reconciler. Batches are in invocation order.
type TurnResult struct {
	Narrative    string
	Lore         []state.LoreEntry
	Locations    []state.LocationNode
	NPCs         []state.Npc
	InventoryOps []state.ItemOp
	QuestOps     []state.QuestOp
	Rolls        []DiceRoll
	WorldName    string
}

// HasUpdates reports whether any collection channel fired.
func (r *TurnResult) HasUpdates() bool {
	return len(r.Lore) > 0 || len(r.Locations) > 0 || len(r.NPCs) > 0 ||
		len(r.InventoryOps) > 0 || len(r.QuestOps) > 0
}

// Gateway owns the conversation with the generative backend: session
// lifecycle, the tool-dispatch loop, and retry of transient faults.
type Gateway struct {
	svc     services.ModelService
	session services.ModelSession
	logger  *slog.Logger

	retryMax      int
	retryDelay    time.Duration
	maxToolRounds int

	// Injectable for tests.
	sleep func(time.Duration)
	roll  func() int
}

// NewGateway creates a gateway with default tuning.
func NewGateway(svc services.ModelService, logger *slog.Logger) *Gateway {
	return &Gateway{
		svc:           svc,
		logger:        logger,
		retryMax:      DefaultRetryMax,
		retryDelay:    DefaultRetryDelay,
		maxToolRounds: DefaultMaxToolRounds,
		sleep:         time.Sleep,
		roll:          func() int { return rand.IntN(100) + 1 },
	}
}

// WithRetry sets the transient-fault retry budget and initial delay.
// Returns the Gateway for method chaining.
func (g *Gateway) WithRetry(max int, delay time.Duration) *Gateway {
	g.retryMax = max
	g.retryDelay = delay
	return g
}

// WithMaxToolRounds bounds the tool-dispatch loop per turn. Zero disables
// the bound.
func (g *Gateway) WithMaxToolRounds(n int) *Gateway {
	g.maxToolRounds = n
	return g
}

// StartFresh opens a new model session with the fixed system instruction
// and tool registry.
func (g *Gateway) StartFresh(ctx context.Context) error {
	session, err := g.svc.StartSession(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSession, err)
	}
	g.session = session
	return nil
}

// Resume opens a model session primed with a saved transcript.
func (g *Gateway) Resume(ctx context.Context, history []chat.ChatMessage) error {
	session, err := g.svc.ResumeSession(ctx, history)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSession, err)
	}
	g.session = session
	return nil
}

// SendTurn submits one message and drives the tool-dispatch loop until the
// model responds with narrative only. Every invocation in a response is
// handled exactly once and acknowledged; acknowledgments are returned to
// the model as one batched follow-up.
func (g *Gateway) SendTurn(ctx context.Context, text string, opts TurnOptions) (*TurnResult, error) {
	if g.session == nil {
		if err := g.StartFresh(ctx); err != nil {
			return nil, err
		}
	}

	resp, err := g.callWithRetry(ctx, func() (*services.ModelResponse, error) {
		return g.session.Send(ctx, text)
	})
	if err != nil {
		return nil, err
	}

	result := &TurnResult{}
	rounds := 0
	for len(resp.Calls) > 0 {
		rounds++
		if g.maxToolRounds > 0 && rounds > g.maxToolRounds {
			return nil, fmt.Errorf("%w: %d rounds", ErrToolLoopExceeded, rounds)
		}

		acks := make([]services.ToolResult, 0, len(resp.Calls))
		for _, call := range resp.Calls {
			ack, err := g.dispatch(call, opts, result)
			if err != nil {
				return nil, err
			}
			if ack == nil {
				// Unrecognized tool name: no handler, no result.
				g.logger.Warn("Ignoring unrecognized tool call", "tool", call.Name)
				continue
			}
			acks = append(acks, *ack)
		}

		// Every call was unrecognized: nothing to send back. An empty
		// follow-up is an invalid request upstream, so the reply stands as
		// final.
		if len(acks) == 0 {
			break
		}

		resp, err = g.callWithRetry(ctx, func() (*services.ModelResponse, error) {
			return g.session.SendToolResults(ctx, acks)
		})
		if err != nil {
			return nil, err
		}
	}

	result.Narrative = resp.Text
	return result, nil
}

// dispatch executes the handler for one tool invocation, folding its output
// into the turn result, and returns the acknowledgment for the model. A nil
// acknowledgment (with nil error) marks an unrecognized tool.
func (g *Gateway) dispatch(call services.ToolCall, opts TurnOptions, result *TurnResult) (*services.ToolResult, error) {
	switch call.Name {
	case services.ToolDiceRoll:
		var args struct {
			Reason     string `json:"reason"`
			Difficulty int    `json:"difficulty"`
		}
		if err := decodeArgs(call.Name, call.Args, &args); err != nil {
			return nil, err
		}
		roll := g.roll()
		outcome := chat.RollOutcomeFailure
		if roll >= args.Difficulty {
			outcome = chat.RollOutcomeSuccess
		}
		if opts.AllowDice {
			result.Rolls = append(result.Rolls, DiceRoll{Reason: args.Reason, Result: roll, DC: args.Difficulty})
		}
		return ack(call.Name, map[string]any{"result": roll, "outcome": outcome}), nil

	case services.ToolLoreUpdate:
		var args struct {
			Entries []state.LoreEntry `json:"entries"`
		}
		if err := decodeArgs(call.Name, call.Args, &args); err != nil {
			return nil, err
		}
		result.Lore = append(result.Lore, tagLore(args.Entries)...)
		return ack(call.Name, map[string]any{"status": "journal_updated"}), nil

	case services.ToolLocationsUpdate:
		var args struct {
			Locations []state.LocationNode `json:"locations"`
		}
		if err := decodeArgs(call.Name, call.Args, &args); err != nil {
			return nil, err
		}
		result.Locations = append(result.Locations, args.Locations...)
		// Every map node is mirrored into the journal as a Location entry.
		mirrored := make([]state.LoreEntry, 0, len(args.Locations))
		for _, loc := range args.Locations {
			mirrored = append(mirrored, state.LoreEntry{
				Title:       loc.Name,
				Type:        state.LoreLocation,
				Description: fmt.Sprintf("[%s] %s", loc.Type, loc.Description),
			})
		}
		result.Lore = append(result.Lore, tagLore(mirrored)...)
		return ack(call.Name, map[string]any{"status": "map_updated"}), nil

	case services.ToolPeopleUpdate:
		var args struct {
			NPCs []state.Npc `json:"npcs"`
		}
		if err := decodeArgs(call.Name, call.Args, &args); err != nil {
			return nil, err
		}
		for i := range args.NPCs {
			args.NPCs[i].ID = uuid.NewString()
		}
		result.NPCs = append(result.NPCs, args.NPCs...)
		return ack(call.Name, map[string]any{"status": "dossier_updated"}), nil

	case services.ToolInventoryManage:
		var args struct {
			Operations []state.ItemOp `json:"operations"`
		}
		if err := decodeArgs(call.Name, call.Args, &args); err != nil {
			return nil, err
		}
		result.InventoryOps = append(result.InventoryOps, args.Operations...)
		return ack(call.Name, map[string]any{"status": "inventory_updated"}), nil

	case services.ToolQuestManage:
		var args struct {
			Operations []state.QuestOp `json:"operations"`
		}
		if err := decodeArgs(call.Name, call.Args, &args); err != nil {
			return nil, err
		}
		result.QuestOps = append(result.QuestOps, args.Operations...)
		return ack(call.Name, map[string]any{"status": "quests_updated"}), nil

	case services.ToolWorldContextSet:
		var args struct {
			WorldName string `json:"worldName"`
		}
		if err := decodeArgs(call.Name, call.Args, &args); err != nil {
			return nil, err
		}
		if opts.AllowWorldContext {
			result.WorldName = args.WorldName
		}
		return ack(call.Name, map[string]any{"status": "world_name_set"}), nil
	}

	return nil, nil
}

// callWithRetry wraps a remote call in bounded exponential backoff.
// Transient faults (rate limit, service unavailable) are retried with a
// doubling delay; anything else propagates immediately as terminal.
func (g *Gateway) callWithRetry(ctx context.Context, fn func() (*services.ModelResponse, error)) (*services.ModelResponse, error) {
	delay := g.retryDelay
	for attempt := 0; ; attempt++ {
		resp, err := fn()
		if err == nil {
			return resp, nil
		}
		if !services.IsTransient(err) || attempt >= g.retryMax {
			return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		g.logger.Warn("Transient upstream fault, retrying",
			"error", err,
			"delay", delay,
			"retries_left", g.retryMax-attempt)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrUpstream, ctx.Err())
		default:
		}
		g.sleep(delay)
		delay *= 2
	}
}

// decodeArgs round-trips untyped tool arguments through JSON into the
// declared shape. The model's schemas are a contract surface, not an
// enforced guarantee, so every handler boundary validates here.
func decodeArgs(tool string, args map[string]any, v any) error {
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedToolArgs, tool, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedToolArgs, tool, err)
	}
	return nil
}

// tagLore assigns fresh ids and marks entries known.
func tagLore(entries []state.LoreEntry) []state.LoreEntry {
	for i := range entries {
		entries[i].ID = uuid.NewString()
		entries[i].Known = true
	}
	return entries
}

func ack(name string, response map[string]any) *services.ToolResult {
	return &services.ToolResult{Name: name, Response: response}
}
