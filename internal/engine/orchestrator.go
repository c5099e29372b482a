package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/novelterm/aetheria/internal/logger"
	"github.com/novelterm/aetheria/internal/storage"
	"github.com/novelterm/aetheria/pkg/chat"
	"github.com/novelterm/aetheria/pkg/prompts"
	"github.com/novelterm/aetheria/pkg/state"
)

const DefaultSimCooldown = 2 * time.Second

// upstreamErrorText is appended to the transcript when a turn dies on the
// wire, so the player sees the failure in-world.
const upstreamErrorText = "SIGNAL LOST: the narrator's voice fades mid-sentence. Try again."

// changeCounts tracks how many records each collection channel touched
// during one full turn, feeding the player-visible change summary.
type changeCounts struct {
	Lore      int
	Locations int
	NPCs      int
	Inventory int
	Quests    int
}

func (c *changeCounts) add(res *TurnResult) {
	c.Lore += len(res.Lore)
	c.Locations += len(res.Locations)
	c.NPCs += len(res.NPCs)
	c.Inventory += len(res.InventoryOps)
	c.Quests += len(res.QuestOps)
}

func (c *changeCounts) any() bool {
	return c.Lore > 0 || c.Locations > 0 || c.NPCs > 0 || c.Inventory > 0 || c.Quests > 0
}

func (c *changeCounts) summary() string {
	var lines []string
	if c.Lore > 0 {
		lines = append(lines, fmt.Sprintf(">> JOURNAL: %d UPDATED", c.Lore))
	}
	if c.Locations > 0 {
		lines = append(lines, fmt.Sprintf(">> MAP: %d UPDATED", c.Locations))
	}
	if c.NPCs > 0 {
		lines = append(lines, fmt.Sprintf(">> DOSSIER: %d UPDATED", c.NPCs))
	}
	if c.Inventory > 0 {
		lines = append(lines, fmt.Sprintf(">> INVENTORY: %d UPDATED", c.Inventory))
	}
	if c.Quests > 0 {
		lines = append(lines, fmt.Sprintf(">> MISSIONS: %d UPDATED", c.Quests))
	}
	return strings.Join(lines, "\n")
}

// NarrativeFilter post-processes narrator text before it reaches the
// transcript (content rating).
type NarrativeFilter interface {
	Apply(text string) string
}

// Orchestrator drives full turns against a single session: the player
// action call, the throttled world-simulation call, reconciliation, and
// persistence after every state-affecting step.
type Orchestrator struct {
	gateway *Gateway
	store   storage.Storage
	session *state.Session
	logger  *slog.Logger

	cooldown time.Duration
	filter   NarrativeFilter

	// Injectable for tests.
	sleep func(time.Duration)
}

// NewOrchestrator creates an orchestrator over an existing session state.
func NewOrchestrator(gateway *Gateway, store storage.Storage, session *state.Session, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		gateway:  gateway,
		store:    store,
		session:  session,
		logger:   logger,
		cooldown: DefaultSimCooldown,
		sleep:    time.Sleep,
	}
}

// WithCooldown sets the throttle between the action call and the
// simulation call. Both count against upstream rate limits, so spacing is
// mandatory. Returns the Orchestrator for method chaining.
func (o *Orchestrator) WithCooldown(d time.Duration) *Orchestrator {
	o.cooldown = d
	return o
}

// WithFilter sets the narrative content filter. Returns the Orchestrator
// for method chaining.
func (o *Orchestrator) WithFilter(f NarrativeFilter) *Orchestrator {
	o.filter = f
	return o
}

// Session returns the live session state. Presentation code must treat it
// as a read-only snapshot.
func (o *Orchestrator) Session() *state.Session {
	return o.session
}

// InitializeWorld seeds a brand-new world: a fresh model session, one
// tools-only call populating the collections and the world name, then one
// call producing the titled opening narrative. The session lands in the
// prologue stage.
func (o *Orchestrator) InitializeWorld(ctx context.Context) error {
	if err := o.gateway.StartFresh(ctx); err != nil {
		return err
	}

	res, err := o.gateway.SendTurn(ctx, prompts.WorldDataPrompt, PlayerTurnOptions())
	if err != nil {
		return fmt.Errorf("world data generation failed: %w", err)
	}
	o.applyResult(res, &changeCounts{})

	o.sleep(o.cooldown)

	res, err = o.gateway.SendTurn(ctx, prompts.ProloguePrompt, PlayerTurnOptions())
	if err != nil {
		return fmt.Errorf("prologue generation failed: %w", err)
	}
	o.applyResult(res, &changeCounts{})

	o.session.Append(chat.NewMessage(chat.ChatRoleModel, res.Narrative))
	o.session.Stage = state.StagePrologue
	o.persist(ctx)
	return nil
}

// ResumeFromSave reopens the model session from the saved transcript.
func (o *Orchestrator) ResumeFromSave(ctx context.Context) error {
	return o.gateway.Resume(ctx, o.session.History())
}

// BeginStory records the completed character sheet, moves the session into
// play, and runs the opening turn.
func (o *Orchestrator) BeginStory(ctx context.Context, character state.Character) {
	o.session.Character = &character
	o.session.Stage = state.StagePlaying
	o.persist(ctx)
	o.PlayTurn(ctx, prompts.CharacterIntro(character))
}

// PlayTurn drives one full player turn. It never returns an error: internal
// failures are logged and surfaced as transcript system messages, leaving
// state as of the last successful step.
//
// A failure in the action call aborts the turn; a failure in the simulation
// call drops only the simulation.
func (o *Orchestrator) PlayTurn(ctx context.Context, userText string) {
	counts := &changeCounts{}

	// The player's message lands in the transcript before the outcome is
	// known.
	o.session.Append(chat.NewMessage(chat.ChatRoleUser, userText))
	o.persist(ctx)

	res, err := o.gateway.SendTurn(ctx, userText, PlayerTurnOptions())
	if err != nil {
		logger.WithError(o.logger, err).Error("Player action call failed")
		o.session.Append(chat.NewMessage(chat.ChatRoleSystem, upstreamErrorText))
		o.persist(ctx)
		return
	}

	o.applyResult(res, counts)
	o.session.Append(chat.NewMessage(chat.ChatRoleModel, o.filterText(res.Narrative)))
	o.session.ApplyStatus(state.ParseFooter(res.Narrative))
	o.persist(ctx)

	// Two upstream calls per turn; spacing avoids the rate limiter.
	o.sleep(o.cooldown)

	simRes, err := o.gateway.SendTurn(ctx, prompts.SimulationPrompt, TurnOptions{})
	if err != nil {
		// The narrative is already in; losing the background tick is fine.
		logger.WithError(o.logger, err).Warn("World simulation call failed")
	} else {
		o.applyResult(simRes, counts)
		simText := strings.TrimSpace(simRes.Narrative)
		if simText != "" && !strings.Contains(simText, state.StateMarker) {
			// Perceptible background events read as asides.
			o.session.Append(chat.NewMessage(chat.ChatRoleModel, "*"+o.filterText(simText)+"*"))
		}
	}

	if counts.any() {
		o.session.Append(chat.NewMessage(chat.ChatRoleSystem, counts.summary()))
	}
	o.persist(ctx)
}

// applyResult folds a gateway result into the session through the pure
// merge functions and appends roll annotations to the transcript.
func (o *Orchestrator) applyResult(res *TurnResult, counts *changeCounts) {
	s := o.session
	s.Lore = state.MergeLore(s.Lore, res.Lore)
	s.Locations = state.MergeLocations(s.Locations, res.Locations)
	s.NPCs = state.MergeNPCs(s.NPCs, res.NPCs)
	s.Inventory = state.ApplyInventoryOps(s.Inventory, res.InventoryOps)
	s.Quests = state.ApplyQuestOps(s.Quests, res.QuestOps)
	if res.WorldName != "" {
		s.Status.WorldName = res.WorldName
	}
	for _, roll := range res.Rolls {
		text := fmt.Sprintf("CHECK: %s [DC:%d]", roll.Reason, roll.DC)
		s.Append(chat.NewRollMessage(text, roll.Result, roll.DC))
	}
	counts.add(res)
}

func (o *Orchestrator) filterText(text string) string {
	if o.filter == nil {
		return text
	}
	return o.filter.Apply(text)
}

// persist writes the whole session blob. Save failures are logged, not
// fatal: play continues on the in-memory state.
func (o *Orchestrator) persist(ctx context.Context) {
	if o.session.Stage == state.StageLoading {
		return
	}
	if err := o.store.SaveSession(ctx, o.session); err != nil {
		logger.WithError(o.logger, err).Error("Failed to persist session", "id", o.session.ID)
	}
}
