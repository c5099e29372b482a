package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/novelterm/aetheria/internal/engine"
	"github.com/novelterm/aetheria/pkg/chat"
	"github.com/novelterm/aetheria/pkg/state"
)

const (
	AgentName       = "Narrator"
	PlaceHolderText = "What do you do?"
)

// UI phases. The session moves strictly forward through them.
type phase int

const (
	phaseBoot phase = iota
	phasePrologue
	phaseCreation
	phasePlaying
)

// Meta panel tabs, cycled with Tab.
const (
	tabStatus = iota
	tabJournal
	tabMap
	tabPeople
	tabInventory
	tabMissions
	tabCount
)

var tabNames = [tabCount]string{"STATUS", "JOURNAL", "MAP", "PEOPLE", "INVENTORY", "MISSIONS"}

// creationSteps are the sequential character sheet questions.
var creationSteps = []struct {
	Label       string
	Placeholder string
}{
	{"What is your name?", "Name"},
	{"What is your race?", "Human, elf, something stranger..."},
	{"What is your occupation?", "Sellsword, scholar, smuggler..."},
	{"Describe your background in a sentence or two.", "Where you come from, what shaped you"},
	{"How tall are you?", "e.g. just under six feet"},
	{"What is your build?", "Wiry, broad, soft-spoken bulk..."},
	{"Name your greatest strength.", "First of three"},
	{"Name a second strength.", "Second of three"},
	{"Name a third strength.", "Third of three"},
	{"Name your one defining weakness.", "Be honest"},
}

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	orch    *engine.Orchestrator
	resumed bool

	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	err          error
	loading      bool
	loadingLabel string

	phase        phase
	activeTab    int
	creationStep int
	answers      []string

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state
	progressTick int
}

type worldReadyMsg struct {
	err error
}

type resumeDoneMsg struct {
	err error
}

type storyBegunMsg struct{}

type turnDoneMsg struct{}

type progressTickMsg struct{}

var (
	chatPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	narratorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	systemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82")). // bright green
			Bold(true)

	failureStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")). // red
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	tabActiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("205")).
			Bold(true)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240"))

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

func NewConsoleUI(orch *engine.Orchestrator, resumed bool) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 1000
	ta.SetWidth(50)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	ui := ConsoleUI{
		orch:         orch,
		resumed:      resumed,
		textarea:     ta,
		chatViewport: chatVp,
		metaViewport: metaVp,
		phase:        phaseBoot,
		loading:      true,
		loadingLabel: "Forging a new world...",
	}
	if resumed && orch.Session().Stage == state.StagePlaying {
		ui.loadingLabel = "Reopening your story..."
	}
	return ui
}

func (m ConsoleUI) Init() tea.Cmd {
	var boot tea.Cmd
	if m.resumed && m.orch.Session().Stage == state.StagePlaying {
		boot = m.resumeSession()
	} else {
		boot = m.bootWorld()
	}
	return tea.Batch(boot, progressTick(), textarea.Blink)
}

func (m ConsoleUI) bootWorld() tea.Cmd {
	return func() tea.Msg {
		return worldReadyMsg{err: m.orch.InitializeWorld(context.Background())}
	}
}

func (m ConsoleUI) resumeSession() tea.Cmd {
	return func() tea.Msg {
		return resumeDoneMsg{err: m.orch.ResumeFromSave(context.Background())}
	}
}

func (m ConsoleUI) beginStory(c state.Character) tea.Cmd {
	return func() tea.Msg {
		m.orch.BeginStory(context.Background(), c)
		return storyBegunMsg{}
	}
}

func (m ConsoleUI) sendTurn(input string) tea.Cmd {
	return func() tea.Msg {
		m.orch.PlayTurn(context.Background(), input)
		return turnDoneMsg{}
	}
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		m.textarea, tiCmd = m.textarea.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(tiCmd, vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ready = true
		m.writeChatContent()
		m.writeMetaContent()

	case worldReadyMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.phase = phasePrologue
			m.textarea.Placeholder = "Press Enter to step into the world..."
		}
		m.writeChatContent()
		m.writeMetaContent()

	case resumeDoneMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.phase = phasePlaying
		}
		m.writeChatContent()
		m.writeMetaContent()

	case storyBegunMsg:
		m.loading = false
		m.phase = phasePlaying
		m.textarea.Placeholder = PlaceHolderText
		m.writeChatContent()
		m.writeMetaContent()

	case turnDoneMsg:
		m.loading = false
		m.writeChatContent()
		m.writeMetaContent()

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeChatContent()
			return m, progressTick()
		}

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyTab:
			m.activeTab = (m.activeTab + 1) % tabCount
			m.writeMetaContent()
			return m, nil
		case tea.KeyShiftTab:
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
			m.writeMetaContent()
			return m, nil
		case tea.KeyEnter:
			if m.loading || m.err != nil {
				return m, nil
			}
			return m.handleEnter()
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

func (m ConsoleUI) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.textarea.Value())

	switch m.phase {
	case phasePrologue:
		// Any Enter moves into character creation.
		m.phase = phaseCreation
		m.creationStep = 0
		m.answers = make([]string, 0, len(creationSteps))
		m.orch.Session().Stage = state.StageCreation
		m.textarea.Reset()
		m.textarea.Placeholder = creationSteps[0].Placeholder
		m.writeChatContent()
		return m, nil

	case phaseCreation:
		if input == "" {
			return m, nil
		}
		m.answers = append(m.answers, input)
		m.textarea.Reset()
		m.creationStep++
		if m.creationStep < len(creationSteps) {
			m.textarea.Placeholder = creationSteps[m.creationStep].Placeholder
			m.writeChatContent()
			return m, nil
		}
		c := characterFromAnswers(m.answers)
		m.loading = true
		m.loadingLabel = "The narrator takes a breath..."
		m.progressTick = 0
		m.writeChatContent()
		return m, tea.Batch(m.beginStory(c), progressTick())

	case phasePlaying:
		if input == "" {
			return m, nil
		}
		if strings.HasPrefix(input, "/") {
			return m.handleCommand(input)
		}
		m.textarea.Reset()
		m.loading = true
		m.loadingLabel = ""
		m.progressTick = 0
		m.writeChatContent()
		return m, tea.Batch(m.sendTurn(input), progressTick())
	}

	return m, nil
}

func characterFromAnswers(answers []string) state.Character {
	c := state.Character{}
	get := func(i int) string {
		if i < len(answers) {
			return answers[i]
		}
		return ""
	}
	c.Name = get(0)
	c.Race = get(1)
	c.Occupation = get(2)
	c.Background = get(3)
	c.Height = get(4)
	c.Build = get(5)
	c.Strengths = [3]string{get(6), get(7), get(8)}
	c.Weakness = get(9)
	return c
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	cmd := strings.ToLower(strings.TrimSpace(input))

	switch cmd {
	case "/help":
		helpText := `
Commands:
• /help - Show this help
• /sheet - Show your character sheet
• Tab - Cycle the side panel
• Ctrl+C - Quit

How to play:
• Type your actions and press Enter
• The narrator resolves risky actions with d100 checks
• Watch the side panel: journal, map, people, inventory, missions
`
		currentContent := m.chatViewport.View()
		m.chatViewport.SetContent(currentContent + titleStyle.Render("Help:") + helpText + "\n")
		m.chatViewport.GotoBottom()

	case "/sheet":
		var sheet strings.Builder
		sheet.WriteString(titleStyle.Render("Character:") + "\n")
		c := m.orch.Session().Character
		if c == nil {
			sheet.WriteString("No character yet.\n")
		} else {
			sheet.WriteString(fmt.Sprintf("• %s, %s %s\n", c.Name, c.Race, c.Occupation))
			sheet.WriteString(fmt.Sprintf("• %s, %s\n", c.Height, c.Build))
			sheet.WriteString(fmt.Sprintf("• Strengths: %s\n", strings.Join(c.Strengths[:], ", ")))
			sheet.WriteString(fmt.Sprintf("• Weakness: %s\n", c.Weakness))
		}
		sheet.WriteString("\n")

		currentContent := m.chatViewport.View()
		m.chatViewport.SetContent(currentContent + sheet.String())
		m.chatViewport.GotoBottom()
	}

	m.textarea.Reset()
	return m, nil
}

func (m *ConsoleUI) resize() {
	chatWidth := int(float64(m.width)*0.70) - 4
	metaWidth := m.width - chatWidth - 6

	m.chatViewport.Width = chatWidth - 2
	m.chatViewport.Height = m.height - 7
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
	m.textarea.SetWidth(chatWidth - 4)
}

// writeChatContent rebuilds the transcript pane from session state at the
// current viewport width.
func (m *ConsoleUI) writeChatContent() {
	chatWidth := m.chatViewport.Width - 6

	var content strings.Builder
	sess := m.orch.Session()

	title := "AETHERIA"
	if sess.Status.WorldName != "" {
		title = strings.ToUpper(sess.Status.WorldName)
	}
	content.WriteString(titleStyle.Render(title) + "\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", max(chatWidth-6, 1))) + "\n\n")

	for _, msg := range sess.Messages {
		switch msg.Role {
		case chat.ChatRoleModel:
			content.WriteString(formatNarratorResponse(msg.Text, chatWidth) + "\n\n")
		case chat.ChatRoleUser:
			content.WriteString(userStyle.Render("You: ") + wordwrap.String(msg.Text, chatWidth-6) + "\n\n")
		case chat.ChatRoleSystem:
			content.WriteString(formatSystemMessage(msg, chatWidth) + "\n\n")
		}
	}

	if m.err != nil {
		content.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n\n")
		content.WriteString(promptStyle.Render("Press Ctrl+C to exit") + "\n")
	}

	if m.phase == phaseCreation && m.creationStep < len(creationSteps) {
		content.WriteString(titleStyle.Render("Who are you?") + "\n\n")
		for i, answer := range m.answers {
			content.WriteString(promptStyle.Render(creationSteps[i].Label) + " " + answer + "\n")
		}
		content.WriteString("\n" + systemStyle.Render(creationSteps[m.creationStep].Label) + "\n")
	}

	if m.phase == phasePrologue && !m.loading {
		content.WriteString(systemStyle.Render("Press Enter to create your character.") + "\n")
	}

	if m.loading {
		if m.loadingLabel != "" {
			content.WriteString(loadingStyle.Render(m.loadingLabel) + "\n")
		}
		content.WriteString(m.renderProgressBar())
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

func formatSystemMessage(msg chat.ChatMessage, width int) string {
	if msg.IsRoll {
		outcome := failureStyle.Render(msg.RollOutcome)
		if msg.RollOutcome == chat.RollOutcomeSuccess {
			outcome = successStyle.Render(msg.RollOutcome)
		}
		return systemStyle.Render(fmt.Sprintf("%s → %d ", msg.Text, msg.RollResult)) + outcome
	}
	return systemStyle.Render(wordwrap.String(msg.Text, width-4))
}

func formatNarratorResponse(response string, width int) string {
	narratorPrefix := AgentName + ": "
	wrapped := wordwrap.String(response, width-len(narratorPrefix))
	return narratorStyle.Render(narratorPrefix) + wrapped
}

// writeMetaContent rebuilds the side panel for the active tab.
func (m *ConsoleUI) writeMetaContent() {
	sess := m.orch.Session()

	var content strings.Builder
	content.WriteString(m.renderTabBar() + "\n\n")

	switch m.activeTab {
	case tabStatus:
		content.WriteString(writeStatus(sess))
	case tabJournal:
		content.WriteString(writeJournal(sess.Lore))
	case tabMap:
		content.WriteString(writeMap(sess.Locations))
	case tabPeople:
		content.WriteString(writePeople(sess.NPCs))
	case tabInventory:
		content.WriteString(writeInventory(sess.Inventory))
	case tabMissions:
		content.WriteString(writeMissions(sess.Quests))
	}

	m.metaViewport.SetContent(content.String())
}

func (m *ConsoleUI) renderTabBar() string {
	var parts []string
	for i, name := range tabNames {
		if i == m.activeTab {
			parts = append(parts, tabActiveStyle.Render(" "+name+" "))
		} else {
			parts = append(parts, tabInactiveStyle.Render(" "+name+" "))
		}
	}
	return strings.Join(parts, "")
}

func writeStatus(sess *state.Session) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("WORLD") + "\n\n")
	if sess.Status.WorldName != "" {
		b.WriteString(sess.Status.WorldName + "\n\n")
	}
	if sess.Status.Time != "" {
		b.WriteString("Time:\n" + sess.Status.Time + "\n\n")
	}
	if sess.Status.Condition != "" {
		b.WriteString("Condition:\n" + sess.Status.Condition + "\n\n")
	}
	if c := sess.Character; c != nil {
		b.WriteString(titleStyle.Render("YOU") + "\n\n")
		b.WriteString(fmt.Sprintf("%s\n%s %s\n\n", c.Name, c.Race, c.Occupation))
	}
	b.WriteString("Commands:\n")
	b.WriteString("• Tab: Panels\n")
	b.WriteString("• Enter: Send\n")
	b.WriteString("• /help: Help\n")
	b.WriteString("• Ctrl+C: Quit\n")
	return b.String()
}

func writeJournal(lore []state.LoreEntry) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("JOURNAL") + "\n\n")
	if len(lore) == 0 {
		b.WriteString("Nothing recorded yet.\n")
		return b.String()
	}
	for _, entry := range lore {
		b.WriteString(fmt.Sprintf("• %s (%s)\n", entry.Title, entry.Type))
		b.WriteString(promptStyle.Render(entry.Description) + "\n\n")
	}
	return b.String()
}

func writeMap(locations []state.LocationNode) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("MAP") + "\n\n")
	if len(locations) == 0 {
		b.WriteString("No locations charted.\n")
		return b.String()
	}
	for _, loc := range locations {
		b.WriteString(fmt.Sprintf("• %s (%s)\n", loc.Name, loc.Type))
		b.WriteString(promptStyle.Render(fmt.Sprintf("  %d mi E, %d mi N", loc.X, loc.Y)) + "\n")
	}
	return b.String()
}

func writePeople(npcs []state.Npc) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("PEOPLE") + "\n\n")
	if len(npcs) == 0 {
		b.WriteString("No one of note yet.\n")
		return b.String()
	}
	for _, npc := range npcs {
		disposition := npc.Disposition
		var dispStyle lipgloss.Style
		switch state.DispositionBucket(npc.Disposition) {
		case state.DispositionHostile:
			dispStyle = failureStyle
		case state.DispositionFriendly:
			dispStyle = successStyle
		default:
			dispStyle = promptStyle
		}
		b.WriteString(fmt.Sprintf("• %s — %s\n", npc.Name, npc.Role))
		b.WriteString("  " + dispStyle.Render(disposition))
		if npc.Status != state.NpcAlive && npc.Status != "" {
			b.WriteString(" " + promptStyle.Render("["+string(npc.Status)+"]"))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func writeInventory(items []state.Item) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("INVENTORY") + "\n\n")
	if len(items) == 0 {
		b.WriteString("Empty pockets.\n")
		return b.String()
	}
	for _, item := range items {
		line := fmt.Sprintf("• %s", item.Name)
		if item.Quantity > 1 {
			line += fmt.Sprintf(" x%d", item.Quantity)
		}
		if item.IsEquipped {
			line += " " + successStyle.Render("[equipped]")
		}
		b.WriteString(line + "\n")
		b.WriteString(promptStyle.Render("  "+string(item.Type)) + "\n")
	}
	return b.String()
}

func writeMissions(quests []state.Quest) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("MISSIONS") + "\n\n")
	if len(quests) == 0 {
		b.WriteString("No missions yet.\n")
		return b.String()
	}
	for _, q := range quests {
		var status string
		switch q.Status {
		case state.QuestCompleted:
			status = successStyle.Render("✓")
		case state.QuestFailed:
			status = failureStyle.Render("✗")
		default:
			status = systemStyle.Render("•")
		}
		b.WriteString(fmt.Sprintf("%s %s\n", status, q.Title))
		for _, obj := range q.Objectives {
			b.WriteString(promptStyle.Render("  - "+obj) + "\n")
		}
	}
	return b.String()
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Leave the Story?"))
	content.WriteString("\n\n")
	content.WriteString("Your progress is saved. The world will wait for you.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.70) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", max(chatWidth-4, 1))),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}

// renderProgressBar creates an animated progress bar for loading states
func (m ConsoleUI) renderProgressBar() string {
	usable := m.chatViewport.Width - 6
	if usable <= 0 {
		usable = 30
	}
	if usable > 80 {
		usable = 80
	} else if usable < 10 {
		usable = 10
	}

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		if i < filled {
			bar.WriteString("█")
		} else if i == filled && frame%4 < 2 {
			bar.WriteString("▓")
		} else {
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

// progressTick creates a command that sends a progress tick message
func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
