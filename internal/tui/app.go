// Package tui is the terminal séance: a conversation with one ghost next to
// the session's arcs and everything found so far.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/xonecas/hollow/internal/arc"
	"github.com/xonecas/hollow/internal/constants"
	"github.com/xonecas/hollow/internal/ghost"
	"github.com/xonecas/hollow/internal/unlock"
)

const (
	roleUser   = "user"
	roleGhost  = "ghost"
	roleSystem = "system"

	sidePanelWidth = 32
)

// Conversation is what the client talks to.
type Conversation interface {
	Talk(ctx context.Context, req ghost.TalkRequest) (*ghost.TalkResponse, error)
	Suggest(ctx context.Context, req ghost.TalkRequest) ([]string, error)
}

type chatLine struct {
	role string
	text string
}

// Model is the main TUI model.
type Model struct {
	conv      Conversation
	sessionID string
	ghostName string

	width    int
	height   int
	showHelp bool

	input      InputModel
	transcript viewport.Model
	net        NetIndicator

	lines       []chatLine
	history     []string // "User: ..." / "Ghost: ..." lines sent with each turn
	memory      []string // unlocks in the order they were found
	found       arc.TokenSet
	states      arc.States
	arcs        *arc.Catalog
	objective   string
	mood        string
	suggestions []string

	busy bool
	err  error
}

type turnMsg struct {
	input string
	resp  *ghost.TalkResponse
	err   error
}

type suggestMsg struct {
	suggestions []string
	err         error
}

// New creates a model bound to a fresh session.
func New(conv Conversation, ghostName string) Model {
	if strings.TrimSpace(ghostName) == "" {
		ghostName = ghost.DefaultGhost
	}
	return Model{
		conv:       conv,
		sessionID:  uuid.New().String(),
		ghostName:  ghostName,
		input:      NewInputModel(),
		transcript: viewport.New(0, 0),
		net:        NewNetIndicator(),
		memory:     []string{},
		found:      arc.NewTokenSet(),
		mood:       constants.DefaultMood,
	}
}

// SessionID returns the session this client plays in.
func (m Model) SessionID() string {
	return m.sessionID
}

// Init loads the starting arcs and starts the cursor and indicator.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.net.Init(),
		m.talkCmd(m.request(constants.InitInput)),
	)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case turnMsg:
		return m.applyTurn(msg)

	case suggestMsg:
		m.net.SetActivity(NetActivityIdle)
		if msg.err != nil {
			log.Debug().Err(msg.err).Str("session", m.sessionID).Msg("No suggestions")
			return m, nil
		}
		m.suggestions = msg.suggestions
		return m, nil

	case NetIndicatorTickMsg:
		var cmd tea.Cmd
		m.net, cmd = m.net.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	if m.showHelp {
		return RenderHelp(m.width, m.height)
	}

	header := headerStyle.Render("WHISPERS OF THE HOLLOW") +
		dimmedStyle.Render(fmt.Sprintf("  %s · %s  ", m.ghostName, m.mood)) +
		m.net.View()

	chat := lipgloss.JoinHorizontal(lipgloss.Top,
		m.transcript.View(),
		" ",
		renderScrollbar(m.transcript.Height, m.transcript.TotalLineCount(), m.transcript.YOffset),
	)
	body := logStyle.Render(chat)
	if side := m.sideWidth(); side > 0 {
		panels := lipgloss.JoinVertical(lipgloss.Left,
			RenderArcs(m.states, m.arcs, m.found, side),
			RenderClues(m.memory, side),
		)
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, panels)
	}

	parts := []string{
		header,
		body,
		RenderObjective(m.objective, m.width),
		RenderSuggestions(m.suggestions, m.width),
		m.input.View(m.width),
	}
	if m.err != nil {
		parts = append(parts, errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}
	return strings.Join(parts, "\n")
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Help):
		m.showHelp = !m.showHelp
		return m, nil
	}

	// Any other key closes help.
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Enter):
		return m.send()

	case key.Matches(msg, keys.Tab):
		if len(m.suggestions) > 0 {
			m.input.SetValue(m.suggestions[0])
			m.suggestions = m.suggestions[1:]
		}
		return m, nil

	case key.Matches(msg, keys.PageUp), key.Matches(msg, keys.PageDown):
		var cmd tea.Cmd
		m.transcript, cmd = m.transcript.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) send() (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	value := strings.TrimSpace(m.input.Value())
	if value == "" {
		return m, nil
	}

	m.input.AddToHistory(value)
	m.input.Reset()
	m.suggestions = nil
	m.err = nil

	m.pushHistory("User: " + value)
	m.appendLine(roleUser, value)

	m.busy = true
	m.net.SetActivity(NetActivityGhost)
	return m, m.talkCmd(m.request(value))
}

func (m Model) applyTurn(msg turnMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	m.net.SetActivity(NetActivityIdle)

	if msg.err != nil {
		log.Error().Err(msg.err).Str("session", m.sessionID).Msg("Turn failed")
		m.err = msg.err
		return m, nil
	}

	resp := msg.resp
	opening := strings.EqualFold(msg.input, constants.InitInput)
	if !opening {
		m.appendLine(roleGhost, resp.Reply)
		m.pushHistory("Ghost: " + resp.Reply)
		m.mood = resp.Mood
	}

	for _, tok := range resp.Unlocks {
		if m.found.Contains(tok) {
			continue
		}
		m.found.Add(tok)
		m.memory = append(m.memory, tok)
		m.appendLine(roleSystem, "Found: "+unlock.Label(tok))
	}

	m.states = resp.ArcStates
	m.arcs = resp.StoryArcs
	m.objective = resp.Objective

	if opening {
		if len(m.lines) == 0 {
			m.appendLine(roleSystem, "The lanterns flicker. Someone is listening.")
		}
		return m, nil
	}

	m.net.SetActivity(NetActivitySuggest)
	return m, m.suggestCmd(m.request(msg.input))
}

func (m Model) request(input string) ghost.TalkRequest {
	return ghost.TalkRequest{
		SessionID:       m.sessionID,
		Ghost:           m.ghostName,
		UserInput:       input,
		Memory:          append([]string{}, m.memory...),
		DialogueHistory: append([]string{}, m.history...),
	}
}

func (m Model) talkCmd(req ghost.TalkRequest) tea.Cmd {
	conv := m.conv
	return func() tea.Msg {
		resp, err := conv.Talk(context.Background(), req)
		return turnMsg{input: req.UserInput, resp: resp, err: err}
	}
}

func (m Model) suggestCmd(req ghost.TalkRequest) tea.Cmd {
	conv := m.conv
	return func() tea.Msg {
		questions, err := conv.Suggest(context.Background(), req)
		return suggestMsg{suggestions: questions, err: err}
	}
}

func (m *Model) pushHistory(line string) {
	m.history = append(m.history, line)
	if n := len(m.history); n > constants.MaxDialogueHistory {
		m.history = m.history[n-constants.MaxDialogueHistory:]
	}
}

func (m *Model) appendLine(role, text string) {
	m.lines = append(m.lines, chatLine{role: role, text: text})
	m.refreshTranscript()
}

func (m Model) sideWidth() int {
	if m.width < 2*sidePanelWidth {
		return 0
	}
	return sidePanelWidth
}

func (m *Model) resize() {
	chatWidth := m.width - m.sideWidth()
	// Header, objective, suggestions, a three-line input and the transcript border.
	m.transcript.Width = max(chatWidth-4, 10)
	m.transcript.Height = max(m.height-9, 3)
	m.input.SetWidth(m.width)
	m.refreshTranscript()
}

func (m *Model) refreshTranscript() {
	width := max(m.transcript.Width, 10)
	rendered := make([]string, 0, len(m.lines))
	for _, line := range m.lines {
		rendered = append(rendered, m.renderLine(line, width))
	}
	m.transcript.SetContent(strings.Join(rendered, "\n"))
	m.transcript.GotoBottom()
}

func (m Model) renderLine(line chatLine, width int) string {
	style := RoleStyle(line.role)
	var prefix string
	switch line.role {
	case roleUser:
		prefix = "You: "
	case roleGhost:
		prefix = m.ghostName + ": "
	default:
		prefix = "~ "
	}
	return style.Width(width).Render(prefix + line.text)
}

var keys = struct {
	Quit     key.Binding
	Help     key.Binding
	Enter    key.Binding
	Tab      key.Binding
	PageUp   key.Binding
	PageDown key.Binding
}{
	Quit:     key.NewBinding(key.WithKeys("ctrl+c")),
	Help:     key.NewBinding(key.WithKeys("f1")),
	Enter:    key.NewBinding(key.WithKeys("enter")),
	Tab:      key.NewBinding(key.WithKeys("tab")),
	PageUp:   key.NewBinding(key.WithKeys("pgup")),
	PageDown: key.NewBinding(key.WithKeys("pgdown")),
}
