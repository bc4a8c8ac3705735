package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const maxHistorySize = 100

// InputModel is the line the player types into, with a recall history.
type InputModel struct {
	textInput    textinput.Model
	history      []string
	historyIndex int // -1 when not browsing
	draft        string
}

// NewInputModel creates a focused input.
func NewInputModel() InputModel {
	ti := textinput.New()
	ti.Placeholder = "Ask the ghost something..."
	ti.Prompt = inputPromptStyle.Render("❯ ")
	ti.CharLimit = 500
	ti.Width = 60
	ti.Focus()

	return InputModel{
		textInput:    ti,
		history:      make([]string, 0, maxHistorySize),
		historyIndex: -1,
	}
}

// Value returns the current input value.
func (m InputModel) Value() string {
	return m.textInput.Value()
}

// SetValue replaces the input value and moves the cursor to the end.
func (m *InputModel) SetValue(v string) {
	m.textInput.SetValue(v)
	m.textInput.CursorEnd()
}

var historyKeys = struct {
	Up   key.Binding
	Down key.Binding
}{
	Up:   key.NewBinding(key.WithKeys("up")),
	Down: key.NewBinding(key.WithKeys("down")),
}

// Update handles key input and history navigation.
func (m InputModel) Update(msg tea.Msg) (InputModel, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, historyKeys.Up):
			m.navigateHistory(1)
			return m, nil
		case key.Matches(keyMsg, historyKeys.Down):
			m.navigateHistory(-1)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

// navigateHistory moves through the history: 1 is older, -1 is newer.
func (m *InputModel) navigateHistory(direction int) {
	if len(m.history) == 0 {
		return
	}

	if m.historyIndex == -1 && direction == 1 {
		m.draft = m.textInput.Value()
	}

	m.historyIndex = min(max(m.historyIndex+direction, -1), len(m.history)-1)

	if m.historyIndex == -1 {
		m.SetValue(m.draft)
		return
	}
	m.SetValue(m.history[len(m.history)-1-m.historyIndex])
}

// View renders the input box.
func (m InputModel) View(width int) string {
	return inputStyle.Width(max(width-2, 10)).Render(m.textInput.View())
}

// Reset clears the value and stops browsing history.
func (m *InputModel) Reset() {
	m.textInput.Reset()
	m.historyIndex = -1
	m.draft = ""
}

// AddToHistory remembers a sent line, skipping consecutive repeats.
func (m *InputModel) AddToHistory(line string) {
	if line == "" {
		return
	}
	if len(m.history) > 0 && m.history[len(m.history)-1] == line {
		return
	}

	m.history = append(m.history, line)
	if len(m.history) > maxHistorySize {
		m.history = m.history[len(m.history)-maxHistorySize:]
	}
}

// SetWidth sets the input width.
func (m *InputModel) SetWidth(width int) {
	m.textInput.Width = max(width-6, 10)
}
