package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// NetActivity is what the client is waiting on.
type NetActivity int

const (
	NetActivityIdle    NetActivity = iota
	NetActivityGhost               // waiting for a turn
	NetActivitySuggest             // waiting for suggested questions
)

// NetIndicator is a bouncing bar shown while a model call is in flight.
type NetIndicator struct {
	activity  NetActivity
	position  int
	direction int
	width     int
}

// NetIndicatorTickMsg animates the indicator.
type NetIndicatorTickMsg time.Time

// NewNetIndicator creates an idle indicator.
func NewNetIndicator() NetIndicator {
	return NetIndicator{direction: 1, width: 10}
}

// SetActivity sets what the client is waiting on.
func (n *NetIndicator) SetActivity(activity NetActivity) {
	n.activity = activity
}

// Activity returns the current activity.
func (n NetIndicator) Activity() NetActivity {
	return n.activity
}

// Update advances the animation on each tick.
func (n NetIndicator) Update(msg tea.Msg) (NetIndicator, tea.Cmd) {
	if _, ok := msg.(NetIndicatorTickMsg); !ok {
		return n, nil
	}
	if n.activity != NetActivityIdle {
		n.position += n.direction
		if n.position >= n.width-1 {
			n.position = n.width - 1
			n.direction = -1
		} else if n.position <= 0 {
			n.position = 0
			n.direction = 1
		}
	}
	return n, n.tick()
}

func (n NetIndicator) tick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return NetIndicatorTickMsg(t)
	})
}

// Init starts the animation.
func (n NetIndicator) Init() tea.Cmd {
	return n.tick()
}

// View renders the indicator.
func (n NetIndicator) View() string {
	var (
		style lipgloss.Style
		label string
	)
	switch n.activity {
	case NetActivityGhost:
		style = lipgloss.NewStyle().Foreground(colorGhost).Bold(true)
		label = "listening"
	case NetActivitySuggest:
		style = lipgloss.NewStyle().Foreground(colorMist)
		label = "pondering"
	default:
		return dimmedStyle.Render("still  ▐" + strings.Repeat("░", n.width) + "▌")
	}

	var bar strings.Builder
	bar.WriteString("▐")
	for i := 0; i < n.width; i++ {
		if i >= n.position-1 && i <= n.position+1 {
			bar.WriteString("█")
		} else {
			bar.WriteString("░")
		}
	}
	bar.WriteString("▌")

	return style.Render(label + " " + bar.String())
}
