package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type helpItem struct {
	key  string
	desc string
}

var helpItems = []helpItem{
	{"Ctrl+C", "Quit"},
	{"Enter", "Speak to the ghost"},
	{"Tab", "Use the next suggested question"},
	{"↑ / ↓", "Browse what you said"},
	{"PgUp / PgDn", "Scroll the conversation"},
	{"F1", "Toggle help"},
	{"Esc", "Close help"},
}

// RenderHelp renders the help overlay centered in width x height.
func RenderHelp(width, height int) string {
	lines := []string{titleStyle.Render("Keys"), ""}

	maxKeyLen := 0
	for _, item := range helpItems {
		if n := lipgloss.Width(item.key); n > maxKeyLen {
			maxKeyLen = n
		}
	}
	for _, item := range helpItems {
		key := helpKeyStyle.Render(padRight(item.key, maxKeyLen))
		lines = append(lines, key+"  "+helpDescStyle.Render(item.desc))
	}

	box := helpStyle.Render(strings.Join(lines, "\n"))

	padLeft := max((width-lipgloss.Width(box))/2, 0)
	padTop := max((height-lipgloss.Height(box))/2, 0)

	leftPad := strings.Repeat(" ", padLeft)
	boxLines := strings.Split(box, "\n")
	for i, line := range boxLines {
		boxLines[i] = leftPad + line
	}

	return strings.Repeat("\n", padTop) + strings.Join(boxLines, "\n")
}

func padRight(s string, length int) string {
	if w := lipgloss.Width(s); w < length {
		return s + strings.Repeat(" ", length-w)
	}
	return s
}
