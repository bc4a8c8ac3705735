package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/xonecas/hollow/internal/arc"
)

// Colors - lantern light over a drowned village
var (
	colorLantern    = lipgloss.Color("#FFB347") // Warm lantern amber
	colorMist       = lipgloss.Color("#9FB8C8") // Pale mist blue
	colorLanternDim = lipgloss.Color("#A86F1F")
	colorMistDim    = lipgloss.Color("#5C7080")

	// Speaker colors
	colorUser   = lipgloss.Color("#C8E6C9") // Pale green for the player
	colorGhost  = lipgloss.Color("#D1A6FF") // Spectral violet for the ghost
	colorSystem = lipgloss.Color("#7FA7B5")

	// Arc state colors
	colorLocked   = lipgloss.Color("#4A4A5A")
	colorActive   = lipgloss.Color("#FFB347")
	colorComplete = lipgloss.Color("#8FD694")

	colorError = lipgloss.Color("#FF5A5F")
	colorMuted = lipgloss.Color("#66667A")

	colorBgPanel = lipgloss.Color("#12121C")
	colorBorder  = lipgloss.Color("#34344A")
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorLantern)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorLantern)

	// Transcript
	logStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorLanternDim)

	logUserStyle = lipgloss.NewStyle().
			Foreground(colorUser).
			Bold(true)

	logGhostStyle = lipgloss.NewStyle().
			Foreground(colorGhost)

	logSystemStyle = lipgloss.NewStyle().
			Foreground(colorSystem).
			Italic(true)

	// Side panels
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Background(colorBgPanel).
			Padding(0, 1)

	panelTitleStyle = lipgloss.NewStyle().
			Foreground(colorMist).
			Bold(true)

	stateLockedStyle = lipgloss.NewStyle().
				Foreground(colorLocked)

	stateDiscoveredStyle = lipgloss.NewStyle().
				Foreground(colorMist)

	stateActiveStyle = lipgloss.NewStyle().
				Foreground(colorActive).
				Bold(true)

	stateCompleteStyle = lipgloss.NewStyle().
				Foreground(colorComplete).
				Bold(true)

	objectiveStyle = lipgloss.NewStyle().
			Foreground(colorLantern).
			Italic(true)

	suggestionStyle = lipgloss.NewStyle().
			Foreground(colorMistDim)

	inputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMist).
			Padding(0, 1)

	inputPromptStyle = lipgloss.NewStyle().
				Foreground(colorLantern).
				Bold(true)

	helpStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(colorLantern).
			Background(colorBgPanel).
			Padding(1, 2).
			Margin(1)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(colorMist).
			Bold(true)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	dimmedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)
)

// StateStyle returns the style for an arc state.
func StateStyle(state arc.State) lipgloss.Style {
	switch state {
	case arc.StateActive:
		return stateActiveStyle
	case arc.StateComplete:
		return stateCompleteStyle
	case arc.StateDiscovered:
		return stateDiscoveredStyle
	default:
		return stateLockedStyle
	}
}

// StateBadge returns the glyph shown next to an arc.
func StateBadge(state arc.State) string {
	switch state {
	case arc.StateActive:
		return "◐"
	case arc.StateComplete:
		return "●"
	case arc.StateDiscovered:
		return "◌"
	default:
		return "○"
	}
}

// RoleStyle returns the style for a transcript speaker.
func RoleStyle(role string) lipgloss.Style {
	switch role {
	case roleUser:
		return logUserStyle
	case roleGhost:
		return logGhostStyle
	default:
		return logSystemStyle
	}
}

// renderSectionTitle renders "⬧── TITLE ──⬧" across width.
func renderSectionTitle(title string, width int) string {
	titleWithSpaces := " " + title + " "
	available := width - lipgloss.Width(titleWithSpaces) - 4
	if available < 2 {
		available = 2
	}
	left := available / 2
	right := available - left

	line := "⬧─" + strings.Repeat("─", left) + titleWithSpaces + strings.Repeat("─", right) + "─⬧"
	return panelTitleStyle.Render(line)
}

// truncateToWidth truncates s to maxWidth display columns without splitting runes.
func truncateToWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	current := 0
	for i, r := range s {
		w := lipgloss.Width(string(r))
		if current+w > maxWidth {
			return s[:i]
		}
		current += w
	}
	return s
}

func truncateWithEllipsis(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return truncateToWidth(s, maxWidth)
	}
	return truncateToWidth(s, maxWidth-3) + "..."
}
