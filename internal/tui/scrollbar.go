package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	scrollbarThumb = "█"
	scrollbarTrack = "│"
)

var (
	scrollTrackStyle = lipgloss.NewStyle().Foreground(colorBorder)
	scrollThumbStyle = lipgloss.NewStyle().Foreground(colorMistDim)
)

// renderScrollbar renders a one-column scrollbar of the given height for a
// transcript of totalLines scrolled to offset.
func renderScrollbar(height, totalLines, offset int) string {
	if height <= 0 {
		return ""
	}

	lines := make([]string, height)
	if totalLines <= height {
		for i := range lines {
			lines[i] = scrollTrackStyle.Render(scrollbarTrack)
		}
		return strings.Join(lines, "\n")
	}

	thumbSize := min(max(height*height/totalLines, 1), height)

	ratio := float64(offset) / float64(totalLines-height)
	ratio = min(max(ratio, 0), 1)
	thumbPos := int(ratio * float64(height-thumbSize))

	for i := range lines {
		if i >= thumbPos && i < thumbPos+thumbSize {
			lines[i] = scrollThumbStyle.Render(scrollbarThumb)
		} else {
			lines[i] = scrollTrackStyle.Render(scrollbarTrack)
		}
	}
	return strings.Join(lines, "\n")
}
