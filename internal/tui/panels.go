package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/xonecas/hollow/internal/arc"
	"github.com/xonecas/hollow/internal/unlock"
)

var categoryGlyphs = map[string]string{
	unlock.CategoryMap:     "⌖",
	unlock.CategoryClue:    "✧",
	unlock.CategoryJournal: "✎",
	unlock.CategoryNPC:     "☾",
}

// RenderArcs renders one line per arc: badge, name and required progress.
func RenderArcs(states arc.States, arcs *arc.Catalog, memory arc.TokenSet, width int) string {
	inner := max(width-4, 10)
	lines := []string{renderSectionTitle("ARCS", inner)}

	if len(states) == 0 {
		lines = append(lines, dimmedStyle.Render("The Hollow is silent."))
	}
	for _, s := range states {
		progress := ""
		if arcs != nil {
			if def, ok := arcs.Get(s.Key); ok {
				held := 0
				for _, tok := range def.Required {
					if memory.Contains(tok) {
						held++
					}
				}
				progress = fmt.Sprintf(" %d/%d", held, len(def.Required))
			}
		}

		style := StateStyle(s.State)
		name := truncateWithEllipsis(unlock.Label(s.Key), inner-lipgloss.Width(progress)-3)
		lines = append(lines, style.Render(StateBadge(s.State)+" "+name)+dimmedStyle.Render(progress))
	}

	return panelStyle.Width(width - 2).Render(strings.Join(lines, "\n"))
}

// RenderClues renders what the player has found so far, newest last.
func RenderClues(memory []string, width int) string {
	inner := max(width-4, 10)
	lines := []string{renderSectionTitle("FOUND", inner)}

	if len(memory) == 0 {
		lines = append(lines, dimmedStyle.Render("Nothing yet."))
	}
	for _, tok := range memory {
		glyph, ok := categoryGlyphs[unlock.Category(tok)]
		if !ok {
			glyph = "·"
		}
		lines = append(lines, glyph+" "+truncateWithEllipsis(unlock.Label(tok), inner-2))
	}

	return panelStyle.Width(width - 2).Render(strings.Join(lines, "\n"))
}

// RenderObjective renders the current objective line.
func RenderObjective(objective string, width int) string {
	if objective == "" {
		return dimmedStyle.Render("Listen to the Hollow.")
	}
	return objectiveStyle.Render(truncateWithEllipsis("Objective: "+objective, width))
}

// RenderSuggestions renders the suggested follow-up questions on one line.
func RenderSuggestions(suggestions []string, width int) string {
	if len(suggestions) == 0 {
		return ""
	}
	return suggestionStyle.Render(truncateWithEllipsis("Tab ⇥ "+strings.Join(suggestions, "  ·  "), width))
}
