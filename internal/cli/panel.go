package cli

import (
	"fmt"
	"strings"

	"github.com/bastiangx/mentionserve/internal/utils"
	"github.com/bastiangx/mentionserve/pkg/autocomplete"
	"github.com/charmbracelet/lipgloss"
)

const maxLabelWidth = 32

// Panel renders the engine's result list. Every result is drawn; the
// searcher bounds the list.
type Panel struct {
	highlight bool

	selected lipgloss.Style
	label    lipgloss.Style
	meta     lipgloss.Style
	note     lipgloss.Style
	value    lipgloss.Style
}

func NewPanel(highlight bool) *Panel {
	p := &Panel{highlight: highlight}
	if !highlight {
		return p
	}
	p.selected = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	p.label = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	p.meta = lipgloss.NewStyle().Faint(true)
	p.note = lipgloss.NewStyle().Italic(true).Faint(true)
	p.value = lipgloss.NewStyle().Bold(true)
	return p
}

// Render draws the visible panel, or nothing when it is hidden.
func (p *Panel) Render(engine *autocomplete.Engine) string {
	if !engine.Visible() {
		return ""
	}

	var b strings.Builder
	switch engine.Status() {
	case autocomplete.StatusPending:
		b.WriteString(p.Note("searching…") + "\n")
		return b.String()
	case autocomplete.StatusFailed:
		b.WriteString(p.Note("search failed") + "\n")
		return b.String()
	case autocomplete.StatusEmpty:
		b.WriteString(p.Note("no matches") + "\n")
		return b.String()
	}

	selectedIndex := engine.SelectedIndex()
	for i, r := range engine.Results() {
		marker := "  "
		if i == selectedIndex {
			marker = "> "
		}
		label := fmt.Sprintf("%-*s", maxLabelWidth, utils.Truncate(r.Replacement, maxLabelWidth))
		line := fmt.Sprintf("%s%2d. %s %s", marker, i+1, p.render(p.label, label),
			p.render(p.meta, fmt.Sprintf("[%s %s]", r.Type, utils.FormatWithCommas(r.Score))))
		if i == selectedIndex {
			line = p.render(p.selected, line)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

// Note renders an informational line.
func (p *Panel) Note(text string) string {
	return p.render(p.note, text)
}

// Value renders the field content after a selection.
func (p *Panel) Value(value string) string {
	return "= " + p.render(p.value, value)
}

func (p *Panel) render(style lipgloss.Style, text string) string {
	if !p.highlight {
		return text
	}
	return style.Render(text)
}
