package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// chrome is the number of lines the title, hints and help take up.
const chrome = 12

// View implements tea.Model.
func (m Model) View() string {
	if m.done || m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.theme.Title.Render(m.title))
	b.WriteString("\n")
	b.WriteString(m.renderProgress())
	b.WriteString("\n\n")

	current := roles[m.step]
	b.WriteString(m.theme.Normal.Render(fmt.Sprintf("Which column holds the %s?", strings.ToLower(current.label))))
	b.WriteString("\n")
	b.WriteString(m.theme.Subtitle.Render(current.hint))
	b.WriteString("\n\n")
	b.WriteString(m.renderColumns())

	if m.message != "" {
		b.WriteString("\n")
		b.WriteString(m.theme.StatusError.Render(m.message))
	}

	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keymap))

	return m.theme.Box.Render(b.String())
}

func (m Model) renderProgress() string {
	parts := make([]string, len(roles))
	for i, r := range roles {
		switch {
		case i < m.step:
			parts[i] = m.theme.Assigned.Render(fmt.Sprintf("%s: %s", r.label, *r.field(&m.fields)))
		case i == m.step:
			parts[i] = lipgloss.NewStyle().Bold(true).Foreground(m.theme.Primary).Render(r.label)
		default:
			parts[i] = m.theme.Muted.Render(r.label)
		}
	}
	return strings.Join(parts, m.theme.Muted.Render(" · "))
}

// renderColumns shows the window of columns around the cursor that fits the terminal.
func (m Model) renderColumns() string {
	if len(m.columns) == 0 {
		return m.theme.Muted.Render("(no columns)")
	}

	visible := max(m.height-chrome, 3)
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := min(start+visible, len(m.columns))

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		name := m.columns[i]
		if name == "" {
			name = "(blank)"
		}
		if i == m.cursor {
			lines = append(lines, m.theme.Selected.Render("› "+name))
			continue
		}
		lines = append(lines, m.theme.Normal.Render("  "+name))
	}
	if end < len(m.columns) {
		lines = append(lines, m.theme.Muted.Render(fmt.Sprintf("  … %d more", len(m.columns)-end)))
	}
	return strings.Join(lines, "\n")
}
