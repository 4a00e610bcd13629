package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	listStyle = lipgloss.NewStyle().
			Width(32).
			PaddingRight(2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type browserModel struct {
	source   string
	entries  []entry
	visible  []int
	filter   textinput.Model
	styles   styles
	selected int
}

func newBrowserModel(source string, entries []entry) *browserModel {
	ti := textinput.New()
	ti.Placeholder = "filter by name or kind"
	ti.Prompt = "/ "
	ti.Width = 30
	ti.Focus()

	m := &browserModel{
		source:  source,
		entries: entries,
		filter:  ti,
		styles:  newStyles(true),
	}
	m.applyFilter()
	return m
}

func (m *browserModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "ctrl+p":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil
		case "down", "ctrl+n":
			if m.selected < len(m.visible)-1 {
				m.selected++
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	before := m.filter.Value()
	m.filter, cmd = m.filter.Update(msg)
	if m.filter.Value() != before {
		m.applyFilter()
	}
	return m, cmd
}

// applyFilter recomputes the visible entries and keeps the selection in range.
func (m *browserModel) applyFilter() {
	q := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	m.visible = m.visible[:0]
	for i, e := range m.entries {
		if q == "" || strings.Contains(strings.ToLower(e.name), q) || strings.HasPrefix(e.kind, q) {
			m.visible = append(m.visible, i)
		}
	}
	if m.selected >= len(m.visible) {
		m.selected = max(len(m.visible)-1, 0)
	}
}

func (m *browserModel) current() (entry, bool) {
	if len(m.visible) == 0 {
		return entry{}, false
	}
	return m.entries[m.visible[m.selected]], true
}

func (m *browserModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Layout Browser"))
	b.WriteString(" ")
	b.WriteString(m.source)
	b.WriteString("\n\n")
	b.WriteString(m.filter.View())
	b.WriteString("\n\n")

	var list strings.Builder
	if len(m.visible) == 0 {
		list.WriteString(helpStyle.Render("no matching types"))
	}
	for i, idx := range m.visible {
		e := m.entries[idx]
		line := fmt.Sprintf("%s %s", e.name, helpStyle.Render(e.kind))
		if i == m.selected {
			line = selectedStyle.Render("> " + e.name + " " + e.kind)
		} else {
			line = "  " + line
		}
		list.WriteString(line)
		list.WriteString("\n")
	}

	right := ""
	if e, ok := m.current(); ok {
		right = detail(e, m.styles)
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, listStyle.Render(list.String()), right))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ select • type to filter • esc quit"))

	return b.String()
}

func runInteractive(source string, entries []entry) error {
	p := tea.NewProgram(newBrowserModel(source, entries), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
