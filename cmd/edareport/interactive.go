package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/unbound-force/edareport/internal/fragment"
	"github.com/unbound-force/edareport/internal/report"
)

// keyMap defines keybindings for the interactive TUI.
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Quit     key.Binding
	Help     key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Quit, k.Help}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.Quit, k.Help},
	}
}

var defaultKeyMap = keyMap{
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("^/k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("v/j", "down")),
	PageUp:   key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
	PageDown: key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
	Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
}

// Styles for the TUI.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63")).
			MarginBottom(1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	tuiHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63"))

	tuiBorderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("63"))

	familyStyles = report.DefaultStyles()
)

// outlineModel is the Bubble Tea model for browsing a report outline.
type outlineModel struct {
	outline  fragment.Outline
	viewport viewport.Model
	help     help.Model
	keys     keyMap
	ready    bool
	content  string
}

func newOutlineModel(o fragment.Outline) outlineModel {
	return outlineModel{
		outline: o,
		help:    help.New(),
		keys:    defaultKeyMap,
		content: renderOutlineContent(o),
	}
}

// outlineGroup is a section heading and the fragments that follow it.
type outlineGroup struct {
	heading *fragment.Entry
	entries []fragment.Entry
}

func groupBySection(entries []fragment.Entry) []outlineGroup {
	var groups []outlineGroup
	cur := outlineGroup{}
	for i := range entries {
		e := entries[i]
		if e.Kind == fragment.Section {
			if cur.heading != nil || len(cur.entries) > 0 {
				groups = append(groups, cur)
			}
			cur = outlineGroup{heading: &entries[i]}
			continue
		}
		cur.entries = append(cur.entries, e)
	}
	if cur.heading != nil || len(cur.entries) > 0 {
		groups = append(groups, cur)
	}
	return groups
}

func renderOutlineContent(o fragment.Outline) string {
	var sb strings.Builder

	grids := 0
	for _, e := range o.Entries {
		if fragment.IsGrid(e.Kind) {
			grids++
		}
	}

	sb.WriteString(titleStyle.Render(
		fmt.Sprintf("Report Outline: %d fragment(s), %d grid(s)",
			len(o.Entries), grids)))
	sb.WriteString("\n\n")

	if o.Metadata.Path != "" {
		sb.WriteString(statusStyle.Render(o.Metadata.Path))
		sb.WriteString("\n\n")
	}

	if len(o.Entries) == 0 {
		sb.WriteString(statusStyle.Render("No fragments found."))
		sb.WriteString("\n")
		return sb.String()
	}

	for _, g := range groupBySection(o.Entries) {
		if g.heading != nil {
			indent := strings.Repeat("  ", max(g.heading.Level-1, 0))
			sb.WriteString(tuiHeaderStyle.Render(
				fmt.Sprintf("%s=== %s ===", indent, g.heading.Title)))
			sb.WriteString("\n")
		}
		if len(g.entries) == 0 {
			sb.WriteString(statusStyle.Render("    Empty section."))
			sb.WriteString("\n\n")
			continue
		}

		rows := make([][]string, 0, len(g.entries))
		families := make([]fragment.Family, 0, len(g.entries))
		for _, e := range g.entries {
			title := report.Truncate(e.Title, 40)
			cards := ""
			if e.Cards > 0 {
				cards = strconv.Itoa(e.Cards)
			}
			rows = append(rows, []string{
				strconv.Itoa(e.Index),
				string(e.Kind),
				title,
				cards,
			})
			families = append(families, e.Family)
		}

		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(tuiBorderStyle).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return tuiHeaderStyle
				}
				if col == 1 && row >= 0 && row < len(families) {
					return familyStyles.FamilyStyle(string(families[row]))
				}
				return lipgloss.NewStyle()
			}).
			Headers("#", "KIND", "TITLE", "CARDS").
			Rows(rows...)

		sb.WriteString(t.String())
		sb.WriteString("\n\n")
	}

	for _, w := range o.Metadata.Warnings {
		sb.WriteString(statusStyle.Render("warning: " + w))
		sb.WriteString("\n")
	}

	return sb.String()
}

func (m outlineModel) Init() tea.Cmd {
	return nil
}

func (m outlineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		footerHeight := 2

		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-footerHeight)
			m.viewport.SetContent(m.content)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - footerHeight
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m outlineModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	footer := statusStyle.Render(
		fmt.Sprintf(" %3.f%% ", m.viewport.ScrollPercent()*100)) +
		" " + m.help.View(m.keys)

	return m.viewport.View() + "\n" + footer
}

// runInteractiveOutline launches the Bubble Tea TUI for browsing a
// report outline.
func runInteractiveOutline(o fragment.Outline) error {
	model := newOutlineModel(o)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
