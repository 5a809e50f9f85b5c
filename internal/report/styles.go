package report

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/unbound-force/edareport/internal/fragment"
)

// Styles defines the visual theme for terminal outline output.
// Lipgloss automatically degrades to no-color when output is not a TTY.
type Styles struct {
	// Header is used for the report path line.
	Header lipgloss.Style

	// SubHeader is used for secondary information lines.
	SubHeader lipgloss.Style

	// Structure through Composite color-code fragment families.
	Structure lipgloss.Style
	Content   lipgloss.Style
	CardGrid  lipgloss.Style
	Composite lipgloss.Style

	// TableHeader styles the header row of tables.
	TableHeader lipgloss.Style

	// TableCell styles regular table cells.
	TableCell lipgloss.Style

	// SummaryLabel styles summary line labels.
	SummaryLabel lipgloss.Style

	// Border is used for table borders.
	Border lipgloss.Style

	// Muted is used for de-emphasized text.
	Muted lipgloss.Style
}

// DefaultStyles returns the default color scheme for terminal output.
func DefaultStyles() Styles {
	return Styles{
		Header:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		SubHeader: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),

		Structure: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Content:   lipgloss.NewStyle().Foreground(lipgloss.Color("75")),
		CardGrid:  lipgloss.NewStyle().Foreground(lipgloss.Color("40")),
		Composite: lipgloss.NewStyle().Foreground(lipgloss.Color("208")),

		TableHeader: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		TableCell:   lipgloss.NewStyle().PaddingRight(1),

		SummaryLabel: lipgloss.NewStyle().Bold(true).Width(14),

		Border: lipgloss.NewStyle().Foreground(lipgloss.Color("63")),

		Muted: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

// FamilyStyle returns the style for a fragment family name.
func (s Styles) FamilyStyle(family string) lipgloss.Style {
	switch fragment.Family(family) {
	case fragment.Structure:
		return s.Structure
	case fragment.Content:
		return s.Content
	case fragment.CardGrid:
		return s.CardGrid
	case fragment.Composite:
		return s.Composite
	default:
		return s.Muted
	}
}
