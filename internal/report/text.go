package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/unbound-force/edareport/internal/fragment"
)

// WriteText writes a report outline as a styled table followed by a
// per-family summary. Output degrades to plain text for pipes and CI.
func WriteText(w io.Writer, o fragment.Outline) error {
	s := DefaultStyles()

	if o.Metadata.Path != "" {
		fmt.Fprintln(w, s.Header.Render(fmt.Sprintf("=== %s ===", o.Metadata.Path)))
	}
	if len(o.Entries) == 0 {
		fmt.Fprintln(w, s.Muted.Render("    No fragments."))
		return nil
	}

	// Budget: 80 cols. Borders and padding take 16, leaving 64 for
	// "#"=3, KIND=11, FAMILY=10, CARDS=5, BYTES=8 and TITLE=27.
	const maxTitle = 27
	rows := make([][]string, 0, len(o.Entries))
	for _, e := range o.Entries {
		title := e.Title
		if e.Kind == fragment.Section && e.Level > 0 {
			title = strings.Repeat("  ", e.Level-1) + title
		}
		title = Truncate(title, maxTitle)
		cards := ""
		if e.Cards > 0 {
			cards = strconv.Itoa(e.Cards)
		}
		rows = append(rows, []string{
			strconv.Itoa(e.Index),
			string(e.Kind),
			string(e.Family),
			title,
			cards,
			humanBytes(e.Bytes),
		})
	}

	t := table.New().
		Width(80).
		Border(lipgloss.NormalBorder()).
		BorderStyle(s.Border).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.TableHeader
			}
			if col == 2 && row >= 0 && row < len(rows) {
				return s.FamilyStyle(rows[row][2])
			}
			return s.TableCell
		}).
		Headers("#", "KIND", "FAMILY", "TITLE", "CARDS", "BYTES").
		Rows(rows...)

	fmt.Fprintln(w, t)

	counts := o.CountByFamily()
	var parts []string
	for _, f := range []fragment.Family{
		fragment.Structure, fragment.Content,
		fragment.CardGrid, fragment.Composite,
	} {
		if c, ok := counts[f]; ok {
			parts = append(parts, s.FamilyStyle(string(f)).Render(fmt.Sprintf("%s: %d", f, c)))
		}
	}
	fmt.Fprintf(w, "%s %s\n", s.SummaryLabel.Render("Families:"), strings.Join(parts, ", "))
	fmt.Fprintf(w, "%s\n", s.Header.Render(fmt.Sprintf(
		"%d fragment(s), %s", len(o.Entries), humanBytes(o.TotalBytes()))))
	for _, warn := range o.Metadata.Warnings {
		fmt.Fprintln(w, s.Muted.Render("    warning: "+warn))
	}
	return nil
}

// Truncate shortens s to at most n runes, ending in "..." when cut.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:max(n-3, 0)]) + "..."
}

func humanBytes(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
