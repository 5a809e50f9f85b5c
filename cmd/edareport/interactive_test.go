package main

import (
	"strings"
	"testing"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/unbound-force/edareport/internal/fragment"
)

func sampleOutline() fragment.Outline {
	return fragment.Outline{
		Entries: []fragment.Entry{
			fragment.NewEntry(0, fragment.Banner, "Sales", 900),
			{Index: 1, Kind: fragment.Section, Family: fragment.Structure, Title: "Overview", Level: 1},
			fragment.NewEntry(2, fragment.Table, "orders", 4000),
			{Index: 3, Kind: fragment.CountGrid, Family: fragment.CardGrid, Title: "Categorical", Cards: 3},
			{Index: 4, Kind: fragment.Section, Family: fragment.Structure, Title: "Distributions", Level: 2},
			{Index: 5, Kind: fragment.PairGrid, Family: fragment.Composite, Title: "Pairs", Cards: 4},
		},
		Metadata: fragment.Metadata{Path: "out/report.html", Warnings: []string{"violin \"Empty\" selected no columns"}},
	}
}

// TestRenderOutlineContent_Empty verifies that an empty outline reports
// zero fragments and says so.
func TestRenderOutlineContent_Empty(t *testing.T) {
	output := renderOutlineContent(fragment.Outline{})

	if !strings.Contains(output, "0 fragment(s)") {
		t.Errorf("expected output to contain '0 fragment(s)', got:\n%s", output)
	}
	if !strings.Contains(output, "No fragments found") {
		t.Errorf("expected output to contain 'No fragments found', got:\n%s", output)
	}
}

// TestRenderOutlineContent_GroupsBySection verifies that section titles
// become group headers and the fragments after them are listed.
func TestRenderOutlineContent_GroupsBySection(t *testing.T) {
	output := renderOutlineContent(sampleOutline())

	for _, want := range []string{
		"6 fragment(s), 2 grid(s)",
		"out/report.html",
		"=== Overview ===",
		"  === Distributions ===",
		"banner", "countplot", "pairplot",
		"Categorical",
		"warning: violin",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, output)
		}
	}
	if strings.Index(output, "Overview") > strings.Index(output, "Distributions") {
		t.Error("sections should appear in document order")
	}
}

// TestRenderOutlineContent_TitleTruncation verifies that titles longer
// than 40 characters are cut with "...".
func TestRenderOutlineContent_TitleTruncation(t *testing.T) {
	long := "a chart title that is clearly longer than forty characters"
	o := fragment.Outline{Entries: []fragment.Entry{fragment.NewEntry(0, fragment.Chart, long, 10)}}

	output := renderOutlineContent(o)
	if strings.Contains(output, long) {
		t.Error("expected long title to be truncated")
	}
	if !strings.Contains(output, long[:37]+"...") {
		t.Errorf("expected truncated title, got:\n%s", output)
	}
}

func TestRenderOutlineContent_MultiByteTitle(t *testing.T) {
	title := strings.Repeat("ü", 50)
	o := fragment.Outline{Entries: []fragment.Entry{fragment.NewEntry(0, fragment.Chart, title, 10)}}

	output := renderOutlineContent(o)
	if !utf8.ValidString(output) {
		t.Error("output is not valid UTF-8")
	}
	if !strings.Contains(output, strings.Repeat("ü", 37)+"...") {
		t.Errorf("expected a 40-rune title, got:\n%s", output)
	}
}

func TestGroupBySection(t *testing.T) {
	groups := groupBySection(sampleOutline().Entries)
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}
	if groups[0].heading != nil || len(groups[0].entries) != 1 {
		t.Errorf("leading group = %+v", groups[0])
	}
	if groups[1].heading.Title != "Overview" || len(groups[1].entries) != 2 {
		t.Errorf("second group = %+v", groups[1])
	}
}

func TestOutlineModel_Update(t *testing.T) {
	m := newOutlineModel(sampleOutline())
	if m.View() != "Initializing..." {
		t.Errorf("view before sizing = %q", m.View())
	}

	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = next.(outlineModel)
	if !m.ready {
		t.Fatal("model should be ready after a WindowSizeMsg")
	}
	if !strings.Contains(m.View(), "%") {
		t.Errorf("view should show scroll percent, got:\n%s", m.View())
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})
	if !next.(outlineModel).help.ShowAll {
		t.Error("? should toggle full help")
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}
