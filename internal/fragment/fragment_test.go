package fragment

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestGenerateID_Deterministic(t *testing.T) {
	id1 := GenerateID(Section, "Intro", 1)
	id2 := GenerateID(Section, "Intro", 1)

	if id1 != id2 {
		t.Errorf("GenerateID not deterministic: %q != %q", id1, id2)
	}
}

func TestGenerateID_Format(t *testing.T) {
	id := GenerateID(Banner, "Sales", 0)

	if len(id) != 11 { // "fr-" + 8 hex chars
		t.Errorf("expected ID length 11, got %d: %q", len(id), id)
	}
	if id[:3] != "fr-" {
		t.Errorf("expected ID to start with 'fr-', got %q", id)
	}
}

func TestGenerateID_UniqueForDifferentInputs(t *testing.T) {
	id1 := GenerateID(Section, "Intro", 1)
	id2 := GenerateID(Markdown, "Intro", 1)
	id3 := GenerateID(Section, "Intro", 2)

	if id1 == id2 {
		t.Errorf("different kinds should produce different IDs")
	}
	if id1 == id3 {
		t.Errorf("different positions should produce different IDs")
	}
}

func TestFamilyOf_AllKindsHaveFamilies(t *testing.T) {
	all := []Kind{
		Banner, Section, Row, Column,
		Table, Markdown, Chart, Unknown,
		CountGrid, DonutGrid, HistogramGrid, BoxGrid, ViolinGrid,
		PairGrid, HistoGrid, BoxplotGrid, DensityGrid,
	}
	for _, k := range all {
		if _, ok := familyMap[k]; !ok {
			t.Errorf("kind %s has no family", k)
		}
	}
	if FamilyOf("mystery") != Content {
		t.Error("unknown kinds should default to content")
	}
	if !IsGrid(PairGrid) || !IsGrid(DonutGrid) || IsGrid(Table) {
		t.Error("IsGrid misclassified a kind")
	}
}

func TestOutline_Counts(t *testing.T) {
	o := Outline{Entries: []Entry{
		NewEntry(0, Banner, "T", 100),
		NewEntry(1, Section, "Intro", 40),
		NewEntry(2, CountGrid, "Categorical", 900),
	}}
	if o.TotalBytes() != 1040 {
		t.Errorf("TotalBytes = %d, want 1040", o.TotalBytes())
	}
	byFam := o.CountByFamily()
	if byFam[Structure] != 2 || byFam[CardGrid] != 1 {
		t.Errorf("CountByFamily = %v", byFam)
	}
}

func TestMetadata_MarshalJSON(t *testing.T) {
	m := Metadata{
		Version:   "dev",
		Path:      "report.html",
		Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Duration:  1500 * time.Millisecond,
	}
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	for _, want := range []string{`"duration_ms":1500`, `"timestamp":"2026-01-02T03:04:05Z"`, `"path":"report.html"`} {
		if !strings.Contains(s, want) {
			t.Errorf("expected %s in %s", want, s)
		}
	}
}
