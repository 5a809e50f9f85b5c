// Package fragment defines the outline vocabulary for report documents:
// the kinds of fragment a report is built from, their families, and
// stable ID generation for outline entries.
package fragment

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"
)

// Kind enumerates the fragment kinds a builder appends.
type Kind string

// Structural fragments.
const (
	Banner  Kind = "banner"
	Section Kind = "section"
	Row     Kind = "row"
	Column  Kind = "column"
)

// Content fragments.
const (
	Table    Kind = "table"
	Markdown Kind = "markdown"
	Chart    Kind = "chart"
)

// Card-grid fragments, one card per selected column.
const (
	CountGrid     Kind = "countplot"
	DonutGrid     Kind = "donut"
	HistogramGrid Kind = "histogram"
	BoxGrid       Kind = "box"
	ViolinGrid    Kind = "violin"
)

// Static-layout fragments, one composite image per call.
const (
	PairGrid    Kind = "pairplot"
	HistoGrid   Kind = "histoplot"
	BoxplotGrid Kind = "boxplot"
	DensityGrid Kind = "densityplot"
)

// Unknown marks HTML that no builder method produced.
const Unknown Kind = "html"

// Family groups kinds for display.
type Family string

// Family constants.
const (
	Structure Family = "structure"
	Content   Family = "content"
	CardGrid  Family = "card-grid"
	Composite Family = "composite"
)

// Entry records one appended fragment.
type Entry struct {
	// ID is stable across runs that append the same fragments in the
	// same order. Generated from sha256(kind+title+index).
	ID string `json:"id"`

	// Index is the zero-based append position.
	Index int `json:"index"`

	// Kind is the builder operation that produced the fragment.
	Kind Kind `json:"kind"`

	// Family groups Kind for display.
	Family Family `json:"family"`

	// Title is the section text, chart title or grid title. Empty for
	// untitled fragments.
	Title string `json:"title,omitempty"`

	// Level is the section level (1-5). Zero for other kinds.
	Level int `json:"level,omitempty"`

	// Cards is the number of cards in a grid fragment.
	Cards int `json:"cards,omitempty"`

	// Bytes is the fragment length in bytes.
	Bytes int `json:"bytes"`
}

// NewEntry builds an Entry with its ID and Family filled in.
func NewEntry(index int, kind Kind, title string, size int) Entry {
	return Entry{
		ID:     GenerateID(kind, title, index),
		Index:  index,
		Kind:   kind,
		Family: FamilyOf(kind),
		Title:  title,
		Bytes:  size,
	}
}

// Metadata holds build run metadata.
type Metadata struct {
	Version   string        `json:"version"`
	Path      string        `json:"path"`
	Timestamp time.Time     `json:"-"`
	Duration  time.Duration `json:"-"`
	Warnings  []string      `json:"warnings"`
}

// MarshalJSON customizes JSON encoding to use duration_ms and
// ISO 8601 timestamp.
func (m Metadata) MarshalJSON() ([]byte, error) {
	type Alias Metadata
	ts := ""
	if !m.Timestamp.IsZero() {
		ts = m.Timestamp.UTC().Format(time.RFC3339)
	}
	return json.Marshal(&struct {
		Alias
		DurationMS int64  `json:"duration_ms"`
		Timestamp  string `json:"timestamp,omitempty"`
	}{
		Alias:      Alias(m),
		DurationMS: m.Duration.Milliseconds(),
		Timestamp:  ts,
	})
}

// Outline is the complete record of one report build.
type Outline struct {
	// Entries lists the fragments in document order.
	Entries []Entry `json:"fragments"`

	// Metadata contains run information.
	Metadata Metadata `json:"metadata"`
}

// TotalBytes sums the sizes of all entries.
func (o Outline) TotalBytes() int {
	n := 0
	for _, e := range o.Entries {
		n += e.Bytes
	}
	return n
}

// CountByFamily returns how many entries belong to each family.
func (o Outline) CountByFamily() map[Family]int {
	m := make(map[Family]int)
	for _, e := range o.Entries {
		m[e.Family]++
	}
	return m
}

// GenerateID produces a stable identifier for an outline entry. The ID
// is a sha256 hash truncated to 8 hex characters with an "fr-" prefix.
func GenerateID(kind Kind, title string, index int) string {
	input := fmt.Sprintf("%s:%s:%d", kind, title, index)
	hash := sha256.Sum256([]byte(input))
	return fmt.Sprintf("fr-%x", hash[:4])
}
