// Package dataset holds the in-memory tables that reports are built
// from, along with column-kind inference, column selection and
// per-column summaries.
package dataset

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind is the inferred kind of a column.
type Kind string

// Column kinds.
const (
	Numeric     Kind = "numeric"
	Categorical Kind = "categorical"
)

// ErrUnknownColumn is returned when a column name does not exist in a
// table.
var ErrUnknownColumn = errors.New("unknown column")

// missingTokens are compared case-insensitively after trimming.
var missingTokens = map[string]bool{
	"":     true,
	"na":   true,
	"nan":  true,
	"null": true,
	"none": true,
}

// IsMissing reports whether a raw cell holds no value.
func IsMissing(s string) bool {
	return missingTokens[strings.ToLower(strings.TrimSpace(s))]
}

// Table is a rectangular set of named string columns. A Table is
// immutable after construction.
type Table struct {
	name    string
	columns []string
	index   map[string]int
	rows    [][]string
	kinds   []Kind
}

// New builds a Table from column names and rows. Every row must have
// exactly len(columns) cells and column names must be unique and
// non-empty.
func New(name string, columns []string, rows [][]string) (*Table, error) {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if c == "" {
			return nil, fmt.Errorf("column %d has an empty name", i)
		}
		if _, dup := index[c]; dup {
			return nil, fmt.Errorf("duplicate column %q", c)
		}
		index[c] = i
	}
	for r, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("row %d has %d cells, want %d", r+1, len(row), len(columns))
		}
	}

	t := &Table{
		name:    name,
		columns: append([]string(nil), columns...),
		index:   index,
		rows:    rows,
		kinds:   make([]Kind, len(columns)),
	}
	for c := range columns {
		t.kinds[c] = inferKind(rows, c)
	}
	return t, nil
}

// inferKind returns Numeric when every non-missing cell parses as a
// float and at least one such cell exists.
func inferKind(rows [][]string, col int) Kind {
	seen := false
	for _, row := range rows {
		cell := row[col]
		if IsMissing(cell) {
			continue
		}
		if _, err := strconv.ParseFloat(strings.TrimSpace(cell), 64); err != nil {
			return Categorical
		}
		seen = true
	}
	if !seen {
		return Categorical
	}
	return Numeric
}

// Name returns the dataset name the table was loaded under.
func (t *Table) Name() string { return t.name }

// Columns returns the column names in table order.
func (t *Table) Columns() []string { return append([]string(nil), t.columns...) }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Cell returns the raw cell at (row, col). Out-of-range positions
// yield "".
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.rows) || col < 0 || col >= len(t.columns) {
		return ""
	}
	return t.rows[row][col]
}

// Index returns the position of a named column.
func (t *Table) Index(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// Has reports whether the table has a column with the given name.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Kind returns the inferred kind of a named column.
func (t *Table) Kind(name string) (Kind, error) {
	i, ok := t.index[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	return t.kinds[i], nil
}

// ColumnsOfKind returns the columns of kind k in table order.
func (t *Table) ColumnsOfKind(k Kind) []string {
	var out []string
	for i, c := range t.columns {
		if t.kinds[i] == k {
			out = append(out, c)
		}
	}
	return out
}

// Values returns the non-missing raw values of a column in row order.
func (t *Table) Values(name string) ([]string, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	out := make([]string, 0, len(t.rows))
	for _, row := range t.rows {
		if IsMissing(row[i]) {
			continue
		}
		out = append(out, strings.TrimSpace(row[i]))
	}
	return out, nil
}

// Floats returns the finite numeric values of a column, skipping
// missing and unparsable cells.
func (t *Table) Floats(name string) ([]float64, error) {
	vals, err := t.Values(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if f, ok := finite(v); ok {
			out = append(out, f)
		}
	}
	return out, nil
}

// Pairs returns the rows where both columns hold finite numbers, as
// parallel slices.
func (t *Table) Pairs(xcol, ycol string) ([]float64, []float64, error) {
	xi, ok := t.index[xcol]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownColumn, xcol)
	}
	yi, ok := t.index[ycol]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownColumn, ycol)
	}
	var xs, ys []float64
	for _, row := range t.rows {
		x, okx := finite(row[xi])
		y, oky := finite(row[yi])
		if okx && oky {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	return xs, ys, nil
}

func finite(cell string) (float64, bool) {
	if IsMissing(cell) {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// Head returns a table holding the first n rows. n < 0 or n beyond the
// row count returns the receiver.
func (t *Table) Head(n int) *Table {
	if n < 0 || n >= len(t.rows) {
		return t
	}
	h := *t
	h.rows = t.rows[:n]
	return &h
}
