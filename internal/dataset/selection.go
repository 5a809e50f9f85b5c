package dataset

import "fmt"

// Selection narrows a table's columns to the ones a chart grid draws.
//
// Include always wins over Exclude. With neither set, every column of
// the requested kind is used. MaxCount, when positive, keeps the first
// MaxCount columns of the result.
type Selection struct {
	Include  []string `yaml:"include,omitempty" json:"include,omitempty"`
	Exclude  []string `yaml:"exclude,omitempty" json:"exclude,omitempty"`
	MaxCount int      `yaml:"max_count,omitempty" json:"max_count,omitempty"`
}

// Resolve returns the columns for a card grid. A non-empty Include is
// used verbatim in the given order and every name in it must exist in
// the table; otherwise the columns of kind k minus Exclude are used in
// table order.
func (s Selection) Resolve(t *Table, k Kind) ([]string, error) {
	var cols []string
	if len(s.Include) > 0 {
		for _, c := range s.Include {
			if !t.Has(c) {
				return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, c)
			}
			cols = append(cols, c)
		}
	} else {
		cols = without(t.ColumnsOfKind(k), s.Exclude)
	}
	return truncate(cols, s.MaxCount), nil
}

// Filter returns the columns of kind k kept by Include (when set) or
// not named by Exclude, always in table order. Unknown names are
// ignored. Static grids select this way.
func (s Selection) Filter(t *Table, k Kind) []string {
	cols := t.ColumnsOfKind(k)
	if len(s.Include) > 0 {
		keep := set(s.Include)
		var out []string
		for _, c := range cols {
			if keep[c] {
				out = append(out, c)
			}
		}
		cols = out
	} else {
		cols = without(cols, s.Exclude)
	}
	return truncate(cols, s.MaxCount)
}

func without(cols, exclude []string) []string {
	if len(exclude) == 0 {
		return cols
	}
	drop := set(exclude)
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		if !drop[c] {
			out = append(out, c)
		}
	}
	return out
}

func truncate(cols []string, n int) []string {
	if n > 0 && len(cols) > n {
		return cols[:n]
	}
	return cols
}

func set(names []string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}
