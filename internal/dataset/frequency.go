package dataset

import (
	"fmt"
	"sort"
)

// DefaultMaxCategories is the number of categories kept per column
// when no limit is given.
const DefaultMaxCategories = 20

// Frequency is one row of a value-frequency table.
type Frequency struct {
	Value   string
	Count   int
	Percent float64
}

// Frequencies counts the non-missing values of a column, sorts them by
// descending count (ties keep first-seen order), keeps the top
// maxCategories and computes each kept value's percentage of the
// retained total. maxCategories <= 0 means DefaultMaxCategories.
func (t *Table) Frequencies(column string, maxCategories int) ([]Frequency, error) {
	vals, err := t.Values(column)
	if err != nil {
		return nil, err
	}
	return CountValues(vals, maxCategories), nil
}

// CountValues is Frequencies over an arbitrary value list.
func CountValues(vals []string, maxCategories int) []Frequency {
	if maxCategories <= 0 {
		maxCategories = DefaultMaxCategories
	}
	pos := map[string]int{}
	var freq []Frequency
	for _, v := range vals {
		i, ok := pos[v]
		if !ok {
			i = len(freq)
			pos[v] = i
			freq = append(freq, Frequency{Value: v})
		}
		freq[i].Count++
	}
	sort.SliceStable(freq, func(a, b int) bool { return freq[a].Count > freq[b].Count })
	if len(freq) > maxCategories {
		freq = freq[:maxCategories]
	}

	total := 0
	for _, f := range freq {
		total += f.Count
	}
	if total == 0 {
		return freq
	}
	for i := range freq {
		freq[i].Percent = 100 * float64(freq[i].Count) / float64(total)
	}
	return freq
}

// Label formats a frequency as "value (12.5%)".
func (f Frequency) Label() string {
	return fmt.Sprintf("%s (%.1f%%)", f.Value, f.Percent)
}
