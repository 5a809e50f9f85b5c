// Package layout partitions fragment sequences into display rows.
package layout

import (
	"errors"
	"fmt"
)

// ErrColumnsPerRow is returned when a row width is below one.
var ErrColumnsPerRow = errors.New("columns per row must be at least 1")

// Rows splits items into consecutive rows of perRow elements. The last
// row holds the remainder and may be shorter. Empty input yields no
// rows.
func Rows[T any](items []T, perRow int) ([][]T, error) {
	if perRow < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrColumnsPerRow, perRow)
	}
	var rows [][]T
	for start := 0; start < len(items); start += perRow {
		end := min(start+perRow, len(items))
		rows = append(rows, items[start:end:end])
	}
	return rows, nil
}

// Count returns how many rows Rows would produce.
func Count(n, perRow int) int {
	if perRow < 1 || n <= 0 {
		return 0
	}
	return (n + perRow - 1) / perRow
}
