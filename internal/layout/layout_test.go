package layout

import (
	"errors"
	"reflect"
	"testing"
)

func TestRows(t *testing.T) {
	tests := []struct {
		name   string
		items  []int
		perRow int
		want   [][]int
	}{
		{"empty", nil, 3, nil},
		{"exact", []int{1, 2, 3, 4}, 2, [][]int{{1, 2}, {3, 4}}},
		{"partial last row", []int{1, 2, 3, 4, 5}, 2, [][]int{{1, 2}, {3, 4}, {5}}},
		{"wider than input", []int{1, 2}, 6, [][]int{{1, 2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Rows(tt.items, tt.perRow)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Rows = %v, want %v", got, tt.want)
			}
			if c := Count(len(tt.items), tt.perRow); c != len(tt.want) {
				t.Errorf("Count = %d, want %d", c, len(tt.want))
			}
		})
	}
}

func TestRows_RejectsZeroWidth(t *testing.T) {
	_, err := Rows([]string{"a"}, 0)
	if !errors.Is(err, ErrColumnsPerRow) {
		t.Fatalf("expected ErrColumnsPerRow, got %v", err)
	}
}

func TestRows_DoesNotAlias(t *testing.T) {
	items := []int{1, 2, 3}
	rows, _ := Rows(items, 2)
	rows[0] = append(rows[0], 99)
	if items[2] != 3 {
		t.Errorf("appending to a row overwrote the input: %v", items)
	}
}
