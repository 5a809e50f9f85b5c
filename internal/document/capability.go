package document

import (
	"html/template"
	"reflect"

	"github.com/unbound-force/edareport/internal/theme"
)

// Tabular is anything AddDataframe can render as a table.
type Tabular interface {
	// Columns returns the header names in display order.
	Columns() []string
	// Len returns the number of rows.
	Len() int
	// Cell returns the raw text at (row, col).
	Cell(row, col int) string
}

// Figure is anything AddChart can embed.
type Figure interface {
	// Title is the figure's title, used for the document outline.
	Title() string
	// ApplyTheme restyles the figure before it is serialized.
	ApplyTheme(theme.Theme)
	// EmbeddableHTML returns an HTML snippet that displays the figure
	// without external dependencies.
	EmbeddableHTML() (template.HTML, error)
}

// isNil reports whether v is nil or an interface holding a nil pointer.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func:
		return rv.IsNil()
	}
	return false
}
