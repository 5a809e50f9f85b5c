package chart

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"

	"github.com/google/uuid"
	"gonum.org/v1/plot"

	"github.com/unbound-force/edareport/internal/dataset"
	"github.com/unbound-force/edareport/internal/theme"
)

// ErrNoNumericColumns is returned when a figure needs a numeric column
// and the table has none.
var ErrNoNumericColumns = errors.New("table has no numeric columns")

// themed is a figure that can be restyled.
type themed interface {
	figure
	ApplyTheme(theme.Theme)
}

// Selectable shows one of several figures at a time, picked from a
// drop-down above it.
type Selectable struct {
	labels   []string
	figures  []themed
	selected int
}

// Title returns the selected figure's title.
func (s *Selectable) Title() string { return s.figures[s.selected].Title() }

// Selected returns the label of the initially shown figure.
func (s *Selectable) Selected() string { return s.labels[s.selected] }

// ApplyTheme restyles every figure.
func (s *Selectable) ApplyTheme(t theme.Theme) {
	for _, f := range s.figures {
		f.ApplyTheme(t)
	}
}

var selectTmpl = template.Must(template.New("select").Parse(
	`<div class="chart-switch" id="chart-{{.ID}}">` +
		`<select class="chart-select" onchange="var v=this.value;this.parentNode.querySelectorAll('[data-column]').forEach(function(el){el.style.display=el.getAttribute('data-column')===v?'':'none';});">` +
		`{{range .Options}}<option value="{{.Label}}"{{if .Selected}} selected{{end}}>{{.Label}}</option>{{end}}` +
		`</select>` +
		`{{range .Options}}<div data-column="{{.Label}}"{{if not .Selected}} style="display:none"{{end}}>{{.Body}}</div>{{end}}` +
		`</div>`))

// EmbeddableHTML renders every figure, hiding all but the selected one.
func (s *Selectable) EmbeddableHTML() (template.HTML, error) {
	type option struct {
		Label    string
		Selected bool
		Body     template.HTML
	}
	opts := make([]option, len(s.figures))
	for i, f := range s.figures {
		body, err := f.EmbeddableHTML()
		if err != nil {
			return "", err
		}
		opts[i] = option{Label: s.labels[i], Selected: i == s.selected, Body: body}
	}
	var buf bytes.Buffer
	err := selectTmpl.Execute(&buf, struct {
		ID      string
		Options []option
	}{uuid.NewString(), opts})
	if err != nil {
		return "", fmt.Errorf("embedding chart: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// FigureOptions configures HistogramFigure and ViolinFigure.
type FigureOptions struct {
	// Column is shown first. Empty means the first numeric column.
	Column string `yaml:"column,omitempty" json:"column,omitempty"`

	// Bins fixes the histogram bin count. HistogramFigure only.
	Bins int `yaml:"bins,omitempty" json:"bins,omitempty"`

	Width  int `yaml:"width,omitempty" json:"width,omitempty"`
	Height int `yaml:"height,omitempty" json:"height,omitempty"`
}

// HistogramFigure draws "Distribution of <column>" for every numeric
// column, showing opts.Column first and switching with a drop-down.
func HistogramFigure(t *dataset.Table, opts FigureOptions) (*Selectable, error) {
	return selectable(t, opts, func(col string, vals []float64) themed {
		h := newHistogram("Distribution of "+col, col, vals, opts.Width, opts.Height)
		h.SetBins(opts.Bins)
		return h
	})
}

// ViolinFigure draws "Violin Plot of <column>" for every numeric column
// with its box and mean line, switching with a drop-down.
func ViolinFigure(t *dataset.Table, opts FigureOptions) (*Selectable, error) {
	return selectable(t, opts, func(col string, vals []float64) themed {
		return NewViolin(col, vals, opts.Width, opts.Height)
	})
}

func selectable(t *dataset.Table, opts FigureOptions, build func(col string, vals []float64) themed) (*Selectable, error) {
	cols := t.ColumnsOfKind(dataset.Numeric)
	if len(cols) == 0 {
		return nil, ErrNoNumericColumns
	}
	if opts.Height <= 0 {
		opts.Height = DefaultFigureHeight
	}
	s := &Selectable{}
	found := opts.Column == ""
	for i, col := range cols {
		vals, err := t.Floats(col)
		if err != nil {
			return nil, err
		}
		if col == opts.Column {
			s.selected = i
			found = true
		}
		s.labels = append(s.labels, col)
		s.figures = append(s.figures, build(col, vals))
	}
	if !found {
		return nil, fmt.Errorf("column %q is not a numeric column", opts.Column)
	}
	return s, nil
}

// SubplotOptions configures HistogramSubplots and ViolinSubplots.
type SubplotOptions struct {
	// MaxColsPerRow caps the plots per row. Zero means 3.
	MaxColsPerRow int `yaml:"max_cols_per_row,omitempty" json:"max_cols_per_row,omitempty"`

	// Width is the total width in pixels. Zero means 960.
	Width int `yaml:"width,omitempty" json:"width,omitempty"`

	// RowHeight is the height of each row. Zero means 300.
	RowHeight int `yaml:"row_height,omitempty" json:"row_height,omitempty"`
}

// HistogramSubplots draws a histogram of every numeric column in one
// figure, each titled with its column name.
func HistogramSubplots(t *dataset.Table, opts SubplotOptions) (*Composite, error) {
	return subplots(t, "Distribution of All Numeric Features", opts, func(th theme.Theme, vals []float64) (*plot.Plot, error) {
		return histogramPlot(th, vals, binCount(vals, 0), 1, th.AxisFontSize)
	})
}

// ViolinSubplots draws a violin of every numeric column in one figure.
func ViolinSubplots(t *dataset.Table, opts SubplotOptions) (*Composite, error) {
	return subplots(t, "Violin Plot of All Numeric Features", opts, func(th theme.Theme, vals []float64) (*plot.Plot, error) {
		return violinPlot(th, "", vals, th.AxisFontSize)
	})
}

func subplots(t *dataset.Table, title string, opts SubplotOptions, draw func(th theme.Theme, vals []float64) (*plot.Plot, error)) (*Composite, error) {
	if opts.MaxColsPerRow == 0 {
		opts.MaxColsPerRow = 3
	}
	if opts.Width <= 0 {
		opts.Width = 960
	}
	if opts.RowHeight <= 0 {
		opts.RowHeight = DefaultNumericHeight
	}
	cols := t.ColumnsOfKind(dataset.Numeric)
	perRow := min(max(len(cols), 1), opts.MaxColsPerRow)

	tiles := make([]tile, len(cols))
	for i, col := range cols {
		tiles[i] = func(th theme.Theme) (*plot.Plot, error) {
			vals, err := t.Floats(col)
			if err != nil {
				return nil, err
			}
			if len(vals) == 0 {
				return nil, ErrNoData
			}
			p, err := draw(th, vals)
			if err != nil {
				return nil, err
			}
			p.Title.Text = col
			return p, nil
		}
	}
	cellW := opts.Width
	if perRow > 0 {
		cellW = opts.Width / perRow
	}
	return newComposite(title, tiles, perRow, cellW, opts.RowHeight)
}
