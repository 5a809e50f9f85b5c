package chart

import (
	"gonum.org/v1/plot"

	"github.com/unbound-force/edareport/internal/dataset"
	"github.com/unbound-force/edareport/internal/theme"
)

// tileAxisFontSize is the tick and label size inside composite cells.
const tileAxisFontSize = 7

// GridOptions configures Pairplot, Histoplot, Boxplot and Densityplot.
// Zero values take each builder's defaults.
type GridOptions struct {
	// Title replaces the default title.
	Title string `yaml:"title,omitempty" json:"title,omitempty"`

	// Include and Exclude filter the table's numeric columns, which
	// are always taken in table order.
	Include []string `yaml:"include,omitempty" json:"include,omitempty"`
	Exclude []string `yaml:"exclude,omitempty" json:"exclude,omitempty"`

	// MaxPlots caps the number of cells: pairs for Pairplot, columns
	// for the others.
	MaxPlots int `yaml:"max_plots,omitempty" json:"max_plots,omitempty"`

	ColumnsPerRow int `yaml:"columns_per_row,omitempty" json:"columns_per_row,omitempty"`

	// Width and Height size each cell in pixels.
	Width  int `yaml:"width,omitempty" json:"width,omitempty"`
	Height int `yaml:"height,omitempty" json:"height,omitempty"`

	// BinStep sets the histogram bin width. Histoplot only.
	BinStep float64 `yaml:"bin_step,omitempty" json:"bin_step,omitempty"`
}

type gridDefaults struct {
	title  string
	perRow int
	width  int
	height int
}

func (o GridOptions) resolve(d gridDefaults) GridOptions {
	if o.Title == "" {
		o.Title = d.title
	}
	if o.ColumnsPerRow == 0 {
		o.ColumnsPerRow = d.perRow
	}
	if o.Width <= 0 {
		o.Width = d.width
	}
	if o.Height <= 0 {
		o.Height = d.height
	}
	return o
}

// columns returns the selected numeric columns, capped at MaxPlots
// unless pairs is set.
func (o GridOptions) columns(t *dataset.Table, pairs bool) []string {
	sel := dataset.Selection{Include: o.Include, Exclude: o.Exclude}
	if !pairs {
		sel.MaxCount = o.MaxPlots
	}
	return sel.Filter(t, dataset.Numeric)
}

// Pairplot scatters every selected numeric column against every other,
// self-pairs included. Cells run row-major with the y column in the
// outer loop. Defaults: 6 per row, 100x100 cells, point radius 1,
// opacity 0.8.
func Pairplot(t *dataset.Table, opts GridOptions) (*Composite, error) {
	o := opts.resolve(gridDefaults{"Pairplot of Numerical Features", 6, 100, 100})
	cols := o.columns(t, true)

	var tiles []tile
	for _, ycol := range cols {
		for _, xcol := range cols {
			if o.MaxPlots > 0 && len(tiles) == o.MaxPlots {
				break
			}
			tiles = append(tiles, func(th theme.Theme) (*plot.Plot, error) {
				xs, ys, err := t.Pairs(xcol, ycol)
				if err != nil {
					return nil, err
				}
				p, err := scatterPlot(th, xs, ys, px(1), 0.8, tileAxisFontSize)
				if err != nil {
					return nil, err
				}
				p.X.Label.Text = xcol
				p.Y.Label.Text = ycol
				return p, nil
			})
		}
	}
	return newComposite(o.Title, tiles, o.ColumnsPerRow, o.Width, o.Height)
}

// Histoplot draws one histogram per selected numeric column. BinStep
// fixes the bin width; otherwise bins are automatic. Defaults: 4 per
// row, 200x150 cells, opacity 0.75.
func Histoplot(t *dataset.Table, opts GridOptions) (*Composite, error) {
	o := opts.resolve(gridDefaults{"Histogram of Numerical Features", 4, 200, 150})
	return perColumn(t, o, func(th theme.Theme, col string, vals []float64) (*plot.Plot, error) {
		p, err := histogramPlot(th, vals, binCount(vals, o.BinStep), 0.75, tileAxisFontSize)
		if err != nil {
			return nil, err
		}
		p.X.Label.Text = col
		p.Y.Label.Text = "count"
		return p, nil
	})
}

// Boxplot draws one box plot per selected numeric column. Defaults: 4
// per row, 180x150 cells.
func Boxplot(t *dataset.Table, opts GridOptions) (*Composite, error) {
	o := opts.resolve(gridDefaults{"Boxplot of Numerical Features", 4, 180, 150})
	return perColumn(t, o, func(th theme.Theme, col string, vals []float64) (*plot.Plot, error) {
		return boxPlot(th, col, vals, px(float64(o.Width)/4), tileAxisFontSize)
	})
}

// Densityplot draws a filled kernel density estimate per selected
// numeric column. Defaults: 4 per row, 150x150 cells, fill opacity 0.6.
func Densityplot(t *dataset.Table, opts GridOptions) (*Composite, error) {
	o := opts.resolve(gridDefaults{"Density Plot of Numerical Features", 4, 150, 150})
	return perColumn(t, o, func(th theme.Theme, col string, vals []float64) (*plot.Plot, error) {
		p, err := densityPlot(th, vals, 0.6, tileAxisFontSize)
		if err != nil {
			return nil, err
		}
		p.X.Label.Text = col
		p.Y.Label.Text = "density"
		return p, nil
	})
}

func perColumn(t *dataset.Table, o GridOptions, draw func(th theme.Theme, col string, vals []float64) (*plot.Plot, error)) (*Composite, error) {
	cols := o.columns(t, false)
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
			return draw(th, col, vals)
		}
	}
	return newComposite(o.Title, tiles, o.ColumnsPerRow, o.Width, o.Height)
}
