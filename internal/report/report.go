// Package report assembles exploratory data analysis reports. A Report
// is a document builder plus the chart operations that turn table
// columns into card grids and composite figures, and this package also
// formats report outlines for the terminal and as JSON.
package report

import (
	"context"
	"errors"
	"fmt"
	"html/template"

	"github.com/unbound-force/edareport/internal/browser"
	"github.com/unbound-force/edareport/internal/chart"
	"github.com/unbound-force/edareport/internal/dataset"
	"github.com/unbound-force/edareport/internal/document"
	"github.com/unbound-force/edareport/internal/fragment"
)

// Report is a document under construction. Like the builder it embeds,
// it is not safe for concurrent use.
type Report struct {
	*document.Builder

	// Open is used by static grids in Show mode. Nil uses browser.Open.
	Open browser.Opener
}

// New creates the document at path. See document.New.
func New(ctx context.Context, meta document.Meta, path string, opts document.Options) (*Report, error) {
	b, err := document.New(ctx, meta, path, opts)
	if err != nil {
		return nil, err
	}
	return &Report{Builder: b}, nil
}

// GridOptions configures the card-grid operations.
type GridOptions struct {
	// Title heads the grid. Empty omits the header.
	Title string `yaml:"title,omitempty" json:"title,omitempty"`

	// Selection picks the columns. Include names are used verbatim.
	Selection dataset.Selection `yaml:",inline" json:"selection"`

	// MaxCategories keeps the top categories of each column. Zero
	// means dataset.DefaultMaxCategories. Count and donut grids only.
	MaxCategories int `yaml:"max_categories,omitempty" json:"max_categories,omitempty"`

	// Width and Height size each chart in pixels.
	Width  int `yaml:"width,omitempty" json:"width,omitempty"`
	Height int `yaml:"height,omitempty" json:"height,omitempty"`

	// Class is the card width class. Empty uses the theme's class for
	// the grid's column kind.
	Class string `yaml:"class,omitempty" json:"class,omitempty"`

	// ReturnHTML returns the grid instead of appending it.
	ReturnHTML bool `yaml:"-" json:"-"`
}

// Countplot appends one percentage bar chart per categorical column.
func (r *Report) Countplot(t *dataset.Table, opts GridOptions) (string, error) {
	return r.cardGrid(fragment.CountGrid, t, dataset.Categorical, opts, func(col string) (document.Figure, error) {
		freq, err := t.Frequencies(col, opts.MaxCategories)
		if err != nil {
			return nil, err
		}
		return chart.NewCount(col, freq, opts.Width, opts.Height), nil
	})
}

// Donut appends one donut chart per categorical column.
func (r *Report) Donut(t *dataset.Table, opts GridOptions) (string, error) {
	return r.cardGrid(fragment.DonutGrid, t, dataset.Categorical, opts, func(col string) (document.Figure, error) {
		freq, err := t.Frequencies(col, opts.MaxCategories)
		if err != nil {
			return nil, err
		}
		return chart.NewDonut(col, freq, opts.Width, opts.Height), nil
	})
}

// Histogram appends one histogram per numeric column.
func (r *Report) Histogram(t *dataset.Table, opts GridOptions) (string, error) {
	return r.cardGrid(fragment.HistogramGrid, t, dataset.Numeric, opts, func(col string) (document.Figure, error) {
		vals, err := t.Floats(col)
		if err != nil {
			return nil, err
		}
		return chart.NewHistogram(col, vals, opts.Width, opts.Height), nil
	})
}

// Box appends one box plot per numeric column.
func (r *Report) Box(t *dataset.Table, opts GridOptions) (string, error) {
	return r.cardGrid(fragment.BoxGrid, t, dataset.Numeric, opts, func(col string) (document.Figure, error) {
		vals, err := t.Floats(col)
		if err != nil {
			return nil, err
		}
		return chart.NewBox(col, vals, opts.Width, opts.Height), nil
	})
}

// Violin appends one violin plot per numeric column.
func (r *Report) Violin(t *dataset.Table, opts GridOptions) (string, error) {
	return r.cardGrid(fragment.ViolinGrid, t, dataset.Numeric, opts, func(col string) (document.Figure, error) {
		vals, err := t.Floats(col)
		if err != nil {
			return nil, err
		}
		return chart.NewViolin(col, vals, opts.Width, opts.Height), nil
	})
}

// cardGrid renders one themed chart card per selected column and
// appends them as a single row under the optional title. An empty
// selection yields the title alone.
func (r *Report) cardGrid(kind fragment.Kind, t *dataset.Table, k dataset.Kind, opts GridOptions, build func(col string) (document.Figure, error)) (string, error) {
	op := string(kind)
	if t == nil {
		return "", r.fail(document.ErrTypeMismatch, op, errors.New("table is nil"))
	}
	cols, err := opts.Selection.Resolve(t, k)
	if err != nil {
		return "", r.fail(document.ErrInvalidArgument, op, err)
	}
	class := opts.Class
	if class == "" {
		class = r.Theme().NumericClass
		if k == dataset.Categorical {
			class = r.Theme().CategoricalClass
		}
	}

	cards := make([]document.GridCard, 0, len(cols))
	for _, col := range cols {
		fig, err := build(col)
		if err != nil {
			return "", r.fail(document.ErrInvalidArgument, op, err)
		}
		fig.ApplyTheme(r.Theme())
		body, err := fig.EmbeddableHTML()
		if err != nil {
			return "", r.fail(document.ErrInvalidArgument, op, fmt.Errorf("column %q: %w", col, err))
		}
		cards = append(cards, document.GridCard{Class: class, Body: body})
	}
	r.Logger().Debug("rendered card grid", "kind", kind, "cards", len(cards))

	html, err := document.Grid(opts.Title, cards)
	if err != nil {
		return "", r.fail(document.ErrIO, op, err)
	}
	if opts.ReturnHTML {
		return html, nil
	}
	return "", r.AppendFragment(kind, opts.Title, len(cards), html)
}

// StaticOptions configures the static-layout grids.
type StaticOptions struct {
	chart.GridOptions `yaml:",inline"`

	// ReturnHTML returns the embeddable figure instead of appending it.
	ReturnHTML bool `yaml:"-" json:"-"`

	// Show opens the figure in a browser instead of appending it and
	// returns the path of the page it wrote.
	Show bool `yaml:"-" json:"-"`
}

// Pairplot scatters every selected numeric column against every other.
func (r *Report) Pairplot(ctx context.Context, t *dataset.Table, opts StaticOptions) (string, error) {
	return r.static(ctx, fragment.PairGrid, chart.Pairplot, t, opts)
}

// Histoplot draws a histogram per selected numeric column in one figure.
func (r *Report) Histoplot(ctx context.Context, t *dataset.Table, opts StaticOptions) (string, error) {
	return r.static(ctx, fragment.HistoGrid, chart.Histoplot, t, opts)
}

// Boxplot draws a box plot per selected numeric column in one figure.
func (r *Report) Boxplot(ctx context.Context, t *dataset.Table, opts StaticOptions) (string, error) {
	return r.static(ctx, fragment.BoxplotGrid, chart.Boxplot, t, opts)
}

// Densityplot draws a density estimate per selected numeric column in
// one figure.
func (r *Report) Densityplot(ctx context.Context, t *dataset.Table, opts StaticOptions) (string, error) {
	return r.static(ctx, fragment.DensityGrid, chart.Densityplot, t, opts)
}

type staticBuilder func(*dataset.Table, chart.GridOptions) (*chart.Composite, error)

func (r *Report) static(ctx context.Context, kind fragment.Kind, build staticBuilder, t *dataset.Table, opts StaticOptions) (string, error) {
	op := string(kind)
	if t == nil {
		return "", r.fail(document.ErrTypeMismatch, op, errors.New("table is nil"))
	}
	c, err := build(t, opts.GridOptions)
	if err != nil {
		return "", r.fail(document.ErrInvalidArgument, op, err)
	}
	c.ApplyTheme(r.Theme())

	if opts.Show {
		open := r.Open
		if open == nil {
			open = browser.Open
		}
		path, err := chart.Show(ctx, c, open)
		if err != nil {
			return path, r.fail(document.ErrIO, op, err)
		}
		r.Logger().Info("opened figure", "title", c.Title(), "path", path)
		return path, nil
	}

	body, err := c.EmbeddableHTML()
	if err != nil {
		return "", r.fail(document.ErrInvalidArgument, op, err)
	}
	if opts.ReturnHTML {
		return string(body), nil
	}
	html, err := document.Column(card(body), false)
	if err != nil {
		return "", r.fail(document.ErrIO, op, err)
	}
	return "", r.AppendFragment(kind, c.Title(), c.Len(), html)
}

func card(body template.HTML) string {
	return `<div class="card">` + string(body) + `</div>`
}

func (r *Report) fail(kind error, op string, err error) error {
	return &document.Error{Kind: kind, Op: op, Path: r.Path(), Err: err}
}
