package chart

import (
	"errors"
	"fmt"
	"html/template"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/unbound-force/edareport/internal/theme"
)

// numeric holds what every single-column numeric figure draws.
type numeric struct {
	base
	column string
	values []float64
}

func (n *numeric) embedWith(build func(th theme.Theme, axis float64) (*plot.Plot, error)) (template.HTML, error) {
	if len(n.values) == 0 {
		return noData(n.title)
	}
	p, err := build(n.theme, n.theme.AxisFontSize)
	if errors.Is(err, ErrNoData) {
		return noData(n.title)
	}
	if err != nil {
		return "", fmt.Errorf("rendering %s: %w", n.title, err)
	}
	svg, err := renderSVG(n.width, n.height, func(dc draw.Canvas) {
		drawFramed(dc, p, n.title, n.theme, n.theme.NumericMargin)
	})
	return orNoData(n.title, svg, err)
}

// Histogram shows the distribution of one numeric column.
type Histogram struct {
	numeric
	bins    int
	opacity float64
}

// NewHistogram returns a histogram titled "Histogram of <column>". Bins
// are chosen automatically until SetBins is called.
func NewHistogram(column string, values []float64, width, height int) *Histogram {
	return newHistogram("Histogram of "+column, column, values, width, height)
}

func newHistogram(title, column string, values []float64, width, height int) *Histogram {
	return &Histogram{
		numeric: numeric{
			base:   newBase(title, width, height, DefaultNumericWidth, DefaultNumericHeight),
			column: column,
			values: values,
		},
		opacity: 1,
	}
}

// SetBins fixes the number of bins. n <= 0 restores automatic bins.
func (h *Histogram) SetBins(n int) { h.bins = n }

// EmbeddableHTML renders the histogram to an inline SVG.
func (h *Histogram) EmbeddableHTML() (template.HTML, error) {
	return h.embedWith(func(th theme.Theme, axis float64) (*plot.Plot, error) {
		bins := h.bins
		if bins <= 0 {
			bins = binCount(h.values, 0)
		}
		p, err := histogramPlot(th, h.values, bins, h.opacity, axis)
		if err != nil {
			return nil, err
		}
		p.X.Label.Text = h.column
		p.Y.Label.Text = "count"
		return p, nil
	})
}

func histogramPlot(th theme.Theme, values []float64, bins int, opacity, axis float64) (*plot.Plot, error) {
	if !finiteSpan(values) {
		return nil, ErrNoData
	}
	hist, err := plotter.NewHist(plotter.Values(values), bins)
	if err != nil {
		return nil, err
	}
	hist.FillColor = theme.WithAlpha(th.Color(0), opacity)
	hist.LineStyle.Color = th.BackgroundColor()
	hist.LineStyle.Width = vg.Points(0.5)

	p := newPlot(th, axis)
	p.Add(hist)
	p.Y.Min = 0
	return p, nil
}

// Box is a Tukey box plot of one numeric column.
type Box struct {
	numeric
}

// NewBox returns a box plot titled "Box Plot of <column>".
func NewBox(column string, values []float64, width, height int) *Box {
	return &Box{numeric{
		base:   newBase("Box Plot of "+column, width, height, DefaultNumericWidth, DefaultNumericHeight),
		column: column,
		values: values,
	}}
}

// EmbeddableHTML renders the box plot to an inline SVG.
func (b *Box) EmbeddableHTML() (template.HTML, error) {
	return b.embedWith(func(th theme.Theme, axis float64) (*plot.Plot, error) {
		return boxPlot(th, b.column, b.values, px(float64(b.width)/4), axis)
	})
}

func boxPlot(th theme.Theme, column string, values []float64, width vg.Length, axis float64) (*plot.Plot, error) {
	if !finiteSpan(values) {
		return nil, ErrNoData
	}
	bp, err := plotter.NewBoxPlot(width, 0, plotter.Values(values))
	if err != nil {
		return nil, err
	}
	c := th.Color(0)
	bp.FillColor = theme.WithAlpha(c, 0.5)
	bp.BoxStyle.Color = c
	bp.MedianStyle.Color = c
	bp.WhiskerStyle.Color = c
	bp.GlyphStyle.Color = c

	p := newPlot(th, axis)
	p.Add(bp)
	p.NominalX(column)
	return p, nil
}

// Violin is a mirrored density of one numeric column with an inner box
// plot and a dashed mean line.
type Violin struct {
	numeric
}

// NewViolin returns a violin plot titled "Violin Plot of <column>".
func NewViolin(column string, values []float64, width, height int) *Violin {
	return &Violin{numeric{
		base:   newBase("Violin Plot of "+column, width, height, DefaultNumericWidth, DefaultNumericHeight),
		column: column,
		values: values,
	}}
}

// EmbeddableHTML renders the violin to an inline SVG.
func (v *Violin) EmbeddableHTML() (template.HTML, error) {
	return v.embedWith(func(th theme.Theme, axis float64) (*plot.Plot, error) {
		return violinPlot(th, v.column, v.values, axis)
	})
}

// violinHalfWidth is the half width of the widest violin in data units.
const violinHalfWidth = 0.45

func violinPlot(th theme.Theme, column string, values []float64, axis float64) (*plot.Plot, error) {
	if !finiteSpan(values) {
		return nil, ErrNoData
	}
	curve := density(values)
	peak := 0.0
	for _, pt := range curve {
		peak = max(peak, pt.Y)
	}
	if peak == 0 {
		return nil, ErrNoData
	}

	outline := make(plotter.XYs, 0, 2*len(curve))
	for _, pt := range curve {
		outline = append(outline, plotter.XY{X: violinHalfWidth * pt.Y / peak, Y: pt.X})
	}
	for i := len(curve) - 1; i >= 0; i-- {
		outline = append(outline, plotter.XY{X: -violinHalfWidth * curve[i].Y / peak, Y: curve[i].X})
	}
	c := th.Color(0)
	poly, err := plotter.NewPolygon(outline)
	if err != nil {
		return nil, err
	}
	poly.Color = theme.WithAlpha(c, 0.5)
	poly.LineStyle.Color = c
	poly.LineStyle.Width = vg.Points(1)

	inner, err := plotter.NewBoxPlot(vg.Points(6), 0, plotter.Values(values))
	if err != nil {
		return nil, err
	}
	inner.FillColor = th.BackgroundColor()
	inner.BoxStyle.Color = c
	inner.MedianStyle.Color = c
	inner.WhiskerStyle.Color = c
	inner.GlyphStyle.Radius = 0

	mean := stat.Mean(values, nil)
	meanLine, err := plotter.NewLine(plotter.XYs{{X: -violinHalfWidth / 2, Y: mean}, {X: violinHalfWidth / 2, Y: mean}})
	if err != nil {
		return nil, err
	}
	meanLine.LineStyle.Color = th.ForegroundColor()
	meanLine.LineStyle.Dashes = []vg.Length{vg.Points(3), vg.Points(2)}

	p := newPlot(th, axis)
	p.Add(poly, inner, meanLine)
	p.NominalX(column)
	p.X.Min, p.X.Max = -0.5, 0.5
	return p, nil
}

// densityPlot draws a filled Gaussian density curve.
func densityPlot(th theme.Theme, values []float64, opacity, axis float64) (*plot.Plot, error) {
	if !finiteSpan(values) {
		return nil, ErrNoData
	}
	curve := density(values)
	if len(curve) == 0 {
		return nil, ErrNoData
	}
	line, err := plotter.NewLine(curve)
	if err != nil {
		return nil, err
	}
	c := th.Color(0)
	line.LineStyle.Color = c
	line.FillColor = theme.WithAlpha(c, opacity)

	p := newPlot(th, axis)
	p.Add(line)
	p.Y.Min = 0
	return p, nil
}

// scatterPlot draws ys against xs.
func scatterPlot(th theme.Theme, xs, ys []float64, radius vg.Length, opacity, axis float64) (*plot.Plot, error) {
	if !finiteSpan(xs) || !finiteSpan(ys) {
		return nil, ErrNoData
	}
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i] = plotter.XY{X: xs[i], Y: ys[i]}
	}
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	s.GlyphStyle.Color = theme.WithAlpha(th.Color(0), opacity)
	s.GlyphStyle.Radius = radius
	s.GlyphStyle.Shape = draw.CircleGlyph{}

	p := newPlot(th, axis)
	p.Add(s)
	p.X.Min, p.X.Max = floats.Min(xs), floats.Max(xs)
	p.Y.Min, p.Y.Max = floats.Min(ys), floats.Max(ys)
	return p, nil
}
