package chart

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"image/color"
	"math"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/unbound-force/edareport/internal/dataset"
	"github.com/unbound-force/edareport/internal/theme"
)

// xLabelRoom is the extra bottom padding reserved for bar labels.
const xLabelRoom = 40

// Count is a bar chart of each category's share of a column.
type Count struct {
	base
	freq []dataset.Frequency
}

// NewCount returns a count plot titled "Count Plot of <column>". A
// zero width or height takes the categorical default.
func NewCount(column string, freq []dataset.Frequency, width, height int) *Count {
	return &Count{
		base: newBase("Count Plot of "+column, width, height, DefaultCategoricalWidth, DefaultCategoricalHeight),
		freq: freq,
	}
}

// EmbeddableHTML renders the chart to an inline SVG.
func (c *Count) EmbeddableHTML() (template.HTML, error) {
	svg, err := c.render()
	return orNoData(c.title, svg, err)
}

func (c *Count) render() (string, error) {
	if len(c.freq) == 0 {
		return "", ErrNoData
	}
	th := c.theme
	m := th.CategoricalMargin
	fill := toDrawing(th.Color(0))
	fg := toDrawing(th.ForegroundColor())
	bg := toDrawing(th.BackgroundColor())

	bars := make([]gochart.Value, len(c.freq))
	top := 0.0
	for i, f := range c.freq {
		bars[i] = gochart.Value{
			Label: html.EscapeString(f.Value),
			Value: f.Percent,
			Style: gochart.Style{FillColor: fill, StrokeColor: fill, StrokeWidth: 1},
		}
		top = math.Max(top, f.Percent)
	}
	barWidth := max(4, (c.width-m.Left-m.Right)/(2*len(bars)))

	bc := gochart.BarChart{
		Width:      c.width,
		Height:     c.height,
		BarWidth:   barWidth,
		BarSpacing: barWidth,
		Background: gochart.Style{
			FillColor:   bg,
			StrokeColor: bg,
			Padding:     padding(m, xLabelRoom),
		},
		Canvas: gochart.Style{FillColor: bg, StrokeColor: bg},
		XAxis:  gochart.Style{FontSize: th.AxisFontSize, FontColor: fg, StrokeColor: fg},
		YAxis: gochart.YAxis{
			Style:          gochart.Style{FontSize: th.AxisFontSize, FontColor: fg, StrokeColor: fg},
			Range:          &gochart.ContinuousRange{Min: 0, Max: math.Max(top*1.1, 1)},
			ValueFormatter: percentFormatter,
		},
		Bars:     bars,
		Elements: []gochart.Renderable{leftTitle(c.title, th)},
	}
	var buf bytes.Buffer
	if err := bc.Render(gochart.SVG, &buf); err != nil {
		return "", fmt.Errorf("rendering %s: %w", c.title, err)
	}
	return stripProlog(buf.String()), nil
}

// Donut is a ring chart of a column's category shares.
type Donut struct {
	base
	freq []dataset.Frequency
}

// NewDonut returns a donut chart titled "Donut Chart of <column>".
// Slices are labelled "value (percent%)".
func NewDonut(column string, freq []dataset.Frequency, width, height int) *Donut {
	return &Donut{
		base: newBase("Donut Chart of "+column, width, height, DefaultCategoricalWidth, DefaultCategoricalHeight),
		freq: freq,
	}
}

// EmbeddableHTML renders the chart to an inline SVG.
func (d *Donut) EmbeddableHTML() (template.HTML, error) {
	svg, err := d.render()
	return orNoData(d.title, svg, err)
}

func (d *Donut) render() (string, error) {
	if len(d.freq) == 0 {
		return "", ErrNoData
	}
	th := d.theme
	fg := toDrawing(th.ForegroundColor())
	bg := toDrawing(th.BackgroundColor())

	values := make([]gochart.Value, len(d.freq))
	for i, f := range d.freq {
		fill := toDrawing(th.Color(i))
		values[i] = gochart.Value{
			Label: html.EscapeString(f.Label()),
			Value: float64(f.Count),
			Style: gochart.Style{
				FillColor:   fill,
				StrokeColor: bg,
				StrokeWidth: 2,
				FontSize:    th.AxisFontSize,
				FontColor:   fg,
			},
		}
	}
	dc := gochart.DonutChart{
		Width:  d.width,
		Height: d.height,
		Background: gochart.Style{
			FillColor:   bg,
			StrokeColor: bg,
			Padding:     padding(th.CategoricalMargin, 0),
		},
		Canvas:   gochart.Style{FillColor: bg, StrokeColor: bg},
		Values:   values,
		Elements: []gochart.Renderable{leftTitle(d.title, th)},
	}
	var buf bytes.Buffer
	if err := dc.Render(gochart.SVG, &buf); err != nil {
		return "", fmt.Errorf("rendering %s: %w", d.title, err)
	}
	return stripProlog(buf.String()), nil
}

// leftTitle draws the chart title at the top left, offset by the
// theme's title padding. go-chart only centers its own titles.
//
// go-chart's SVG renderer writes text verbatim, so every label handed
// to it is escaped first.
func leftTitle(title string, th theme.Theme) gochart.Renderable {
	return func(r gochart.Renderer, _ gochart.Box, defaults gochart.Style) {
		r.SetFont(defaults.Font)
		r.SetFontColor(toDrawing(th.ForegroundColor()))
		r.SetFontSize(th.TitleFontSize)
		tb := r.MeasureText(title)
		r.Text(html.EscapeString(title), th.TitlePadLeft, 8+tb.Height())
	}
}

func padding(m theme.Margin, extraBottom int) gochart.Box {
	return gochart.Box{
		Top:    m.Top,
		Left:   m.Left,
		Right:  m.Right,
		Bottom: m.Bottom + extraBottom,
		IsSet:  true,
	}
}

func percentFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.0f%%", f)
	}
	return ""
}

func toDrawing(c color.RGBA) drawing.Color {
	return drawing.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}
