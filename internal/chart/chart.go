// Package chart renders the figures embedded in a report.
//
// Every figure renders to a single inline SVG wrapped in a div with a
// unique "chart-<uuid>" id, so a report stays one self-contained file.
// Bar and donut charts are drawn with go-chart; histograms, box plots,
// violins, densities, scatters and multi-plot composites are drawn with
// gonum/plot.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/google/uuid"

	"github.com/unbound-force/edareport/internal/theme"
)

// ErrNoData reports a figure with nothing to draw. Figures that hit it
// while rendering embed a placeholder instead of failing.
var ErrNoData = errors.New("no data to plot")

// Default figure sizes in pixels.
const (
	DefaultCategoricalWidth  = 640
	DefaultCategoricalHeight = 400
	DefaultNumericWidth      = 480
	DefaultNumericHeight     = 300
	DefaultFigureHeight      = 500
)

// base carries the fields shared by every figure.
type base struct {
	title  string
	width  int
	height int
	theme  theme.Theme
}

func newBase(title string, width, height, defWidth, defHeight int) base {
	if width <= 0 {
		width = defWidth
	}
	if height <= 0 {
		height = defHeight
	}
	return base{title: title, width: width, height: height, theme: theme.Default()}
}

// Title returns the figure title.
func (b *base) Title() string { return b.title }

// Size returns the figure size in pixels.
func (b *base) Size() (width, height int) { return b.width, b.height }

// ApplyTheme replaces the theme used on the next render.
func (b *base) ApplyTheme(t theme.Theme) { b.theme = t.WithDefaults() }

var embedTmpl = template.Must(template.New("embed").Parse(
	`<div class="chart" id="chart-{{.ID}}">{{.SVG}}</div>`))

var emptyTmpl = template.Must(template.New("empty").Parse(
	`<div class="chart chart-empty" id="chart-{{.ID}}"><p class="chart-title">{{.Title}}</p><p>No data to display</p></div>`))

// embed wraps rendered SVG markup in a uniquely identified div.
func embed(svg string) (template.HTML, error) {
	var buf bytes.Buffer
	err := embedTmpl.Execute(&buf, struct {
		ID  string
		SVG template.HTML
	}{uuid.NewString(), template.HTML(svg)})
	if err != nil {
		return "", fmt.Errorf("embedding chart: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// noData renders the placeholder shown in place of an empty chart.
func noData(title string) (template.HTML, error) {
	var buf bytes.Buffer
	err := emptyTmpl.Execute(&buf, struct{ ID, Title string }{uuid.NewString(), title})
	if err != nil {
		return "", fmt.Errorf("embedding chart: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// orNoData embeds svg, or the placeholder when rendering found no data.
func orNoData(title, svg string, err error) (template.HTML, error) {
	if errors.Is(err, ErrNoData) {
		return noData(title)
	}
	if err != nil {
		return "", err
	}
	return embed(svg)
}

// stripProlog drops anything before the root <svg> element, such as an
// XML declaration, which is not valid inside an HTML body.
func stripProlog(svg string) string {
	if i := strings.Index(svg, "<svg"); i > 0 {
		return svg[i:]
	}
	return svg
}
